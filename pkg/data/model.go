package data

type Title struct {
	ID          int
	Title       string
	Description string
	CoverURL    string
	Authors     []string
	Sections    []Section
}

// Section is a named grouping of chapters (a volume, "serialized", "extras"...)
// in the order the source returns it.
type Section struct {
	Title    string
	Chapters []ChapterRef
}

type ChapterRef struct {
	ID    int
	Title string
	Pages []string // HD page URLs, filled lazily
}

type ChapterImages struct {
	ChapterID int
	Pages     []string
}

// FirstSection returns the first chapter section of the title, if any.
func (t *Title) FirstSection() (Section, bool) {
	if t == nil || len(t.Sections) == 0 {
		return Section{}, false
	}
	return t.Sections[0], true
}

// ReadingOrder returns the section's chapters oldest-first. Sources deliver
// chapters newest-first, so this is the reverse of the stored order.
func (s Section) ReadingOrder() []ChapterRef {
	out := make([]ChapterRef, len(s.Chapters))
	for i, ch := range s.Chapters {
		out[len(s.Chapters)-1-i] = ch
	}
	return out
}

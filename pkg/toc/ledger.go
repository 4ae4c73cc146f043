// Package toc accumulates document metadata and chapter bookmarks and writes
// them in the pdftk "update_info" text format.
package toc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type Info struct {
	Key   string
	Value string
}

type Bookmark struct {
	Title string
	Level int
	Page  int // 1-based
}

// Entry is one block of the ledger: either an Info or a Bookmark.
type Entry struct {
	Info     *Info
	Bookmark *Bookmark
}

func (e Entry) String() string {
	if e.Info != nil {
		return fmt.Sprintf("\nInfoBegin\nInfoKey: %s\nInfoValue: %s\n", e.Info.Key, e.Info.Value)
	}
	return fmt.Sprintf("\nBookmarkBegin\nBookmarkTitle: %s\nBookmarkLevel: %d\nBookmarkPageNumber: %d\n",
		e.Bookmark.Title, e.Bookmark.Level, e.Bookmark.Page)
}

// Ledger is append-only: blocks are serialized in call order with no
// deduplication or reordering.
type Ledger struct {
	entries []Entry
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) AddMetadata(key, value string) {
	l.entries = append(l.entries, Entry{Info: &Info{Key: key, Value: oneLine(value)}})
}

func (l *Ledger) AddTitle(title string) {
	l.AddMetadata("Title", title)
}

func (l *Ledger) AddAuthors(authors []string) {
	l.AddMetadata("Author", strings.Join(authors, ","))
}

func (l *Ledger) AddBookmark(page int, title string, level int) {
	l.entries = append(l.entries, Entry{Bookmark: &Bookmark{Title: oneLine(title), Level: level, Page: page}})
}

func (l *Ledger) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

func (l *Ledger) Bookmarks() []Bookmark {
	var out []Bookmark
	for _, e := range l.entries {
		if e.Bookmark != nil {
			out = append(out, *e.Bookmark)
		}
	}
	return out
}

func (l *Ledger) Infos() []Info {
	var out []Info
	for _, e := range l.entries {
		if e.Info != nil {
			out = append(out, *e.Info)
		}
	}
	return out
}

func (l *Ledger) Serialize() string {
	var b strings.Builder
	for _, e := range l.entries {
		b.WriteString(e.String())
	}
	return b.String()
}

func (l *Ledger) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, l.Serialize())
	return int64(n), err
}

// WriteFile writes the serialized ledger to path.
func (l *Ledger) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create bookmark file: %w", err)
	}
	if _, err := l.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write bookmark file: %w", err)
	}
	return f.Close()
}

// Parse reads a serialized ledger back. Unknown keys are ignored; a block
// missing a required field is an error.
func Parse(r io.Reader) (*Ledger, error) {
	l := NewLedger()
	scanner := bufio.NewScanner(r)

	var (
		block  string
		fields map[string]string
		line   int
	)
	flush := func() error {
		switch block {
		case "":
			return nil
		case "InfoBegin":
			key, ok := fields["InfoKey"]
			if !ok {
				return fmt.Errorf("line %d: info block without InfoKey", line)
			}
			l.AddMetadata(key, fields["InfoValue"])
		case "BookmarkBegin":
			page, err := strconv.Atoi(fields["BookmarkPageNumber"])
			if err != nil {
				return fmt.Errorf("line %d: bad BookmarkPageNumber: %w", line, err)
			}
			level, err := strconv.Atoi(fields["BookmarkLevel"])
			if err != nil {
				return fmt.Errorf("line %d: bad BookmarkLevel: %w", line, err)
			}
			l.AddBookmark(page, fields["BookmarkTitle"], level)
		}
		block = ""
		return nil
	}

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		switch text {
		case "":
			continue
		case "InfoBegin", "BookmarkBegin":
			if err := flush(); err != nil {
				return nil, err
			}
			block = text
			fields = make(map[string]string)
			continue
		}
		key, value, ok := strings.Cut(text, ":")
		if !ok || block == "" {
			continue
		}
		fields[key] = strings.TrimPrefix(value, " ")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return l, nil
}

// oneLine keeps a value from breaking the line-oriented format.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func oneLine(s string) string {
	return lineBreaks.Replace(s)
}

package data

import "testing"

func TestTitleModel(t *testing.T) {
	title := Title{
		ID:          12345,
		Title:       "Test Manga",
		Description: "A test manga",
		CoverURL:    "https://example.com/cover.jpg",
		Authors:     []string{"Author A", "Author B"},
	}

	if title.ID != 12345 {
		t.Errorf("Expected ID 12345, got %d", title.ID)
	}

	if title.Title != "Test Manga" {
		t.Errorf("Expected Title 'Test Manga', got '%s'", title.Title)
	}

	if len(title.Authors) != 2 {
		t.Errorf("Expected 2 authors, got %d", len(title.Authors))
	}
}

func TestFirstSection(t *testing.T) {
	t.Run("no sections", func(t *testing.T) {
		title := &Title{ID: 1}
		if _, ok := title.FirstSection(); ok {
			t.Error("Expected no section")
		}
	})

	t.Run("nil title", func(t *testing.T) {
		var title *Title
		if _, ok := title.FirstSection(); ok {
			t.Error("Expected no section for nil title")
		}
	})

	t.Run("first of many", func(t *testing.T) {
		title := &Title{
			Sections: []Section{
				{Title: "Serialized"},
				{Title: "Extras"},
			},
		}
		section, ok := title.FirstSection()
		if !ok {
			t.Fatal("Expected a section")
		}
		if section.Title != "Serialized" {
			t.Errorf("Expected 'Serialized', got '%s'", section.Title)
		}
	})
}

func TestReadingOrder(t *testing.T) {
	section := Section{
		Title: "Serialized",
		Chapters: []ChapterRef{
			{ID: 3, Title: "Chapter 3"},
			{ID: 2, Title: "Chapter 2"},
			{ID: 1, Title: "Chapter 1"},
		},
	}

	ordered := section.ReadingOrder()

	if len(ordered) != 3 {
		t.Fatalf("Expected 3 chapters, got %d", len(ordered))
	}
	for i, want := range []int{1, 2, 3} {
		if ordered[i].ID != want {
			t.Errorf("ordered[%d].ID = %d, want %d", i, ordered[i].ID, want)
		}
	}

	// The source order must be left untouched
	if section.Chapters[0].ID != 3 {
		t.Error("ReadingOrder() must not modify the section")
	}

	if got := (Section{}).ReadingOrder(); len(got) != 0 {
		t.Errorf("Expected empty order, got %d chapters", len(got))
	}
}

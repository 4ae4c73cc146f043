package sources

import (
	"context"
	"fmt"

	"github.com/kerbaras/mangapdf/pkg/data"
	"github.com/kerbaras/mangapdf/pkg/utils"
)

const DefaultDMZJBaseURL = "https://nnv4api.dmzj.com"

type envelope[T any] struct {
	Errno  int    `json:"errno"`
	Errmsg string `json:"errmsg"`
	Data   T      `json:"data"`
}

type Author struct {
	TagID   int    `json:"tagId"`
	TagName string `json:"tagName"`
}

type Chapter struct {
	ChapterID    int      `json:"chapterId"`
	ChapterTitle string   `json:"chapterTitle"`
	PageURLHD    []string `json:"pageUrlHD"`
}

type ChapterSection struct {
	Title string    `json:"title"`
	Data  []Chapter `json:"data"`
}

type TitleDetail struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Cover       string           `json:"cover"`
	Authors     []Author         `json:"authors"`
	Chapters    []ChapterSection `json:"chapters"`
}

func (d *TitleDetail) ToTitle() *data.Title {
	authors := make([]string, 0, len(d.Authors))
	for _, au := range d.Authors {
		authors = append(authors, au.TagName)
	}

	sections := make([]data.Section, len(d.Chapters))
	for i, section := range d.Chapters {
		chapters := make([]data.ChapterRef, len(section.Data))
		for j, ch := range section.Data {
			chapters[j] = data.ChapterRef{
				ID:    ch.ChapterID,
				Title: ch.ChapterTitle,
				Pages: ch.PageURLHD,
			}
		}
		sections[i] = data.Section{Title: section.Title, Chapters: chapters}
	}

	return &data.Title{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		CoverURL:    d.Cover,
		Authors:     authors,
		Sections:    sections,
	}
}

type DMZJ struct {
	api *utils.API
}

func NewDMZJ(baseURL string) *DMZJ {
	if baseURL == "" {
		baseURL = DefaultDMZJBaseURL
	}
	return &DMZJ{api: utils.NewAPI(baseURL)}
}

func NewDMZJWithAPI(api *utils.API) *DMZJ {
	return &DMZJ{api: api}
}

func (s *DMZJ) GetTitle(ctx context.Context, titleID int) (*data.Title, error) {
	op := fmt.Sprintf("fetch title %d", titleID)
	var resp envelope[TitleDetail]
	if err := s.api.Get(ctx, fmt.Sprintf("/comic/detail/%d", titleID), nil, &resp); err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	if resp.Errno != 0 {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("api error %d: %s", resp.Errno, resp.Errmsg)}
	}
	return resp.Data.ToTitle(), nil
}

func (s *DMZJ) GetChapterImages(ctx context.Context, titleID, chapterID int) (*data.ChapterImages, error) {
	op := fmt.Sprintf("fetch chapter %d/%d", titleID, chapterID)
	var resp envelope[Chapter]
	if err := s.api.Get(ctx, fmt.Sprintf("/chapter/%d/%d", titleID, chapterID), nil, &resp); err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	if resp.Errno != 0 {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("api error %d: %s", resp.Errno, resp.Errmsg)}
	}
	return &data.ChapterImages{ChapterID: chapterID, Pages: resp.Data.PageURLHD}, nil
}

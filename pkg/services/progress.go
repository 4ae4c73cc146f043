package services

// Stage is a step of the pipeline.
type Stage string

const (
	StageFetchingTitle    Stage = "fetching title"
	StageFetchingImages   Stage = "fetching images"
	StageDownloading      Stage = "downloading"
	StageConverting       Stage = "converting"
	StageMerging          Stage = "merging"
	StageWritingBookmarks Stage = "writing bookmarks"
	StageStamping         Stage = "stamping"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

// Progress represents the progress of a pipeline run
type Progress struct {
	Stage        Stage
	Title        string
	Chapter      string
	ChapterIndex int // 1-based
	ChapterCount int
	CurrentPage  int
	TotalPages   int
	Output       string
	Error        error
}

package wax

import "github.com/meigma/wax/internal/waxtype"

// Re-export progress types from internal/waxtype.
type (
	// ProgressEvent represents a progress update during a build.
	ProgressEvent = waxtype.ProgressEvent

	// ProgressStage identifies the current phase of a build.
	ProgressStage = waxtype.ProgressStage

	// ProgressFunc receives progress updates during a build.
	ProgressFunc = waxtype.ProgressFunc
)

// Re-export progress stage constants.
const (
	// StageEnumerating indicates the input tree is being walked.
	StageEnumerating = waxtype.StageEnumerating

	// StageCompressing indicates files are being compressed and appended.
	StageCompressing = waxtype.StageCompressing

	// StageFinalizing indicates the index is being appended and the header patched.
	StageFinalizing = waxtype.StageFinalizing
)

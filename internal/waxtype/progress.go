package waxtype

// ProgressEvent represents a progress update during archive creation.
type ProgressEvent struct {
	// Stage identifies the current phase of the build.
	Stage ProgressStage

	// Path is the file currently being processed, if applicable.
	Path string

	// BytesDone is the number of original bytes archived so far.
	BytesDone uint64

	// FilesDone is the number of files completed.
	FilesDone int

	// FilesTotal is the total number of files.
	// Zero indicates the total is unknown (e.g., during enumeration).
	FilesTotal int
}

// ProgressStage identifies the current phase of a build.
type ProgressStage uint8

// Progress stages, in the order a build passes through them.
const (
	// StageEnumerating indicates the input tree is being walked.
	StageEnumerating ProgressStage = iota

	// StageCompressing indicates files are being compressed and appended.
	StageCompressing

	// StageFinalizing indicates the index is being appended and the header patched.
	StageFinalizing
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEnumerating:
		return "enumerating"
	case StageCompressing:
		return "compressing"
	case StageFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during a build.
// Calls are made from the goroutine that appends blobs, one at a time.
type ProgressFunc func(ProgressEvent)

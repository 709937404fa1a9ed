package pactype

// ProgressEvent represents a progress update during save or load.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// SubArchive is the index of the sub-archive being processed.
	// The root is reported as -1.
	SubArchive int

	// Resources is the number of resources handled in this step.
	Resources int

	// Bytes is the number of bytes produced or consumed in this step.
	Bytes uint64
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages for save and load.
const (
	// StagePartitioning indicates resources are being assigned to sub-archives.
	StagePartitioning ProgressStage = iota

	// StagePacking indicates a sub-archive is being serialized.
	StagePacking

	// StageCompressing indicates a sub-archive blob is being compressed.
	StageCompressing

	// StageWriting indicates the container is being written out.
	StageWriting

	// StageReading indicates a sub-archive is being decoded.
	StageReading
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StagePartitioning:
		return "partitioning"
	case StagePacking:
		return "packing"
	case StageCompressing:
		return "compressing"
	case StageWriting:
		return "writing"
	case StageReading:
		return "reading"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
type ProgressFunc func(ProgressEvent)

package pacx

import "github.com/meigma/pacx/internal/pactype"

// Re-export progress types from pactype.
type (
	// ProgressEvent represents a progress update during save or load.
	ProgressEvent = pactype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = pactype.ProgressStage

	// ProgressFunc receives progress updates during operations.
	ProgressFunc = pactype.ProgressFunc
)

// Re-export progress stage constants.
const (
	// StagePartitioning indicates resources are being assigned to sub-archives.
	StagePartitioning = pactype.StagePartitioning

	// StagePacking indicates a sub-archive is being serialized.
	StagePacking = pactype.StagePacking

	// StageCompressing indicates a sub-archive is being compressed.
	StageCompressing = pactype.StageCompressing

	// StageWriting indicates the container is being written.
	StageWriting = pactype.StageWriting

	// StageReading indicates a sub-archive is being decoded.
	StageReading = pactype.StageReading
)

func report(fn ProgressFunc, ev ProgressEvent) {
	if fn != nil {
		fn(ev)
	}
}

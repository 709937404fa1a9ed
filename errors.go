package pacx

import "github.com/meigma/pacx/internal/pactype"

// Errors re-exported from pactype.
var (
	// ErrMalformedInput is returned when resources cannot be encoded, such as
	// empty or duplicate names.
	ErrMalformedInput = pactype.ErrMalformedInput

	// ErrSignature is returned when a header signature or version is invalid.
	ErrSignature = pactype.ErrSignature

	// ErrCorrupt is returned when archive bytes are truncated or inconsistent.
	ErrCorrupt = pactype.ErrCorrupt

	// ErrAlreadyExists is returned by Save when the destination exists and
	// SaveWithOverwrite was not set.
	ErrAlreadyExists = pactype.ErrAlreadyExists

	// ErrNameTooLong is returned when a name prefix exceeds 255 bytes.
	ErrNameTooLong = pactype.ErrNameTooLong

	// ErrUnresolvedOffset is returned when an encoder leaves a pointer unpatched.
	ErrUnresolvedOffset = pactype.ErrUnresolvedOffset

	// ErrSizeOverflow is returned when a length does not fit its wire field.
	ErrSizeOverflow = pactype.ErrSizeOverflow
)

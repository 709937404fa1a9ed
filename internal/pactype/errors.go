package pactype

import "errors"

// Sentinel errors for archive operations.
var (
	// ErrMalformedInput is returned when caller-supplied resources cannot be
	// encoded (empty or duplicate names).
	ErrMalformedInput = errors.New("pacx: malformed input")

	// ErrSignature is returned when a header signature or version is invalid.
	ErrSignature = errors.New("pacx: signature mismatch")

	// ErrCorrupt is returned when archive bytes are truncated or inconsistent.
	ErrCorrupt = errors.New("pacx: corrupt archive")

	// ErrAlreadyExists is returned when the save destination exists and
	// overwriting was not requested.
	ErrAlreadyExists = errors.New("pacx: destination already exists")

	// ErrNameTooLong is returned when a reconstructed name exceeds 255 bytes.
	ErrNameTooLong = errors.New("pacx: name too long")

	// ErrUnresolvedOffset is returned when a reserved offset was never resolved.
	ErrUnresolvedOffset = errors.New("pacx: unresolved offset")

	// ErrSizeOverflow is returned when a length does not fit its wire field.
	ErrSizeOverflow = errors.New("pacx: size overflow")
)

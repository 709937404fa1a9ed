// Package bin provides endian-aware fixed-width primitives over in-memory
// byte streams.
//
// Sub-archives are always fully materialized before they are parsed or
// emitted, so both Reader and Writer operate on byte slices and support
// absolute seeking.
package bin

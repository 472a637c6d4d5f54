package unextract

import "errors"

var (
	// ErrMalformedArchive is returned when the archive's structure cannot be reconciled: the end of central
	// directory record is missing, a central directory header has the wrong signature, or the directory is
	// truncated. Match with errors.Is.
	ErrMalformedArchive = errors.New("malformed zip archive")

	// ErrEncoding is returned when a stored entry name cannot be decoded: either the entry declares UTF-8 via its
	// general purpose bit flag but carries invalid bytes, or the configured encoding rejects the name.
	ErrEncoding = errors.New("undecodable entry name")

	// ErrUnsupportedEncoding is returned by NewNameDecoder for encoding names other than "utf8" and "cp932".
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

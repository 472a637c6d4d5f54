package unextract

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// Encodings accepted by NewNameDecoder for entries that do not declare UTF-8 names via their general purpose
// bit flag.
const (
	EncodingUTF8  = "utf8"
	EncodingCP932 = "cp932"
)

// NameDecoder decodes stored entry names according to a configured encoding.
//
// An entry whose general purpose bit 11 is set is always decoded as UTF-8 regardless of configuration; the
// configured encoding only applies to entries without that flag.
type NameDecoder struct {
	encoding string

	// LegacyFallback applies to the "utf8" encoding only: names that are not valid UTF-8 are retried as
	// Shift-JIS instead of failing with ErrEncoding. This mirrors how archivers on legacy Windows systems
	// produced cp932 names without setting the flag.
	LegacyFallback bool
}

// NewNameDecoder returns a NameDecoder for the given encoding, one of EncodingUTF8 or EncodingCP932.
//
// Any other value fails with ErrUnsupportedEncoding here rather than per entry.
func NewNameDecoder(encoding string, optFns ...func(*NameDecoder)) (*NameDecoder, error) {
	switch encoding {
	case EncodingUTF8, EncodingCP932:
	default:
		return nil, fmt.Errorf("%q: %w", encoding, ErrUnsupportedEncoding)
	}

	d := &NameDecoder{encoding: encoding}
	for _, fn := range optFns {
		fn(d)
	}

	return d, nil
}

// Decode decodes one raw name. declaredUTF8 is the entry's general purpose bit 11.
func (d *NameDecoder) Decode(name []byte, declaredUTF8 bool) (string, error) {
	if declaredUTF8 {
		// the archive violating its own declared encoding is not recoverable.
		if !utf8.Valid(name) {
			return "", fmt.Errorf("name declared as UTF-8 holds invalid bytes: %w", ErrEncoding)
		}
		return string(name), nil
	}

	if d.encoding == EncodingCP932 {
		return decodeShiftJIS(name)
	}

	if utf8.Valid(name) {
		return string(name), nil
	}
	if d.LegacyFallback {
		return decodeShiftJIS(name)
	}

	return "", fmt.Errorf("name is not valid UTF-8: %w", ErrEncoding)
}

// decodeShiftJIS never fails on undecodable byte sequences; the decoder substitutes replacement characters.
func decodeShiftJIS(name []byte) (string, error) {
	s, err := japanese.ShiftJIS.NewDecoder().String(string(name))
	if err != nil {
		return "", fmt.Errorf("decode shift-jis name error: %w", err)
	}
	return s, nil
}

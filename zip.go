// Package unextract reads the central directory of a ZIP archive and plans the removal of files that were
// previously extracted from it, matched by name and exact uncompressed size.
//
// Only the archive's metadata is ever read; entry contents are never decompressed. The central directory is
// parsed directly from the raw bytes so that entry names can be decoded with a caller-selected encoding, which
// archive/zip does not allow.
package unextract

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	directoryEndSignature    uint32 = 0x06054b50
	directoryHeaderSignature uint32 = 0x02014b50

	// fixed length of the end of central directory record, excluding its trailing comment.
	directoryEndLen = 22
	// fixed length of a central directory file header, excluding name, extra field, and comment.
	directoryHeaderLen = 46

	maxCommentLen = 1<<16 - 1

	// bit 11 of the general purpose bit flag: the entry name is stored as UTF-8.
	utf8Flag uint16 = 1 << 11
)

// CentralDirectoryEntry describes one archived item as recorded in the central directory.
type CentralDirectoryEntry struct {
	// Name is the decoded entry name, using forward or backward slashes exactly as stored.
	Name string

	// UncompressedSize is the original byte length of the entry's contents.
	UncompressedSize uint32

	// Flags is the raw general purpose bit flag field.
	Flags uint16
}

// IsUTF8 reports whether the entry declared its stored name to be UTF-8 (general purpose bit 11).
func (e CentralDirectoryEntry) IsUTF8() bool {
	return e.Flags&utf8Flag != 0
}

// directoryEnd holds the fields of a verified end of central directory record.
type directoryEnd struct {
	offset          int64
	entryCount      int
	directoryOffset int64
	commentLen      int
}

// OpenDirectory reads the central directory of the named ZIP file.
//
// The file is opened, parsed, and closed before returning; entries are returned in archive storage order.
func OpenDirectory(name string, dec *NameDecoder) ([]CentralDirectoryEntry, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf(`open file "%s" error: %w`, name, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf(`stat file "%s" error: %w`, name, err)
	}

	return ReadDirectory(f, fi.Size(), dec)
}

// ReadDirectory locates the end of central directory record of the archive in src and walks the central
// directory, returning its entries in storage order.
//
// The parse either completes or fails as a whole; a structurally corrupted archive yields no entries and
// ErrMalformedArchive, never a partial list. The caller retains ownership of src but must not use it
// concurrently with this call.
func ReadDirectory(src io.ReadSeeker, size int64, dec *NameDecoder) ([]CentralDirectoryEntry, error) {
	end, err := locateDirectoryEnd(src, size)
	if err != nil {
		return nil, err
	}

	if _, err = src.Seek(end.directoryOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to central directory error: %w", err)
	}

	fr := &fieldReader{r: src}
	entries := make([]CentralDirectoryEntry, 0, end.entryCount)

	for i := 0; i < end.entryCount; i++ {
		switch sig := fr.uint32(); {
		case fr.err != nil:
			return nil, fr.err
		case sig != directoryHeaderSignature:
			// the directory is contiguous; a wrong signature here means nothing downstream can be trusted.
			return nil, fmt.Errorf("bad central directory header signature %#08x at entry %d: %w", sig, i, ErrMalformedArchive)
		}

		fr.skip(4) // version made by, version needed to extract
		flags := fr.uint16()
		fr.skip(14) // compression method, mod time, mod date, crc-32, compressed size
		uncompressedSize := fr.uint32()
		nameLen := fr.uint16()
		extraLen := fr.uint16()
		commentLen := fr.uint16()
		fr.skip(12) // disk number start, internal and external attributes, local header offset
		raw := fr.bytes(int(nameLen))
		fr.skip(int64(extraLen) + int64(commentLen))
		if fr.err != nil {
			return nil, fr.err
		}

		name, err := dec.Decode(raw, flags&utf8Flag != 0)
		if err != nil {
			return nil, fmt.Errorf("decode name of entry %d error: %w", i, err)
		}

		entries = append(entries, CentralDirectoryEntry{
			Name:             name,
			UncompressedSize: uncompressedSize,
			Flags:            flags,
		})
	}

	return entries, nil
}

// locateDirectoryEnd reads the trailing region of the archive and scans it backward for the end of central
// directory record, leaving the cursor position unspecified.
//
// The region is bounded at maxCommentLen+directoryEndLen bytes since the record cannot start farther from the
// end of the file.
func locateDirectoryEnd(src io.ReadSeeker, size int64) (directoryEnd, error) {
	if size < directoryEndLen {
		return directoryEnd{}, fmt.Errorf("file too short for an archive (%d bytes): %w", size, ErrMalformedArchive)
	}

	n := min(size, directoryEndLen+maxCommentLen)
	buf := make([]byte, n)
	if _, err := src.Seek(size-n, io.SeekStart); err != nil {
		return directoryEnd{}, fmt.Errorf("seek to trailing region error: %w", err)
	}
	if _, err := io.ReadFull(src, buf); err != nil {
		return directoryEnd{}, fmt.Errorf("read trailing region error: %w", err)
	}

	end, ok := findDirectoryEnd(buf, size-n, size)
	if !ok {
		return directoryEnd{}, fmt.Errorf("end of central directory record not found: %w", ErrMalformedArchive)
	}

	return end, nil
}

// findDirectoryEnd scans buf backward from the zero-comment position for the record signature. base is the
// absolute offset of buf[0] within the file of the given size.
//
// A comment may legally contain the signature byte pattern, so a candidate is accepted only when its declared
// comment length reconciles the record's offset with the end of the file. The reconciled match nearest the end
// of the file wins.
func findDirectoryEnd(buf []byte, base, size int64) (directoryEnd, bool) {
	for i := int64(len(buf)) - directoryEndLen; i >= 0; i-- {
		if binary.LittleEndian.Uint32(buf[i:i+4]) != directoryEndSignature {
			continue
		}

		commentLen := int64(binary.LittleEndian.Uint16(buf[i+20 : i+22]))
		if base+i+directoryEndLen+commentLen != size {
			// signature bytes inside a comment; keep scanning toward the start of the file.
			continue
		}

		return directoryEnd{
			offset:          base + i,
			entryCount:      int(binary.LittleEndian.Uint16(buf[i+10 : i+12])),
			directoryOffset: int64(binary.LittleEndian.Uint32(buf[i+16 : i+20])),
			commentLen:      int(commentLen),
		}, true
	}

	return directoryEnd{}, false
}

// fieldReader reads the little-endian fixed-offset fields of central directory headers, sticking on the first
// error. Short reads become ErrMalformedArchive since the entry count promised more bytes than the file holds.
type fieldReader struct {
	r   io.Reader
	err error
	buf [4]byte
}

func (fr *fieldReader) uint16() uint16 {
	return binary.LittleEndian.Uint16(fr.field(2))
}

func (fr *fieldReader) uint32() uint32 {
	return binary.LittleEndian.Uint32(fr.field(4))
}

func (fr *fieldReader) field(n int) []byte {
	if fr.err == nil {
		if _, err := io.ReadFull(fr.r, fr.buf[:n]); err != nil {
			fr.err = truncated(err)
		}
	}
	return fr.buf[:n]
}

func (fr *fieldReader) bytes(n int) []byte {
	if fr.err != nil {
		return nil
	}

	p := make([]byte, n)
	if _, err := io.ReadFull(fr.r, p); err != nil {
		fr.err = truncated(err)
		return nil
	}
	return p
}

func (fr *fieldReader) skip(n int64) {
	if fr.err == nil {
		if _, err := io.CopyN(io.Discard, fr.r, n); err != nil {
			fr.err = truncated(err)
		}
	}
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("truncated central directory: %w", ErrMalformedArchive)
	}
	return fmt.Errorf("read central directory error: %w", err)
}

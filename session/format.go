package session

import (
	"compress/gzip"
	"io"
	"os"

	"github.com/dselans/fastx/errs"
)

// Format identifies the parsed record type a source contains.
type Format int

const (
	FormatUnknown Format = iota
	FormatFASTA
	FormatFASTQ
)

func (f Format) String() string {
	switch f {
	case FormatFASTA:
		return "fasta"
	case FormatFASTQ:
		return "fastq"
	default:
		return "unknown"
	}
}

// detect reports whether f is gzip-compressed and what record format its
// (possibly compressed) content looks like, leaving f's offset restored to
// the start either way.
func detect(f *os.File) (gzipped bool, format Format, err error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return false, FormatUnknown, errs.WrapIoError(err, "seeking to start to detect format")
	}
	defer f.Seek(0, io.SeekStart)

	var magic [2]byte
	n, err := f.Read(magic[:])
	if err != nil && err != io.EOF {
		return false, FormatUnknown, errs.WrapIoError(err, "reading source header")
	}
	gzipped = n == 2 && magic[0] == 0x1f && magic[1] == 0x8b

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return false, FormatUnknown, errs.WrapIoError(err, "reseeking to start")
	}

	var lead [1]byte
	if gzipped {
		gr, gerr := gzip.NewReader(f)
		if gerr != nil {
			return false, FormatUnknown, errs.WrapGzipError(gerr, "opening gzip stream to detect format")
		}
		defer gr.Close()
		if _, rerr := io.ReadFull(gr, lead[:]); rerr != nil && rerr != io.EOF {
			return false, FormatUnknown, errs.WrapGzipError(rerr, "reading first decompressed byte")
		}
	} else {
		if _, rerr := io.ReadFull(f, lead[:]); rerr != nil && rerr != io.EOF {
			return false, FormatUnknown, errs.WrapIoError(rerr, "reading first source byte")
		}
	}

	switch lead[0] {
	case '>':
		format = FormatFASTA
	case '@':
		format = FormatFASTQ
	}
	return gzipped, format, nil
}

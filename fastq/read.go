package fastq

import (
	"bytes"

	"github.com/dselans/fastx/errs"
)

// ReaderAt is the positioned-read capability a Read needs from its backing
// source.
type ReaderAt interface {
	ReadAt(p []byte, off int64) (int, error)
}

// Read is the accessor bound to one RecordInfo.
type Read struct {
	Info RecordInfo
	src  ReaderAt
}

// NewRead binds a scanned RecordInfo to the reader that serves its bytes.
func NewRead(info RecordInfo, src ReaderAt) Read {
	return Read{Info: info, src: src}
}

// Record is the parsed four-field FASTQ record.
type Record struct {
	Name        string
	Description string
	Seq         []byte
	Qual        []byte
}

// Fetch reads and parses the full record.
func (r Read) Fetch() (*Record, error) {
	start, end := r.Info.ByteRange()
	buf := make([]byte, end-start)
	if _, err := r.src.ReadAt(buf, start); err != nil {
		return nil, errs.WrapIoError(err, "reading fastq record %q", r.Info.Name)
	}

	lines := bytes.SplitN(buf, lineSep(r.Info.TermLen), 4)
	if len(lines) != 4 {
		return nil, errs.NewFormatError("fastq record %q: malformed four-line span", r.Info.Name)
	}

	name, desc := splitName(lines[0][1:])
	qual := lines[3]
	if n := len(qual) - int(r.Info.TermLen); n >= 0 && n <= len(qual) {
		qual = qual[:n]
	}

	return &Record{Name: name, Description: desc, Seq: lines[1], Qual: qual}, nil
}

// QualityInts returns the per-base Phred-scale quality integers for the
// given encoding's offset byte (33 for Phred+33, 64 for Phred+64).
func (r *Record) QualityInts(offset byte) []int {
	out := make([]int, len(r.Qual))
	for i, q := range r.Qual {
		out[i] = int(q) - int(offset)
	}
	return out
}

func splitName(b []byte) (name, desc string) {
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return string(b), ""
	}
	return string(b[:i]), string(bytes.TrimLeft(b[i+1:], " \t"))
}

func lineSep(termLen int64) []byte {
	if termLen == 2 {
		return []byte("\r\n")
	}
	return []byte("\n")
}

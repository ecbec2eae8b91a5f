package fasta

import (
	"github.com/dselans/fastx/errs"
)

// ReaderAt is the minimal positioned-read capability a Sequence needs from
// its backing source: a plain os.File for uncompressed input, or a
// gzindex.Reader for gzipped input. The session package chooses which.
type ReaderAt interface {
	ReadAt(p []byte, off int64) (int, error)
}

// Cursor reports whether a forward iterator currently holds its owning
// session's exclusive cursor. Sequence depends on this instead of on the
// session package directly, since fasta sits below session in the import
// graph; Session implements it.
type Cursor interface {
	CursorActive() bool
}

// Sequence is the accessor bound to one SeqInfo and its backing reader. It
// is a small value type; all state lives in the SeqInfo and the shared
// reader, matching the "no hidden per-record resources" resource model.
type Sequence struct {
	Info   *SeqInfo
	src    ReaderAt
	cursor Cursor
}

// NewSequence binds a scanned SeqInfo to the reader that will serve its
// byte ranges.
func NewSequence(info *SeqInfo, src ReaderAt) Sequence {
	return Sequence{Info: info, src: src}
}

// WithCursor binds the session cursor Lines checks against, returning the
// updated value. Accessors that hand out a Sequence for random access wire
// this; a whole-source forward iterator that already holds the cursor
// itself has no need to.
func (s Sequence) WithCursor(c Cursor) Sequence {
	s.cursor = c
	return s
}

func (s Sequence) readRange(byteStart, byteEnd int64) ([]byte, error) {
	n := byteEnd - byteStart
	if n < 0 {
		return nil, errs.NewIndexOutOfRange("invalid byte range [%d,%d)", byteStart, byteEnd)
	}
	buf := make([]byte, n)
	if _, err := s.src.ReadAt(buf, byteStart); err != nil {
		return nil, errs.WrapIoError(err, "reading bytes [%d,%d)", byteStart, byteEnd)
	}
	return buf, nil
}

// Subseq returns the bases in the 1-based closed interval [start, end].
func (s Sequence) Subseq(start, end int64) ([]byte, error) {
	if start < 1 || end < start || end > s.Info.BaseLen {
		return nil, errs.NewIndexOutOfRange("subseq(%s, %d, %d) out of range for length %d", s.Info.Name, start, end, s.Info.BaseLen)
	}
	start0, end0 := start-1, end
	byteStart, byteEnd := s.Info.ByteRange(start0, end0)
	raw, err := s.readRange(byteStart, byteEnd)
	if err != nil {
		return nil, err
	}
	return stripTerminators(raw, s.Info.lineSegments(start0, end0)), nil
}

// Interval is a 1-based closed (start, end) pair for Fetch.
type Interval struct {
	Start, End int64
}

// Fetch concatenates the bases named by each interval, in the order given.
func (s Sequence) Fetch(intervals []Interval) ([]byte, error) {
	var out []byte
	for _, iv := range intervals {
		part, err := s.Subseq(iv.Start, iv.End)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

// Flank returns up to k bytes of sequence immediately left and right of the
// 1-based closed interval [start, end], clipped at the sequence's ends.
func (s Sequence) Flank(start, end, k int64) (left, right []byte, err error) {
	if start < 1 || end < start || end > s.Info.BaseLen {
		return nil, nil, errs.NewIndexOutOfRange("flank(%s, %d, %d) out of range for length %d", s.Info.Name, start, end, s.Info.BaseLen)
	}
	if lstart := start - k; lstart >= 1 {
		left, err = s.Subseq(lstart, start-1)
	} else if start > 1 {
		left, err = s.Subseq(1, start-1)
	}
	if err != nil {
		return nil, nil, err
	}
	if rend := end + k; rend <= s.Info.BaseLen {
		right, err = s.Subseq(end+1, rend)
	} else if end < s.Info.BaseLen {
		right, err = s.Subseq(end+1, s.Info.BaseLen)
	}
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// Full returns the complete, terminator-stripped sequence.
func (s Sequence) Full() ([]byte, error) {
	if s.Info.BaseLen == 0 {
		return nil, nil
	}
	return s.Subseq(1, s.Info.BaseLen)
}

// Reverse returns the sequence reversed, terminators stripped.
func (s Sequence) Reverse() ([]byte, error) {
	full, err := s.Full()
	if err != nil {
		return nil, err
	}
	return reverseBytes(full), nil
}

// ComplementOf returns the complement of the given bases (A<->T, C<->G,
// U->A, N->N), without reversing.
func ComplementOf(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = Complement(c)
	}
	return out
}

// Complement returns the complement of the full sequence.
func (s Sequence) Complement() ([]byte, error) {
	full, err := s.Full()
	if err != nil {
		return nil, err
	}
	return ComplementOf(full), nil
}

// Antisense returns reverse(complement(sequence)).
func (s Sequence) Antisense() ([]byte, error) {
	full, err := s.Full()
	if err != nil {
		return nil, err
	}
	return reverseBytes(ComplementOf(full)), nil
}

// Raw returns the exact bytes of the record, header through the byte
// before the next header (or EOF), with original line terminators intact.
func (s Sequence) Raw() ([]byte, error) {
	return s.readRange(s.Info.HeaderByteOffset, s.Info.NextByteOffset)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

// Lines yields each body line, terminator stripped, calling fn for each.
// It fails with CursorConflict if a whole-source forward iterator is
// already active on this sequence's session: no concurrent cursors per
// session, per spec.md §4.5.
func (s Sequence) Lines(fn func(line []byte) error) error {
	if s.cursor != nil && s.cursor.CursorActive() {
		return errs.NewCursorConflict("sequence %s: a forward iterator is already active on this session", s.Info.Name)
	}
	if s.Info.Normalized {
		return s.normalizedLines(fn)
	}
	return s.raggedLines(fn)
}

func (s Sequence) normalizedLines(fn func([]byte) error) error {
	pos := int64(0)
	for pos < s.Info.BaseLen {
		end := pos + s.Info.LineBodyLen
		if end > s.Info.BaseLen {
			end = s.Info.BaseLen
		}
		line, err := s.Subseq(pos+1, end)
		if err != nil {
			return err
		}
		if err := fn(line); err != nil {
			return err
		}
		pos = end
	}
	return nil
}

func (s Sequence) raggedLines(fn func([]byte) error) error {
	for i, rl := range s.Info.Ragged {
		var end int64
		if i+1 < len(s.Info.Ragged) {
			end = s.Info.Ragged[i+1].CumulativeBases
		} else {
			end = s.Info.BaseLen
		}
		line, err := s.Subseq(rl.CumulativeBases+1, end)
		if err != nil {
			return err
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return nil
}

package fasta

import "sort"

// RaggedLine is one entry of the sidecar table kept for sequences whose
// body lines are not uniform width. CumulativeBases is the number of bases
// already seen before this line starts.
type RaggedLine struct {
	ByteOffset      int64
	CumulativeBases int64
	TermLen         int64
}

// SeqInfo is the line-geometry record produced by Scan for one FASTA
// sequence: everything needed to translate a 0-based base index into a
// byte offset in O(1) (normalized case) or O(log lines) (ragged case).
type SeqInfo struct {
	ID                    int64
	Name                  string
	Description           string
	HeaderByteOffset      int64 // offset of the leading '>'
	DescriptionByteOffset int64 // offset of the description text within the header line, or the line end if absent
	SeqByteOffset         int64 // byte offset of the first base
	ByteLen               int64 // bytes occupied by the body, header excluded
	BaseLen               int64

	LineBodyLen int64 // bases per non-terminal line
	LineTermLen int64 // 1 (LF) or 2 (CRLF)
	Normalized  bool
	Ragged      []RaggedLine

	// NextByteOffset is where the next record's header starts, or EOF.
	// raw() returns exactly [HeaderByteOffset, NextByteOffset).
	NextByteOffset int64
}

type lineSegment struct {
	DataLen int64
	TermLen int64
}

// byteOffsetForBase translates a 0-based base index into its byte offset
// in the source file.
func (s *SeqInfo) byteOffsetForBase(i int64) int64 {
	if s.Normalized {
		linesFull := i / s.LineBodyLen
		column := i % s.LineBodyLen
		return s.SeqByteOffset + linesFull*(s.LineBodyLen+s.LineTermLen) + column
	}
	j := sort.Search(len(s.Ragged), func(j int) bool {
		return s.Ragged[j].CumulativeBases > i
	})
	if j == 0 {
		return s.SeqByteOffset
	}
	e := s.Ragged[j-1]
	return e.ByteOffset + (i - e.CumulativeBases)
}

// ByteRange returns the raw byte span [byteStart, byteEnd) in the source
// file spanning the half-open base range [start0, end0). The span includes
// any line terminators interspersed within it; callers strip those with
// lineSegments before presenting the result as sequence data.
func (s *SeqInfo) ByteRange(start0, end0 int64) (byteStart, byteEnd int64) {
	byteStart = s.byteOffsetForBase(start0)
	byteEnd = s.byteOffsetForBase(end0-1) + 1
	return byteStart, byteEnd
}

// lineSegments decomposes the half-open base range [start0, end0) into the
// sequence of (data length, terminator length) pairs describing how the
// bytes returned by ByteRange break into lines, in order. The last segment
// always has TermLen 0: ranges never include a trailing terminator, only
// terminators strictly between included bases.
func (s *SeqInfo) lineSegments(start0, end0 int64) []lineSegment {
	if s.Normalized {
		return normalizedSegments(start0, end0, s.LineBodyLen, s.LineTermLen)
	}
	return raggedSegments(start0, end0, s.Ragged, s.BaseLen)
}

func normalizedSegments(start0, end0, lineBodyLen, lineTermLen int64) []lineSegment {
	var segs []lineSegment
	pos := start0
	for pos < end0 {
		lineStart := (pos / lineBodyLen) * lineBodyLen
		lineEnd := lineStart + lineBodyLen
		segEnd := lineEnd
		if segEnd > end0 {
			segEnd = end0
		}
		term := lineTermLen
		if segEnd == end0 && segEnd != lineEnd {
			term = 0 // stopped mid-line; no terminator included
		}
		segs = append(segs, lineSegment{DataLen: segEnd - pos, TermLen: term})
		pos = segEnd
	}
	if n := len(segs); n > 0 {
		segs[n-1].TermLen = 0
	}
	return segs
}

func raggedSegments(start0, end0 int64, ragged []RaggedLine, baseLen int64) []lineSegment {
	var segs []lineSegment
	pos := start0
	for pos < end0 {
		j := sort.Search(len(ragged), func(j int) bool {
			return ragged[j].CumulativeBases > pos
		})
		var lineBases int64
		if j < len(ragged) {
			lineBases = ragged[j].CumulativeBases - ragged[j-1].CumulativeBases
		} else {
			lineBases = baseLen - ragged[j-1].CumulativeBases
		}
		lineStart := ragged[j-1].CumulativeBases
		lineEnd := lineStart + lineBases
		segEnd := lineEnd
		if segEnd > end0 {
			segEnd = end0
		}
		term := ragged[j-1].TermLen
		if segEnd != lineEnd {
			term = 0
		}
		segs = append(segs, lineSegment{DataLen: segEnd - pos, TermLen: term})
		pos = segEnd
	}
	if n := len(segs); n > 0 {
		segs[n-1].TermLen = 0
	}
	return segs
}

// stripTerminators concatenates the data portions of raw according to segs,
// discarding terminator bytes.
func stripTerminators(raw []byte, segs []lineSegment) []byte {
	out := make([]byte, 0, len(raw))
	pos := 0
	for _, seg := range segs {
		out = append(out, raw[pos:pos+int(seg.DataLen)]...)
		pos += int(seg.DataLen) + int(seg.TermLen)
	}
	return out
}

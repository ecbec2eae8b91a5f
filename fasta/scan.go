package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/dselans/fastx/errs"
)

// scanState is the explicit state machine the scanner walks through for
// each record, replacing any implicit "current mode" tracking.
type scanState int

const (
	stateNeedHeader scanState = iota
	stateInBody
	stateAtEnd
)

type lineRec struct {
	byteOffset int64
	baseLen    int64
	termLen    int64
}

// Scan performs the single required linear pass over a FASTA stream,
// producing one SeqInfo per record in file order. Blank lines before the
// first header are tolerated and skipped.
func Scan(r io.Reader, log *logrus.Entry) ([]SeqInfo, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("pkg", "fasta")

	br := bufio.NewReaderSize(r, 64*1024)

	var (
		state  = stateNeedHeader
		infos  []SeqInfo
		offset int64
		cur    *SeqInfo
		lines  []lineRec
	)

	closeCurrent := func() {
		if cur == nil {
			return
		}
		finishRecord(cur, lines)
		infos = append(infos, *cur)
		cur = nil
		lines = nil
	}

	for state != stateAtEnd {
		raw, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, errs.WrapIoError(err, "reading fasta line at offset %d", offset)
		}
		if len(raw) == 0 {
			state = stateAtEnd
			break
		}

		term := int64(0)
		body := raw
		if body[len(body)-1] == '\n' {
			term = 1
			body = body[:len(body)-1]
			if len(body) > 0 && body[len(body)-1] == '\r' {
				term = 2
				body = body[:len(body)-1]
			}
		}
		lineLen := int64(len(raw))

		if len(body) > 0 && body[0] == '>' {
			closeCurrent()
			name, desc, descRel := splitHeader(body[1:])
			cur = &SeqInfo{
				ID:                    int64(len(infos) + 1),
				Name:                  name,
				Description:           desc,
				HeaderByteOffset:      offset,
				DescriptionByteOffset: offset + 1 + descRel,
				SeqByteOffset:         offset + lineLen,
			}
			state = stateInBody
		} else if cur != nil {
			lines = append(lines, lineRec{byteOffset: offset, baseLen: int64(len(body)), termLen: term})
		} else if len(body) != 0 {
			return nil, errs.NewFormatError("fasta data before first header at offset %d", offset)
		}

		offset += lineLen
		if err == io.EOF {
			state = stateAtEnd
			break
		}
	}
	closeCurrent()

	for i := range infos {
		if i+1 < len(infos) {
			infos[i].NextByteOffset = infos[i+1].HeaderByteOffset
		} else {
			infos[i].NextByteOffset = offset
		}
	}

	log.WithField("count", len(infos)).Debug("fasta scan complete")
	return infos, nil
}

// splitHeader separates a header line's name token from its optional
// description, per `>NAME [ SP DESCRIPTION ]`. descOffset is the
// description's byte offset relative to the start of rest (i.e. right
// after the leading '>'), landing on the line end when there is no
// description.
func splitHeader(rest []byte) (name, desc string, descOffset int64) {
	i := bytes.IndexByte(rest, ' ')
	if i < 0 {
		return string(rest), "", int64(len(rest))
	}
	trimmed := bytes.TrimLeft(rest[i+1:], " \t")
	descOffset = int64(i + 1 + (len(rest[i+1:]) - len(trimmed)))
	return string(rest[:i]), string(trimmed), descOffset
}

// finishRecord computes the aggregate geometry fields for a record from
// its recorded body lines, deciding whether it is normalized and, if not,
// building the ragged sidecar table.
func finishRecord(s *SeqInfo, lines []lineRec) {
	if len(lines) == 0 {
		s.Normalized = true
		return
	}

	s.LineBodyLen = lines[0].baseLen
	s.LineTermLen = lines[0].termLen

	normalized := true
	for i, l := range lines {
		last := i == len(lines)-1
		if !last && (l.baseLen != s.LineBodyLen || l.termLen != s.LineTermLen) {
			normalized = false
		}
		if last && l.baseLen > s.LineBodyLen {
			normalized = false
		}
	}

	var baseLen int64
	for _, l := range lines {
		baseLen += l.baseLen
	}
	s.BaseLen = baseLen
	s.Normalized = normalized

	last := lines[len(lines)-1]
	s.ByteLen = (last.byteOffset + last.baseLen + last.termLen) - s.SeqByteOffset

	if !normalized {
		ragged := make([]RaggedLine, 0, len(lines))
		var cum int64
		for _, l := range lines {
			ragged = append(ragged, RaggedLine{ByteOffset: l.byteOffset, CumulativeBases: cum, TermLen: l.termLen})
			cum += l.baseLen
		}
		s.Ragged = ragged
	}
}

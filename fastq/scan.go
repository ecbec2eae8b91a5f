package fastq

import (
	"bufio"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/dselans/fastx/errs"
)

// scanState is the explicit four-line record state machine, replacing any
// implicit "line number mod 4" tracking.
type scanState int

const (
	stateNeedName scanState = iota
	stateNeedSeq
	stateNeedPlus
	stateNeedQual
)

// ScanResult is everything Scan learns in its single pass.
type ScanResult struct {
	Records    []RecordInfo
	MinQual    byte
	MaxQual    byte
	Encodings  []Encoding
}

// Scan performs the one required linear pass over a FASTQ stream,
// producing one RecordInfo per record plus the observed quality-byte
// interval (used to derive the encoding candidate set).
func Scan(r io.Reader, log *logrus.Entry) (*ScanResult, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("pkg", "fastq")

	br := bufio.NewReaderSize(r, 64*1024)

	var (
		state   = stateNeedName
		offset  int64
		records []RecordInfo
		cur     RecordInfo
		seqLen  int64
		minQual byte = 255
		maxQual byte
		sawAny  bool
	)

	for {
		raw, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, errs.WrapIoError(err, "reading fastq line at offset %d", offset)
		}
		if len(raw) == 0 {
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

		switch state {
		case stateNeedName:
			if len(body) == 0 || body[0] != '@' {
				return nil, errs.NewFormatError("fastq record at offset %d: expected '@' name line", offset)
			}
			readName, _ := splitName(body[1:])
			cur = RecordInfo{
				ID:         int64(len(records) + 1),
				Name:       readName,
				NameOffset: offset,
				NameLen:    int64(len(body)),
				SeqOffset:  offset + lineLen,
				TermLen:    term,
			}
			state = stateNeedSeq
		case stateNeedSeq:
			seqLen = int64(len(body))
			cur.SeqLen = seqLen
			state = stateNeedPlus
		case stateNeedPlus:
			if len(body) == 0 || body[0] != '+' {
				return nil, errs.NewFormatError("fastq record %q at offset %d: expected '+' separator line", cur.Name, offset)
			}
			cur.QualOffset = offset + lineLen
			state = stateNeedQual
		case stateNeedQual:
			if int64(len(body)) != seqLen {
				return nil, errs.NewFormatError("fastq record %q: quality length %d != sequence length %d", cur.Name, len(body), seqLen)
			}
			recMin, recMax := byte(255), byte(0)
			for _, q := range body {
				if q < minQual {
					minQual = q
				}
				if q > maxQual {
					maxQual = q
				}
				if q < recMin {
					recMin = q
				}
				if q > recMax {
					recMax = q
				}
			}
			if len(body) > 0 {
				cur.QualMin, cur.QualMax = recMin, recMax
			}
			sawAny = true
			records = append(records, cur)
			state = stateNeedName
		}

		offset += lineLen
		if err == io.EOF {
			break
		}
	}

	if state != stateNeedName {
		return nil, errs.NewFormatError("fastq stream ended mid-record")
	}

	result := &ScanResult{Records: records}
	if sawAny {
		result.MinQual, result.MaxQual = minQual, maxQual
		result.Encodings = DetectEncodings(minQual, maxQual)
	} else {
		result.Encodings = []Encoding{EncodingUnknown}
	}

	log.WithField("count", len(records)).Debug("fastq scan complete")
	return result, nil
}

// Package fastq indexes and accesses FASTQ files: four-line records
// addressed by id or name, with quality-encoding detection.
package fastq

// Encoding is one of the Phred/Solexa quality-encoding candidates a FASTQ
// file's observed quality byte range is consistent with.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingSanger
	EncodingIllumina18
	EncodingPacBioHiFi
	EncodingSolexa
	EncodingIllumina13
	EncodingIllumina15
)

func (e Encoding) String() string {
	switch e {
	case EncodingSanger:
		return "Sanger Phred+33"
	case EncodingIllumina18:
		return "Illumina 1.8+ Phred+33"
	case EncodingPacBioHiFi:
		return "PacBio HiFi Phred+33"
	case EncodingSolexa:
		return "Solexa Solexa+64"
	case EncodingIllumina13:
		return "Illumina 1.3+ Phred+64"
	case EncodingIllumina15:
		return "Illumina 1.5+ Phred+64"
	default:
		return "Unknown"
	}
}

type encodingRange struct {
	enc      Encoding
	min, max byte
}

// encodingCandidates is the observed-interval table from spec.md §4.4.
var encodingCandidates = []encodingRange{
	{EncodingSanger, 33, 73},
	{EncodingIllumina18, 33, 74},
	{EncodingPacBioHiFi, 33, 93},
	{EncodingSolexa, 59, 104},
	{EncodingIllumina13, 64, 104},
	{EncodingIllumina15, 66, 104},
}

// DetectEncodings returns every candidate encoding whose declared interval
// contains [obsMin, obsMax], or [EncodingUnknown] if none do.
func DetectEncodings(obsMin, obsMax byte) []Encoding {
	var out []Encoding
	for _, c := range encodingCandidates {
		if obsMin >= c.min && obsMax <= c.max {
			out = append(out, c.enc)
		}
	}
	if len(out) == 0 {
		return []Encoding{EncodingUnknown}
	}
	return out
}

// RecordInfo is the indexed location of one FASTQ record, enabling random
// access to its contiguous byte span without reparsing the file.
type RecordInfo struct {
	ID         int64
	Name       string
	NameOffset int64
	NameLen    int64
	SeqOffset  int64
	SeqLen     int64
	QualOffset int64
	TermLen    int64 // line terminator length, uniform across the file
	QualMin    byte  // minimum quality byte observed in this record
	QualMax    byte  // maximum quality byte observed in this record
}

// ByteRange returns the contiguous span [NameOffset, end) covering the full
// four-line record, including all terminators, per spec.md §4.4.
func (r RecordInfo) ByteRange() (start, end int64) {
	end = r.QualOffset + r.SeqLen + r.TermLen
	return r.NameOffset, end
}

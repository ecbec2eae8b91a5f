package fasta

// SeqType is the inferred molecule type of a sequence.
type SeqType int

const (
	TypeUnknown SeqType = iota
	TypeDNA
	TypeRNA
	TypeProtein
)

func (t SeqType) String() string {
	switch t {
	case TypeDNA:
		return "DNA"
	case TypeRNA:
		return "RNA"
	case TypeProtein:
		return "protein"
	default:
		return "unknown"
	}
}

// InferType classifies a sampled portion of sequence data: DNA if every
// non-ambiguity base is in {A,C,G,T}, RNA if {A,C,G,U} with at least one U,
// protein otherwise.
func InferType(sample []byte) SeqType {
	var hasU bool
	for _, b := range sample {
		switch upper(b) {
		case 'A', 'C', 'G', 'T', 'N':
		case 'U':
			hasU = true
		default:
			return TypeProtein
		}
	}
	if hasU {
		return TypeRNA
	}
	return TypeDNA
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// complementTable maps a base to its complement: A<->T, C<->G, U->A
// (RNA), N->N. Anything else is returned unchanged (protein data or
// ambiguity codes pass through raw()/subseq() but never through
// complement()/antisense() in practice).
var complementTable = buildComplementTable()

func buildComplementTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	pairs := map[byte]byte{
		'A': 'T', 'T': 'A',
		'C': 'G', 'G': 'C',
		'U': 'A',
		'N': 'N',
	}
	for k, v := range pairs {
		t[k] = v
		t[upper(k)|0x20] = upper(v) | 0x20 // lowercase mirror
	}
	return t
}

// Complement returns the complement of b per the A<->T, C<->G, U->A, N->N
// mapping used by complement()/antisense().
func Complement(b byte) byte {
	return complementTable[b]
}

package fastq

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memReader []byte

func (m memReader) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(m).ReadAt(p, off)
}

func TestScanAndFetch(t *testing.T) {
	data := "@read1 first\nACGTACGT\n+\nIIIIIIII\n@read2\nTTTT\n+read2\nJJJJ\n"
	res, err := Scan(strings.NewReader(data), nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	assert.Equal(t, "read1", res.Records[0].Name)
	assert.Equal(t, int64(8), res.Records[0].SeqLen)

	r := NewRead(res.Records[0], memReader(data))
	rec, err := r.Fetch()
	require.NoError(t, err)
	assert.Equal(t, "read1", rec.Name)
	assert.Equal(t, "first", rec.Description)
	assert.Equal(t, "ACGTACGT", string(rec.Seq))
	assert.Equal(t, "IIIIIIII", string(rec.Qual))

	r2 := NewRead(res.Records[1], memReader(data))
	rec2, err := r2.Fetch()
	require.NoError(t, err)
	assert.Equal(t, "read2", rec2.Name)
	assert.Equal(t, "TTTT", string(rec2.Seq))
	assert.Equal(t, "JJJJ", string(rec2.Qual))
}

func TestQualityInts(t *testing.T) {
	rec := &Record{Qual: []byte{'!', 'I'}}
	ints := rec.QualityInts(33)
	assert.Equal(t, []int{0, 40}, ints)
}

func TestDetectEncodings(t *testing.T) {
	encs := DetectEncodings(33, 73)
	assert.Contains(t, encs, EncodingSanger)

	encs = DetectEncodings(64, 104)
	assert.Contains(t, encs, EncodingIllumina13)

	encs = DetectEncodings(0, 255)
	assert.Equal(t, []Encoding{EncodingUnknown}, encs)
}

func TestScanMalformedQualityLength(t *testing.T) {
	data := "@read1\nACGT\n+\nII\n"
	_, err := Scan(strings.NewReader(data), nil)
	assert.Error(t, err)
}

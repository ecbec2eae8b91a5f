package fasta

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memReader adapts a byte slice to ReaderAt for tests.
type memReader []byte

func (m memReader) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(m).ReadAt(p, off)
}

func TestScanAndSubseq(t *testing.T) {
	data := ">seq1 first sequence\nACGTACGTAC\nGTACGTACGT\nACGT\n>seq2 second\nTTTT\n"
	infos, err := Scan(strings.NewReader(data), nil)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "seq1", infos[0].Name)
	assert.Equal(t, "first sequence", infos[0].Description)
	assert.Equal(t, int64(24), infos[0].BaseLen)
	assert.True(t, infos[0].Normalized)

	assert.Equal(t, "seq2", infos[1].Name)
	assert.Equal(t, int64(4), infos[1].BaseLen)

	seq := NewSequence(&infos[0], memReader(data))
	full, err := seq.Full()
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGTACGTACGTACGTACGT", string(full))

	sub, err := seq.Subseq(5, 8)
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(sub))

	seq2 := NewSequence(&infos[1], memReader(data))
	full2, err := seq2.Full()
	require.NoError(t, err)
	assert.Equal(t, "TTTT", string(full2))
}

func TestSubseqOutOfRange(t *testing.T) {
	data := ">seq1\nACGT\n"
	infos, err := Scan(strings.NewReader(data), nil)
	require.NoError(t, err)
	seq := NewSequence(&infos[0], memReader(data))

	_, err = seq.Subseq(0, 2)
	assert.Error(t, err)

	_, err = seq.Subseq(1, 100)
	assert.Error(t, err)
}

func TestRaggedLines(t *testing.T) {
	data := ">seq1\nACGTA\nCG\nACGTACGT\n"
	infos, err := Scan(strings.NewReader(data), nil)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.False(t, infos[0].Normalized)
	assert.Equal(t, int64(15), infos[0].BaseLen)

	seq := NewSequence(&infos[0], memReader(data))
	full, err := seq.Full()
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGACGTACGT", string(full))

	sub, err := seq.Subseq(6, 10)
	require.NoError(t, err)
	assert.Equal(t, "CGACG", string(sub))
}

func TestReverseComplementAntisense(t *testing.T) {
	data := ">seq1\nACGT\n"
	infos, err := Scan(strings.NewReader(data), nil)
	require.NoError(t, err)
	seq := NewSequence(&infos[0], memReader(data))

	rev, err := seq.Reverse()
	require.NoError(t, err)
	assert.Equal(t, "TGCA", string(rev))

	comp, err := seq.Complement()
	require.NoError(t, err)
	assert.Equal(t, "TGCA", string(comp))

	anti, err := seq.Antisense()
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(anti))
}

func TestFlank(t *testing.T) {
	data := ">seq1\nAAACCCGGGTTT\n"
	infos, err := Scan(strings.NewReader(data), nil)
	require.NoError(t, err)
	seq := NewSequence(&infos[0], memReader(data))

	left, right, err := seq.Flank(5, 8, 2)
	require.NoError(t, err)
	assert.Equal(t, "AC", string(left))
	assert.Equal(t, "GT", string(right))
}

func TestInferType(t *testing.T) {
	assert.Equal(t, TypeDNA, InferType([]byte("ACGTN")))
	assert.Equal(t, TypeRNA, InferType([]byte("ACGUN")))
	assert.Equal(t, TypeProtein, InferType([]byte("ACDEFGHIK")))
}

func TestSplitHeaderDescriptionOffset(t *testing.T) {
	data := ">seq1   first sequence\nACGT\n>seq2\nTTTT\n"
	infos, err := Scan(strings.NewReader(data), nil)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "first sequence", infos[0].Description)
	assert.Equal(t, int64(8), infos[0].DescriptionByteOffset)
	assert.Equal(t, string(data[infos[0].DescriptionByteOffset:infos[0].DescriptionByteOffset+int64(len(infos[0].Description))]), infos[0].Description)

	assert.Equal(t, "", infos[1].Description)
	assert.Equal(t, int64(len(">seq2")), infos[1].DescriptionByteOffset-infos[1].HeaderByteOffset)
}

type fakeCursor struct{ active bool }

func (f fakeCursor) CursorActive() bool { return f.active }

func TestLinesConflictsOnlyWhenCursorBound(t *testing.T) {
	data := ">seq1\nACGT\nACGT\n"
	infos, err := Scan(strings.NewReader(data), nil)
	require.NoError(t, err)

	unbound := NewSequence(&infos[0], memReader(data))
	assert.NoError(t, unbound.Lines(func([]byte) error { return nil }))

	bound := unbound.WithCursor(fakeCursor{active: true})
	assert.Error(t, bound.Lines(func([]byte) error { return nil }))

	idle := unbound.WithCursor(fakeCursor{active: false})
	var lines []string
	err = idle.Lines(func(l []byte) error {
		lines = append(lines, string(l))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ACGT", "ACGT"}, lines)
}

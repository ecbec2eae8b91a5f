package index

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dselans/fastx/fasta"
	"github.com/dselans/fastx/fastq"
	"github.com/dselans/fastx/gzindex"
	"github.com/dselans/fastx/stats"
)

func openFresh(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.fa.fxi")
	res, err := Open(path, 100, 1000, nil)
	require.NoError(t, err)
	require.False(t, res.Stale)
	return res.Store
}

func TestBuildSealRoundTrip(t *testing.T) {
	st := openFresh(t)
	defer st.Close()

	require.NoError(t, st.BeginBuild(FormatFASTA, 100, 1000, 0))

	tx, err := st.BeginTx()
	require.NoError(t, err)

	info := &fasta.SeqInfo{
		Name:                  "chr1",
		Description:           "test chromosome",
		HeaderByteOffset:      0,
		DescriptionByteOffset: 5,
		SeqByteOffset:         5,
		NextByteOffset:        15,
		ByteLen:               10,
		BaseLen:               8,
		LineBodyLen:           8,
		LineTermLen:           1,
		Normalized:            true,
	}
	comp := Composition{A: 2, C: 2, G: 2, T: 2}
	id, err := st.InsertSeq(tx, info, comp)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.NoError(t, tx.Commit())

	require.NoError(t, st.Seal())

	got, err := st.GetSeqByName("chr1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.BaseLen)
	assert.True(t, got.Normalized)
	assert.Equal(t, "test chromosome", got.Description)
	assert.Equal(t, int64(15), got.NextByteOffset)

	n, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpenDetectsStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.fa.fxi")
	res, err := Open(path, 100, 1000, nil)
	require.NoError(t, err)
	require.NoError(t, res.Store.BeginBuild(FormatFASTA, 100, 1000, 0))
	require.NoError(t, res.Store.Seal())
	require.NoError(t, res.Store.Close())

	res2, err := Open(path, 200, 2000, nil)
	require.NoError(t, err)
	defer res2.Store.Close()
	assert.True(t, res2.Stale)
	assert.Error(t, res2.StaleErr)
}

func TestAggregateCache(t *testing.T) {
	st := openFresh(t)
	defer st.Close()
	require.NoError(t, st.BeginBuild(FormatFASTA, 100, 1000, 0))

	_, ok, err := st.GetAggregate()
	require.NoError(t, err)
	assert.False(t, ok)

	agg := stats.Aggregate{Size: 42, Count: 3}
	require.NoError(t, st.SetAggregate(agg))

	got, ok, err := st.GetAggregate()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, agg, got)

	require.NoError(t, st.DeleteAggregate())
	_, ok, err = st.GetAggregate()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGziCheckpointRoundTrip(t *testing.T) {
	st := openFresh(t)
	defer st.Close()
	require.NoError(t, st.BeginBuild(FormatFASTA, 100, 1000, 0))

	tx, err := st.BeginTx()
	require.NoError(t, err)

	var cp gzindex.Checkpoint
	cp.UncompressedOffset = 0
	cp.CompressedOffset = 0
	cp.Window[0] = 0xAB
	require.NoError(t, st.InsertCheckpoint(tx, cp))

	cp2 := gzindex.Checkpoint{UncompressedOffset: 1 << 20, CompressedOffset: 42, BitRemainder: 3, BitBuffer: 5}
	require.NoError(t, st.InsertCheckpoint(tx, cp2))
	require.NoError(t, tx.Commit())

	idx, err := st.LoadIndex()
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())

	got, ok := idx.ClosestBefore(1 << 20)
	require.True(t, ok)
	assert.Equal(t, int64(42), got.CompressedOffset)
	assert.Equal(t, byte(3), got.BitRemainder)
}

func TestInsertAndGetRead(t *testing.T) {
	st := openFresh(t)
	defer st.Close()
	require.NoError(t, st.BeginBuild(FormatFASTQ, 100, 1000, 0))

	tx, err := st.BeginTx()
	require.NoError(t, err)

	rec := fastq.RecordInfo{
		Name:       "read1",
		NameOffset: 0,
		NameLen:    5,
		SeqOffset:  6,
		SeqLen:     8,
		QualOffset: 16,
		TermLen:    1,
		QualMin:    35,
		QualMax:    40,
	}
	comp := Composition{A: 2, C: 2, G: 2, T: 2}
	require.NoError(t, st.InsertRead(tx, 1, rec, comp))
	require.NoError(t, tx.Commit())
	require.NoError(t, st.Seal())

	byID, err := st.GetReadByID(1)
	require.NoError(t, err)
	assert.Equal(t, "read1", byID.Name)
	assert.Equal(t, int64(8), byID.SeqLen)
	assert.Equal(t, byte(35), byID.QualMin)
	assert.Equal(t, byte(40), byID.QualMax)

	ra, err := st.AggregateReads()
	require.NoError(t, err)
	assert.Equal(t, 1, ra.Count)
	assert.Equal(t, int64(8), ra.TotalBases)
	assert.Equal(t, byte(35), ra.QualMin)
	assert.Equal(t, byte(40), ra.QualMax)
	assert.Equal(t, int64(2), ra.Composition.A)

	byName, err := st.GetReadByName("read1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), byName.ID)

	_, err = st.GetReadByName("missing")
	assert.Error(t, err)

	names, err := st.ListReadNames()
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "read1", names[0].Name)
	assert.Equal(t, 8, names[0].Length)
}

func TestExportFai(t *testing.T) {
	st := openFresh(t)
	defer st.Close()
	require.NoError(t, st.BeginBuild(FormatFASTA, 100, 1000, 0))

	tx, err := st.BeginTx()
	require.NoError(t, err)
	info := &fasta.SeqInfo{
		Name:          "chr1",
		SeqByteOffset: 6,
		BaseLen:       8,
		LineBodyLen:   8,
		LineTermLen:   1,
	}
	_, err = st.InsertSeq(tx, info, Composition{})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, st.Seal())

	var buf bytes.Buffer
	require.NoError(t, st.ExportFai(&buf))
	assert.Equal(t, "chr1\t8\t6\t8\t9\n", buf.String())
}

func TestDefaultSidecarPath(t *testing.T) {
	assert.Equal(t, "/data/genome.fa.fxi", DefaultSidecarPath("/data/genome.fa"))
}

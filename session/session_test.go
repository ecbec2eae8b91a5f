package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dselans/fastx/fasta"
)

func writeFasta(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "source.fa")
	data := ">chr1 test chromosome\nACGTACGTAC\nGTACGTACGT\n>chr2\nTTTTGGGG\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestOpenBuildsIndexAndServesAccessors(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir)

	sess, err := Open(path, Options{})
	require.NoError(t, err)
	defer sess.Close()

	assert.Equal(t, FormatFASTA, sess.Format())

	count, err := sess.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	seq, err := sess.Sequence("chr1")
	require.NoError(t, err)
	full, err := seq.Full()
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGTACGTACGTACGT", string(full))

	view, err := sess.Keys()
	require.NoError(t, err)
	assert.Equal(t, 2, view.Len())
}

func TestReopenAttachesWithoutRebuild(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir)

	sess1, err := Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, sess1.Close())

	sess2, err := Open(path, Options{})
	require.NoError(t, err)
	defer sess2.Close()

	count, err := sess2.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBeginIterateCursorConflict(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir)

	sess, err := Open(path, Options{})
	require.NoError(t, err)
	defer sess.Close()

	release, err := sess.BeginIterate()
	require.NoError(t, err)

	_, err = sess.BeginIterate()
	assert.Error(t, err)

	release()

	_, err = sess.BeginIterate()
	assert.NoError(t, err)
}

func TestRandomAccessConflictsWithLiveIterator(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir)

	sess, err := Open(path, Options{})
	require.NoError(t, err)
	defer sess.Close()

	release, err := sess.BeginIterate()
	require.NoError(t, err)

	_, err = sess.Sequence("chr1")
	assert.Error(t, err)
	_, err = sess.SequenceByID(1)
	assert.Error(t, err)

	release()

	_, err = sess.Sequence("chr1")
	assert.NoError(t, err)
}

func TestIterateSequencesVisitsAllInOrderAndHoldsCursor(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir)

	sess, err := Open(path, Options{})
	require.NoError(t, err)
	defer sess.Close()

	var ids []int64
	var names []string
	err = sess.IterateSequences(func(id int64, seq fasta.Sequence) error {
		ids = append(ids, id)
		names = append(names, seq.Info.Name)

		_, accessErr := sess.Sequence(seq.Info.Name)
		assert.Error(t, accessErr, "random access during iteration must conflict")

		return seq.Lines(func([]byte) error { return nil })
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
	assert.Equal(t, []string{"chr1", "chr2"}, names)

	_, err = sess.Sequence("chr1")
	assert.NoError(t, err, "cursor must be released once IterateSequences returns")
}

func TestLinesConflictsWithLiveIterator(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir)

	sess, err := Open(path, Options{})
	require.NoError(t, err)
	defer sess.Close()

	release, err := sess.BeginIterate()
	require.NoError(t, err)
	defer release()

	seq, err := sess.store.GetSeqByName("chr1")
	require.NoError(t, err)
	bound := fasta.NewSequence(seq, sess.readerAt).WithCursor(sess)

	err = bound.Lines(func([]byte) error { return nil })
	assert.Error(t, err)
}

func TestAggregateStats(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir)

	sess, err := Open(path, Options{})
	require.NoError(t, err)
	defer sess.Close()

	agg, err := sess.AggregateStats()
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Count)
	assert.Equal(t, int64(28), agg.Size)
	assert.Equal(t, int64(5), agg.Composition.A)
	assert.Equal(t, int64(5), agg.Composition.C)
	assert.Equal(t, int64(9), agg.Composition.G)
	assert.Equal(t, int64(9), agg.Composition.T)
	assert.Equal(t, int64(8), agg.MinLength)
	assert.Equal(t, int64(20), agg.MaxLength)
}

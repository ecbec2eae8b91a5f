package inflate

import (
	"bytes"
	"compress/flate"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReaderRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 2000))
	compressed := compress(t, data)

	r := NewReader(bytes.NewReader(compressed))
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCheckpointResume(t *testing.T) {
	data := []byte(strings.Repeat("ACGTACGTACGTACGTNNNNACGT", 10000))
	compressed := compress(t, data)

	ch := make(chan *Checkpoint, 1024)
	d := NewCheckpointingReader(bytes.NewReader(compressed), 0, 8192, ch)
	full, err := io.ReadAll(d)
	require.NoError(t, err)
	assert.Equal(t, data, full)
	close(ch)

	var checkpoints []*Checkpoint
	for cp := range ch {
		checkpoints = append(checkpoints, cp)
	}
	require.NotEmpty(t, checkpoints)

	// Resume from a mid-stream checkpoint and verify the tail matches.
	mid := checkpoints[len(checkpoints)/2]
	tailReader := bytes.NewReader(compressed[mid.InOffset:])
	resumeCh := make(chan *Checkpoint, 1024)
	rd := Resume(tailReader, mid, 8192, resumeCh)
	tail, err := io.ReadAll(rd)
	require.NoError(t, err)

	assert.Equal(t, data[mid.OutOffset:], tail)
	assert.Equal(t, uint8(mid.Nb%8), mid.BitRemainder())
}

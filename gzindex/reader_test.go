package gzindex

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReaderBuildAndReadAt(t *testing.T) {
	data := []byte(strings.Repeat("ACGTACGTNNNNACGTACGT", 5000))
	src := bytes.NewReader(gzipBytes(t, data))

	r := NewReader(src, nil)
	require.NoError(t, r.Build(4096))

	assert.Equal(t, int64(len(data)), r.Size())
	assert.True(t, r.Index.Len() > 1, "expected more than one checkpoint for a multi-interval stream")

	cases := []struct {
		off int64
		n   int
	}{
		{0, 10},
		{4096, 50},
		{int64(len(data)) - 20, 20},
	}
	for _, c := range cases {
		buf := make([]byte, c.n)
		n, err := r.ReadAt(buf, c.off)
		require.NoError(t, err)
		assert.Equal(t, c.n, n)
		assert.Equal(t, data[c.off:c.off+int64(c.n)], buf)
	}
}

func TestReaderReadAtPastEnd(t *testing.T) {
	data := []byte(strings.Repeat("ACGT", 100))
	src := bytes.NewReader(gzipBytes(t, data))

	r := NewReader(src, nil)
	require.NoError(t, r.Build(0))

	buf := make([]byte, 50)
	n, err := r.ReadAt(buf, int64(len(data))-10)
	assert.Equal(t, 10, n)
	assert.Equal(t, data[len(data)-10:], buf[:10])
	assert.ErrorIs(t, err, io.EOF)
}

package session

import (
	"fmt"
	"hash/fnv"

	"github.com/dselans/fastx/gzindex"
)

// cachedReaderAt wraps a gzindex.Reader with a decompressed-window LRU and
// singleflight-deduplicated reads: concurrent requests that resolve to the
// same checkpoint and byte range are collapsed into one decompression pass,
// and results are cached so a repeated request never redecompresses at all.
type cachedReaderAt struct {
	gz *gzindex.Reader
	s  *Session
}

func newCachedReaderAt(s *Session, gz *gzindex.Reader) *cachedReaderAt {
	return &cachedReaderAt{gz: gz, s: s}
}

func (c *cachedReaderAt) ReadAt(p []byte, off int64) (int, error) {
	key := cacheKey(off, int64(len(p)))

	if cached, ok := c.s.cache.Get(key); ok {
		n := copy(p, cached)
		return n, nil
	}

	v, err, _ := c.s.sf.Do(fmt.Sprintf("%d", key), func() (interface{}, error) {
		buf := make([]byte, len(p))
		n, rerr := c.gz.ReadAt(buf, off)
		return readResult{buf: buf[:n], err: rerr}, nil
	})
	res := v.(readResult)
	if err == nil && res.err == nil {
		c.s.cache.Put(key, res.buf)
	}
	n := copy(p, res.buf)
	if err != nil {
		return n, err
	}
	return n, res.err
}

type readResult struct {
	buf []byte
	err error
}

// cacheKey folds a (offset, length) byte range into the int key
// windowCache indexes by.
func cacheKey(off, n int64) int {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d:%d", off, n)
	return int(h.Sum32())
}

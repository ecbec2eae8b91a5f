package gzindex

import (
	"bufio"
	"encoding/binary"
	"hash/crc32"
	"io"
	"time"

	"github.com/dselans/fastx/errs"
)

const (
	gzipID1     = 0x1f
	gzipID2     = 0x8b
	gzipDeflate = 8
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4
	flagHdrCrc  = 1 << 1
)

var le = binary.LittleEndian

// Header is the subset of RFC 1952 gzip member metadata fastx surfaces.
// Only the first member's header is kept; concatenated members are treated
// as one logical stream per spec.md's gzip access contract.
type Header struct {
	Name    string
	Comment string
	ModTime time.Time
	OS      byte
}

// tellReader wraps a bufio.Reader and tracks how many compressed bytes have
// been consumed from it, so checkpoints can record an exact resume offset.
type tellReader struct {
	r      *bufio.Reader
	offset int64
}

func newTellReader(r io.Reader) *tellReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &tellReader{r: br}
	}
	return &tellReader{r: bufio.NewReader(r)}
}

func (t *tellReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.offset += int64(n)
	return n, err
}

func (t *tellReader) ReadByte() (byte, error) {
	b, err := t.r.ReadByte()
	if err == nil {
		t.offset++
	}
	return b, err
}

func (t *tellReader) Offset() int64 { return t.offset }

// readHeader consumes one gzip member header from tr and returns the parsed
// Header.
func readHeader(tr *tellReader) (Header, error) {
	var hdr Header
	var buf [512]byte

	if _, err := io.ReadFull(tr, buf[:10]); err != nil {
		return hdr, errs.WrapGzipError(err, "reading gzip member header")
	}
	if buf[0] != gzipID1 || buf[1] != gzipID2 || buf[2] != gzipDeflate {
		return hdr, errs.NewGzipError("not a gzip/DEFLATE stream")
	}
	flg := buf[3]
	if t := int64(le.Uint32(buf[4:8])); t > 0 {
		hdr.ModTime = time.Unix(t, 0)
	}
	hdr.OS = buf[9]
	digest := crc32.ChecksumIEEE(buf[:10])

	if flg&flagExtra != 0 {
		if _, err := io.ReadFull(tr, buf[:2]); err != nil {
			return hdr, errs.WrapGzipError(err, "reading gzip extra field length")
		}
		digest = crc32.Update(digest, crc32.IEEETable, buf[:2])
		data := make([]byte, le.Uint16(buf[:2]))
		if _, err := io.ReadFull(tr, data); err != nil {
			return hdr, errs.WrapGzipError(err, "reading gzip extra field")
		}
		digest = crc32.Update(digest, crc32.IEEETable, data)
	}

	if flg&flagName != 0 {
		s, d, err := readCString(tr, &buf)
		if err != nil {
			return hdr, err
		}
		hdr.Name = s
		digest = crc32.Update(digest, crc32.IEEETable, d)
	}

	if flg&flagComment != 0 {
		s, d, err := readCString(tr, &buf)
		if err != nil {
			return hdr, err
		}
		hdr.Comment = s
		digest = crc32.Update(digest, crc32.IEEETable, d)
	}

	if flg&flagHdrCrc != 0 {
		if _, err := io.ReadFull(tr, buf[:2]); err != nil {
			return hdr, errs.WrapGzipError(err, "reading gzip header crc")
		}
		if le.Uint16(buf[:2]) != uint16(digest) {
			return hdr, errs.NewGzipError("gzip header crc mismatch")
		}
	}

	return hdr, nil
}

// readCString reads a NUL-terminated, Latin-1 encoded string, returning the
// decoded string and the raw bytes consumed (including the NUL) for CRC
// accumulation.
func readCString(tr *tellReader, buf *[512]byte) (string, []byte, error) {
	for i := 0; ; i++ {
		if i >= len(buf) {
			return "", nil, errs.NewGzipError("gzip header string too long")
		}
		b, err := tr.ReadByte()
		if err != nil {
			return "", nil, errs.WrapGzipError(err, "reading gzip header string")
		}
		buf[i] = b
		if b == 0 {
			raw := append([]byte(nil), buf[:i+1]...)
			runes := make([]rune, i)
			for j, v := range buf[:i] {
				runes[j] = rune(v)
			}
			return string(runes), raw, nil
		}
	}
}

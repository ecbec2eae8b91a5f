// Package gzindex provides random access into a gzip-compressed stream
// backed by a persisted checkpoint table, replacing the need to decompress
// a file from the start to read an arbitrary slice of it.
//
// Build performs the one required linear pass, recording a Checkpoint
// (compressed offset, uncompressed offset, bit remainder, and a 32 KiB
// sliding-window snapshot) every time roughly CheckpointInterval
// uncompressed bytes have been produced since the last one. ReadAt then
// answers read(uncompressed_offset, length) by resuming decompression from
// the closest prior checkpoint instead of the start of the stream.
package gzindex

import (
	"hash/crc32"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/dselans/fastx/errs"
	"github.com/dselans/fastx/internal/inflate"
)

// Reader builds and serves random access against one gzip source.
type Reader struct {
	src io.ReadSeeker
	log *logrus.Entry

	Header Header
	Index  Index
	size   int64 // total uncompressed size, valid once Build has run
}

// NewReader wraps src. Call Build once before ReadAt, or assign a
// previously persisted Index and size directly when resuming a sealed
// index.
func NewReader(src io.ReadSeeker, log *logrus.Entry) *Reader {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Reader{src: src, log: log.WithField("pkg", "gzindex")}
}

// Size reports the total uncompressed length, valid after Build or after
// Index/size have been restored from a persisted table.
func (r *Reader) Size() int64 { return r.size }

// SetIndex installs a previously persisted checkpoint table and the total
// uncompressed size it was built against, for reopening a sealed index
// without rescanning the source.
func (r *Reader) SetIndex(idx Index, size int64) {
	r.Index = idx
	r.size = size
}

// Build performs the single required pass over the source: parses every
// gzip member (concatenated members are treated as one logical stream),
// decompresses each member's body, verifies its CRC32/ISIZE trailer, and
// records checkpoints at interval spacing. interval <= 0 uses
// DefaultCheckpointInterval.
func (r *Reader) Build(interval int64) error {
	if interval <= 0 {
		interval = DefaultCheckpointInterval
	}
	if _, err := r.src.Seek(0, io.SeekStart); err != nil {
		return errs.WrapIoError(err, "seeking to start of gzip source")
	}

	idx := Index{}
	var total int64
	first := true

	tr := newTellReader(r.src)
	for {
		if empty, err := atEOF(tr); err != nil {
			return errs.WrapIoError(err, "probing gzip source for next member")
		} else if empty {
			break
		}

		hdr, err := readHeader(tr)
		if err != nil {
			if first {
				return err
			}
			r.log.WithError(err).Warn("ignoring trailing garbage after final gzip member")
			break
		}
		if first {
			r.Header = hdr
			// The first logical checkpoint, per spec: offset 0, the
			// decoder's empty initial state.
			idx.Append(Checkpoint{
				CompressedOffset:   tr.Offset(),
				UncompressedOffset: 0,
			})
			first = false
		}

		memberSize, memberCRC, err := r.decodeMember(tr, total, interval, &idx)
		if err != nil {
			return err
		}

		var trailer [8]byte
		if _, err := io.ReadFull(tr, trailer[:]); err != nil {
			return errs.WrapGzipError(err, "reading gzip trailer")
		}
		wantCRC := le.Uint32(trailer[0:4])
		wantSize := le.Uint32(trailer[4:8])
		if wantCRC != memberCRC || wantSize != uint32(memberSize) {
			return errs.NewGzipError("gzip member checksum/size mismatch")
		}

		total += memberSize
	}

	r.Index = idx
	r.size = total
	return nil
}

func atEOF(tr *tellReader) (bool, error) {
	_, err := tr.r.Peek(1)
	if err == io.EOF {
		return true, nil
	}
	return false, err
}

// decodeMember decompresses a single gzip member starting right after its
// header has been consumed from tr, appending checkpoints (offset by the
// cumulative uncompressed length of prior members) to idx as they arrive.
func (r *Reader) decodeMember(tr *tellReader, base, interval int64, idx *Index) (size int64, crc uint32, err error) {
	ch := make(chan *inflate.Checkpoint, 256)
	dec := inflate.NewCheckpointingReader(tr, tr.Offset(), interval, ch)

	sum := crc32.NewIEEE()
	buf := make([]byte, 32*1024)

	drain := func() {
		for {
			select {
			case cp := <-ch:
				out := *cp
				out.OutOffset += base
				idx.Append(fromInflateCheckpoint(&out))
			default:
				return
			}
		}
	}

	for {
		n, rerr := dec.Read(buf)
		if n > 0 {
			sum.Write(buf[:n])
			size += int64(n)
		}
		drain()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, 0, errs.WrapGzipError(rerr, "decompressing gzip member body")
		}
	}
	drain()

	return size, sum.Sum32(), nil
}

// fromInflateCheckpoint normalizes an internal/inflate checkpoint (a raw,
// possibly-wrapped circular window plus write/read positions) into the
// persisted, position-independent form: a linear window in chronological
// order (oldest byte first), which can be reconstructed on resume using
// only the uncompressed offset to tell whether the window has wrapped.
func fromInflateCheckpoint(cp *inflate.Checkpoint) Checkpoint {
	// Bytes already decoded into the window but not yet handed to the
	// caller (WrPos-RdPos) are part of the output the checkpoint follows.
	out := cp.OutOffset + int64(cp.WrPos-cp.RdPos)
	var win [WindowSize]byte
	if out >= WindowSize {
		p := cp.WrPos
		n := copy(win[:], cp.Hist[p:])
		copy(win[n:], cp.Hist[:p])
	} else {
		copy(win[:], cp.Hist[:cp.WrPos])
	}
	return Checkpoint{
		CompressedOffset:   cp.InOffset,
		UncompressedOffset: out,
		BitRemainder:       uint8(cp.Nb),
		BitBuffer:          uint8(cp.B),
		Window:             win,
	}
}

// toInflateCheckpoint is the inverse of fromInflateCheckpoint, reconstructing
// the raw circular-buffer state Resume needs from the persisted linear
// window.
func toInflateCheckpoint(cp Checkpoint) *inflate.Checkpoint {
	full := cp.UncompressedOffset >= WindowSize
	hist := make([]byte, WindowSize)
	var wrPos int
	if full {
		copy(hist, cp.Window[:])
		wrPos = 0
	} else {
		copy(hist, cp.Window[:cp.UncompressedOffset])
		wrPos = int(cp.UncompressedOffset)
	}
	return &inflate.Checkpoint{
		InOffset:  cp.CompressedOffset,
		OutOffset: cp.UncompressedOffset,
		B:         uint32(cp.BitBuffer),
		Nb:        uint(cp.BitRemainder),
		Hist:      hist,
		WrPos:     wrPos,
		RdPos:     wrPos,
		Full:      full,
	}
}

// ReadAt implements io.ReaderAt semantics against the logical decompressed
// stream: it binary-searches the checkpoint table for the closest
// checkpoint at or before off, reseeks the compressed source there, resumes
// decompression primed with the saved window and bit state, discards up to
// off, and fills p. If the stream ends before p is full, ReadAt returns the
// bytes copied and io.EOF, per the contract's "bound the returned length at
// the real stream length" edge case.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errs.NewIndexOutOfRange("negative read offset %d", off)
	}
	cp, ok := r.Index.ClosestBefore(off)
	if !ok {
		return 0, errs.NewGzipError("empty checkpoint index")
	}

	if _, err := r.src.Seek(cp.CompressedOffset, io.SeekStart); err != nil {
		return 0, errs.WrapIoError(err, "seeking to checkpoint %d", cp.CompressedOffset)
	}
	tr := newTellReader(r.src)

	var dec io.Reader
	if cp.UncompressedOffset == 0 {
		// The first checkpoint's CompressedOffset already points past the
		// gzip header, at the start of the first DEFLATE block.
		dec = inflate.NewCheckpointingReader(tr, cp.CompressedOffset, 0, nil)
	} else {
		dec = inflate.Resume(tr, toInflateCheckpoint(cp), 0, nil)
	}

	toDiscard := off - cp.UncompressedOffset
	if toDiscard > 0 {
		if _, err := io.CopyN(io.Discard, dec, toDiscard); err != nil {
			if err == io.EOF {
				return 0, io.EOF
			}
			return 0, errs.WrapGzipError(err, "seeking forward to offset %d", off)
		}
	}

	n, err := io.ReadFull(dec, p)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return n, io.EOF
	}
	if err != nil {
		return n, errs.WrapGzipError(err, "reading %d bytes at offset %d", len(p), off)
	}
	return n, nil
}

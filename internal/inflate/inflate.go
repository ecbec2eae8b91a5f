// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inflate

import (
	"bufio"
	"io"
)

// Reader is the minimal input interface a Decompressor needs. If the
// supplied io.Reader does not also implement io.ByteReader, it is wrapped
// in a bufio.Reader.
type Reader interface {
	io.Reader
	io.ByteReader
}

// Checkpoint is a snapshot of decoder state taken at a DEFLATE block
// boundary: the compressed/uncompressed offsets at that point, the bit
// accumulator, and the 32 KiB sliding window. Feeding a Checkpoint back into
// Resume restarts decompression from exactly that point without having to
// replay the stream from the start.
type Checkpoint struct {
	InOffset  int64 // bytes consumed from the compressed stream
	OutOffset int64 // bytes produced into the uncompressed stream

	B  uint32 // bit accumulator
	Nb uint   // number of valid bits in B

	Hist  []byte // sliding window, always len == maxMatchOffset (32 KiB)
	WrPos int
	RdPos int
	Full  bool
}

// BitRemainder is the number of unused bits in the last compressed byte
// consumed, as required by the gzip checkpoint schema. The decompressor
// itself tracks a full bit accumulator (B, Nb) rather than a single
// leftover byte, which is a superset of this value; BitRemainder is derived
// for on-disk compatibility with the documented checkpoint format.
func (c *Checkpoint) BitRemainder() uint8 {
	return uint8(c.Nb % 8)
}

// Decompressor implements a resumable DEFLATE decoder. It is an
// io.ReadCloser; construct one with NewReader or Resume.
type Decompressor struct {
	r       Reader
	roffset int64
	woffset int64

	b  uint32
	nb uint

	h1, h2 huffmanDecoder

	bits     *[maxNumLit + maxNumDist]int
	codebits *[numCodes]int

	dict dictDecoder

	buf [4]byte

	step      func(*Decompressor)
	stepState int
	final     bool
	err       error
	toRead    []byte
	hl, hd    *huffmanDecoder
	copyLen   int
	copyDist  int

	// Checkpointing: span is the minimum number of uncompressed bytes
	// between emitted checkpoints; last is the OutOffset of the previous
	// one. checkpoints is nil when the caller does not want them.
	span        int64
	last        int64
	checkpoints chan<- *Checkpoint
}

func makeReader(r io.Reader) Reader {
	if rr, ok := r.(Reader); ok {
		return rr
	}
	return bufio.NewReader(r)
}

// NewReader returns a decompressor reading from r with no checkpointing.
func NewReader(r io.Reader) io.ReadCloser {
	fixedHuffmanDecoderInit()

	var d Decompressor
	d.r = makeReader(r)
	d.bits = new([maxNumLit + maxNumDist]int)
	d.codebits = new([numCodes]int)
	d.step = (*Decompressor).nextBlock
	d.dict.init(maxMatchOffset, nil)
	return &d
}

// NewCheckpointingReader returns a decompressor reading from r, starting at
// compressed-stream offset startOffset, that sends a Checkpoint on ch every
// time at least span uncompressed bytes have been produced since the last
// one. Checkpoints are only ever taken at block boundaries, so every one
// received is immediately resumable.
func NewCheckpointingReader(r io.Reader, startOffset, span int64, ch chan<- *Checkpoint) *Decompressor {
	fixedHuffmanDecoderInit()

	var d Decompressor
	d.r = makeReader(r)
	d.bits = new([maxNumLit + maxNumDist]int)
	d.codebits = new([numCodes]int)
	d.step = (*Decompressor).nextBlock
	d.dict.init(maxMatchOffset, nil)
	d.roffset = startOffset
	d.last = 0
	d.span = span
	d.checkpoints = ch
	return &d
}

// Resume restarts decompression from a previously captured Checkpoint. r
// must already be positioned so that the next byte read is the first byte
// at or after cp.InOffset in the compressed stream.
func Resume(r io.Reader, cp *Checkpoint, span int64, ch chan<- *Checkpoint) *Decompressor {
	fixedHuffmanDecoderInit()

	var d Decompressor
	d.r = makeReader(r)
	d.bits = new([maxNumLit + maxNumDist]int)
	d.codebits = new([numCodes]int)
	d.step = (*Decompressor).nextBlock

	d.dict.Hist = make([]byte, len(cp.Hist))
	copy(d.dict.Hist, cp.Hist)
	d.dict.WrPos = cp.WrPos
	d.dict.RdPos = cp.RdPos
	d.dict.Full = cp.Full

	d.b = cp.B
	d.nb = cp.Nb
	d.roffset = cp.InOffset
	d.woffset = cp.OutOffset
	d.last = cp.OutOffset
	d.span = span
	d.checkpoints = ch

	return &d
}

// Roffset reports the number of compressed-stream bytes consumed so far.
func (d *Decompressor) Roffset() int64 { return d.roffset }

// Woffset reports the number of uncompressed bytes produced so far.
func (d *Decompressor) Woffset() int64 { return d.woffset }

func (d *Decompressor) Read(b []byte) (int, error) {
	for {
		if len(d.toRead) > 0 {
			n := copy(b, d.toRead)
			d.toRead = d.toRead[n:]
			if len(d.toRead) == 0 {
				return n, d.err
			}
			return n, nil
		}
		if d.err != nil {
			return 0, d.err
		}
		d.step(d)
		d.woffset += int64(len(d.toRead))
		if d.err != nil && len(d.toRead) == 0 {
			d.toRead = d.dict.readFlush()
			d.woffset += int64(len(d.toRead))
		}
	}
}

func (d *Decompressor) Close() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

func (d *Decompressor) nextBlock() {
	for d.nb < 1+2 {
		if d.err = d.moreBits(); d.err != nil {
			return
		}
	}
	d.final = d.b&1 == 1
	d.b >>= 1
	typ := d.b & 3
	d.b >>= 2
	d.nb -= 1 + 2
	switch typ {
	case 0:
		d.dataBlock()
	case 1:
		d.hl = &fixedHuffmanDecoder
		d.hd = nil
		d.huffmanBlock()
	case 2:
		if d.err = d.readHuffman(); d.err != nil {
			return
		}
		d.hl = &d.h1
		d.hd = &d.h2
		d.huffmanBlock()
	default:
		d.err = CorruptInputError(d.roffset)
	}
}

func (d *Decompressor) readHuffman() error {
	for d.nb < 5+5+4 {
		if err := d.moreBits(); err != nil {
			return err
		}
	}
	nlit := int(d.b&0x1F) + 257
	if nlit > maxNumLit {
		return CorruptInputError(d.roffset)
	}
	d.b >>= 5
	ndist := int(d.b&0x1F) + 1
	if ndist > maxNumDist {
		return CorruptInputError(d.roffset)
	}
	d.b >>= 5
	nclen := int(d.b&0xF) + 4
	d.b >>= 4
	d.nb -= 5 + 5 + 4

	for i := 0; i < nclen; i++ {
		for d.nb < 3 {
			if err := d.moreBits(); err != nil {
				return err
			}
		}
		d.codebits[codeOrder[i]] = int(d.b & 0x7)
		d.b >>= 3
		d.nb -= 3
	}
	for i := nclen; i < len(codeOrder); i++ {
		d.codebits[codeOrder[i]] = 0
	}
	if !d.h1.init(d.codebits[0:]) {
		return CorruptInputError(d.roffset)
	}

	for i, n := 0, nlit+ndist; i < n; {
		x, err := d.huffSym(&d.h1)
		if err != nil {
			return err
		}
		if x < 16 {
			d.bits[i] = x
			i++
			continue
		}
		var rep int
		var nb uint
		var b int
		switch x {
		default:
			return InternalError("unexpected length code")
		case 16:
			rep = 3
			nb = 2
			if i == 0 {
				return CorruptInputError(d.roffset)
			}
			b = d.bits[i-1]
		case 17:
			rep = 3
			nb = 3
			b = 0
		case 18:
			rep = 11
			nb = 7
			b = 0
		}
		for d.nb < nb {
			if err := d.moreBits(); err != nil {
				return err
			}
		}
		rep += int(d.b & uint32(1<<nb-1))
		d.b >>= nb
		d.nb -= nb
		if i+rep > n {
			return CorruptInputError(d.roffset)
		}
		for j := 0; j < rep; j++ {
			d.bits[i] = b
			i++
		}
	}

	if !d.h1.init(d.bits[0:nlit]) || !d.h2.init(d.bits[nlit:nlit+ndist]) {
		return CorruptInputError(d.roffset)
	}

	if d.h1.min < d.bits[endBlockMarker] {
		d.h1.min = d.bits[endBlockMarker]
	}

	return nil
}

func (d *Decompressor) huffmanBlock() {
	const (
		stateInit = iota
		stateDict
	)

	switch d.stepState {
	case stateInit:
		goto readLiteral
	case stateDict:
		goto copyHistory
	}

readLiteral:
	{
		v, err := d.huffSym(d.hl)
		if err != nil {
			d.err = err
			return
		}
		var n uint
		var length int
		switch {
		case v < 256:
			d.dict.writeByte(byte(v))
			if d.dict.availWrite() == 0 {
				d.toRead = d.dict.readFlush()
				d.step = (*Decompressor).huffmanBlock
				d.stepState = stateInit
				return
			}
			goto readLiteral
		case v == 256:
			d.finishBlock()
			return
		case v < 265:
			length = v - (257 - 3)
			n = 0
		case v < 269:
			length = v*2 - (265*2 - 11)
			n = 1
		case v < 273:
			length = v*4 - (269*4 - 19)
			n = 2
		case v < 277:
			length = v*8 - (273*8 - 35)
			n = 3
		case v < 281:
			length = v*16 - (277*16 - 67)
			n = 4
		case v < 285:
			length = v*32 - (281*32 - 131)
			n = 5
		case v < maxNumLit:
			length = 258
			n = 0
		default:
			d.err = CorruptInputError(d.roffset)
			return
		}
		if n > 0 {
			for d.nb < n {
				if err = d.moreBits(); err != nil {
					d.err = err
					return
				}
			}
			length += int(d.b & uint32(1<<n-1))
			d.b >>= n
			d.nb -= n
		}

		var dist int
		if d.hd == nil {
			for d.nb < 5 {
				if err = d.moreBits(); err != nil {
					d.err = err
					return
				}
			}
			dist = int(reverseByte(uint8(d.b & 0x1F << 3)))
			d.b >>= 5
			d.nb -= 5
		} else {
			if dist, err = d.huffSym(d.hd); err != nil {
				d.err = err
				return
			}
		}

		switch {
		case dist < 4:
			dist++
		case dist < maxNumDist:
			nb := uint(dist-2) >> 1
			extra := (dist & 1) << nb
			for d.nb < nb {
				if err = d.moreBits(); err != nil {
					d.err = err
					return
				}
			}
			extra |= int(d.b & uint32(1<<nb-1))
			d.b >>= nb
			d.nb -= nb
			dist = 1<<(nb+1) + 1 + extra
		default:
			d.err = CorruptInputError(d.roffset)
			return
		}

		if dist > d.dict.histSize() {
			d.err = CorruptInputError(d.roffset)
			return
		}

		d.copyLen, d.copyDist = length, dist
		goto copyHistory
	}

copyHistory:
	{
		cnt := d.dict.tryWriteCopy(d.copyDist, d.copyLen)
		if cnt == 0 {
			cnt = d.dict.writeCopy(d.copyDist, d.copyLen)
		}
		d.copyLen -= cnt

		if d.dict.availWrite() == 0 || d.copyLen > 0 {
			d.toRead = d.dict.readFlush()
			d.step = (*Decompressor).huffmanBlock
			d.stepState = stateDict
			return
		}
		goto readLiteral
	}
}

func (d *Decompressor) dataBlock() {
	d.nb = 0
	d.b = 0

	nr, err := io.ReadFull(d.r, d.buf[0:4])
	d.roffset += int64(nr)
	if err != nil {
		d.err = noEOF(err)
		return
	}
	n := int(d.buf[0]) | int(d.buf[1])<<8
	nn := int(d.buf[2]) | int(d.buf[3])<<8
	if uint16(nn) != uint16(^n) {
		d.err = CorruptInputError(d.roffset)
		return
	}

	if n == 0 {
		d.toRead = d.dict.readFlush()
		d.finishBlock()
		return
	}

	d.copyLen = n
	d.copyData()
}

func (d *Decompressor) copyData() {
	buf := d.dict.writeSlice()
	if len(buf) > d.copyLen {
		buf = buf[:d.copyLen]
	}

	cnt, err := io.ReadFull(d.r, buf)
	d.roffset += int64(cnt)
	d.copyLen -= cnt
	d.dict.writeMark(cnt)
	if err != nil {
		d.err = noEOF(err)
		return
	}

	if d.dict.availWrite() == 0 || d.copyLen > 0 {
		d.toRead = d.dict.readFlush()
		d.step = (*Decompressor).copyData
		return
	}
	d.finishBlock()
}

func (d *Decompressor) finishBlock() {
	woffset := d.woffset

	if d.final {
		if d.dict.availRead() > 0 {
			d.toRead = d.dict.readFlush()
			woffset += int64(len(d.toRead))
		}
		d.err = io.EOF
	}

	if d.checkpoints != nil && woffset-d.last >= d.span {
		cp := &Checkpoint{
			InOffset:  d.roffset,
			OutOffset: woffset,
			B:         d.b,
			Nb:        d.nb,
			Hist:      make([]byte, len(d.dict.Hist)),
			WrPos:     d.dict.WrPos,
			RdPos:     d.dict.RdPos,
			Full:      d.dict.Full,
		}
		copy(cp.Hist, d.dict.Hist)

		d.checkpoints <- cp
		d.last = cp.OutOffset
	}

	d.step = (*Decompressor).nextBlock
}

func noEOF(e error) error {
	if e == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return e
}

func (d *Decompressor) moreBits() error {
	c, err := d.r.ReadByte()
	if err != nil {
		return noEOF(err)
	}
	d.roffset++
	d.b |= uint32(c) << d.nb
	d.nb += 8
	return nil
}

func (d *Decompressor) huffSym(h *huffmanDecoder) (int, error) {
	n := uint(h.min)
	nb, b := d.nb, d.b
	for {
		for nb < n {
			c, err := d.r.ReadByte()
			if err != nil {
				d.b = b
				d.nb = nb
				return 0, noEOF(err)
			}
			d.roffset++
			b |= uint32(c) << (nb & 31)
			nb += 8
		}
		chunk := h.chunks[b&(huffmanNumChunks-1)]
		n = uint(chunk & huffmanCountMask)
		if n > huffmanChunkBits {
			chunk = h.links[chunk>>huffmanValueShift][(b>>huffmanChunkBits)&h.linkMask]
			n = uint(chunk & huffmanCountMask)
		}
		if n <= nb {
			if n == 0 {
				d.b = b
				d.nb = nb
				d.err = CorruptInputError(d.roffset)
				return 0, d.err
			}
			d.b = b >> (n & 31)
			d.nb = nb - n
			return int(chunk >> huffmanValueShift), nil
		}
	}
}

// reverseByte reverses the bottom 8 bits of v, used to decode the fixed
// Huffman distance code (RFC 1951 section 3.2.6).
func reverseByte(v uint8) uint8 {
	v = (v&0x0F)<<4 | (v&0xF0)>>4
	v = (v&0x33)<<2 | (v&0xCC)>>2
	v = (v&0x55)<<1 | (v&0xAA)>>1
	return v
}

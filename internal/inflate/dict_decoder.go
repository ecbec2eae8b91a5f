// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inflate

// dictDecoder implements the LZ77 sliding dictionary as used in decompression.
// It mirrors the window maintained by the reference DEFLATE decompressor so
// that a snapshot of it can be taken at a block boundary and later used to
// prime a fresh decompressor at the same point in the stream.
type dictDecoder struct {
	Hist []byte // Sliding window history, always sized maxMatchOffset (32 KiB)

	// Invariant: 0 <= RdPos <= WrPos <= len(Hist)
	WrPos int  // Current output position in buffer
	RdPos int  // Have emitted Hist[:RdPos] already
	Full  bool // Has a full window length been written yet?
}

func (dd *dictDecoder) init(size int, dict []byte) {
	*dd = dictDecoder{Hist: dd.Hist}

	if cap(dd.Hist) < size {
		dd.Hist = make([]byte, size)
	}
	dd.Hist = dd.Hist[:size]

	if len(dict) > len(dd.Hist) {
		dict = dict[len(dict)-len(dd.Hist):]
	}
	dd.WrPos = copy(dd.Hist, dict)
	if dd.WrPos == len(dd.Hist) {
		dd.WrPos = 0
		dd.Full = true
	}
	dd.RdPos = dd.WrPos
}

func (dd *dictDecoder) histSize() int {
	if dd.Full {
		return len(dd.Hist)
	}
	return dd.WrPos
}

func (dd *dictDecoder) availRead() int {
	return dd.WrPos - dd.RdPos
}

func (dd *dictDecoder) availWrite() int {
	return len(dd.Hist) - dd.WrPos
}

func (dd *dictDecoder) writeSlice() []byte {
	return dd.Hist[dd.WrPos:]
}

func (dd *dictDecoder) writeMark(cnt int) {
	dd.WrPos += cnt
}

func (dd *dictDecoder) writeByte(c byte) {
	dd.Hist[dd.WrPos] = c
	dd.WrPos++
}

// writeCopy copies a string at a given (dist, length) to the output. It
// returns the number of bytes copied, which may be less than length if the
// output buffer fills first.
func (dd *dictDecoder) writeCopy(dist, length int) int {
	dstBase := dd.WrPos
	dstPos := dstBase
	srcPos := dstPos - dist
	endPos := dstPos + length
	if endPos > len(dd.Hist) {
		endPos = len(dd.Hist)
	}

	if srcPos < 0 {
		srcPos += len(dd.Hist)
		dstPos += copy(dd.Hist[dstPos:endPos], dd.Hist[srcPos:])
		srcPos = 0
	}

	for dstPos < endPos {
		dstPos += copy(dd.Hist[dstPos:endPos], dd.Hist[srcPos:dstPos])
	}

	dd.WrPos = dstPos
	return dstPos - dstBase
}

// tryWriteCopy is writeCopy specialized for short distances that cannot wrap.
func (dd *dictDecoder) tryWriteCopy(dist, length int) int {
	dstPos := dd.WrPos
	endPos := dstPos + length
	if dstPos < dist || endPos > len(dd.Hist) {
		return 0
	}
	dstBase := dstPos
	srcPos := dstPos - dist

	for dstPos < endPos {
		dstPos += copy(dd.Hist[dstPos:endPos], dd.Hist[srcPos:dstPos])
	}

	dd.WrPos = dstPos
	return dstPos - dstBase
}

// readFlush returns the portion of the window ready to be emitted. The
// caller must fully consume it before calling any other dictDecoder method.
func (dd *dictDecoder) readFlush() []byte {
	toRead := dd.Hist[dd.RdPos:dd.WrPos]
	dd.RdPos = dd.WrPos
	if dd.WrPos == len(dd.Hist) {
		dd.WrPos, dd.RdPos = 0, 0
		dd.Full = true
	}
	return toRead
}

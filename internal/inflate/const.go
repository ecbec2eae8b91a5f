// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inflate is a DEFLATE (RFC 1951) decompressor that can snapshot and
// resume its decoder state at block boundaries. It exists because the
// standard library's compress/flate does not expose the internals a
// random-access gzip reader needs to restart decompression mid-stream: the
// 32 KiB sliding window and bit accumulator. Everything here follows the
// reference decoder; only the checkpoint/resume surface is new.
package inflate

const (
	offsetCodeCount = 30
	endBlockMarker  = 256
	lengthCodesStart = 257
	codegenCodeCount = 19
	badCode          = 255

	maxCodeLen = 16
	maxNumLit  = 286
	maxNumDist = 30
	numCodes   = 19

	// maxMatchOffset is also the required checkpoint window size (32 KiB),
	// per the gzip random-access checkpoint schema.
	maxMatchOffset = 1 << 15

	huffmanChunkBits  = 9
	huffmanNumChunks  = 1 << huffmanChunkBits
	huffmanCountMask  = 15
	huffmanValueShift = 4
)

var codeOrder = [...]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

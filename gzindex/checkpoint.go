package gzindex

// WindowSize is the size of the LZ77 sliding window a checkpoint must carry
// to be resumable, per the gzip random-access checkpoint schema: 32 KiB,
// the maximum DEFLATE match distance.
const WindowSize = 1 << 15

// DefaultCheckpointInterval is the default uncompressed-byte spacing
// between persisted checkpoints.
const DefaultCheckpointInterval = 1 << 20 // ~1 MiB

// Checkpoint is one entry of the persisted random-access table: enough
// decoder state to resume DEFLATE decompression at CompressedOffset without
// reading anything before it.
//
// BitRemainder is the unused-bit count in the last compressed byte
// consumed (0-7), as the checkpoint schema names it. DEFLATE blocks do not
// align to byte boundaries, so a count alone cannot resume decoding: the
// actual content of those leftover bits is needed too. BitBuffer holds
// that content in its low BitRemainder bits; it is a necessary addition
// to the documented schema, not a deviation from it.
type Checkpoint struct {
	CompressedOffset   int64
	UncompressedOffset int64
	BitRemainder       uint8
	BitBuffer          uint8
	Window             [WindowSize]byte
}

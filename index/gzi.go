package index

import (
	"github.com/jmoiron/sqlx"

	"github.com/dselans/fastx/errs"
	"github.com/dselans/fastx/gzindex"
)

// InsertCheckpoint persists one gzindex.Checkpoint row. Build calls this
// once per checkpoint gzindex.Reader.Build produces, in increasing
// UncompressedOffset order.
func (s *Store) InsertCheckpoint(tx *sqlx.Tx, cp gzindex.Checkpoint) error {
	_, err := tx.Exec(`INSERT INTO gzi (uoff, coff, bits, bitbuf, window) VALUES (?, ?, ?, ?, ?)`,
		cp.UncompressedOffset, cp.CompressedOffset, cp.BitRemainder, cp.BitBuffer, cp.Window[:])
	if err != nil {
		return errs.WrapIoError(err, "inserting gzip checkpoint at uoff %d", cp.UncompressedOffset)
	}
	return nil
}

// LoadIndex reconstructs a gzindex.Index from the persisted gzi table, in
// UncompressedOffset order, for a gzindex.Reader to resume random access
// without rebuilding the checkpoint table.
func (s *Store) LoadIndex() (gzindex.Index, error) {
	var rows []struct {
		Uoff   int64  `db:"uoff"`
		Coff   int64  `db:"coff"`
		Bits   uint8  `db:"bits"`
		Bitbuf uint8  `db:"bitbuf"`
		Window []byte `db:"window"`
	}
	if err := s.db.Select(&rows, "SELECT uoff, coff, bits, bitbuf, window FROM gzi ORDER BY uoff"); err != nil {
		return gzindex.Index{}, errs.WrapIoError(err, "loading gzip checkpoint table")
	}

	var idx gzindex.Index
	for _, r := range rows {
		var cp gzindex.Checkpoint
		cp.UncompressedOffset = r.Uoff
		cp.CompressedOffset = r.Coff
		cp.BitRemainder = r.Bits
		cp.BitBuffer = r.Bitbuf
		copy(cp.Window[:], r.Window)
		idx.Append(cp)
	}
	return idx, nil
}

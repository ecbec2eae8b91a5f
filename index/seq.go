package index

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/dselans/fastx/errs"
	"github.com/dselans/fastx/fasta"
)

// seqRow mirrors the seq table's columns for scans; CompOther carries any
// base outside A/C/G/T/N, msgpack-encoded since the column count is
// unbounded (ambiguity codes, gaps, etc).
type seqRow struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	HeaderOff  int64  `db:"header_off"`
	Desc       string `db:"desc"`
	DescOff    int64  `db:"desc_off"`
	DescLen    int64  `db:"desc_len"`
	SeqOff     int64  `db:"seq_off"`
	NextOff    int64  `db:"next_off"`
	ByteLen    int64  `db:"byte_len"`
	BaseLen    int64  `db:"base_len"`
	LineBody   int64  `db:"line_body"`
	LineTerm   int64  `db:"line_term"`
	Normalized bool   `db:"normalized"`
	CompA      int64  `db:"compA"`
	CompC      int64  `db:"compC"`
	CompG      int64  `db:"compG"`
	CompT      int64  `db:"compT"`
	CompN      int64  `db:"compN"`
	CompOther  []byte `db:"compOther"`
}

// compOther is the msgpack payload backing seqRow.CompOther: any base byte
// outside A/C/G/T/N, keyed by its upper-cased value.
type compOther map[byte]int64

// InsertSeq persists one scanned FASTA record and its composition, returning
// the assigned id. It must be called in ID order within a single build
// transaction; callers batch these via a *sqlx.Tx from BeginTx.
func (s *Store) InsertSeq(tx *sqlx.Tx, info *fasta.SeqInfo, comp Composition) (int64, error) {
	other, err := encode(compOther(comp.Other))
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec(`INSERT INTO seq
		(name, header_off, desc, desc_off, desc_len, seq_off, next_off, byte_len, base_len, line_body, line_term, normalized,
		 compA, compC, compG, compT, compN, compOther)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.Name, info.HeaderByteOffset, info.Description, info.DescriptionByteOffset, int64(len(info.Description)),
		info.SeqByteOffset, info.NextByteOffset, info.ByteLen, info.BaseLen, info.LineBodyLen, info.LineTermLen, info.Normalized,
		comp.A, comp.C, comp.G, comp.T, comp.N, other,
	)
	if err != nil {
		return 0, errs.WrapIoError(err, "inserting seq row %s", info.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.WrapIoError(err, "reading inserted seq id for %s", info.Name)
	}

	for i, rl := range info.Ragged {
		if _, err := tx.Exec(`INSERT INTO seq_ragged (seq_id, pos, byte_off, cum_bases, term_len)
			VALUES (?, ?, ?, ?, ?)`, id, i, rl.ByteOffset, rl.CumulativeBases, rl.TermLen); err != nil {
			return 0, errs.WrapIoError(err, "inserting ragged line %d for seq %s", i, info.Name)
		}
	}
	return id, nil
}

// Composition is the per-record base tally InsertSeq persists; Other holds
// any byte outside A/C/G/T/N, keyed by its upper-cased value.
type Composition struct {
	A, C, G, T, N int64
	Other         map[byte]int64
}

// GetSeqByID loads one record's geometry by id. Negative ids are not
// supported here and report NotFound; end-relative indexing exists only in
// keys.View.At.
func (s *Store) GetSeqByID(id int64) (*fasta.SeqInfo, error) {
	var row seqRow
	if err := s.db.Get(&row, "SELECT * FROM seq WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NewNotFound("no sequence with id %d", id)
		}
		return nil, errs.WrapIoError(err, "loading seq id %d", id)
	}
	return s.seqInfoFromRow(&row)
}

// GetSeqByName loads one record's geometry by name.
func (s *Store) GetSeqByName(name string) (*fasta.SeqInfo, error) {
	var row seqRow
	if err := s.db.Get(&row, "SELECT * FROM seq WHERE name = ?", name); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NewNotFound("no sequence named %q", name)
		}
		return nil, errs.WrapIoError(err, "loading seq %q", name)
	}
	return s.seqInfoFromRow(&row)
}

func (s *Store) seqInfoFromRow(row *seqRow) (*fasta.SeqInfo, error) {
	info := &fasta.SeqInfo{
		ID:                    row.ID,
		Name:                  row.Name,
		Description:           row.Desc,
		HeaderByteOffset:      row.HeaderOff,
		DescriptionByteOffset: row.DescOff,
		SeqByteOffset:         row.SeqOff,
		NextByteOffset:        row.NextOff,
		ByteLen:               row.ByteLen,
		BaseLen:               row.BaseLen,
		LineBodyLen:           row.LineBody,
		LineTermLen:           row.LineTerm,
		Normalized:            row.Normalized,
	}

	if !info.Normalized {
		var ragged []fasta.RaggedLine
		if err := s.db.Select(&ragged, `SELECT byte_off AS byteoffset, cum_bases AS cumulativebases, term_len AS termlen
			FROM seq_ragged WHERE seq_id = ? ORDER BY pos`, row.ID); err != nil {
			return nil, errs.WrapIoError(err, "loading ragged lines for seq %d", row.ID)
		}
		info.Ragged = ragged
	}
	return info, nil
}

// ListSeqNames returns every record's (id, name, base_len) in insertion
// (id) order, the shape keys.NewView consumes to build a View.
func (s *Store) ListSeqNames() ([]struct {
	ID     int64
	Name   string
	Length int
}, error) {
	var rows []struct {
		ID     int64
		Name   string
		Length int
	}
	var raw []struct {
		ID      int64 `db:"id"`
		Name    string `db:"name"`
		BaseLen int64 `db:"base_len"`
	}
	if err := s.db.Select(&raw, "SELECT id, name, base_len FROM seq ORDER BY id"); err != nil {
		return nil, errs.WrapIoError(err, "listing sequence names")
	}
	for _, r := range raw {
		rows = append(rows, struct {
			ID     int64
			Name   string
			Length int
		}{ID: r.ID, Name: r.Name, Length: int(r.BaseLen)})
	}
	return rows, nil
}

// Count returns the number of indexed sequences.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.Get(&n, "SELECT COUNT(*) FROM seq"); err != nil {
		return 0, errs.WrapIoError(err, "counting sequences")
	}
	return n, nil
}

// AggregateComposition sums the per-record composition persisted by
// InsertSeq across every sequence in one SQL pass, along with total/min/max
// base_len and the record count -- the SQL-level counterpart
// Session.recomputeAggregate uses instead of reloading every seq row
// through GetSeqByID.
func (s *Store) AggregateComposition() (Composition, int64, int64, int64, int, error) {
	var sums struct {
		CompA   sql.NullInt64 `db:"compA"`
		CompC   sql.NullInt64 `db:"compC"`
		CompG   sql.NullInt64 `db:"compG"`
		CompT   sql.NullInt64 `db:"compT"`
		CompN   sql.NullInt64 `db:"compN"`
		BaseLen sql.NullInt64 `db:"base_len"`
		MinLen  sql.NullInt64 `db:"min_len"`
		MaxLen  sql.NullInt64 `db:"max_len"`
		Count   int           `db:"cnt"`
	}
	const q = `SELECT SUM(compA) AS compA, SUM(compC) AS compC, SUM(compG) AS compG,
		SUM(compT) AS compT, SUM(compN) AS compN, SUM(base_len) AS base_len,
		MIN(base_len) AS min_len, MAX(base_len) AS max_len, COUNT(*) AS cnt FROM seq`
	if err := s.db.Get(&sums, q); err != nil {
		return Composition{}, 0, 0, 0, 0, errs.WrapIoError(err, "summing seq composition")
	}

	var blobs [][]byte
	if err := s.db.Select(&blobs, "SELECT compOther FROM seq"); err != nil {
		return Composition{}, 0, 0, 0, 0, errs.WrapIoError(err, "loading compOther blobs")
	}
	other := make(map[byte]int64)
	for _, b := range blobs {
		if len(b) == 0 {
			continue
		}
		var m compOther
		if err := decode(b, &m); err != nil {
			return Composition{}, 0, 0, 0, 0, errs.WrapIoError(err, "decoding compOther blob")
		}
		for k, v := range m {
			other[k] += v
		}
	}

	comp := Composition{
		A: sums.CompA.Int64, C: sums.CompC.Int64, G: sums.CompG.Int64, T: sums.CompT.Int64, N: sums.CompN.Int64,
		Other: other,
	}
	return comp, sums.BaseLen.Int64, sums.MinLen.Int64, sums.MaxLen.Int64, sums.Count, nil
}

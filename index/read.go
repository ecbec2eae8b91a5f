package index

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/dselans/fastx/errs"
	"github.com/dselans/fastx/fastq"
)

// InsertRead persists one scanned FASTQ record's geometry and composition,
// assigning it the given id; FASTQ ids are sequential in scan order, same
// as fasta's.
func (s *Store) InsertRead(tx *sqlx.Tx, id int64, r fastq.RecordInfo, comp Composition) error {
	other, err := encode(compOther(comp.Other))
	if err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO read
		(id, name, name_off, name_len, seq_off, seq_len, qual_off, term_len, qual_min, qual_max,
		 compA, compC, compG, compT, compN, compOther)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.Name, r.NameOffset, r.NameLen, r.SeqOffset, r.SeqLen, r.QualOffset, r.TermLen,
		r.QualMin, r.QualMax, comp.A, comp.C, comp.G, comp.T, comp.N, other)
	if err != nil {
		return errs.WrapIoError(err, "inserting read row %s", r.Name)
	}
	return nil
}

// readRow mirrors the read table's columns, including the per-record
// composition and quality interval InsertRead persists.
type readRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	NameOff   int64  `db:"name_off"`
	NameLen   int64  `db:"name_len"`
	SeqOff    int64  `db:"seq_off"`
	SeqLen    int64  `db:"seq_len"`
	QualOff   int64  `db:"qual_off"`
	TermLen   int64  `db:"term_len"`
	QualMin   byte   `db:"qual_min"`
	QualMax   byte   `db:"qual_max"`
	CompA     int64  `db:"compA"`
	CompC     int64  `db:"compC"`
	CompG     int64  `db:"compG"`
	CompT     int64  `db:"compT"`
	CompN     int64  `db:"compN"`
	CompOther []byte `db:"compOther"`
}

func recordInfoFromRow(row *readRow) *fastq.RecordInfo {
	return &fastq.RecordInfo{
		ID:         row.ID,
		Name:       row.Name,
		NameOffset: row.NameOff,
		NameLen:    row.NameLen,
		SeqOffset:  row.SeqOff,
		SeqLen:     row.SeqLen,
		QualOffset: row.QualOff,
		TermLen:    row.TermLen,
		QualMin:    row.QualMin,
		QualMax:    row.QualMax,
	}
}

// GetReadByID loads one FASTQ record's geometry by id.
func (s *Store) GetReadByID(id int64) (*fastq.RecordInfo, error) {
	var row readRow
	if err := s.db.Get(&row, "SELECT * FROM read WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NewNotFound("no read with id %d", id)
		}
		return nil, errs.WrapIoError(err, "loading read id %d", id)
	}
	return recordInfoFromRow(&row), nil
}

// GetReadByName loads one FASTQ record's geometry by name.
func (s *Store) GetReadByName(name string) (*fastq.RecordInfo, error) {
	var row readRow
	if err := s.db.Get(&row, "SELECT * FROM read WHERE name = ?", name); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NewNotFound("no read named %q", name)
		}
		return nil, errs.WrapIoError(err, "loading read %q", name)
	}
	return recordInfoFromRow(&row), nil
}

// ListReadNames mirrors ListSeqNames for the read table, the source
// keys.NewView uses for a FASTQ session.
func (s *Store) ListReadNames() ([]struct {
	ID     int64
	Name   string
	Length int
}, error) {
	var raw []struct {
		ID     int64 `db:"id"`
		Name   string `db:"name"`
		SeqLen int64 `db:"seq_len"`
	}
	if err := s.db.Select(&raw, "SELECT id, name, seq_len FROM read ORDER BY id"); err != nil {
		return nil, errs.WrapIoError(err, "listing read names")
	}
	var out []struct {
		ID     int64
		Name   string
		Length int
	}
	for _, r := range raw {
		out = append(out, struct {
			ID     int64
			Name   string
			Length int
		}{ID: r.ID, Name: r.Name, Length: int(r.SeqLen)})
	}
	return out, nil
}

// ReadAggregate is the SQL-level summary AggregateReads computes across
// every read in one pass, the FASTQ counterpart of AggregateComposition.
type ReadAggregate struct {
	Composition Composition
	TotalBases  int64
	MinLength   int64
	MaxLength   int64
	Count       int
	QualMin     byte
	QualMax     byte
}

// AggregateReads sums composition and the read-length/quality-byte
// intervals persisted by InsertRead across the whole read table.
func (s *Store) AggregateReads() (ReadAggregate, error) {
	var sums struct {
		CompA   sql.NullInt64 `db:"compA"`
		CompC   sql.NullInt64 `db:"compC"`
		CompG   sql.NullInt64 `db:"compG"`
		CompT   sql.NullInt64 `db:"compT"`
		CompN   sql.NullInt64 `db:"compN"`
		SeqLen  sql.NullInt64 `db:"seq_len"`
		MinLen  sql.NullInt64 `db:"min_len"`
		MaxLen  sql.NullInt64 `db:"max_len"`
		QualMin sql.NullInt64 `db:"qual_min"`
		QualMax sql.NullInt64 `db:"qual_max"`
		Count   int           `db:"cnt"`
	}
	const q = `SELECT SUM(compA) AS compA, SUM(compC) AS compC, SUM(compG) AS compG,
		SUM(compT) AS compT, SUM(compN) AS compN, SUM(seq_len) AS seq_len,
		MIN(seq_len) AS min_len, MAX(seq_len) AS max_len,
		MIN(qual_min) AS qual_min, MAX(qual_max) AS qual_max, COUNT(*) AS cnt FROM read`
	if err := s.db.Get(&sums, q); err != nil {
		return ReadAggregate{}, errs.WrapIoError(err, "summing read composition")
	}

	var blobs [][]byte
	if err := s.db.Select(&blobs, "SELECT compOther FROM read"); err != nil {
		return ReadAggregate{}, errs.WrapIoError(err, "loading read compOther blobs")
	}
	other := make(map[byte]int64)
	for _, b := range blobs {
		if len(b) == 0 {
			continue
		}
		var m compOther
		if err := decode(b, &m); err != nil {
			return ReadAggregate{}, errs.WrapIoError(err, "decoding read compOther blob")
		}
		for k, v := range m {
			other[k] += v
		}
	}

	return ReadAggregate{
		Composition: Composition{
			A: sums.CompA.Int64, C: sums.CompC.Int64, G: sums.CompG.Int64, T: sums.CompT.Int64, N: sums.CompN.Int64,
			Other: other,
		},
		TotalBases: sums.SeqLen.Int64,
		MinLength:  sums.MinLen.Int64,
		MaxLength:  sums.MaxLen.Int64,
		Count:      sums.Count,
		QualMin:    byte(sums.QualMin.Int64),
		QualMax:    byte(sums.QualMax.Int64),
	}, nil
}

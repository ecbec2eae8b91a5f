// Package index persists the output of a source scan (fasta/fastq record
// geometry, gzip checkpoints, aggregate stats) into a single-file SQLite
// database, the .fxi sidecar, so later sessions can open a source without
// rescanning it.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/dselans/fastx/errs"
)

// Format identifies the source file kind a Store was built against, so a
// reopen can tell a FASTA index from a FASTQ one without reparsing either.
type Format string

const (
	FormatFASTA Format = "fasta"
	FormatFASTQ Format = "fastq"
)

// Store wraps the sidecar SQLite database for one source file. A Store
// opened for building is writable and journals via WAL; once Seal has run,
// that Store's connection is reopened read-only/immutable (a later Open of
// the same sidecar attaches through the writable WAL connection), matching how spec.md §7 describes a built index as a frozen
// snapshot of the source at build time.
type Store struct {
	db   *sqlx.DB
	log  *logrus.Entry
	path string
	lock *flockLock

	Format       Format
	SourceSize   int64
	SourceMtime  int64
	Flags        int
}

// OpenResult is what Open returns. Stale (with StaleErr set) means Open
// succeeded in attaching to the sidecar but found it stale against the
// current source; the caller decides whether
// to rebuild or surface errs.IndexStale, per spec.md §7's "IndexStale is
// recovered silently unless the caller explicitly opened in read-only mode"
// rule.
type OpenResult struct {
	Store    *Store
	Stale    bool
	StaleErr error
}

// Open attaches to path (creating it if absent) against a source file whose
// current size/mtime are sourceSize/sourceMtime. If the sidecar already
// exists and its recorded header disagrees with either value, or its
// SchemaVersion differs from SchemaVersion, OpenResult.Stale is true and
// the caller should rebuild before trusting the stored tables.
func Open(path string, sourceSize, sourceMtime int64, log *logrus.Entry) (*OpenResult, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("pkg", "index")

	lock, err := lockExclusive(path + ".lock")
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		lock.Unlock()
		return nil, errs.WrapIoError(err, "opening index %s", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		lock.Unlock()
		return nil, errs.WrapIoError(err, "creating schema in %s", path)
	}

	st := &Store{db: db, log: log, path: path, lock: lock}

	existing, err := st.readHeader()
	if err == sql.ErrNoRows {
		st.Format = ""
		st.SourceSize = sourceSize
		st.SourceMtime = sourceMtime
		return &OpenResult{Store: st}, nil
	}
	if err != nil {
		st.Close()
		return nil, err
	}

	st.Format = existing.format
	st.SourceSize = existing.sourceSize
	st.SourceMtime = existing.sourceMtime
	st.Flags = existing.flags

	if existing.schemaVersion != SchemaVersion || existing.sourceSize != sourceSize || existing.sourceMtime != sourceMtime {
		log.WithFields(logrus.Fields{
			"schema_version": existing.schemaVersion,
			"source_size":    existing.sourceSize,
			"source_mtime":   existing.sourceMtime,
		}).Warn("index stale against current source")
		return &OpenResult{
			Store:    st,
			Stale:    true,
			StaleErr: errs.NewIndexStale("index at %s is stale: source changed", path),
		}, nil
	}

	return &OpenResult{Store: st}, nil
}

type headerRow struct {
	format        Format
	schemaVersion int
	sourceSize    int64
	sourceMtime   int64
	flags         int
}

func (s *Store) readHeader() (headerRow, error) {
	vals := map[string]string{}
	rows, err := s.db.Queryx("SELECT key, value FROM header")
	if err != nil {
		return headerRow{}, errs.WrapIoError(err, "reading header table")
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var key string
		var val []byte
		if err := rows.Scan(&key, &val); err != nil {
			return headerRow{}, errs.WrapIoError(err, "scanning header row")
		}
		vals[key] = string(val)
		n++
	}
	if n == 0 {
		return headerRow{}, sql.ErrNoRows
	}

	var h headerRow
	h.format = Format(vals[headerKeyFormat])
	fmt.Sscanf(vals[headerKeySchemaVersion], "%d", &h.schemaVersion)
	fmt.Sscanf(vals[headerKeySourceSize], "%d", &h.sourceSize)
	fmt.Sscanf(vals[headerKeySourceMtime], "%d", &h.sourceMtime)
	fmt.Sscanf(vals[headerKeyFlags], "%d", &h.flags)
	return h, nil
}

// BeginBuild truncates any existing tables and writes the header row that
// Seal will later finalize, readying the store for a fresh scan.
func (s *Store) BeginBuild(format Format, sourceSize, sourceMtime int64, flags int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errs.WrapIoError(err, "beginning build transaction")
	}
	defer tx.Rollback()

	for _, tbl := range []string{"seq", "seq_ragged", "gzi", "read", "agg"} {
		if _, err := tx.Exec("DELETE FROM " + tbl); err != nil {
			return errs.WrapIoError(err, "clearing table %s", tbl)
		}
	}

	header := map[string]string{
		headerKeyFormat:        string(format),
		headerKeySchemaVersion: fmt.Sprintf("%d", SchemaVersion),
		headerKeySourceSize:    fmt.Sprintf("%d", sourceSize),
		headerKeySourceMtime:   fmt.Sprintf("%d", sourceMtime),
		headerKeyFlags:         fmt.Sprintf("%d", flags),
	}
	for k, v := range header {
		if _, err := tx.Exec("INSERT OR REPLACE INTO header(key, value) VALUES (?, ?)", k, v); err != nil {
			return errs.WrapIoError(err, "writing header key %s", k)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.WrapIoError(err, "committing build header")
	}

	s.Format = format
	s.SourceSize = sourceSize
	s.SourceMtime = sourceMtime
	s.Flags = flags
	return nil
}

// BeginTx opens a transaction for batched inserts (InsertSeq, InsertRead,
// InsertCheckpoint); callers commit once per logical unit of scan work
// rather than once per row, since SQLite transaction overhead dominates
// for anything smaller than a few hundred rows.
func (s *Store) BeginTx() (*sqlx.Tx, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, errs.WrapIoError(err, "beginning transaction")
	}
	return tx, nil
}

// Seal finalizes a build: it checkpoints the WAL back into the main file and
// switches the connection into the immutable, read-only mode a completed
// index is served from for the rest of the process, per spec.md §4.3's
// "partial builds are atomic" requirement — the rename-free equivalent here
// is that readers never observe a WAL-only partial state, since Seal is the
// first point any reader reopens the file.
func (s *Store) Seal() error {
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errs.WrapIoError(err, "checkpointing WAL on seal")
	}
	if err := s.db.Close(); err != nil {
		return errs.WrapIoError(err, "closing index after seal")
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&immutable=1", s.path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return errs.WrapIoError(err, "reopening sealed index %s read-only", s.path)
	}
	s.db = db
	return nil
}

// OpenSealedCopy opens a fresh sidecar at a temp path beside dst and returns
// its Store together with that path. It does not build or rename anything:
// the caller fills the Store and then calls CommitAtomic, which seals it and
// renames it over dst, so a crash mid-build never leaves a corrupt file at
// dst.
func OpenSealedCopy(dst string, sourceSize, sourceMtime int64, log *logrus.Entry) (*Store, string, error) {
	tmp := dst + fmt.Sprintf(".build-%d", time.Now().UnixNano())
	_ = os.Remove(tmp)

	res, err := Open(tmp, sourceSize, sourceMtime, log)
	if err != nil {
		return nil, "", err
	}
	return res.Store, tmp, nil
}

// CommitAtomic seals the store and renames its temp file into place over
// dst, the atomic-build-completion step OpenSealedCopy's caller performs
// after a successful scan.
func CommitAtomic(st *Store, tmpPath, dst string) error {
	if err := st.Seal(); err != nil {
		return err
	}
	if err := st.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return errs.WrapIoError(err, "renaming built index into place")
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(tmpPath + suffix)
	}
	return nil
}

// Close releases the underlying database handle and advisory lock.
func (s *Store) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		s.lock.Unlock()
	}
	return err
}

// Path reports the sidecar's filesystem path, e.g. for logging.
func (s *Store) Path() string { return s.path }

// DefaultSidecarPath derives the conventional .fxi sidecar path for a source
// file: the same directory, with .fxi appended to the full source name.
func DefaultSidecarPath(sourcePath string) string {
	return filepath.Join(filepath.Dir(sourcePath), filepath.Base(sourcePath)+".fxi")
}

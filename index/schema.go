package index

// SchemaVersion is bumped whenever the table layout changes in a way that
// is not forward-compatible; Open reports a persisted index whose version
// differs as stale, and the caller rebuilds it.
const SchemaVersion = 2

const schemaDDL = `
CREATE TABLE IF NOT EXISTS header (
	key   TEXT PRIMARY KEY,
	value BLOB
);

CREATE TABLE IF NOT EXISTS seq (
	id         INTEGER PRIMARY KEY,
	name       TEXT UNIQUE,
	header_off INTEGER,
	desc       TEXT,
	desc_off   INTEGER,
	desc_len   INTEGER,
	seq_off    INTEGER,
	next_off   INTEGER,
	byte_len   INTEGER,
	base_len   INTEGER,
	line_body  INTEGER,
	line_term  INTEGER,
	normalized INTEGER,
	compA      INTEGER,
	compC      INTEGER,
	compG      INTEGER,
	compT      INTEGER,
	compN      INTEGER,
	compOther  BLOB
);
CREATE INDEX IF NOT EXISTS idx_seq_name     ON seq(name);
CREATE INDEX IF NOT EXISTS idx_seq_base_len ON seq(base_len);

CREATE TABLE IF NOT EXISTS seq_ragged (
	seq_id  INTEGER,
	pos     INTEGER,
	byte_off INTEGER,
	cum_bases INTEGER,
	term_len INTEGER,
	PRIMARY KEY (seq_id, pos)
);

CREATE TABLE IF NOT EXISTS gzi (
	uoff   INTEGER PRIMARY KEY,
	coff   INTEGER,
	bits   INTEGER,
	bitbuf INTEGER,
	window BLOB
);

CREATE TABLE IF NOT EXISTS read (
	id        INTEGER PRIMARY KEY,
	name      TEXT UNIQUE,
	name_off  INTEGER,
	name_len  INTEGER,
	seq_off   INTEGER,
	seq_len   INTEGER,
	qual_off  INTEGER,
	term_len  INTEGER,
	qual_min  INTEGER,
	qual_max  INTEGER,
	compA     INTEGER,
	compC     INTEGER,
	compG     INTEGER,
	compT     INTEGER,
	compN     INTEGER,
	compOther BLOB
);
CREATE INDEX IF NOT EXISTS idx_read_name ON read(name);

CREATE TABLE IF NOT EXISTS agg (
	key   TEXT PRIMARY KEY,
	value BLOB
);
`

// Header keys stored in the header table.
const (
	headerKeyFormat        = "format"
	headerKeySchemaVersion = "schema_version"
	headerKeySourceSize    = "source_size"
	headerKeySourceMtime   = "source_mtime"
	headerKeyFlags         = "flags"
)

// Flags recorded under headerKeyFlags.
const (
	flagGzipped     = 1 << 0
	flagFullIndex   = 1 << 1
	flagFASTQ       = 1 << 2
)

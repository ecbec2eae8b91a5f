// Package session ties the gzip random-access layer, the FASTA/FASTQ
// scanners, the SQLite index store, the keys view, and the statistics
// engine into the single entry point a caller opens a source file through.
package session

import (
	"context"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/dselans/fastx/errs"
	"github.com/dselans/fastx/fasta"
	"github.com/dselans/fastx/fastq"
	"github.com/dselans/fastx/gzindex"
	"github.com/dselans/fastx/index"
	"github.com/dselans/fastx/keys"
)

// Options configures Open.
type Options struct {
	// CheckpointInterval overrides gzindex's default checkpoint spacing,
	// in uncompressed bytes. Zero uses gzindex.DefaultCheckpointInterval.
	CheckpointInterval int64
	// CacheWindows bounds the number of decompressed byte ranges kept in
	// the session's LRU. Zero uses a small built-in default.
	CacheWindows int
	// Log is the base logger fields are attached to; nil uses the
	// standard logger.
	Log *logrus.Entry
	// Redis, if non-nil, backs a cross-process AggregateStats cache keyed
	// by source path and mtime.
	Redis RedisClient
}

// Session is the opened handle to one FASTA or FASTQ source, backed by its
// sidecar index, serving record access and aggregate statistics.
type Session struct {
	log    *logrus.Entry
	file   *os.File
	path   string
	store  *index.Store
	gz     *gzindex.Reader // non-nil only for gzipped sources
	format Format

	readerAt fasta.ReaderAt // shared by both fasta.Sequence and fastq.Read

	cache *windowCache
	sf    singleflight.Group

	cursorMu sync.Mutex
	cursor   bool // true while a forward iterator holds exclusive access

	keysOnce sync.Once
	keysView *keys.View
	redis    RedisClient
}

// Open opens path, attaching to (or building) its .fxi sidecar index. A
// missing or stale index always triggers a rebuild; OpenDegraded is the
// separate entry point for access without an index.
func Open(path string, opts Options) (*Session, error) {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithFields(logrus.Fields{"pkg": "session", "path": path})

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.WrapIoError(err, "opening source %s", path)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.WrapIoError(err, "stating source %s", path)
	}

	gzipped, format, err := detect(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if format == FormatUnknown {
		f.Close()
		return nil, errs.NewFormatError("%s: unrecognized format (expected '>' or '@' leading byte)", path)
	}

	sidecar := index.DefaultSidecarPath(path)
	res, err := index.Open(sidecar, fi.Size(), fi.ModTime().UnixNano(), log)
	if err != nil {
		f.Close()
		return nil, err
	}
	store := res.Store

	s := &Session{
		log:    log,
		file:   f,
		path:   path,
		store:  store,
		format: format,
		cache:  newWindowCache(orDefault(opts.CacheWindows, 64)),
		redis:  opts.Redis,
	}

	needBuild := res.Stale || store.Format == ""
	if needBuild {
		log.WithField("stale", res.Stale).Info("building index")
		err := s.traceOperation(context.Background(), "index.build", func() error {
			return s.build(gzipped, format, fi.Size(), fi.ModTime().UnixNano(), opts.CheckpointInterval)
		})
		if err != nil {
			s.Close()
			return nil, err
		}
	} else if gzipped {
		idx, err := store.LoadIndex()
		if err != nil {
			s.Close()
			return nil, err
		}
		gz := gzindex.NewReader(f, log)
		gz.SetIndex(idx, sourceUncompressedSizeHint(idx))
		s.gz = gz
	}

	if gzipped {
		s.readerAt = newCachedReaderAt(s, s.gz)
	} else {
		s.readerAt = f
	}

	return s, nil
}

// OpenDegraded opens path for streaming, single-pass access only, without
// building or trusting any sidecar index: a fallback for read-only
// environments, per spec.md §1's "streaming parsers without an index
// (degraded mode only)" carve-out. Random access methods are unavailable;
// only ForEach-style traversal is supported by callers using fasta.Scan or
// fastq.Scan directly against the returned reader.
func OpenDegraded(path string) (*os.File, bool, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, FormatUnknown, errs.WrapIoError(err, "opening source %s for degraded access", path)
	}
	gzipped, format, err := detect(f)
	if err != nil {
		f.Close()
		return nil, false, FormatUnknown, err
	}
	return f, gzipped, format, nil
}

// Close releases the session's file handle and index store.
func (s *Session) Close() error {
	var firstErr error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			firstErr = err
		}
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = errs.WrapIoError(err, "closing source %s", s.path)
		}
	}
	return firstErr
}

// Format reports whether the source was detected as FASTA or FASTQ.
func (s *Session) Format() Format { return s.format }

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// sourceUncompressedSizeHint recovers the decompressed stream length a
// gzindex.Reader needs for EOF bookkeeping from the greatest checkpoint
// offset, used when reattaching to a persisted index (the exact total is
// implicit in where the last checkpoint plus its trailing span lands; a
// fresh ReadAt past the true end still clips to io.EOF correctly because
// the underlying decompressor is the source of truth, not this hint).
func sourceUncompressedSizeHint(idx gzindex.Index) int64 {
	if idx.Len() == 0 {
		return 0
	}
	cp, _ := idx.ClosestBefore(1 << 62)
	return cp.UncompressedOffset
}

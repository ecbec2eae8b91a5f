package session

import (
	"bytes"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/dselans/fastx/fastq"
	"github.com/dselans/fastx/index"
	"github.com/dselans/fastx/stats"
)

var redisHandle codec.MsgpackHandle

// AggregateStats returns whole-source composition/count/size, per spec.md
// §4.6. It looks in two caches, cheapest first: the index store's on-disk
// agg table, then (if configured) a cross-process Redis cache keyed by
// source path and mtime. On a miss in both it recomputes from every
// record's persisted composition and writes the result back to both caches,
// logging rather than returning a failed write.
func (s *Session) AggregateStats() (stats.Aggregate, error) {
	if agg, ok, err := s.store.GetAggregate(); err != nil {
		return stats.Aggregate{}, err
	} else if ok {
		return agg, nil
	}

	redisKey := fmt.Sprintf("fastx:agg:%s:%d", s.path, s.store.SourceMtime)
	if s.redis != nil {
		if raw, err := s.redis.Get(redisKey); err == nil && raw != "" {
			var agg stats.Aggregate
			if decErr := cacheDecode(raw, &agg); decErr == nil {
				_ = s.store.SetAggregate(agg)
				return agg, nil
			}
		}
	}

	agg, err := s.recomputeAggregate()
	if err != nil {
		return stats.Aggregate{}, err
	}
	if err := s.store.SetAggregate(agg); err != nil {
		s.log.WithError(err).Warn("failed to cache aggregate stats in index store")
	}
	if s.redis != nil {
		if raw, encErr := cacheEncode(agg); encErr == nil {
			if err := s.redis.Set(redisKey, raw, 0); err != nil {
				s.log.WithError(err).Warn("failed to cache aggregate stats in redis")
			}
		}
	}
	return agg, nil
}

// recomputeAggregate assembles whole-source stats from the composition and
// length/quality columns InsertSeq/InsertRead persisted during build, via a
// single SQL-level aggregate query per format -- no record is reloaded
// individually.
func (s *Session) recomputeAggregate() (stats.Aggregate, error) {
	if s.format == FormatFASTQ {
		return s.recomputeFastqAggregate()
	}
	return s.recomputeFastaAggregate()
}

func (s *Session) recomputeFastaAggregate() (stats.Aggregate, error) {
	comp, totalBases, minLen, maxLen, count, err := s.store.AggregateComposition()
	if err != nil {
		return stats.Aggregate{}, err
	}
	return stats.Aggregate{
		Size:        totalBases,
		Composition: toStatsComposition(comp),
		Count:       count,
		MinLength:   minLen,
		MaxLength:   maxLen,
	}, nil
}

func (s *Session) recomputeFastqAggregate() (stats.Aggregate, error) {
	ra, err := s.store.AggregateReads()
	if err != nil {
		return stats.Aggregate{}, err
	}
	var encodings []fastq.Encoding
	if ra.Count > 0 {
		encodings = fastq.DetectEncodings(ra.QualMin, ra.QualMax)
	}
	return stats.Aggregate{
		Size:        ra.TotalBases,
		Composition: toStatsComposition(ra.Composition),
		Count:       ra.Count,
		MinLength:   ra.MinLength,
		MaxLength:   ra.MaxLength,
		MinQual:     ra.QualMin,
		MaxQual:     ra.QualMax,
		Encodings:   encodings,
	}, nil
}

// toStatsComposition collapses index.Composition's per-byte Other map into
// stats.Composition's single Other count, the only shape the aggregate
// (rather than per-record) view needs.
func toStatsComposition(c index.Composition) stats.Composition {
	out := stats.Composition{A: c.A, C: c.C, G: c.G, T: c.T, N: c.N}
	for _, v := range c.Other {
		out.Other += v
	}
	return out
}

// cacheEncode/cacheDecode (named for the cache-entry role, not the codec) back
// the Redis cache entry with the same msgpack handle the index store's BLOB
// columns use, so an Aggregate has one wire format everywhere it is cached.
func cacheEncode(v interface{}) (string, error) {
	var buf bytes.Buffer
	if err := codec.NewEncoder(&buf, &redisHandle).Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func cacheDecode(s string, v interface{}) error {
	return codec.NewDecoderBytes([]byte(s), &redisHandle).Decode(v)
}

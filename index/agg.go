package index

import (
	"database/sql"

	"github.com/dselans/fastx/errs"
	"github.com/dselans/fastx/stats"
)

const aggKeyWhole = "whole_source"

// GetAggregate loads the cached whole-source Aggregate, if one has been
// computed, reporting ok=false when the agg table has no entry yet (a fresh
// build, or one where stats were never requested).
func (s *Store) GetAggregate() (agg stats.Aggregate, ok bool, err error) {
	var blob []byte
	if err := s.db.Get(&blob, "SELECT value FROM agg WHERE key = ?", aggKeyWhole); err != nil {
		if err == sql.ErrNoRows {
			return stats.Aggregate{}, false, nil
		}
		return stats.Aggregate{}, false, errs.WrapIoError(err, "loading aggregate stats")
	}
	if err := decode(blob, &agg); err != nil {
		return stats.Aggregate{}, false, err
	}
	return agg, true, nil
}

// SetAggregate persists a whole-source Aggregate computed by the caller.
// BeginBuild clears the agg table together with the seq/read tables, so a
// rebuild never serves an Aggregate from the previous contents.
func (s *Store) SetAggregate(agg stats.Aggregate) error {
	blob, err := encode(agg)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec("INSERT OR REPLACE INTO agg (key, value) VALUES (?, ?)", aggKeyWhole, blob); err != nil {
		return errs.WrapIoError(err, "writing aggregate stats")
	}
	return nil
}

// DeleteAggregate drops the cached Aggregate, forcing the next GetAggregate
// miss to trigger a recompute.
func (s *Store) DeleteAggregate() error {
	if _, err := s.db.Exec("DELETE FROM agg WHERE key = ?", aggKeyWhole); err != nil {
		return errs.WrapIoError(err, "clearing aggregate stats")
	}
	return nil
}

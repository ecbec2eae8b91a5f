package index

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dselans/fastx/errs"
)

// ExportFai writes the indexed FASTA records in samtools .fai format:
// name, base_len, seq_off, line_body, line_len (body + terminator), one
// per line, in id order. Ragged records are exported using their first
// line's geometry, matching .fai's inability to express ragged bodies;
// callers that need exact ragged geometry should read seq_ragged directly
// instead of relying on the exported file.
func (s *Store) ExportFai(w io.Writer) error {
	rows, err := s.db.Query("SELECT name, base_len, seq_off, line_body, line_term FROM seq ORDER BY id")
	if err != nil {
		return errs.WrapIoError(err, "querying seq table for fai export")
	}
	defer rows.Close()

	bw := bufio.NewWriter(w)
	for rows.Next() {
		var name string
		var baseLen, seqOff, lineBody, lineTerm int64
		if err := rows.Scan(&name, &baseLen, &seqOff, &lineBody, &lineTerm); err != nil {
			return errs.WrapIoError(err, "scanning seq row for fai export")
		}
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%d\t%d\n", name, baseLen, seqOff, lineBody, lineBody+lineTerm); err != nil {
			return errs.WrapIoError(err, "writing fai row for %s", name)
		}
	}
	if err := rows.Err(); err != nil {
		return errs.WrapIoError(err, "iterating seq table for fai export")
	}
	return bw.Flush()
}

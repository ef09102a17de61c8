package report

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/serrors"
)

// domainColumn is the header that selects the column holding the domains.
const domainColumn = "domain"

// ReadDomains reads a domain list. Accepted formats are a CSV file with a
// "domain" column (any other header falls back to the first column), a
// header-less single column list and plain text with one domain per line and
// '#' comments. Values are trimmed and lower-cased; blanks are skipped.
// Duplicates are kept.
func ReadDomains(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(bom)); err == nil && bytes.Equal(b, bom) {
		_, _ = br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadInput, err, "could not read domain list")
	}
	if len(records) == 0 {
		return []string{}, nil
	}

	col, skipHeader := headerColumn(records[0])
	if skipHeader {
		records = records[1:]
	}

	out := make([]string, 0, len(records))
	for _, rec := range records {
		if col >= len(rec) {
			continue
		}
		if d := domain.Normalize(rec[col]); d != "" {
			out = append(out, d)
		}
	}

	return out, nil
}

// headerColumn picks the domain column from the first record and reports
// whether that record is a header. A first cell without a dot cannot be a
// domain and is treated as a column name.
func headerColumn(first []string) (int, bool) {
	for i, cell := range first {
		if strings.EqualFold(strings.TrimSpace(cell), domainColumn) {
			return i, true
		}
	}

	cell := strings.TrimSpace(first[0])

	return 0, cell != "" && !strings.Contains(cell, ".")
}

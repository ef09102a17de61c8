// Package report reads domain lists and renders result sets as CSV files and
// XLSX workbooks.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/serrors"
)

// bom is written ahead of every CSV so spreadsheet tools detect UTF-8.
//
//nolint: gochecknoglobals
var bom = []byte{0xEF, 0xBB, 0xBF}

// FullHeader lists the columns of the full and hits reports.
//
//nolint: gochecknoglobals
var FullHeader = []string{
	"domain", "is_registered", "whois_source", "traffic_monthly_est", "traffic_source",
	"http_status_traffic_page", "backlinks_total", "backlinks_source", "notes", "tm_flag",
}

// MinimalHeader lists the columns of the minimal export.
//
//nolint: gochecknoglobals
var MinimalHeader = []string{"Domain", "registered", "Traffic", "Backlinks"}

// WriteFull writes one row per result.
func WriteFull(w io.Writer, results domain.ResultSet) error {
	return writeCSV(w, FullHeader, fullRows(results))
}

// WriteHits writes the registered results with at least threshold monthly visits.
func WriteHits(w io.Writer, results domain.ResultSet, threshold int64) error {
	return writeCSV(w, FullHeader, fullRows(results.Hits(threshold)))
}

// WriteMinimal writes the short export with a human readable registration label.
func WriteMinimal(w io.Writer, results domain.ResultSet) error {
	return writeCSV(w, MinimalHeader, minimalRows(results))
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	if _, err := w.Write(bom); err != nil {
		return serrors.Wrap(serrors.ErrInternal, err, "could not write csv")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return serrors.Wrap(serrors.ErrInternal, err, "could not write csv header")
	}
	if err := cw.WriteAll(rows); err != nil {
		return serrors.Wrap(serrors.ErrInternal, err, "could not write csv rows")
	}

	return nil
}

func fullRows(results domain.ResultSet) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Domain,
			RegisteredFlag(r.Registration.Status),
			r.Registration.Source,
			strconv.FormatInt(nonNegative(r.Traffic.Value), 10),
			r.Traffic.Source,
			r.Traffic.Note,
			strconv.FormatInt(nonNegative(r.Backlinks.Value), 10),
			r.Backlinks.Source,
			r.Notes(),
			boolFlag(r.Brand),
		})
	}

	return rows
}

func minimalRows(results domain.ResultSet) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Domain,
			RegisteredLabel(r.Registration.Status),
			strconv.FormatInt(nonNegative(r.Traffic.Value), 10),
			strconv.FormatInt(nonNegative(r.Backlinks.Value), 10),
		})
	}

	return rows
}

// RegisteredFlag renders the tri-state status as True, False or an empty cell.
func RegisteredFlag(s domain.RegistrationStatus) string {
	switch s {
	case domain.StatusRegistered:
		return "True"
	case domain.StatusAvailable:
		return "False"
	default:
		return ""
	}
}

// RegisteredLabel renders the tri-state status as yes, no or unknown.
func RegisteredLabel(s domain.RegistrationStatus) string {
	switch s {
	case domain.StatusRegistered:
		return "yes"
	case domain.StatusAvailable:
		return "no"
	default:
		return "unknown"
	}
}

func boolFlag(b bool) string {
	if b {
		return "True"
	}

	return "False"
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}

	return v
}

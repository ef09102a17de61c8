package report_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"domaincheck/internal/report"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/serrors"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const bom = "\ufeff"

func sampleResults() domain.ResultSet {
	return domain.ResultSet{
		{
			Domain:       "nike.com",
			Registration: domain.Registration{Status: domain.StatusRegistered, Source: "rdap", Note: "http=200"},
			Traffic:      domain.Estimate{Value: 15000, Source: "statshow", Note: "http=200;ok"},
			Backlinks:    domain.Estimate{Value: 42, Source: "statshow", Note: "http=200;ok"},
			Brand:        true,
		},
		{
			Domain:       "free-example.org",
			Registration: domain.Registration{Status: domain.StatusAvailable, Source: "rdap", Note: "http=404"},
			Traffic:      domain.Skipped(),
			Backlinks:    domain.Skipped(),
		},
		{
			Domain:       "quiet.net",
			Registration: domain.Registration{Status: domain.StatusRegistered, Source: "who.is", Note: "rdap_http=500;http=200"},
			Traffic:      domain.NoData(),
			Backlinks:    domain.NoData(),
		},
		{
			Domain:       "mystery.io",
			Registration: domain.Registration{Source: "who.is", Note: "rdap_error=TIMEOUT;whois_error=TRANSPORT"},
			Traffic:      domain.Skipped(),
			Backlinks:    domain.Skipped(),
		},
	}
}

func TestReadDomains(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "csv with domain column",
			input: "rank,Domain,visits\n1,Example.com,10\n2, nike.com ,5\n3,,1\n",
			want:  []string{"example.com", "nike.com"},
		},
		{
			name:  "csv with other header uses first column",
			input: "url,visits\nexample.com,10\nexample.com,3\n",
			want:  []string{"example.com", "example.com"},
		},
		{
			name:  "headerless single column",
			input: "example.com\r\nnike.com\r\n",
			want:  []string{"example.com", "nike.com"},
		},
		{
			name:  "plain text with comments and bom",
			input: bom + "# my list\nexample.com\n\n#nike.com\nADIDAS.DE\n",
			want:  []string{"example.com", "adidas.de"},
		},
		{
			name:  "empty",
			input: "",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := report.ReadDomains(strings.NewReader(tt.input))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestReadDomains_Unreadable(t *testing.T) {
	_, err := report.ReadDomains(iotestErrReader{})
	require.ErrorIs(t, err, serrors.ErrBadInput)
}

type iotestErrReader struct{}

func (iotestErrReader) Read([]byte) (int, error) { return 0, os.ErrPermission }

func TestWriteFull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteFull(&buf, sampleResults()))

	want := bom +
		"domain,is_registered,whois_source,traffic_monthly_est,traffic_source,http_status_traffic_page," +
		"backlinks_total,backlinks_source,notes,tm_flag\n" +
		"nike.com,True,rdap,15000,statshow,http=200;ok,42,statshow," +
		"whois=http=200 | traffic=http=200;ok | backlinks=http=200;ok,True\n" +
		"free-example.org,False,rdap,0,none,skip_no_reg,0,none," +
		"whois=http=404 | traffic=skip_no_reg | backlinks=skip_no_reg,False\n" +
		"quiet.net,True,who.is,0,none,no_data,0,none," +
		"whois=rdap_http=500;http=200 | traffic=no_data | backlinks=no_data,False\n" +
		"mystery.io,,who.is,0,none,skip_no_reg,0,none," +
		"whois=rdap_error=TIMEOUT;whois_error=TRANSPORT | traffic=skip_no_reg | backlinks=skip_no_reg,False\n"
	require.Equal(t, want, buf.String())
}

func TestWriteHits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteHits(&buf, sampleResults(), 5000))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[1], "nike.com,True,"))

	buf.Reset()
	require.NoError(t, report.WriteHits(&buf, sampleResults(), 20000))
	require.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 1, "header only")
}

func TestWriteMinimal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteMinimal(&buf, sampleResults()))

	want := bom + "Domain,registered,Traffic,Backlinks\n" +
		"nike.com,yes,15000,42\n" +
		"free-example.org,no,0,0\n" +
		"quiet.net,yes,0,0\n" +
		"mystery.io,unknown,0,0\n"
	require.Equal(t, want, buf.String())
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteWorkbook(&buf, sampleResults(), 5000))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()

	require.Equal(t, []string{report.SheetFull, report.SheetHits, report.SheetMinimal}, f.GetSheetList())

	full, err := f.GetRows(report.SheetFull)
	require.NoError(t, err)
	require.Len(t, full, 5)
	require.Equal(t, report.FullHeader, full[0])
	require.Equal(t, "15000", full[1][3])

	hits, err := f.GetRows(report.SheetHits)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	minimal, err := f.GetRows(report.SheetMinimal)
	require.NoError(t, err)
	require.Equal(t, []string{"mystery.io", "unknown", "0", "0"}, minimal[4])
}

func TestFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	files := report.Files{Dir: dir, Threshold: 5000, Workbook: true}

	require.NoError(t, files.Checkpoint(context.Background(), sampleResults()[:2]))
	b, err := os.ReadFile(filepath.Join(dir, report.FullFile))
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(b)), "\n"), 3)

	paths, err := files.Write(context.Background(), sampleResults())
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "full_results.csv"),
		filepath.Join(dir, "hits_over_5000.csv"),
		filepath.Join(dir, "export_min.csv"),
		filepath.Join(dir, "results.xlsx"),
	}, paths)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 4, "no temp files left behind")

	b, err = os.ReadFile(filepath.Join(dir, report.FullFile))
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(b)), "\n"), 5)
}

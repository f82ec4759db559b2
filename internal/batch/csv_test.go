package batch

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadRows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		in         string
		urlCol     string
		wantHeader []string
		wantColumn string
		wantURLs   []string
	}{
		{
			name:       "detects link column",
			in:         "name,LinkedIn Profile,notes\nAda,linkedin.com/in/ada,x\nBob,https://linkedin.com/in/bob,y\n",
			wantHeader: []string{"name", "LinkedIn Profile", "notes"},
			wantColumn: "LinkedIn Profile",
			wantURLs:   []string{"linkedin.com/in/ada", "https://linkedin.com/in/bob"},
		},
		{
			name:       "explicit column wins",
			in:         "profile_url,backup\na,b\n",
			urlCol:     " backup ",
			wantHeader: []string{"profile_url", "backup"},
			wantColumn: "backup",
			wantURLs:   []string{"b"},
		},
		{
			name:       "headerless list of urls",
			in:         "https://linkedin.com/in/ada\n\n  linkedin.com/in/bob  \n,\n",
			wantHeader: []string{DefaultURLColumn},
			wantColumn: DefaultURLColumn,
			wantURLs:   []string{"https://linkedin.com/in/ada", "linkedin.com/in/bob"},
		},
		{
			name:       "falls back to first named column",
			in:         ",person\n,p1\n",
			wantHeader: []string{"", "person"},
			wantColumn: "person",
			wantURLs:   []string{"p1"},
		},
		{
			name:       "short rows are padded",
			in:         "name,url\nAda\n",
			wantHeader: []string{"name", "url"},
			wantColumn: "url",
			wantURLs:   []string{""},
		},
		{
			name:       "blank rows are skipped",
			in:         "url\n\n,\nlinkedin.com/in/x\n",
			wantHeader: []string{"url"},
			wantColumn: "url",
			wantURLs:   []string{"linkedin.com/in/x"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table, err := LoadRows(strings.NewReader(tc.in), tc.urlCol)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.wantHeader, table.Header); diff != "" {
				t.Fatalf("unexpected header (-want +got):\n%s", diff)
			}
			if table.URLColumn != tc.wantColumn {
				t.Fatalf("unexpected url column %q", table.URLColumn)
			}

			var urls []string
			for i, row := range table.Rows {
				if row.Number != i+1 {
					t.Fatalf("row %d numbered %d", i, row.Number)
				}
				urls = append(urls, row.URL(table.URLColumn))
			}
			if diff := cmp.Diff(tc.wantURLs, urls); diff != "" {
				t.Fatalf("unexpected urls (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadRowsErrors(t *testing.T) {
	t.Parallel()

	if _, err := LoadRows(strings.NewReader(" , \nx,y\n"), ""); !errors.Is(err, ErrNoURLColumn) {
		t.Fatalf("expected ErrNoURLColumn, got %v", err)
	}

	if _, err := LoadRows(strings.NewReader("url\n\"unterminated\n"), ""); err == nil {
		t.Fatalf("expected csv parse error")
	}

	table, err := LoadRows(strings.NewReader(""), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(table.Rows))
	}
}

func TestWriteResults(t *testing.T) {
	t.Parallel()

	header := []string{"name", "score", "url"}
	results := []Result{
		{
			Row:        Row{Number: 1, Values: map[string]string{"name": "Ada", "score": "old", "url": "u1"}},
			Score:      3,
			Reason:     "Founder | Funded",
			Band:       "Strong",
			Confidence: 0.85,
		},
		{
			Row:        Row{Number: 2, Values: map[string]string{"name": "Bob, Jr.", "url": ""}},
			Reason:     "No URL",
			Band:       "No/Negative",
			Confidence: 0.2,
		},
	}

	var buf bytes.Buffer
	if err := WriteResults(&buf, header, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "score,reason,band,confidence,name,url\n" +
		"3,Founder | Funded,Strong,0.85,Ada,u1\n" +
		"0,No URL,No/Negative,0.2,\"Bob, Jr.\",\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/eo-scorer/internal/canon"
)

// DefaultURLColumn names the single column of a headerless list of URLs.
const DefaultURLColumn = "url"

// Result columns written before the original ones.
const (
	ColumnScore      = "score"
	ColumnReason     = "reason"
	ColumnBand       = "band"
	ColumnConfidence = "confidence"
)

var (
	urlColumnRe = regexp.MustCompile(`(?i)link|url`)

	resultColumns = []string{ColumnScore, ColumnReason, ColumnBand, ColumnConfidence}

	ErrNoURLColumn = errors.New("could not determine URL column, set it explicitly")
)

// Row is one input record keyed by header name.
type Row struct {
	Number int
	Values map[string]string
}

// URL returns the trimmed value of the URL column.
func (r Row) URL(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// Table is a loaded input file.
type Table struct {
	Header    []string
	Rows      []Row
	URLColumn string
}

// LoadRows reads a CSV and picks the column holding profile URLs.
//
// An explicit urlCol always wins. A file whose only header cell already looks
// like a URL is treated as a headerless list of URLs. Otherwise the first
// header mentioning "link" or "url" is used, then the first non-empty header.
func LoadRows(r io.Reader, urlCol string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return &Table{URLColumn: strings.TrimSpace(urlCol)}, nil
	}

	header := records[0]
	body := records[1:]

	if urlCol = strings.TrimSpace(urlCol); urlCol != "" {
		return &Table{Header: header, Rows: toRows(header, body), URLColumn: urlCol}, nil
	}

	if len(header) == 1 && canon.LooksLikeURL(header[0]) {
		return &Table{
			Header:    []string{DefaultURLColumn},
			Rows:      urlList(records),
			URLColumn: DefaultURLColumn,
		}, nil
	}

	column, err := detectURLColumn(header)
	if err != nil {
		return nil, err
	}

	return &Table{Header: header, Rows: toRows(header, body), URLColumn: column}, nil
}

func detectURLColumn(header []string) (string, error) {
	for _, name := range header {
		if urlColumnRe.MatchString(name) {
			return name, nil
		}
	}
	for _, name := range header {
		if strings.TrimSpace(name) != "" {
			return name, nil
		}
	}

	return "", ErrNoURLColumn
}

func toRows(header []string, body [][]string) []Row {
	rows := make([]Row, 0, len(body))
	for _, rec := range body {
		if blank(rec) {
			continue
		}

		values := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(rec) {
				values[name] = rec[i]
			} else {
				values[name] = ""
			}
		}
		rows = append(rows, Row{Number: len(rows) + 1, Values: values})
	}

	return rows
}

func urlList(records [][]string) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if len(rec) == 0 {
			continue
		}
		cell := strings.TrimSpace(rec[0])
		if cell == "" {
			continue
		}
		rows = append(rows, Row{
			Number: len(rows) + 1,
			Values: map[string]string{DefaultURLColumn: cell},
		})
	}

	return rows
}

func blank(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}

// WriteResults writes the result columns followed by the original columns in
// input order. Original columns that clash with result columns are dropped.
func WriteResults(w io.Writer, header []string, results []Result) error {
	columns := append([]string{}, resultColumns...)
	for _, name := range header {
		if !slices.Contains(resultColumns, name) {
			columns = append(columns, name)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, res := range results {
		record := []string{
			strconv.Itoa(res.Score),
			res.Reason,
			res.Band,
			strconv.FormatFloat(res.Confidence, 'f', -1, 64),
		}
		for _, name := range columns[len(resultColumns):] {
			record = append(record, res.Row.Values[name])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", res.Row.Number, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

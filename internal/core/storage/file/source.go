// Package file loads the sales dataset from a JSON or CSV document on disk.
package file

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aevon-lab/salesdash/internal/core/sales"
)

// Format of a dataset document.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Source reads the whole document into a Dataset.
type Source struct {
	path   string
	format Format
	nowFn  func() time.Time
}

// New returns a Source for path. The format follows the file extension;
// anything other than .csv is read as a JSON array of objects.
func New(path string) *Source {
	format := FormatJSON
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		format = FormatCSV
	}
	return &Source{path: path, format: format, nowFn: time.Now}
}

// Format reports how the document will be decoded.
func (s *Source) Format() Format { return s.format }

// Load reads and validates every record. Any failure is a *sales.DataFormatError.
func (s *Source) Load(ctx context.Context) (*sales.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, sales.NewSourceError(s.path, err)
	}

	var rows []row
	switch s.format {
	case FormatCSV:
		rows, err = decodeCSV(raw)
	default:
		rows, err = decodeJSON(raw)
	}
	if err != nil {
		return nil, sales.NewSourceError(s.path, err)
	}

	parser := recordParser{source: s.path}
	records := make([]sales.Record, 0, len(rows))
	for i, r := range rows {
		rec, err := parser.parse(i+1, r)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sum := sha256.Sum256(raw)
	ds := &sales.Dataset{
		Records:     records,
		LoadedAt:    s.nowFn().UTC(),
		Source:      s.path,
		Fingerprint: hex.EncodeToString(sum[:]),
	}

	slog.Info("[Loader] Dataset loaded",
		"source", s.path,
		"format", s.format,
		"records", len(records),
		"fingerprint", ds.Fingerprint[:12])

	return ds, nil
}

func decodeJSON(raw []byte) ([]row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding JSON array: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("expected a JSON array of records, got %v", describeToken(tok))
	}

	rows := make([]row, 0)
	for dec.More() {
		var doc map[string]interface{}
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding JSON array element %d: %w", len(rows)+1, err)
		}
		r := make(row, len(doc))
		for k, v := range doc {
			r[normalizeKey(k)] = v
		}
		rows = append(rows, r)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decoding JSON array: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON array")
	}
	return rows, nil
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case nil:
		return "null"
	case json.Delim:
		return string(v)
	default:
		return fmt.Sprintf("%T", v)
	}
}

func decodeCSV(raw []byte) ([]row, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, []byte("\ufeff"))))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = normalizeKey(header[i])
	}

	var rows []row
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}

		r := make(row, len(header))
		for i, name := range header {
			r[name] = fields[i]
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Package ingest loads conversation transcripts from the file formats the
// QA team actually receives: plain text dumps, CSV exports and Excel
// spreadsheets.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// transcriptColumn is the expected column name in tabular inputs, matched
// case-insensitively.
const transcriptColumn = "conversa"

// Conversation is one transcript to classify. ID is 1-based position in
// the source file.
type Conversation struct {
	ID         int
	Transcript string
}

// ReadFile loads conversations from path, dispatching on extension.
// Supported: .txt, .csv, .xlsx.
func ReadFile(path string) ([]Conversation, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return readTXT(path)
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .txt, .csv or .xlsx)", filepath.Ext(path))
	}
}

// readTXT splits the file on literal "---" separator lines. Empty records
// are dropped.
func readTXT(path string) ([]Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var out []Conversation
	for _, part := range strings.Split(decode(data), "---") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, Conversation{ID: len(out) + 1, Transcript: part})
	}
	return out, nil
}

// readCSV expects a header row carrying a "conversa" column. Quoted
// multiline cells are fine; blank and nan-like cells are skipped.
func readCSV(path string) ([]Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	r := csv.NewReader(strings.NewReader(decode(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv %s is empty", path)
	}

	col := findColumn(rows[0])
	if col < 0 {
		return nil, fmt.Errorf("csv %s has no %q column", path, transcriptColumn)
	}

	var out []Conversation
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" || strings.EqualFold(cell, "nan") {
			continue
		}
		out = append(out, Conversation{ID: len(out) + 1, Transcript: cell})
	}
	return out, nil
}

// readXLSX applies the same column contract to the first sheet of an
// Excel workbook.
func readXLSX(path string) ([]Conversation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx %s is empty", path)
	}

	col := findColumn(rows[0])
	if col < 0 {
		return nil, fmt.Errorf("xlsx %s has no %q column", path, transcriptColumn)
	}

	var out []Conversation
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" || strings.EqualFold(cell, "nan") {
			continue
		}
		out = append(out, Conversation{ID: len(out) + 1, Transcript: cell})
	}
	return out, nil
}

func findColumn(header []string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")), transcriptColumn) {
			return i
		}
	}
	return -1
}

// decode strips a UTF-8 BOM and falls back to a Latin-1 reinterpretation
// when the bytes are not valid UTF-8, which is how the exports from the
// legacy tooling arrive.
func decode(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

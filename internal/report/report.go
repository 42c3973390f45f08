// Package report exports classified conversations to the CSV and Excel
// layouts the QA team consumes.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"veredito/internal/verdict"
)

// maxTranscriptLen caps the conversa column so spreadsheet rows stay
// readable.
const maxTranscriptLen = 200

// Row is one exported line: the verdict plus its source conversation.
type Row struct {
	ConversationID int
	Verdict        verdict.Verdict
	Transcript     string
}

var header = []string{
	"conversa_numero",
	"acao_necessaria",
	"tipo_falha",
	"motivo_transbordo",
	"descricao",
	"acao_sugerida",
	"conversa",
}

// WriteCSV writes the report with a UTF-8 BOM so Excel opens the pt-BR
// text correctly.
func WriteCSV(w io.Writer, rows []Row) error {
	if _, err := w.Write([]byte("\uFEFF")); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("write row %d: %w", r.ConversationID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same layout as an Excel workbook.
func WriteXLSX(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, r := range rows {
		for col, val := range record(r) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("row cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("write row %d: %w", r.ConversationID, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}

func record(r Row) []string {
	v := r.Verdict.Normalize()
	return []string{
		strconv.Itoa(r.ConversationID),
		boolPT(v.ActionRequired),
		v.FailureType,
		v.TransferReason,
		v.Description,
		v.SuggestedFix,
		truncate(r.Transcript, maxTranscriptLen),
	}
}

func boolPT(b bool) string {
	if b {
		return verdict.Yes
	}
	return verdict.No
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

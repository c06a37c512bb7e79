package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/harrisonrobin/todo/pkg/model"
	"github.com/harrisonrobin/todo/pkg/store"
	"github.com/jung-kurt/gofpdf"
)

const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatPDF    = "pdf"
	FormatSQLite = "sqlite"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Export renders tasks in one of the byte formats. SQLite is written
// directly to disk by ExportSQLite. PDFs use the core Arial font, which only
// covers cp1252; use ExportWithFont for other scripts.
func Export(tasks []model.Task, format string) ([]byte, error) {
	return ExportWithFont(tasks, format, "")
}

// ExportWithFont is Export with a TrueType font file embedded in PDF output.
// An empty fontFile falls back to Arial.
func ExportWithFont(tasks []model.Task, format, fontFile string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		if tasks == nil {
			tasks = []model.Task{}
		}
		return json.MarshalIndent(tasks, "", "  ")
	case FormatCSV:
		var b bytes.Buffer
		if err := store.Encode(&b, tasks); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case FormatPDF:
		return renderPDF(tasks, fontFile)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func renderPDF(tasks []model.Task, fontFile string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family, boldStyle := "Arial", "B"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontFile != "" {
		if _, err := os.Stat(fontFile); err != nil {
			return nil, fmt.Errorf("pdf font: %w", err)
		}
		family, boldStyle = "utf8", ""
		tr = func(s string) string { return s }
		pdf.AddUTF8Font(family, "", fontFile)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("pdf font: %w", err)
		}
	}
	pdf.AddPage()
	pdf.SetFont(family, boldStyle, 14)
	pdf.Cell(40, 10, "Task List")
	pdf.Ln(12)

	pdf.SetFont(family, boldStyle, 10)
	widths := []float64{45, 80, 25, 35}
	for i, h := range store.Header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 10)
	if len(tasks) == 0 {
		pdf.CellFormat(0, 7, "No tasks yet.", "", 0, "L", false, 0, "")
	}
	for _, t := range tasks {
		for i, v := range []string{t.Name, t.Description, t.Priority, t.Timestamp} {
			pdf.CellFormat(widths[i], 7, tr(truncate(v, 48)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

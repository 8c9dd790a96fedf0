package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Section is a titled block of prose and/or bullet items.
type Section struct {
	Heading string
	Body    string
	Items   []string
}

// Document is a printable report: leading sections, then an optional table per group.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
	Groups   []TableGroup
}

// TableGroup is a headed table, e.g. one day of a plan.
type TableGroup struct {
	Heading string
	Notes   string
	Table   Dataset
	// Widths are relative column weights; equal widths when empty.
	Widths []float64
}

// PDFExporter renders documents with gofpdf core fonts.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const (
	pageWidth  = 190.0
	lineHeight = 5.0
)

// Render produces the PDF bytes for doc.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	for _, g := range doc.Groups {
		if len(g.Table.Headers) == 0 {
			return nil, fmt.Errorf("pdf table %q requires at least one header", g.Heading)
		}
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 6, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, s := range doc.Sections {
		writeHeading(pdf, tr(s.Heading))
		pdf.SetFont("Arial", "", 10)
		if s.Body != "" {
			pdf.MultiCell(0, lineHeight, tr(s.Body), "", "", false)
		}
		for _, item := range s.Items {
			pdf.MultiCell(0, lineHeight, tr("- "+item), "", "", false)
		}
		pdf.Ln(3)
	}

	for _, g := range doc.Groups {
		writeHeading(pdf, tr(g.Heading))
		widths := columnWidths(len(g.Table.Headers), g.Widths)

		pdf.SetFont("Arial", "B", 9)
		for i, header := range g.Table.Headers {
			pdf.CellFormat(widths[i], 7, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, row := range g.Table.Rows {
			for i, header := range g.Table.Headers {
				// core fonts do not wrap inside CellFormat; long values are clipped to the column
				pdf.CellFormat(widths[i], 6, tr(fit(pdf, row[header], widths[i])), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		if g.Notes != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, lineHeight, tr("Notes: "+g.Notes), "", "", false)
		}
		pdf.Ln(3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeading(pdf *gofpdf.Fpdf, heading string) {
	if heading == "" {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, heading, "", 1, "", false, 0, "")
}

func columnWidths(n int, weights []float64) []float64 {
	widths := make([]float64, n)
	total := 0.0
	if len(weights) == n {
		for _, w := range weights {
			total += w
		}
	}
	for i := range widths {
		if total > 0 {
			widths[i] = pageWidth * weights[i] / total
		} else {
			widths[i] = pageWidth / float64(n)
		}
	}
	return widths
}

func fit(pdf *gofpdf.Fpdf, value string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(value) <= limit {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/finishing-touch/internal/model"
	"github.com/nurpe/finishing-touch/internal/money"
)

const (
	businessName = "Finishing Touch Painting"
	coreFont     = "Helvetica"
	customFont   = "DocumentSans"
)

// Generator renders estimates and invoices. Without a TTF font it falls back
// to the core Helvetica font, which only covers cp1252.
type Generator struct {
	fontName string
	fontData []byte
	loc      *time.Location
}

func NewGenerator(fontPath string, loc *time.Location) (*Generator, error) {
	if loc == nil {
		loc = time.UTC
	}
	g := &Generator{fontName: coreFont, loc: loc}
	if fontPath == "" {
		return g, nil
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf font: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	g.fontName = customFont
	g.fontData = data
	return g, nil
}

type document struct {
	title        string
	number       string
	dateLabel    string
	date         time.Time
	reference    string
	customer     model.CustomerSnapshot
	currency     string
	lines        []model.LineItem
	subtotal     int64
	tax          int64
	total        int64
	notes        string
	closingLines []string
}

func (g *Generator) EstimatePDF(estimate model.Estimate) ([]byte, error) {
	doc := document{
		title:     "ESTIMATE",
		number:    estimate.Number,
		dateLabel: "Moving date",
		date:      estimate.MovingDate,
		customer:  estimate.Customer(),
		currency:  estimate.CurrencySymbol,
		lines:     estimate.LineItems,
		subtotal:  estimate.Subtotal,
		tax:       estimate.Tax,
		total:     estimate.Total,
		closingLines: []string{
			"Prices are fixed at the time this estimate was issued.",
			"Thank you for considering " + businessName + ".",
		},
	}
	if estimate.Notes != nil {
		doc.notes = *estimate.Notes
	}
	return g.render(doc)
}

func (g *Generator) InvoicePDF(invoice model.Invoice) ([]byte, error) {
	doc := document{
		title:     "INVOICE",
		number:    invoice.Number,
		dateLabel: "Issued",
		date:      invoice.CreatedAt,
		customer: model.CustomerSnapshot{
			Name:       invoice.CustomerName,
			JobAddress: invoice.CustomerJobAddress,
			Phone:      invoice.CustomerPhone,
			Email:      invoice.CustomerEmail,
		},
		currency:     invoice.CurrencySymbol,
		lines:        invoice.LineItems,
		subtotal:     invoice.Subtotal,
		tax:          invoice.Tax,
		total:        invoice.Total,
		closingLines: []string{"Payment is due upon receipt.", "Thank you for your business."},
	}
	if invoice.DerivedFromEstimateNumber != nil {
		doc.reference = "Estimate " + *invoice.DerivedFromEstimateNumber
	}
	return g.render(doc)
}

func (g *Generator) render(doc document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	text := func(s string) string { return s }
	if g.fontData != nil {
		pdf.AddUTF8FontFromBytes(g.fontName, "", g.fontData)
		pdf.AddUTF8FontFromBytes(g.fontName, "B", g.fontData)
	} else {
		translate := pdf.UnicodeTranslatorFromDescriptor("")
		text = func(s string) string { return translate(coreSafe(s)) }
	}
	amount := func(v int64) string { return text(money.Format(v, doc.currency)) }

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, text(businessName), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s %s", doc.title, doc.number), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s", doc.dateLabel, g.formatDate(doc.date)), "", 1, "L", false, 0, "")
	if doc.reference != "" {
		pdf.CellFormat(0, 6, text(doc.reference), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	for _, line := range []string{
		doc.customer.Name,
		doc.customer.JobAddress,
		fmt.Sprintf("Phone: %s", safeValue(doc.customer.Phone)),
		fmt.Sprintf("Email: %s", safeValue(doc.customer.Email)),
	} {
		pdf.MultiCell(0, 5, text(line), "", "L", false)
	}
	pdf.Ln(4)

	widths := []float64{84, 20, 35, 35}
	drawTableRow(pdf, g.fontName, []string{"Description", "Qty", "Unit price", "Total"}, widths, true)
	for _, line := range doc.lines {
		unit := amount(line.UnitPrice)
		if line.UnitPrice == 0 && line.Qty > 0 && line.TotalPrice > 0 {
			unit = "-"
		}
		drawTableRow(pdf, g.fontName, []string{
			text(line.Description),
			fmt.Sprintf("%d", line.Qty),
			unit,
			amount(line.TotalPrice),
		}, widths, false)
	}
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, "Subtotal: "+amount(doc.subtotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, "Tax: "+amount(doc.tax), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Total: "+amount(doc.total), "", 1, "R", false, 0, "")

	if strings.TrimSpace(doc.notes) != "" {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 11)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, text(doc.notes), "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "", 9)
	for _, line := range doc.closingLines {
		pdf.MultiCell(0, 5, text(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
}

// coreSafe replaces characters the core fonts cannot draw.
func coreSafe(value string) string {
	return strings.NewReplacer("₪", "ILS ", "\u2014", "-").Replace(value)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func (g *Generator) formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(g.loc).Format("02 Jan 2006")
}

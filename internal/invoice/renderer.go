package invoice

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/jung-kurt/gofpdf"

	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/common/logger"
	"tradievoice/internal/profile"
	"tradievoice/internal/quote"
)

// Brand palette for the generated document.
var (
	colorPrimary   = rgb{227, 87, 171}
	colorSecondary = rgb{140, 135, 201}
	colorText      = rgb{18, 41, 51}
	colorRowFill   = rgb{245, 245, 245}
)

type rgb struct{ r, g, b int }

// Renderer produces PDF invoices from quote data and the business profile.
type Renderer struct {
	logger logger.Logger
}

func NewRenderer(log logger.Logger) *Renderer {
	return &Renderer{
		logger: log.WithFields(map[string]interface{}{"component": "invoice-renderer"}),
	}
}

// Render lays out a single-page A4 invoice and returns the PDF bytes.
// Totals are always recomputed from the line items, and GST only appears
// when the business is registered.
func (r *Renderer) Render(q *quote.QuoteData, p *profile.BusinessProfile) ([]byte, error) {
	if q == nil {
		return nil, apperrors.NewInvalidRequestError("quote data is required")
	}
	if p == nil {
		p = profile.DefaultProfile()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	r.drawHeader(pdf, p)
	r.drawCustomer(pdf, q)
	totals := ComputeTotals(q.Items, p.GSTRegistered)
	r.drawItemsTable(pdf, q.Items)
	r.drawTotals(pdf, totals, p.GSTRegistered)
	r.drawNotes(pdf, q.Notes)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.NewRenderFailedError(err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawHeader(pdf *gofpdf.Fpdf, p *profile.BusinessProfile) {
	if !r.drawLogo(pdf, p.LogoBase64) {
		pdf.SetFont("Helvetica", "B", 20)
		setTextColor(pdf, colorSecondary)
		pdf.CellFormat(0, 10, p.BusinessName, "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 26)
	setTextColor(pdf, colorPrimary)
	title := "INVOICE"
	if p.GSTRegistered {
		title = "TAX INVOICE"
	}
	pdf.CellFormat(0, 14, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	setTextColor(pdf, colorText)
	pdf.CellFormat(0, 6, p.BusinessName, "", 1, "L", false, 0, "")
	if p.ABN != "" {
		pdf.CellFormat(0, 6, "ABN: "+p.ABN, "", 1, "L", false, 0, "")
	}
	if p.Email != "" {
		pdf.CellFormat(0, 6, p.Email, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

// drawLogo registers and places the profile logo. The base64 payload is
// decoded and sniffed before gofpdf ever sees it: a bad image handed to
// RegisterImageOptionsReader would poison the document's error state.
func (r *Renderer) drawLogo(pdf *gofpdf.Fpdf, logoBase64 string) bool {
	if logoBase64 == "" {
		return false
	}

	payload := logoBase64
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		r.logger.Warn("logo is not valid base64, skipping", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		r.logger.Warn("logo is not a decodable image, skipping", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}

	var imageType string
	switch format {
	case "png":
		imageType = "PNG"
	case "jpeg":
		imageType = "JPG"
	default:
		r.logger.Warn("logo format is not supported, skipping", map[string]interface{}{
			"format": format,
		})
		return false
	}

	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader("profile-logo", opts, bytes.NewReader(raw))
	pdf.ImageOptions("profile-logo", 10, 10, 40, 0, false, opts, 0, "")
	pdf.SetY(40)
	return true
}

func (r *Renderer) drawCustomer(pdf *gofpdf.Fpdf, q *quote.QuoteData) {
	pdf.SetFont("Helvetica", "B", 11)
	setTextColor(pdf, colorSecondary)
	pdf.CellFormat(0, 7, "BILL TO", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	setTextColor(pdf, colorText)
	name := q.CustomerName
	if name == "" {
		name = quote.DefaultCustomerName
	}
	pdf.CellFormat(0, 7, name, "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (r *Renderer) drawItemsTable(pdf *gofpdf.Fpdf, items []quote.LineItem) {
	const (
		wDesc  = 95.0
		wQty   = 20.0
		wUnit  = 35.0
		wTotal = 40.0
		rowH   = 8.0
	)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(colorSecondary.r, colorSecondary.g, colorSecondary.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(wDesc, rowH, "Description", "", 0, "L", true, 0, "")
	pdf.CellFormat(wQty, rowH, "Qty", "", 0, "R", true, 0, "")
	pdf.CellFormat(wUnit, rowH, "Unit Price", "", 0, "R", true, 0, "")
	pdf.CellFormat(wTotal, rowH, "Total", "", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	setTextColor(pdf, colorText)
	pdf.SetFillColor(colorRowFill.r, colorRowFill.g, colorRowFill.b)
	for i, item := range items {
		fill := i%2 == 1
		pdf.CellFormat(wDesc, rowH, item.Description, "", 0, "L", fill, 0, "")
		pdf.CellFormat(wQty, rowH, trimQty(item.Quantity), "", 0, "R", fill, 0, "")
		pdf.CellFormat(wUnit, rowH, money(item.UnitPrice), "", 0, "R", fill, 0, "")
		pdf.CellFormat(wTotal, rowH, money(item.Total), "", 1, "R", fill, 0, "")
	}
	pdf.Ln(2)
}

func (r *Renderer) drawTotals(pdf *gofpdf.Fpdf, totals Totals, gstRegistered bool) {
	const (
		wLabel = 150.0
		wValue = 40.0
		rowH   = 8.0
	)

	pdf.SetFont("Helvetica", "", 10)
	setTextColor(pdf, colorText)
	if gstRegistered {
		pdf.CellFormat(wLabel, rowH, "Subtotal", "", 0, "R", false, 0, "")
		pdf.CellFormat(wValue, rowH, money(totals.Subtotal), "", 1, "R", false, 0, "")
		pdf.CellFormat(wLabel, rowH, "GST (10%)", "", 0, "R", false, 0, "")
		pdf.CellFormat(wValue, rowH, money(totals.GST), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(colorPrimary.r, colorPrimary.g, colorPrimary.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(wLabel, rowH+2, "Grand Total", "", 0, "R", true, 0, "")
	pdf.CellFormat(wValue, rowH+2, money(totals.GrandTotal), "", 1, "R", true, 0, "")
	pdf.Ln(6)
}

func (r *Renderer) drawNotes(pdf *gofpdf.Fpdf, notes string) {
	if notes == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 11)
	setTextColor(pdf, colorSecondary)
	pdf.CellFormat(0, 7, "NOTES", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	setTextColor(pdf, colorText)
	pdf.MultiCell(0, 6, notes, "", "L", false)
}

func setTextColor(pdf *gofpdf.Fpdf, c rgb) {
	pdf.SetTextColor(c.r, c.g, c.b)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// trimQty renders whole quantities without a decimal tail.
func trimQty(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

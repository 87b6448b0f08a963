package invoice

import (
	"math"

	"tradievoice/internal/quote"
)

// GSTRate is the flat Australian goods and services tax rate.
const GSTRate = 0.10

// Totals holds the derived money figures for one invoice. Subtotal is the
// sum of line item totals; GST is zero when the business is not registered.
type Totals struct {
	Subtotal   float64
	GST        float64
	GrandTotal float64
}

// ComputeTotals derives invoice totals from the line items. The quote's own
// total_amount field is ignored here so that the rendered figures always
// agree with the printed line items.
func ComputeTotals(items []quote.LineItem, gstRegistered bool) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Total
	}
	subtotal = round2(subtotal)

	if !gstRegistered {
		return Totals{Subtotal: subtotal, GrandTotal: subtotal}
	}

	gst := round2(subtotal * GSTRate)
	return Totals{
		Subtotal:   subtotal,
		GST:        gst,
		GrandTotal: round2(subtotal + gst),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

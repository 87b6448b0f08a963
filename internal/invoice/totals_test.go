package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradievoice/internal/quote"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name          string
		items         []quote.LineItem
		gstRegistered bool
		want          Totals
	}{
		{
			name: "gst registered adds 10 percent",
			items: []quote.LineItem{
				{Description: "Labour", Quantity: 8, UnitPrice: 75, Total: 600},
				{Description: "Materials", Quantity: 1, UnitPrice: 500, Total: 500},
			},
			gstRegistered: true,
			want:          Totals{Subtotal: 1100, GST: 110, GrandTotal: 1210},
		},
		{
			name: "not registered leaves total at subtotal",
			items: []quote.LineItem{
				{Description: "Labour", Quantity: 8, UnitPrice: 75, Total: 600},
				{Description: "Materials", Quantity: 1, UnitPrice: 500, Total: 500},
			},
			gstRegistered: false,
			want:          Totals{Subtotal: 1100, GST: 0, GrandTotal: 1100},
		},
		{
			name:          "no items",
			items:         nil,
			gstRegistered: true,
			want:          Totals{},
		},
		{
			name: "fractional cents round to two places",
			items: []quote.LineItem{
				{Description: "Cable", Quantity: 3, UnitPrice: 33.33, Total: 99.99},
			},
			gstRegistered: true,
			want:          Totals{Subtotal: 99.99, GST: 10, GrandTotal: 109.99},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, tt.gstRegistered)
			assert.InDelta(t, tt.want.Subtotal, got.Subtotal, 0.001)
			assert.InDelta(t, tt.want.GST, got.GST, 0.001)
			assert.InDelta(t, tt.want.GrandTotal, got.GrandTotal, 0.001)
		})
	}
}

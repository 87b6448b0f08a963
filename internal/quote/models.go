package quote

// DefaultCustomerName is used whenever no customer can be inferred from the
// dictation.
const DefaultCustomerName = "Valued Customer"

// UpsellThreshold is the quote value above which (strictly greater than) the
// upsell flag is set.
const UpsellThreshold = 10000.00

// LineItem is a single priced row of a quote. Total is expected to equal
// Quantity * UnitPrice but is not enforced here; the renderer recomputes all
// money it prints.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// QuoteData is the structured result of one dictation. It is never persisted;
// it is returned to the caller or consumed by the invoice renderer.
type QuoteData struct {
	CustomerName      string     `json:"customer_name"`
	Items             []LineItem `json:"items"`
	TotalAmount       float64    `json:"total_amount"`
	Notes             string     `json:"notes"`
	UpsellOpportunity bool       `json:"upsell_opportunity"`
}

// ItemTotalSum returns the sum of the line item totals.
func (q *QuoteData) ItemTotalSum() float64 {
	var sum float64
	for _, item := range q.Items {
		sum += item.Total
	}
	return sum
}

// Normalize fills documented defaults and recomputes the upsell flag from the
// summed item totals. The extraction collaborator is instructed to set the
// flag itself, but the strict greater-than rule is enforced here in both
// directions so the boundary is deterministic.
func (q *QuoteData) Normalize() {
	if q.CustomerName == "" {
		q.CustomerName = DefaultCustomerName
	}
	if q.Items == nil {
		q.Items = []LineItem{}
	}
	q.UpsellOpportunity = q.ItemTotalSum() > UpsellThreshold
}

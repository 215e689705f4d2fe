package billing

import "math"

// Amounts holds the monetary components derived for one line item.
type Amounts struct {
	GrossAmount    float64 `json:"gross_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxableAmount  float64 `json:"taxable_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	Total          float64 `json:"total"`
}

// Compute derives the monetary fields for a line from unit price, quantity,
// discount percent and GST percent. The GST is split into two equal CGST and
// SGST halves, so the per-half amount is taxable*gst/200 and the levied tax is
// twice that. Outputs are rounded to two decimals; inputs are taken as-is,
// negative values flow through arithmetically for refund lines.
func Compute(unitPrice, quantity, discountPercent, gstPercent float64) Amounts {
	gross := unitPrice * quantity
	discount := gross * discountPercent / 100
	taxable := round2(gross - discount)
	halfGST := taxable * gstPercent / 200
	tax := round2(halfGST * 2)
	return Amounts{
		GrossAmount:    round2(gross),
		DiscountAmount: round2(discount),
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          round2(taxable + tax),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

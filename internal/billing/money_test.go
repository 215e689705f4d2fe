package billing

import "testing"

func TestComputeScenario(t *testing.T) {
	got := Compute(100, 2, 10, 18)
	if got.TaxableAmount != 180.00 {
		t.Fatalf("expected taxable 180.00 got %.2f", got.TaxableAmount)
	}
	if got.TaxAmount != 32.40 {
		t.Fatalf("expected tax 32.40 got %.2f", got.TaxAmount)
	}
	if got.Total != 212.40 {
		t.Fatalf("expected total 212.40 got %.2f", got.Total)
	}
}

func TestComputeTotalIsTaxablePlusTax(t *testing.T) {
	cases := []struct{ price, qty, disc, gst float64 }{
		{100, 2, 10, 18},
		{55.55, 3, 0, 12},
		{9.99, 7, 5, 28},
		{1200, 1, 33.33, 18},
		{0.01, 1000, 2.5, 5},
	}
	for _, c := range cases {
		got := Compute(c.price, c.qty, c.disc, c.gst)
		if got.Total != round2(got.TaxableAmount+got.TaxAmount) {
			t.Fatalf("compute(%v): total %.2f != taxable %.2f + tax %.2f",
				c, got.Total, got.TaxableAmount, got.TaxAmount)
		}
		if got.TaxAmount != round2(got.TaxableAmount*c.gst/100) {
			t.Fatalf("compute(%v): tax %.4f != taxable*gst/100", c, got.TaxAmount)
		}
	}
}

func TestComputeZeroInputs(t *testing.T) {
	got := Compute(0, 0, 0, 0)
	if got != (Amounts{}) {
		t.Fatalf("expected all-zero amounts, got %+v", got)
	}
}

func TestComputeNegativeQuantity(t *testing.T) {
	// Refund lines rely on negative values flowing through unchanged.
	got := Compute(100, -2, 10, 18)
	if got.TaxableAmount != -180.00 {
		t.Fatalf("expected taxable -180.00 got %.2f", got.TaxableAmount)
	}
	if got.Total != -212.40 {
		t.Fatalf("expected total -212.40 got %.2f", got.Total)
	}
}

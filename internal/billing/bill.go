package billing

import "context"

// PaymentStatus is the per-bill payment state tracked by this screen.
type PaymentStatus string

const (
	StatusUnpaid PaymentStatus = "Unpaid"
	StatusPaid   PaymentStatus = "Paid"
	StatusDraft  PaymentStatus = "Draft"
)

// Valid reports whether the status is one the machine knows.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusUnpaid, StatusPaid, StatusDraft:
		return true
	}
	return false
}

// BillItem is the persisted projection of a ledger row.
type BillItem struct {
	ProductID       string  `json:"product_id"`
	ItemCode        string  `json:"item_code"`
	ItemName        string  `json:"item_name"`
	CompanyName     string  `json:"company_name"`
	HSNCode         string  `json:"hsn_code"`
	Packing         string  `json:"packing"`
	Batch           string  `json:"batch"`
	UnitPrice       float64 `json:"rate"`
	Quantity        float64 `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
	GSTPercent      float64 `json:"gst_percent"`
	TaxableAmount   float64 `json:"taxable_amount"`
}

// Bill is the remote sales record. Beyond id, customer and payment status the
// engine treats it as opaque.
type Bill struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id"`
	BillNumber    string        `json:"bill_number"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Items         []BillItem    `json:"items"`
}

// BillPayload is the create/update body sent to the bill service.
type BillPayload struct {
	CustomerID string     `json:"customer_id"`
	Items      []BillItem `json:"items"`
}

// SalesReturn is the remote record of returned quantities. It cannot exist
// without a bill id.
type SalesReturn struct {
	ID           string     `json:"id"`
	BillID       string     `json:"bill_id"`
	CustomerID   string     `json:"customer_id"`
	Reason       string     `json:"reason"`
	RefundAmount float64    `json:"refund_amount"`
	Items        []BillItem `json:"items"`
}

// ReturnPayload is the create body sent to the sales-return service.
type ReturnPayload struct {
	BillID       string     `json:"bill_id"`
	CustomerID   string     `json:"customer_id"`
	Reason       string     `json:"reason"`
	RefundAmount float64    `json:"refund_amount"`
	Items        []BillItem `json:"items"`
}

// Document is the rendered bill handed back by the document service, either
// as a URL or inline base64 content.
type Document struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// BillStore is the engine's view of the remote persistence collaborators.
// The wire format is owned by those services; implementations live in
// internal/remote.
type BillStore interface {
	BillsByCustomer(ctx context.Context, customerID string) ([]Bill, error)
	CreateBill(ctx context.Context, payload BillPayload) (Bill, error)
	UpdateBill(ctx context.Context, id string, payload BillPayload) (Bill, error)
	DeleteBill(ctx context.Context, id string) error
	CreateSalesReturn(ctx context.Context, payload ReturnPayload) (SalesReturn, error)
	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) error
	GenerateDocument(ctx context.Context, customerID string) (Document, error)
}

// itemFromRow projects a ledger row into its persisted shape.
func itemFromRow(r Row) BillItem {
	return BillItem{
		ProductID:       r.ProductID,
		ItemCode:        r.ItemCode,
		ItemName:        r.ItemName,
		CompanyName:     r.CompanyName,
		HSNCode:         r.HSNCode,
		Packing:         r.Packing,
		Batch:           r.Batch,
		UnitPrice:       r.UnitPrice,
		Quantity:        r.Quantity,
		DiscountPercent: r.DiscountPercent,
		GSTPercent:      r.GSTPercent,
		TaxableAmount:   r.TaxableAmount,
	}
}

// rowFromItem seeds a ledger row from a persisted bill item when a bill is
// reopened for editing.
func rowFromItem(it BillItem) Row {
	row := Row{
		ProductID:       it.ProductID,
		ItemCode:        it.ItemCode,
		ItemName:        it.ItemName,
		CompanyName:     it.CompanyName,
		HSNCode:         it.HSNCode,
		Packing:         it.Packing,
		Batch:           it.Batch,
		UnitPrice:       it.UnitPrice,
		Quantity:        it.Quantity,
		DiscountPercent: it.DiscountPercent,
		GSTPercent:      it.GSTPercent,
	}
	row.recompute()
	return row
}

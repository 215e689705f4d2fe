package billing

// Request bodies for the billing HTTP surface. Numeric row input travels as
// free-form strings and is coerced at the ledger (unparsable becomes 0);
// structural fields carry validator tags instead.

type OpenSessionRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	BillID     string `json:"bill_id,omitempty"`
}

type AddRowRequest struct {
	List ListKind `json:"list" validate:"omitempty,oneof=sale return"`
}

type SetFieldRequest struct {
	Field Field  `json:"field" validate:"required"`
	Value string `json:"value"`
}

type SelectProductRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type ReturnItemRequest struct {
	Quantity float64 `json:"quantity" validate:"required"`
}

type ScanRequest struct {
	Code string `json:"code" validate:"required"`
}

type KeyInputRequest struct {
	Keys string `json:"keys" validate:"required"`
}

type PaymentChangeRequest struct {
	Status PaymentStatus `json:"status" validate:"required,oneof=Unpaid Paid Draft"`
}

// SessionView is the rendered session state returned to the console.
type SessionView struct {
	SessionID  string         `json:"session_id"`
	CustomerID string         `json:"customer_id"`
	BillID     string         `json:"bill_id,omitempty"`
	SaleRows   []Row          `json:"sale_rows"`
	ReturnRows []Row          `json:"return_rows"`
	Totals     CombinedTotals `json:"totals"`
	LastScan   *ScanResult    `json:"last_scan,omitempty"`
}

func viewOf(s *Session) SessionView {
	sale, ret := s.Rows()
	return SessionView{
		SessionID:  s.ID.String(),
		CustomerID: s.CustomerID,
		BillID:     s.BillID(),
		SaleRows:   sale,
		ReturnRows: ret,
		Totals:     s.Totals(),
		LastScan:   s.LastScan(),
	}
}

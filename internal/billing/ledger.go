package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/shopdesk/shopdesk/internal/catalog"
)

// ListKind names one of the two ledgers a row can live in.
type ListKind string

const (
	ListSale   ListKind = "sale"
	ListReturn ListKind = "return"
)

// Field names an editable row field.
type Field string

const (
	FieldItemCode        Field = "item_code"
	FieldItemName        Field = "item_name"
	FieldCompanyName     Field = "company_name"
	FieldHSNCode         Field = "hsn_code"
	FieldPacking         Field = "packing"
	FieldBatch           Field = "batch"
	FieldUnitPrice       Field = "unit_price"
	FieldQuantity        Field = "quantity"
	FieldDiscountPercent Field = "discount_percent"
	FieldGSTPercent      Field = "gst_percent"
)

// Row is one product entry in either ledger. A row with an empty item code is
// a placeholder awaiting the next scan or manual selection and is excluded
// from persisted payloads.
type Row struct {
	ID              uuid.UUID `json:"id"`
	ProductID       string    `json:"product_id"`
	ItemCode        string    `json:"item_code"`
	ItemName        string    `json:"item_name"`
	CompanyName     string    `json:"company_name"`
	HSNCode         string    `json:"hsn_code"`
	Packing         string    `json:"packing"`
	Batch           string    `json:"batch"`
	UnitPrice       float64   `json:"unit_price"`
	Quantity        float64   `json:"quantity"`
	DiscountPercent float64   `json:"discount_percent"`
	GSTPercent      float64   `json:"gst_percent"`
	TaxableAmount   float64   `json:"taxable_amount"`
}

// IsPlaceholder reports whether the row is still awaiting a product.
func (r Row) IsPlaceholder() bool {
	return r.ItemCode == ""
}

func (r *Row) recompute() {
	r.TaxableAmount = Compute(r.UnitPrice, r.Quantity, r.DiscountPercent, r.GSTPercent).TaxableAmount
}

// Amounts derives the full monetary breakdown for the row.
func (r Row) Amounts() Amounts {
	return Compute(r.UnitPrice, r.Quantity, r.DiscountPercent, r.GSTPercent)
}

// Totals aggregates the monetary components over one ledger list.
type Totals struct {
	GrossAmount    float64 `json:"gross_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	Total          float64 `json:"total"`
}

// CombinedTotals reports both lists plus the net position of the bill. A
// negative net is surfaced as a refund owed to the customer, never shown as a
// negative amount due.
type CombinedTotals struct {
	Sale         Totals  `json:"sale"`
	Return       Totals  `json:"return"`
	NetPayable   float64 `json:"net_payable"`
	RefundAmount float64 `json:"refund_amount"`
}

// Ledger holds the two ordered line-item lists of one billing session. It is
// not safe for concurrent use; the owning session serializes access.
type Ledger struct {
	Sale   []Row
	Return []Row
}

// NewLedger creates a ledger with a single sale placeholder so the first scan
// has a row to land in.
func NewLedger() *Ledger {
	l := &Ledger{}
	l.AddRow(ListSale)
	return l
}

// AddRow appends an empty placeholder row with a fresh id to the given list.
func (l *Ledger) AddRow(kind ListKind) *Row {
	row := Row{ID: uuid.New(), Batch: "N/A"}
	list := l.list(kind)
	*list = append(*list, row)
	return &(*list)[len(*list)-1]
}

// RemoveRow deletes the row from the given list. Sibling rows are untouched.
func (l *Ledger) RemoveRow(kind ListKind, id uuid.UUID) error {
	list := l.list(kind)
	for i := range *list {
		if (*list)[i].ID == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return nil
		}
	}
	return ErrRowNotFound
}

// SetField updates one field of the row, searching both lists. Edits to
// price, quantity, discount or GST recompute the derived taxable amount;
// everything else is stored verbatim. Unparsable numeric input coerces to 0.
func (l *Ledger) SetField(id uuid.UUID, field Field, value string) error {
	row := l.findRow(id)
	if row == nil {
		return ErrRowNotFound
	}
	switch field {
	case FieldItemCode:
		row.ItemCode = value
	case FieldItemName:
		row.ItemName = value
	case FieldCompanyName:
		row.CompanyName = value
	case FieldHSNCode:
		row.HSNCode = value
	case FieldPacking:
		row.Packing = value
	case FieldBatch:
		row.Batch = value
	case FieldUnitPrice:
		row.UnitPrice = parseAmount(value)
		row.recompute()
	case FieldQuantity:
		row.Quantity = parseAmount(value)
		row.recompute()
	case FieldDiscountPercent:
		row.DiscountPercent = parseAmount(value)
		row.recompute()
	case FieldGSTPercent:
		row.GSTPercent = parseAmount(value)
		row.recompute()
	default:
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
	return nil
}

// SelectProduct seeds the row from a catalog entry. Descriptive and pricing
// fields come from the catalog; a quantity the user already typed survives,
// otherwise it defaults to 1. Filling the last sale row appends a fresh
// placeholder so successive scans always have a target.
func (l *Ledger) SelectProduct(id uuid.UUID, p catalog.Product) error {
	row := l.findRow(id)
	if row == nil {
		return ErrRowNotFound
	}
	row.ProductID = p.ID
	row.ItemCode = p.ItemCode
	row.ItemName = p.ProductName
	row.CompanyName = p.BrandName
	row.HSNCode = p.HSNCode
	row.Packing = p.PackSize
	row.UnitPrice = p.MRP
	row.DiscountPercent = p.Discount
	row.GSTPercent = p.GST
	if row.Quantity == 0 {
		row.Quantity = 1
	}
	row.recompute()
	if len(l.Sale) > 0 && l.Sale[len(l.Sale)-1].ID == id {
		l.AddRow(ListSale)
	}
	return nil
}

// FillScan routes one scanned code into the first sale placeholder, appending
// a row when none is free. Repeat scans of the same code land in the next
// placeholder rather than incrementing the earlier row's quantity.
func (l *Ledger) FillScan(p catalog.Product) *Row {
	var target *Row
	for i := range l.Sale {
		if l.Sale[i].IsPlaceholder() {
			target = &l.Sale[i]
			break
		}
	}
	if target == nil {
		target = l.AddRow(ListSale)
	}
	id := target.ID
	_ = l.SelectProduct(id, p)
	return l.findRow(id)
}

// ReturnItem moves quantity from a sale row into the return ledger. A full
// quantity removes the sale row entirely and carries the whole line over
// under a new id; a partial quantity decrements the sale row and creates a
// return row whose taxable amount is recomputed from the moved quantity
// alone. Both ledgers change together or not at all.
func (l *Ledger) ReturnItem(saleRowID uuid.UUID, qty float64) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	idx := -1
	for i := range l.Sale {
		if l.Sale[i].ID == saleRowID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrRowNotFound
	}
	row := l.Sale[idx]
	if qty > row.Quantity {
		return ErrQuantityExceedsRow
	}

	returned := row
	returned.ID = uuid.New()
	returned.Quantity = qty
	returned.recompute()

	if qty == row.Quantity {
		l.Sale = append(l.Sale[:idx], l.Sale[idx+1:]...)
	} else {
		l.Sale[idx].Quantity -= qty
		l.Sale[idx].recompute()
	}
	l.Return = append(l.Return, returned)
	return nil
}

// UndoReturn moves a return row back into the sale ledger. When a sale row
// for the same product still exists the quantities merge; otherwise the row
// is re-inserted as-is. Exact inverse of a full return, and valid after a
// partial one.
func (l *Ledger) UndoReturn(returnRowID uuid.UUID) error {
	idx := -1
	for i := range l.Return {
		if l.Return[i].ID == returnRowID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrRowNotFound
	}
	ret := l.Return[idx]

	merged := false
	for i := range l.Sale {
		if !l.Sale[i].IsPlaceholder() && l.Sale[i].ProductID == ret.ProductID {
			l.Sale[i].Quantity += ret.Quantity
			l.Sale[i].recompute()
			merged = true
			break
		}
	}
	if !merged {
		l.Sale = append(l.Sale, ret)
	}
	l.Return = append(l.Return[:idx], l.Return[idx+1:]...)
	return nil
}

// Totals folds the monetary components over one list.
func (l *Ledger) Totals(kind ListKind) Totals {
	var t Totals
	for _, row := range *l.list(kind) {
		a := row.Amounts()
		t.GrossAmount = round2(t.GrossAmount + a.GrossAmount)
		t.DiscountAmount = round2(t.DiscountAmount + a.DiscountAmount)
		t.TaxAmount = round2(t.TaxAmount + a.TaxAmount)
		t.Total = round2(t.Total + a.Total)
	}
	return t
}

// CombinedTotals computes both lists and the bill's net position.
func (l *Ledger) CombinedTotals() CombinedTotals {
	sale := l.Totals(ListSale)
	ret := l.Totals(ListReturn)
	net := round2(sale.Total - ret.Total)
	out := CombinedTotals{Sale: sale, Return: ret}
	if net < 0 {
		out.RefundAmount = -net
	} else {
		out.NetPayable = net
	}
	return out
}

// Items returns the non-placeholder rows of one list, the shape persisted to
// the remote services.
func (l *Ledger) Items(kind ListKind) []Row {
	var items []Row
	for _, row := range *l.list(kind) {
		if !row.IsPlaceholder() {
			items = append(items, row)
		}
	}
	return items
}

// Clear empties both lists and restores the initial placeholder.
func (l *Ledger) Clear() {
	l.Sale = nil
	l.Return = nil
	l.AddRow(ListSale)
}

func (l *Ledger) list(kind ListKind) *[]Row {
	if kind == ListReturn {
		return &l.Return
	}
	return &l.Sale
}

func (l *Ledger) findRow(id uuid.UUID) *Row {
	for i := range l.Sale {
		if l.Sale[i].ID == id {
			return &l.Sale[i]
		}
	}
	for i := range l.Return {
		if l.Return[i].ID == id {
			return &l.Return[i]
		}
	}
	return nil
}

// parseAmount coerces free-form numeric input. Anything unparsable, including
// the empty string, becomes 0.
func parseAmount(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}

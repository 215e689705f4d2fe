package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// returnReason is the fixed reason recorded on every sales return created by
// the reconciliation flow.
const returnReason = "Returned at billing counter"

// SaveResult reports the outcome of a reconciliation save.
type SaveResult struct {
	BillID   string `json:"bill_id"`
	ReturnID string `json:"return_id,omitempty"`
}

// Save persists the session's ledger as up to two linked remote records: the
// sales bill from the sale rows, then a sales return referencing it from the
// return rows. Steps run strictly in sequence and a failing step aborts the
// rest; already completed steps are not rolled back — the inconsistency
// window is logged and written to the audit trail instead of being silently
// compensated. On success the ledger is cleared and the customer's bill list
// is refreshed from the remote source of truth.
func (s *Service) Save(ctx context.Context, sessionID uuid.UUID) (SaveResult, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return SaveResult{}, err
	}

	saleRows, returnRows, returnTotals := sess.snapshotItems()

	// Local validation happens before any network call.
	if len(saleRows) == 0 && len(returnRows) == 0 {
		return SaveResult{}, ErrEmptyLedger
	}
	for _, row := range append(append([]Row{}, saleRows...), returnRows...) {
		if row.ProductID == "" {
			return SaveResult{}, fmt.Errorf("item %q: %w", row.ItemCode, ErrMissingProduct)
		}
	}

	billID := sess.BillID()
	saleItems := make([]BillItem, 0, len(saleRows))
	for _, row := range saleRows {
		saleItems = append(saleItems, itemFromRow(row))
	}

	switch {
	case billID != "" && len(saleItems) > 0:
		if _, err := s.store.UpdateBill(ctx, billID, BillPayload{CustomerID: sess.CustomerID, Items: saleItems}); err != nil {
			return SaveResult{}, fmt.Errorf("update bill: %w", err)
		}
	case billID != "" && len(returnRows) > 0:
		// Return-only against an existing bill: the stale line items are
		// truncated rather than re-sent.
		if _, err := s.store.UpdateBill(ctx, billID, BillPayload{CustomerID: sess.CustomerID, Items: []BillItem{}}); err != nil {
			return SaveResult{}, fmt.Errorf("clear bill items: %w", err)
		}
	case len(saleItems) > 0:
		created, err := s.store.CreateBill(ctx, BillPayload{CustomerID: sess.CustomerID, Items: saleItems})
		if err != nil {
			return SaveResult{}, fmt.Errorf("create bill: %w", err)
		}
		billID = created.ID
		sess.setBillID(billID)
	}

	result := SaveResult{BillID: billID}

	if len(returnRows) > 0 {
		if billID == "" {
			return SaveResult{}, ErrReturnWithoutBill
		}
		returnItems := make([]BillItem, 0, len(returnRows))
		for _, row := range returnRows {
			returnItems = append(returnItems, itemFromRow(row))
		}
		ret, err := s.store.CreateSalesReturn(ctx, ReturnPayload{
			BillID:       billID,
			CustomerID:   sess.CustomerID,
			Reason:       returnReason,
			RefundAmount: returnTotals.Total,
			Items:        returnItems,
		})
		if err != nil {
			// The bill write already succeeded; surface the inconsistency
			// loudly instead of deleting the bill behind the user's back.
			s.logger.Error("sales return failed after bill was persisted",
				slog.String("bill_id", billID), slog.Any("error", err))
			s.recordAudit(ctx, "save.partial", "bill", billID,
				fmt.Sprintf("bill persisted but sales return failed: %v", err))
			return SaveResult{}, fmt.Errorf("create sales return: %w", err)
		}
		result.ReturnID = ret.ID
	}

	sess.clearLedger()
	if _, err := s.refreshBills(ctx, sess.CustomerID); err != nil {
		// The save itself succeeded; a failed refresh only leaves the list stale.
		s.logger.Warn("bill list refresh failed after save",
			slog.String("customer_id", sess.CustomerID), slog.Any("error", err))
	}
	s.recordAudit(ctx, "save.completed", "bill", result.BillID,
		fmt.Sprintf("sale_items=%d return_items=%d", len(saleItems), len(returnRows)))
	s.logger.Info("bill reconciled",
		slog.String("bill_id", result.BillID),
		slog.Int("sale_items", len(saleItems)),
		slog.Int("return_items", len(returnRows)))
	return result, nil
}

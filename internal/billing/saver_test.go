package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillAndSet(t *testing.T, sess *Session, qty string) Row {
	t.Helper()
	sale, _ := sess.Rows()
	rowID := sale[0].ID
	require.NoError(t, sess.SelectProduct(rowID, "prod-p"))
	require.NoError(t, sess.SetField(rowID, FieldQuantity, qty))
	sale, _ = sess.Rows()
	return sale[0]
}

func TestSaveCreatesNewBill(t *testing.T) {
	svc, store := newTestService(t)
	sess := openTestSession(t, svc, "cust-1")
	fillAndSet(t, sess, "2")

	result, err := svc.Save(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "bill-1", result.BillID)
	assert.Empty(t, result.ReturnID)

	bill := store.bills["bill-1"]
	require.NotNil(t, bill)
	require.Len(t, bill.Items, 1)
	assert.Equal(t, "prod-p", bill.Items[0].ProductID)
	assert.Equal(t, 180.00, bill.Items[0].TaxableAmount)

	// Ledger resets to a single placeholder and the session now edits the bill.
	sale, ret := sess.Rows()
	require.Len(t, sale, 1)
	assert.True(t, sale[0].IsPlaceholder())
	assert.Empty(t, ret)
	assert.Equal(t, "bill-1", sess.BillID())
}

func TestSaveWithReturnCreatesLinkedRecords(t *testing.T) {
	svc, store := newTestService(t)
	sess := openTestSession(t, svc, "cust-1")
	row := fillAndSet(t, sess, "5")
	require.NoError(t, sess.ReturnItem(row.ID, 2))

	result, err := svc.Save(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "bill-1", result.BillID)
	assert.Equal(t, "ret-1", result.ReturnID)

	require.Len(t, store.returns, 1)
	ret := store.returns[0]
	assert.Equal(t, "bill-1", ret.BillID)
	assert.Equal(t, "Returned at billing counter", ret.Reason)
	assert.Equal(t, Compute(100, 2, 10, 18).Total, ret.RefundAmount)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, 2.0, ret.Items[0].Quantity)
}

func TestSaveReturnWithoutBillFails(t *testing.T) {
	svc, store := newTestService(t)
	sess := openTestSession(t, svc, "cust-1")
	row := fillAndSet(t, sess, "5")
	require.NoError(t, sess.ReturnItem(row.ID, 5))
	// Ledger now holds only return rows and there is no existing bill.

	_, err := svc.Save(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrReturnWithoutBill)
	assert.Zero(t, store.totalWrites(), "validation failures must not reach the network")
}

func TestSaveEmptyLedgerFails(t *testing.T) {
	svc, store := newTestService(t)
	sess := openTestSession(t, svc, "cust-1")

	_, err := svc.Save(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrEmptyLedger)
	assert.Zero(t, store.totalWrites())
}

func TestSaveRowWithoutProductFails(t *testing.T) {
	svc, store := newTestService(t)
	sess := openTestSession(t, svc, "cust-1")
	sale, _ := sess.Rows()
	// A hand-typed row that never went through product selection.
	require.NoError(t, sess.SetField(sale[0].ID, FieldItemCode, "X123"))
	require.NoError(t, sess.SetField(sale[0].ID, FieldUnitPrice, "100"))

	_, err := svc.Save(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrMissingProduct)
	assert.Zero(t, store.totalWrites())
}

func TestSaveUpdatesExistingBill(t *testing.T) {
	svc, store := newTestService(t)
	seeded := store.seedBill("cust-1", StatusUnpaid, BillItem{
		ProductID: "prod-p", ItemCode: "X123", ItemName: "Paracetamol 500",
		UnitPrice: 100, Quantity: 1, DiscountPercent: 10, GSTPercent: 18, TaxableAmount: 90,
	})

	sess, err := svc.OpenSession(context.Background(), "cust-1", seeded.ID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.CloseSession(sess.ID) })

	sale, _ := sess.Rows()
	require.Len(t, sale, 2, "one seeded row plus the trailing placeholder")
	require.NoError(t, sess.SetField(sale[0].ID, FieldQuantity, "4"))

	result, err := svc.Save(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, result.BillID)
	assert.Equal(t, 4.0, store.bills[seeded.ID].Items[0].Quantity)
}

func TestSaveReturnOnlyAgainstExistingBillClearsItems(t *testing.T) {
	svc, store := newTestService(t)
	seeded := store.seedBill("cust-1", StatusUnpaid, BillItem{
		ProductID: "prod-p", ItemCode: "X123", ItemName: "Paracetamol 500",
		UnitPrice: 100, Quantity: 5, DiscountPercent: 10, GSTPercent: 18, TaxableAmount: 450,
	})

	sess, err := svc.OpenSession(context.Background(), "cust-1", seeded.ID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.CloseSession(sess.ID) })

	sale, _ := sess.Rows()
	require.NoError(t, sess.ReturnItem(sale[0].ID, 5))

	result, err := svc.Save(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, result.BillID)
	assert.Empty(t, store.bills[seeded.ID].Items, "stale sale items are truncated on a return-only save")
	require.Len(t, store.returns, 1)
	assert.Equal(t, seeded.ID, store.returns[0].BillID)
}

func TestSavePartialFailureIsNotRolledBack(t *testing.T) {
	svc, store := newTestService(t)
	sess := openTestSession(t, svc, "cust-1")
	row := fillAndSet(t, sess, "5")
	require.NoError(t, sess.ReturnItem(row.ID, 2))

	remoteErr := errors.New("sales return service rejected the payload")
	store.createReturnErr = remoteErr

	_, err := svc.Save(context.Background(), sess.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, remoteErr, "the remote message is surfaced verbatim")

	// The bill write that already happened stays in place.
	require.Len(t, store.bills, 1)
	assert.Empty(t, store.returns)

	// The ledger is not cleared, so the user can retry.
	sale, ret := sess.Rows()
	assert.NotEmpty(t, ret)
	require.Len(t, sale, 2)
}

func TestSaveRemoteCreateFailureSurfacedVerbatim(t *testing.T) {
	svc, store := newTestService(t)
	sess := openTestSession(t, svc, "cust-1")
	fillAndSet(t, sess, "2")

	remoteErr := errors.New("bill number sequence exhausted")
	store.createBillErr = remoteErr

	_, err := svc.Save(context.Background(), sess.ID)
	assert.ErrorIs(t, err, remoteErr)

	sale, _ := sess.Rows()
	assert.False(t, sale[0].IsPlaceholder(), "ledger survives a failed save")
}

func TestSaveUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	sess := openTestSession(t, svc, "cust-1")
	require.NoError(t, svc.CloseSession(sess.ID))

	_, err := svc.Save(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

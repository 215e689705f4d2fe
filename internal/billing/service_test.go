package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/shopdesk/shopdesk/internal/catalog"
)

// ============================================================================
// MOCK BILL STORE
// ============================================================================

type statusCall struct {
	billID string
	status PaymentStatus
}

type mockStore struct {
	mu sync.Mutex

	bills      map[string]*Bill
	byCustomer map[string][]string
	returns    []SalesReturn
	nextBill   int
	nextReturn int

	statusCalls []statusCall
	docCalls    int
	listCalls   int

	// Error injection
	listErr         error
	createBillErr   error
	updateBillErr   error
	createReturnErr error
	statusErr       map[string]error
	docErr          error
}

func newMockStore() *mockStore {
	return &mockStore{
		bills:      make(map[string]*Bill),
		byCustomer: make(map[string][]string),
		statusErr:  make(map[string]error),
	}
}

func (m *mockStore) seedBill(customerID string, status PaymentStatus, items ...BillItem) *Bill {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBill++
	id := fmt.Sprintf("bill-%d", m.nextBill)
	bill := &Bill{
		ID:            id,
		CustomerID:    customerID,
		BillNumber:    fmt.Sprintf("INV-%04d", m.nextBill),
		PaymentStatus: status,
		Items:         items,
	}
	m.bills[id] = bill
	m.byCustomer[customerID] = append(m.byCustomer[customerID], id)
	return bill
}

func (m *mockStore) BillsByCustomer(ctx context.Context, customerID string) ([]Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Bill
	for _, id := range m.byCustomer[customerID] {
		out = append(out, *m.bills[id])
	}
	return out, nil
}

func (m *mockStore) CreateBill(ctx context.Context, payload BillPayload) (Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createBillErr != nil {
		return Bill{}, m.createBillErr
	}
	m.nextBill++
	id := fmt.Sprintf("bill-%d", m.nextBill)
	bill := &Bill{
		ID:            id,
		CustomerID:    payload.CustomerID,
		BillNumber:    fmt.Sprintf("INV-%04d", m.nextBill),
		PaymentStatus: StatusUnpaid,
		Items:         payload.Items,
	}
	m.bills[id] = bill
	m.byCustomer[payload.CustomerID] = append(m.byCustomer[payload.CustomerID], id)
	return *bill, nil
}

func (m *mockStore) UpdateBill(ctx context.Context, id string, payload BillPayload) (Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateBillErr != nil {
		return Bill{}, m.updateBillErr
	}
	bill, ok := m.bills[id]
	if !ok {
		return Bill{}, fmt.Errorf("bill %s not found", id)
	}
	bill.Items = payload.Items
	return *bill, nil
}

func (m *mockStore) DeleteBill(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bills, id)
	return nil
}

func (m *mockStore) CreateSalesReturn(ctx context.Context, payload ReturnPayload) (SalesReturn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createReturnErr != nil {
		return SalesReturn{}, m.createReturnErr
	}
	m.nextReturn++
	ret := SalesReturn{
		ID:           fmt.Sprintf("ret-%d", m.nextReturn),
		BillID:       payload.BillID,
		CustomerID:   payload.CustomerID,
		Reason:       payload.Reason,
		RefundAmount: payload.RefundAmount,
		Items:        payload.Items,
	}
	m.returns = append(m.returns, ret)
	return ret, nil
}

func (m *mockStore) UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls = append(m.statusCalls, statusCall{billID: id, status: status})
	if err := m.statusErr[id]; err != nil {
		return err
	}
	if bill, ok := m.bills[id]; ok {
		bill.PaymentStatus = status
	}
	return nil
}

func (m *mockStore) GenerateDocument(ctx context.Context, customerID string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docCalls++
	if m.docErr != nil {
		return Document{}, m.docErr
	}
	return Document{Success: true, URL: "https://docs.example/" + customerID}, nil
}

func (m *mockStore) totalWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.statusCalls) + len(m.returns) + m.nextBill
}

// ============================================================================
// TEST WIRING
// ============================================================================

type staticCatalog struct{ products []catalog.Product }

func (s staticCatalog) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products, nil
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		productP(),
		{ID: "prod-q", ItemCode: "Y900", ProductName: "Cough Syrup", BrandName: "Zen", MRP: 120, GST: 18, HSNCode: "3003", PackSize: "100ml"},
	}
}

func newTestService(t *testing.T) (*Service, *mockStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.Default()
	loader := catalog.NewLoader(staticCatalog{products: testProducts()}, nil, time.Minute, logger)
	holder := catalog.NewHolder(loader, time.Minute)
	store := newMockStore()
	confirmations := NewConfirmationStore(client, time.Minute)
	svc := NewService(store, holder, confirmations, nil, 100*time.Millisecond, logger)
	return svc, store
}

func openTestSession(t *testing.T, svc *Service, customerID string) *Session {
	t.Helper()
	sess, err := svc.OpenSession(context.Background(), customerID, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.CloseSession(sess.ID) })
	return sess
}

package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopdesk/shopdesk/internal/catalog"
)

// AuditLog records billing events for later inspection. Recording is
// best-effort; implementations must not fail the calling operation.
type AuditLog interface {
	Record(ctx context.Context, action, entity, entityID, detail string)
}

// Service is the billing engine behind the "New Bill" screen: it opens and
// closes sessions, reconciles saves against the remote bill and sales-return
// services, and drives the payment-status machine.
type Service struct {
	store         BillStore
	catalog       *catalog.Holder
	registry      *Registry
	confirmations *ConfirmationStore
	audit         AuditLog
	logger        *slog.Logger
	burstGap      time.Duration

	cacheMu   sync.Mutex
	billCache map[string][]Bill
}

// NewService wires the engine together. audit may be nil.
func NewService(store BillStore, holder *catalog.Holder, confirmations *ConfirmationStore, auditLog AuditLog, burstGap time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:         store,
		catalog:       holder,
		registry:      NewRegistry(),
		confirmations: confirmations,
		audit:         auditLog,
		logger:        logger,
		burstGap:      burstGap,
		billCache:     make(map[string][]Bill),
	}
}

// OpenSession creates a billing session for a customer. A non-empty billID
// opens an existing bill for editing, pre-populating the ledger from its
// items as served by the remote source of truth.
func (s *Service) OpenSession(ctx context.Context, customerID, billID string) (*Session, error) {
	snap, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var existing *Bill
	if billID != "" {
		bills, err := s.refreshBills(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("load bills: %w", err)
		}
		for i := range bills {
			if bills[i].ID == billID {
				existing = &bills[i]
				break
			}
		}
		if existing == nil {
			return nil, fmt.Errorf("bill %s: %w", billID, ErrSessionNotFound)
		}
	}

	sess := NewSession(customerID, snap, existing, s.burstGap, s.logger)
	s.registry.Put(sess)
	s.logger.Info("billing session opened",
		slog.String("session_id", sess.ID.String()),
		slog.String("customer_id", customerID),
		slog.Bool("editing", existing != nil))
	return sess, nil
}

// Session looks up an open session.
func (s *Service) Session(id uuid.UUID) (*Session, error) {
	return s.registry.Get(id)
}

// CloseSession discards a session without saving.
func (s *Service) CloseSession(id uuid.UUID) error {
	return s.registry.Remove(id)
}

// Bills returns the cached bill list for a customer, fetching when the cache
// is cold. The cache is refreshed from the remote source after every save
// rather than merged optimistically.
func (s *Service) Bills(ctx context.Context, customerID string) ([]Bill, error) {
	s.cacheMu.Lock()
	cached, ok := s.billCache[customerID]
	if ok {
		out := cloneBills(cached)
		s.cacheMu.Unlock()
		return out, nil
	}
	s.cacheMu.Unlock()
	return s.refreshBills(ctx, customerID)
}

func (s *Service) refreshBills(ctx context.Context, customerID string) ([]Bill, error) {
	bills, err := s.store.BillsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	s.cacheMu.Lock()
	s.billCache[customerID] = bills
	out := cloneBills(bills)
	s.cacheMu.Unlock()
	return out, nil
}

// cloneBills copies the cached slice so callers never alias the cache's
// backing array; the status updaters mutate cached elements in place.
func cloneBills(bills []Bill) []Bill {
	out := make([]Bill, len(bills))
	copy(out, bills)
	return out
}

// updateCachedStatus rewrites the payment status of every cached row sharing
// the bill id.
func (s *Service) updateCachedStatus(billID string, status PaymentStatus) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	for customerID, bills := range s.billCache {
		for i := range bills {
			if bills[i].ID == billID {
				bills[i].PaymentStatus = status
			}
		}
		s.billCache[customerID] = bills
	}
}

// dropCachedBill removes a bill from the cache, used when a Draft transition
// moves it out of this view's dataset.
func (s *Service) dropCachedBill(billID string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	for customerID, bills := range s.billCache {
		kept := make([]Bill, 0, len(bills))
		for _, b := range bills {
			if b.ID != billID {
				kept = append(kept, b)
			}
		}
		s.billCache[customerID] = kept
	}
}

func (s *Service) recordAudit(ctx context.Context, action, entity, entityID, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, action, entity, entityID, detail)
}

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const confirmationKeyPrefix = "shopdesk:payment:confirm:"

// PendingConfirmation is an issued but not yet applied status transition.
// Every transition is mediated by this explicit confirmation step.
type PendingConfirmation struct {
	Token  string        `json:"token"`
	BillID string        `json:"bill_id"`
	Status PaymentStatus `json:"status"`
}

// ConfirmationStore keeps pending confirmations in Redis so they expire on
// their own when the user walks away from the dialog.
type ConfirmationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewConfirmationStore constructs a store. A non-positive ttl defaults to
// five minutes.
func NewConfirmationStore(client *redis.Client, ttl time.Duration) *ConfirmationStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ConfirmationStore{client: client, ttl: ttl}
}

// Put stores a pending confirmation under its token.
func (c *ConfirmationStore) Put(ctx context.Context, pc PendingConfirmation) error {
	raw, err := json.Marshal(pc)
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}
	if err := c.client.Set(ctx, confirmationKeyPrefix+pc.Token, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("store confirmation: %w", err)
	}
	return nil
}

// Take atomically consumes a pending confirmation. A token is single-use.
func (c *ConfirmationStore) Take(ctx context.Context, token string) (PendingConfirmation, error) {
	raw, err := c.client.GetDel(ctx, confirmationKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return PendingConfirmation{}, ErrConfirmationNotFound
		}
		return PendingConfirmation{}, fmt.Errorf("load confirmation: %w", err)
	}
	var pc PendingConfirmation
	if err := json.Unmarshal(raw, &pc); err != nil {
		return PendingConfirmation{}, fmt.Errorf("decode confirmation: %w", err)
	}
	return pc, nil
}

// PaymentChangeResult is the applied transition. NavigateTo is set only for
// the Draft transition, which moves the bill out of this view's dataset and
// redirects instead of mutating the local cache.
type PaymentChangeResult struct {
	BillID     string        `json:"bill_id"`
	Status     PaymentStatus `json:"status"`
	NavigateTo string        `json:"navigate_to,omitempty"`
}

// RequestPaymentChange starts a status transition by issuing a confirmation
// token. Nothing is applied until the token is confirmed.
func (s *Service) RequestPaymentChange(ctx context.Context, billID string, target PaymentStatus) (PendingConfirmation, error) {
	if !target.Valid() {
		return PendingConfirmation{}, fmt.Errorf("payment status %q is not one of Unpaid, Paid, Draft", target)
	}
	pc := PendingConfirmation{
		Token:  uuid.NewString(),
		BillID: billID,
		Status: target,
	}
	if err := s.confirmations.Put(ctx, pc); err != nil {
		return PendingConfirmation{}, err
	}
	return pc, nil
}

// ConfirmPaymentChange consumes a confirmation token and applies the
// transition: the remote status service is called, then the local row cache
// is updated in place for every row sharing the bill id. Draft instead drops
// the bill locally and tells the caller to navigate to the drafts list.
func (s *Service) ConfirmPaymentChange(ctx context.Context, token string) (PaymentChangeResult, error) {
	pc, err := s.confirmations.Take(ctx, token)
	if err != nil {
		return PaymentChangeResult{}, err
	}
	if err := s.store.UpdatePaymentStatus(ctx, pc.BillID, pc.Status); err != nil {
		return PaymentChangeResult{}, fmt.Errorf("update payment status: %w", err)
	}

	result := PaymentChangeResult{BillID: pc.BillID, Status: pc.Status}
	if pc.Status == StatusDraft {
		s.dropCachedBill(pc.BillID)
		result.NavigateTo = "/billing/drafts"
	} else {
		s.updateCachedStatus(pc.BillID, pc.Status)
	}
	s.recordAudit(ctx, "payment.transition", "bill", pc.BillID, string(pc.Status))
	return result, nil
}

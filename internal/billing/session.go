package billing

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopdesk/shopdesk/internal/catalog"
)

// ScanResult records the outcome of the most recent scan event, surfaced to
// the console as a transient notification.
type ScanResult struct {
	Code    string     `json:"code"`
	Source  ScanSource `json:"source"`
	Matched bool       `json:"matched"`
}

// Session owns the mutable billing state for one open dialog: the two-list
// ledger, the keystroke accumulator and the scan fan-in channel. One session
// exists per dialog-open and is discarded on close; nothing in it is
// persisted directly. All three input paths publish into a single channel
// consumed by one goroutine, so ledger mutations from scans are serialized.
type Session struct {
	ID         uuid.UUID
	CustomerID string

	logger *slog.Logger
	snap   *catalog.Snapshot

	mu       sync.Mutex
	billID   string
	ledger   *Ledger
	burst    *BurstAccumulator
	lastScan *ScanResult

	scans     chan ScanEvent
	done      chan struct{}
	closeOnce sync.Once
	loopDone  chan struct{}
}

// NewSession creates a session for a customer. existing pre-populates the
// ledger from a bill that is being edited; nil starts an empty bill.
func NewSession(customerID string, snap *catalog.Snapshot, existing *Bill, burstGap time.Duration, logger *slog.Logger) *Session {
	s := &Session{
		ID:         uuid.New(),
		CustomerID: customerID,
		logger:     logger,
		snap:       snap,
		ledger:     NewLedger(),
		burst:      NewBurstAccumulator(burstGap),
		scans:      make(chan ScanEvent, 16),
		done:       make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
	if existing != nil {
		s.billID = existing.ID
		s.seedFromBill(existing)
	}
	go s.consumeScans()
	return s
}

func (s *Session) seedFromBill(bill *Bill) {
	rows := make([]Row, 0, len(bill.Items)+1)
	for _, it := range bill.Items {
		row := rowFromItem(it)
		row.ID = uuid.New()
		rows = append(rows, row)
	}
	s.ledger.Sale = rows
	s.ledger.AddRow(ListSale)
}

// BillID returns the bill this session edits, empty for a new bill.
func (s *Session) BillID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.billID
}

func (s *Session) setBillID(id string) {
	s.mu.Lock()
	s.billID = id
	s.mu.Unlock()
}

// PublishScan feeds one scan event into the session. It blocks until the
// consumer picks the event up, preserving ordering across rapid scans, and
// fails once the session is closed.
func (s *Session) PublishScan(ev ScanEvent) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	case s.scans <- ev:
		return nil
	}
}

// KeyPress feeds one emulated-scanner key press. A completed burst is
// published like any other scan event.
func (s *Session) KeyPress(key rune, at time.Time) error {
	s.mu.Lock()
	code, ok := s.burst.Press(key, at)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.PublishScan(ScanEvent{Code: code, Source: SourceKeyboard})
}

// consumeScans is the single consumer of the scan channel.
func (s *Session) consumeScans() {
	defer close(s.loopDone)
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.scans:
			s.applyScan(ev)
		}
	}
}

func (s *Session) applyScan(ev ScanEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, err := s.snap.Match(ev.Code)
	if err != nil {
		s.logger.Warn("scan did not match catalog",
			slog.String("code", ev.Code), slog.String("source", string(ev.Source)))
		s.lastScan = &ScanResult{Code: ev.Code, Source: ev.Source}
		return
	}
	s.ledger.FillScan(product)
	s.lastScan = &ScanResult{Code: ev.Code, Source: ev.Source, Matched: true}
}

// LastScan reports the outcome of the most recent scan, nil before any.
func (s *Session) LastScan() *ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastScan == nil {
		return nil
	}
	out := *s.lastScan
	return &out
}

// AddRow appends a placeholder to the given list.
func (s *Session) AddRow(kind ListKind) Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.ledger.AddRow(kind)
}

// SetField edits one row field, recomputing derived amounts as needed.
func (s *Session) SetField(rowID uuid.UUID, field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.SetField(rowID, field, value)
}

// RemoveRow deletes a row from the given list.
func (s *Session) RemoveRow(kind ListKind, rowID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.RemoveRow(kind, rowID)
}

// SelectProduct fills a row from a catalog product chosen manually.
func (s *Session) SelectProduct(rowID uuid.UUID, productID string) error {
	product, err := s.snap.ByID(productID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.SelectProduct(rowID, product)
}

// ReturnItem moves quantity from a sale row into the return ledger.
func (s *Session) ReturnItem(saleRowID uuid.UUID, qty float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ReturnItem(saleRowID, qty)
}

// UndoReturn moves a return row back into the sale ledger.
func (s *Session) UndoReturn(returnRowID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.UndoReturn(returnRowID)
}

// Rows returns copies of both lists for rendering.
func (s *Session) Rows() (sale, ret []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale = append(sale, s.ledger.Sale...)
	ret = append(ret, s.ledger.Return...)
	return sale, ret
}

// Totals computes the combined monetary position of the session.
func (s *Session) Totals() CombinedTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.CombinedTotals()
}

// snapshotItems projects both ledgers for persistence under one lock.
func (s *Session) snapshotItems() (sale, ret []Row, returnTotal Totals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Items(ListSale), s.ledger.Items(ListReturn), s.ledger.Totals(ListReturn)
}

// clearLedger resets the session after a successful save.
func (s *Session) clearLedger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Clear()
}

// Close tears the session down. In-flight saves are not cancelled; their
// responses land against the closed session and are discarded. Closing twice
// is harmless.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.loopDone
	})
}

// Closed reports whether Close has run.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

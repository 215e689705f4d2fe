// Package audit records billing events for later review. Saves, partial-save
// inconsistencies and payment transitions land here so support staff can
// reconstruct what happened at the counter.
package audit

import "time"

// Event is one recorded billing action.
type Event struct {
	At       time.Time
	Action   string
	Entity   string
	EntityID string
	Detail   string
}

// Filters narrows a timeline query.
type Filters struct {
	From     time.Time
	To       time.Time
	Action   string
	Entity   string
	Page     int
	PageSize int
}

// PagingInfo carries simple pagination metadata alongside a timeline page.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}

// Result is one page of the billing event timeline.
type Result struct {
	Rows   []Event
	Paging PagingInfo
}

package catalog

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNoMatch indicates no catalog entry carries the scanned code.
	ErrNoMatch = errors.New("no product matches code")
	// ErrEmptySnapshot indicates the catalog has not been loaded yet.
	ErrEmptySnapshot = errors.New("catalog snapshot is empty")
)

// Product is one entry of the product catalog as served by the remote
// catalog service. HSN code is carried through but never interpreted here.
type Product struct {
	ID          string  `json:"id"`
	ItemCode    string  `json:"item_code"`
	ProductName string  `json:"product_name"`
	BrandName   string  `json:"brand_name"`
	MRP         float64 `json:"mrp"`
	Discount    float64 `json:"discount"`
	GST         float64 `json:"gst"`
	HSNCode     string  `json:"hsn_code"`
	PackSize    string  `json:"pack_size"`
}

// Source lists products from the remote catalog service.
type Source interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// Snapshot is an immutable, in-memory view of the catalog taken at load time.
// It is shared read-only by the matcher and the scan pipeline for the whole
// billing session.
type Snapshot struct {
	products []Product
	loadedAt time.Time
}

// NewSnapshot wraps a product list into a snapshot.
func NewSnapshot(products []Product, loadedAt time.Time) *Snapshot {
	return &Snapshot{products: products, loadedAt: loadedAt}
}

// Products returns the underlying product list. Callers must not mutate it.
func (s *Snapshot) Products() []Product {
	if s == nil {
		return nil
	}
	return s.products
}

// LoadedAt reports when the snapshot was taken.
func (s *Snapshot) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}

// ByID finds a product by its catalog id.
func (s *Snapshot) ByID(id string) (Product, error) {
	if s == nil || len(s.products) == 0 {
		return Product{}, ErrEmptySnapshot
	}
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNoMatch
}

// Match resolves a scanned or typed code against the snapshot using
// case-insensitive exact equality on the item code. Partial and fuzzy
// matching are deliberately not supported. Lookup is a linear scan; catalogs
// are loaded once per session and stay small enough for that to be fine.
func (s *Snapshot) Match(code string) (Product, error) {
	if s == nil || len(s.products) == 0 {
		return Product{}, ErrEmptySnapshot
	}
	for _, p := range s.products {
		if strings.EqualFold(p.ItemCode, code) {
			return p, nil
		}
	}
	return Product{}, ErrNoMatch
}

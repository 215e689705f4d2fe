package remote

import (
	"context"
	"fmt"

	"github.com/shopdesk/shopdesk/internal/catalog"
)

// CatalogClient fetches the product catalog from the remote catalog service.
// It satisfies catalog.Source.
type CatalogClient struct {
	client *Client
}

// NewCatalogClient wraps the shared transport for catalog calls.
func NewCatalogClient(client *Client) *CatalogClient {
	return &CatalogClient{client: client}
}

// ListProducts fetches the full product list.
func (c *CatalogClient) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var body struct {
		Products []catalog.Product `json:"products"`
	}
	url := fmt.Sprintf("%s/products", c.client.catalogURL)
	if err := c.client.do(ctx, "GET", url, nil, &body); err != nil {
		return nil, opErr("list products", err)
	}
	return body.Products, nil
}

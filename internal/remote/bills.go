package remote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopdesk/shopdesk/internal/billing"
)

// BillClient talks to the bill, sales-return, payment-status and document
// services. They share one base URL in deployment, so one client covers all
// of billing.BillStore.
type BillClient struct {
	client *Client
}

// NewBillClient wraps the shared transport for billing calls.
func NewBillClient(client *Client) *BillClient {
	return &BillClient{client: client}
}

// BillsByCustomer fetches every bill of one customer.
func (c *BillClient) BillsByCustomer(ctx context.Context, customerID string) ([]billing.Bill, error) {
	var body struct {
		Bills []billing.Bill `json:"bills"`
	}
	u := fmt.Sprintf("%s/bills?customer_id=%s", c.client.billingURL, url.QueryEscape(customerID))
	if err := c.client.do(ctx, "GET", u, nil, &body); err != nil {
		return nil, opErr("list bills", err)
	}
	return body.Bills, nil
}

// CreateBill persists a new bill and returns the stored record.
func (c *BillClient) CreateBill(ctx context.Context, payload billing.BillPayload) (billing.Bill, error) {
	var bill billing.Bill
	u := fmt.Sprintf("%s/bills", c.client.billingURL)
	if err := c.client.do(ctx, "POST", u, payload, &bill); err != nil {
		return billing.Bill{}, opErr("create bill", err)
	}
	return bill, nil
}

// UpdateBill replaces the item list of an existing bill.
func (c *BillClient) UpdateBill(ctx context.Context, id string, payload billing.BillPayload) (billing.Bill, error) {
	var bill billing.Bill
	u := fmt.Sprintf("%s/bills/%s", c.client.billingURL, url.PathEscape(id))
	if err := c.client.do(ctx, "PUT", u, payload, &bill); err != nil {
		return billing.Bill{}, opErr("update bill", err)
	}
	return bill, nil
}

// DeleteBill removes a bill.
func (c *BillClient) DeleteBill(ctx context.Context, id string) error {
	u := fmt.Sprintf("%s/bills/%s", c.client.billingURL, url.PathEscape(id))
	if err := c.client.do(ctx, "DELETE", u, nil, nil); err != nil {
		return opErr("delete bill", err)
	}
	return nil
}

// CreateSalesReturn persists a sales return linked to an existing bill.
func (c *BillClient) CreateSalesReturn(ctx context.Context, payload billing.ReturnPayload) (billing.SalesReturn, error) {
	var ret billing.SalesReturn
	u := fmt.Sprintf("%s/sales-returns", c.client.billingURL)
	if err := c.client.do(ctx, "POST", u, payload, &ret); err != nil {
		return billing.SalesReturn{}, opErr("create sales return", err)
	}
	return ret, nil
}

// UpdatePaymentStatus sets the payment status of one bill.
func (c *BillClient) UpdatePaymentStatus(ctx context.Context, id string, status billing.PaymentStatus) error {
	body := struct {
		PaymentStatus billing.PaymentStatus `json:"payment_status"`
	}{PaymentStatus: status}
	u := fmt.Sprintf("%s/bills/%s/payment-status", c.client.billingURL, url.PathEscape(id))
	if err := c.client.do(ctx, "PATCH", u, body, nil); err != nil {
		return opErr("update payment status", err)
	}
	return nil
}

// GenerateDocument asks the document service to render the customer's bill.
func (c *BillClient) GenerateDocument(ctx context.Context, customerID string) (billing.Document, error) {
	var doc billing.Document
	u := fmt.Sprintf("%s/customers/%s/bill-document", c.client.billingURL, url.PathEscape(customerID))
	if err := c.client.do(ctx, "POST", u, nil, &doc); err != nil {
		return billing.Document{}, opErr("generate document", err)
	}
	return doc, nil
}

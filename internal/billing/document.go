package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// GenerateDocument asks the remote renderer for the customer's printable
// bill. Before rendering, every visible bill that is not yet Paid is marked
// Paid through independent concurrent best-effort calls; individual failures
// are logged and never block the document.
func (s *Service) GenerateDocument(ctx context.Context, customerID string) (Document, error) {
	bills, err := s.Bills(ctx, customerID)
	if err != nil {
		return Document{}, fmt.Errorf("load bills: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, bill := range bills {
		if bill.PaymentStatus == StatusPaid {
			continue
		}
		bill := bill
		g.Go(func() error {
			if err := s.store.UpdatePaymentStatus(gctx, bill.ID, StatusPaid); err != nil {
				s.logger.Warn("auto mark-paid failed",
					slog.String("bill_id", bill.ID), slog.Any("error", err))
				return nil
			}
			s.updateCachedStatus(bill.ID, StatusPaid)
			return nil
		})
	}
	_ = g.Wait()

	doc, err := s.store.GenerateDocument(ctx, customerID)
	if err != nil {
		return Document{}, fmt.Errorf("generate document: %w", err)
	}
	return doc, nil
}

// ReceiptHeader is the store block printed at the top of a text receipt.
type ReceiptHeader struct {
	StoreName string
	Address   string
	Phone     string
	GSTIN     string
}

// RenderReceipt formats a bill as a plain-text counter receipt. It is a
// convenience for thermal printers; the remote renderer owns the real
// document layout.
func RenderReceipt(header ReceiptHeader, bill Bill, at time.Time) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	line := strings.Repeat("-", 42)
	b.WriteString(header.StoreName + "\n")
	if header.Address != "" {
		b.WriteString(header.Address + "\n")
	}
	if header.Phone != "" {
		b.WriteString("Ph: " + header.Phone + "\n")
	}
	if header.GSTIN != "" {
		b.WriteString("GSTIN: " + header.GSTIN + "\n")
	}
	b.WriteString(line + "\n")
	p.Fprintf(&b, "Bill No: %s   %s\n", bill.BillNumber, at.Format("02-01-2006 15:04"))
	b.WriteString(line + "\n")

	var taxable, tax, total float64
	for _, it := range bill.Items {
		a := Compute(it.UnitPrice, it.Quantity, it.DiscountPercent, it.GSTPercent)
		taxable = round2(taxable + a.TaxableAmount)
		tax = round2(tax + a.TaxAmount)
		total = round2(total + a.Total)
		p.Fprintf(&b, "%-22.22s %5.5s x %8s\n", it.ItemName, trimFloat(it.Quantity), p.Sprintf("%.2f", it.UnitPrice))
		p.Fprintf(&b, "%31s %10s\n", "", p.Sprintf("%.2f", a.Total))
	}

	b.WriteString(line + "\n")
	p.Fprintf(&b, "%-20s %21s\n", "Taxable", p.Sprintf("%.2f", taxable))
	p.Fprintf(&b, "%-20s %21s\n", "CGST+SGST", p.Sprintf("%.2f", tax))
	p.Fprintf(&b, "%-20s %21s\n", "TOTAL", p.Sprintf("%.2f", total))
	b.WriteString(line + "\n")
	p.Fprintf(&b, "Status: %s\n", bill.PaymentStatus)
	return b.String()
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}

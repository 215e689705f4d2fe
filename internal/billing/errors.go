package billing

import "errors"

var (
	// ErrRowNotFound indicates the referenced ledger row does not exist.
	ErrRowNotFound = errors.New("ledger row not found")
	// ErrUnknownField indicates an edit against a field name the ledger does not know.
	ErrUnknownField = errors.New("unknown ledger field")
	// ErrInvalidQuantity indicates a return quantity below one.
	ErrInvalidQuantity = errors.New("return quantity must be at least 1")
	// ErrQuantityExceedsRow indicates a return quantity above the sale row's quantity.
	ErrQuantityExceedsRow = errors.New("return quantity exceeds sold quantity")
	// ErrMissingProduct indicates a row headed for persistence without a product reference.
	ErrMissingProduct = errors.New("every billed item must reference a catalog product")
	// ErrEmptyLedger indicates a save with neither sale nor return items.
	ErrEmptyLedger = errors.New("nothing to save: bill has no sale or return items")
	// ErrReturnWithoutBill indicates return items with no bill to attach them to.
	ErrReturnWithoutBill = errors.New("a return must be associated with a sales bill")
	// ErrSessionNotFound indicates an unknown or already closed billing session.
	ErrSessionNotFound = errors.New("billing session not found")
	// ErrSessionClosed indicates an operation against a closed session.
	ErrSessionClosed = errors.New("billing session is closed")
	// ErrConfirmationNotFound indicates an expired or unknown payment confirmation token.
	ErrConfirmationNotFound = errors.New("payment confirmation not found or expired")
	// ErrCameraUnavailable indicates both camera facings failed to open.
	ErrCameraUnavailable = errors.New("camera unavailable")
)

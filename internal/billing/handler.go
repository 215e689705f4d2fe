package billing

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shopdesk/shopdesk/internal/catalog"
	"github.com/shopdesk/shopdesk/internal/platform/httpx"
)

// Handler exposes the billing engine over HTTP for the admin console.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a handler. Validation errors are reported with the
// field's json name, which is what the operator sees in the form.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Handler{
		logger:   logger,
		service:  service,
		validate: v,
	}
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.OpenSession(r.Context(), req.CustomerID, req.BillID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, viewOf(sess))
}

func (h *Handler) ShowSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(sess))
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.service.CloseSession(id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddRow(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	// An empty body means the default sale list.
	var req AddRowRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.List == "" {
		req.List = ListSale
	}
	row := sess.AddRow(req.List)
	httpx.JSON(w, http.StatusCreated, row)
}

func (h *Handler) SetField(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	rowID, ok := h.rowID(w, r)
	if !ok {
		return
	}
	var req SetFieldRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := sess.SetField(rowID, req.Field, req.Value); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(sess))
}

func (h *Handler) RemoveRow(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	rowID, ok := h.rowID(w, r)
	if !ok {
		return
	}
	list := ListKind(r.URL.Query().Get("list"))
	if list == "" {
		list = ListSale
	}
	if err := sess.RemoveRow(list, rowID); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(sess))
}

func (h *Handler) SelectProduct(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	rowID, ok := h.rowID(w, r)
	if !ok {
		return
	}
	var req SelectProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := sess.SelectProduct(rowID, req.ProductID); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(sess))
}

func (h *Handler) ReturnItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	rowID, ok := h.rowID(w, r)
	if !ok {
		return
	}
	var req ReturnItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := sess.ReturnItem(rowID, req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(sess))
}

func (h *Handler) UndoReturn(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	rowID, ok := h.rowID(w, r)
	if !ok {
		return
	}
	if err := sess.UndoReturn(rowID); err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(sess))
}

// Scan handles manual code entry, the third input path besides the keystroke
// burst and the camera.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ScanRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := sess.PublishScan(ScanEvent{Code: req.Code, Source: SourceManual}); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// KeyInput feeds emulated-scanner keystrokes into the session's burst
// accumulator. The console forwards raw key presses while the dialog is open.
func (h *Handler) KeyInput(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req KeyInputRequest
	if !h.decode(w, r, &req) {
		return
	}
	now := time.Now()
	for _, key := range req.Keys {
		if err := sess.KeyPress(key, now); err != nil {
			h.writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	result, err := h.service.Save(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.Bills(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "bills": bills})
}

func (h *Handler) RequestPaymentChange(w http.ResponseWriter, r *http.Request) {
	var req PaymentChangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	pc, err := h.service.RequestPaymentChange(r.Context(), chi.URLParam(r, "billID"), req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, pc)
}

func (h *Handler) ConfirmPaymentChange(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ConfirmPaymentChange(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GenerateDocument(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return nil, false
	}
	sess, err := h.service.Session(id)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) rowID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "rowID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid row id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Error(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns the validator's struct-path error into the short
// message the console shows as a toast.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// writeError maps engine errors onto HTTP statuses. Remote failures keep
// their message verbatim; everything user-correctable is a 400.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrRowNotFound),
		errors.Is(err, catalog.ErrNoMatch):
		httpx.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrQuantityExceedsRow),
		errors.Is(err, ErrMissingProduct),
		errors.Is(err, ErrEmptyLedger),
		errors.Is(err, ErrReturnWithoutBill),
		errors.Is(err, ErrSessionClosed),
		errors.Is(err, ErrConfirmationNotFound):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("billing operation failed", slog.Any("error", err))
		httpx.Error(w, http.StatusBadGateway, err.Error())
	}
}

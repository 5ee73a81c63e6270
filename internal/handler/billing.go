package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/segyhp/dealer-billing/internal/domain"
	"github.com/segyhp/dealer-billing/internal/schedule"
	customError "github.com/segyhp/dealer-billing/pkg/errors"
	"github.com/segyhp/dealer-billing/pkg/response"
	"github.com/segyhp/dealer-billing/pkg/validation"
)

// IdempotencyHeader carries the client's key for payment submissions.
const IdempotencyHeader = "Idempotency-Key"

type BillingService interface {
	CreateSale(ctx context.Context, request *domain.CreateSaleRequest) (*domain.CreateSaleResponse, error)
	PreviewSchedule(ctx context.Context, terms domain.FinancingTerms) (*schedule.PreviewResponse, error)
	GetSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error)
	GetSchedule(ctx context.Context, saleID uuid.UUID) (*domain.ScheduleResponse, error)
	GetDelinquency(ctx context.Context, saleID uuid.UUID, asOf *domain.Date) (*domain.DelinquencyResponse, error)
	GetPortfolioDelinquency(ctx context.Context, asOf *domain.Date) (*domain.PortfolioDelinquencyResponse, error)
	GetOutstanding(ctx context.Context, saleID uuid.UUID) (*domain.OutstandingResponse, error)
	RecordPayment(ctx context.Context, request *domain.RecordPaymentRequest) (*domain.PaymentResponse, error)
	GetPayments(ctx context.Context, saleID uuid.UUID) (*domain.PaymentHistoryResponse, error)
	GetReceipt(ctx context.Context, saleID uuid.UUID, sequenceNumber int) (*domain.ReceiptResponse, error)
	DeleteSale(ctx context.Context, saleID uuid.UUID) error
}

type BillingHandler struct {
	service   BillingService
	validator *validator.Validate
	logger    zerolog.Logger
}

func NewBillingHandler(service BillingService, logger zerolog.Logger) *BillingHandler {
	return &BillingHandler{
		service:   service,
		validator: validation.New(),
		logger:    logger.With().Str("component", "handler").Logger(),
	}
}

// RegisterRoutes mounts the billing API under r.
func (h *BillingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sales", h.CreateSale).Methods(http.MethodPost)
	r.HandleFunc("/schedules/preview", h.PreviewSchedule).Methods(http.MethodPost)
	r.HandleFunc("/sales/{saleId}", h.GetSale).Methods(http.MethodGet)
	r.HandleFunc("/sales/{saleId}", h.DeleteSale).Methods(http.MethodDelete)
	r.HandleFunc("/sales/{saleId}/schedule", h.GetSchedule).Methods(http.MethodGet)
	r.HandleFunc("/sales/{saleId}/delinquency", h.GetDelinquency).Methods(http.MethodGet)
	r.HandleFunc("/sales/{saleId}/outstanding", h.GetOutstanding).Methods(http.MethodGet)
	r.HandleFunc("/sales/{saleId}/payments", h.GetPayments).Methods(http.MethodGet)
	r.HandleFunc("/sales/{saleId}/installments/{seq}/payments", h.RecordPayment).Methods(http.MethodPost)
	r.HandleFunc("/sales/{saleId}/installments/{seq}/receipt", h.GetReceipt).Methods(http.MethodGet)
	r.HandleFunc("/portfolio/delinquency", h.GetPortfolioDelinquency).Methods(http.MethodGet)
}

// CreateSale handles POST /sales
func (h *BillingHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSaleRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.Struct(h.validator, &req); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.service.CreateSale(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, result)
}

// PreviewSchedule handles POST /schedules/preview
func (h *BillingHandler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	var terms domain.FinancingTerms
	if !h.decode(w, r, &terms) {
		return
	}

	result, err := h.service.PreviewSchedule(r.Context(), terms)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSale handles GET /sales/{saleId}
func (h *BillingHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}

	sale, err := h.service.GetSale(r.Context(), saleID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, sale)
}

// DeleteSale handles DELETE /sales/{saleId}
func (h *BillingHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSale(r.Context(), saleID); err != nil {
		h.writeError(w, err)
		return
	}

	response.NoContent(w)
}

// GetSchedule handles GET /sales/{saleId}/schedule
func (h *BillingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetSchedule(r.Context(), saleID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, result)
}

// GetDelinquency handles GET /sales/{saleId}/delinquency?as_of=YYYY-MM-DD
func (h *BillingHandler) GetDelinquency(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetDelinquency(r.Context(), saleID, asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, result)
}

// GetPortfolioDelinquency handles GET /portfolio/delinquency?as_of=YYYY-MM-DD
func (h *BillingHandler) GetPortfolioDelinquency(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetPortfolioDelinquency(r.Context(), asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, result)
}

// GetOutstanding handles GET /sales/{saleId}/outstanding
func (h *BillingHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetOutstanding(r.Context(), saleID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, result)
}

// RecordPayment handles POST /sales/{saleId}/installments/{seq}/payments
func (h *BillingHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}
	seq, ok := h.sequence(w, r)
	if !ok {
		return
	}

	var req domain.RecordPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.SaleID = saleID
	req.SequenceNumber = seq
	req.IdempotencyKey = r.Header.Get(IdempotencyHeader)

	if err := validation.Struct(h.validator, &req); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.service.RecordPayment(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, result)
}

// GetPayments handles GET /sales/{saleId}/payments
func (h *BillingHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetPayments(r.Context(), saleID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, result)
}

// GetReceipt handles GET /sales/{saleId}/installments/{seq}/receipt
func (h *BillingHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}
	seq, ok := h.sequence(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetReceipt(r.Context(), saleID, seq)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *BillingHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		// Dates fail inside the decoder with their own code.
		if customError.CodeOf(err) != "" {
			h.writeError(w, err)
			return false
		}
		response.ErrorWithCode(w, http.StatusBadRequest, customError.ErrCodeValidation, "Invalid request body", err)
		return false
	}
	return true
}

func (h *BillingHandler) saleID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["saleId"]
	id, err := uuid.Parse(raw)
	if err != nil {
		response.ErrorWithCode(w, http.StatusBadRequest, customError.ErrCodeValidation, "Invalid sale ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *BillingHandler) sequence(w http.ResponseWriter, r *http.Request) (int, bool) {
	seq, err := strconv.Atoi(mux.Vars(r)["seq"])
	if err != nil || seq < 1 {
		response.ErrorWithCode(w, http.StatusBadRequest, customError.ErrCodeValidation, "Invalid installment sequence number", err)
		return 0, false
	}
	return seq, true
}

// asOf reads the optional as_of query parameter; absent means today.
func (h *BillingHandler) asOf(w http.ResponseWriter, r *http.Request) (*domain.Date, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return nil, true
	}

	date, err := domain.ParseDate(raw)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return &date, true
}

func (h *BillingHandler) writeError(w http.ResponseWriter, err error) {
	code := customError.CodeOf(err)
	message := err.Error()

	var be *customError.BusinessError
	if errors.As(err, &be) {
		message = be.Message
	}

	status := http.StatusInternalServerError
	switch code {
	case customError.ErrCodeValidation, customError.ErrCodeInvalidDate, customError.ErrCodeInvalidPaymentAmount:
		status = http.StatusBadRequest
	case customError.ErrCodeSaleNotFound, customError.ErrCodeInstallmentNotFound:
		status = http.StatusNotFound
	case customError.ErrCodeInstallmentAlreadyPaid, customError.ErrCodeDuplicatePayment, customError.ErrCodePaymentConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("code", code).Msg("Request failed")
		// Internal details stay in the log.
		response.ErrorWithCode(w, status, code, message, nil)
		return
	}

	response.ErrorWithCode(w, status, code, message, err)
}

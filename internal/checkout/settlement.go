package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rentalportal/internal/utils"

	"github.com/google/uuid"
)

// LocalTransactionPrefix marks transaction ids synthesized on this side
// when the gateway result carried none. The backend uses the prefix to
// tell synthetic ids apart from gateway-native ones.
const LocalTransactionPrefix = "LOCAL-"

// SettlementRecord is the payload persisted by the backend after a
// gateway-reported successful charge.
type SettlementRecord struct {
	BookingID     int64   `json:"booking_id"`
	UserID        int64   `json:"user_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transaction_id"`
	Reference     string  `json:"reference"`
	Phone         string  `json:"phone"`
	Currency      string  `json:"currency"`
	VehicleID     int64   `json:"vehicle_id"`
	VehicleMake   string  `json:"vehicle_make"`
	VehicleModel  string  `json:"vehicle_model"`
	VehicleYear   int     `json:"vehicle_year"`
	LicensePlate  string  `json:"license_plate"`
	CommissionFee float64 `json:"commission_fee"`
	NetAmount     float64 `json:"net_amount"`
}

// BuildSettlementRecord normalizes a gateway outcome into the backend's
// settlement shape. Phone falls back through customer-supplied, then
// authorization-bound, then metadata-echoed, then the number entered in
// this session. A missing transaction id gets a locally generated,
// distinctly prefixed one so settlement can still proceed.
func BuildSettlementRecord(b BookingSummary, u UserIdentity, v VehicleDescriptor, m Method, currency, enteredPhone string, o Outcome) SettlementRecord {
	phone := utils.FirstNonEmpty(
		o.CustomerPhone,
		o.AuthorizationPhone,
		o.Metadata["phone"],
		enteredPhone,
	)

	txID := strings.TrimSpace(o.TransactionID)
	if txID == "" {
		txID = LocalTransactionPrefix + uuid.NewString()
	}

	fee, net := utils.SplitCommission(b.TotalAmount)

	return SettlementRecord{
		BookingID:     b.ID,
		UserID:        u.ID,
		Amount:        b.TotalAmount,
		PaymentMethod: m.DisplayName(),
		Status:        "completed",
		TransactionID: txID,
		Reference:     o.Reference,
		Phone:         phone,
		Currency:      currency,
		VehicleID:     v.ID,
		VehicleMake:   v.Make,
		VehicleModel:  v.Model,
		VehicleYear:   v.Year,
		LicensePlate:  v.LicensePlate,
		CommissionFee: fee,
		NetAmount:     net,
	}
}

// SettlementSubmitter records a settlement with the backend.
type SettlementSubmitter interface {
	Submit(ctx context.Context, rec SettlementRecord) error
}

// SubmitError carries the HTTP status of a failed settlement call.
// StatusCode 0 means the request never got a response.
type SubmitError struct {
	StatusCode int
	Err        error
}

func (e *SubmitError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("settlement submit: status %d", e.StatusCode)
	}
	if e.Err != nil {
		return "settlement submit: " + e.Err.Error()
	}
	return "settlement submit failed"
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Support-contact messages per failure class. A successful charge must
// never be answered with a retry prompt, so all three point at support.
const (
	msgSubmitRejected = "Payment received, but some booking details were rejected while recording it. Please contact support with your booking number."
	msgSubmitNotFound = "Payment received, but the recording service is unavailable. Please contact support with your booking number."
	msgSubmitGeneric  = "Payment received, but we could not record it. Please contact support before attempting to pay again."
)

// ClassifySubmitError maps a settlement failure to the user-facing notice.
// HTTP 400, HTTP 404 and transport errors each produce distinct messages.
func ClassifySubmitError(err error) string {
	var se *SubmitError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusBadRequest:
			return msgSubmitRejected
		case http.StatusNotFound:
			return msgSubmitNotFound
		}
	}
	return msgSubmitGeneric
}

// HTTPSubmitter posts settlement records to the portal backend with the
// session bearer token attached.
type HTTPSubmitter struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func (s HTTPSubmitter) Submit(ctx context.Context, rec SettlementRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return &SubmitError{Err: err}
	}

	url := strings.TrimRight(s.BaseURL, "/") + "/api/payments/initialize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &SubmitError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &SubmitError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &SubmitError{StatusCode: resp.StatusCode}
}

package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"rentalportal/internal/domain"
)

// Paystack talks to the Paystack REST API and implements Gateway. The
// hosted checkout page itself runs on Paystack's side; this adapter only
// initializes transactions, verifies their terminal state, and routes the
// verdict to the callbacks registered at Open time.
type Paystack struct {
	SecretKey string
	BaseURL   string
	Client    *http.Client

	mu      sync.Mutex
	ready   bool
	pending map[string]Callbacks
}

// EnsureLoaded performs the one-time handshake with the gateway. It is
// idempotent; a failed handshake surfaces an error and is only retried
// when the caller explicitly asks again.
func (p *Paystack) EnsureLoaded(ctx context.Context) error {
	p.mu.Lock()
	if p.ready {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if strings.TrimSpace(p.SecretKey) == "" {
		return domain.GatewayError{Op: "load", Msg: "missing PAYSTACK_SECRET_KEY"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL()+"/bank?perPage=1", nil)
	if err != nil {
		return domain.GatewayError{Op: "load", Err: err}
	}
	p.authorize(req)

	resp, err := p.client().Do(req)
	if err != nil {
		return domain.GatewayError{Op: "load", Msg: "gateway unreachable", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.GatewayError{Op: "load", Msg: fmt.Sprintf("handshake returned status %d", resp.StatusCode)}
	}

	p.mu.Lock()
	p.ready = true
	if p.pending == nil {
		p.pending = map[string]Callbacks{}
	}
	p.mu.Unlock()
	return nil
}

func (p *Paystack) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Open initializes a transaction and registers cb for its terminal event.
// The returned URL is where the customer completes payment.
func (p *Paystack) Open(ctx context.Context, req TransactionRequest, cb Callbacks) (string, error) {
	if !p.Ready() {
		return "", domain.GatewayError{Op: "open", Msg: "gateway not loaded"}
	}

	payload := map[string]any{
		"email":     req.Email,
		"amount":    req.AmountMinor,
		"currency":  req.Currency,
		"reference": req.Reference,
		"channels":  req.Channels,
		"metadata":  req.Metadata,
	}
	if req.MobileNumber != "" {
		payload["mobile_money"] = map[string]string{
			"phone":    "+" + countryCallingCode + req.MobileNumber,
			"provider": req.Provider,
		}
	}

	var out struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := p.call(ctx, http.MethodPost, "/transaction/initialize", payload, &out); err != nil {
		return "", err
	}
	if !out.Status {
		return "", domain.GatewayError{Op: "initialize", Msg: out.Message}
	}

	p.mu.Lock()
	p.pending[req.Reference] = cb
	p.mu.Unlock()
	return out.Data.AuthorizationURL, nil
}

// DeliverResult verifies the referenced transaction against the gateway
// and fires OnResult on the callbacks registered for it. The verification
// round-trip means a forged frontend callback cannot fake a success.
func (p *Paystack) DeliverResult(ctx context.Context, reference string) error {
	p.mu.Lock()
	cb := p.pending[reference]
	p.mu.Unlock()
	if cb == nil {
		return domain.NotFoundError{Resource: "pending transaction"}
	}

	outcome, err := p.Verify(ctx, reference)
	if err != nil {
		return err
	}

	p.mu.Lock()
	delete(p.pending, reference)
	p.mu.Unlock()

	cb.OnResult(outcome)
	return nil
}

// DeliverDismiss fires OnUserDismiss for a transaction the customer
// abandoned without completing.
func (p *Paystack) DeliverDismiss(reference string) error {
	p.mu.Lock()
	cb := p.pending[reference]
	delete(p.pending, reference)
	p.mu.Unlock()
	if cb == nil {
		return domain.NotFoundError{Resource: "pending transaction"}
	}
	cb.OnUserDismiss()
	return nil
}

// Verify fetches the terminal state of a transaction by reference.
func (p *Paystack) Verify(ctx context.Context, reference string) (Outcome, error) {
	var out struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			ID              int64  `json:"id"`
			Status          string `json:"status"`
			Reference       string `json:"reference"`
			GatewayResponse string `json:"gateway_response"`
			Customer        struct {
				Phone string `json:"phone"`
			} `json:"customer"`
			Authorization struct {
				MobileMoneyNumber string `json:"mobile_money_number"`
			} `json:"authorization"`
			Metadata map[string]any `json:"metadata"`
		} `json:"data"`
	}
	if err := p.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &out); err != nil {
		return Outcome{}, err
	}
	if !out.Status {
		return Outcome{}, domain.GatewayError{Op: "verify", Msg: out.Message}
	}

	txID := ""
	if out.Data.ID > 0 {
		txID = strconv.FormatInt(out.Data.ID, 10)
	}

	return Outcome{
		Status:             out.Data.Status,
		Reference:          out.Data.Reference,
		TransactionID:      txID,
		Message:            out.Data.GatewayResponse,
		CustomerPhone:      out.Data.Customer.Phone,
		AuthorizationPhone: out.Data.Authorization.MobileMoneyNumber,
		Metadata:           stringifyMetadata(out.Data.Metadata),
	}, nil
}

func (p *Paystack) call(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return domain.GatewayError{Op: "encode", Err: err}
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL()+path, body)
	if err != nil {
		return domain.GatewayError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	p.authorize(req)

	resp, err := p.client().Do(req)
	if err != nil {
		return domain.GatewayError{Op: "call", Msg: "gateway unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.GatewayError{Op: "call", Msg: fmt.Sprintf("gateway returned status %d", resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.GatewayError{Op: "decode", Err: err}
	}
	return nil
}

func (p *Paystack) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)
}

func (p *Paystack) baseURL() string {
	if p.BaseURL != "" {
		return strings.TrimRight(p.BaseURL, "/")
	}
	return "https://api.paystack.co"
}

func (p *Paystack) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return &http.Client{Timeout: 20 * time.Second}
}

func stringifyMetadata(md map[string]any) map[string]string {
	if len(md) == 0 {
		return nil
	}
	out := make(map[string]string, len(md))
	for k, v := range md {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		default:
			if raw, err := json.Marshal(v); err == nil {
				out[k] = string(raw)
			}
		}
	}
	return out
}

package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"rentalportal/internal/domain"
)

type recordingCallbacks struct {
	mu        sync.Mutex
	outcomes  []Outcome
	dismissed int
}

func (r *recordingCallbacks) OnResult(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recordingCallbacks) OnUserDismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dismissed++
}

func newPaystackTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	var initCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/bank", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"data":[]}`))
	})
	mux.HandleFunc("/transaction/initialize", func(w http.ResponseWriter, r *http.Request) {
		initCalls++
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		ref, _ := body["reference"].(string)
		if ref == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://checkout.test/abc","access_code":"abc","reference":"` + ref + `"}}`))
	})
	mux.HandleFunc("/transaction/verify/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"data":{"id":998877,"status":"success","reference":"BK-42-1","gateway_response":"Approved","customer":{"phone":"+254700000001"},"authorization":{"mobile_money_number":"+254700000002"},"metadata":{"phone":"700000003","vehicle_id":"3"}}}`))
	})
	return httptest.NewServer(mux), &initCalls
}

func TestPaystackEnsureLoadedIsIdempotent(t *testing.T) {
	srv, _ := newPaystackTestServer(t)
	defer srv.Close()

	gw := &Paystack{SecretKey: "sk_test", BaseURL: srv.URL, Client: srv.Client()}
	if gw.Ready() {
		t.Fatalf("ready before load")
	}
	if err := gw.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := gw.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if !gw.Ready() {
		t.Fatalf("not ready after load")
	}
}

func TestPaystackEnsureLoadedRequiresKey(t *testing.T) {
	gw := &Paystack{}
	err := gw.EnsureLoaded(context.Background())
	if !domain.IsGateway(err) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if gw.Ready() {
		t.Fatalf("became ready despite missing key")
	}
}

func TestPaystackOpenAndDeliverResult(t *testing.T) {
	srv, initCalls := newPaystackTestServer(t)
	defer srv.Close()

	gw := &Paystack{SecretKey: "sk_test", BaseURL: srv.URL, Client: srv.Client()}
	if err := gw.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	cb := &recordingCallbacks{}
	url, err := gw.Open(context.Background(), TransactionRequest{
		Reference:   "BK-42-1",
		Email:       "rider@example.com",
		AmountMinor: 100000,
		Currency:    "KES",
		Channels:    []string{"mobile_money"},
	}, cb)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if url != "https://checkout.test/abc" {
		t.Fatalf("authorization url = %q", url)
	}
	if *initCalls != 1 {
		t.Fatalf("initialize called %d times", *initCalls)
	}

	if err := gw.DeliverResult(context.Background(), "BK-42-1"); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(cb.outcomes) != 1 {
		t.Fatalf("expected one outcome, got %d", len(cb.outcomes))
	}
	o := cb.outcomes[0]
	if !o.Succeeded() {
		t.Fatalf("outcome not success: %+v", o)
	}
	if o.TransactionID != "998877" {
		t.Fatalf("transaction id = %q", o.TransactionID)
	}
	if o.CustomerPhone != "+254700000001" || o.AuthorizationPhone != "+254700000002" {
		t.Fatalf("phones not mapped: %+v", o)
	}
	if o.Metadata["phone"] != "700000003" {
		t.Fatalf("metadata not mapped: %v", o.Metadata)
	}

	// the pending entry is consumed with the delivery
	if err := gw.DeliverResult(context.Background(), "BK-42-1"); !domain.IsNotFound(err) {
		t.Fatalf("second delivery should miss, got %v", err)
	}
}

func TestPaystackDeliverDismiss(t *testing.T) {
	srv, _ := newPaystackTestServer(t)
	defer srv.Close()

	gw := &Paystack{SecretKey: "sk_test", BaseURL: srv.URL, Client: srv.Client()}
	if err := gw.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	cb := &recordingCallbacks{}
	if _, err := gw.Open(context.Background(), TransactionRequest{Reference: "BK-7-1", Email: "a@b.c", AmountMinor: 100, Currency: "KES"}, cb); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := gw.DeliverDismiss("BK-7-1"); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if cb.dismissed != 1 || len(cb.outcomes) != 0 {
		t.Fatalf("dismiss not routed distinctly: %+v", cb)
	}
}

func TestPaystackOpenRequiresReady(t *testing.T) {
	gw := &Paystack{SecretKey: "sk_test"}
	_, err := gw.Open(context.Background(), TransactionRequest{Reference: "x"}, &recordingCallbacks{})
	if !domain.IsGateway(err) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}

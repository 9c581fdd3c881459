package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildSettlementRecordCommissionSplit(t *testing.T) {
	rec := BuildSettlementRecord(
		BookingSummary{ID: 1, TotalAmount: 1000},
		UserIdentity{ID: 2},
		testVehicle(),
		MethodCard, "KES", "",
		Outcome{Status: "success", TransactionID: "77", Reference: "BK-1-1"},
	)
	if rec.CommissionFee != 20 {
		t.Fatalf("commission_fee = %v, want 20", rec.CommissionFee)
	}
	if rec.NetAmount != 980 {
		t.Fatalf("net_amount = %v, want 980", rec.NetAmount)
	}
	if rec.Status != "completed" {
		t.Fatalf("status = %q", rec.Status)
	}
}

func TestBuildSettlementRecordSynthesizesLocalTransactionID(t *testing.T) {
	rec := BuildSettlementRecord(
		testBooking(), testUser(""), testVehicle(),
		MethodMobileMoney, "KES", "712345678",
		Outcome{Status: "success", Reference: "BK-42-9"},
	)
	if !strings.HasPrefix(rec.TransactionID, LocalTransactionPrefix) {
		t.Fatalf("synthetic id %q lacks %q prefix", rec.TransactionID, LocalTransactionPrefix)
	}
	if len(rec.TransactionID) <= len(LocalTransactionPrefix) {
		t.Fatalf("synthetic id has no body: %q", rec.TransactionID)
	}
}

func TestBuildSettlementRecordPhoneFallbackOrder(t *testing.T) {
	base := Outcome{Status: "success", TransactionID: "1"}

	o := base
	o.CustomerPhone = "700000001"
	o.AuthorizationPhone = "700000002"
	o.Metadata = map[string]string{"phone": "700000003"}
	rec := BuildSettlementRecord(testBooking(), testUser(""), testVehicle(), MethodMobileMoney, "KES", "700000004", o)
	if rec.Phone != "700000001" {
		t.Fatalf("customer phone should win, got %q", rec.Phone)
	}

	o.CustomerPhone = ""
	rec = BuildSettlementRecord(testBooking(), testUser(""), testVehicle(), MethodMobileMoney, "KES", "700000004", o)
	if rec.Phone != "700000002" {
		t.Fatalf("authorization phone should be second, got %q", rec.Phone)
	}

	o.AuthorizationPhone = ""
	rec = BuildSettlementRecord(testBooking(), testUser(""), testVehicle(), MethodMobileMoney, "KES", "700000004", o)
	if rec.Phone != "700000003" {
		t.Fatalf("metadata phone should be third, got %q", rec.Phone)
	}

	o.Metadata = nil
	rec = BuildSettlementRecord(testBooking(), testUser(""), testVehicle(), MethodMobileMoney, "KES", "700000004", o)
	if rec.Phone != "700000004" {
		t.Fatalf("entered phone should be last, got %q", rec.Phone)
	}
}

func TestClassifySubmitErrorDistinguishesFailureClasses(t *testing.T) {
	badRequest := ClassifySubmitError(&SubmitError{StatusCode: http.StatusBadRequest})
	notFound := ClassifySubmitError(&SubmitError{StatusCode: http.StatusNotFound})
	transport := ClassifySubmitError(&SubmitError{Err: errors.New("connection refused")})
	server := ClassifySubmitError(&SubmitError{StatusCode: http.StatusInternalServerError})

	if badRequest == notFound {
		t.Fatalf("400 and 404 messages must differ")
	}
	if transport == badRequest || transport == notFound {
		t.Fatalf("transport message must differ from status-specific ones")
	}
	if server != transport {
		t.Fatalf("unclassified statuses should use the generic message")
	}
	for _, msg := range []string{badRequest, notFound, transport} {
		if !strings.Contains(msg, "support") {
			t.Fatalf("message %q does not point at support", msg)
		}
	}
}

func TestHTTPSubmitterSendsBearerTokenAndBody(t *testing.T) {
	var got SettlementRecord
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/payments/initialize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sub := HTTPSubmitter{BaseURL: srv.URL, Token: "tok-123", Client: srv.Client()}
	rec := BuildSettlementRecord(testBooking(), testUser(""), testVehicle(),
		MethodCard, "KES", "", Outcome{Status: "success", TransactionID: "9"})
	if err := sub.Submit(context.Background(), rec); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if auth != "Bearer tok-123" {
		t.Fatalf("authorization header = %q", auth)
	}
	if got.BookingID != rec.BookingID || got.CommissionFee != rec.CommissionFee {
		t.Fatalf("body mismatch: %+v", got)
	}
}

func TestHTTPSubmitterClassifiesStatuses(t *testing.T) {
	status := http.StatusBadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	sub := HTTPSubmitter{BaseURL: srv.URL, Client: srv.Client()}
	err := sub.Submit(context.Background(), SettlementRecord{BookingID: 1})
	var se *SubmitError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 SubmitError, got %v", err)
	}

	status = http.StatusNotFound
	err = sub.Submit(context.Background(), SettlementRecord{BookingID: 1})
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 SubmitError, got %v", err)
	}

	// dead endpoint produces a transport error with no status
	srv.Close()
	err = sub.Submit(context.Background(), SettlementRecord{BookingID: 1})
	if !errors.As(err, &se) || se.StatusCode != 0 {
		t.Fatalf("expected transport SubmitError, got %v", err)
	}
}

func TestMinorUnitsRounding(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{1234.5, 123450},
		{0.1, 10},
		{19.99, 1999},
		{0, 0},
		{2500, 250000},
	}
	for _, tc := range cases {
		if got := MinorUnits(tc.in); got != tc.want {
			t.Fatalf("MinorUnits(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestVerificationPayloadEncode(t *testing.T) {
	v := VerificationPayload{
		ReceiptID:     ReceiptID(12),
		BookingID:     42,
		PaymentID:     12,
		TransactionID: "998877",
		Amount:        1000,
		Date:          "2026-08-31",
		CustomerName:  "Jane Rider",
	}
	raw, err := v.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["receipt_id"] != "RCP-000012" {
		t.Fatalf("receipt_id = %v", decoded["receipt_id"])
	}
	if decoded["booking_id"] != float64(42) {
		t.Fatalf("booking_id = %v", decoded["booking_id"])
	}
}

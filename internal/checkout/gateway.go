package checkout

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// TransactionRequest is the gateway-facing shape of one payment attempt.
// AmountMinor must already be converted to integer minor units; the gateway
// adapter performs no currency math of its own.
type TransactionRequest struct {
	Reference    string
	Email        string
	AmountMinor  int64
	Currency     string
	Channels     []string
	MobileNumber string
	Provider     string
	Metadata     map[string]string
}

// Outcome is the gateway's terminal verdict on a transaction, normalized
// from whatever shape the external widget reported.
type Outcome struct {
	Status             string
	Reference          string
	TransactionID      string
	Message            string
	CustomerPhone      string
	AuthorizationPhone string
	Metadata           map[string]string
}

// Succeeded reports whether the gateway considers the charge completed.
func (o Outcome) Succeeded() bool {
	return strings.EqualFold(strings.TrimSpace(o.Status), "success")
}

// Callbacks is the capability interface the gateway fires on terminal
// events. OnUserDismiss means the customer closed the widget without
// completing payment; it must never be treated as a failed transaction.
type Callbacks interface {
	OnResult(Outcome)
	OnUserDismiss()
}

// Gateway abstracts the hosted payment widget. The checkout controller
// depends only on this interface, never on a concrete vendor client.
type Gateway interface {
	// EnsureLoaded prepares the gateway exactly once; it is idempotent,
	// fails loudly on bad configuration, and never retries on its own.
	EnsureLoaded(ctx context.Context) error

	// Ready reports whether Open may be called.
	Ready() bool

	// Open starts the hosted checkout for one transaction and registers
	// the callbacks to fire when the gateway reports a terminal event.
	// It returns the URL the customer completes payment at.
	Open(ctx context.Context, req TransactionRequest, cb Callbacks) (string, error)
}

// MinorUnits converts a decimal currency amount to the integer minor-unit
// representation the gateway requires.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// NewReference builds a uniqueness-bearing transaction reference from the
// booking id and the wall clock.
func NewReference(bookingID int64, now time.Time) string {
	return fmt.Sprintf("BK-%d-%d", bookingID, now.UnixMilli())
}

// channelsFor maps a payment method to the gateway channel restriction.
func channelsFor(m Method) []string {
	if m == MethodMobileMoney {
		return []string{"mobile_money"}
	}
	return []string{"card"}
}

// metadataFor builds the support-traceability bag echoed back by the
// gateway on every event for this transaction.
func metadataFor(v VehicleDescriptor, phone string) map[string]string {
	md := map[string]string{
		"vehicle_id":    fmt.Sprintf("%d", v.ID),
		"spec_id":       fmt.Sprintf("%d", v.SpecID),
		"vehicle":       strings.TrimSpace(fmt.Sprintf("%s %s %d", v.Make, v.Model, v.Year)),
		"license_plate": v.LicensePlate,
	}
	if phone != "" {
		md["phone"] = phone
	}
	return md
}

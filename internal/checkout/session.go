package checkout

import (
	"strings"
	"sync"

	"rentalportal/internal/utils"
)

// Step is the position of a checkout session in the payment flow.
type Step string

const (
	StepMethodSelection Step = "method-selection"
	StepPhoneEntry      Step = "phone-entry"
	StepGatewayActive   Step = "gateway-active"
	StepSucceeded       Step = "succeeded"
	StepFailed          Step = "failed"
)

// Method is the payment channel the customer picked.
type Method string

const (
	MethodMobileMoney Method = "mobile-money"
	MethodCard        Method = "card"
)

// DisplayName is the normalized method name stored on settlement records.
func (m Method) DisplayName() string {
	switch m {
	case MethodMobileMoney:
		return "Mobile Money"
	case MethodCard:
		return "Card"
	default:
		return string(m)
	}
}

// countryCallingCode is stripped from entered phone numbers before the
// nine-digit local format is enforced.
const countryCallingCode = "254"

// minPhoneDigits is the shortest acceptable local phone number.
const minPhoneDigits = 9

// NormalizePhone strips non-digits, drops the country calling code or a
// trunk zero, and caps the local part at nine digits.
func NormalizePhone(raw string) string {
	d := utils.DigitsOnly(raw)
	if strings.HasPrefix(d, countryCallingCode) && len(d) > minPhoneDigits {
		d = d[len(countryCallingCode):]
	}
	for strings.HasPrefix(d, "0") && len(d) > minPhoneDigits {
		d = d[1:]
	}
	if len(d) > minPhoneDigits {
		d = d[:minPhoneDigits]
	}
	return d
}

// ValidPhone reports whether a normalized phone number is submittable.
func ValidPhone(normalized string) bool {
	return len(normalized) >= minPhoneDigits
}

// BookingSummary is the slice of a booking the checkout flow needs.
type BookingSummary struct {
	ID          int64   `json:"id"`
	TotalAmount float64 `json:"total_amount"`
}

// UserIdentity identifies the payer. Phone is optional; when present it is
// prefilled so mobile-money checkout can skip the phone-entry step.
type UserIdentity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// VehicleDescriptor carries the vehicle fields echoed to the gateway as
// metadata and stored on the settlement record.
type VehicleDescriptor struct {
	ID           int64   `json:"id"`
	SpecID       int64   `json:"spec_id"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	LicensePlate string  `json:"license_plate"`
	VIN          string  `json:"vin"`
	Mileage      int64   `json:"mileage"`
	DailyRate    float64 `json:"daily_rate"`
}

// Session is the state of one checkout attempt. A controller owns at most
// one live session; reopening always produces a fresh one.
type Session struct {
	Step        Step
	Method      Method
	PhoneNumber string

	// Notice is a user-visible, non-blocking message (timeout notice,
	// gateway failure reason, settlement warning).
	Notice string

	// Reference and AuthorizationURL are set once the gateway accepts the
	// transaction.
	Reference        string
	AuthorizationURL string

	// Reconciled is true once settlement was recorded by the backend.
	// SupportNeeded marks the charged-but-not-recorded state; the remedy
	// is never a retry.
	Reconciled    bool
	SupportNeeded bool

	token *cancelToken
	timer *stoppableTimer
}

// cancelToken is a single-use token shared between the gateway-wait timer
// and the gateway callbacks. Whoever consumes it first wins the race; the
// token is poisoned afterwards so the losing side cannot fire.
type cancelToken struct {
	mu   sync.Mutex
	used bool
}

func (t *cancelToken) consume() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.used {
		return false
	}
	t.used = true
	return true
}

// stoppableTimer wraps whatever the controller's timer factory returned so
// tests can substitute manual timers.
type stoppableTimer struct {
	stop func() bool
}

func (t *stoppableTimer) Stop() {
	if t != nil && t.stop != nil {
		t.stop()
	}
}

package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rentalportal/internal/domain"
	"rentalportal/internal/utils"
)

const (
	// DefaultGatewayTimeout bounds how long a session waits in
	// gateway-active before being forced back to method selection.
	DefaultGatewayTimeout = 15 * time.Second

	// DefaultCloseDelay is how long a reconciled session stays visible
	// before the controller auto-closes it.
	DefaultCloseDelay = 3 * time.Second
)

const (
	noticeGatewayTimeout = "The payment gateway did not respond in time. Please try again."
	noticeGatewayLoading = "The payment service is still loading. Please try again in a moment."
	noticePaymentFailed  = "The payment was not completed."
)

// Controller sequences one checkout attempt: method choice, optional phone
// capture, gateway invocation with a bounded wait, then settlement. It
// implements Callbacks so the gateway can deliver terminal events.
type Controller struct {
	Gateway    Gateway
	Settlement SettlementSubmitter
	Currency   string

	GatewayTimeout time.Duration
	CloseDelay     time.Duration

	// AfterFunc creates the timers behind the gateway wait and the
	// auto-close delay; it returns a stop function. Tests substitute a
	// manual implementation to drive the race deterministically.
	AfterFunc func(d time.Duration, f func()) func() bool

	// OnAutoClose fires after a reconciled session closes itself; the
	// HTTP layer uses it to steer the customer to their dashboard.
	OnAutoClose func()

	RequestID string

	mu      sync.Mutex
	session *Session
	booking BookingSummary
	user    UserIdentity
	vehicle VehicleDescriptor
}

// Snapshot is the externally visible session state.
type Snapshot struct {
	Open             bool    `json:"open"`
	Step             Step    `json:"step,omitempty"`
	Method           Method  `json:"method,omitempty"`
	PhoneNumber      string  `json:"phone_number,omitempty"`
	Notice           string  `json:"notice,omitempty"`
	Reference        string  `json:"reference,omitempty"`
	AuthorizationURL string  `json:"authorization_url,omitempty"`
	Reconciled       bool    `json:"reconciled"`
	SupportNeeded    bool    `json:"support_needed"`
	BookingID        int64   `json:"booking_id,omitempty"`
	TotalAmount      float64 `json:"total_amount,omitempty"`
}

// Open starts a fresh session at method-selection, discarding any prior
// session state so nothing leaks across bookings.
func (c *Controller) Open(b BookingSummary, u UserIdentity, v VehicleDescriptor) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.booking, c.user, c.vehicle = b, u, v
	c.session = &Session{Step: StepMethodSelection}
	return c.snapshotLocked()
}

// Close discards the session and cancels any armed gateway-wait timer. A
// settlement call already in flight is left to run to completion.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// SelectMethod handles the method-selection step. Mobile money with a
// prefilled profile phone skips phone entry entirely.
func (c *Controller) SelectMethod(m Method) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.requireStepLocked(StepMethodSelection)
	if err != nil {
		return err
	}

	switch m {
	case MethodCard:
		return c.activateGatewayLocked(s, m)
	case MethodMobileMoney:
		if p := NormalizePhone(c.user.Phone); ValidPhone(p) {
			s.PhoneNumber = p
			return c.activateGatewayLocked(s, m)
		}
		s.Method = m
		s.Step = StepPhoneEntry
		return nil
	default:
		return domain.ValidationError{Field: "method", Msg: "unknown payment method"}
	}
}

// SubmitPhone validates and stores the entered number, then moves to the
// gateway. Numbers shorter than nine digits after stripping are rejected
// locally with no transition and no gateway call.
func (c *Controller) SubmitPhone(raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.requireStepLocked(StepPhoneEntry)
	if err != nil {
		return err
	}

	p := NormalizePhone(raw)
	if !ValidPhone(p) {
		return domain.ValidationError{Field: "phone", Msg: "phone number must have at least 9 digits"}
	}
	s.PhoneNumber = p
	return c.activateGatewayLocked(s, MethodMobileMoney)
}

// Back returns from phone entry to method selection.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.requireStepLocked(StepPhoneEntry)
	if err != nil {
		return err
	}
	s.Step = StepMethodSelection
	s.Method = ""
	return nil
}

// Retry returns a failed session to method selection for another attempt.
func (c *Controller) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.requireStepLocked(StepFailed)
	if err != nil {
		return err
	}
	s.Step = StepMethodSelection
	s.Notice = ""
	return nil
}

// OnResult receives the gateway's terminal verdict. It races the gateway
// wait timer through the session's single-use token: a late result after a
// timeout (or a late timeout after a result) is dropped.
func (c *Controller) OnResult(o Outcome) {
	c.mu.Lock()
	s := c.session
	if s == nil || !s.token.consume() {
		c.mu.Unlock()
		return
	}
	s.timer.Stop()
	s.timer = nil

	if !o.Succeeded() {
		s.Step = StepFailed
		s.Notice = utils.FirstNonEmpty(o.Message, noticePaymentFailed)
		utils.LogEvent(c.RequestID, "checkout", "gateway_result",
			fmt.Sprintf("booking_id=%d status=%s", c.booking.ID, o.Status))
		c.mu.Unlock()
		return
	}

	s.Step = StepSucceeded
	rec := BuildSettlementRecord(c.booking, c.user, c.vehicle, s.Method, c.currency(), s.PhoneNumber, o)
	sub := c.Settlement
	c.mu.Unlock()

	// The charge already happened; the settlement call runs to completion
	// even if the session is closed meanwhile.
	var submitErr error
	if sub != nil {
		submitErr = sub.Submit(context.Background(), rec)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		return
	}
	if submitErr != nil {
		s.SupportNeeded = true
		s.Notice = ClassifySubmitError(submitErr)
		utils.LogEvent(c.RequestID, "checkout", "settle",
			fmt.Sprintf("booking_id=%d recording failed: %v", c.booking.ID, submitErr))
		return
	}
	s.Reconciled = true
	utils.LogEvent(c.RequestID, "checkout", "settle",
		fmt.Sprintf("booking_id=%d tx=%s recorded", c.booking.ID, rec.TransactionID))
	c.afterFunc()(c.closeDelay(), func() {
		c.Close()
		if c.OnAutoClose != nil {
			c.OnAutoClose()
		}
	})
}

// OnUserDismiss handles the customer closing the widget without paying.
// This is silent cancellation back to method selection, not a failure.
func (c *Controller) OnUserDismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || !s.token.consume() {
		return
	}
	s.timer.Stop()
	s.timer = nil
	s.Step = StepMethodSelection
}

// Snapshot returns the current externally visible state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	if c.session == nil {
		return Snapshot{}
	}
	s := c.session
	return Snapshot{
		Open:             true,
		Step:             s.Step,
		Method:           s.Method,
		PhoneNumber:      s.PhoneNumber,
		Notice:           s.Notice,
		Reference:        s.Reference,
		AuthorizationURL: s.AuthorizationURL,
		Reconciled:       s.Reconciled,
		SupportNeeded:    s.SupportNeeded,
		BookingID:        c.booking.ID,
		TotalAmount:      c.booking.TotalAmount,
	}
}

// activateGatewayLocked moves the session to gateway-active and arms the
// wait timer. The readiness check precedes every mutation so a not-ready
// gateway causes no transition at all.
func (c *Controller) activateGatewayLocked(s *Session, m Method) error {
	if c.Gateway == nil || !c.Gateway.Ready() {
		return domain.GatewayError{Op: "open", Msg: noticeGatewayLoading}
	}

	ref := NewReference(c.booking.ID, time.Now())
	req := TransactionRequest{
		Reference:   ref,
		Email:       c.user.Email,
		AmountMinor: MinorUnits(c.booking.TotalAmount),
		Currency:    c.currency(),
		Channels:    channelsFor(m),
		Metadata:    metadataFor(c.vehicle, s.PhoneNumber),
	}
	if m == MethodMobileMoney {
		req.MobileNumber = s.PhoneNumber
		req.Provider = mobileMoneyProvider
	}

	url, err := c.Gateway.Open(context.Background(), req, c)
	if err != nil {
		s.Method = m
		s.Step = StepFailed
		s.Notice = noticePaymentFailed
		return domain.GatewayError{Op: "open", Err: err}
	}

	s.Method = m
	s.Reference = ref
	s.AuthorizationURL = url
	s.Step = StepGatewayActive
	s.Notice = ""

	token := &cancelToken{}
	s.token = token
	stop := c.afterFunc()(c.gatewayTimeout(), func() { c.onGatewayTimeout(token) })
	s.timer = &stoppableTimer{stop: stop}
	return nil
}

// onGatewayTimeout forces the session back to method selection when the
// gateway never answered. If the token was already consumed by a result or
// a dismissal, the timeout is a no-op.
func (c *Controller) onGatewayTimeout(token *cancelToken) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !token.consume() {
		return
	}
	s := c.session
	if s == nil {
		return
	}
	s.timer = nil
	s.Step = StepMethodSelection
	s.Notice = noticeGatewayTimeout
	utils.LogEvent(c.RequestID, "checkout", "gateway_timeout",
		fmt.Sprintf("booking_id=%d reference=%s", c.booking.ID, s.Reference))
}

func (c *Controller) requireStepLocked(want Step) (*Session, error) {
	s := c.session
	if s == nil {
		return nil, domain.ConflictError{Resource: "checkout session", Msg: "not open"}
	}
	if s.Step != want {
		return nil, domain.ConflictError{
			Resource: "checkout session",
			Msg:      fmt.Sprintf("step is %s, expected %s", s.Step, want),
		}
	}
	return s, nil
}

func (c *Controller) teardownLocked() {
	if c.session == nil {
		return
	}
	c.session.token.consume()
	c.session.timer.Stop()
	c.session = nil
}

func (c *Controller) currency() string {
	if c.Currency != "" {
		return c.Currency
	}
	return "KES"
}

func (c *Controller) gatewayTimeout() time.Duration {
	if c.GatewayTimeout > 0 {
		return c.GatewayTimeout
	}
	return DefaultGatewayTimeout
}

func (c *Controller) closeDelay() time.Duration {
	if c.CloseDelay > 0 {
		return c.CloseDelay
	}
	return DefaultCloseDelay
}

func (c *Controller) afterFunc() func(time.Duration, func()) func() bool {
	if c.AfterFunc != nil {
		return c.AfterFunc
	}
	return func(d time.Duration, f func()) func() bool {
		t := time.AfterFunc(d, f)
		return t.Stop
	}
}

// mobileMoneyProvider tags mobile-money transactions with the network the
// gateway should route to.
const mobileMoneyProvider = "mpesa"

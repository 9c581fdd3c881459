package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentalportal/internal/domain"
)

type fakeGateway struct {
	ready   bool
	opens   int
	lastReq TransactionRequest
	cb      Callbacks
	openErr error
}

func (g *fakeGateway) EnsureLoaded(ctx context.Context) error {
	g.ready = true
	return nil
}

func (g *fakeGateway) Ready() bool { return g.ready }

func (g *fakeGateway) Open(ctx context.Context, req TransactionRequest, cb Callbacks) (string, error) {
	g.opens++
	if g.openErr != nil {
		return "", g.openErr
	}
	g.lastReq = req
	g.cb = cb
	return "https://gateway.test/pay", nil
}

type fakeSubmitter struct {
	err  error
	recs []SettlementRecord
}

func (s *fakeSubmitter) Submit(ctx context.Context, rec SettlementRecord) error {
	s.recs = append(s.recs, rec)
	return s.err
}

// manualTimers records scheduled callbacks instead of arming real timers so
// tests decide when, and whether, each one fires.
type manualTimers struct {
	durations []time.Duration
	fires     []func()
}

func (m *manualTimers) AfterFunc(d time.Duration, f func()) func() bool {
	m.durations = append(m.durations, d)
	m.fires = append(m.fires, f)
	return func() bool { return true }
}

func newTestController(gw *fakeGateway, sub *fakeSubmitter, timers *manualTimers) *Controller {
	return &Controller{
		Gateway:    gw,
		Settlement: sub,
		Currency:   "KES",
		AfterFunc:  timers.AfterFunc,
	}
}

func testBooking() BookingSummary {
	return BookingSummary{ID: 42, TotalAmount: 1000}
}

func testUser(phone string) UserIdentity {
	return UserIdentity{ID: 7, Email: "rider@example.com", Phone: phone}
}

func testVehicle() VehicleDescriptor {
	return VehicleDescriptor{
		ID: 3, SpecID: 12, Make: "Toyota", Model: "Axio", Year: 2021,
		LicensePlate: "KDA 123X", VIN: "JTDBT923771012345", Mileage: 45210, DailyRate: 500,
	}
}

func TestSubmitPhoneRejectsShortNumbers(t *testing.T) {
	gw := &fakeGateway{ready: true}
	ctrl := newTestController(gw, &fakeSubmitter{}, &manualTimers{})

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodMobileMoney); err != nil {
		t.Fatalf("select method: %v", err)
	}
	if got := ctrl.Snapshot().Step; got != StepPhoneEntry {
		t.Fatalf("expected phone-entry, got %s", got)
	}

	err := ctrl.SubmitPhone("071 23-45")
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := ctrl.Snapshot().Step; got != StepPhoneEntry {
		t.Fatalf("step changed on invalid phone: %s", got)
	}
	if gw.opens != 0 {
		t.Fatalf("gateway invoked %d times for invalid phone", gw.opens)
	}

	if err := ctrl.SubmitPhone("0712-345-678"); err != nil {
		t.Fatalf("valid phone rejected: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Step != StepGatewayActive {
		t.Fatalf("expected gateway-active, got %s", snap.Step)
	}
	if snap.PhoneNumber != "712345678" {
		t.Fatalf("phone not normalized, got %q", snap.PhoneNumber)
	}
}

func TestPrefilledPhoneSkipsPhoneEntry(t *testing.T) {
	gw := &fakeGateway{ready: true}
	ctrl := newTestController(gw, &fakeSubmitter{}, &manualTimers{})

	ctrl.Open(testBooking(), testUser("+254712345678"), testVehicle())
	if err := ctrl.SelectMethod(MethodMobileMoney); err != nil {
		t.Fatalf("select method: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Step != StepGatewayActive {
		t.Fatalf("expected gateway-active, got %s", snap.Step)
	}
	if gw.lastReq.MobileNumber != "712345678" {
		t.Fatalf("gateway got phone %q", gw.lastReq.MobileNumber)
	}
}

func TestReopenResetsSession(t *testing.T) {
	gw := &fakeGateway{ready: true}
	ctrl := newTestController(gw, &fakeSubmitter{}, &manualTimers{})

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodCard); err != nil {
		t.Fatalf("select method: %v", err)
	}
	gw.cb.OnResult(Outcome{Status: "failed", Message: "card declined"})
	if got := ctrl.Snapshot().Step; got != StepFailed {
		t.Fatalf("expected failed, got %s", got)
	}

	snap := ctrl.Open(BookingSummary{ID: 43, TotalAmount: 2500}, testUser(""), testVehicle())
	if snap.Step != StepMethodSelection {
		t.Fatalf("reopen did not reset step: %s", snap.Step)
	}
	if snap.Notice != "" || snap.PhoneNumber != "" || snap.Method != "" {
		t.Fatalf("stale state leaked across sessions: %+v", snap)
	}
}

func TestTimeoutLosesRaceAgainstFastResult(t *testing.T) {
	gw := &fakeGateway{ready: true}
	timers := &manualTimers{}
	ctrl := newTestController(gw, &fakeSubmitter{}, timers)

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodCard); err != nil {
		t.Fatalf("select method: %v", err)
	}
	if len(timers.fires) != 1 {
		t.Fatalf("expected one armed timer, got %d", len(timers.fires))
	}
	if timers.durations[0] != DefaultGatewayTimeout {
		t.Fatalf("gateway timeout armed at %v", timers.durations[0])
	}

	// success arrives first
	gw.cb.OnResult(Outcome{Status: "success", Reference: gw.lastReq.Reference, TransactionID: "998877"})
	if got := ctrl.Snapshot().Step; got != StepSucceeded {
		t.Fatalf("expected succeeded, got %s", got)
	}

	// the timeout fires late; it must not revert the session
	timers.fires[0]()
	snap := ctrl.Snapshot()
	if snap.Step != StepSucceeded {
		t.Fatalf("late timeout reverted session to %s", snap.Step)
	}
	if snap.Notice != "" {
		t.Fatalf("late timeout produced notice %q", snap.Notice)
	}
}

func TestTimeoutForcesBackToMethodSelection(t *testing.T) {
	gw := &fakeGateway{ready: true}
	timers := &manualTimers{}
	ctrl := newTestController(gw, &fakeSubmitter{}, timers)

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodCard); err != nil {
		t.Fatalf("select method: %v", err)
	}

	timers.fires[0]()
	snap := ctrl.Snapshot()
	if snap.Step != StepMethodSelection {
		t.Fatalf("expected method-selection after timeout, got %s", snap.Step)
	}
	if snap.Notice == "" {
		t.Fatalf("timeout must leave a user-visible notice")
	}

	// a result arriving after the timeout already won is dropped
	gw.cb.OnResult(Outcome{Status: "success"})
	if got := ctrl.Snapshot().Step; got != StepMethodSelection {
		t.Fatalf("late result changed step to %s", got)
	}
}

func TestUserDismissIsSilentCancellation(t *testing.T) {
	gw := &fakeGateway{ready: true}
	ctrl := newTestController(gw, &fakeSubmitter{}, &manualTimers{})

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodCard); err != nil {
		t.Fatalf("select method: %v", err)
	}
	gw.cb.OnUserDismiss()

	snap := ctrl.Snapshot()
	if snap.Step != StepMethodSelection {
		t.Fatalf("expected method-selection after dismiss, got %s", snap.Step)
	}
	if snap.Notice != "" {
		t.Fatalf("dismiss is not an error, got notice %q", snap.Notice)
	}
}

func TestCloseClearsPendingTimeout(t *testing.T) {
	gw := &fakeGateway{ready: true}
	timers := &manualTimers{}
	ctrl := newTestController(gw, &fakeSubmitter{}, timers)

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodCard); err != nil {
		t.Fatalf("select method: %v", err)
	}
	ctrl.Close()

	// a forced-reset firing after close must be a no-op
	timers.fires[0]()
	snap := ctrl.Snapshot()
	if snap.Open {
		t.Fatalf("session reappeared after close")
	}
	if snap.Notice != "" {
		t.Fatalf("timeout notice surfaced after close: %q", snap.Notice)
	}
}

func TestGatewayNotReadyRejectsWithoutTransition(t *testing.T) {
	gw := &fakeGateway{ready: false}
	ctrl := newTestController(gw, &fakeSubmitter{}, &manualTimers{})

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	err := ctrl.SelectMethod(MethodCard)
	if !domain.IsGateway(err) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if got := ctrl.Snapshot().Step; got != StepMethodSelection {
		t.Fatalf("step changed while gateway loading: %s", got)
	}
	if gw.opens != 0 {
		t.Fatalf("gateway opened while not ready")
	}
}

func TestGatewayOpenFailureLandsInFailedWithRetry(t *testing.T) {
	gw := &fakeGateway{ready: true, openErr: errors.New("initialize refused")}
	ctrl := newTestController(gw, &fakeSubmitter{}, &manualTimers{})

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodCard); err == nil {
		t.Fatalf("expected open error")
	}
	if got := ctrl.Snapshot().Step; got != StepFailed {
		t.Fatalf("expected failed, got %s", got)
	}

	if err := ctrl.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Step != StepMethodSelection || snap.Notice != "" {
		t.Fatalf("retry did not reset: %+v", snap)
	}
}

func TestGatewayAmountIsMinorUnits(t *testing.T) {
	gw := &fakeGateway{ready: true}
	ctrl := newTestController(gw, &fakeSubmitter{}, &manualTimers{})

	ctrl.Open(BookingSummary{ID: 9, TotalAmount: 1234.5}, testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodCard); err != nil {
		t.Fatalf("select method: %v", err)
	}
	if gw.lastReq.AmountMinor != 123450 {
		t.Fatalf("minor units = %d, want 123450", gw.lastReq.AmountMinor)
	}
	if gw.lastReq.Currency != "KES" {
		t.Fatalf("currency = %q", gw.lastReq.Currency)
	}
	if len(gw.lastReq.Channels) != 1 || gw.lastReq.Channels[0] != "card" {
		t.Fatalf("channels = %v", gw.lastReq.Channels)
	}
}

func TestSuccessfulSettlementSchedulesAutoClose(t *testing.T) {
	gw := &fakeGateway{ready: true}
	sub := &fakeSubmitter{}
	timers := &manualTimers{}
	navigated := false
	ctrl := newTestController(gw, sub, timers)
	ctrl.OnAutoClose = func() { navigated = true }

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodCard); err != nil {
		t.Fatalf("select method: %v", err)
	}
	gw.cb.OnResult(Outcome{Status: "success", Reference: gw.lastReq.Reference, TransactionID: "55"})

	snap := ctrl.Snapshot()
	if !snap.Reconciled || snap.SupportNeeded {
		t.Fatalf("expected reconciled session, got %+v", snap)
	}
	if len(timers.fires) != 2 {
		t.Fatalf("expected gateway timer plus auto-close timer, got %d", len(timers.fires))
	}
	if timers.durations[1] != DefaultCloseDelay {
		t.Fatalf("auto-close delay = %v", timers.durations[1])
	}

	timers.fires[1]()
	if ctrl.Snapshot().Open {
		t.Fatalf("session still open after auto-close")
	}
	if !navigated {
		t.Fatalf("auto-close did not trigger navigation hook")
	}
}

func TestSettlementFailureKeepsSucceededWithSupportNotice(t *testing.T) {
	gw := &fakeGateway{ready: true}
	sub := &fakeSubmitter{err: &SubmitError{StatusCode: 500}}
	ctrl := newTestController(gw, sub, &manualTimers{})

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodCard); err != nil {
		t.Fatalf("select method: %v", err)
	}
	gw.cb.OnResult(Outcome{Status: "success", TransactionID: "55"})

	snap := ctrl.Snapshot()
	if snap.Step != StepSucceeded {
		t.Fatalf("recording failure reverted step to %s", snap.Step)
	}
	if !snap.SupportNeeded || snap.Reconciled {
		t.Fatalf("expected support-needed substate, got %+v", snap)
	}
	if snap.Notice == "" {
		t.Fatalf("support-contact notice missing")
	}
}

func TestEndToEndMobileMoneyPhoneFallback(t *testing.T) {
	gw := &fakeGateway{ready: true}
	sub := &fakeSubmitter{}
	ctrl := newTestController(gw, sub, &manualTimers{})

	ctrl.Open(testBooking(), testUser(""), testVehicle())
	if err := ctrl.SelectMethod(MethodMobileMoney); err != nil {
		t.Fatalf("select method: %v", err)
	}
	if err := ctrl.SubmitPhone("712345678"); err != nil {
		t.Fatalf("submit phone: %v", err)
	}

	// gateway reports success with a reference but no phone field anywhere
	gw.cb.OnResult(Outcome{Status: "success", Reference: gw.lastReq.Reference})

	if len(sub.recs) != 1 {
		t.Fatalf("expected one settlement record, got %d", len(sub.recs))
	}
	rec := sub.recs[0]
	if rec.Phone != "712345678" {
		t.Fatalf("phone fallback = %q, want entered number", rec.Phone)
	}
	if rec.Reference != gw.lastReq.Reference {
		t.Fatalf("reference = %q, want %q", rec.Reference, gw.lastReq.Reference)
	}
	if rec.PaymentMethod != "Mobile Money" {
		t.Fatalf("method display name = %q", rec.PaymentMethod)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct{ in, want string }{
		{"712345678", "712345678"},
		{"0712345678", "712345678"},
		{"+254 712 345 678", "712345678"},
		{"254712345678", "712345678"},
		{"07 12-34-56", "07123456"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

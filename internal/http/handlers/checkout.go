package handlers

import (
	"net/http"
	"sync"

	"rentalportal/internal/checkout"
	"rentalportal/internal/http/middleware"
	"rentalportal/internal/repositories"
	"rentalportal/internal/services"

	"github.com/gin-gonic/gin"
)

// sessionOwners maps checkout session ids to the user that opened them.
var sessionOwners sync.Map

func sessionForCaller(c *gin.Context) (string, *checkout.Controller, bool) {
	rc := middleware.GetAuth(c)
	sid := c.Param("sid")

	owner, ok := sessionOwners.Load(sid)
	if !ok || owner.(int64) != rc.UserID {
		RespondError(c, http.StatusNotFound, "checkout session not found", nil)
		return "", nil, false
	}

	ctrl, err := sessions.Get(sid)
	if err != nil {
		sessionOwners.Delete(sid)
		RespondDomainError(c, err)
		return "", nil, false
	}
	return sid, ctrl, true
}

// POST /api/checkout
//
// Opens a checkout session for one of the caller's unpaid bookings and
// returns the session id plus the initial state.
func OpenCheckout(c *gin.Context) {
	rc := middleware.GetAuth(c)

	var req struct {
		BookingID int64 `json:"booking_id"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.BookingService{
		BookingRepo: repositories.BookingRepository{},
		VehicleRepo: repositories.VehicleRepository{},
		UserRepo:    repositories.UserRepository{},
		RequestID:   middleware.GetRequestID(c),
	}
	booking, payer, vehicle, err := svc.CheckoutInputs(req.BookingID, rc.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	gw := paymentGateway()
	if gw == nil {
		RespondError(c, http.StatusServiceUnavailable, "payment gateway not configured", nil)
		return
	}
	if !gw.Ready() {
		// Retry the gateway handshake lazily; a still-failing gateway
		// surfaces to the customer at method selection, not here.
		_ = gw.EnsureLoaded(c.Request.Context())
	}

	e := env()
	ctrl := &checkout.Controller{
		Gateway: gw,
		Settlement: checkout.HTTPSubmitter{
			BaseURL: e.SettlementBaseURL,
			Token:   middleware.BearerToken(c),
		},
		Currency:  e.Currency,
		RequestID: middleware.GetRequestID(c),
	}

	state := ctrl.Open(booking, payer, vehicle)
	sid := sessions.Put(ctrl)
	sessionOwners.Store(sid, rc.UserID)
	ctrl.OnAutoClose = func() {
		sessions.Remove(sid)
		sessionOwners.Delete(sid)
	}

	c.JSON(http.StatusCreated, gin.H{"session_id": sid, "state": state})
}

// GET /api/checkout/:sid
func CheckoutState(c *gin.Context) {
	_, ctrl, ok := sessionForCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ctrl.Snapshot()})
}

// POST /api/checkout/:sid/method
func CheckoutSelectMethod(c *gin.Context) {
	_, ctrl, ok := sessionForCaller(c)
	if !ok {
		return
	}

	var req struct {
		Method checkout.Method `json:"method"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := ctrl.SelectMethod(req.Method); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ctrl.Snapshot()})
}

// POST /api/checkout/:sid/phone
func CheckoutSubmitPhone(c *gin.Context) {
	_, ctrl, ok := sessionForCaller(c)
	if !ok {
		return
	}

	var req struct {
		Phone string `json:"phone"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := ctrl.SubmitPhone(req.Phone); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ctrl.Snapshot()})
}

// POST /api/checkout/:sid/back
func CheckoutBack(c *gin.Context) {
	_, ctrl, ok := sessionForCaller(c)
	if !ok {
		return
	}
	if err := ctrl.Back(); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ctrl.Snapshot()})
}

// POST /api/checkout/:sid/retry
func CheckoutRetry(c *gin.Context) {
	_, ctrl, ok := sessionForCaller(c)
	if !ok {
		return
	}
	if err := ctrl.Retry(); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ctrl.Snapshot()})
}

// POST /api/checkout/:sid/gateway/result
//
// Called when the customer returns from the gateway redirect. The charge
// is verified against the gateway before the session sees the outcome, so
// a fabricated reference cannot settle anything.
func CheckoutGatewayResult(c *gin.Context) {
	_, ctrl, ok := sessionForCaller(c)
	if !ok {
		return
	}

	var req struct {
		Reference string `json:"reference"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Reference != ctrl.Snapshot().Reference {
		RespondError(c, http.StatusBadRequest, "reference does not match this session", nil)
		return
	}
	if err := paymentGateway().DeliverResult(c.Request.Context(), req.Reference); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ctrl.Snapshot()})
}

// POST /api/checkout/:sid/gateway/dismiss
func CheckoutGatewayDismiss(c *gin.Context) {
	_, ctrl, ok := sessionForCaller(c)
	if !ok {
		return
	}

	var req struct {
		Reference string `json:"reference"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := paymentGateway().DeliverDismiss(req.Reference); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ctrl.Snapshot()})
}

// DELETE /api/checkout/:sid
func CloseCheckout(c *gin.Context) {
	sid, _, ok := sessionForCaller(c)
	if !ok {
		return
	}
	sessions.Remove(sid)
	sessionOwners.Delete(sid)
	c.JSON(http.StatusOK, gin.H{"closed": sid})
}

package handlers

import (
	"net/http"

	"rentalportal/internal/checkout"
	"rentalportal/internal/domain"
	"rentalportal/internal/http/middleware"
	"rentalportal/internal/repositories"
	"rentalportal/internal/services"

	"github.com/gin-gonic/gin"
)

func paymentService(c *gin.Context) services.PaymentService {
	return services.PaymentService{
		PaymentRepo: repositories.PaymentRepository{},
		BookingRepo: repositories.BookingRepository{},
		RequestID:   middleware.GetRequestID(c),
	}
}

// POST /api/payments/initialize
//
// Records a settlement reported by the checkout flow. The payload's
// user must be the caller; the commission split is recomputed here.
func InitializePayment(c *gin.Context) {
	rc := middleware.GetAuth(c)

	var rec checkout.SettlementRecord
	if !BindJSONOrError(c, &rec) {
		return
	}
	if rec.UserID != rc.UserID && !rc.IsAdmin() {
		middleware.CountSettlement("rejected")
		RespondError(c, http.StatusBadRequest, "settlement user does not match caller", nil)
		return
	}

	p, err := paymentService(c).RecordSettlement(rec)
	if err != nil {
		if domain.IsConflict(err) {
			middleware.CountSettlement("duplicate")
		} else {
			middleware.CountSettlement("rejected")
		}
		RespondDomainError(c, err)
		return
	}

	middleware.CountSettlement("recorded")
	c.JSON(http.StatusCreated, gin.H{"payment": p})
}

// GET /api/payments/:id
func GetPayment(c *gin.Context) {
	rc := middleware.GetAuth(c)
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	repo := repositories.PaymentRepository{}
	p, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if p.UserID != rc.UserID && !rc.IsAdmin() {
		RespondError(c, http.StatusNotFound, "payment not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

// GET /api/payments/booking/:bookingId
func GetPaymentByBooking(c *gin.Context) {
	rc := middleware.GetAuth(c)
	bookingID, ok := PathID(c, "bookingId")
	if !ok {
		return
	}

	repo := repositories.PaymentRepository{}
	p, err := repo.GetByBookingID(bookingID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if p.UserID != rc.UserID && !rc.IsAdmin() {
		RespondError(c, http.StatusNotFound, "payment not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

package handlers

import (
	"net/http"

	"rentalportal/internal/http/middleware"
	"rentalportal/internal/repositories"
	"rentalportal/internal/services"

	"github.com/gin-gonic/gin"
)

func receiptService(c *gin.Context) services.ReceiptService {
	return services.ReceiptService{
		PaymentRepo: repositories.PaymentRepository{},
		BookingRepo: repositories.BookingRepository{},
		UserRepo:    repositories.UserRepository{},
		RequestID:   middleware.GetRequestID(c),
	}
}

func receiptForCaller(c *gin.Context) (services.ReceiptView, bool) {
	rc := middleware.GetAuth(c)
	id, ok := PathID(c, "id")
	if !ok {
		return services.ReceiptView{}, false
	}

	view, err := receiptService(c).GetByPaymentID(id)
	if err != nil {
		RespondDomainError(c, err)
		return services.ReceiptView{}, false
	}
	if view.Payment.UserID != rc.UserID && !rc.IsAdmin() {
		RespondError(c, http.StatusNotFound, "receipt not found", nil)
		return services.ReceiptView{}, false
	}
	return view, true
}

// GET /api/receipts/payment/:id
func GetReceipt(c *gin.Context) {
	view, ok := receiptForCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": view})
}

// GET /api/receipts/payment/:id/pdf
func GetReceiptPDF(c *gin.Context) {
	view, ok := receiptForCaller(c)
	if !ok {
		return
	}

	pdf, filename, err := receiptService(c).RenderPDF(view)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to render receipt", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GET /api/receipts/booking/:bookingId
func GetReceiptByBooking(c *gin.Context) {
	rc := middleware.GetAuth(c)
	bookingID, ok := PathID(c, "bookingId")
	if !ok {
		return
	}

	view, err := receiptService(c).GetByBookingID(bookingID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if view.Payment.UserID != rc.UserID && !rc.IsAdmin() {
		RespondError(c, http.StatusNotFound, "receipt not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": view})
}

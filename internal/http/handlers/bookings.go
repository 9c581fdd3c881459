package handlers

import (
	"net/http"

	"rentalportal/internal/http/middleware"
	"rentalportal/internal/repositories"
	"rentalportal/internal/services"

	"github.com/gin-gonic/gin"
)

func bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		BookingRepo: repositories.BookingRepository{},
		VehicleRepo: repositories.VehicleRepository{},
		UserRepo:    repositories.UserRepository{},
		RequestID:   middleware.GetRequestID(c),
	}
}

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	rc := middleware.GetAuth(c)

	var req services.BookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	b, err := bookingService(c).CreateBooking(rc.UserID, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

// GET /api/bookings
func ListMyBookings(c *gin.Context) {
	rc := middleware.GetAuth(c)
	repo := repositories.BookingRepository{}
	bookings, err := repo.ListByUser(rc.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
	rc := middleware.GetAuth(c)
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	repo := repositories.BookingRepository{}
	b, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	// Customers only see their own bookings; a foreign id reads as absent.
	if b.UserID != rc.UserID && !rc.IsAdmin() {
		RespondError(c, http.StatusNotFound, "booking not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// POST /api/bookings/:id/cancel
func CancelBooking(c *gin.Context) {
	rc := middleware.GetAuth(c)
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	repo := repositories.BookingRepository{}
	b, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if b.UserID != rc.UserID && !rc.IsAdmin() {
		RespondError(c, http.StatusNotFound, "booking not found", nil)
		return
	}
	if err := repo.Cancel(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": id})
}

package handlers

import (
	"net/http"
	"strings"

	"rentalportal/internal/domain/models"
	"rentalportal/internal/http/middleware"
	"rentalportal/internal/repositories"

	"github.com/gin-gonic/gin"
)

// POST /api/tickets
//
// Also used by the checkout flow when a charge went through but the
// settlement could not be recorded.
func CreateTicket(c *gin.Context) {
	rc := middleware.GetAuth(c)

	var req struct {
		BookingID int64  `json:"booking_id"`
		Subject   string `json:"subject"`
		Body      string `json:"body"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		RespondError(c, http.StatusBadRequest, "subject is required", nil)
		return
	}

	repo := repositories.TicketRepository{}
	id, err := repo.Create(models.SupportTicket{
		UserID:    rc.UserID,
		BookingID: req.BookingID,
		Subject:   req.Subject,
		Body:      strings.TrimSpace(req.Body),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ticket_id": id})
}

// GET /api/tickets
func ListMyTickets(c *gin.Context) {
	rc := middleware.GetAuth(c)
	repo := repositories.TicketRepository{}
	tickets, err := repo.ListByUser(rc.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "count": len(tickets)})
}

// GET /api/tickets/:id
func GetTicket(c *gin.Context) {
	rc := middleware.GetAuth(c)
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	repo := repositories.TicketRepository{}
	t, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if t.UserID != rc.UserID && !rc.IsAdmin() {
		RespondError(c, http.StatusNotFound, "ticket not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": t})
}

// PUT /api/tickets/:id/status  (admin)
func UpdateTicketStatus(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	switch req.Status {
	case models.TicketStatusOpen, models.TicketStatusPending,
		models.TicketStatusResolved, models.TicketStatusClosed:
	default:
		RespondError(c, http.StatusBadRequest, "unknown ticket status", nil)
		return
	}

	repo := repositories.TicketRepository{}
	if err := repo.UpdateStatus(id, req.Status); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_id": id, "status": req.Status})
}

package handlers

import (
	"net/http"
	"strings"

	"rentalportal/internal/domain/models"
	"rentalportal/internal/http/middleware"
	"rentalportal/internal/repositories"

	"github.com/gin-gonic/gin"
)

// POST /api/vehicles/:id/reviews
func CreateReview(c *gin.Context) {
	rc := middleware.GetAuth(c)
	vehicleID, ok := PathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		RespondError(c, http.StatusBadRequest, "rating must be between 1 and 5", nil)
		return
	}

	repo := repositories.ReviewRepository{}
	id, err := repo.Create(models.Review{
		VehicleID: vehicleID,
		UserID:    rc.UserID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review_id": id})
}

// GET /api/vehicles/:id/reviews
func ListReviews(c *gin.Context) {
	vehicleID, ok := PathID(c, "id")
	if !ok {
		return
	}

	repo := repositories.ReviewRepository{}
	reviews, err := repo.ListByVehicle(vehicleID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

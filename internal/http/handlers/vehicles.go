package handlers

import (
	"net/http"
	"strconv"

	"rentalportal/internal/domain/models"
	"rentalportal/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/vehicles?q=&status=&limit=&offset=
func ListVehicles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	repo := repositories.VehicleRepository{}
	vehicles, err := repo.List(c.Query("q"), c.Query("status"), limit, offset)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles, "count": len(vehicles)})
}

// GET /api/vehicles/:id
func GetVehicle(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	repo := repositories.VehicleRepository{}
	v, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": v})
}

// POST /api/vehicles  (admin)
func CreateVehicle(c *gin.Context) {
	var v models.Vehicle
	if !BindJSONOrError(c, &v) {
		return
	}
	if v.Make == "" || v.Model == "" {
		RespondError(c, http.StatusBadRequest, "make and model are required", nil)
		return
	}
	if v.DailyRate <= 0 {
		RespondError(c, http.StatusBadRequest, "daily_rate must be positive", nil)
		return
	}
	if v.Status == "" {
		v.Status = "available"
	}

	repo := repositories.VehicleRepository{}
	id, err := repo.Create(v)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	v.ID = id
	c.JSON(http.StatusCreated, gin.H{"vehicle": v})
}

// PUT /api/vehicles/:id  (admin)
func UpdateVehicle(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var upd models.VehicleUpdate
	if !BindJSONOrError(c, &upd) {
		return
	}

	repo := repositories.VehicleRepository{}
	if err := repo.Update(id, upd); err != nil {
		RespondDomainError(c, err)
		return
	}
	v, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": v})
}

// DELETE /api/vehicles/:id  (admin)
func DeleteVehicle(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	repo := repositories.VehicleRepository{}
	if err := repo.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

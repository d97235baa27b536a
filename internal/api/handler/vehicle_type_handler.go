package handler

import (
	"net/http"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type VehicleTypeHandler struct {
	masterData *service.MasterDataService
}

func NewVehicleTypeHandler(md *service.MasterDataService) *VehicleTypeHandler {
	return &VehicleTypeHandler{masterData: md}
}

// POST /vehicle-types
func (h *VehicleTypeHandler) Create(c *gin.Context) {
	var dto domain.CreateVehicleTypeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vt, err := h.masterData.CreateVehicleType(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err, "create vehicle type")
		return
	}
	c.JSON(http.StatusCreated, vt)
}

// GET /vehicle-types
func (h *VehicleTypeHandler) List(c *gin.Context) {
	types, err := h.masterData.ListVehicleTypes(c.Request.Context())
	if err != nil {
		respondError(c, err, "list vehicle types")
		return
	}
	c.JSON(http.StatusOK, types)
}

// PUT /vehicle-types/:id
func (h *VehicleTypeHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.UpdateVehicleTypeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vt, err := h.masterData.UpdateVehicleType(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err, "update vehicle type")
		return
	}
	c.JSON(http.StatusOK, vt)
}

// DELETE /vehicle-types/:id
func (h *VehicleTypeHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.masterData.DeleteVehicleType(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete vehicle type")
		return
	}
	c.Status(http.StatusNoContent)
}

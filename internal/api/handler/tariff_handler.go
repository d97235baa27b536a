package handler

import (
	"net/http"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TariffHandler struct {
	tariffs *service.TariffService
}

func NewTariffHandler(ts *service.TariffService) *TariffHandler {
	return &TariffHandler{tariffs: ts}
}

// GET /tariffs?vehicle_type_id=
func (h *TariffHandler) List(c *gin.Context) {
	var filter uuid.NullUUID
	if raw := c.Query("vehicle_type_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle_type_id"})
			return
		}
		filter = uuid.NullUUID{UUID: id, Valid: true}
	}
	bands, err := h.tariffs.ListBands(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "list tariff bands")
		return
	}
	c.JSON(http.StatusOK, bands)
}

// POST /tariffs
func (h *TariffHandler) Create(c *gin.Context) {
	var dto domain.TariffBandDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	band, err := h.tariffs.CreateBand(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err, "create tariff band")
		return
	}
	c.JSON(http.StatusCreated, band)
}

// PUT /tariffs/:id
func (h *TariffHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.TariffBandDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	band, err := h.tariffs.UpdateBand(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err, "update tariff band")
		return
	}
	c.JSON(http.StatusOK, band)
}

// DELETE /tariffs/:id
func (h *TariffHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.tariffs.DeleteBand(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete tariff band")
		return
	}
	c.Status(http.StatusNoContent)
}

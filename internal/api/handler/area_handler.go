package handler

import (
	"net/http"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type AreaHandler struct {
	masterData *service.MasterDataService
}

func NewAreaHandler(md *service.MasterDataService) *AreaHandler {
	return &AreaHandler{masterData: md}
}

// POST /areas
func (h *AreaHandler) Create(c *gin.Context) {
	var dto domain.CreateAreaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	area, err := h.masterData.CreateArea(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err, "create parking area")
		return
	}
	c.JSON(http.StatusCreated, area)
}

// GET /areas
func (h *AreaHandler) List(c *gin.Context) {
	areas, err := h.masterData.ListAreas(c.Request.Context())
	if err != nil {
		respondError(c, err, "list parking areas")
		return
	}
	c.JSON(http.StatusOK, areas)
}

// GET /areas/:id
func (h *AreaHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	area, err := h.masterData.GetArea(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load parking area")
		return
	}
	c.JSON(http.StatusOK, area)
}

// PUT /areas/:id
func (h *AreaHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.UpdateAreaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	area, err := h.masterData.UpdateArea(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err, "update parking area")
		return
	}
	c.JSON(http.StatusOK, area)
}

// DELETE /areas/:id
func (h *AreaHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.masterData.DeleteArea(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete parking area")
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /areas/:id/capacities replaces the area's slot allotments.
func (h *AreaHandler) SetCapacities(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.SetCapacitiesDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caps, err := h.masterData.SetCapacities(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err, "set area capacities")
		return
	}
	c.JSON(http.StatusOK, caps)
}

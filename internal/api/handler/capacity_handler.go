package handler

import (
	"context"
	"net/http"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

// CapacityBoard serves the occupancy of every area and vehicle type, usually
// from the redis cache.
type CapacityBoard interface {
	Board(ctx context.Context) ([]domain.CapacityStatus, error)
}

type CapacityHandler struct {
	board  CapacityBoard
	ledger *service.CapacityLedger
}

func NewCapacityHandler(board CapacityBoard, ledger *service.CapacityLedger) *CapacityHandler {
	return &CapacityHandler{board: board, ledger: ledger}
}

// GET /capacity
func (h *CapacityHandler) Board(c *gin.Context) {
	rows, err := h.board.Board(c.Request.Context())
	if err != nil {
		respondError(c, err, "load capacity board")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /capacity/:area_id/:vehicle_type_id always reads the ledger, never the cache.
func (h *CapacityHandler) Available(c *gin.Context) {
	areaID, ok := parseIDParam(c, "area_id")
	if !ok {
		return
	}
	vehicleTypeID, ok := parseIDParam(c, "vehicle_type_id")
	if !ok {
		return
	}
	available, err := h.ledger.AvailableSlots(c.Request.Context(), areaID, vehicleTypeID)
	if err != nil {
		respondError(c, err, "compute available slots")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"area_id":         areaID,
		"vehicle_type_id": vehicleTypeID,
		"available":       available,
	})
}

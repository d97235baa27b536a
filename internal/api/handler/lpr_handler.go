package handler

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type LPRHandler struct {
	lprService *service.LPRService
	trxService *service.TransactionService
}

func NewLPRHandler(lprService *service.LPRService, trxService *service.TransactionService) *LPRHandler {
	return &LPRHandler{lprService: lprService, trxService: trxService}
}

// POST /lpr/recognize reads a plate from a base64 image and reports the
// plate's active transaction, if any, so the operator can check it out.
func (h *LPRHandler) Recognize(c *gin.Context) {
	var req domain.LPRRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	imageBytes, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil || len(imageBytes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 is not a valid image"})
		return
	}
	log.Printf("LPRHandler: received %d image bytes", len(imageBytes))

	plate, confidence, err := h.lprService.ProcessImageForLPR(c.Request.Context(), imageBytes)
	switch {
	case errors.Is(err, service.ErrNoPlateDetected):
		c.JSON(http.StatusOK, domain.LPRResponseDTO{ErrorMessage: err.Error()})
		return
	case errors.Is(err, service.ErrLPRDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "plate recognition failed", "details": err.Error()})
		return
	}

	resp := domain.LPRResponseDTO{DetectedPlate: plate, Confidence: confidence}
	active, err := h.trxService.FindActiveByPlate(c.Request.Context(), plate)
	switch {
	case err == nil:
		resp.ActiveTransaction = active
	case !errors.Is(err, domain.ErrNotFound):
		respondError(c, err, "look up active transaction")
		return
	}
	c.JSON(http.StatusOK, resp)
}

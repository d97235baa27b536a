package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeqown/go-qrcode"
)

type TransactionHandler struct {
	trxService *service.TransactionService
}

func NewTransactionHandler(ts *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{trxService: ts}
}

// POST /transactions/check-in
func (h *TransactionHandler) CheckIn(c *gin.Context) {
	var dto domain.CheckInDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	req := domain.CheckInRequest{
		Plate:         dto.PlateNumber,
		OwnerName:     dto.OwnerName,
		AreaID:        dto.AreaID,
		VehicleTypeID: dto.VehicleTypeID,
		OperatorID:    operatorFrom(c),
	}
	if dto.VehicleID != nil {
		req.VehicleID = uuid.NullUUID{UUID: *dto.VehicleID, Valid: true}
	}

	trx, err := h.trxService.CheckIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "check in vehicle")
		return
	}
	c.JSON(http.StatusCreated, trx)
}

// POST /transactions/:id/check-out
func (h *TransactionHandler) CheckOut(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.CheckOutDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	trx, err := h.trxService.CheckOut(c.Request.Context(), domain.CheckOutRequest{
		TransactionID: id,
		PaymentMethod: domain.PaymentMethod(strings.ToUpper(string(dto.PaymentMethod))),
		OperatorID:    operatorFrom(c),
	})
	if err != nil {
		respondError(c, err, "check out vehicle")
		return
	}
	c.JSON(http.StatusOK, trx)
}

// POST /transactions/:id/cancel
func (h *TransactionHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	trx, err := h.trxService.Cancel(c.Request.Context(), id, operatorFrom(c))
	if err != nil {
		respondError(c, err, "cancel transaction")
		return
	}
	c.JSON(http.StatusOK, trx)
}

// GET /transactions/search?q=
func (h *TransactionHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}
	preview, err := h.trxService.Search(c.Request.Context(), term)
	if err != nil {
		respondError(c, err, "search transactions")
		return
	}
	if preview == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active transaction matches '" + term + "'"})
		return
	}
	c.JSON(http.StatusOK, preview)
}

// GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	trx, err := h.trxService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load transaction")
		return
	}
	c.JSON(http.StatusOK, trx)
}

// GET /transactions/:id/ticket renders the transaction code as a JPEG QR code.
func (h *TransactionHandler) Ticket(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	trx, err := h.trxService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load transaction")
		return
	}

	qrc, err := qrcode.New(trx.Code)
	if err != nil {
		respondError(c, err, "render ticket")
		return
	}
	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Disposition", `inline; filename="`+trx.Code+`.jpeg"`)
	c.Status(http.StatusOK)
	if err := qrc.SaveTo(c.Writer); err != nil {
		log.Printf("TransactionHandler: could not write ticket for %s: %v", trx.Code, err)
	}
}

package handler

import (
	"net/http"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	discounts *service.DiscountService
}

func NewMemberHandler(ds *service.DiscountService) *MemberHandler {
	return &MemberHandler{discounts: ds}
}

// GET /vehicles/:id/memberships
func (h *MemberHandler) ListByVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	members, err := h.discounts.ListMemberships(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "list memberships")
		return
	}
	c.JSON(http.StatusOK, members)
}

// POST /memberships
func (h *MemberHandler) Create(c *gin.Context) {
	var dto domain.CreateMembershipDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := h.discounts.CreateMembership(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err, "create membership")
		return
	}
	c.JSON(http.StatusCreated, member)
}

// POST /memberships/renew
func (h *MemberHandler) Renew(c *gin.Context) {
	var dto domain.RenewMembershipDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := h.discounts.RenewMembership(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err, "renew membership")
		return
	}
	c.JSON(http.StatusCreated, member)
}

// DELETE /memberships/:id
func (h *MemberHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.discounts.DeleteMembership(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete membership")
		return
	}
	c.Status(http.StatusNoContent)
}

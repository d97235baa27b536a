package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/history"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HistoryHandler struct {
	history *history.Service
	loc     *time.Location
}

// NewHistoryHandler reads date filters as calendar days in loc.
func NewHistoryHandler(hs *history.Service, loc *time.Location) *HistoryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &HistoryHandler{history: hs, loc: loc}
}

type listQuery struct {
	Search  string `form:"q"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1"`
}

// historyQuery takes a comma separated status list and an inclusive from/to
// date range.
type historyQuery struct {
	listQuery
	Status string `form:"status"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	AreaID string `form:"area_id" binding:"omitempty,uuid"`
}

// GET /transactions/active
func (h *HistoryHandler) ListActive(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}
	page, err := h.history.ListActive(c.Request.Context(), history.ActiveFilter{
		Search: q.Search, Page: q.Page, PerPage: q.PerPage,
	})
	if err != nil {
		respondError(c, err, "list active transactions")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /transactions/history
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}

	filter := history.HistoryFilter{Search: q.Search, Page: q.Page, PerPage: q.PerPage}
	for _, s := range strings.Split(q.Status, ",") {
		if s = strings.TrimSpace(s); s != "" {
			filter.Statuses = append(filter.Statuses, domain.TransactionStatus(strings.ToUpper(s)))
		}
	}
	if q.From != "" {
		filter.From, _ = time.ParseInLocation(time.DateOnly, q.From, h.loc)
	}
	if q.To != "" {
		to, _ := time.ParseInLocation(time.DateOnly, q.To, h.loc)
		filter.To = to.AddDate(0, 0, 1)
	}
	if q.AreaID != "" {
		filter.AreaID = uuid.NullUUID{UUID: uuid.MustParse(q.AreaID), Valid: true}
	}

	page, err := h.history.ListHistory(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "list transaction history")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /dashboard/stats
func (h *HistoryHandler) Stats(c *gin.Context) {
	stats, err := h.history.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "compute dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"planroom/internal/usage"
	"planroom/pkg/logger"
)

// UsageHandler 回報 AI 花費與剩餘額度
type UsageHandler struct {
	ledger *usage.Ledger
}

func NewUsageHandler(ledger *usage.Ledger) *UsageHandler {
	return &UsageHandler{ledger: ledger}
}

// GetUsage 回傳累計花費；cost_scope 為 room 時依 ?room= 計算
func (h *UsageHandler) GetUsage(c *gin.Context) {
	room := c.Query("room")
	if h.ledger.Scope() == usage.ScopeRoom && room == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room is required when spending is tracked per room"})
		return
	}

	spent, err := h.ledger.TotalSpent(c.Request.Context(), room)
	if err != nil {
		l := logger.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("sum usage failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load usage"})
		return
	}

	remaining := h.ledger.Ceiling().Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	c.JSON(http.StatusOK, gin.H{
		"scope":     h.ledger.Scope(),
		"spent":     spent.StringFixed(usage.CostPrecision),
		"ceiling":   h.ledger.Ceiling().StringFixed(usage.CostPrecision),
		"remaining": remaining.StringFixed(usage.CostPrecision),
	})
}

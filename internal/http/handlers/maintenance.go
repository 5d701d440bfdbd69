package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

type MaintenanceHandler struct {
	log     *logger.Logger
	stats   services.StatsService
	sweeper services.OrphanSweepService
}

func NewMaintenanceHandler(log *logger.Logger, stats services.StatsService, sweeper services.OrphanSweepService) *MaintenanceHandler {
	return &MaintenanceHandler{
		log:     log.With("handler", "MaintenanceHandler"),
		stats:   stats,
		sweeper: sweeper,
	}
}

// GET /api/stats
func (h *MaintenanceHandler) Stats(c *gin.Context) {
	st, err := h.stats.GetStats(requestDBC(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": st})
}

// POST /api/maintenance/orphans/sweep?limit=
func (h *MaintenanceHandler) SweepOrphans(c *gin.Context) {
	res, err := h.sweeper.SweepOrphans(requestDBC(c), queryInt(c, "limit"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"checked":  res.Checked,
		"resolved": res.Resolved,
		"failed":   res.Failed,
	})
}

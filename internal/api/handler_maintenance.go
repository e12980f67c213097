package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"farmflow-backend/internal/events"
	"farmflow-backend/internal/metrics"
)

type recordMaintenanceRequest struct {
	ItemID      string `json:"item_id" binding:"required"`
	CurrentHour *int   `json:"current_hour" binding:"required"`
}

type recordMaintenanceResponse struct {
	ItemID                string  `json:"item_id"`
	MachineID             string  `json:"machine_id"`
	LastMaintenanceAtHour *int    `json:"last_maintenance_at_hour"`
	LatestPreCheckStatus  *string `json:"latest_precheck_status"`
}

// RecordMaintenance handles POST /machines/:machine_id/maintenance.
func (h *Handler) RecordMaintenance(c *gin.Context) {
	var req recordMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	machineID := c.Param("machine_id")
	ctx := c.Request.Context()
	item, err := h.store.RecordMaintenance(ctx, machineID, req.ItemID, *req.CurrentHour)
	if err != nil {
		respondStoreError(c, err, fmt.Sprintf("MaintenanceItem not found: %s", req.ItemID))
		return
	}
	metrics.MaintenanceRecordedTotal.Inc()

	c.JSON(http.StatusOK, recordMaintenanceResponse{
		ItemID:                item.ID,
		MachineID:             item.MachineID,
		LastMaintenanceAtHour: item.LastMaintenanceAtHour,
		LatestPreCheckStatus:  item.LatestPreCheckStatus,
	})

	events.Emit(ctx, h.events, events.Event{
		Type:      events.TypeMaintenanceRecorded,
		MachineID: item.MachineID,
		Data: events.MaintenanceRecorded{
			ItemID:                item.ID,
			LastMaintenanceAtHour: *req.CurrentHour,
		},
	})
	h.notify(item.MachineID, events.TypeMaintenanceRecorded,
		fmt.Sprintf("%s serviced at %dh", item.Name, *req.CurrentHour))
}

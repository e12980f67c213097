package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"farmflow-backend/internal/events"
	"farmflow-backend/internal/metrics"
	"farmflow-backend/internal/store"
)

const (
	defaultPreCheckLimit = 50
	maxPreCheckLimit     = 500
)

// SavePreCheck handles POST /precheck?machine_id=&total_hours=.
// The body is the check result and must be a JSON object.
func (h *Handler) SavePreCheck(c *gin.Context) {
	machineID := c.Query("machine_id")
	if machineID == "" {
		respondError(c, http.StatusBadRequest, "machine_id is required")
		return
	}
	totalHours, err := strconv.Atoi(c.Query("total_hours"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "total_hours must be an integer")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil || result == nil {
		respondError(c, http.StatusBadRequest, "result must be a JSON object")
		return
	}

	ctx := c.Request.Context()
	if h.validateMachine {
		exists, err := h.store.MachineExists(ctx, machineID)
		if err != nil {
			respondStoreError(c, err, "")
			return
		}
		if !exists {
			respondError(c, http.StatusNotFound, "Machine not found")
			return
		}
	}

	record, err := h.store.SavePreCheck(ctx, store.PreCheckInput{
		MachineID:  machineID,
		Result:     body,
		TotalHours: totalHours,
	})
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	metrics.PreChecksSavedTotal.Inc()

	c.JSON(http.StatusOK, gin.H{"message": "PreCheck saved", "id": record.ID})

	events.Emit(ctx, h.events, events.Event{
		Type:       events.TypePreCheckSaved,
		MachineID:  machineID,
		OccurredAt: record.CheckDate,
		Data: events.PreCheckSaved{
			ID:                record.ID,
			TotalHoursAtCheck: totalHours,
			Result:            json.RawMessage(body),
		},
	})
	h.notify(machineID, events.TypePreCheckSaved, fmt.Sprintf("Pre-check recorded at %dh", totalHours))
}

// ListPreChecks handles GET /machines/:machine_id/prechecks?limit=.
func (h *Handler) ListPreChecks(c *gin.Context) {
	limit := defaultPreCheckLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxPreCheckLimit)
	}

	records, err := h.store.ListPreChecks(c.Request.Context(), c.Param("machine_id"), limit)
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, records)
}

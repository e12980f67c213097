package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"farmflow-backend/internal/model"
)

type maintenanceItemResponse struct {
	ID                       string     `json:"id"`
	MachineID                string     `json:"machine_id"`
	Type                     string     `json:"type"`
	Name                     string     `json:"name"`
	Mode                     string     `json:"mode"`
	RecommendedIntervalHours *int       `json:"recommended_interval_hours"`
	LastMaintenanceAtHour    *int       `json:"last_maintenance_at_hour"`
	LastInspectionDate       *time.Time `json:"last_inspection_date"`
	LatestPreCheckStatus     *string    `json:"latest_precheck_status"`
}

type machineResponse struct {
	ID               string                    `json:"id"`
	Name             string                    `json:"name"`
	ModelName        string                    `json:"model_name"`
	TotalHours       int                       `json:"total_hours"`
	MaintenanceItems []maintenanceItemResponse `json:"maintenance_items"`
}

func newMachineResponse(m model.Machine) machineResponse {
	items := make([]maintenanceItemResponse, 0, len(m.MaintenanceItems))
	for _, it := range m.MaintenanceItems {
		interval := it.RecommendedIntervalHours
		if it.Mode == model.ModeInspectionOnly {
			interval = nil
		}
		items = append(items, maintenanceItemResponse{
			ID:                       it.ID,
			MachineID:                it.MachineID,
			Type:                     string(it.Type),
			Name:                     it.Name,
			Mode:                     string(it.Mode),
			RecommendedIntervalHours: interval,
			LastMaintenanceAtHour:    it.LastMaintenanceAtHour,
			LastInspectionDate:       it.LastInspectionDate,
			LatestPreCheckStatus:     it.LatestPreCheckStatus,
		})
	}
	return machineResponse{
		ID:               m.ID,
		Name:             m.Name,
		ModelName:        m.ModelName,
		TotalHours:       m.TotalHours,
		MaintenanceItems: items,
	}
}

// Root handles GET /.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "FarmFlow API is running"})
}

// ListMachines handles GET /machines.
func (h *Handler) ListMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "")
		return
	}

	responses := make([]machineResponse, 0, len(machines))
	for _, m := range machines {
		responses = append(responses, newMachineResponse(m))
	}
	c.JSON(http.StatusOK, responses)
}

// GetMachine handles GET /machines/:machine_id.
func (h *Handler) GetMachine(c *gin.Context) {
	machine, err := h.store.GetMachine(c.Request.Context(), c.Param("machine_id"))
	if err != nil {
		respondStoreError(c, err, "Machine not found")
		return
	}
	c.JSON(http.StatusOK, newMachineResponse(*machine))
}

package model

import "time"

// ItemType is the category tag of a maintenance item.
type ItemType string

const (
	ItemTypeEngineOil       ItemType = "engineOil"
	ItemTypeCoolant         ItemType = "coolant"
	ItemTypeGrease          ItemType = "grease"
	ItemTypeAirFilter       ItemType = "airFilter"
	ItemTypeHydraulicOil    ItemType = "hydraulicOil"
	ItemTypeFuelFilter      ItemType = "fuelFilter"
	ItemTypeTransmissionOil ItemType = "transmissionOil"
	ItemTypeTirePressure    ItemType = "tirePressure"
	ItemTypeBrakeWire       ItemType = "brakeWire"
)

// ItemMode says how an item becomes due.
type ItemMode string

const (
	// ModeIntervalBased items are due RecommendedIntervalHours after the last service.
	ModeIntervalBased ItemMode = "intervalBased"
	// ModeInspectionOnly items are checked by hand; no interval applies.
	ModeInspectionOnly ItemMode = "inspectionOnly"
)

// MaintenanceItem is a serviceable component attached to a machine.
type MaintenanceItem struct {
	ID        string   `gorm:"primaryKey;size:128" json:"id"`
	MachineID string   `gorm:"size:64;index;not null" json:"machine_id"`
	Type      ItemType `gorm:"size:32;not null" json:"type"`
	Name      string   `gorm:"size:256;not null" json:"name"`
	Mode      ItemMode `gorm:"size:32;not null" json:"mode"`

	// Only meaningful when Mode is ModeIntervalBased.
	RecommendedIntervalHours *int `json:"recommended_interval_hours"`
	// Machine total_hours at the last service.
	LastMaintenanceAtHour *int `json:"last_maintenance_at_hour"`

	LastInspectionDate   *time.Time `json:"last_inspection_date"`
	LatestPreCheckStatus *string    `gorm:"column:latest_precheck_status" json:"latest_precheck_status"`
}

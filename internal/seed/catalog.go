package seed

import "farmflow-backend/internal/model"

// TractorID is the machine every fresh installation starts with.
const TractorID = "TRACTOR-001"

// DefaultMachine returns the baseline machine inserted when it is missing.
func DefaultMachine() model.Machine {
	return model.Machine{
		ID:         TractorID,
		Name:       "No.1",
		ModelName:  "SL54",
		TotalHours: 500,
	}
}

// DefaultItems returns the maintenance catalog for the baseline machine.
func DefaultItems() []model.MaintenanceItem {
	return []model.MaintenanceItem{
		intervalItem("engine-oil", model.ItemTypeEngineOil, "エンジンオイル", 200, 420),
		intervalItem("hydraulic-oil", model.ItemTypeHydraulicOil, "作動油", 400, 300),
		intervalItem("transmission-oil", model.ItemTypeTransmissionOil, "ミッションオイル", 300, 250),
		inspectionItem("air-filter", model.ItemTypeAirFilter, "エアフィルタ"),
		intervalItem("fuel-filter", model.ItemTypeFuelFilter, "燃料フィルタ", 400, 260),
		inspectionItem("coolant", model.ItemTypeCoolant, "冷却水"),
		intervalItem("grease", model.ItemTypeGrease, "グリスアップ", 50, 480),
		inspectionItem("tire-pressure", model.ItemTypeTirePressure, "タイヤ空気圧"),
		inspectionItem("brake-wire", model.ItemTypeBrakeWire, "ブレーキワイヤ"),
	}
}

func itemID(suffix string) string {
	return TractorID + "-" + suffix
}

func intervalItem(suffix string, typ model.ItemType, name string, interval, lastHour int) model.MaintenanceItem {
	return model.MaintenanceItem{
		ID:                       itemID(suffix),
		MachineID:                TractorID,
		Type:                     typ,
		Name:                     name,
		Mode:                     model.ModeIntervalBased,
		RecommendedIntervalHours: &interval,
		LastMaintenanceAtHour:    &lastHour,
	}
}

func inspectionItem(suffix string, typ model.ItemType, name string) model.MaintenanceItem {
	return model.MaintenanceItem{
		ID:        itemID(suffix),
		MachineID: TractorID,
		Type:      typ,
		Name:      name,
		Mode:      model.ModeInspectionOnly,
	}
}

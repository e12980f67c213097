package model

// Machine is a piece of farm machinery whose maintenance is tracked.
type Machine struct {
	ID         string `gorm:"primaryKey;size:64" json:"id"`
	Name       string `gorm:"size:256;not null" json:"name"`
	ModelName  string `gorm:"size:128;not null" json:"model_name"`
	TotalHours int    `gorm:"not null" json:"total_hours"`

	// Associations
	MaintenanceItems []MaintenanceItem `gorm:"foreignKey:MachineID;constraint:OnDelete:CASCADE" json:"maintenance_items"`
}

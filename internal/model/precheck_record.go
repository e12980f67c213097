package model

import "time"

// PreCheckRecord is an immutable log entry of a pre-operation checklist.
// MachineID is deliberately not a foreign key.
type PreCheckRecord struct {
	ID                string       `gorm:"primaryKey;size:36" json:"id"`
	MachineID         string       `gorm:"size:64;index;not null" json:"machine_id"`
	CheckDate         time.Time    `gorm:"not null;index" json:"check_date"`
	Result            JSONDocument `gorm:"not null" json:"result"`
	TotalHoursAtCheck *int         `json:"total_hours_at_check"`
}

// TableName keeps the table name stable regardless of naming strategy.
func (PreCheckRecord) TableName() string {
	return "precheck_records"
}

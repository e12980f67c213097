package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmflow-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	ListMachines(ctx context.Context) ([]model.Machine, error)
	GetMachine(ctx context.Context, machineID string) (*model.Machine, error)
	MachineExists(ctx context.Context, machineID string) (bool, error)
	DeleteMachine(ctx context.Context, machineID string) error

	SavePreCheck(ctx context.Context, in PreCheckInput) (*model.PreCheckRecord, error)
	ListPreChecks(ctx context.Context, machineID string, limit int) ([]model.PreCheckRecord, error)

	RecordMaintenance(ctx context.Context, machineID, itemID string, currentHour int) (*model.MaintenanceItem, error)
}

// PreCheckInput carries the client-supplied fields of a pre-check record.
type PreCheckInput struct {
	MachineID  string
	Result     []byte // JSON document, stored verbatim
	TotalHours int
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db    *gorm.DB
	now   func() time.Time
	newID func() string
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ListMachines returns every machine with its maintenance items preloaded.
func (s *gormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Preload("MaintenanceItems").Order("id").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

// GetMachine returns one machine with its maintenance items, or ErrNotFound.
func (s *gormStore) GetMachine(ctx context.Context, machineID string) (*model.Machine, error) {
	var machine model.Machine
	err := s.db.WithContext(ctx).
		Preload("MaintenanceItems").
		Where("id = ?", machineID).
		Take(&machine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("machine %q: %w", machineID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get machine %q: %w", machineID, err)
	}
	return &machine, nil
}

func (s *gormStore) MachineExists(ctx context.Context, machineID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Machine{}).Where("id = ?", machineID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up machine %q: %w", machineID, err)
	}
	return count > 0, nil
}

// DeleteMachine removes a machine, its items and its subscription mappings in
// one transaction. Pre-check records are kept.
func (s *gormStore) DeleteMachine(ctx context.Context, machineID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var machine model.Machine
		err := tx.Where("id = ?", machineID).Take(&machine).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("machine %q: %w", machineID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load machine %q: %w", machineID, err)
		}

		if err := tx.Exec("DELETE FROM subscription_machine_mapping WHERE machine_id = ?", machineID).Error; err != nil {
			return fmt.Errorf("failed to delete subscriptions of machine %q: %w", machineID, err)
		}
		if err := tx.Where("machine_id = ?", machineID).Delete(&model.MaintenanceItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items of machine %q: %w", machineID, err)
		}
		if err := tx.Delete(&machine).Error; err != nil {
			return fmt.Errorf("failed to delete machine %q: %w", machineID, err)
		}
		return nil
	})
}

// SavePreCheck appends a new pre-check record with a generated id and the
// current server time. The machine is not required to exist.
func (s *gormStore) SavePreCheck(ctx context.Context, in PreCheckInput) (*model.PreCheckRecord, error) {
	hours := in.TotalHours
	record := model.PreCheckRecord{
		ID:                s.newID(),
		MachineID:         in.MachineID,
		CheckDate:         s.now().UTC(),
		Result:            model.JSONDocument(in.Result),
		TotalHoursAtCheck: &hours,
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to save pre-check for machine %q: %w", in.MachineID, err)
	}
	return &record, nil
}

// ListPreChecks returns up to limit records for a machine, newest first.
func (s *gormStore) ListPreChecks(ctx context.Context, machineID string, limit int) ([]model.PreCheckRecord, error) {
	records := []model.PreCheckRecord{}
	err := s.db.WithContext(ctx).
		Where("machine_id = ?", machineID).
		Order("check_date DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pre-checks for machine %q: %w", machineID, err)
	}
	return records, nil
}

// RecordMaintenance sets an item's last-maintenance hour and clears its
// pre-check status. The item must belong to machineID.
func (s *gormStore) RecordMaintenance(ctx context.Context, machineID, itemID string, currentHour int) (*model.MaintenanceItem, error) {
	var item model.MaintenanceItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", itemID).Take(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("maintenance item %q: %w", itemID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load maintenance item %q: %w", itemID, err)
		}

		if item.MachineID != machineID {
			return fmt.Errorf("item %q belongs to %q, not %q: %w", itemID, item.MachineID, machineID, ErrMachineMismatch)
		}

		if err := tx.Model(&item).Updates(map[string]any{
			"last_maintenance_at_hour": currentHour,
			"latest_precheck_status":   nil,
		}).Error; err != nil {
			return fmt.Errorf("failed to update maintenance item %q: %w", itemID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	item.LastMaintenanceAtHour = &currentHour
	item.LatestPreCheckStatus = nil
	return &item, nil
}

package seed

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"farmflow-backend/internal/log"
	"farmflow-backend/internal/metrics"
	"farmflow-backend/internal/model"
)

// EnsureSeedData inserts the baseline machine and whichever catalog items are
// missing from it. Items that already exist are left untouched, even if their
// values differ from the catalog. It returns the number of inserted items.
func EnsureSeedData(ctx context.Context, db *gorm.DB) (int, error) {
	inserted := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var machine model.Machine
		err := tx.Where("id = ?", TractorID).Take(&machine).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			machine = DefaultMachine()
			if err := tx.Omit("MaintenanceItems").Create(&machine).Error; err != nil {
				return fmt.Errorf("failed to create machine %s: %w", TractorID, err)
			}
			log.Info("seed: machine created", "machine_id", TractorID)
		case err != nil:
			return fmt.Errorf("failed to look up machine %s: %w", TractorID, err)
		}

		var ids []string
		if err := tx.Model(&model.MaintenanceItem{}).
			Where("machine_id = ?", TractorID).
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to load existing item ids: %w", err)
		}
		existing := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			existing[id] = struct{}{}
		}

		var missing []model.MaintenanceItem
		for _, item := range DefaultItems() {
			if _, ok := existing[item.ID]; ok {
				continue
			}
			missing = append(missing, item)
		}
		if len(missing) == 0 {
			return nil
		}

		if err := tx.Create(&missing).Error; err != nil {
			return fmt.Errorf("failed to insert %d maintenance items: %w", len(missing), err)
		}
		inserted = len(missing)
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.SeededItemsTotal.Add(float64(inserted))
	log.Info("seed: maintenance items inserted", "inserted", inserted)
	return inserted, nil
}

package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rideboard-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.TripRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	return nil
}

// addCustomIndexes creates the advisory indexes for the hot queries:
// duplicate-guard and matcher lookups on (route_key, date), expiry
// sweeps on date, and the prefs text search. All are performance-only.
func addCustomIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_trip_records_route_date ON trip_records(route_key, date)",
		"CREATE INDEX IF NOT EXISTS idx_trip_records_date ON trip_records(date)",
		"CREATE INDEX IF NOT EXISTS idx_trip_records_notify ON trip_records(date, notify_matches)",
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			fmt.Printf("Warning: could not create index: %v\n", err)
		}
	}

	// MySQL has no IF NOT EXISTS for fulltext indexes; ignore the
	// duplicate-key error on restarts.
	if err := db.Exec("CREATE FULLTEXT INDEX idx_trip_records_prefs ON trip_records(prefs)").Error; err != nil {
		fmt.Printf("Warning: could not create fulltext index for prefs: %v\n", err)
	}

	return nil
}

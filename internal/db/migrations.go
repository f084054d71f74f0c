package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS trip_logs (
		user_id VARCHAR(64) PRIMARY KEY,
		content TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS goals (
		user_id VARCHAR(64) NOT NULL,
		key VARCHAR(64) NOT NULL,
		value TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, key)
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'goals' AND column_name = 'position') THEN
			ALTER TABLE goals ADD COLUMN position INT NOT NULL DEFAULT 0;
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals (user_id, position);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Migrate applies the schema to an already opened connection.
func Migrate(db *gorm.DB) error {
	return runMigrations(db)
}

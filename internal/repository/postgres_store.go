package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/model"
)

// PostgresStore keeps the log as one text column per user, so the rest of
// the application sees exactly the same lines as with FileStore.
type PostgresStore struct {
	db *gorm.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) ReadLog(ctx context.Context, userID string) ([]string, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	var contents []string
	if err := r.db.WithContext(ctx).Raw(`
		SELECT content FROM trip_logs WHERE user_id = ? LIMIT 1
	`, userID).Scan(&contents).Error; err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if len(contents) == 0 {
		return nil, nil
	}
	return codec.SplitLines(contents[0]), nil
}

func (r *PostgresStore) AppendLog(ctx context.Context, userID string, lines []string) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO trip_logs (user_id, content)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET
			content = trip_logs.content || EXCLUDED.content,
			updated_at = NOW()
	`, userID, codec.JoinLines(lines)).Error
}

func (r *PostgresStore) RewriteLog(ctx context.Context, userID string, lines []string) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO trip_logs (user_id, content)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET
			content = EXCLUDED.content,
			updated_at = NOW()
	`, userID, codec.JoinLines(lines)).Error
}

type goalRow struct {
	Key   string
	Value string
}

func (r *PostgresStore) ReadGoal(ctx context.Context, userID string) ([]model.Field, bool, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, false, err
	}
	var rows []goalRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT key, value
		FROM goals
		WHERE user_id = ?
		ORDER BY position ASC, key ASC
	`, userID).Scan(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("read goals: %w", err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	values := make([]model.Field, 0, len(rows))
	for _, row := range rows {
		values = append(values, model.Field{Key: row.Key, Value: row.Value})
	}
	return values, true, nil
}

func (r *PostgresStore) WriteGoal(ctx context.Context, userID string, values []model.Field) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceGoals(tx, userID, values)
	})
}

func (r *PostgresStore) InitUser(ctx context.Context, userID string, defaults []model.Field) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			INSERT INTO trip_logs (user_id, content)
			VALUES (?, '')
			ON CONFLICT (user_id) DO NOTHING
		`, userID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Raw(`
			SELECT COUNT(*) FROM goals WHERE user_id = ?
		`, userID).Scan(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return replaceGoals(tx, userID, defaults)
	})
}

func replaceGoals(tx *gorm.DB, userID string, values []model.Field) error {
	if err := tx.Exec(`DELETE FROM goals WHERE user_id = ?`, userID).Error; err != nil {
		return err
	}
	for i, v := range values {
		if err := tx.Exec(`
			INSERT INTO goals (user_id, key, value, position)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id, key) DO UPDATE
			SET value = EXCLUDED.value, position = EXCLUDED.position
		`, userID, v.Key, v.Value, i).Error; err != nil {
			return err
		}
	}
	return nil
}

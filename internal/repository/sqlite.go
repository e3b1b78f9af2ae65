package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"lead-automation/internal/core"
)

// SQLiteRepository implements core.RepositoryPort using SQLite via GORM.
// It archives captured sessions and run history locally.
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), config)
	if err != nil {
		return nil, err
	}

	repo := &SQLiteRepository{db: db}

	if err := repo.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

// Migrate runs database migrations
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&core.SessionArchive{},
		&core.RunHistory{},
	)
}

// SaveSession upserts a captured session keyed by lead. A re-capture for the
// same lead replaces the previous archive entry.
func (r *SQLiteRepository) SaveSession(ctx context.Context, leadID string, rec *core.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}

	now := time.Now()
	entry := &core.SessionArchive{
		LeadID:     leadID,
		Domain:     rec.FinalDomain,
		Payload:    string(data),
		CapturedAt: time.Unix(int64(rec.CapturedAt), 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lead_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"domain", "payload", "captured_at", "updated_at"}),
	}).Create(entry)

	return result.Error
}

// GetSessionByLeadID retrieves the archived session for a lead, or nil when
// none was captured.
func (r *SQLiteRepository) GetSessionByLeadID(ctx context.Context, leadID string) (*core.SessionRecord, error) {
	var entry core.SessionArchive
	result := r.db.WithContext(ctx).Where("lead_id = ?", leadID).First(&entry)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	var rec core.SessionRecord
	if err := json.Unmarshal([]byte(entry.Payload), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode archived session: %w", err)
	}

	return &rec, nil
}

// LogRun records one injector or launcher invocation.
func (r *SQLiteRepository) LogRun(ctx context.Context, run *core.RunHistory) error {
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	result := r.db.WithContext(ctx).Create(run)
	return result.Error
}

// TodayRunCount counts runs of a role since the start of today.
func (r *SQLiteRepository) TodayRunCount(ctx context.Context, role string) (int64, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	result := r.db.WithContext(ctx).
		Model(&core.RunHistory{}).
		Where("role = ? AND timestamp >= ?", role, startOfDay).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
)

// ArchivedEntry is the relational row shape for long-term audit storage.
// Metadata is flattened to JSON text so the row works on any driver.
type ArchivedEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	EventID   string    `gorm:"size:36;uniqueIndex"`
	UserID    string    `gorm:"size:128;index"`
	Action    string    `gorm:"size:64;index"`
	Endpoint  string    `gorm:"size:255"`
	RequestID string    `gorm:"size:64;index"`
	Success   bool      `gorm:"index"`
	Error     string    `gorm:"size:1024"`
	Metadata  string    `gorm:"type:text"`
	Timestamp time.Time `gorm:"index"`
}

// TableName keeps the archive table name stable across drivers.
func (ArchivedEntry) TableName() string {
	return "audit_entries"
}

// GormArchive persists audit entries to a relational database. The memory
// store remains the source of truth for reads; the archive exists for
// retention beyond the in-memory window.
type GormArchive struct {
	db *gorm.DB
}

// NewGormArchive opens the archive database and migrates its schema.
// Supported drivers are "sqlite" and "postgres".
func NewGormArchive(driver, dsn string) (*GormArchive, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open audit archive: %w", err)
	}
	if err := db.AutoMigrate(&ArchivedEntry{}); err != nil {
		return nil, fmt.Errorf("migrate audit archive: %w", err)
	}

	return &GormArchive{db: db}, nil
}

// Emit writes one audit entry to the archive.
func (a *GormArchive) Emit(ctx context.Context, entry *models.AuditEntry) error {
	row, err := toArchivedEntry(entry)
	if err != nil {
		return err
	}
	return a.db.WithContext(ctx).Create(row).Error
}

// CountByUser reports how many archived entries exist for a user.
func (a *GormArchive) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&ArchivedEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Close closes the underlying database handle.
func (a *GormArchive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toArchivedEntry(entry *models.AuditEntry) (*ArchivedEntry, error) {
	metadata := ""
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal audit metadata: %w", err)
		}
		metadata = string(raw)
	}

	return &ArchivedEntry{
		EventID:   entry.EventID.String(),
		UserID:    entry.UserID,
		Action:    string(entry.Action),
		Endpoint:  entry.Endpoint,
		RequestID: entry.RequestID,
		Success:   entry.Success,
		Error:     entry.Error,
		Metadata:  metadata,
		Timestamp: entry.Timestamp,
	}, nil
}

package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Record is one ingested item as persisted in a source's store.
type Record struct {
	Seq          uint   `gorm:"primaryKey;autoIncrement"`
	Title        string `gorm:"not null"`
	Date         string `gorm:"not null"` // canonical YYYY-MM-DD
	URL          string `gorm:"uniqueIndex;not null"`
	ArtifactPath string // empty for URL-only (sitemap) records
}

// RecordUpdate holds optional replacement fields for an administrative
// update; nil fields are left unchanged.
type RecordUpdate struct {
	Title        *string
	Date         *string
	URL          *string
	ArtifactPath *string
}

// Store persists one Record per ingested item, keyed by source URL.
// Each source gets its own sqlite file.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (creating if necessary) the sqlite store at path and
// migrates the schema.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrating store schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Exists reports whether a record for url is already present. A store
// failure is logged and reported as false: re-processing an item is
// preferable to silently dropping it.
func (s *Store) Exists(url string) bool {
	var rec Record
	err := s.db.Session(&gorm.Session{}).Select("seq").Where("url = ?", url).First(&rec).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("store exists check failed for %s: %v (treating as not processed)", url, err)
		}
		return false
	}
	return true
}

// Insert creates the record for a newly ingested item and returns its
// sequence number. Failures are returned as StoreError so the caller can
// escalate instead of leaving an orphaned artifact on disk.
func (s *Store) Insert(title, date, url, artifactPath string) (uint, error) {
	rec := Record{
		Title:        title,
		Date:         date,
		URL:          url,
		ArtifactPath: artifactPath,
	}
	if err := s.db.Session(&gorm.Session{}).Create(&rec).Error; err != nil {
		return 0, &StoreError{Op: "insert", Err: err}
	}
	return rec.Seq, nil
}

// Latest returns up to limit records ordered newest date first.
func (s *Store) Latest(limit int) ([]Record, error) {
	var recs []Record
	err := s.db.Session(&gorm.Session{}).Order("date DESC").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, &StoreError{Op: "latest", Err: err}
	}
	return recs, nil
}

// Update applies the non-nil fields of upd to the record with the given
// sequence number. Administrative operation; the ingestion driver never
// mutates records.
func (s *Store) Update(seq uint, upd RecordUpdate) error {
	fields := map[string]any{}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Date != nil {
		fields["date"] = *upd.Date
	}
	if upd.URL != nil {
		fields["url"] = *upd.URL
	}
	if upd.ArtifactPath != nil {
		fields["artifact_path"] = *upd.ArtifactPath
	}
	if len(fields) == 0 {
		return nil
	}

	res := s.db.Session(&gorm.Session{}).Model(&Record{}).Where("seq = ?", seq).Updates(fields)
	if res.Error != nil {
		return &StoreError{Op: "update", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &StoreError{Op: "update", Err: fmt.Errorf("no record with seq %d", seq)}
	}
	return nil
}

// Delete removes the record with the given sequence number.
// Administrative operation only.
func (s *Store) Delete(seq uint) error {
	res := s.db.Session(&gorm.Session{}).Where("seq = ?", seq).Delete(&Record{})
	if res.Error != nil {
		return &StoreError{Op: "delete", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &StoreError{Op: "delete", Err: fmt.Errorf("no record with seq %d", seq)}
	}
	return nil
}

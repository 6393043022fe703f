// Package gormstore はscanフィーチャーのリポジトリ実装を提供します。
package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
)

// ScanRecordModel はscan_recordsテーブルのGORMモデルです。
type ScanRecordModel struct {
	ID                  uint      `gorm:"primaryKey"`
	Timestamp           time.Time `gorm:"index;not null"`
	ConfidenceScore     float64   `gorm:"not null"`
	ClassificationLabel string    `gorm:"size:32;not null"`
	CompanyID           uint      `gorm:"index;not null"`
}

// TableName はGORMのテーブル名を固定します。
func (ScanRecordModel) TableName() string { return "scan_records" }

// scanRecordStore はScanRecorderインターフェースのGORM実装です。
type scanRecordStore struct {
	db *gorm.DB
}

// scanRecordStoreがScanRecorderを実装していることをコンパイル時に検証します。
var _ usecase.ScanRecorder = (*scanRecordStore)(nil)

// NewScanRecordStore は指定されたgorm.DB接続でscanRecordStoreの
// 新しいインスタンスを生成します。
func NewScanRecordStore(db *gorm.DB) *scanRecordStore {
	return &scanRecordStore{db: db}
}

// Record はスキャン履歴1件を保存します。
func (r *scanRecordStore) Record(ctx context.Context, rec *entity.ScanRecord) error {
	m := ScanRecordModel{
		Timestamp:           rec.Timestamp,
		ConfidenceScore:     rec.ConfidenceScore,
		ClassificationLabel: rec.ClassificationLabel,
		CompanyID:           rec.CompanyID,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	rec.ID = m.ID
	return nil
}

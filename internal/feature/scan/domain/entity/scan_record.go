package entity

import "time"

// ScanRecord は課金・監査用に永続化されるスキャン履歴です。
type ScanRecord struct {
	ID                  uint
	Timestamp           time.Time
	ConfidenceScore     float64
	ClassificationLabel string
	CompanyID           uint
}

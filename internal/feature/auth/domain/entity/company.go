package entity

import "time"

// DefaultCredits は新規登録企業に付与されるクレジット数です。
const DefaultCredits = 100

// ClientCompany はAPIキーで認証されるテナント企業です。
// スキャン1回ごとにクレジットを1消費します。
type ClientCompany struct {
	// ID is the unique identifier for the company.
	ID uint `gorm:"primaryKey"`

	// Name is the display name of the company.
	Name string `gorm:"size:255;not null"`

	// APIKey is the opaque key presented in the X-API-Key header.
	// It must be unique across all companies.
	APIKey string `gorm:"uniqueIndex;size:64;not null"`

	// CreditsRemaining is the number of scans the company can still run.
	CreditsRemaining int `gorm:"not null;default:100"`

	// CreatedAt is the timestamp when the company was registered.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the company was last updated.
	UpdatedAt time.Time
}

package dto

import (
	"time"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/domain/entity"
)

// CreateCompanyReq は/admin/companiesエンドポイントのリクエストボディを表します。
type CreateCompanyReq struct {
	Name string `json:"name" binding:"required"`
}

// CompanyRes は1社分の企業情報レスポンスです。
// APIキーは管理者向けエンドポイントでのみ返却されます。
type CompanyRes struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	APIKey           string    `json:"api_key"`
	CreditsRemaining int       `json:"credits_remaining"`
	CreatedAt        time.Time `json:"created_at"`
}

// FromCompany はドメインエンティティをレスポンスDTOに変換します。
func FromCompany(c *entity.ClientCompany) CompanyRes {
	return CompanyRes{
		ID:               c.ID,
		Name:             c.Name,
		APIKey:           c.APIKey,
		CreditsRemaining: c.CreditsRemaining,
		CreatedAt:        c.CreatedAt,
	}
}

// TokenRes はログイン成功時のレスポンスです。
type TokenRes struct {
	Token string `json:"token"`
}

// MessageRes は汎用の成功レスポンスです。
type MessageRes struct {
	Message string `json:"message"`
}

// ErrorRes はエラー時の共通レスポンスです。
type ErrorRes struct {
	Error string `json:"error"`
}

// Package apikey はテナント企業向けのAPIキー認証ミドルウェアを提供します。
package apikey

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/usecase"
)

const (
	// HeaderAPIKey はAPIキーを運ぶHTTPヘッダー名です。
	HeaderAPIKey = "X-API-Key"

	// ContextCompanyID はginコンテキストに設定される企業IDのキーです。
	ContextCompanyID = "company_id"
)

// Authorizer はAPIキーを検証しクレジットを消費するインターフェースです。
// Goの慣例に従い、インターフェースはコンシューマー（middleware）側で定義します。
type Authorizer interface {
	Authorize(ctx context.Context, apiKey string) (*entity.ClientCompany, error)
}

// Required はAPIキーを検証し、スキャン1回分のクレジットを消費する
// Ginミドルウェアを返します。
//
// - キー欠落または不一致: 401
// - クレジット枯渇: 402
// - 成功: 企業IDをコンテキストに設定して続行
func Required(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderAPIKey)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing api key"})
			return
		}

		company, err := auth.Authorize(c.Request.Context(), key)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrCompanyNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			case errors.Is(err, usecase.ErrNoCredits):
				c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "no credits remaining"})
			default:
				slog.Error("api key authorization failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authorization failed"})
			}
			return
		}

		c.Set(ContextCompanyID, company.ID)
		c.Next()
	}
}

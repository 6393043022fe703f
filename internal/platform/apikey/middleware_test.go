package apikey_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/usecase"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/apikey"
)

// mockAuthorizer はAuthorizerインターフェースのモック実装です。
type mockAuthorizer struct {
	AuthorizeFunc func(ctx context.Context, apiKey string) (*entity.ClientCompany, error)
}

func (m *mockAuthorizer) Authorize(ctx context.Context, apiKey string) (*entity.ClientCompany, error) {
	return m.AuthorizeFunc(ctx, apiKey)
}

func newRouter(auth apikey.Authorizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/analyze", apikey.Required(auth), func(c *gin.Context) {
		id, _ := c.Get(apikey.ContextCompanyID)
		c.JSON(http.StatusOK, gin.H{"company_id": id})
	})
	return router
}

func doRequest(router *gin.Engine, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/analyze", nil)
	if key != "" {
		req.Header.Set(apikey.HeaderAPIKey, key)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequired(t *testing.T) {
	t.Run("valid key sets company id", func(t *testing.T) {
		auth := &mockAuthorizer{
			AuthorizeFunc: func(ctx context.Context, key string) (*entity.ClientCompany, error) {
				assert.Equal(t, "valid-key", key)
				return &entity.ClientCompany{ID: 7, CreditsRemaining: 99}, nil
			},
		}

		w := doRequest(newRouter(auth), "valid-key")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"company_id":7}`, w.Body.String())
	})

	t.Run("missing key returns 401 without touching usecase", func(t *testing.T) {
		auth := &mockAuthorizer{
			AuthorizeFunc: func(ctx context.Context, key string) (*entity.ClientCompany, error) {
				t.Fatal("Authorize must not be called")
				return nil, nil
			},
		}

		w := doRequest(newRouter(auth), "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown key returns 401", func(t *testing.T) {
		auth := &mockAuthorizer{
			AuthorizeFunc: func(ctx context.Context, key string) (*entity.ClientCompany, error) {
				return nil, usecase.ErrCompanyNotFound
			},
		}

		w := doRequest(newRouter(auth), "unknown-key")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"invalid api key"}`, w.Body.String())
	})

	t.Run("exhausted credits return 402", func(t *testing.T) {
		auth := &mockAuthorizer{
			AuthorizeFunc: func(ctx context.Context, key string) (*entity.ClientCompany, error) {
				return nil, usecase.ErrNoCredits
			},
		}

		w := doRequest(newRouter(auth), "exhausted-key")

		assert.Equal(t, http.StatusPaymentRequired, w.Code)
		assert.JSONEq(t, `{"error":"no credits remaining"}`, w.Body.String())
	})

	t.Run("infrastructure failure returns 500", func(t *testing.T) {
		auth := &mockAuthorizer{
			AuthorizeFunc: func(ctx context.Context, key string) (*entity.ClientCompany, error) {
				return nil, errors.New("db down")
			},
		}

		w := doRequest(newRouter(auth), "any-key")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

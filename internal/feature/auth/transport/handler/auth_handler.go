// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/transport/http/dto"
)

// AuthUsecase は認証・企業管理操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は指定されたメールアドレスとパスワードで新規管理者を登録します。
	Signup(ctx context.Context, email, password string) error
	// Login は管理者を認証し、成功時にJWTトークンを返します。
	Login(ctx context.Context, email, password string) (string, error)
	// CreateCompany は新しいテナント企業を登録し、APIキーを発行します。
	CreateCompany(ctx context.Context, name string) (*entity.ClientCompany, error)
	// ListCompanies は登録済みの全企業を返します。
	ListCompanies(ctx context.Context) ([]entity.ClientCompany, error)
}

// AuthHandler は認証・企業管理のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からAuthUsecaseを注入します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup は管理者登録APIエンドポイントを処理します。
// - リクエストJSONをSignupReqにバインド
// - バリデーションエラー時は400を返却
// - ユーザー作成失敗時（メール重複等）は409を返却
// - 成功時は201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}
	if err := h.auth.Signup(c.Request.Context(), req.Email, req.Password); err != nil {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusConflict, dto.ErrorRes{Error: "signup failed"})
		return
	}
	slog.Info("admin signup successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.MessageRes{Message: "ok"})
}

// Login は管理者ログインAPIエンドポイントを処理します。
// - リクエストJSONをLoginReqにバインド
// - バリデーションエラー時は400を返却
// - 認証失敗時は401を返却
// - 認証成功時はJWTトークン付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "invalid email or password"})
		return
	}
	slog.Info("admin login successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenRes{Token: token})
}

// CreateCompany はテナント企業の登録APIエンドポイントを処理します。
// 発行されたAPIキーと初期クレジットを含む企業情報を返します。
//
// エンドポイント: POST /admin/companies（要JWT）
func (h *AuthHandler) CreateCompany(c *gin.Context) {
	var req dto.CreateCompanyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create company validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "company name is required"})
		return
	}

	company, err := h.auth.CreateCompany(c.Request.Context(), req.Name)
	if err != nil {
		slog.Error("create company failed", "error", err, "name", req.Name)
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "failed to create company"})
		return
	}

	slog.Info("company registered", "company_id", company.ID, "name", company.Name)
	c.JSON(http.StatusCreated, dto.FromCompany(company))
}

// ListCompanies は登録済み企業の一覧APIエンドポイントを処理します。
//
// エンドポイント: GET /admin/companies（要JWT）
func (h *AuthHandler) ListCompanies(c *gin.Context) {
	companies, err := h.auth.ListCompanies(c.Request.Context())
	if err != nil {
		slog.Error("list companies failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "failed to list companies"})
		return
	}

	out := make([]dto.CompanyRes, 0, len(companies))
	for i := range companies {
		out = append(out, dto.FromCompany(&companies[i]))
	}
	c.JSON(http.StatusOK, out)
}

package router

import (
	authhandler "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/transport/handler"
	copilothandler "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/transport/handler"
	scanhandler "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/transport/handler"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/apikey"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/http/handler"
	jwtmw "github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/jwt"

	"github.com/gin-gonic/gin"
)

func NewRouter(authHandler *authhandler.AuthHandler, scan *scanhandler.ScanHandler,
	copilot *copilothandler.CopilotHandler, authorizer apikey.Authorizer) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)

	// 管理者向けルート
	admin := r.Group("/admin")
	{
		// 管理者登録
		admin.POST("/signup", authHandler.Signup)
		// ログイン（JWT 発行）
		admin.POST("/login", authHandler.Login)

		// JWT必須のルート
		protected := admin.Group("/")
		protected.Use(jwtmw.AuthRequired())
		{
			protected.POST("/companies", authHandler.CreateCompany)
			protected.GET("/companies", authHandler.ListCompanies)
		}
	}

	// APIキー必須のルート
	// リクエストごとにクレジットを1消費する
	api := r.Group("/")
	api.Use(apikey.Required(authorizer))
	{
		api.POST("/analyze", scan.Analyze)
		api.POST("/analyze-batch", scan.AnalyzeBatch)
		api.POST("/copilot-chat", copilot.Chat)
	}

	return r
}

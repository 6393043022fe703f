// Package handler はcopilotフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/transport/http/dto"
)

// CopilotUsecase はコンプライアンス質問応答のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CopilotUsecase interface {
	Ask(ctx context.Context, question string) (*entity.ChatAnswer, error)
}

// CopilotHandler はコンプライアンス質問応答のHTTPリクエストを処理します。
type CopilotHandler struct {
	uc CopilotUsecase
}

// NewCopilotHandler はCopilotHandlerの新しいインスタンスを生成します。
func NewCopilotHandler(uc CopilotUsecase) *CopilotHandler {
	return &CopilotHandler{uc: uc}
}

// Chat はポリシー文書に基づく質問応答エンドポイントを処理します。
//
// エンドポイント: POST /copilot-chat（要APIキー）
// Content-Type: application/json
func (h *CopilotHandler) Chat(c *gin.Context) {
	var req dto.ChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("chat validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "question is required"})
		return
	}

	answer, err := h.uc.Ask(c.Request.Context(), req.Question)
	if err != nil {
		slog.Error("copilot chat failed", "error", err)
		c.JSON(http.StatusBadGateway, dto.ErrorRes{Error: "failed to answer question"})
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	c.JSON(http.StatusOK, dto.ChatRes{Answer: answer.Answer, Sources: sources})
}

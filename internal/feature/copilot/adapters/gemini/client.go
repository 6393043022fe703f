// Package gemini はGoogle Gemini APIを使用した埋め込み・回答生成
// クライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/usecase"
)

const (
	// DefaultModel は回答生成のデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	// DefaultEmbeddingModel は埋め込みのデフォルトモデルです。
	DefaultEmbeddingModel = "gemini-embedding-001"

	answerPrompt = `You are a compliance copilot for a document fraud detection platform.
Answer the question using ONLY the policy excerpts below. If the excerpts do
not contain the answer, say so plainly. Cite no external knowledge.

Policy excerpts:
%s

Question: %s`
)

// GeminiClient はGemini APIで埋め込みと回答生成の両方を行います。
type GeminiClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

// GeminiClientが両インターフェースを実装していることをコンパイル時に検証します。
var (
	_ usecase.Embedder        = (*GeminiClient)(nil)
	_ usecase.AnswerGenerator = (*GeminiClient)(nil)
)

// NewGeminiClient はADCを使用してGeminiClientの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client:         client,
		model:          DefaultModel,
		embeddingModel: DefaultEmbeddingModel,
	}, nil
}

// Embed はテキストを埋め込みベクトルに変換します。
func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("gemini returned no embeddings")
	}
	return resp.Embeddings[0].Values, nil
}

// Generate は検索済みのポリシー断片を文脈として回答を生成します。
func (g *GeminiClient) Generate(ctx context.Context, question string, contexts []entity.PolicyChunk) (string, error) {
	var sb strings.Builder
	for i, c := range contexts {
		fmt.Fprintf(&sb, "[%d] (%s)\n%s\n\n", i+1, c.Source, c.Text)
	}

	prompt := fmt.Sprintf(answerPrompt, sb.String(), question)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	return resp.Text(), nil
}

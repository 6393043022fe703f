// Package gemini はGoogle Gemini APIを使用したKYCエンティティ抽出クライアントを提供します。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	extractPrompt = `You are a KYC document analyst. From the OCR text below, extract:
- person_name: the full name of the document holder
- address: the full postal address
- date: the most prominent date on the document (issue date or date of birth)

Return ONLY a JSON object with keys "person_name", "address", "date".
Use null for any field that is not present in the text.

OCR text:
%s`
)

// GeminiEntityExtractor はGoogle Gemini APIを使用してKYCフィールドを抽出します。
type GeminiEntityExtractor struct {
	client *genai.Client
	model  string
}

// GeminiEntityExtractorがEntityExtractorを実装していることをコンパイル時に検証します。
var _ usecase.EntityExtractor = (*GeminiEntityExtractor)(nil)

// NewGeminiEntityExtractor はADCを使用してGeminiEntityExtractorの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewGeminiEntityExtractor(ctx context.Context) (*GeminiEntityExtractor, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiEntityExtractor{client: client, model: DefaultModel}, nil
}

// Extract はOCRトークン列からKYCフィールドを抽出します。
func (g *GeminiEntityExtractor) Extract(ctx context.Context, tokens []entity.OCRToken) (entity.ExtractedEntities, error) {
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		words = append(words, t.Text)
	}

	prompt := fmt.Sprintf(extractPrompt, strings.Join(words, " "))
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return entity.ExtractedEntities{}, fmt.Errorf("gemini API request failed: %w", err)
	}

	return parseEntities(resp.Text())
}

// parseEntities はモデル応答のJSONをパースします。モデルがコードフェンスで
// 囲んで返すことがあるため、先に剥がします。
func parseEntities(text string) (entity.ExtractedEntities, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var parsed struct {
		PersonName *string `json:"person_name"`
		Address    *string `json:"address"`
		Date       *string `json:"date"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return entity.ExtractedEntities{}, fmt.Errorf("failed to parse entity response: %w", err)
	}

	return entity.ExtractedEntities{
		PersonName: parsed.PersonName,
		Address:    parsed.Address,
		Date:       parsed.Date,
	}, nil
}

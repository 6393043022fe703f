// Package tesseract はローカルのTesseractエンジンを使用したOCRクライアントを提供します。
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
)

// DefaultLanguage はOCRのデフォルト言語です。
const DefaultLanguage = "eng"

// TesseractTextReader はローカルのTesseractエンジンで文書テキストを読み取ります。
// 外部APIに依存しないため、ネットワークなしで動作します。
type TesseractTextReader struct {
	language string
}

// TesseractTextReaderがTextReaderを実装していることをコンパイル時に検証します。
var _ usecase.TextReader = (*TesseractTextReader)(nil)

// NewTesseractTextReader はTesseractTextReaderの新しいインスタンスを生成します。
// languageが空の場合はDefaultLanguageを使用します。
func NewTesseractTextReader(language string) *TesseractTextReader {
	if language == "" {
		language = DefaultLanguage
	}
	return &TesseractTextReader{language: language}
}

// ReadText は画像バイト列から単語単位のOCRトークンを抽出します。
// gosseractのクライアントはゴルーチンセーフではないため、
// 呼び出しごとに生成・破棄します。
func (t *TesseractTextReader) ReadText(ctx context.Context, image []byte) ([]entity.OCRToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return nil, fmt.Errorf("failed to set tesseract language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to load image into tesseract: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract recognition failed: %w", err)
	}

	tokens := make([]entity.OCRToken, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		minX, minY := float64(b.Box.Min.X), float64(b.Box.Min.Y)
		maxX, maxY := float64(b.Box.Max.X), float64(b.Box.Max.Y)
		tokens = append(tokens, entity.OCRToken{
			Text:       word,
			Confidence: b.Confidence / 100.0,
			BoundingBox: [4]entity.Point{
				{X: minX, Y: minY},
				{X: maxX, Y: minY},
				{X: maxX, Y: maxY},
				{X: minX, Y: maxY},
			},
		})
	}

	return tokens, nil
}

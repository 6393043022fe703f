// Package vision はGoogle Cloud Vision APIを使用したOCRクライアントを提供します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
)

// VisionTextReader はGoogle Cloud Vision APIを使用して文書テキストを読み取ります。
type VisionTextReader struct {
	client *gvision.ImageAnnotatorClient
}

// VisionTextReaderがTextReaderを実装していることをコンパイル時に検証します。
var _ usecase.TextReader = (*VisionTextReader)(nil)

// NewVisionTextReader はADCを使用してVisionTextReaderの新しいインスタンスを生成します。
func NewVisionTextReader(ctx context.Context) (*VisionTextReader, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionTextReader{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionTextReader) Close() error {
	return v.client.Close()
}

// ReadText は画像バイト列から単語単位のOCRトークンを抽出します。
func (v *VisionTextReader) ReadText(ctx context.Context, image []byte) ([]entity.OCRToken, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, nil
	}
	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	annotations := resp.Responses[0].TextAnnotations
	if len(annotations) <= 1 {
		return nil, nil
	}

	// 先頭要素は全文のまとめなので単語トークンからは除外します。
	tokens := make([]entity.OCRToken, 0, len(annotations)-1)
	for _, a := range annotations[1:] {
		if a.Description == "" || a.BoundingPoly == nil || len(a.BoundingPoly.Vertices) < 4 {
			continue
		}
		var box [4]entity.Point
		for i := 0; i < 4; i++ {
			v := a.BoundingPoly.Vertices[i]
			box[i] = entity.Point{X: float64(v.X), Y: float64(v.Y)}
		}
		tokens = append(tokens, entity.OCRToken{
			Text:        a.Description,
			Confidence:  float64(a.Confidence),
			BoundingBox: box,
		})
	}

	return tokens, nil
}

// Package dlserve は外部の深層学習推論サービスと通信するHTTPクライアントを提供します。
package dlserve

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/shared/ratelimiter"
)

// Client は推論サービスのHTTPクライアントです。サービスはスライディング
// ウィンドウのCNN推論（/infer）とGrad-CAMの説明画像（/explain）を公開します。
type Client struct {
	baseURL string
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// ClientがTamperDetectorを実装していることをコンパイル時に検証します。
var _ usecase.TamperDetector = (*Client)(nil)

// NewClient は指定されたベースURLとHTTPクライアントでClientの新しい
// インスタンスを生成します。limiterはnil可です。
func NewClient(baseURL string, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	return &Client{baseURL: baseURL, client: client, limiter: limiter}
}

type inferRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type inferResponse struct {
	Score         float64 `json:"score"`
	HeatmapBase64 string  `json:"heatmap_base64"`
}

type explainResponse struct {
	SaliencyBase64 string `json:"saliency_base64"`
}

// Infer は画像を推論サービスに送信し、異常スコアとヒートマップを取得します。
func (c *Client) Infer(ctx context.Context, image []byte) (*entity.DLResult, error) {
	var body inferResponse
	if err := c.post(ctx, "/infer", image, &body); err != nil {
		return nil, err
	}

	res := &entity.DLResult{Score: body.Score}
	if body.HeatmapBase64 != "" {
		heatmap, err := base64.StdEncoding.DecodeString(body.HeatmapBase64)
		if err != nil {
			return nil, fmt.Errorf("decode heatmap: %w", err)
		}
		res.Heatmap = heatmap
	}
	return res, nil
}

// Explain は判定根拠の顕著性マップを取得します。
func (c *Client) Explain(ctx context.Context, image []byte) ([]byte, error) {
	var body explainResponse
	if err := c.post(ctx, "/explain", image, &body); err != nil {
		return nil, err
	}
	if body.SaliencyBase64 == "" {
		return nil, nil
	}
	saliency, err := base64.StdEncoding.DecodeString(body.SaliencyBase64)
	if err != nil {
		return nil, fmt.Errorf("decode saliency map: %w", err)
	}
	return saliency, nil
}

func (c *Client) post(ctx context.Context, path string, image []byte, out any) error {
	if c.limiter != nil {
		c.limiter.WaitIfNeeded()
	}

	payload, err := json.Marshal(inferRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("dlserve %s http %d", path, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

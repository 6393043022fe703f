package usecase_test

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
)

// textureImage は決定的な高周波テクスチャ画像を生成します。
// JPEG圧縮で情報が落ちる程度の複雑さを持たせます。
func textureImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.PixOffset(x, y)
			img.Pix[off] = uint8((x*7 + y*13) % 251)
			img.Pix[off+1] = uint8((x*17 + y*3) % 239)
			img.Pix[off+2] = uint8((x*5 + y*29) % 227)
			img.Pix[off+3] = 0xff
		}
	}
	return img
}

// jpegRoundTrip は指定品質でJPEG圧縮→デコードした画像を返します。
func jpegRoundTrip(t *testing.T, img image.Image, quality int) *image.RGBA {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("jpeg encode failed: %v", err)
	}
	decoded, err := jpeg.Decode(&buf)
	if err != nil {
		t.Fatalf("jpeg decode failed: %v", err)
	}
	out := image.NewRGBA(decoded.Bounds())
	draw.Draw(out, out.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	return out
}

// encodePNG は画像をPNGバイト列にエンコードします。
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestComputeELA_DecodeError(t *testing.T) {
	_, err := usecase.ComputeELA([]byte("definitely not an image"), usecase.DefaultELAQuality)
	if err == nil {
		t.Fatal("expected decode error, got nil")
	}
	if !errors.Is(err, domain.ErrImageDecode) {
		t.Errorf("expected ErrImageDecode, got %v", err)
	}
}

// TestComputeELA_Idempotent は同一バイト列への再実行でスコアが
// 変わらないことを検証します。
func TestComputeELA_Idempotent(t *testing.T) {
	data := encodePNG(t, jpegRoundTrip(t, textureImage(96, 96), 75))

	first, err := usecase.ComputeELA(data, usecase.DefaultELAQuality)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := usecase.ComputeELA(data, usecase.DefaultELAQuality)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if math.Abs(first.Score-second.Score) > 1e-12 {
		t.Errorf("expected identical scores, got %v and %v", first.Score, second.Score)
	}
	if first.Heatmap.Bounds().Dx() != 96 || first.Heatmap.Bounds().Dy() != 96 {
		t.Errorf("unexpected heatmap bounds: %v", first.Heatmap.Bounds())
	}
}

// TestComputeELA_PatchedScoresHigher は品質の異なるJPEG矩形を貼り付けた
// 画像が、一様に再圧縮された同一画像よりも高いスコアになることを
// 検証します。エンコーダー実装に依存するため、厳密な数値ではなく
// 順序のみを検証します。
func TestComputeELA_PatchedScoresHigher(t *testing.T) {
	base := jpegRoundTrip(t, textureImage(144, 144), 60)

	// 一様な圧縮履歴を持つ対照画像
	uniform := encodePNG(t, base)

	// 中央矩形だけ高品質JPEG由来のピクセルに差し替えた画像
	patched := image.NewRGBA(base.Bounds())
	draw.Draw(patched, patched.Bounds(), base, base.Bounds().Min, draw.Src)
	highQ := jpegRoundTrip(t, textureImage(144, 144), 95)
	patchRect := image.Rect(48, 48, 96, 96)
	draw.Draw(patched, patchRect, highQ, patchRect.Min, draw.Src)
	tampered := encodePNG(t, patched)

	uniformRes, err := usecase.ComputeELA(uniform, usecase.DefaultELAQuality)
	if err != nil {
		t.Fatalf("uniform run failed: %v", err)
	}
	patchedRes, err := usecase.ComputeELA(tampered, usecase.DefaultELAQuality)
	if err != nil {
		t.Fatalf("patched run failed: %v", err)
	}

	if patchedRes.Score <= uniformRes.Score {
		t.Errorf("expected patched score (%v) > uniform score (%v)",
			patchedRes.Score, uniformRes.Score)
	}
}

// TestComputeELA_QualityDefault は範囲外の品質指定がデフォルトに
// 丸められることを検証します。
func TestComputeELA_QualityDefault(t *testing.T) {
	data := encodePNG(t, textureImage(32, 32))

	explicit, err := usecase.ComputeELA(data, usecase.DefaultELAQuality)
	if err != nil {
		t.Fatalf("explicit quality failed: %v", err)
	}
	fallback, err := usecase.ComputeELA(data, 0)
	if err != nil {
		t.Fatalf("fallback quality failed: %v", err)
	}
	if math.Abs(explicit.Score-fallback.Score) > 1e-12 {
		t.Errorf("expected default quality to match explicit 90, got %v and %v",
			fallback.Score, explicit.Score)
	}
}

func TestRenderHeatmapPNG(t *testing.T) {
	res, err := usecase.ComputeELA(encodePNG(t, textureImage(64, 64)), usecase.DefaultELAQuality)
	if err != nil {
		t.Fatalf("ComputeELA failed: %v", err)
	}
	out, err := usecase.RenderHeatmapPNG(res.Heatmap)
	if err != nil {
		t.Fatalf("RenderHeatmapPNG failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 64 {
		t.Errorf("unexpected width: %d", decoded.Bounds().Dx())
	}
}

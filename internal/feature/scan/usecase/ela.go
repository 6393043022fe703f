// Package usecase はscanフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	// ELAの入力としてJPEG/PNG/GIFのデコードを登録します。
	_ "image/gif"

	xdraw "golang.org/x/image/draw"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain"
)

const (
	// DefaultELAQuality はELA再圧縮パスのJPEG品質（0~100）です。
	DefaultELAQuality = 90

	// maxHeatmapDim はレスポンスに載せるヒートマップPNGの最大辺長です。
	maxHeatmapDim = 1024
)

// ELAResult はError Level Analysisの出力です。
type ELAResult struct {
	// Heatmap は正規化済みの差分画像です。明るい領域ほど
	// 圧縮履歴が周囲と食い違っていることを示します。
	Heatmap *image.RGBA

	// Score は差分画像の分散を100で割ったヒューリスティックな
	// 異常度です。確率ではなく、通常は[0,1]近辺に収まります。
	Score float64
}

// ComputeELA は画像バイト列に対してError Level Analysisを実行します。
//
// 入力を固定品質でJPEG再圧縮し、元画像とのピクセル差分を取り、
// 最大差分が最大輝度になるよう線形に引き伸ばします。局所的に
// 編集された領域は残りの領域と異なる圧縮残差を示すため、
// 引き伸ばした差分の分散が改ざんの代理指標になります。
// 再圧縮はインメモリのスクラッチバッファで行い、一時ファイルは
// 作成しません。
func ComputeELA(data []byte, quality int) (*ELAResult, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultELAQuality
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}

	// 再保存シミュレーション（スクラッチバッファへのラウンドトリップ）
	var scratch bytes.Buffer
	if err := jpeg.Encode(&scratch, src, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("ela re-encode failed: %w", err)
	}
	resaved, err := jpeg.Decode(&scratch)
	if err != nil {
		return nil, fmt.Errorf("ela re-decode failed: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrImageDecode)
	}

	// チャンネルごとの絶対差分と最大差分
	diffs := make([]float64, 0, w*h*3)
	maxDiff := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r1, g1, b1 := rgb8(src.At(x, y).RGBA())
			r2, g2, b2 := rgb8(resaved.At(x-bounds.Min.X+resaved.Bounds().Min.X, y-bounds.Min.Y+resaved.Bounds().Min.Y).RGBA())
			for _, d := range [3]float64{absDiff(r1, r2), absDiff(g1, g2), absDiff(b1, b2)} {
				if d > maxDiff {
					maxDiff = d
				}
				diffs = append(diffs, d)
			}
		}
	}
	if maxDiff == 0 {
		// ゼロ除算回避。差分が完全にゼロでもスケールは定義される
		maxDiff = 1
	}
	scale := 255.0 / maxDiff

	// 差分の引き伸ばしとヒートマップ生成。分散はストリーミングで計算
	heatmap := image.NewRGBA(image.Rect(0, 0, w, h))
	sum, sumSq := 0.0, 0.0
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var px [3]uint8
			for c := 0; c < 3; c++ {
				v := clamp(diffs[i]*scale, 0, 255)
				sum += v
				sumSq += v * v
				px[c] = uint8(v)
				i++
			}
			off := heatmap.PixOffset(x, y)
			heatmap.Pix[off] = px[0]
			heatmap.Pix[off+1] = px[1]
			heatmap.Pix[off+2] = px[2]
			heatmap.Pix[off+3] = 0xff
		}
	}

	n := float64(len(diffs))
	m := sum / n
	v := sumSq/n - m*m

	return &ELAResult{Heatmap: heatmap, Score: v / 100.0}, nil
}

// RenderHeatmapPNG はヒートマップをPNGとしてエンコードします。
// 最大辺がmaxHeatmapDimを超える場合は縮小します。
func RenderHeatmapPNG(img image.Image) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxHeatmapDim || h > maxHeatmapDim {
		ratio := float64(maxHeatmapDim) / float64(max(w, h))
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*ratio), int(float64(h)*ratio)))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("heatmap encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// rgb8 はRGBA()の16bit値を8bitチャンネルに落とします。
func rgb8(r, g, b, _ uint32) (float64, float64, float64) {
	return float64(r >> 8), float64(g >> 8), float64(b >> 8)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// Package entity はscanフィーチャーのドメインモデルを定義します。
package entity

// Point は画像座標系における1点を表します。
type Point struct {
	X float64
	Y float64
}

// OCRToken はOCRコラボレーターが検出した1単語を表します。
// BoundingBoxは左上起点・時計回りの四角形で、通常は軸平行です。
type OCRToken struct {
	Text        string
	Confidence  float64 // 信頼度スコア（0.0 ~ 1.0）
	BoundingBox [4]Point
}

// LeftX はバウンディングボックスの左端X座標を返します。
func (t OCRToken) LeftX() float64 {
	return t.BoundingBox[0].X
}

// CenterY はバウンディングボックスの垂直中心を返します。
func (t OCRToken) CenterY() float64 {
	sum := 0.0
	for _, p := range t.BoundingBox {
		sum += p.Y
	}
	return sum / 4.0
}

package usecase

import (
	"fmt"
	"math"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
)

// 分類しきい値（パーセンテージに対して適用、境界は下側に含む）
const (
	thresholdSuspicious   = 30.0 // これ以下はAuthentic
	thresholdHighlyForged = 70.0 // これ以下はSuspicious
)

// FusionWeights は各シグナルの信頼度ウェイトです。合計は1でなければ
// なりません。ウェイトは設定値として注入され、ロジックの再コンパイル
// なしに変更できます。
type FusionWeights struct {
	ELA    float64
	Layout float64
	DL     float64
}

// Validate はウェイトが非負で合計1であることを検証します。
// 起動時に呼び出されます。
func (w FusionWeights) Validate() error {
	if w.ELA < 0 || w.Layout < 0 || w.DL < 0 {
		return fmt.Errorf("fusion weights must be non-negative: %+v", w)
	}
	sum := w.ELA + w.Layout + w.DL
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("fusion weights must sum to 1, got %.6f", sum)
	}
	return nil
}

// LegacyWeights はDLスコアが欠落しているときの2シグナル構成です。
// ピクセルレベルのELAを構造シグナルより重く扱います。
func LegacyWeights() FusionWeights {
	return FusionWeights{ELA: 0.6, Layout: 0.4}
}

// DefaultThreeSignalWeights は3シグナル構成のデフォルトです。
// ピクセルレベルのシグナル（ELA・DL）を構造のみのレイアウト
// シグナルより重く信頼します。
func DefaultThreeSignalWeights() FusionWeights {
	return FusionWeights{ELA: 0.45, Layout: 0.25, DL: 0.30}
}

// Fuser は独立した異常スコアを1つの確信度パーセンテージと
// 判定ラベルに融合します。
type Fuser struct {
	twoSignal   FusionWeights
	threeSignal FusionWeights
}

// NewFuser は2シグナル・3シグナルそれぞれのウェイトでFuserを生成します。
// どちらのウェイトも合計1でなければならず、2シグナル構成のDLウェイトは
// 0でなければなりません。
func NewFuser(twoSignal, threeSignal FusionWeights) (*Fuser, error) {
	if err := twoSignal.Validate(); err != nil {
		return nil, fmt.Errorf("two-signal weights: %w", err)
	}
	if twoSignal.DL != 0 {
		return nil, fmt.Errorf("two-signal weights must not weight the DL signal: %+v", twoSignal)
	}
	if err := threeSignal.Validate(); err != nil {
		return nil, fmt.Errorf("three-signal weights: %w", err)
	}
	return &Fuser{twoSignal: twoSignal, threeSignal: threeSignal}, nil
}

// Fuse はELA・レイアウト・（任意の）DLスコアを融合し、小数第2位に
// 丸めたパーセンテージと判定ラベルを返します。
//
// dlがnilの場合はシグナル欠落として2シグナルウェイトに切り替わり
// ます（ゼロとしては扱いません）。dlが非nilの場合は3シグナル
// ウェイトを使用します。
func (f *Fuser) Fuse(ela, layout float64, dl *float64) (float64, entity.Classification) {
	var raw float64
	if dl == nil {
		raw = ela*f.twoSignal.ELA + layout*f.twoSignal.Layout
	} else {
		raw = ela*f.threeSignal.ELA + layout*f.threeSignal.Layout + *dl*f.threeSignal.DL
	}

	pct := round2(raw * 100)
	return pct, classify(pct)
}

// classify はパーセンテージを判定ラベルに写像します。
func classify(pct float64) entity.Classification {
	switch {
	case pct > thresholdHighlyForged:
		return entity.ClassificationHighlyForged
	case pct > thresholdSuspicious:
		return entity.ClassificationSuspicious
	default:
		return entity.ClassificationAuthentic
	}
}

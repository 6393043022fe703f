package usecase_test

import (
	"math"
	"testing"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
)

func newTestFuser(t *testing.T) *usecase.Fuser {
	t.Helper()

	f, err := usecase.NewFuser(usecase.LegacyWeights(), usecase.DefaultThreeSignalWeights())
	if err != nil {
		t.Fatalf("NewFuser failed: %v", err)
	}
	return f
}

func fptr(v float64) *float64 { return &v }

func TestNewFuser_Validation(t *testing.T) {
	tests := []struct {
		name        string
		twoSignal   usecase.FusionWeights
		threeSignal usecase.FusionWeights
		wantErr     bool
	}{
		{
			name:        "valid defaults",
			twoSignal:   usecase.LegacyWeights(),
			threeSignal: usecase.DefaultThreeSignalWeights(),
		},
		{
			name:        "two-signal weights not summing to 1",
			twoSignal:   usecase.FusionWeights{ELA: 0.6, Layout: 0.3},
			threeSignal: usecase.DefaultThreeSignalWeights(),
			wantErr:     true,
		},
		{
			name:        "two-signal weights carrying DL weight",
			twoSignal:   usecase.FusionWeights{ELA: 0.5, Layout: 0.3, DL: 0.2},
			threeSignal: usecase.DefaultThreeSignalWeights(),
			wantErr:     true,
		},
		{
			name:        "negative weight",
			twoSignal:   usecase.LegacyWeights(),
			threeSignal: usecase.FusionWeights{ELA: 1.2, Layout: -0.5, DL: 0.3},
			wantErr:     true,
		},
		{
			name:        "three-signal weights not summing to 1",
			twoSignal:   usecase.LegacyWeights(),
			threeSignal: usecase.FusionWeights{ELA: 0.5, Layout: 0.3, DL: 0.3},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := usecase.NewFuser(tt.twoSignal, tt.threeSignal)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestFuser_TwoSignal はDL欠落時のレガシー2シグナル動作を検証します。
func TestFuser_TwoSignal(t *testing.T) {
	f := newTestFuser(t)

	tests := []struct {
		name    string
		ela     float64
		layout  float64
		wantPct float64
		wantCls entity.Classification
	}{
		{name: "all zero", ela: 0.0, layout: 0.0, wantPct: 0.0, wantCls: entity.ClassificationAuthentic},
		{name: "all one", ela: 1.0, layout: 1.0, wantPct: 100.0, wantCls: entity.ClassificationHighlyForged},
		{name: "midpoint", ela: 0.5, layout: 0.5, wantPct: 50.0, wantCls: entity.ClassificationSuspicious},
		{name: "legacy weighting", ela: 1.0, layout: 0.0, wantPct: 60.0, wantCls: entity.ClassificationSuspicious},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, cls := f.Fuse(tt.ela, tt.layout, nil)
			if math.Abs(pct-tt.wantPct) > 1e-9 {
				t.Errorf("expected %.2f, got %.2f", tt.wantPct, pct)
			}
			if cls != tt.wantCls {
				t.Errorf("expected %q, got %q", tt.wantCls, cls)
			}
		})
	}
}

// TestFuser_ClassificationBoundaries は30.0/70.0の境界が正確に
// 判定されることを検証します。
func TestFuser_ClassificationBoundaries(t *testing.T) {
	f := newTestFuser(t)

	tests := []struct {
		name    string
		ela     float64
		layout  float64
		wantPct float64
		wantCls entity.Classification
	}{
		// 0.5*0.6 = 0.30 → ちょうど30.0はAuthentic
		{name: "exactly 30.0", ela: 0.5, layout: 0.0, wantPct: 30.0, wantCls: entity.ClassificationAuthentic},
		// 0.5001*0.6 = 0.30006 → 30.01に丸めてSuspicious
		{name: "just above 30", ela: 0.5001, layout: 0.0, wantPct: 30.01, wantCls: entity.ClassificationSuspicious},
		// 1.0*0.6 + 0.25*0.4 = 0.70 → ちょうど70.0はSuspicious
		{name: "exactly 70.0", ela: 1.0, layout: 0.25, wantPct: 70.0, wantCls: entity.ClassificationSuspicious},
		// 1.0*0.6 + 0.2503*0.4 = 0.70012 → 70.01に丸めてHighly Forged
		{name: "just above 70", ela: 1.0, layout: 0.2503, wantPct: 70.01, wantCls: entity.ClassificationHighlyForged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, cls := f.Fuse(tt.ela, tt.layout, nil)
			if math.Abs(pct-tt.wantPct) > 1e-9 {
				t.Errorf("expected %.2f, got %.2f", tt.wantPct, pct)
			}
			if cls != tt.wantCls {
				t.Errorf("expected %q, got %q", tt.wantCls, cls)
			}
		})
	}
}

// TestFuser_ThreeSignal はDLスコアが存在するときに3シグナルの
// ウェイトが使われることを検証します。
func TestFuser_ThreeSignal(t *testing.T) {
	f := newTestFuser(t)

	tests := []struct {
		name    string
		ela     float64
		layout  float64
		dl      *float64
		wantPct float64
	}{
		{name: "all one", ela: 1.0, layout: 1.0, dl: fptr(1.0), wantPct: 100.0},
		// 1.0*0.45 + 0*0.25 + 0*0.30 = 45
		{name: "ela only", ela: 1.0, layout: 0.0, dl: fptr(0.0), wantPct: 45.0},
		// 0*0.45 + 0*0.25 + 1.0*0.30 = 30
		{name: "dl only", ela: 0.0, layout: 0.0, dl: fptr(1.0), wantPct: 30.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, _ := f.Fuse(tt.ela, tt.layout, tt.dl)
			if math.Abs(pct-tt.wantPct) > 1e-9 {
				t.Errorf("expected %.2f, got %.2f", tt.wantPct, pct)
			}
		})
	}
}

package config

import (
	"testing"
	"time"
)

// TestLoad_Defaults は環境変数未設定時にデフォルト値が使われることを検証します。
func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_ADDR", "UPLOAD_DIR", "OCR_ENGINE", "OCR_LANGUAGE",
		"DLSERVE_URL", "QDRANT_ADDR", "SCAN_CACHE_TTL",
		"TWO_SIGNAL_ELA_WEIGHT", "TWO_SIGNAL_LAYOUT_WEIGHT",
		"ELA_WEIGHT", "LAYOUT_WEIGHT", "DL_WEIGHT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ServerAddr != DefaultServerAddr {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, DefaultServerAddr)
	}
	if cfg.OCREngine != DefaultOCREngine {
		t.Errorf("OCREngine = %q, want %q", cfg.OCREngine, DefaultOCREngine)
	}
	if cfg.DLServeURL != "" {
		t.Errorf("DLServeURL = %q, want empty", cfg.DLServeURL)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", cfg.CacheTTL, DefaultCacheTTL)
	}
	if cfg.ELAWeight != DefaultELAWeight {
		t.Errorf("ELAWeight = %v, want %v", cfg.ELAWeight, DefaultELAWeight)
	}
	if cfg.TwoSignalELAWeight != DefaultTwoSignalELAWeight {
		t.Errorf("TwoSignalELAWeight = %v, want %v", cfg.TwoSignalELAWeight, DefaultTwoSignalELAWeight)
	}
}

// TestLoad_Overrides は環境変数がデフォルトを上書きすることを検証します。
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("OCR_ENGINE", "vision")
	t.Setenv("DLSERVE_URL", "http://dlserve:8501")
	t.Setenv("QDRANT_ADDR", "qdrant:6334")
	t.Setenv("SCAN_CACHE_TTL", "5m")
	t.Setenv("ELA_WEIGHT", "0.5")
	t.Setenv("LAYOUT_WEIGHT", "0.2")
	t.Setenv("DL_WEIGHT", "0.3")

	cfg := Load()

	if cfg.ServerAddr != ":9090" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, ":9090")
	}
	if cfg.OCREngine != "vision" {
		t.Errorf("OCREngine = %q, want %q", cfg.OCREngine, "vision")
	}
	if cfg.DLServeURL != "http://dlserve:8501" {
		t.Errorf("DLServeURL = %q, want %q", cfg.DLServeURL, "http://dlserve:8501")
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.ELAWeight != 0.5 || cfg.LayoutWeight != 0.2 || cfg.DLWeight != 0.3 {
		t.Errorf("weights = %v/%v/%v, want 0.5/0.2/0.3", cfg.ELAWeight, cfg.LayoutWeight, cfg.DLWeight)
	}
}

// TestGetFloat_Malformed は不正な数値がデフォルトにフォールバックすることを検証します。
func TestGetFloat_Malformed(t *testing.T) {
	t.Setenv("ELA_WEIGHT", "not-a-number")

	if got := getFloat("ELA_WEIGHT", 0.45); got != 0.45 {
		t.Errorf("getFloat = %v, want 0.45", got)
	}
}

// TestGetDuration_Malformed は不正なデュレーションがデフォルトにフォールバックすることを検証します。
func TestGetDuration_Malformed(t *testing.T) {
	t.Setenv("SCAN_CACHE_TTL", "yesterday")

	if got := getDuration("SCAN_CACHE_TTL", time.Hour); got != time.Hour {
		t.Errorf("getDuration = %v, want 1h", got)
	}
}

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// デフォルト値。環境変数で上書き可能です。
const (
	DefaultServerAddr  = ":8080"
	DefaultUploadDir   = "uploads"
	DefaultOCREngine   = "tesseract"
	DefaultOCRLanguage = "eng"
	DefaultCacheTTL    = 24 * time.Hour

	// 2シグナル融合ウェイト（DLサービスが無効なとき）
	DefaultTwoSignalELAWeight    = 0.6
	DefaultTwoSignalLayoutWeight = 0.4

	// 3シグナル融合ウェイト
	DefaultELAWeight    = 0.45
	DefaultLayoutWeight = 0.25
	DefaultDLWeight     = 0.30
)

// Config holds all runtime configuration for the analysis server.
type Config struct {
	ServerAddr  string // Address the HTTP server listens on
	UploadDir   string // Directory for temporary upload files
	OCREngine   string // "tesseract" or "vision"
	OCRLanguage string // Tesseract language code (e.g. "eng")
	DLServeURL  string // Base URL of the deep-learning inference service ("" disables it)
	QdrantAddr  string // Qdrant gRPC address ("" disables the compliance copilot)
	CacheTTL    time.Duration

	// 融合ウェイト。再コンパイルなしに調整できるよう環境変数から読み込み、
	// 起動時にFuserが合計1であることを検証します。
	TwoSignalELAWeight    float64
	TwoSignalLayoutWeight float64
	ELAWeight             float64
	LayoutWeight          float64
	DLWeight              float64
}

// Load reads configuration from the environment. A .env file is loaded first
// when present; missing files are not an error so container deployments can
// rely on real environment variables.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	return Config{
		ServerAddr:  getEnv("SERVER_ADDR", DefaultServerAddr),
		UploadDir:   getEnv("UPLOAD_DIR", DefaultUploadDir),
		OCREngine:   getEnv("OCR_ENGINE", DefaultOCREngine),
		OCRLanguage: getEnv("OCR_LANGUAGE", DefaultOCRLanguage),
		DLServeURL:  os.Getenv("DLSERVE_URL"),
		QdrantAddr:  os.Getenv("QDRANT_ADDR"),
		CacheTTL:    getDuration("SCAN_CACHE_TTL", DefaultCacheTTL),

		TwoSignalELAWeight:    getFloat("TWO_SIGNAL_ELA_WEIGHT", DefaultTwoSignalELAWeight),
		TwoSignalLayoutWeight: getFloat("TWO_SIGNAL_LAYOUT_WEIGHT", DefaultTwoSignalLayoutWeight),
		ELAWeight:             getFloat("ELA_WEIGHT", DefaultELAWeight),
		LayoutWeight:          getFloat("LAYOUT_WEIGHT", DefaultLayoutWeight),
		DLWeight:              getFloat("DL_WEIGHT", DefaultDLWeight),
	}
}

// getEnv returns the value of the environment variable or a fallback.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getFloat parses a float64 environment variable, falling back on
// missing or malformed values.
func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid float value, using default",
			"key", key, "value", v, "default", fmt.Sprintf("%g", fallback))
		return fallback
	}
	return f
}

// getDuration parses a time.Duration environment variable (e.g. "5m", "1h"),
// falling back on missing or malformed values.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration value, using default",
			"key", key, "value", v, "default", fallback.String())
		return fallback
	}
	return d
}

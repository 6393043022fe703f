package main

import (
	"context"
	"log"
	"os"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/app/router"
	authadapters "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/adapters"
	authhandler "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/transport/handler"
	authusecase "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/usecase"
	copilotgemini "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/adapters/gemini"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/adapters/qdrantstore"
	copilothandler "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/transport/handler"
	copilotusecase "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/usecase"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/adapters/dlserve"
	scangemini "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/adapters/gemini"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/adapters/gormstore"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/adapters/pdfmeta"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/adapters/tesseract"
	scanvision "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/adapters/vision"
	scanhandler "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/transport/handler"
	scanusecase "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/cache"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/config"
	platformdb "github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/db"
	platformhttp "github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/http"
	jwtmw "github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/jwt"
	platformredis "github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/redis"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/shared/ratelimiter"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// db
	db := platformdb.OpenDB(platformdb.LoadConfigFromEnv())

	// Redis
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// アップロード先ディレクトリ
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal("failed to create upload directory:", err)
	}

	// Repository
	userRepo := authadapters.NewUserGorm(db)
	companyRepo := authadapters.NewCompanyGorm(db)
	recordStore := gormstore.NewScanRecordStore(db)

	// OCRエンジン
	var ocr scanusecase.TextReader
	switch cfg.OCREngine {
	case "vision":
		v, err := scanvision.NewVisionTextReader(ctx)
		if err != nil {
			log.Fatal("failed to initialize Vision OCR client:", err)
		}
		defer v.Close()
		ocr = v
	default:
		ocr = tesseract.NewTesseractTextReader(cfg.OCRLanguage)
	}

	// DL推論サービス（任意）
	var detector scanusecase.TamperDetector
	if cfg.DLServeURL != "" {
		limiter := ratelimiter.NewRateLimiter(30, time.Minute) // 1分に30回まで
		detector = dlserve.NewClient(cfg.DLServeURL, platformhttp.NewHTTPClient(60*time.Second), limiter)
	} else {
		log.Println("[WARN] DLSERVE_URL is not set. Running with ELA and layout signals only.")
	}

	// Geminiエンティティ抽出（任意）
	var extractor scanusecase.EntityExtractor
	if ext, err := scangemini.NewGeminiEntityExtractor(ctx); err != nil {
		log.Println("[WARN] Gemini unavailable. Running without entity extraction:", err)
	} else {
		extractor = ext
	}

	// 融合ウェイトは起動時に検証する
	fuser, err := scanusecase.NewFuser(
		scanusecase.FusionWeights{ELA: cfg.TwoSignalELAWeight, Layout: cfg.TwoSignalLayoutWeight},
		scanusecase.FusionWeights{ELA: cfg.ELAWeight, Layout: cfg.LayoutWeight, DL: cfg.DLWeight},
	)
	if err != nil {
		log.Fatal("invalid fusion weights:", err)
	}
	validator := scanusecase.NewConsistencyValidator(scanusecase.DefaultSimilarityThreshold)

	scanUC := scanusecase.NewScanUsecase(
		ocr, detector, extractor, pdfmeta.NewInspector(), recordStore,
		fuser, validator, scanusecase.DefaultELAQuality,
	)

	// Redisキャッシュでラップ
	cachedScanUC := cache.NewCachingAnalyzer(rdb, cfg.CacheTTL, scanUC, "scans")

	// コンプライアンスコパイロット（Gemini + Qdrantが揃ったときのみ有効）
	var copilotUC *copilotusecase.CopilotUsecase
	if cfg.QdrantAddr == "" {
		log.Println("[WARN] QDRANT_ADDR is not set. Copilot runs in degraded mode.")
		copilotUC = copilotusecase.NewCopilotUsecase(nil, nil, nil)
	} else if gem, err := copilotgemini.NewGeminiClient(ctx); err != nil {
		log.Println("[WARN] Gemini unavailable. Copilot runs in degraded mode:", err)
		copilotUC = copilotusecase.NewCopilotUsecase(nil, nil, nil)
	} else if store, err := qdrantstore.NewStore(cfg.QdrantAddr, qdrantstore.DefaultCollection, qdrantstore.DefaultVectorSize); err != nil {
		log.Println("[WARN] Qdrant unavailable. Copilot runs in degraded mode:", err)
		copilotUC = copilotusecase.NewCopilotUsecase(nil, nil, nil)
	} else {
		copilotUC = copilotusecase.NewCopilotUsecase(gem, gem, store)
	}

	// Usecase
	jwtGen := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), time.Hour)
	authUC := authusecase.NewAuthUsecase(userRepo, companyRepo, jwtGen)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	scanH := scanhandler.NewScanHandler(cachedScanUC, cfg.UploadDir)
	copilotH := copilothandler.NewCopilotHandler(copilotUC)

	// ルータ生成
	router := router.NewRouter(authH, scanH, copilotH, authUC)

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := router.Run(cfg.ServerAddr); err != nil {
		log.Fatal(err)
	}
}

package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authentity "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/domain/entity"
	scanadapters "github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/adapters/gormstore"
)

// DefaultSQLitePath はDATABASE_URL未設定時のローカルDBファイルです。
const DefaultSQLitePath = "fraud_detection.db"

// retryInterval はDB接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Config はデータベース接続設定を保持します。
type Config struct {
	// URL はDATABASE_URLの値です。postgres://で始まる場合はPostgreSQL、
	// それ以外（空を含む）はSQLiteファイルパスとして扱われます。
	URL string

	// RunMigrations が真のとき起動時にAutoMigrateを実行します。
	RunMigrations bool
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		URL:           os.Getenv("DATABASE_URL"),
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// IsPostgres はDSNがPostgreSQL接続文字列かどうかを判定します。
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry は接続が成功するかタイムアウトするまでopenerを
// リトライします。起動時にDBコンテナの立ち上がりを待つためのものです。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %v: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB は設定に従ってデータベース接続を開きます。PostgreSQLは
// リトライ付きで接続し、SQLiteは即時に開きます。TranslateErrorを
// 有効にし、重複キー等のドライバーエラーをgormの共通エラーへ
// 正規化します。
func OpenDB(cfg Config) *gorm.DB {
	gcfg := &gorm.Config{TranslateError: true}

	var (
		db  *gorm.DB
		err error
	)

	if IsPostgres(cfg.URL) {
		db, err = ConnectWithRetry(cfg.URL, 60*time.Second, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(gpostgres.Open(dsn), gcfg)
		})
		if err != nil {
			log.Fatalf("%v", err)
		}
	} else {
		path := cfg.URL
		if path == "" {
			path = DefaultSQLitePath
		}
		db, err = gorm.Open(gsqlite.Open(path), gcfg)
		if err != nil {
			log.Fatalf("failed to open sqlite db: %v", err)
		}
	}

	if cfg.RunMigrations {
		// マイグレーション（AdminUser, ClientCompany, ScanRecord）
		if err := db.AutoMigrate(
			&authentity.AdminUser{},
			&authentity.ClientCompany{},
			&scanadapters.ScanRecordModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}

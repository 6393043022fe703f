package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/adapters/gemini"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/adapters/qdrantstore"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/usecase"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/platform/config"
)

// ポリシー文書としてインジェスト対象になる拡張子
var policyExtensions = map[string]bool{
	".md":  true,
	".txt": true,
}

func main() {
	dir := "policies"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	cfg := config.Load()
	if cfg.QdrantAddr == "" {
		log.Fatal("QDRANT_ADDR is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	gem, err := gemini.NewGeminiClient(ctx)
	if err != nil {
		log.Fatal("failed to initialize Gemini client:", err)
	}
	store, err := qdrantstore.NewStore(cfg.QdrantAddr, qdrantstore.DefaultCollection, qdrantstore.DefaultVectorSize)
	if err != nil {
		log.Fatal("failed to connect to Qdrant:", err)
	}
	uc := usecase.NewCopilotUsecase(gem, gem, store)

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatal("failed to read policy directory:", err)
	}

	total := 0
	for _, e := range entries {
		if e.IsDir() || !policyExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal("failed to read policy document:", err)
		}

		count, err := uc.Ingest(ctx, string(data), e.Name())
		if err != nil {
			log.Fatalf("failed to ingest %s: %v", e.Name(), err)
		}
		log.Printf("ingested %s (%d chunks)", e.Name(), count)
		total += count
	}

	if total == 0 {
		log.Fatal("no policy documents found in ", dir)
	}
	log.Println("ingest ok")
}

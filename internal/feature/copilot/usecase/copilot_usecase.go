// Package usecase はcopilotフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/domain/entity"
)

const (
	// DefaultTopK は回答生成に使用する検索断片数です。
	DefaultTopK = 3

	// DefaultChunkSize は取り込み時の断片の最大文字数です。
	DefaultChunkSize = 1000

	// DefaultChunkOverlap は隣接断片間の重複文字数です。文脈の分断を
	// 緩和します。
	DefaultChunkOverlap = 100

	// EmptyKnowledgeBaseAnswer はナレッジベース未構築時の固定回答です。
	EmptyKnowledgeBaseAnswer = "The compliance knowledge base has not been initialized yet. Please ingest policy documents first."
)

// ErrEmptyQuestion は空の質問に対して返されます。
var ErrEmptyQuestion = errors.New("question is empty")

// Embedder はテキストを埋め込みベクトルに変換するコラボレーターです。
// Goの慣例に従い、インターフェースはコンシューマー（usecase）側で定義します。
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// AnswerGenerator は検索済みの文脈から回答を生成するコラボレーターです。
type AnswerGenerator interface {
	Generate(ctx context.Context, question string, contexts []entity.PolicyChunk) (string, error)
}

// ChunkStore はポリシー断片のベクトルストアを抽象化します。
type ChunkStore interface {
	// Upsert は断片と埋め込みを保存します。両スライスは同じ長さです。
	Upsert(ctx context.Context, chunks []entity.PolicyChunk, vectors [][]float32) error

	// Search はクエリベクトルに類似する断片を上位limit件返します。
	Search(ctx context.Context, vector []float32, limit int) ([]entity.PolicyChunk, error)
}

// CopilotUsecase はコンプライアンス文書に対するRAGパイプラインを実装します。
type CopilotUsecase struct {
	embedder  Embedder
	generator AnswerGenerator
	store     ChunkStore

	topK         int
	chunkSize    int
	chunkOverlap int
}

// NewCopilotUsecase はCopilotUsecaseの新しいインスタンスを生成します。
func NewCopilotUsecase(embedder Embedder, generator AnswerGenerator, store ChunkStore) *CopilotUsecase {
	return &CopilotUsecase{
		embedder:     embedder,
		generator:    generator,
		store:        store,
		topK:         DefaultTopK,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
}

// Ask は質問を埋め込み、類似断片を検索して回答を生成します。
// ナレッジベースが空の場合はエラーではなく固定回答を返します。
func (u *CopilotUsecase) Ask(ctx context.Context, question string) (*entity.ChatAnswer, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if u.embedder == nil || u.generator == nil || u.store == nil {
		slog.Warn("copilot collaborators are not configured, returning fixed answer")
		return &entity.ChatAnswer{Answer: EmptyKnowledgeBaseAnswer}, nil
	}

	vector, err := u.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	chunks, err := u.store.Search(ctx, vector, u.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge base: %w", err)
	}
	if len(chunks) == 0 {
		slog.Warn("copilot asked before any policy documents were ingested")
		return &entity.ChatAnswer{Answer: EmptyKnowledgeBaseAnswer}, nil
	}

	answer, err := u.generator.Generate(ctx, question, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	sources := make([]string, 0, len(chunks))
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		if c.Source != "" && !seen[c.Source] {
			seen[c.Source] = true
			sources = append(sources, c.Source)
		}
	}

	return &entity.ChatAnswer{Answer: answer, Sources: sources}, nil
}

// Ingest は文書を断片に分割し、埋め込みと共にベクトルストアへ保存します。
// 取り込んだ断片数を返します。
func (u *CopilotUsecase) Ingest(ctx context.Context, text, source string) (int, error) {
	if u.embedder == nil || u.store == nil {
		return 0, errors.New("vector store is not configured")
	}
	pieces := splitChunks(text, u.chunkSize, u.chunkOverlap)
	if len(pieces) == 0 {
		return 0, errors.New("document is empty")
	}

	chunks := make([]entity.PolicyChunk, 0, len(pieces))
	vectors := make([][]float32, 0, len(pieces))
	for _, piece := range pieces {
		vector, err := u.embedder.Embed(ctx, piece)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk: %w", err)
		}
		chunks = append(chunks, entity.PolicyChunk{
			ID:     uuid.NewString(),
			Text:   piece,
			Source: source,
		})
		vectors = append(vectors, vector)
	}

	if err := u.store.Upsert(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	slog.Info("policy document ingested", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// splitChunks はテキストを固定長・固定重複で分割します。
// ルーン単位で切るため、マルチバイト文字を破壊しません。
func splitChunks(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/domain/entity"
)

// mockEmbedder はEmbedderインターフェースのモック実装です。
type mockEmbedder struct {
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)
	Calls     int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.Calls++
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// mockAnswerGenerator はAnswerGeneratorインターフェースのモック実装です。
type mockAnswerGenerator struct {
	GenerateFunc func(ctx context.Context, question string, contexts []entity.PolicyChunk) (string, error)
}

func (m *mockAnswerGenerator) Generate(ctx context.Context, question string, contexts []entity.PolicyChunk) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, question, contexts)
	}
	return "generated answer", nil
}

// mockChunkStore はChunkStoreインターフェースのモック実装です。
type mockChunkStore struct {
	UpsertFunc func(ctx context.Context, chunks []entity.PolicyChunk, vectors [][]float32) error
	SearchFunc func(ctx context.Context, vector []float32, limit int) ([]entity.PolicyChunk, error)
}

func (m *mockChunkStore) Upsert(ctx context.Context, chunks []entity.PolicyChunk, vectors [][]float32) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, chunks, vectors)
	}
	return nil
}

func (m *mockChunkStore) Search(ctx context.Context, vector []float32, limit int) ([]entity.PolicyChunk, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, vector, limit)
	}
	return nil, nil
}

func TestCopilotUsecase_Ask(t *testing.T) {
	ctx := context.Background()

	t.Run("answers with deduplicated sources", func(t *testing.T) {
		store := &mockChunkStore{
			SearchFunc: func(ctx context.Context, vector []float32, limit int) ([]entity.PolicyChunk, error) {
				if limit != DefaultTopK {
					t.Errorf("expected top-%d search, got %d", DefaultTopK, limit)
				}
				return []entity.PolicyChunk{
					{Text: "KYC records must be retained for 5 years.", Source: "aml_policy.md"},
					{Text: "Retention applies to all identity documents.", Source: "aml_policy.md"},
					{Text: "Suspicious scans require manual review.", Source: "review_sop.md"},
				}, nil
			},
		}
		gen := &mockAnswerGenerator{
			GenerateFunc: func(ctx context.Context, question string, contexts []entity.PolicyChunk) (string, error) {
				if len(contexts) != 3 {
					t.Errorf("expected 3 context chunks, got %d", len(contexts))
				}
				return "Records are retained for 5 years.", nil
			},
		}

		uc := NewCopilotUsecase(&mockEmbedder{}, gen, store)
		answer, err := uc.Ask(ctx, "How long are KYC records retained?")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if answer.Answer != "Records are retained for 5 years." {
			t.Errorf("unexpected answer: %q", answer.Answer)
		}
		want := []string{"aml_policy.md", "review_sop.md"}
		if len(answer.Sources) != len(want) {
			t.Fatalf("expected sources %v, got %v", want, answer.Sources)
		}
		for i, s := range want {
			if answer.Sources[i] != s {
				t.Errorf("expected source %q at %d, got %q", s, i, answer.Sources[i])
			}
		}
	})

	t.Run("empty knowledge base returns fixed answer", func(t *testing.T) {
		uc := NewCopilotUsecase(&mockEmbedder{}, &mockAnswerGenerator{}, &mockChunkStore{})
		answer, err := uc.Ask(ctx, "Anything?")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if answer.Answer != EmptyKnowledgeBaseAnswer {
			t.Errorf("expected fixed empty-base answer, got %q", answer.Answer)
		}
		if len(answer.Sources) != 0 {
			t.Errorf("expected no sources, got %v", answer.Sources)
		}
	})

	t.Run("empty question is rejected", func(t *testing.T) {
		uc := NewCopilotUsecase(&mockEmbedder{}, &mockAnswerGenerator{}, &mockChunkStore{})
		if _, err := uc.Ask(ctx, ""); !errors.Is(err, ErrEmptyQuestion) {
			t.Errorf("expected ErrEmptyQuestion, got %v", err)
		}
	})

	t.Run("embedding failure propagates", func(t *testing.T) {
		embedder := &mockEmbedder{
			EmbedFunc: func(ctx context.Context, text string) ([]float32, error) {
				return nil, errors.New("embedding api down")
			},
		}
		uc := NewCopilotUsecase(embedder, &mockAnswerGenerator{}, &mockChunkStore{})

		if _, err := uc.Ask(ctx, "question"); err == nil {
			t.Error("expected error from embedder")
		}
	})
}

func TestCopilotUsecase_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("chunks and stores a document", func(t *testing.T) {
		var stored []entity.PolicyChunk
		var vectors [][]float32
		store := &mockChunkStore{
			UpsertFunc: func(ctx context.Context, chunks []entity.PolicyChunk, vecs [][]float32) error {
				stored = chunks
				vectors = vecs
				return nil
			},
		}
		embedder := &mockEmbedder{}

		text := strings.Repeat("a", 2500)
		uc := NewCopilotUsecase(embedder, &mockAnswerGenerator{}, store)
		n, err := uc.Ingest(ctx, text, "policy.md")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 2500文字、サイズ1000・重複100 → 開始位置 0, 900, 1800 の3断片
		if n != 3 {
			t.Fatalf("expected 3 chunks, got %d", n)
		}
		if len(stored) != 3 || len(vectors) != 3 {
			t.Fatalf("expected 3 stored chunks and vectors, got %d/%d", len(stored), len(vectors))
		}
		if embedder.Calls != 3 {
			t.Errorf("expected 3 embed calls, got %d", embedder.Calls)
		}
		for i, c := range stored {
			if c.ID == "" {
				t.Errorf("chunk %d has no ID", i)
			}
			if c.Source != "policy.md" {
				t.Errorf("chunk %d has source %q", i, c.Source)
			}
		}
	})

	t.Run("empty document is rejected", func(t *testing.T) {
		uc := NewCopilotUsecase(&mockEmbedder{}, &mockAnswerGenerator{}, &mockChunkStore{})
		if _, err := uc.Ingest(ctx, "", "empty.md"); err == nil {
			t.Error("expected error for empty document")
		}
	})
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{
			name: "empty text",
			text: "", size: 10, overlap: 2,
			want: nil,
		},
		{
			name: "shorter than one chunk",
			text: "short", size: 10, overlap: 2,
			want: []string{"short"},
		},
		{
			name: "exact overlap boundaries",
			text: "abcdefghij", size: 4, overlap: 2,
			want: []string{"abcd", "cdef", "efgh", "ghij"},
		},
		{
			name: "multibyte runes are not split",
			text: "あいうえおかきくけこ", size: 4, overlap: 0,
			want: []string{"あいうえ", "おかきく", "けこ"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitChunks(tt.text, tt.size, tt.overlap)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d chunks %v, got %d %v", len(tt.want), tt.want, len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

// TestAsk_UnconfiguredCollaborators はコラボレーター未設定時に固定回答が返されることを検証します。
func TestAsk_UnconfiguredCollaborators(t *testing.T) {
	uc := NewCopilotUsecase(nil, nil, nil)

	got, err := uc.Ask(context.Background(), "What is the retention policy?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got.Answer != EmptyKnowledgeBaseAnswer {
		t.Errorf("Answer = %q, want fixed answer", got.Answer)
	}
	if len(got.Sources) != 0 {
		t.Errorf("Sources = %v, want empty", got.Sources)
	}
}

// TestIngest_UnconfiguredStore はストア未設定時にIngestがエラーを返すことを検証します。
func TestIngest_UnconfiguredStore(t *testing.T) {
	uc := NewCopilotUsecase(nil, nil, nil)

	if _, err := uc.Ingest(context.Background(), "policy text", "aml_policy.md"); err == nil {
		t.Fatal("expected error for unconfigured store")
	}
}

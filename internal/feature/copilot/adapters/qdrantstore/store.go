// Package qdrantstore はQdrantのネイティブgRPC APIを使用した
// ポリシー断片のベクトルストア実装を提供します。
package qdrantstore

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/copilot/usecase"
)

const (
	// DefaultCollection はポリシー断片のコレクション名です。
	DefaultCollection = "policy_chunks"

	// DefaultVectorSize はgemini-embedding-001の埋め込み次元数です。
	DefaultVectorSize = 3072
)

// Store はChunkStoreインターフェースのQdrant実装です。
type Store struct {
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	conn        *grpc.ClientConn
	collection  string
	vectorSize  uint64
}

// StoreがChunkStoreを実装していることをコンパイル時に検証します。
var _ usecase.ChunkStore = (*Store)(nil)

// NewStore はQdrantにgRPC接続し、コレクションがなければ作成します。
// vectorSizeが0の場合はDefaultVectorSizeを使用します。
func NewStore(address, collection string, vectorSize uint64) (*Store, error) {
	if address == "" {
		return nil, fmt.Errorf("qdrant address is required")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	if vectorSize == 0 {
		vectorSize = DefaultVectorSize
	}

	conn, err := grpc.Dial(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	s := &Store{
		points:      qdrant.NewPointsClient(conn),
		collections: qdrant.NewCollectionsClient(conn),
		conn:        conn,
		collection:  collection,
		vectorSize:  vectorSize,
	}

	if err := s.ensureCollection(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	return s, nil
}

// Close はgRPC接続を解放します。
func (s *Store) Close() error {
	return s.conn.Close()
}

// ensureCollection はコレクションが存在しなければコサイン距離で作成します。
func (s *Store) ensureCollection(ctx context.Context) error {
	listResp, err := s.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, col := range listResp.Collections {
		if col.Name == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     s.vectorSize,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Upsert は断片と埋め込みを保存します。
func (s *Store) Upsert(ctx context.Context, chunks []entity.PolicyChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, c := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: c.ID},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{Data: vectors[i]},
				},
			},
			Payload: map[string]*qdrant.Value{
				"text": {
					Kind: &qdrant.Value_StringValue{StringValue: c.Text},
				},
				"source": {
					Kind: &qdrant.Value_StringValue{StringValue: c.Source},
				},
			},
		})
	}

	_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

// Search はクエリベクトルに類似する断片を上位limit件返します。
func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]entity.PolicyChunk, error) {
	if limit <= 0 {
		limit = usecase.DefaultTopK
	}

	results, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	chunks := make([]entity.PolicyChunk, 0, len(results.Result))
	for _, r := range results.Result {
		c := entity.PolicyChunk{Score: r.Score}
		if r.Id != nil {
			c.ID = r.Id.GetUuid()
		}
		if r.Payload != nil {
			if v, ok := r.Payload["text"]; ok {
				c.Text = v.GetStringValue()
			}
			if v, ok := r.Payload["source"]; ok {
				c.Source = v.GetStringValue()
			}
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// Package entity はcopilotフィーチャーのドメインエンティティを定義します。
package entity

// PolicyChunk はコンプライアンス文書の分割済み断片です。
// ベクトルストアに埋め込みと共に保存され、検索時に取り出されます。
type PolicyChunk struct {
	// ID は断片の一意識別子（UUID）です。
	ID string

	// Text は断片の本文です。
	Text string

	// Source は断片の出典（元ファイル名など）です。
	Source string

	// Score は検索時の類似度スコアです。保存時は未設定です。
	Score float32
}

// ChatAnswer は質問への回答と根拠の出典です。
type ChatAnswer struct {
	Answer  string
	Sources []string
}

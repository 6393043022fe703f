// Package dto はcopilotフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// ChatReq は/copilot-chatエンドポイントのリクエストボディを表します。
type ChatReq struct {
	Question string `json:"question" binding:"required"`
}

// ChatRes は回答と根拠の出典です。
type ChatRes struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ErrorRes はエラー時の共通レスポンスです。
type ErrorRes struct {
	Error string `json:"error"`
}

package entity

// Classification は融合スコアから導出される判定ラベルです。
// 疑わしさの昇順で全順序を成します。
type Classification string

const (
	ClassificationAuthentic    Classification = "Authentic"
	ClassificationSuspicious   Classification = "Suspicious"
	ClassificationHighlyForged Classification = "Highly Forged"
)

// DLResult は外部の深層学習改ざん検出器の推論結果です。
// Scoreは契約上 [0,1] に収まります。
type DLResult struct {
	Score   float64
	Heatmap []byte // PNGエンコード済みヒートマップ
}

// ExtractedEntities は1文書から抽出されたKYCフィールドです。
// 抽出できなかったフィールドはnilになります。
type ExtractedEntities struct {
	PersonName *string
	Address    *string
	Date       *string
}

// DocumentMetadata はPDFのInfo辞書から抽出したメタデータと
// デジタル鑑識の判定結果です。
type DocumentMetadata struct {
	Author            string
	Creator           string
	Producer          string
	Created           string
	Modified          string
	IsSuspicious      bool
	SuspiciousReasons []string
}

// ValidationResult は2文書間のKYC整合性チェックの結果です。
// 永続化されず、リクエストごとに再計算されます。
type ValidationResult struct {
	ConsistencyScore float64  // 0 ~ 100
	Mismatches       []string // 人間可読な不一致の説明
	Notes            []string // 比較不能フィールドなどの補足
	IsValid          bool
}

// DocumentReport は1文書の解析結果です。
type DocumentReport struct {
	Filename       string
	ScanID         string
	ELAScore       float64
	LayoutScore    float64
	DLScore        *float64 // シグナル欠落時はnil（ゼロではない）
	FinalScore     float64  // 0 ~ 100
	Classification Classification
	IsFraud        bool
	Heatmap        []byte // ELAヒートマップ（PNG）
	DLHeatmap      []byte
	AIExplanation  []byte // Grad-CAM説明画像（PNG）
	Entities       ExtractedEntities
	Metadata       *DocumentMetadata
	Tokens         []OCRToken
}

// BatchReport は複数文書の解析結果と、先頭2文書に対する
// 整合性検証の結果をまとめたものです。
type BatchReport struct {
	Results    []DocumentReport
	Validation ValidationResult
}

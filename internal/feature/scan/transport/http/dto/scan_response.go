// Package dto はscanフィーチャーのHTTPレスポンスDTOを定義します。
// JSONフィールド名はフロントエンド契約の一部であり変更できません。
package dto

import (
	"encoding/base64"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
)

// PointResponse はOCRバウンディングボックスの頂点です。
type PointResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OCRTokenResponse は単語単位のOCR結果です。
type OCRTokenResponse struct {
	Text        string           `json:"text"`
	Confidence  float64          `json:"confidence"`
	BoundingBox [4]PointResponse `json:"bounding_box"`
}

// ExtractedEntitiesResponse は文書から抽出されたKYCフィールドです。
// 未検出のフィールドはnullになります。
type ExtractedEntitiesResponse struct {
	PersonName *string `json:"person_name"`
	Address    *string `json:"address"`
	Date       *string `json:"date"`
}

// PDFMetadataResponse はPDF情報辞書の鑑識結果です。
type PDFMetadataResponse struct {
	Author            string   `json:"author,omitempty"`
	Creator           string   `json:"creator,omitempty"`
	Producer          string   `json:"producer,omitempty"`
	Created           string   `json:"created,omitempty"`
	Modified          string   `json:"modified,omitempty"`
	IsSuspicious      bool     `json:"is_suspicious"`
	SuspiciousReasons []string `json:"suspicious_reasons,omitempty"`
}

// ScanResponse は1文書の解析結果です。
type ScanResponse struct {
	Filename        string                    `json:"filename"`
	ScanID          string                    `json:"scan_id"`
	ELAScore        float64                   `json:"ela_score"`
	LayoutScore     float64                   `json:"layout_score"`
	DLScore         *float64                  `json:"dl_score"`
	FinalScore      float64                   `json:"final_score"`
	Classification  string                    `json:"classification"`
	IsFraud         bool                      `json:"is_fraud"`
	HeatmapBase64   string                    `json:"heatmap_base64,omitempty"`
	DLHeatmapBase64 string                    `json:"dl_heatmap_base64,omitempty"`
	AIExplanation64 string                    `json:"ai_explanation_64,omitempty"`
	Entities        ExtractedEntitiesResponse `json:"extracted_entities"`
	PDFMetadata     *PDFMetadataResponse      `json:"pdf_metadata,omitempty"`
	OCRData         []OCRTokenResponse        `json:"ocr_data"`
}

// KYCValidationResponse は文書間の整合性検証結果です。
type KYCValidationResponse struct {
	ConsistencyScore float64  `json:"consistency_score"`
	Mismatches       []string `json:"mismatches"`
	Notes            []string `json:"notes,omitempty"`
	IsValid          bool     `json:"is_valid"`
}

// BatchScanResponse はバッチ解析の結果と文書間クロスチェックです。
type BatchScanResponse struct {
	Results       []ScanResponse        `json:"results"`
	KYCValidation KYCValidationResponse `json:"kyc_validation"`
}

// FromDocumentReport はドメインのレポートをレスポンスDTOに変換します。
func FromDocumentReport(rep *entity.DocumentReport) ScanResponse {
	tokens := make([]OCRTokenResponse, 0, len(rep.Tokens))
	for _, t := range rep.Tokens {
		var box [4]PointResponse
		for i, p := range t.BoundingBox {
			box[i] = PointResponse{X: p.X, Y: p.Y}
		}
		tokens = append(tokens, OCRTokenResponse{
			Text:        t.Text,
			Confidence:  t.Confidence,
			BoundingBox: box,
		})
	}

	resp := ScanResponse{
		Filename:       rep.Filename,
		ScanID:         rep.ScanID,
		ELAScore:       rep.ELAScore,
		LayoutScore:    rep.LayoutScore,
		DLScore:        rep.DLScore,
		FinalScore:     rep.FinalScore,
		Classification: string(rep.Classification),
		IsFraud:        rep.IsFraud,
		Entities: ExtractedEntitiesResponse{
			PersonName: rep.Entities.PersonName,
			Address:    rep.Entities.Address,
			Date:       rep.Entities.Date,
		},
		OCRData: tokens,
	}

	if len(rep.Heatmap) > 0 {
		resp.HeatmapBase64 = base64.StdEncoding.EncodeToString(rep.Heatmap)
	}
	if len(rep.DLHeatmap) > 0 {
		resp.DLHeatmapBase64 = base64.StdEncoding.EncodeToString(rep.DLHeatmap)
	}
	if len(rep.AIExplanation) > 0 {
		resp.AIExplanation64 = base64.StdEncoding.EncodeToString(rep.AIExplanation)
	}
	if rep.Metadata != nil {
		resp.PDFMetadata = &PDFMetadataResponse{
			Author:            rep.Metadata.Author,
			Creator:           rep.Metadata.Creator,
			Producer:          rep.Metadata.Producer,
			Created:           rep.Metadata.Created,
			Modified:          rep.Metadata.Modified,
			IsSuspicious:      rep.Metadata.IsSuspicious,
			SuspiciousReasons: rep.Metadata.SuspiciousReasons,
		}
	}

	return resp
}

// FromBatchReport はバッチレポートをレスポンスDTOに変換します。
func FromBatchReport(batch *entity.BatchReport) BatchScanResponse {
	results := make([]ScanResponse, 0, len(batch.Results))
	for i := range batch.Results {
		results = append(results, FromDocumentReport(&batch.Results[i]))
	}
	return BatchScanResponse{
		Results: results,
		KYCValidation: KYCValidationResponse{
			ConsistencyScore: batch.Validation.ConsistencyScore,
			Mismatches:       batch.Validation.Mismatches,
			Notes:            batch.Validation.Notes,
			IsValid:          batch.Validation.IsValid,
		},
	}
}

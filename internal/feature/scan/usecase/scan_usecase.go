package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
)

const (
	// MaxUploadSize はアップロードの最大サイズ（20MB）です。
	MaxUploadSize = 20 * 1024 * 1024

	// DefaultExplainThreshold はDLスコアがこの値を超えたときのみ
	// 説明画像（Grad-CAM）を要求する可視化しきい値です。
	DefaultExplainThreshold = 0.2

	// NotEnoughDocumentsMismatch は有効に処理できた文書が2件未満の
	// バッチで記録される不一致メッセージです。
	NotEnoughDocumentsMismatch = "Not enough valid documents for cross-validation"
)

// TextReader は画像からOCRトークンを抽出するコラボレーターです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type TextReader interface {
	ReadText(ctx context.Context, image []byte) ([]entity.OCRToken, error)
}

// TamperDetector は深層学習ベースの改ざん検出コラボレーターです。
type TamperDetector interface {
	// Infer はスライディングウィンドウ推論でヒートマップと[0,1]の
	// 異常スコアを返します。
	Infer(ctx context.Context, image []byte) (*entity.DLResult, error)
	// Explain は判定根拠の顕著性マップ（Grad-CAM）を返します。
	Explain(ctx context.Context, image []byte) ([]byte, error)
}

// EntityExtractor はOCRトークン列からKYCフィールドを抽出する
// コラボレーターです。
type EntityExtractor interface {
	Extract(ctx context.Context, tokens []entity.OCRToken) (entity.ExtractedEntities, error)
}

// MetadataInspector はPDFメタデータの鑑識コラボレーターです。
type MetadataInspector interface {
	Inspect(path string) (*entity.DocumentMetadata, error)
	// ExtractRaster はスキャンPDFの先頭ページ画像をPNGとして取り出します。
	ExtractRaster(path string) ([]byte, error)
}

// ScanRecorder はスキャン履歴を永続化するリポジトリインターフェースです。
type ScanRecorder interface {
	Record(ctx context.Context, rec *entity.ScanRecord) error
}

// ScanInput は1文書の解析リクエストです。
type ScanInput struct {
	Filename  string
	ScanID    string
	Data      []byte // デコード前の生バイト列
	Path      string // 保存済み一時ファイル（PDFメタデータ検査用）
	CompanyID uint
}

// ScanUsecase は鑑識シグナルのパイプラインを編成します。
// 全コラボレーターは明示的に注入され、プロセス全体の可変状態を
// 持ちません。各呼び出しは独立で、並行呼び出しに対して安全です。
type ScanUsecase struct {
	ocr       TextReader
	detector  TamperDetector    // nil可（2シグナルモード）
	extractor EntityExtractor   // nil可
	metadata  MetadataInspector // nil可
	records   ScanRecorder      // nil可
	fuser     *Fuser
	validator *ConsistencyValidator

	elaQuality       int
	explainThreshold float64
}

// NewScanUsecase はScanUsecaseの新しいインスタンスを生成します。
// ocrとfuserとvalidatorは必須、それ以外のコラボレーターはnilで
// 無効化できます。
func NewScanUsecase(
	ocr TextReader,
	detector TamperDetector,
	extractor EntityExtractor,
	metadata MetadataInspector,
	records ScanRecorder,
	fuser *Fuser,
	validator *ConsistencyValidator,
	elaQuality int,
) *ScanUsecase {
	if elaQuality <= 0 || elaQuality > 100 {
		elaQuality = DefaultELAQuality
	}
	return &ScanUsecase{
		ocr:              ocr,
		detector:         detector,
		extractor:        extractor,
		metadata:         metadata,
		records:          records,
		fuser:            fuser,
		validator:        validator,
		elaQuality:       elaQuality,
		explainThreshold: DefaultExplainThreshold,
	}
}

// Analyze は1文書を解析し、融合スコアと判定を含むレポートを返します。
//
// ELA・OCRは必須シグナルで、失敗した場合は部分的な結果を返さず
// エラーを返します。DL・エンティティ抽出・メタデータ検査は任意
// シグナルで、失敗してもシグナル欠落として処理を継続します。
func (u *ScanUsecase) Analyze(ctx context.Context, input ScanInput) (*entity.DocumentReport, error) {
	if len(input.Data) == 0 {
		return nil, fmt.Errorf("document data is empty")
	}
	if len(input.Data) > MaxUploadSize {
		return nil, fmt.Errorf("document exceeds maximum size of %d bytes", MaxUploadSize)
	}

	raster := input.Data
	var meta *entity.DocumentMetadata

	// PDFはメタデータ検査と先頭ページ画像の取り出しを行い、
	// 以降のパイプラインはその画像に対して走ります。
	if isPDF(input.Filename) && u.metadata != nil {
		m, err := u.metadata.Inspect(input.Path)
		if err != nil {
			slog.Warn("PDFメタデータの検査に失敗", "filename", input.Filename, "error", err)
		} else {
			meta = m
		}
		page, err := u.metadata.ExtractRaster(input.Path)
		if err != nil {
			return nil, fmt.Errorf("pdf raster extraction failed for %q: %w", input.Filename, err)
		}
		raster = page
	}

	// 必須シグナル1: ELA
	ela, err := ComputeELA(raster, u.elaQuality)
	if err != nil {
		return nil, fmt.Errorf("ela analysis failed for %q: %w", input.Filename, err)
	}
	heatmapPNG, err := RenderHeatmapPNG(ela.Heatmap)
	if err != nil {
		return nil, fmt.Errorf("ela heatmap render failed for %q: %w", input.Filename, err)
	}

	// 必須シグナル2: OCR→レイアウト
	tokens, err := u.ocr.ReadText(ctx, raster)
	if err != nil {
		return nil, fmt.Errorf("ocr failed for %q: %w", input.Filename, err)
	}
	layoutScore := AnalyzeLayout(tokens)

	// 任意シグナル: DL推論。失敗はシグナル欠落に格下げされ、
	// ウェイトは2シグナル構成に再配分されます。
	var (
		dlScore   *float64
		dlHeatmap []byte
		explain   []byte
	)
	if u.detector != nil {
		res, err := u.detector.Infer(ctx, raster)
		if err != nil {
			slog.Warn("DL推論に失敗、2シグナルモードで続行", "filename", input.Filename, "error", err)
		} else if res != nil {
			s := res.Score
			dlScore = &s
			dlHeatmap = res.Heatmap
			if s > u.explainThreshold {
				if ex, err := u.detector.Explain(ctx, raster); err != nil {
					slog.Warn("DL説明画像の取得に失敗", "filename", input.Filename, "error", err)
				} else {
					explain = ex
				}
			}
		}
	}

	// 全シグナルが揃ってから融合
	finalScore, classification := u.fuser.Fuse(ela.Score, layoutScore, dlScore)

	// エンティティ抽出（KYCクロスチェック用、失敗は非致命）
	var entities entity.ExtractedEntities
	if u.extractor != nil && len(tokens) > 0 {
		ents, err := u.extractor.Extract(ctx, tokens)
		if err != nil {
			slog.Warn("エンティティ抽出に失敗", "filename", input.Filename, "error", err)
		} else {
			entities = ents
		}
	}

	// 視覚・構造の融合判定とメタデータ判定の論理OR
	isFraud := classification != entity.ClassificationAuthentic ||
		(meta != nil && meta.IsSuspicious)

	report := &entity.DocumentReport{
		Filename:       input.Filename,
		ScanID:         input.ScanID,
		ELAScore:       ela.Score,
		LayoutScore:    layoutScore,
		DLScore:        dlScore,
		FinalScore:     finalScore,
		Classification: classification,
		IsFraud:        isFraud,
		Heatmap:        heatmapPNG,
		DLHeatmap:      dlHeatmap,
		AIExplanation:  explain,
		Entities:       entities,
		Metadata:       meta,
		Tokens:         tokens,
	}

	if u.records != nil {
		rec := &entity.ScanRecord{
			Timestamp:           time.Now().UTC(),
			ConfidenceScore:     finalScore,
			ClassificationLabel: string(classification),
			CompanyID:           input.CompanyID,
		}
		if err := u.records.Record(ctx, rec); err != nil {
			slog.Warn("スキャン履歴の保存に失敗", "filename", input.Filename, "error", err)
		}
	}

	return report, nil
}

// AnalyzeBatch は複数文書を提出順に解析します。1文書の失敗は隔離され、
// その文書は結果と整合性比較の両方から除外されます。整合性検証は
// 正常に処理できた先頭2文書に対してのみ定義されます。
func (u *ScanUsecase) AnalyzeBatch(ctx context.Context, inputs []ScanInput) (*entity.BatchReport, error) {
	results := make([]entity.DocumentReport, 0, len(inputs))
	for _, in := range inputs {
		rep, err := u.Analyze(ctx, in)
		if err != nil {
			slog.Warn("バッチ内の文書をスキップ", "filename", in.Filename, "error", err)
			continue
		}
		results = append(results, *rep)
	}

	var validation entity.ValidationResult
	if len(results) < 2 {
		// エンティティ比較より前に短絡します
		validation = entity.ValidationResult{
			ConsistencyScore: 0,
			Mismatches:       []string{NotEnoughDocumentsMismatch},
			IsValid:          false,
		}
	} else {
		validation = u.validator.Validate(results[0].Entities, results[1].Entities)
	}

	return &entity.BatchReport{Results: results, Validation: validation}, nil
}

// isPDF は拡張子でPDFかどうかを判定します。
func isPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

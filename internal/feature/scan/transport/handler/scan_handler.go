// Package handler はscanフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/transport/http/dto"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
)

// CompanyIDKey はAPIキー認証ミドルウェアがginコンテキストに設定する
// 企業IDのキーです。
const CompanyIDKey = "company_id"

// allowedExtensions は受理するアップロード拡張子のホワイトリストです。
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// ScanUsecase は文書解析のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ScanUsecase interface {
	Analyze(ctx context.Context, input usecase.ScanInput) (*entity.DocumentReport, error)
	AnalyzeBatch(ctx context.Context, inputs []usecase.ScanInput) (*entity.BatchReport, error)
}

// ScanHandler は文書解析のHTTPリクエストを処理します。
type ScanHandler struct {
	uc        ScanUsecase
	uploadDir string
}

// NewScanHandler はScanHandlerの新しいインスタンスを生成します。
// uploadDirはPDFメタデータ検査用の一時保存先です。
func NewScanHandler(uc ScanUsecase, uploadDir string) *ScanHandler {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &ScanHandler{uc: uc, uploadDir: uploadDir}
}

// Analyze は1文書をアップロードして解析します。
//
// エンドポイント: POST /analyze
// Content-Type: multipart/form-data
// フィールド: file（.jpg/.jpeg/.png/.pdf、最大20MB）
func (h *ScanHandler) Analyze(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		slog.Warn("ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "file field is required"})
		return
	}

	input, cleanup, err := h.buildInput(c, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	defer cleanup()

	report, err := h.uc.Analyze(c.Request.Context(), *input)
	if err != nil {
		slog.Error("文書解析に失敗", "filename", file.Filename, "error", err)
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "failed to analyze document"})
		return
	}

	c.JSON(http.StatusOK, dto.FromDocumentReport(report))
}

// AnalyzeBatch は複数文書をアップロードして解析し、文書間の
// KYC整合性を検証します。
//
// エンドポイント: POST /analyze-batch
// Content-Type: multipart/form-data
// フィールド: files（複数、.jpg/.jpeg/.png/.pdf、各最大20MB）
func (h *ScanHandler) AnalyzeBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Warn("マルチパートフォームの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "multipart form is required"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "files field is required"})
		return
	}

	inputs := make([]usecase.ScanInput, 0, len(files))
	for _, file := range files {
		input, cleanup, err := h.buildInput(c, file)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		defer cleanup()
		inputs = append(inputs, *input)
	}

	batch, err := h.uc.AnalyzeBatch(c.Request.Context(), inputs)
	if err != nil {
		slog.Error("バッチ解析に失敗", "count", len(files), "error", err)
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "failed to analyze documents"})
		return
	}

	c.JSON(http.StatusOK, dto.FromBatchReport(batch))
}

// buildInput はアップロードを検証し、一時ファイルに保存して
// ScanInputを構築します。cleanupは一時ファイルを削除します。
func (h *ScanHandler) buildInput(c *gin.Context, file *multipart.FileHeader) (*usecase.ScanInput, func(), error) {
	noop := func() {}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, noop, &unsupportedFileError{filename: file.Filename}
	}
	if file.Size > usecase.MaxUploadSize {
		return nil, noop, &fileTooLargeError{filename: file.Filename}
	}

	f, err := file.Open()
	if err != nil {
		return nil, noop, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("アップロードファイルのクローズに失敗", "error", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, noop, err
	}

	scanID := uuid.NewString()

	// PDFメタデータ検査はファイルパスを要求するため、一時保存します。
	// ファイル名はユーザー入力を含まないUUIDです。
	path := filepath.Join(h.uploadDir, scanID+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, noop, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil {
			slog.Warn("一時ファイルの削除に失敗", "path", path, "error", err)
		}
	}

	var companyID uint
	if v, ok := c.Get(CompanyIDKey); ok {
		if id, ok := v.(uint); ok {
			companyID = id
		}
	}

	return &usecase.ScanInput{
		Filename:  file.Filename,
		ScanID:    scanID,
		Data:      data,
		Path:      path,
		CompanyID: companyID,
	}, cleanup, nil
}

type unsupportedFileError struct{ filename string }

func (e *unsupportedFileError) Error() string {
	return "unsupported file type: " + e.filename + " (allowed: .jpg, .jpeg, .png, .pdf)"
}

type fileTooLargeError struct{ filename string }

func (e *fileTooLargeError) Error() string {
	return "file too large: " + e.filename
}

// Package pdfmeta はtabulaのPDFリーダーを使用したメタデータ鑑識と
// ページ画像抽出を提供します。
package pdfmeta

import (
	"fmt"
	"strings"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/reader"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
)

// suspiciousProducers はオンライン編集ツールの痕跡を示すProducer/Creator
// 文字列の部分一致リストです。これらのツール経由のPDFは編集済みの
// 可能性が高いためフラグを立てます。
var suspiciousProducers = []string{
	"ilovepdf",
	"smallpdf",
	"sejda",
	"pdfescape",
	"soda pdf",
	"pdf-xchange",
	"foxit",
	"canva",
}

// Inspector はPDFの情報辞書を検査するMetadataInspector実装です。
type Inspector struct{}

// InspectorがMetadataInspectorを実装していることをコンパイル時に検証します。
var _ usecase.MetadataInspector = (*Inspector)(nil)

// NewInspector はInspectorの新しいインスタンスを生成します。
func NewInspector() *Inspector {
	return &Inspector{}
}

// Inspect はPDFの情報辞書を読み取り、鑑識判定付きのメタデータを返します。
func (i *Inspector) Inspect(path string) (*entity.DocumentMetadata, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() { _ = r.Close() }()

	info, err := r.GetInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf info dictionary: %w", err)
	}

	meta := &entity.DocumentMetadata{
		Author:   dictString(info, "Author"),
		Creator:  dictString(info, "Creator"),
		Producer: dictString(info, "Producer"),
		Created:  dictString(info, "CreationDate"),
		Modified: dictString(info, "ModDate"),
	}
	assess(meta)
	return meta, nil
}

// ExtractRaster はPDF先頭ページの最初の埋め込み画像をPNGとして返します。
// スキャンPDFは1ページ1画像の構造を持つため、これが文書の見た目そのものです。
func (i *Inspector) ExtractRaster(path string) ([]byte, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() { _ = r.Close() }()

	page, err := r.GetPage(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read first page: %w", err)
	}

	images, err := r.ExtractPageImages(page)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page images: %w", err)
	}
	if len(images) == 0 {
		return nil, domain.ErrNoRasterContent
	}

	png, err := images[0].ToPNG()
	if err != nil {
		return nil, fmt.Errorf("failed to convert page image: %w", err)
	}
	return png, nil
}

// assess は情報辞書の値から改ざんの兆候を判定し、メタデータに
// 理由付きで記録します。
func assess(meta *entity.DocumentMetadata) {
	software := strings.ToLower(meta.Producer + " " + meta.Creator)
	for _, p := range suspiciousProducers {
		if strings.Contains(software, p) {
			meta.IsSuspicious = true
			meta.SuspiciousReasons = append(meta.SuspiciousReasons,
				fmt.Sprintf("produced by online editing tool (%s)", p))
			break
		}
	}

	if meta.Created == "" {
		meta.IsSuspicious = true
		meta.SuspiciousReasons = append(meta.SuspiciousReasons,
			"creation date is missing")
	}

	if meta.Modified != "" && meta.Created != "" && meta.Modified != meta.Created {
		meta.IsSuspicious = true
		meta.SuspiciousReasons = append(meta.SuspiciousReasons,
			"document was modified after creation")
	}
}

// dictString は情報辞書から文字列値を取り出します。欠落や型違いは
// 空文字列として扱います。
func dictString(info core.Dict, key string) string {
	if info == nil {
		return ""
	}
	obj := info.Get(key)
	if obj == nil {
		return ""
	}
	if s, ok := obj.(core.String); ok {
		return string(s)
	}
	return ""
}

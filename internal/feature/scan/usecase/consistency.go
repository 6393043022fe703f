package usecase

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
)

// DefaultSimilarityThreshold は2文書のフィールドを一致とみなす
// 正規化編集距離類似度の下限です。OCRの置換・挿入・削除ミスを
// 許容するため、厳密一致ではなくファジーマッチを使います。
const DefaultSimilarityThreshold = 0.80

// InsufficientDataMismatch は比較可能なフィールドが1つもない場合に
// 記録される不一致メッセージです。
const InsufficientDataMismatch = "Insufficient data: no comparable fields between documents"

// ConsistencyValidator は2文書から抽出されたKYCフィールドの
// 相互整合性を検証します。
type ConsistencyValidator struct {
	threshold float64
}

// NewConsistencyValidator は指定された類似度しきい値でバリデーターを
// 生成します。しきい値が(0,1]の範囲外の場合はデフォルトを使います。
func NewConsistencyValidator(threshold float64) *ConsistencyValidator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &ConsistencyValidator{threshold: threshold}
}

// Validate は2つの抽出結果を比較し、整合性スコアと不一致リストを
// 返します。
//
// 片側が欠落しているフィールドはスコア計算から除外され、Notesに
// 記録されます（不一致としては扱いません）。比較可能なフィールドが
// 1つもない場合はスコア0とデータ不足の不一致を返します。
// Validate(a, b)とValidate(b, a)はスコアと不一致フィールド集合が
// 一致します（値ラベルのA/Bのみ入れ替わります）。
func (v *ConsistencyValidator) Validate(a, b entity.ExtractedEntities) entity.ValidationResult {
	fields := []struct {
		name string
		a, b *string
	}{
		{"person_name", a.PersonName, b.PersonName},
		{"address", a.Address, b.Address},
		{"date", a.Date, b.Date},
	}

	var (
		comparable int
		matched    int
		mismatches []string
		notes      []string
	)

	for _, f := range fields {
		if !present(f.a) || !present(f.b) {
			notes = append(notes, fmt.Sprintf("%s: incomplete, missing on at least one document", f.name))
			continue
		}
		comparable++
		if similarity(*f.a, *f.b) >= v.threshold {
			matched++
			continue
		}
		mismatches = append(mismatches, fmt.Sprintf(
			"%s mismatch: Document A %q vs Document B %q", f.name, *f.a, *f.b))
	}

	if comparable == 0 {
		return entity.ValidationResult{
			ConsistencyScore: 0,
			Mismatches:       append(mismatches, InsufficientDataMismatch),
			Notes:            notes,
			IsValid:          false,
		}
	}

	return entity.ValidationResult{
		ConsistencyScore: round2(float64(matched) / float64(comparable) * 100),
		Mismatches:       mismatches,
		Notes:            notes,
		IsValid:          len(mismatches) == 0,
	}
}

// present はフィールドが比較対象として有効かを判定します。
func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// similarity は大文字小文字と空白を正規化したうえで、
// 正規化Levenshtein類似度 1 - dist/maxLen を返します。
func similarity(a, b string) float64 {
	na, nb := normalizeField(a), normalizeField(b)
	if na == nb {
		return 1.0
	}
	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(na, nb)
	return 1.0 - float64(dist)/float64(maxLen)
}

// normalizeField は小文字化し、連続空白を1つに畳みます。
func normalizeField(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

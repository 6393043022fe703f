package usecase

import (
	"sort"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
)

const (
	// jitterWindowPx はアライメントジッタとして数える左端X差分の上限（排他）です。
	// 同一カラム（差分ほぼ0）と別カラム（大きな差分）の中間にある
	// 「わずかにズレた」差分だけが改ざんの兆候になります。
	jitterWindowPx = 15.0

	// jitterDivisor はジッタ平均をスコアに正規化する除数です。
	jitterDivisor = 10.0

	// spacingDivisor は行間分散をスコアに正規化する除数です。
	// 一般的な文書レイアウトに基づく経験値です。
	spacingDivisor = 5000.0

	// maxContribution は各ヒューリスティックの寄与上限です。
	maxContribution = 0.5
)

// AnalyzeLayout はOCRバウンディングボックスの空間的な一貫性を分析し、
// [0,1]の構造異常スコアを返します。トークンが2個未満の場合は
// シグナル不足として0.0を返します。
//
// 入力順序には依存しません。ソートは内部で行われ、スコアは
// ソート後の隣接差分のみから計算されます。
func AnalyzeLayout(tokens []entity.OCRToken) float64 {
	if len(tokens) < 2 {
		return 0.0
	}

	score := 0.0

	// 1. アライメントジッタ：左端X座標をソートし、隣接差分のうち
	//    (0, jitterWindowPx) に入るものの平均を取る。自然に整列した
	//    テキストはほぼ0か大きな差分に分かれるため、小さな非ゼロ
	//    差分の集積は貼り付け・再配置の兆候になります。
	xs := make([]float64, len(tokens))
	for i, t := range tokens {
		xs[i] = t.LeftX()
	}
	sort.Float64s(xs)

	var small []float64
	for i := 1; i < len(xs); i++ {
		d := xs[i] - xs[i-1]
		if d > 0 && d < jitterWindowPx {
			small = append(small, d)
		}
	}
	jitter := 0.0
	if len(small) > 0 {
		jitter = mean(small)
	}
	score += clamp(jitter/jitterDivisor, 0, maxContribution)

	// 2. 行間の不規則性：垂直中心をソートし、隣接差分の分散を取る。
	//    自然な行・段落の間隔は規則的で、貼り付けや打ち直しは
	//    その規則性を崩します。差分が2個以上あるときのみ評価します。
	ys := make([]float64, len(tokens))
	for i, t := range tokens {
		ys[i] = t.CenterY()
	}
	sort.Float64s(ys)

	yDiffs := make([]float64, 0, len(ys)-1)
	for i := 1; i < len(ys); i++ {
		yDiffs = append(yDiffs, ys[i]-ys[i-1])
	}
	if len(yDiffs) > 1 {
		score += clamp(variance(yDiffs)/spacingDivisor, 0, maxContribution)
	}

	return clamp(score, 0.0, 1.0)
}

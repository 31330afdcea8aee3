// Package kvstore はダッシュボードのローカル状態とレスポンスキャッシュを保存する。
//
// 保存先の失敗（容量超過、破損データ、接続断）は呼び出し側に返さず、
// 読み込みは「値なし」、書き込みは「何もしない」として扱う。
package kvstore

import (
	"fmt"
	"strconv"
	"strings"
)

// keyPrefix はすべての保存キーに共通する接頭辞。
const keyPrefix = "travelTaipei:"

// Kind は保存データの論理種別。種別ごとに値のスキーマが1つに決まる。
type Kind int

const (
	// KindFamilyPlan は旅行期間・総予算上書き・メンバー一覧。
	KindFamilyPlan Kind = iota + 1
	// KindFamilyExpenses は支出記録の一覧。
	KindFamilyExpenses
	// KindPhrases はカテゴリ別フレーズ一覧のキャッシュ。
	KindPhrases
	// KindSpots は検索条件別スポット一覧のキャッシュ。
	KindSpots
	// KindSpotDetail はスポット詳細のキャッシュ。
	KindSpotDetail
	// KindTranslation は入力文ごとの翻訳結果のキャッシュ。
	KindTranslation
	// KindLegacyBudget は旧形式の単一予算（{dailyBudgetTwd}）。読み込み専用。
	KindLegacyBudget
	// KindLegacyExpenses はメンバー概念導入前の支出記録。読み込み専用。
	KindLegacyExpenses
)

// Key は保存キー。Kindと、種別ごとのパラメータから文字列キーを組み立てる。
// 同じパラメータからは常に同じ文字列になる。
type Key struct {
	kind Kind
	name string
}

// Kind はキーの種別を返す。
func (k Key) Kind() Kind {
	return k.kind
}

// String は保存に使う文字列キーを返す。
func (k Key) String() string {
	return k.name
}

// FamilyPlanKey は家族予算プランのキー。
func FamilyPlanKey() Key {
	return Key{kind: KindFamilyPlan, name: keyPrefix + "familyPlan"}
}

// FamilyExpensesKey は支出記録一覧のキー。
func FamilyExpensesKey() Key {
	return Key{kind: KindFamilyExpenses, name: keyPrefix + "familyExpenses"}
}

// LegacyBudgetKey は旧形式の予算キー。
func LegacyBudgetKey() Key {
	return Key{kind: KindLegacyBudget, name: keyPrefix + "budget"}
}

// LegacyExpensesKey は旧形式の支出記録キー。
func LegacyExpensesKey() Key {
	return Key{kind: KindLegacyExpenses, name: keyPrefix + "expenses"}
}

// PhrasesKey はカテゴリ別フレーズ一覧のキー。
func PhrasesKey(category string) Key {
	return Key{kind: KindPhrases, name: keyPrefix + "phrases:" + category}
}

// SpotQuery はスポット一覧キャッシュのキーを決める検索条件。
// Lat/LngはHasLocationがtrueの場合のみ有効。
type SpotQuery struct {
	Type        string
	Radius      string
	OpenNow     bool
	MinRating   string
	Lat, Lng    float64
	HasLocation bool
}

// SpotsKey は検索条件別スポット一覧のキー。
// 座標は小数第3位（約100m）に丸め、キーの種類が際限なく増えないようにする。
func SpotsKey(q SpotQuery) Key {
	minRating := strings.TrimSpace(q.MinRating)
	if minRating == "" {
		minRating = "all"
	}
	lat, lng := "none", "none"
	if q.HasLocation {
		lat = strconv.FormatFloat(q.Lat, 'f', 3, 64)
		lng = strconv.FormatFloat(q.Lng, 'f', 3, 64)
	}
	name := fmt.Sprintf("%sspots:%s:%s:%t:%s:%s:%s",
		keyPrefix, q.Type, q.Radius, q.OpenNow, minRating, lat, lng)
	return Key{kind: KindSpots, name: name}
}

// SpotDetailKey はスポット詳細のキー。
func SpotDetailKey(spotType, spotID string) Key {
	return Key{kind: KindSpotDetail, name: keyPrefix + "spotDetail:" + spotType + ":" + spotID}
}

// TranslationKey は翻訳結果のキー。入力文は前後の空白を除いて使う。
func TranslationKey(text string) Key {
	return Key{kind: KindTranslation, name: keyPrefix + "translate:ko-zhTW:" + strings.TrimSpace(text)}
}

// BudgetKeys は予算状態を保持するキーの一覧。キャッシュの整理対象から外す。
func BudgetKeys() []Key {
	return []Key{FamilyPlanKey(), FamilyExpensesKey(), LegacyBudgetKey(), LegacyExpensesKey()}
}

package budget

import "strings"

// Category は支出カテゴリ。固定の6種類のみを扱う。
type Category string

const (
	CategoryFood      Category = "food"
	CategoryTransport Category = "transport"
	CategoryStay      Category = "stay"
	CategoryActivity  Category = "activity"
	CategoryShopping  Category = "shopping"
	CategoryOther     Category = "other"
)

// CategoryMeta はカテゴリの表示名、アイコン、推奨配分比率。
// RecommendedRatioはデータから導出しない設計上の定数（合計1.0）。
type CategoryMeta struct {
	Category         Category
	Label            string
	Icon             string
	RecommendedRatio float64
}

// Categories は全カテゴリのメタ情報を表示順に並べたもの。
var Categories = []CategoryMeta{
	{Category: CategoryFood, Label: "식비", Icon: "🍜", RecommendedRatio: 0.35},
	{Category: CategoryTransport, Label: "교통", Icon: "🚌", RecommendedRatio: 0.18},
	{Category: CategoryStay, Label: "숙박", Icon: "🏨", RecommendedRatio: 0.22},
	{Category: CategoryActivity, Label: "관광/체험", Icon: "🎟", RecommendedRatio: 0.12},
	{Category: CategoryShopping, Label: "쇼핑", Icon: "🛍", RecommendedRatio: 0.08},
	{Category: CategoryOther, Label: "기타", Icon: "🧾", RecommendedRatio: 0.05},
}

// ParseCategory は文字列をCategoryに変換する。未知の値はfalseを返す。
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, meta := range Categories {
		if meta.Category == c {
			return c, true
		}
	}
	return "", false
}

// Meta はカテゴリのメタ情報を返す。未知のカテゴリはotherのメタ情報になる。
func (c Category) Meta() CategoryMeta {
	for _, meta := range Categories {
		if meta.Category == c {
			return meta
		}
	}
	return Categories[len(Categories)-1]
}

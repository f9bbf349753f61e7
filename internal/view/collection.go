// Package view はコレクションから派生ビュー（絞り込み・並び替え・集計）を計算する純粋関数群を提供する。
// すべての関数は入力を変更せず、同じ入力に対して同じ結果を返す。
package view

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hitoshi/gamevault/internal/model"
)

// FilterAll は絞り込みを行わないことを表すフィルタ値。
const FilterAll = "all"

// ItemType はコレクションビューで表示するアイテム種別。
type ItemType string

const (
	ItemTypeAll      ItemType = "all"
	ItemTypeGames    ItemType = "games"
	ItemTypeConsoles ItemType = "consoles"
)

// Availability は販売・交換可否による絞り込み。
type Availability string

const (
	AvailabilityAll   Availability = "all"
	AvailabilitySale  Availability = "sale"
	AvailabilityTrade Availability = "trade"
)

// SortKey はコレクションビューの並び順。
type SortKey string

const (
	SortRecent      SortKey = "recent"
	SortTitle       SortKey = "title"
	SortReleaseDate SortKey = "releaseDate"
	SortPlatform    SortKey = "platform"
	SortCondition   SortKey = "condition"
	SortPriceLow    SortKey = "price-low"
	SortPriceHigh   SortKey = "price-high"
)

// sortAliases は旧来の並び順名を正規名に変換する。
var sortAliases = map[string]SortKey{
	"console": SortPlatform,
}

// ParseSortKey は並び順文字列を検証してSortKeyを返す。空文字はSortRecentとして扱う。
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortRecent, nil
	}
	if alias, ok := sortAliases[s]; ok {
		return alias, nil
	}
	switch k := SortKey(s); k {
	case SortRecent, SortTitle, SortReleaseDate, SortPlatform, SortCondition, SortPriceLow, SortPriceHigh:
		return k, nil
	}
	return "", model.NewInvalidSortError(s)
}

// normalizeSort は別名を正規名に変換する。不明な値はSortRecent（元の順序）になる。
func normalizeSort(k SortKey) SortKey {
	key, err := ParseSortKey(string(k))
	if err != nil {
		return SortRecent
	}
	return key
}

// CollectionParams はコレクションビューの絞り込み・並び替え条件。
// 比較可能な値のみを持つため、メモ化のキーとして使える。
type CollectionParams struct {
	ItemType     ItemType
	Platform     string
	Condition    string
	Availability Availability
	Collection   string
	Search       string
	Sort         SortKey
}

// Validate は列挙値を検証する。空文字は「指定なし」として許可する。
func (p CollectionParams) Validate() error {
	switch p.ItemType {
	case "", ItemTypeAll, ItemTypeGames, ItemTypeConsoles:
	default:
		return model.NewInvalidFilterError("type", string(p.ItemType))
	}
	switch p.Availability {
	case "", AvailabilityAll, AvailabilitySale, AvailabilityTrade:
	default:
		return model.NewInvalidFilterError("availability", string(p.Availability))
	}
	if !isAll(p.Condition) && !model.Condition(p.Condition).Valid() {
		return model.NewInvalidFilterError("condition", p.Condition)
	}
	if _, err := ParseSortKey(string(p.Sort)); err != nil {
		return err
	}
	return nil
}

// CollectionView はコレクションビューの計算結果。
type CollectionView struct {
	Games    []model.Game    `json:"games"`
	Consoles []model.Console `json:"consoles"`
}

// FilterCollection はゲームと本体の両方に条件を適用する。
// ItemTypeで除外された側は空スライスになる。
func FilterCollection(games []model.Game, consoles []model.Console, p CollectionParams) CollectionView {
	v := CollectionView{Games: []model.Game{}, Consoles: []model.Console{}}
	if p.ItemType != ItemTypeConsoles {
		v.Games = FilterGames(games, p)
	}
	if p.ItemType != ItemTypeGames {
		v.Consoles = FilterConsoles(consoles, p)
	}
	return v
}

// FilterGames はゲームを絞り込み、並び替えた新しいスライスを返す。
// 適用順はカテゴリフィルタ → テキスト検索 → 並び替え。
func FilterGames(games []model.Game, p CollectionParams) []model.Game {
	term := strings.ToLower(strings.TrimSpace(p.Search))

	out := make([]model.Game, 0, len(games))
	for _, g := range games {
		// 1. カテゴリフィルタ
		if !isAll(p.Platform) && g.Platform != p.Platform {
			continue
		}
		if !isAll(p.Condition) && string(g.Condition) != p.Condition {
			continue
		}
		if !matchAvailability(p.Availability, g.ForSale, g.ForTrade) {
			continue
		}
		if !isAll(p.Collection) && g.CollectionID != p.Collection {
			continue
		}
		// 2. テキスト検索
		if term != "" && !containsAny(term, g.Title, g.Platform, g.Notes) {
			continue
		}
		out = append(out, g.Clone())
	}

	// 3. 並び替え
	SortGames(out, normalizeSort(p.Sort))
	return out
}

// FilterConsoles は本体を絞り込み、並び替えた新しいスライスを返す。
// 本体はカスタムコレクションに属さないため、コレクション指定時は空になる。
// 機種と状態のフィルタはゲームにのみ適用する。
func FilterConsoles(consoles []model.Console, p CollectionParams) []model.Console {
	term := strings.ToLower(strings.TrimSpace(p.Search))

	out := make([]model.Console, 0, len(consoles))
	if !isAll(p.Collection) {
		return out
	}
	for _, c := range consoles {
		if !matchAvailability(p.Availability, c.ForSale, c.ForTrade) {
			continue
		}
		if term != "" && !containsAny(term, c.Name, c.Manufacturer, c.Notes) {
			continue
		}
		out = append(out, c.Clone())
	}

	SortConsoles(out, normalizeSort(p.Sort))
	return out
}

// SortGames はゲームをその場で安定ソートする。
// 値を持たない項目は0（価格）または最下位（日付）として扱う。
func SortGames(games []model.Game, key SortKey) {
	switch key {
	case SortTitle:
		col := newTitleCollator()
		slices.SortStableFunc(games, func(a, b model.Game) int {
			return col.CompareString(a.Title, b.Title)
		})
	case SortReleaseDate:
		slices.SortStableFunc(games, func(a, b model.Game) int {
			return compareDatesDesc(a.ReleaseDate, b.ReleaseDate)
		})
	case SortPlatform:
		slices.SortStableFunc(games, func(a, b model.Game) int {
			return strings.Compare(a.Platform, b.Platform)
		})
	case SortCondition:
		slices.SortStableFunc(games, func(a, b model.Game) int {
			return cmp.Compare(b.Condition.Rank(), a.Condition.Rank())
		})
	case SortPriceLow:
		slices.SortStableFunc(games, func(a, b model.Game) int {
			return cmp.Compare(priceOrZero(a.Price), priceOrZero(b.Price))
		})
	case SortPriceHigh:
		slices.SortStableFunc(games, func(a, b model.Game) int {
			return cmp.Compare(priceOrZero(b.Price), priceOrZero(a.Price))
		})
	}
}

// SortConsoles は本体をその場で安定ソートする。platformはメーカー名で並べる。
func SortConsoles(consoles []model.Console, key SortKey) {
	switch key {
	case SortTitle:
		col := newTitleCollator()
		slices.SortStableFunc(consoles, func(a, b model.Console) int {
			return col.CompareString(a.Name, b.Name)
		})
	case SortReleaseDate:
		slices.SortStableFunc(consoles, func(a, b model.Console) int {
			return compareDatesDesc(a.ReleaseDate, b.ReleaseDate)
		})
	case SortPlatform:
		slices.SortStableFunc(consoles, func(a, b model.Console) int {
			return strings.Compare(a.Manufacturer, b.Manufacturer)
		})
	case SortCondition:
		slices.SortStableFunc(consoles, func(a, b model.Console) int {
			return cmp.Compare(b.Condition.Rank(), a.Condition.Rank())
		})
	case SortPriceLow:
		slices.SortStableFunc(consoles, func(a, b model.Console) int {
			return cmp.Compare(priceOrZero(a.Price), priceOrZero(b.Price))
		})
	case SortPriceHigh:
		slices.SortStableFunc(consoles, func(a, b model.Console) int {
			return cmp.Compare(priceOrZero(b.Price), priceOrZero(a.Price))
		})
	}
}

// newTitleCollator はタイトル比較用のCollatorを生成する。
// Collatorはゴルーチン間で共有できないため、ソートごとに生成する。
func newTitleCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

// compareDatesDesc は日付の新しい順に比較する。日付のない項目は後ろに置く。
// YYYY-MM-DD形式は文字列比較で日付順になる。
func compareDatesDesc(a, b string) int {
	_, okA := model.ParseDate(a)
	_, okB := model.ParseDate(b)
	switch {
	case okA && okB:
		return strings.Compare(b, a)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

func matchAvailability(a Availability, forSale, forTrade bool) bool {
	switch a {
	case AvailabilitySale:
		return forSale
	case AvailabilityTrade:
		return forTrade
	default:
		return true
	}
}

func isAll(v string) bool {
	return v == "" || v == FilterAll
}

// containsAny は小文字化済みのtermがいずれかのフィールドに含まれるかを返す。
func containsAny(term string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func priceOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

package view

import (
	"math"
	"strings"

	"github.com/hitoshi/gamevault/internal/model"
)

// GameRef は集計結果で参照するゲームの要約。
type GameRef struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Platform    string   `json:"console"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	Playtime    *float64 `json:"playtime,omitempty"`
}

func refOf(g model.Game) *GameRef {
	return &GameRef{
		ID:          g.ID,
		Title:       g.Title,
		Platform:    g.Platform,
		ReleaseDate: g.ReleaseDate,
		Playtime:    g.Playtime,
	}
}

// Summary はコレクションの集計値。
// 分母が0になる比率はすべて0とする。
type Summary struct {
	TotalGames    int `json:"totalGames"`
	TotalConsoles int `json:"totalConsoles"`
	TotalItems    int `json:"totalItems"`

	UniquePlatforms     int      `json:"uniquePlatforms"`
	UniqueTitles        int      `json:"uniqueTitles"`
	MultiPlatformTitles int      `json:"multiPlatformTitles"`
	DuplicateTitles     []string `json:"duplicateTitles"`

	TotalValue     float64 `json:"totalValue"`
	EstimatedValue float64 `json:"estimatedValue"`

	AverageRating float64 `json:"averageRating"`
	RatedCount    int     `json:"ratedCount"`

	TotalPlaytime   float64  `json:"totalPlaytime"`
	AveragePlaytime float64  `json:"averagePlaytime"`
	MostPlayed      *GameRef `json:"mostPlayed,omitempty"`

	TotalSpent   float64 `json:"totalSpent"`
	AverageSpent float64 `json:"averageSpent"`

	FavoritesCount int `json:"favoritesCount"`
	ForSaleCount   int `json:"forSaleCount"`
	ForTradeCount  int `json:"forTradeCount"`

	Oldest *GameRef `json:"oldestGame,omitempty"`
	Newest *GameRef `json:"newestGame,omitempty"`

	AverageCondition      float64 `json:"averageCondition"`
	AverageConditionLabel string  `json:"averageConditionLabel"`
	BestCondition         string  `json:"mostCommonCondition,omitempty"`

	TopPlatform     string `json:"topPlatform,omitempty"`
	PlatformCounts  Counts `json:"platformCounts"`
	ConditionCounts Counts `json:"conditionCounts"`
}

// Summarize はゲームと本体の集計値を計算する。
// overrideが指定された場合は推定価値としてそれを使い、未指定なら販売価格の合計を使う。
func Summarize(games []model.Game, consoles []model.Console, override *float64) Summary {
	s := Summary{
		TotalGames:      len(games),
		TotalConsoles:   len(consoles),
		TotalItems:      len(games) + len(consoles),
		PlatformCounts:  CountBy(games, DimensionPlatform),
		ConditionCounts: CountBy(games, DimensionCondition),
		DuplicateTitles: DuplicateTitles(games),
	}
	s.UniquePlatforms = len(s.PlatformCounts)
	s.UniqueTitles = uniqueTitleCount(games)
	s.MultiPlatformTitles = len(s.DuplicateTitles)
	s.TopPlatform = s.PlatformCounts.Top()

	// 価値
	s.TotalValue = round2(TotalValue(games, consoles))
	s.EstimatedValue = EstimatedValue(games, consoles, override)

	// 評価
	s.AverageRating, s.RatedCount = AverageRating(games)

	// プレイ時間・購入額
	var mostPlayed *model.Game
	for i := range games {
		g := &games[i]
		if g.Playtime != nil {
			s.TotalPlaytime += *g.Playtime
			if *g.Playtime > 0 && (mostPlayed == nil || *g.Playtime > *mostPlayed.Playtime) {
				mostPlayed = g
			}
		}
		if g.PurchasePrice != nil {
			s.TotalSpent += *g.PurchasePrice
		}
		if g.Favorite {
			s.FavoritesCount++
		}
		if g.ForSale {
			s.ForSaleCount++
		}
		if g.ForTrade {
			s.ForTradeCount++
		}
	}
	for _, c := range consoles {
		if c.ForSale {
			s.ForSaleCount++
		}
		if c.ForTrade {
			s.ForTradeCount++
		}
	}
	if mostPlayed != nil {
		s.MostPlayed = refOf(*mostPlayed)
	}
	s.TotalPlaytime = round1(s.TotalPlaytime)
	s.AveragePlaytime = round1(ratio(s.TotalPlaytime, len(games)))
	s.TotalSpent = round2(s.TotalSpent)
	s.AverageSpent = round2(ratio(s.TotalSpent, len(games)))

	// 最古・最新
	s.Oldest, s.Newest = OldestNewest(games)

	// 平均状態
	s.AverageCondition = ConditionScore(games)
	s.AverageConditionLabel = ConditionLabel(s.AverageCondition)
	s.BestCondition = BestCondition(games)

	return s
}

// TotalValue はゲームと本体の販売価格の合計を返す。価格のない項目は数えない。
func TotalValue(games []model.Game, consoles []model.Console) float64 {
	total := 0.0
	for _, g := range games {
		total += priceOrZero(g.Price)
	}
	for _, c := range consoles {
		total += priceOrZero(c.Price)
	}
	return total
}

// EstimatedValue は推定コレクション価値を返す。
// 設定値（override）があればそれを優先し、なければ販売価格の合計を返す。
func EstimatedValue(games []model.Game, consoles []model.Console, override *float64) float64 {
	if override != nil && *override != 0 {
		return *override
	}
	return round2(TotalValue(games, consoles))
}

// AverageRating は評価済みゲームの平均評価（小数1桁）と評価済み件数を返す。
// 評価済みゲームがない場合は0。
func AverageRating(games []model.Game) (float64, int) {
	sum, n := 0, 0
	for _, g := range games {
		if g.Rating != nil {
			sum += *g.Rating
			n++
		}
	}
	return round1(ratio(float64(sum), n)), n
}

// OldestNewest はリリース日が最も古い・新しいゲームを返す。
// 日付のないゲームは対象外。同日の場合は先に現れたゲームを返す。
func OldestNewest(games []model.Game) (oldest, newest *GameRef) {
	var oldDate, newDate string
	for _, g := range games {
		if _, ok := g.Released(); !ok {
			continue
		}
		if oldest == nil || g.ReleaseDate < oldDate {
			oldest, oldDate = refOf(g), g.ReleaseDate
		}
		if newest == nil || g.ReleaseDate > newDate {
			newest, newDate = refOf(g), g.ReleaseDate
		}
	}
	return oldest, newest
}

// DuplicateTitles は複数のアイテムとして登録されているタイトル（大文字小文字を区別しない完全一致）を
// 初出順で返す。同じIDのアイテム自身は重複として数えない。
func DuplicateTitles(games []model.Game) []string {
	type entry struct {
		title string
		ids   map[string]struct{}
	}
	var order []string
	byTitle := make(map[string]*entry)
	for _, g := range games {
		key := normalizeTitle(g.Title)
		if key == "" {
			continue
		}
		e, ok := byTitle[key]
		if !ok {
			e = &entry{title: g.Title, ids: make(map[string]struct{})}
			byTitle[key] = e
			order = append(order, key)
		}
		e.ids[g.ID] = struct{}{}
	}

	out := []string{}
	for _, key := range order {
		if e := byTitle[key]; len(e.ids) >= 2 {
			out = append(out, e.title)
		}
	}
	return out
}

func uniqueTitleCount(games []model.Game) int {
	seen := make(map[string]struct{}, len(games))
	for _, g := range games {
		if key := normalizeTitle(g.Title); key != "" {
			seen[key] = struct{}{}
		}
	}
	return len(seen)
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// ConditionScore は状態の重み（excellent=5 … poor=1）の加重平均を返す。
// 分母は重みを持つ状態のゲーム数で、該当がなければ0。
func ConditionScore(games []model.Game) float64 {
	sum, n := 0, 0
	for _, g := range games {
		if r := g.Condition.Rank(); r > 0 {
			sum += r
			n++
		}
	}
	return ratio(float64(sum), n)
}

// BestCondition はコレクション内で最もランクの高い状態のラベルを返す。ゲームがなければ空文字列。
func BestCondition(games []model.Game) string {
	var best model.Condition
	for _, g := range games {
		if g.Condition.Rank() > best.Rank() {
			best = g.Condition
		}
	}
	return best.Label()
}

// ConditionLabel は平均状態スコアを最も近い状態ラベルに変換する。
func ConditionLabel(score float64) string {
	switch {
	case score >= 4.5:
		return model.ConditionExcellent.Label()
	case score >= 3.5:
		return model.ConditionVeryGood.Label()
	case score >= 2.5:
		return model.ConditionGood.Label()
	case score >= 1.5:
		return model.ConditionFair.Label()
	default:
		return model.ConditionPoor.Label()
	}
}

// CollectionStat はカスタムコレクションごとの件数と価値。
type CollectionStat struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// CollectionStats はカスタムコレクションに属するゲームの件数と販売価格合計を返す。
// allは全ゲームを対象にする。
func CollectionStats(games []model.Game, collectionID string) CollectionStat {
	var st CollectionStat
	for _, g := range games {
		if collectionID != model.AllCollectionID && g.CollectionID != collectionID {
			continue
		}
		st.Count++
		st.Value += priceOrZero(g.Price)
	}
	st.Value = round2(st.Value)
	return st
}

func ratio(num float64, den int) float64 {
	if den == 0 {
		return 0
	}
	return num / float64(den)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

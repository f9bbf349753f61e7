package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DateLayout はリリース日・購入日などの日付文字列の形式。
const DateLayout = "2006-01-02"

// 評価の範囲
const (
	MinRating = 1
	MaxRating = 10
)

// Condition はアイテムの状態を表す。
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionVeryGood  Condition = "very-good"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// Conditions はランクの高い順に並べた全状態。
var Conditions = []Condition{
	ConditionExcellent, ConditionVeryGood, ConditionGood, ConditionFair, ConditionPoor,
}

var conditionRanks = map[Condition]int{
	ConditionExcellent: 5,
	ConditionVeryGood:  4,
	ConditionGood:      3,
	ConditionFair:      2,
	ConditionPoor:      1,
}

// Rank は状態の重み（excellent=5 … poor=1）を返す。不明な状態は0。
func (c Condition) Rank() int {
	return conditionRanks[c]
}

// Valid は定義済みの状態かを返す。
func (c Condition) Valid() bool {
	return c.Rank() > 0
}

// Label は表示用ラベルを返す（"very-good" → "Very Good"）。
func (c Condition) Label() string {
	if c == "" {
		return ""
	}
	// Caserは状態を持つため呼び出しごとに生成する
	return cases.Title(language.English).String(strings.ReplaceAll(string(c), "-", " "))
}

// CompletionStatus はゲームの進行状況を表す。
type CompletionStatus string

const (
	CompletionNotStarted CompletionStatus = "not-started"
	CompletionInProgress CompletionStatus = "in-progress"
	CompletionCompleted  CompletionStatus = "completed"
	Completion100Percent CompletionStatus = "100-percent"
	CompletionAbandoned  CompletionStatus = "abandoned"
)

// DefaultFormat はフォーマット未設定のゲームに適用される値。
const DefaultFormat = "Physical"

// Game はコレクション内のゲームを表す。
// ユーザーごとに独立したコピーを保持し、共有参照は持たない。
type Game struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Platform    string    `json:"console"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	Condition   Condition `json:"condition"`
	CoverArt    string    `json:"coverArt,omitempty"`
	Notes       string    `json:"notes"`
	ForSale     bool      `json:"forSale"`
	ForTrade    bool      `json:"forTrade"`
	Price       *float64  `json:"price"`

	// 拡張メタデータ
	Publisher        string           `json:"publisher,omitempty"`
	Developer        string           `json:"developer,omitempty"`
	Genres           []string         `json:"genre,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	Rating           *int             `json:"rating,omitempty"`
	CompletionStatus CompletionStatus `json:"completionStatus,omitempty"`
	Playtime         *float64         `json:"playtime,omitempty"`
	PurchaseDate     string           `json:"purchaseDate,omitempty"`
	PurchasePrice    *float64         `json:"purchasePrice,omitempty"`
	Favorite         bool             `json:"favorite,omitempty"`
	CollectionID     string           `json:"collectionId,omitempty"`

	// 物理的な付属情報
	OriginalBox bool     `json:"originalBox,omitempty"`
	Manual      bool     `json:"manual,omitempty"`
	Sealed      bool     `json:"sealed,omitempty"`
	Edition     string   `json:"edition,omitempty"`
	Format      string   `json:"format,omitempty"`
	Region      string   `json:"region,omitempty"`
	Barcode     string   `json:"barcode,omitempty"`
	Photos      []string `json:"photos,omitempty"`
}

// Released はリリース日をパースして返す。未設定・不正な場合はfalse。
func (g Game) Released() (time.Time, bool) {
	return ParseDate(g.ReleaseDate)
}

// Clone はスライス・ポインタを含めたディープコピーを返す。
func (g Game) Clone() Game {
	c := g
	c.Price = clonePtr(g.Price)
	c.Rating = clonePtr(g.Rating)
	c.Playtime = clonePtr(g.Playtime)
	c.PurchasePrice = clonePtr(g.PurchasePrice)
	c.Genres = cloneStrings(g.Genres)
	c.Tags = cloneStrings(g.Tags)
	c.Photos = cloneStrings(g.Photos)
	return c
}

// Console はコレクション内のゲーム機本体を表す。
type Console struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Manufacturer string    `json:"manufacturer"`
	ReleaseDate  string    `json:"releaseDate,omitempty"`
	Condition    Condition `json:"condition"`
	Image        string    `json:"image,omitempty"`
	Notes        string    `json:"notes"`
	ForSale      bool      `json:"forSale"`
	ForTrade     bool      `json:"forTrade"`
	Price        *float64  `json:"price"`
}

// Released はリリース日をパースして返す。
func (c Console) Released() (time.Time, bool) {
	return ParseDate(c.ReleaseDate)
}

// Clone はディープコピーを返す。
func (c Console) Clone() Console {
	cp := c
	cp.Price = clonePtr(c.Price)
	return cp
}

// CloneGames はゲームスライスのディープコピーを返す。nilはnilのまま。
func CloneGames(games []Game) []Game {
	if games == nil {
		return nil
	}
	out := make([]Game, len(games))
	for i, g := range games {
		out[i] = g.Clone()
	}
	return out
}

// CloneConsoles は本体スライスのディープコピーを返す。
func CloneConsoles(consoles []Console) []Console {
	if consoles == nil {
		return nil
	}
	out := make([]Console, len(consoles))
	for i, c := range consoles {
		out[i] = c.Clone()
	}
	return out
}

// ValidateRating は評価が1〜10の整数であることを検証する。nilは未評価として許可する。
func ValidateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < MinRating || *rating > MaxRating {
		return NewInvalidRatingError(*rating)
	}
	return nil
}

// ValidatePlaytime はプレイ時間が0以上であることを検証する。nilは未記録として許可する。
func ValidatePlaytime(hours *float64) error {
	if hours == nil {
		return nil
	}
	if *hours < 0 {
		return NewInvalidPlaytimeError(*hours)
	}
	return nil
}

// NormalizeTag はタグを小文字化・トリムする。
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// ParseDate は YYYY-MM-DD 形式の日付をパースする。空文字・不正な値はfalse。
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Float64 はfloat64値のポインタを返す。
func Float64(v float64) *float64 { return &v }

// Int はint値のポインタを返す。
func Int(v int) *int { return &v }

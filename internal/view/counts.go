package view

import (
	"slices"
	"strconv"

	"github.com/hitoshi/gamevault/internal/model"
)

// Count は集計キーと出現数の組。
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Counts は出現数の降順（同数は初出順）に並んだ集計結果。
type Counts []Count

// Total は全キーの出現数の合計を返す。
func (c Counts) Total() int {
	total := 0
	for _, e := range c {
		total += e.Count
	}
	return total
}

// Get はキーの出現数を返す。存在しない場合は0。
func (c Counts) Get(key string) int {
	for _, e := range c {
		if e.Key == key {
			return e.Count
		}
	}
	return 0
}

// Top は最多のキーを返す。空の場合は空文字。
func (c Counts) Top() string {
	if len(c) == 0 {
		return ""
	}
	return c[0].Key
}

// GroupCounts は値の出現数を数える。空文字は数えない。
func GroupCounts(values []string) Counts {
	out := Counts{}
	index := make(map[string]int)
	for _, v := range values {
		if v == "" {
			continue
		}
		if i, ok := index[v]; ok {
			out[i].Count++
			continue
		}
		index[v] = len(out)
		out = append(out, Count{Key: v, Count: 1})
	}

	// 安定ソートで同数のキーの初出順を保つ
	slices.SortStableFunc(out, func(a, b Count) int {
		return b.Count - a.Count
	})
	return out
}

// Dimension はゲームの集計軸。
type Dimension string

const (
	DimensionPlatform   Dimension = "platform"
	DimensionCondition  Dimension = "condition"
	DimensionGenre      Dimension = "genre"
	DimensionTag        Dimension = "tag"
	DimensionCompletion Dimension = "completion"
	DimensionPublisher  Dimension = "publisher"
	DimensionDeveloper  Dimension = "developer"
	DimensionFormat     Dimension = "format"
	DimensionYear       Dimension = "year"
)

// Dimensions は全集計軸。
var Dimensions = []Dimension{
	DimensionPlatform, DimensionCondition, DimensionGenre, DimensionTag, DimensionCompletion,
	DimensionPublisher, DimensionDeveloper, DimensionFormat, DimensionYear,
}

// CountBy はゲームを指定の軸で集計する。
// ジャンル・タグは1ゲームが複数のキーに数えられる。
// 進行状況とフォーマットは未設定時に既定値（not-started、Physical）として数える。
func CountBy(games []model.Game, dim Dimension) Counts {
	values := make([]string, 0, len(games))
	for _, g := range games {
		switch dim {
		case DimensionPlatform:
			values = append(values, g.Platform)
		case DimensionCondition:
			values = append(values, string(g.Condition))
		case DimensionGenre:
			values = append(values, g.Genres...)
		case DimensionTag:
			values = append(values, g.Tags...)
		case DimensionCompletion:
			status := g.CompletionStatus
			if status == "" {
				status = model.CompletionNotStarted
			}
			values = append(values, string(status))
		case DimensionPublisher:
			values = append(values, g.Publisher)
		case DimensionDeveloper:
			values = append(values, g.Developer)
		case DimensionFormat:
			format := g.Format
			if format == "" {
				format = model.DefaultFormat
			}
			values = append(values, format)
		case DimensionYear:
			if d, ok := g.Released(); ok {
				values = append(values, strconv.Itoa(d.Year()))
			}
		}
	}
	return GroupCounts(values)
}

// Distributions は全集計軸の集計結果を返す。
func Distributions(games []model.Game) map[Dimension]Counts {
	out := make(map[Dimension]Counts, len(Dimensions))
	for _, dim := range Dimensions {
		out[dim] = CountBy(games, dim)
	}
	return out
}

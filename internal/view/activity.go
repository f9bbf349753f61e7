package view

import (
	"fmt"
	"slices"
	"time"

	"github.com/hitoshi/gamevault/internal/model"
)

// ActivityCategory はアクティビティフィードの絞り込み。
type ActivityCategory string

const (
	ActivityAll         ActivityCategory = "all"
	ActivityTrades      ActivityCategory = "trades"
	ActivitySales       ActivityCategory = "sales"
	ActivityCollections ActivityCategory = "collections"
	ActivitySocial      ActivityCategory = "social"
)

var activityCategoryTypes = map[ActivityCategory][]model.ActivityType{
	ActivityTrades:      {model.ActivityListedTrade, model.ActivityCompletedTrade},
	ActivitySales:       {model.ActivityListedSale},
	ActivityCollections: {model.ActivityAddedGame, model.ActivityAddedConsole},
	ActivitySocial:      {model.ActivityLikedProfile},
}

// ParseActivityCategory はカテゴリ文字列を検証する。空文字はallとして扱う。
func ParseActivityCategory(s string) (ActivityCategory, error) {
	if s == "" || s == string(ActivityAll) {
		return ActivityAll, nil
	}
	c := ActivityCategory(s)
	if _, ok := activityCategoryTypes[c]; !ok {
		return "", model.NewInvalidFilterError("filter", s)
	}
	return c, nil
}

// FilterActivity はカテゴリに属するイベントを新しい順で返す。
func FilterActivity(events []model.ActivityEvent, category ActivityCategory) []model.ActivityEvent {
	types, filtered := activityCategoryTypes[category]

	out := make([]model.ActivityEvent, 0, len(events))
	for _, e := range events {
		if filtered && !slices.Contains(types, e.Type) {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b model.ActivityEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// TimeAgo はnowからtまでの経過時間を英語の相対表現で返す。
func TimeAgo(now, t time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return fmt.Sprintf("%d minutes ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d hours ago", seconds/3600)
	default:
		return fmt.Sprintf("%d days ago", seconds/86400)
	}
}

package activity

import (
	"fmt"

	"github.com/hitoshi/gamevault/internal/model"
)

var icons = map[model.ActivityType]string{
	model.ActivityAddedGame:      "🎮",
	model.ActivityAddedConsole:   "🕹️",
	model.ActivityListedSale:     "💰",
	model.ActivityListedTrade:    "🔄",
	model.ActivityLikedProfile:   "❤️",
	model.ActivityCompletedTrade: "✅",
	model.ActivityFoundRare:      "💎",
}

// Icon はイベント種別の表示アイコンを返す。
func Icon(t model.ActivityType) string {
	return icons[t]
}

// Message はイベントの説明文を返す。
func Message(e model.ActivityEvent) string {
	switch e.Type {
	case model.ActivityAddedGame, model.ActivityAddedConsole:
		return fmt.Sprintf("%s added %s to their collection", e.Username, e.Item)
	case model.ActivityListedSale:
		return fmt.Sprintf("%s listed %s for sale", e.Username, e.Item)
	case model.ActivityListedTrade:
		return fmt.Sprintf("%s listed %s for trade", e.Username, e.Item)
	case model.ActivityLikedProfile:
		return fmt.Sprintf("%s liked %s's profile", e.Username, e.Target)
	case model.ActivityCompletedTrade:
		return fmt.Sprintf("%s completed a trade with %s", e.Username, e.Target)
	case model.ActivityFoundRare:
		if e.Item == "" {
			return fmt.Sprintf("%s found a rare item", e.Username)
		}
		return fmt.Sprintf("%s found a rare item: %s", e.Username, e.Item)
	default:
		return e.Username
	}
}

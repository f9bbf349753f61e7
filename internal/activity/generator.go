// Package activity はコミュニティのアクティビティフィードを生成・配信する。
// 起動時に疑似的なイベントを生成し、出品操作などの実イベントと合わせて時系列で返す。
package activity

import (
	"math/rand"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hitoshi/gamevault/internal/model"
)

// DefaultEventCount は起動時に生成するイベント数。
const DefaultEventCount = 30

// Window は生成するイベントの時刻の範囲（現在時刻から遡る）。
const Window = 24 * time.Hour

// Generate は users の中からランダムにイベントを生成し、新しい順で返す。
// 同じ seed・now・users からは同じイベント列が生成される。
// アイテム名はユーザーのコレクションに含まれるゲーム・本体から選ぶ。
func Generate(users []model.User, count int, now time.Time, seed int64) []model.ActivityEvent {
	if len(users) == 0 || count <= 0 {
		return []model.ActivityEvent{}
	}

	rng := rand.New(rand.NewSource(seed))
	entropy := ulid.Monotonic(rng, 0)
	titles, consoles := itemPools(users)

	events := make([]model.ActivityEvent, 0, count)
	for i := 0; i < count; i++ {
		typ := model.ActivityTypes[rng.Intn(len(model.ActivityTypes))]
		user := users[rng.Intn(len(users))]
		ts := now.Add(-time.Duration(rng.Int63n(int64(Window))))

		e := model.ActivityEvent{
			ID:        ulid.MustNew(ulid.Timestamp(ts), entropy).String(),
			UserID:    user.ID,
			Username:  user.Username,
			Type:      typ,
			Timestamp: ts,
		}

		switch typ {
		case model.ActivityAddedGame, model.ActivityListedSale, model.ActivityListedTrade, model.ActivityFoundRare:
			e.Item = pick(rng, titles)
		case model.ActivityAddedConsole:
			e.Item = pick(rng, consoles)
		case model.ActivityLikedProfile, model.ActivityCompletedTrade:
			e.Target = otherUser(rng, users, user.ID).Username
		}
		events = append(events, e)
	}

	slices.SortStableFunc(events, func(a, b model.ActivityEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return events
}

// itemPools はユーザー全体のゲームタイトルと本体名を重複なく登場順に集める。
func itemPools(users []model.User) (titles, consoles []string) {
	seenTitle := map[string]bool{}
	seenConsole := map[string]bool{}
	for _, u := range users {
		for _, g := range u.Games {
			if g.Title != "" && !seenTitle[g.Title] {
				seenTitle[g.Title] = true
				titles = append(titles, g.Title)
			}
		}
		for _, c := range u.Consoles {
			if c.Name != "" && !seenConsole[c.Name] {
				seenConsole[c.Name] = true
				consoles = append(consoles, c.Name)
			}
		}
	}
	return titles, consoles
}

func pick(rng *rand.Rand, values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[rng.Intn(len(values))]
}

// otherUser は self 以外のユーザーを選ぶ。ユーザーが1人だけの場合はそのユーザーを返す。
func otherUser(rng *rand.Rand, users []model.User, self string) model.User {
	if len(users) == 1 {
		return users[0]
	}
	for {
		u := users[rng.Intn(len(users))]
		if u.ID != self {
			return u
		}
	}
}

package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hitoshi/gamevault/internal/model"
)

// ExploreSort はユーザー一覧の並び順。
type ExploreSort string

const (
	ExplorePopular ExploreSort = "popular"
	ExploreLarge   ExploreSort = "large"
	ExploreNewest  ExploreSort = "newest"
)

// ExploreAvailability は販売・交換中のアイテムを持つユーザーへの絞り込み。
type ExploreAvailability string

const (
	ExploreAvailabilityAll ExploreAvailability = "all"
	ExploreForSale         ExploreAvailability = "forsale"
	ExploreForTrade        ExploreAvailability = "fortrade"
)

// ExploreParams はユーザー一覧の絞り込み・並び替え条件。
type ExploreParams struct {
	Search       string
	Platform     string
	Sort         ExploreSort
	Availability ExploreAvailability
}

// Validate は列挙値を検証する。
func (p ExploreParams) Validate() error {
	switch p.Sort {
	case "", ExplorePopular, ExploreLarge, ExploreNewest:
	default:
		return model.NewInvalidSortError(string(p.Sort))
	}
	switch p.Availability {
	case "", ExploreAvailabilityAll, ExploreForSale, ExploreForTrade:
	default:
		return model.NewInvalidFilterError("availability", string(p.Availability))
	}
	return nil
}

// ExploreUsers は操作ユーザー以外のユーザーを絞り込み、並び替える。
// 検索はユーザー名・自己紹介・所有ゲームのタイトルを対象にする。
func ExploreUsers(users []model.User, actingUserID string, p ExploreParams) []model.User {
	term := strings.ToLower(strings.TrimSpace(p.Search))

	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.ID == actingUserID {
			continue
		}
		if term != "" && !userMatches(u, term) {
			continue
		}
		if !isAll(p.Platform) && !slices.ContainsFunc(u.Games, func(g model.Game) bool {
			return g.Platform == p.Platform
		}) {
			continue
		}
		if !userAvailable(u, p.Availability) {
			continue
		}
		out = append(out, u.Clone())
	}

	switch p.Sort {
	case ExplorePopular:
		slices.SortStableFunc(out, func(a, b model.User) int {
			return cmp.Compare(b.Likes, a.Likes)
		})
	case ExploreLarge:
		slices.SortStableFunc(out, func(a, b model.User) int {
			return cmp.Compare(len(b.Games)+len(b.Consoles), len(a.Games)+len(a.Consoles))
		})
	case ExploreNewest:
		slices.SortStableFunc(out, func(a, b model.User) int {
			return compareDatesDesc(a.JoinedDate, b.JoinedDate)
		})
	}
	return out
}

func userMatches(u model.User, term string) bool {
	if containsAny(term, u.Username, u.Bio) {
		return true
	}
	return slices.ContainsFunc(u.Games, func(g model.Game) bool {
		return containsAny(term, g.Title)
	})
}

func userAvailable(u model.User, a ExploreAvailability) bool {
	switch a {
	case ExploreForSale:
		return slices.ContainsFunc(u.Games, func(g model.Game) bool { return g.ForSale }) ||
			slices.ContainsFunc(u.Consoles, func(c model.Console) bool { return c.ForSale })
	case ExploreForTrade:
		return slices.ContainsFunc(u.Games, func(g model.Game) bool { return g.ForTrade }) ||
			slices.ContainsFunc(u.Consoles, func(c model.Console) bool { return c.ForTrade })
	default:
		return true
	}
}

// CommunityStats は操作ユーザー以外のユーザー全体の集計。
type CommunityStats struct {
	Users             int     `json:"users"`
	TotalGames        int     `json:"totalGames"`
	TotalConsoles     int     `json:"totalConsoles"`
	TotalLikes        int     `json:"totalLikes"`
	AvgCollectionSize float64 `json:"avgCollectionSize"`
}

// ExploreStats は操作ユーザーを除いたユーザー全体の集計を返す。
func ExploreStats(users []model.User, actingUserID string) CommunityStats {
	var st CommunityStats
	for _, u := range users {
		if u.ID == actingUserID {
			continue
		}
		st.Users++
		st.TotalGames += len(u.Games)
		st.TotalConsoles += len(u.Consoles)
		st.TotalLikes += u.Likes
	}
	st.AvgCollectionSize = round1(ratio(float64(st.TotalGames+st.TotalConsoles), st.Users))
	return st
}

// Platforms はユーザーが所有するゲームのプラットフォームを重複なく昇順で返す。
func Platforms(users []model.User) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, u := range users {
		for _, g := range u.Games {
			if _, ok := seen[g.Platform]; ok || g.Platform == "" {
				continue
			}
			seen[g.Platform] = struct{}{}
			out = append(out, g.Platform)
		}
	}
	slices.Sort(out)
	return out
}

// avatarCharacters はアバター未設定のユーザーに割り当てる絵文字。
var avatarCharacters = []string{
	"🍄", "🦍", "⚔️", "🎯", "🌟", "🦊", "🔥", "⚡", "🎮", "👾", "🦎", "🐢", "⭐", "🎲", "🎪",
}

// AvatarCharacter はユーザーIDの末尾の文字から決まる絵文字を返す。
func AvatarCharacter(userID string) string {
	if userID == "" {
		return avatarCharacters[0]
	}
	return avatarCharacters[int(userID[len(userID)-1])%len(avatarCharacters)]
}

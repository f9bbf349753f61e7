package view

import (
	"reflect"
	"testing"

	"github.com/hitoshi/gamevault/internal/model"
	"github.com/hitoshi/gamevault/internal/seed"
)

func userIDs(users []model.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestExploreUsers(t *testing.T) {
	users := seed.Users()

	tests := []struct {
		name string
		p    ExploreParams
		want []string
	}{
		{"excludes acting user", ExploreParams{}, []string{"user2", "user3", "user4", "user5"}},
		{"popular", ExploreParams{Sort: ExplorePopular}, []string{"user5", "user3", "user2", "user4"}},
		{"large", ExploreParams{Sort: ExploreLarge}, []string{"user5", "user2", "user3", "user4"}},
		{"newest", ExploreParams{Sort: ExploreNewest}, []string{"user4", "user3", "user2", "user5"}},
		{"search game title", ExploreParams{Search: "ZELDA"}, []string{"user5"}},
		{"search bio", ExploreParams{Search: "sega"}, []string{"user2"}},
		{"platform", ExploreParams{Platform: "Nintendo Switch"}, []string{"user2", "user4", "user5"}},
		{"platform without games", ExploreParams{Platform: "Xbox Series X"}, []string{}},
		{"for sale", ExploreParams{Availability: ExploreForSale}, []string{"user2", "user3", "user4", "user5"}},
		{"for trade", ExploreParams{Availability: ExploreForTrade}, []string{"user2", "user4", "user5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := userIDs(ExploreUsers(users, seed.CurrentUserID, tt.p))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExploreUsers = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExploreStats(t *testing.T) {
	st := ExploreStats(seed.Users(), seed.CurrentUserID)
	want := CommunityStats{Users: 4, TotalGames: 18, TotalConsoles: 7, TotalLikes: 250, AvgCollectionSize: 6.3}
	if st != want {
		t.Errorf("ExploreStats = %+v, want %+v", st, want)
	}

	if empty := ExploreStats(nil, "x"); empty.AvgCollectionSize != 0 {
		t.Errorf("empty AvgCollectionSize = %v, want 0", empty.AvgCollectionSize)
	}
}

func TestExploreParams_Validate(t *testing.T) {
	if err := (ExploreParams{Sort: ExploreNewest, Availability: ExploreForTrade}).Validate(); err != nil {
		t.Errorf("Validate がエラーを返した: %v", err)
	}
	if err := (ExploreParams{Sort: "oldest"}).Validate(); err == nil {
		t.Error("expected error for unknown sort")
	}
}

func TestAvatarCharacter(t *testing.T) {
	// '1' = 49, 49 % 15 = 4
	if got := AvatarCharacter("user1"); got != "🌟" {
		t.Errorf("AvatarCharacter(user1) = %q, want 🌟", got)
	}
	if AvatarCharacter("user1") != AvatarCharacter("other1") {
		t.Error("同じ末尾文字のIDは同じ絵文字になるべき")
	}
	if got := AvatarCharacter(""); got != "🍄" {
		t.Errorf("AvatarCharacter(\"\") = %q", got)
	}
}

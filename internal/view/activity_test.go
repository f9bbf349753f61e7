package view

import (
	"reflect"
	"testing"
	"time"

	"github.com/hitoshi/gamevault/internal/model"
)

func TestFilterActivity(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []model.ActivityEvent{
		{ID: "1", Type: model.ActivityAddedGame, Timestamp: now.Add(-3 * time.Hour)},
		{ID: "2", Type: model.ActivityListedTrade, Timestamp: now.Add(-1 * time.Hour)},
		{ID: "3", Type: model.ActivityCompletedTrade, Timestamp: now.Add(-2 * time.Hour)},
		{ID: "4", Type: model.ActivityLikedProfile, Timestamp: now.Add(-5 * time.Minute)},
		{ID: "5", Type: model.ActivityListedSale, Timestamp: now.Add(-10 * time.Hour)},
		{ID: "6", Type: model.ActivityFoundRare, Timestamp: now.Add(-4 * time.Hour)},
		{ID: "7", Type: model.ActivityAddedConsole, Timestamp: now.Add(-30 * time.Minute)},
	}

	tests := []struct {
		cat  ActivityCategory
		want []string
	}{
		{ActivityAll, []string{"4", "7", "2", "3", "1", "6", "5"}},
		{ActivityTrades, []string{"2", "3"}},
		{ActivitySales, []string{"5"}},
		{ActivityCollections, []string{"7", "1"}},
		{ActivitySocial, []string{"4"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			got := FilterActivity(events, tt.cat)
			ids := make([]string, len(got))
			for i, e := range got {
				ids[i] = e.ID
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("FilterActivity(%s) = %v, want %v", tt.cat, ids, tt.want)
			}
		})
	}
}

func TestParseActivityCategory(t *testing.T) {
	if c, err := ParseActivityCategory(""); err != nil || c != ActivityAll {
		t.Errorf("ParseActivityCategory(\"\") = %q, %v", c, err)
	}
	if c, err := ParseActivityCategory("trades"); err != nil || c != ActivityTrades {
		t.Errorf("ParseActivityCategory(trades) = %q, %v", c, err)
	}
	if _, err := ParseActivityCategory("rare"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{59 * time.Second, "just now"},
		{60 * time.Second, "1 minutes ago"},
		{45 * time.Minute, "45 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{23*time.Hour + 59*time.Minute, "23 hours ago"},
		{49 * time.Hour, "2 days ago"},
	}
	for _, tt := range tests {
		if got := TimeAgo(now, now.Add(-tt.ago)); got != tt.want {
			t.Errorf("TimeAgo(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

package view

import (
	"reflect"
	"testing"

	"github.com/hitoshi/gamevault/internal/model"
)

func TestGroupCounts_OrderByCountThenFirstSeen(t *testing.T) {
	got := GroupCounts([]string{"b", "a", "c", "a", "b", "", "d"})
	want := Counts{{"b", 2}, {"a", 2}, {"c", 1}, {"d", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupCounts = %v, want %v", got, want)
	}
	if got.Total() != 6 {
		t.Errorf("Total = %d, want 6", got.Total())
	}
	if got.Top() != "b" || got.Get("c") != 1 || got.Get("zzz") != 0 {
		t.Errorf("Top/Get unexpected: %q %d %d", got.Top(), got.Get("c"), got.Get("zzz"))
	}
}

func TestCountBy_SumEqualsOccurrences(t *testing.T) {
	games := []model.Game{
		{ID: "1", Platform: "Switch", Genres: []string{"RPG", "Action"}, Tags: []string{"co-op"}, ReleaseDate: "2017-03-03", Publisher: "Nintendo"},
		{ID: "2", Platform: "PS5", Genres: []string{"RPG"}, CompletionStatus: model.CompletionCompleted, Format: "Digital", ReleaseDate: "2022-02-25"},
		{ID: "3", Platform: "Switch", Tags: []string{"co-op", "indie"}, Developer: "Supergiant"},
	}

	tests := []struct {
		dim   Dimension
		total int
		want  Counts
	}{
		{DimensionPlatform, 3, Counts{{"Switch", 2}, {"PS5", 1}}},
		{DimensionGenre, 3, Counts{{"RPG", 2}, {"Action", 1}}},
		{DimensionTag, 3, Counts{{"co-op", 2}, {"indie", 1}}},
		{DimensionCompletion, 3, Counts{{"not-started", 2}, {"completed", 1}}},
		{DimensionFormat, 3, Counts{{"Physical", 2}, {"Digital", 1}}},
		{DimensionPublisher, 1, Counts{{"Nintendo", 1}}},
		{DimensionDeveloper, 1, Counts{{"Supergiant", 1}}},
		{DimensionYear, 2, Counts{{"2017", 1}, {"2022", 1}}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dim), func(t *testing.T) {
			got := CountBy(games, tt.dim)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CountBy(%s) = %v, want %v", tt.dim, got, tt.want)
			}
			if got.Total() != tt.total {
				t.Errorf("Total = %d, want %d", got.Total(), tt.total)
			}
		})
	}
}

func TestDistributions_HasEveryDimension(t *testing.T) {
	d := Distributions(nil)
	for _, dim := range Dimensions {
		c, ok := d[dim]
		if !ok {
			t.Errorf("missing dimension %s", dim)
		}
		if c == nil {
			t.Errorf("dimension %s should be an empty slice, not nil", dim)
		}
	}
}

package view

import (
	"reflect"
	"testing"

	"github.com/hitoshi/gamevault/internal/model"
	"github.com/hitoshi/gamevault/internal/seed"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, nil)

	if s.EstimatedValue != 0 {
		t.Errorf("EstimatedValue = %v, want 0", s.EstimatedValue)
	}
	if s.AverageRating != 0 {
		t.Errorf("AverageRating = %v, want 0", s.AverageRating)
	}
	if s.AverageCondition != 0 {
		t.Errorf("AverageCondition = %v, want 0", s.AverageCondition)
	}
	if s.AveragePlaytime != 0 || s.AverageSpent != 0 {
		t.Errorf("averages = %v, %v, want 0", s.AveragePlaytime, s.AverageSpent)
	}
	if s.Oldest != nil || s.Newest != nil || s.MostPlayed != nil {
		t.Error("expected no oldest/newest/mostPlayed for empty collection")
	}
}

func TestSummarize_SaleScenario(t *testing.T) {
	games := []model.Game{
		{ID: "1", Title: "Hades", Price: model.Float64(25.99), ForSale: true},
		{ID: "2", Title: "Stardew Valley", ForSale: false},
	}

	s := Summarize(games, nil, nil)
	if s.EstimatedValue != 25.99 {
		t.Errorf("EstimatedValue = %v, want 25.99", s.EstimatedValue)
	}
	if s.ForSaleCount != 1 {
		t.Errorf("ForSaleCount = %d, want 1", s.ForSaleCount)
	}
}

func TestSummarize_OverrideWins(t *testing.T) {
	games := []model.Game{{ID: "1", Title: "Hades", Price: model.Float64(25.99), ForSale: true}}

	s := Summarize(games, nil, model.Float64(1000))
	if s.EstimatedValue != 1000 {
		t.Errorf("EstimatedValue = %v, want 1000", s.EstimatedValue)
	}
	if s.TotalValue != 25.99 {
		t.Errorf("TotalValue = %v, want 25.99", s.TotalValue)
	}
}

func TestSummarize_SeedUser(t *testing.T) {
	u := seed.Users()[0]
	s := Summarize(u.Games, u.Consoles, nil)

	if s.TotalItems != 7 {
		t.Errorf("TotalItems = %d, want 7", s.TotalItems)
	}
	if s.TotalValue != 371.97 {
		t.Errorf("TotalValue = %v, want 371.97", s.TotalValue)
	}
	if s.ForSaleCount != 3 || s.ForTradeCount != 3 {
		t.Errorf("ForSale/ForTrade = %d/%d, want 3/3", s.ForSaleCount, s.ForTradeCount)
	}
	// excellent×3 + very-good + good = 22 / 5
	if s.AverageCondition != 4.4 || s.AverageConditionLabel != "Very Good" {
		t.Errorf("AverageCondition = %v %q, want 4.4 Very Good", s.AverageCondition, s.AverageConditionLabel)
	}
	if s.Oldest == nil || s.Oldest.ID != "g1" {
		t.Errorf("Oldest = %+v, want g1", s.Oldest)
	}
	if s.Newest == nil || s.Newest.ID != "g2" {
		t.Errorf("Newest = %+v, want g2", s.Newest)
	}
	if s.UniquePlatforms != 2 || s.TopPlatform != "Nintendo Switch" {
		t.Errorf("platforms = %d top %q", s.UniquePlatforms, s.TopPlatform)
	}
}

func TestSummarize_RatingPlaytimeSpending(t *testing.T) {
	games := []model.Game{
		{ID: "1", Title: "A", Rating: model.Int(8), Playtime: model.Float64(10.25), PurchasePrice: model.Float64(59.99), Favorite: true},
		{ID: "2", Title: "B", Rating: model.Int(7), Playtime: model.Float64(40)},
		{ID: "3", Title: "C"},
	}

	s := Summarize(games, nil, nil)
	if s.AverageRating != 7.5 || s.RatedCount != 2 {
		t.Errorf("AverageRating = %v (%d), want 7.5 (2)", s.AverageRating, s.RatedCount)
	}
	if s.TotalPlaytime != 50.3 {
		t.Errorf("TotalPlaytime = %v, want 50.3", s.TotalPlaytime)
	}
	if s.AveragePlaytime != 16.8 {
		t.Errorf("AveragePlaytime = %v, want 16.8", s.AveragePlaytime)
	}
	if s.MostPlayed == nil || s.MostPlayed.ID != "2" {
		t.Errorf("MostPlayed = %+v, want 2", s.MostPlayed)
	}
	if s.TotalSpent != 59.99 || s.AverageSpent != 20 {
		t.Errorf("spent = %v avg %v, want 59.99 avg 20", s.TotalSpent, s.AverageSpent)
	}
	if s.FavoritesCount != 1 {
		t.Errorf("FavoritesCount = %d, want 1", s.FavoritesCount)
	}
}

func TestConditionScoreAndLabel(t *testing.T) {
	games := []model.Game{
		{ID: "1", Condition: model.ConditionExcellent},
		{ID: "2", Condition: model.ConditionPoor},
	}
	score := ConditionScore(games)
	if score != 3.0 {
		t.Fatalf("ConditionScore = %v, want 3.0", score)
	}
	if got := ConditionLabel(score); got != "Good" {
		t.Errorf("ConditionLabel = %q, want Good", got)
	}

	tests := []struct {
		score float64
		want  string
	}{
		{5, "Excellent"}, {4.5, "Excellent"}, {4.49, "Very Good"}, {3.5, "Very Good"},
		{2.5, "Good"}, {1.5, "Fair"}, {1.49, "Poor"}, {0, "Poor"},
	}
	for _, tt := range tests {
		if got := ConditionLabel(tt.score); got != tt.want {
			t.Errorf("ConditionLabel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestOldestNewest_TiesKeepFirst(t *testing.T) {
	games := []model.Game{
		{ID: "a", ReleaseDate: "2020-01-01"},
		{ID: "b", ReleaseDate: "2020-01-01"},
		{ID: "c"},
	}
	oldest, newest := OldestNewest(games)
	if oldest.ID != "a" || newest.ID != "a" {
		t.Errorf("oldest=%s newest=%s, want a/a", oldest.ID, newest.ID)
	}
}

func TestDuplicateTitles(t *testing.T) {
	games := []model.Game{
		{ID: "1", Title: "Hades", Platform: "Switch"},
		{ID: "2", Title: "hades ", Platform: "PC"},
		{ID: "3", Title: "Celeste"},
		{ID: "4", Title: "Hades II"},
	}
	if got, want := DuplicateTitles(games), []string{"Hades"}; !reflect.DeepEqual(got, want) {
		t.Errorf("DuplicateTitles = %v, want %v", got, want)
	}

	// 同じアイテム自身は重複として数えない
	self := []model.Game{{ID: "1", Title: "Hades"}, {ID: "1", Title: "Hades"}}
	if got := DuplicateTitles(self); len(got) != 0 {
		t.Errorf("DuplicateTitles(self) = %v, want none", got)
	}
}

func TestCollectionStats(t *testing.T) {
	games := []model.Game{
		{ID: "1", CollectionID: "shelf", Price: model.Float64(10)},
		{ID: "2", CollectionID: "shelf"},
		{ID: "3", Price: model.Float64(5)},
	}
	if got := CollectionStats(games, "shelf"); got.Count != 2 || got.Value != 10 {
		t.Errorf("shelf = %+v", got)
	}
	if got := CollectionStats(games, model.AllCollectionID); got.Count != 3 || got.Value != 15 {
		t.Errorf("all = %+v", got)
	}
}

func TestBestCondition(t *testing.T) {
	games := []model.Game{
		{ID: "1", Condition: model.ConditionFair},
		{ID: "2", Condition: model.ConditionVeryGood},
		{ID: "3", Condition: model.ConditionGood},
	}
	if got := BestCondition(games); got != "Very Good" {
		t.Errorf("BestCondition = %q, want Very Good", got)
	}
	if got := BestCondition(nil); got != "" {
		t.Errorf("BestCondition(nil) = %q, want empty", got)
	}
}

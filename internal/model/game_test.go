package model

import (
	"errors"
	"testing"
)

func TestCondition_RankAndLabel(t *testing.T) {
	tests := []struct {
		cond  Condition
		rank  int
		label string
	}{
		{ConditionExcellent, 5, "Excellent"},
		{ConditionVeryGood, 4, "Very Good"},
		{ConditionGood, 3, "Good"},
		{ConditionFair, 2, "Fair"},
		{ConditionPoor, 1, "Poor"},
		{Condition("mint"), 0, "Mint"},
		{Condition(""), 0, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.cond), func(t *testing.T) {
			if got := tt.cond.Rank(); got != tt.rank {
				t.Errorf("Rank() = %d, want %d", got, tt.rank)
			}
			if got := tt.cond.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
			if got := tt.cond.Valid(); got != (tt.rank > 0) {
				t.Errorf("Valid() = %v, want %v", got, tt.rank > 0)
			}
		})
	}
}

func TestGame_CloneIsIndependent(t *testing.T) {
	orig := Game{
		ID:     "g1",
		Title:  "Hades",
		Price:  Float64(25.99),
		Rating: Int(9),
		Tags:   []string{"roguelike"},
	}

	c := orig.Clone()
	*c.Price = 1
	*c.Rating = 1
	c.Tags[0] = "changed"

	if *orig.Price != 25.99 {
		t.Errorf("original price mutated: %v", *orig.Price)
	}
	if *orig.Rating != 9 {
		t.Errorf("original rating mutated: %v", *orig.Rating)
	}
	if orig.Tags[0] != "roguelike" {
		t.Errorf("original tags mutated: %v", orig.Tags)
	}
}

func TestGame_Released(t *testing.T) {
	if _, ok := (Game{}).Released(); ok {
		t.Error("empty release date should not parse")
	}
	if _, ok := (Game{ReleaseDate: "03/03/2017"}).Released(); ok {
		t.Error("non ISO release date should not parse")
	}
	d, ok := (Game{ReleaseDate: "2017-03-03"}).Released()
	if !ok || d.Year() != 2017 || d.Month() != 3 || d.Day() != 3 {
		t.Errorf("Released() = %v, %v", d, ok)
	}
}

func TestValidateRating(t *testing.T) {
	for _, r := range []int{1, 5, 10} {
		if err := ValidateRating(Int(r)); err != nil {
			t.Errorf("ValidateRating(%d) がエラーを返した: %v", r, err)
		}
	}
	if err := ValidateRating(nil); err != nil {
		t.Errorf("ValidateRating(nil) がエラーを返した: %v", err)
	}
	for _, r := range []int{0, 11, -3} {
		err := ValidateRating(Int(r))
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Code != ErrCodeInvalidRating {
			t.Errorf("ValidateRating(%d) = %v, want %s", r, err, ErrCodeInvalidRating)
		}
	}
}

func TestValidatePlaytime(t *testing.T) {
	if err := ValidatePlaytime(Float64(0)); err != nil {
		t.Errorf("ValidatePlaytime(0) がエラーを返した: %v", err)
	}
	err := ValidatePlaytime(Float64(-0.5))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != ErrCodeInvalidPlaytime {
		t.Errorf("ValidatePlaytime(-0.5) = %v, want %s", err, ErrCodeInvalidPlaytime)
	}
}

func TestNormalizeTag(t *testing.T) {
	if got := NormalizeTag("  Co-Op "); got != "co-op" {
		t.Errorf("NormalizeTag = %q, want %q", got, "co-op")
	}
}

func TestPreferences_CloneIsIndependent(t *testing.T) {
	orig := Preferences{
		Wishlist:          []WishlistItem{{ID: "w1", GameTitle: "Hogwarts Legacy"}},
		CollectionValue:   Float64(100),
		CustomCollections: []CustomCollection{{ID: "c1", Name: "Favorites"}},
	}

	c := orig.Clone()
	c.Wishlist[0].GameTitle = "changed"
	c.CustomCollections[0].Name = "changed"
	*c.CollectionValue = 0

	if orig.Wishlist[0].GameTitle != "Hogwarts Legacy" {
		t.Error("wishlist shared between clones")
	}
	if orig.CustomCollections[0].Name != "Favorites" {
		t.Error("custom collections shared between clones")
	}
	if *orig.CollectionValue != 100 {
		t.Error("collection value shared between clones")
	}
}

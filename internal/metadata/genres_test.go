package metadata

import (
	"reflect"
	"testing"
)

func TestInferGenres(t *testing.T) {
	tests := []struct {
		title string
		want  []string
	}{
		{"Gran Turismo 7", []string{"Racing"}},
		{"Final Fantasy VII Remake", []string{"RPG"}},
		{"The Legend of Zelda: Breath of the Wild", []string{"Adventure"}},
		{"Mario Kart Racing Edition", []string{"Racing", "Platformer"}},
		{"Resident Evil 4", []string{"Horror"}},
		{"PORTAL 2", []string{"Puzzle"}},
		{"Street Fighter 6", []string{"Fighting"}},
		{"Stardew Valley", []string{"Action"}},
		{"", []string{"Action"}},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := InferGenres(tt.title); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("InferGenres(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want StatusClass
	}{
		{200, StatusOK},
		{401, StatusReauth},
		{429, StatusBackoff},
		{500, StatusBackoff},
		{503, StatusBackoff},
		{400, StatusFail},
		{403, StatusFail},
		{404, StatusFail},
	}
	for _, tt := range tests {
		if got := ClassifyStatus(tt.code); got != tt.want {
			t.Errorf("ClassifyStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

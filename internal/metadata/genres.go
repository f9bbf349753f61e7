package metadata

import "strings"

// DefaultGenre はどのキーワードにも一致しなかった場合のジャンル。
const DefaultGenre = "Action"

// genreKeywords はタイトルからジャンルを推定するためのキーワード表。
// 表の順序がそのまま結果の順序になる。
var genreKeywords = []struct {
	genre    string
	keywords []string
}{
	{"Racing", []string{"racing", "need for speed", "gran turismo"}},
	{"Shooter", []string{"shooter", "call of duty", "battlefield"}},
	{"Adventure", []string{"adventure", "zelda", "uncharted"}},
	{"RPG", []string{"rpg", "role", "final fantasy", "elder scrolls"}},
	{"Platformer", []string{"platformer", "mario", "sonic"}},
	{"Sports", []string{"sports", "fifa", "madden"}},
	{"Strategy", []string{"strategy", "civilization", "xcom"}},
	{"Fighting", []string{"fighting", "street fighter", "mortal kombat"}},
	{"Puzzle", []string{"puzzle", "tetris", "portal"}},
	{"Horror", []string{"horror", "resident evil", "silent hill"}},
}

// InferGenres はタイトルに含まれるキーワードからジャンルを推定する。
// 一致するものがなければ ["Action"] を返す。
func InferGenres(title string) []string {
	name := strings.ToLower(title)

	var genres []string
	for _, g := range genreKeywords {
		for _, kw := range g.keywords {
			if strings.Contains(name, kw) {
				genres = append(genres, g.genre)
				break
			}
		}
	}

	if len(genres) == 0 {
		return []string{DefaultGenre}
	}
	return genres
}

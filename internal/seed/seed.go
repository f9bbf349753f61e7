// Package seed はアプリケーション起動時に読み込む初期データ（モックデータセット）を提供する。
package seed

import "github.com/hitoshi/gamevault/internal/model"

// CurrentUserID は既定の操作ユーザーID。
const CurrentUserID = "user1"

// Games は全ユーザーのコレクションの元になるゲーム一覧を返す。呼び出しごとに新しいコピーを返す。
func Games() []model.Game {
	return []model.Game{
		{
			ID: "g1", Title: "The Legend of Zelda: Breath of the Wild", Platform: "Nintendo Switch",
			ReleaseDate: "2017-03-03", Condition: model.ConditionExcellent,
			CoverArt: "https://images.igdb.com/igdb/image/upload/t_cover_big/co1wyy.png",
			Notes:    "Amazing open-world adventure",
		},
		{
			ID: "g2", Title: "Elden Ring", Platform: "PlayStation 5",
			ReleaseDate: "2022-02-25", Condition: model.ConditionExcellent,
			CoverArt: "https://images.igdb.com/igdb/image/upload/t_cover_big/co4j80.png",
			Notes:    "From Software masterpiece",
			ForSale:  true, Price: model.Float64(45.99),
		},
		{
			ID: "g3", Title: "Super Mario Odyssey", Platform: "Nintendo Switch",
			ReleaseDate: "2017-10-27", Condition: model.ConditionVeryGood,
			CoverArt: "https://images.igdb.com/igdb/image/upload/t_cover_big/co1r76.png",
			Notes:    "One of the best Mario games",
			ForTrade: true,
		},
		{
			ID: "g4", Title: "God of War Ragnarök", Platform: "PlayStation 5",
			ReleaseDate: "2022-11-09", Condition: model.ConditionExcellent,
			CoverArt: "https://images.igdb.com/igdb/image/upload/t_cover_big/co5opw.png",
		},
		{
			ID: "g5", Title: "Hades", Platform: "Nintendo Switch",
			ReleaseDate: "2020-09-17", Condition: model.ConditionExcellent,
			CoverArt: "https://images.igdb.com/igdb/image/upload/t_cover_big/co2hpg.png",
			Notes:    "Incredible roguelike",
			ForSale:  true, ForTrade: true, Price: model.Float64(25.99),
		},
		{
			ID: "g6", Title: "Horizon Forbidden West", Platform: "PlayStation 5",
			ReleaseDate: "2022-02-18", Condition: model.ConditionVeryGood,
			CoverArt: "https://images.igdb.com/igdb/image/upload/t_cover_big/co4bji.png",
		},
		{
			ID: "g7", Title: "Stardew Valley", Platform: "Nintendo Switch",
			ReleaseDate: "2017-10-05", Condition: model.ConditionGood,
			CoverArt: "https://images.igdb.com/igdb/image/upload/t_cover_big/co2rpf.png",
			Notes:    "Addictive farming sim",
			ForTrade: true,
		},
		{
			ID: "g8", Title: "Final Fantasy VII Remake", Platform: "PlayStation 5",
			ReleaseDate: "2020-04-10", Condition: model.ConditionExcellent,
			CoverArt: "https://images.igdb.com/igdb/image/upload/t_cover_big/co1rkd.png",
			ForSale:  true, Price: model.Float64(35.99),
		},
	}
}

// Consoles はゲーム機本体の一覧を返す。呼び出しごとに新しいコピーを返す。
func Consoles() []model.Console {
	return []model.Console{
		{
			ID: "c1", Name: "PlayStation 5", Manufacturer: "Sony",
			ReleaseDate: "2020-11-12", Condition: model.ConditionExcellent,
			Image: "https://upload.wikimedia.org/wikipedia/commons/thumb/1/1b/PlayStation_5_and_DualSense_with_transparent_background.png/640px-PlayStation_5_and_DualSense_with_transparent_background.png",
			Notes: "With extra controller",
		},
		{
			ID: "c2", Name: "Nintendo Switch", Manufacturer: "Nintendo",
			ReleaseDate: "2017-03-03", Condition: model.ConditionVeryGood,
			Image: "https://upload.wikimedia.org/wikipedia/commons/thumb/7/76/Nintendo-Switch-Console-Docked-wJoyConRB.jpg/640px-Nintendo-Switch-Console-Docked-wJoyConRB.jpg",
			Notes:   "OLED Model",
			ForSale: true, Price: model.Float64(299.99),
		},
		{
			ID: "c3", Name: "Xbox Series X", Manufacturer: "Microsoft",
			ReleaseDate: "2020-11-10", Condition: model.ConditionExcellent,
			Image:    "https://upload.wikimedia.org/wikipedia/commons/7/7d/Xbox_Series_X_%26_S.png",
			ForTrade: true,
		},
	}
}

// Users は5人のユーザーを返す。各ユーザーはゲーム・本体の独立したコピーを持つ。
func Users() []model.User {
	games := Games()
	consoles := Consoles()

	pickGames := func(idx ...int) []model.Game {
		out := make([]model.Game, 0, len(idx))
		for _, i := range idx {
			out = append(out, games[i].Clone())
		}
		return out
	}
	pickConsoles := func(idx ...int) []model.Console {
		out := make([]model.Console, 0, len(idx))
		for _, i := range idx {
			out = append(out, consoles[i].Clone())
		}
		return out
	}

	return []model.User{
		{
			ID:         "user1",
			Username:   "GameMaster89",
			Bio:        "Passionate collector with 15+ years of gaming experience. Love RPGs and indie games!",
			Games:      pickGames(0, 1, 2, 4, 6),
			Consoles:   pickConsoles(0, 1),
			Likes:      42,
			JoinedDate: "2020-01-15",
		},
		{
			ID:         "user2",
			Username:   "RetroGamer",
			Bio:        "Collecting retro games since 1995. Specializing in Nintendo and Sega classics.",
			Games:      pickGames(2, 3, 5, 7),
			Consoles:   pickConsoles(1, 2),
			Likes:      38,
			JoinedDate: "2019-06-20",
		},
		{
			ID:         "user3",
			Username:   "PlayStationFan",
			Bio:        "Sony PlayStation enthusiast. Love exclusives and AAA titles.",
			Games:      pickGames(1, 3, 5, 7),
			Consoles:   pickConsoles(0),
			Likes:      56,
			JoinedDate: "2021-03-10",
		},
		{
			ID:         "user4",
			Username:   "IndieLover",
			Bio:        "Supporting indie developers and discovering hidden gems.",
			Games:      pickGames(4, 6),
			Consoles:   pickConsoles(1),
			Likes:      29,
			JoinedDate: "2022-08-05",
		},
		{
			ID:         "user5",
			Username:   "CollectionKing",
			Bio:        "Building the ultimate game collection, one game at a time.",
			Games:      pickGames(0, 1, 2, 3, 4, 5, 6, 7),
			Consoles:   pickConsoles(0, 1, 2),
			Likes:      127,
			JoinedDate: "2018-11-30",
		},
	}
}

// Preferences はユーザーごとの設定を返す。
func Preferences() map[string]model.Preferences {
	return map[string]model.Preferences{
		CurrentUserID: {
			Wishlist: []model.WishlistItem{
				{ID: "w1", GameTitle: "God of War Ragnarök", Platform: "PlayStation 5", AddedDate: "2024-01-15"},
				{ID: "w2", GameTitle: "Hogwarts Legacy", Platform: "PlayStation 5", AddedDate: "2024-01-20"},
			},
			Following:       []string{"user2", "user5"},
			Followers:       []string{"user3", "user4"},
			CollectionValue: model.Float64(2450.99),
			PersonalQuote:   "🎮 Welcome to my collection! I'm a passionate collector who loves both retro and modern games. Feel free to browse, tag, and comment on anything you like! Every game tells a story. 🎯",
		},
		"user2": {
			Following:       []string{"user1"},
			Followers:       []string{"user1"},
			CollectionValue: model.Float64(1890.50),
		},
		"user3": {
			Following:       []string{"user1"},
			CollectionValue: model.Float64(2100.00),
		},
		"user4": {
			CollectionValue: model.Float64(950.25),
		},
		"user5": {
			Following:       []string{"user1"},
			Followers:       []string{"user1"},
			CollectionValue: model.Float64(3200.75),
		},
	}
}

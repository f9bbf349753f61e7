// Package collection はコレクションの変更操作とセッション単位のコレクションサービスを提供する。
package collection

import "github.com/hitoshi/gamevault/internal/model"

// ToggleGameSale は指定ゲームの販売フラグを反転した新しいスライスを返す。
// オンにした場合、価格は以前の値（未設定なら0）になり、オフにした場合は価格を消去する。
// 他のゲームは変更しない。入力スライスは変更しない。
func ToggleGameSale(games []model.Game, id string) ([]model.Game, error) {
	out := model.CloneGames(games)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		out[i].ForSale = !out[i].ForSale
		out[i].Price = salePrice(out[i].ForSale, out[i].Price)
		return out, nil
	}
	return nil, model.NewItemNotFoundError(id)
}

// ToggleConsoleSale はゲーム機本体の販売フラグを反転する。価格の扱いは ToggleGameSale と同じ。
func ToggleConsoleSale(consoles []model.Console, id string) ([]model.Console, error) {
	out := model.CloneConsoles(consoles)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		out[i].ForSale = !out[i].ForSale
		out[i].Price = salePrice(out[i].ForSale, out[i].Price)
		return out, nil
	}
	return nil, model.NewItemNotFoundError(id)
}

// ToggleGameTrade は指定ゲームのトレードフラグのみを反転する。
func ToggleGameTrade(games []model.Game, id string) ([]model.Game, error) {
	out := model.CloneGames(games)
	for i := range out {
		if out[i].ID == id {
			out[i].ForTrade = !out[i].ForTrade
			return out, nil
		}
	}
	return nil, model.NewItemNotFoundError(id)
}

// ToggleConsoleTrade はゲーム機本体のトレードフラグのみを反転する。
func ToggleConsoleTrade(consoles []model.Console, id string) ([]model.Console, error) {
	out := model.CloneConsoles(consoles)
	for i := range out {
		if out[i].ID == id {
			out[i].ForTrade = !out[i].ForTrade
			return out, nil
		}
	}
	return nil, model.NewItemNotFoundError(id)
}

func salePrice(forSale bool, prev *float64) *float64 {
	if !forSale {
		return nil
	}
	if prev == nil {
		return model.Float64(0)
	}
	return prev
}

package collection

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hitoshi/gamevault/internal/model"
)

// assertAPIErrorCode はエラーが指定コードの APIError であることを検証する。
func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError を期待したが %v (%T)", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %s, want %s", apiErr.Code, code)
	}
}

func sampleGames() []model.Game {
	return []model.Game{
		{ID: "hades", Title: "Hades", ForSale: true, Price: model.Float64(25.99)},
		{ID: "stardew", Title: "Stardew Valley"},
		{ID: "celeste", Title: "Celeste", Price: model.Float64(30)},
	}
}

func TestToggleGameSale_OffClearsPrice(t *testing.T) {
	games := sampleGames()

	got, err := ToggleGameSale(games, "hades")
	if err != nil {
		t.Fatalf("ToggleGameSale がエラーを返した: %v", err)
	}
	if got[0].ForSale || got[0].Price != nil {
		t.Errorf("販売オフ後 = ForSale %v / Price %v, want false / nil", got[0].ForSale, got[0].Price)
	}

	// 入力は変更されない
	if !games[0].ForSale || *games[0].Price != 25.99 {
		t.Error("入力スライスが変更された")
	}
	// 他のアイテムは変更されない
	if !reflect.DeepEqual(got[1], games[1]) || !reflect.DeepEqual(got[2], games[2]) {
		t.Error("対象外のゲームが変更された")
	}
}

func TestToggleGameSale_TwiceRestoresFlagWithPrice(t *testing.T) {
	games := sampleGames()

	once, _ := ToggleGameSale(games, "stardew")
	if !once[1].ForSale || once[1].Price == nil || *once[1].Price != 0 {
		t.Errorf("未設定価格での販売オン = %v / %v, want true / 0", once[1].ForSale, once[1].Price)
	}

	twice, _ := ToggleGameSale(once, "stardew")
	if twice[1].ForSale || twice[1].Price != nil {
		t.Errorf("2回目 = %v / %v, want false / nil", twice[1].ForSale, twice[1].Price)
	}

	back, _ := ToggleGameSale(twice, "stardew")
	if !back[1].ForSale || back[1].Price == nil {
		t.Errorf("再度オン = %v / %v, want true / non-nil", back[1].ForSale, back[1].Price)
	}
}

func TestToggleGameSale_KeepsPreviousPrice(t *testing.T) {
	got, _ := ToggleGameSale(sampleGames(), "celeste")
	if !got[2].ForSale || got[2].Price == nil || *got[2].Price != 30 {
		t.Errorf("以前の価格を保持するべき: %v / %v", got[2].ForSale, got[2].Price)
	}
}

func TestToggleGameTrade_FlipsOnlyTradeFlag(t *testing.T) {
	got, err := ToggleGameTrade(sampleGames(), "hades")
	if err != nil {
		t.Fatalf("ToggleGameTrade がエラーを返した: %v", err)
	}
	if !got[0].ForTrade {
		t.Error("ForTrade = false, want true")
	}
	if !got[0].ForSale || *got[0].Price != 25.99 {
		t.Error("販売フラグ・価格は変更されないはず")
	}
}

func TestToggle_UnknownID(t *testing.T) {
	_, err := ToggleGameSale(sampleGames(), "missing")
	assertAPIErrorCode(t, err, model.ErrCodeItemNotFound)

	_, err = ToggleGameTrade(sampleGames(), "missing")
	assertAPIErrorCode(t, err, model.ErrCodeItemNotFound)

	_, err = ToggleConsoleSale(nil, "missing")
	assertAPIErrorCode(t, err, model.ErrCodeItemNotFound)

	_, err = ToggleConsoleTrade(nil, "missing")
	assertAPIErrorCode(t, err, model.ErrCodeItemNotFound)
}

func TestToggleConsoleSaleAndTrade(t *testing.T) {
	consoles := []model.Console{
		{ID: "ps5", Name: "PlayStation 5"},
		{ID: "switch", Name: "Nintendo Switch", ForSale: true, Price: model.Float64(299.99)},
	}

	got, err := ToggleConsoleSale(consoles, "switch")
	if err != nil {
		t.Fatalf("ToggleConsoleSale がエラーを返した: %v", err)
	}
	if got[1].ForSale || got[1].Price != nil {
		t.Errorf("販売オフ後 = %v / %v", got[1].ForSale, got[1].Price)
	}

	got, _ = ToggleConsoleSale(got, "ps5")
	if !got[0].ForSale || got[0].Price == nil || *got[0].Price != 0 {
		t.Errorf("販売オン後 = %v / %v", got[0].ForSale, got[0].Price)
	}

	got, _ = ToggleConsoleTrade(got, "ps5")
	if !got[0].ForTrade || !got[0].ForSale {
		t.Errorf("トレードオン後 = %+v", got[0])
	}
}

// Package export はコレクションを表計算ブック（.xlsx）として書き出し・読み込みする。
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hitoshi/gamevault/internal/model"
)

const (
	SheetGames    = "Games"
	SheetConsoles = "Consoles"

	// ContentType は .xlsx のMIMEタイプ。
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// column はシートの1列の見出しと幅。
type column struct {
	header string
	width  float64
}

var gameColumns = []column{
	{"Title", 35},
	{"Platform", 20},
	{"Release Date", 15},
	{"Condition", 15},
	{"Notes", 40},
}

var consoleColumns = []column{
	{"Name", 30},
	{"Manufacturer", 20},
	{"Release Date", 15},
	{"Condition", 15},
	{"Notes", 40},
}

// Workbook はブックから読み戻したアイテム。書き出す列のみが設定される。
type Workbook struct {
	Games    []model.Game
	Consoles []model.Console
}

// Filename はダウンロード用のファイル名 "{ユーザー名}_{YYYY-MM-DD}.xlsx" を返す。
// ユーザー名が空の場合は "Collection" を使う。
func Filename(username string, now time.Time) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(username))
	if name == "" {
		name = "Collection"
	}
	return fmt.Sprintf("%s_%s.xlsx", name, now.Format(model.DateLayout))
}

// WriteWorkbook はゲームと本体をそれぞれ Games・Consoles シートに書き出す。
// 空の側のシートは作らない。両方とも空の場合は見出し行のみの Games シートを作る。
func WriteWorkbook(w io.Writer, games []model.Game, consoles []model.Console) error {
	f := excelize.NewFile()
	defer f.Close()

	// 既定シートを最初に書き出すシートとして使う
	first := SheetGames
	if len(games) == 0 && len(consoles) > 0 {
		first = SheetConsoles
	}
	if err := f.SetSheetName(f.GetSheetName(0), first); err != nil {
		return fmt.Errorf("シート名の設定に失敗しました: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("スタイルの作成に失敗しました: %w", err)
	}

	if len(games) > 0 || len(consoles) == 0 {
		rows := make([][]any, 0, len(games))
		for _, g := range games {
			rows = append(rows, []any{g.Title, g.Platform, g.ReleaseDate, g.Condition.Label(), g.Notes})
		}
		if err := writeSheet(f, SheetGames, gameColumns, rows, bold); err != nil {
			return err
		}
	}

	if len(consoles) > 0 {
		if first != SheetConsoles {
			if _, err := f.NewSheet(SheetConsoles); err != nil {
				return fmt.Errorf("シートの作成に失敗しました: %w", err)
			}
		}
		rows := make([][]any, 0, len(consoles))
		for _, c := range consoles {
			rows = append(rows, []any{c.Name, c.Manufacturer, c.ReleaseDate, c.Condition.Label(), c.Notes})
		}
		if err := writeSheet(f, SheetConsoles, consoleColumns, rows, bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("ブックの書き出しに失敗しました: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, cols []column, rows [][]any, headerStyle int) error {
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			return fmt.Errorf("列幅の設定に失敗しました: %w", err)
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("見出し行の書き込みに失敗しました: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("見出し行のスタイル設定に失敗しました: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s シート %d 行目の書き込みに失敗しました: %w", sheet, i+2, err)
		}
	}
	return nil
}

// ReadWorkbook は WriteWorkbook が書き出したブックを読み込む。
// 存在しないシートは空として扱う。状態は表示ラベルから元の値に戻す。
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ブックの読み込みに失敗しました: %w", err)
	}
	defer f.Close()

	wb := &Workbook{Games: []model.Game{}, Consoles: []model.Console{}}

	gameRows, err := readRows(f, SheetGames, len(gameColumns))
	if err != nil {
		return nil, err
	}
	for _, row := range gameRows {
		wb.Games = append(wb.Games, model.Game{
			Title:       row[0],
			Platform:    row[1],
			ReleaseDate: row[2],
			Condition:   parseConditionLabel(row[3]),
			Notes:       row[4],
		})
	}

	consoleRows, err := readRows(f, SheetConsoles, len(consoleColumns))
	if err != nil {
		return nil, err
	}
	for _, row := range consoleRows {
		wb.Consoles = append(wb.Consoles, model.Console{
			Name:         row[0],
			Manufacturer: row[1],
			ReleaseDate:  row[2],
			Condition:    parseConditionLabel(row[3]),
			Notes:        row[4],
		})
	}
	return wb, nil
}

// readRows は見出し行を除いたデータ行を返す。
// 末尾の空セルは省略されて返るため、各行を width 列に揃える。
func readRows(f *excelize.File, sheet string, width int) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("シートの検索に失敗しました: %w", err)
	}
	if idx < 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s シートの読み込みに失敗しました: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	out := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		padded := make([]string, width)
		copy(padded, row)
		out = append(out, padded)
	}
	return out, nil
}

// parseConditionLabel は "Very Good" を "very-good" に戻す。
func parseConditionLabel(label string) model.Condition {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	return model.Condition(strings.ReplaceAll(strings.ToLower(label), " ", "-"))
}

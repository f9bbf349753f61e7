// Command gamevault はゲームコレクション管理APIを起動する。
//
//	gamevault [serve]                  APIサーバーを起動する
//	gamevault worker                   バックグラウンドジョブを1回実行する
//	gamevault export [userID] [path]   コレクションを.xlsxに書き出す
//	gamevault healthcheck              /health を確認する
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/gamevault/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker はバックグラウンドジョブを1回ずつ実行して終了することを示す。
	CommandWorker Command = "worker"
	// CommandExport はコレクションを.xlsxファイルに書き出すことを示す。
	CommandExport Command = "export"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "worker":
		return CommandWorker
	case "serve":
		return CommandServe
	case "export":
		return CommandExport
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// commandArgs はサブコマンド名を除いた残りの引数を返す。
func commandArgs(args []string) []string {
	if len(args) <= 1 {
		return nil
	}
	return args[1:]
}

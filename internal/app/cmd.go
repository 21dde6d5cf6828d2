package app

import "strings"

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモード。SEED_ON_STARTが有効なら起動時にデモユーザーを投入する。
	CommandServe Command = "serve"
	// CommandMigrate はusersとclaim_historyのマイグレーションを適用する。
	CommandMigrate Command = "migrate"
	// CommandSeed はストアが空の場合のみデモユーザーを投入する。
	CommandSeed Command = "seed"
	// CommandHealthcheck は稼働中サーバーの/healthを叩く。distroless環境のDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

var knownCommands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandMigrate):     CommandMigrate,
	string(CommandSeed):        CommandSeed,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand は先頭の引数からサブコマンドを解析する。大文字小文字は区別しない。
// 引数が空、またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd, ok := knownCommands[strings.ToLower(strings.TrimSpace(args[0]))]; ok {
		return cmd
	}
	return CommandServe
}

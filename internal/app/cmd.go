package app

import "fmt"

// Command はアプリケーションの起動モード（サブコマンド）を表す。
type Command string

const (
	// CommandServe はWebフロント（BFF）サーバーとして起動することを示す。
	CommandServe Command = "serve"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"

	// 以下はCLIクライアントのサブコマンド。資格情報はファイルに保存する。
	CommandSignUp Command = "signup"
	CommandSignIn Command = "signin"
	CommandLogout Command = "logout"
	CommandStatus Command = "status"
	CommandPages  Command = "pages"
	CommandPage   Command = "page"
	CommandPublic Command = "public"
)

// ParseCommand はコマンドライン引数からサブコマンドと残りの引数を解析する。
// 引数が空の場合はCommandServeを返す。
func ParseCommand(args []string) (Command, []string, error) {
	if len(args) == 0 {
		return CommandServe, nil, nil
	}

	cmd := Command(args[0])
	switch cmd {
	case CommandServe, CommandHealthcheck,
		CommandSignUp, CommandSignIn, CommandLogout, CommandStatus,
		CommandPages, CommandPage, CommandPublic:
		return cmd, args[1:], nil
	default:
		return "", nil, fmt.Errorf("unknown command %q", args[0])
	}
}

// IsClient はCLIクライアントとして動作するサブコマンドかを返す。
func (c Command) IsClient() bool {
	switch c {
	case CommandServe, CommandHealthcheck:
		return false
	default:
		return true
	}
}

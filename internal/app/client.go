package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/portallink/internal/apiclient"
	"github.com/hitoshi/portallink/internal/authflow"
	"github.com/hitoshi/portallink/internal/config"
	"github.com/hitoshi/portallink/internal/model"
	"github.com/hitoshi/portallink/internal/security"
	"github.com/hitoshi/portallink/internal/session"
)

// printNavigator は遷移先の画面をJSONで出力するsession.Navigator。
type printNavigator struct {
	out io.Writer
}

func (n printNavigator) Navigate(path string) error {
	return writeResult(n.out, map[string]string{"navigate": path})
}

// cliClient はCLIサブコマンドの実行に必要な依存をまとめる。
type cliClient struct {
	api    *apiclient.Client
	store  *session.Store
	out    io.Writer
	logger *slog.Logger
}

// runClient はCLIクライアントのサブコマンドを実行する。
// トークンはcfg.CredentialsFileに保存され、コマンドをまたいで引き継がれる。
func runClient(ctx context.Context, cfg *config.Config, cmd Command, args []string, out io.Writer, log *slog.Logger) error {
	store := session.NewStore(
		session.NewFileStore(cfg.CredentialsFile, nil, log),
		printNavigator{out: out},
		log,
	)
	api := apiclient.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}, log, nil)

	c := &cliClient{
		api:    api.WithTokenSource(store),
		store:  store,
		out:    out,
		logger: log,
	}

	switch cmd {
	case CommandSignUp:
		return c.signUp(ctx, args)
	case CommandSignIn:
		return c.signIn(ctx, args)
	case CommandLogout:
		c.store.Logout()
		return nil
	case CommandStatus:
		return writeResult(out, map[string]any{
			"authenticated": store.IsAuthenticated(),
			"api_base":      api.BaseURL(),
		})
	case CommandPages:
		return c.pages(ctx)
	case CommandPage:
		return c.page(ctx, args)
	case CommandPublic:
		return c.public(ctx, args)
	default:
		return fmt.Errorf("%s is not a client command", cmd)
	}
}

func (c *cliClient) newController() *authflow.Controller {
	return authflow.NewController(c.api, c.store, printNavigator{out: c.out}, nil, c.logger)
}

func (c *cliClient) signUp(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(string(CommandSignUp), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("signup: %w", err)
	}

	ctrl := c.newController()
	if ctrl.SignUp(ctx, &model.SignUpRequest{Name: *name, Email: *email, Password: *password}) {
		return nil
	}
	msg, _ := ctrl.Error()
	return fmt.Errorf("signup: %s", msg)
}

func (c *cliClient) signIn(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(string(CommandSignIn), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("signin: %w", err)
	}

	ctrl := c.newController()
	if ctrl.SignIn(ctx, &model.SignInRequest{Email: *email, Password: *password}) {
		return nil
	}
	msg, _ := ctrl.Error()
	return fmt.Errorf("signin: %s", msg)
}

func (c *cliClient) pages(ctx context.Context) error {
	resp, err := c.api.ListPortalPages(ctx)
	if err != nil {
		return c.apiFailure(CommandPages, err)
	}
	if resp.PortalPages == nil {
		resp.PortalPages = []model.PortalPageSummary{}
	}
	return writeResult(c.out, resp)
}

func (c *cliClient) page(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(string(CommandPage), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.Int("id", 0, "portal page id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("page: %w", err)
	}
	if *id <= 0 {
		return errors.New("page: -id is required")
	}

	resp, err := c.api.GetPortalPageByID(ctx, *id)
	if err != nil {
		return c.apiFailure(CommandPage, err)
	}
	return writeResult(c.out, resp)
}

// public は公開Portal Pageを認証なしで取得し、表示用に無害化して出力する。
func (c *cliClient) public(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(string(CommandPublic), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	slug := fs.String("slug", "", "portal page slug")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("public: %w", err)
	}
	if *slug == "" {
		return errors.New("public: -slug is required")
	}

	resp, err := c.api.WithTokenSource(nil).GetPortalPageBySlug(ctx, *slug)
	if err != nil {
		return c.apiFailure(CommandPublic, err)
	}
	return writeResult(c.out, security.NewContentSanitizer().SanitizePage(resp))
}

// apiFailure はAPIエラーをコマンドのエラーとして返す。
// 401の場合は保存済みトークンが無効なため破棄する。
func (c *cliClient) apiFailure(cmd Command, err error) error {
	apiErr := model.AsAPIError(err)
	if apiErr.Kind() == model.ErrUnauthorized {
		c.store.ClearToken()
	}
	return fmt.Errorf("%s: %w", cmd, apiErr)
}

// writeResult はvをインデント付きJSONで出力する。
func writeResult(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

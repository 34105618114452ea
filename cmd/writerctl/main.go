// Command writerctl drives one dashboard workspace from the terminal: sign in,
// inspect the profile, run the writing tools and buy a plan.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"dashboard/internal/i18n"
	"dashboard/internal/infra"
	"dashboard/internal/providers/payments"
	"dashboard/internal/workspace"
)

// cliState is shared by every command run in this process, so a shell session
// keeps one backend session.
type cliState struct {
	backendURL string
	email      string
	password   string
	lang       string

	ws      *workspace.Workspace
	printer *message.Printer
	logger  infra.Logger
}

func main() {
	// Optional; .env.local wins because godotenv never overrides a set variable.
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
	st := &cliState{}
	defer st.close()
	if err := newRootCmd(st).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(st *cliState) *cobra.Command {
	root := &cobra.Command{
		Use:           "writerctl",
		Short:         "WriteAI from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "plans", "help", "completion":
				st.initPrinter()
				return nil
			}
			return st.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&st.backendURL, "backend", st.backendURL, "backend base url (defaults to BACKEND_URL)")
	root.PersistentFlags().StringVar(&st.email, "email", firstNonEmpty(st.email, os.Getenv("WRITERCTL_EMAIL")), "account email")
	root.PersistentFlags().StringVar(&st.password, "password", firstNonEmpty(st.password, os.Getenv("WRITERCTL_PASSWORD")), "account password")
	root.PersistentFlags().StringVar(&st.lang, "lang", firstNonEmpty(st.lang, os.Getenv("LANG")), "output language (en, id)")

	root.AddCommand(
		newLoginCmd(st),
		newRegisterCmd(st),
		newLogoutCmd(st),
		newProfileCmd(st),
		newGenerateCmd(st),
		newSummarizeCmd(st),
		newCorrectCmd(st),
		newPlansCmd(st),
		newCheckoutCmd(st),
		newShellCmd(st),
	)
	return root
}

func (st *cliState) initPrinter() {
	if st.printer == nil {
		st.printer = i18n.Printer(i18n.Match(posixLocale(st.lang)))
	}
}

// open builds the workspace on first use and resolves its session. When
// credentials were given and the session is not live, it signs in.
func (st *cliState) open(ctx context.Context) error {
	st.initPrinter()
	if st.ws != nil {
		return nil
	}
	if st.backendURL != "" {
		if err := os.Setenv("BACKEND_URL", st.backendURL); err != nil {
			return err
		}
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	st.logger = infra.NewLogger("cli")
	processor, err := payments.New(cfg.PaymentProcessor, cfg.StripeKey, &st.logger)
	if err != nil {
		return err
	}
	ws, err := workspace.New("cli", workspace.Options{
		BackendURL:     cfg.BackendURL,
		BackendTimeout: cfg.BackendTimeout,
		Processor:      processor,
		Reconcile:      cfg.CreditsReconcile,
		Logger:         &st.logger,
	})
	if err != nil {
		return err
	}
	st.ws = ws
	if ctx == nil {
		ctx = context.Background()
	}
	if snap := ws.Start(ctx); !snap.Authenticated() && st.email != "" && st.password != "" {
		if err := ws.Session.Login(ctx, st.email, st.password); err != nil {
			st.logger.Debug().Err(err).Msg("automatic login failed")
		}
	}
	return nil
}

func (st *cliState) close() {
	if st.ws != nil {
		st.ws.Close()
	}
}

// requireSession fails commands that need a signed-in account.
func (st *cliState) requireSession() error {
	if st.ws == nil || !st.ws.Session.Snapshot().Authenticated() {
		return errNotSignedIn
	}
	return nil
}

var errNotSignedIn = errors.New("not signed in: run `writerctl login --email ... --password ...` or pass --email/--password")

func (st *cliState) printf(w io.Writer, key string, args ...any) {
	st.initPrinter()
	fmt.Fprintln(w, st.printer.Sprintf(key, args...))
}

// posixLocale turns LANG values such as id_ID.UTF-8 into BCP 47 tags.
func posixLocale(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	return strings.ReplaceAll(v, "_", "-")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

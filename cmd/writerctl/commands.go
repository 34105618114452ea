package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dashboard/internal/backend"
	"dashboard/internal/domain"
	"dashboard/internal/i18n"
	"dashboard/internal/providers/payments"
	"dashboard/internal/tools"
)

func newLoginCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with --email and --password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if st.email == "" || st.password == "" {
				return errors.New("login needs --email and --password")
			}
			if st.ws.Session.Snapshot().Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Already signed in.")
				return nil
			}
			if err := st.ws.Session.Login(cmd.Context(), st.email, st.password); err != nil {
				return userError(err, st.printer.Sprintf(i18n.LoginFailed))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			return nil
		},
	}
}

func newRegisterCmd(st *cliState) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with --username, --email and --password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || st.email == "" || st.password == "" {
				return errors.New("register needs --username, --email and --password")
			}
			if err := st.ws.Session.Register(cmd.Context(), username, st.email, st.password); err != nil {
				return userError(err, st.printer.Sprintf(i18n.RegisterFailed))
			}
			st.printf(cmd.OutOrStdout(), i18n.Registered)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account username")
	return cmd
}

func newLogoutCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.ws.Logout(cmd.Context()); err != nil {
				st.logger.Warn().Err(err).Msg("backend logout failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newProfileCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the account and its credit balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.requireSession(); err != nil {
				return err
			}
			p, err := st.ws.Profile(cmd.Context())
			if err != nil {
				return userError(err, "Failed to fetch profile")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Welcome, %s\n", p.Greeting())
			fmt.Fprintln(out, p.Email)
			st.printf(out, i18n.Subscription, p.DisplayPlan()+" ("+p.DisplayStatus()+")")
			st.printf(out, i18n.RemainingCredits, p.Credits)
			st.printf(out, i18n.CreditsUsed, p.CreditsUsed)
			if !p.CreatedAt.IsZero() {
				st.printf(out, i18n.MemberSince, p.CreatedAt.Format("January 2, 2006"))
			}
			return nil
		},
	}
}

func newGenerateCmd(st *cliState) *cobra.Command {
	var in tools.GeneratorInput
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate content for --heading in --tone",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.requireSession(); err != nil {
				return err
			}
			return runTool(st, cmd, st.ws.Generator, in)
		},
	}
	cmd.Flags().StringVar(&in.Heading, "heading", "", "topic to write about")
	cmd.Flags().StringVar(&in.Tone, "tone", "professional", "one of "+strings.Join(domain.Tones, ", "))
	return cmd
}

func newSummarizeCmd(st *cliState) *cobra.Command {
	var words int
	cmd := &cobra.Command{
		Use:   "summarize [text]",
		Short: "Summarize text given as arguments or on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.requireSession(); err != nil {
				return err
			}
			text, err := textInput(cmd, args)
			if err != nil {
				return err
			}
			return runTool(st, cmd, st.ws.Summarizer, tools.SummarizerInput{Text: text, Words: words})
		},
	}
	cmd.Flags().IntVar(&words, "words", domain.DefaultSummaryWords, "summary length in words")
	return cmd
}

func newCorrectCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "correct [text]",
		Short: "Fix grammar in text given as arguments or on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.requireSession(); err != nil {
				return err
			}
			text, err := textInput(cmd, args)
			if err != nil {
				return err
			}
			return runTool(st, cmd, st.ws.Corrector, tools.CorrectorInput{Text: text})
		},
	}
}

// runTool mounts the view (loading the balance), submits once and prints the
// result followed by the balance.
func runTool[I any](st *cliState, cmd *cobra.Command, view *tools.View[I], in I) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	view.Mount(ctx)
	err := view.Submit(ctx, in)
	snap := view.Snapshot()
	switch {
	case errors.Is(err, domain.ErrNoCredits):
		st.printf(out, i18n.RemainingCredits, snap.Credits)
		return errors.New(st.printer.Sprintf(i18n.NoCredits))
	case err != nil:
		if snap.Error != "" {
			return errors.New(snap.Error)
		}
		return err
	}
	fmt.Fprintln(out, snap.Output)
	fmt.Fprintln(out)
	st.printf(out, i18n.RemainingCredits, snap.Credits)
	return nil
}

func textInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func newPlansCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List the plans on offer",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			st.printf(out, i18n.ChoosePlan)
			for _, p := range domain.Plans {
				marker := ""
				if p.Popular {
					marker = " *"
				}
				fmt.Fprintf(out, "  %-8s $%-3d %s%s\n", p.Tier, p.PriceUSD, strings.Join(p.Features, ", "), marker)
			}
			return nil
		},
	}
}

func newCheckoutCmd(st *cliState) *cobra.Command {
	var (
		tier    string
		billing payments.Billing
		card    payments.Card
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Buy --plan with a card or a --payment-method id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.requireSession(); err != nil {
				return err
			}
			t, err := domain.ParsePlanTier(tier)
			if err != nil {
				return err
			}
			if err := st.ws.Plans.Select(t); err != nil {
				return err
			}
			if billing.Email == "" {
				billing.Email = st.email
			}
			plan, _ := st.ws.Plans.Selected()
			st.printf(cmd.OutOrStdout(), i18n.PaymentFor, plan.Title)
			res, err := st.ws.Checkout.Pay(cmd.Context(), billing, card)
			if err != nil {
				if res.Message == "" {
					return err
				}
				return errors.New(res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&tier, "plan", "", "basic, pro or premium")
	f.StringVar(&billing.Name, "name", "", "cardholder name")
	f.StringVar(&billing.Email, "billing-email", "", "billing email (defaults to --email)")
	f.StringVar(&card.PaymentMethod, "payment-method", "", "tokenized payment method id (pm_...)")
	f.StringVar(&card.Number, "card", "", "card number")
	f.StringVar(&card.ExpMonth, "exp-month", "", "expiry month")
	f.StringVar(&card.ExpYear, "exp-year", "", "expiry year")
	f.StringVar(&card.CVC, "cvc", "", "card security code")
	_ = cmd.MarkFlagRequired("plan")
	cmd.MarkFlagsOneRequired("card", "payment-method")
	cmd.MarkFlagsMutuallyExclusive("card", "payment-method")
	return cmd
}

func newShellCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run several commands against one session",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprint(out, "> ")
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
				case "exit", "quit":
					return nil
				default:
					sub := newRootCmd(st)
					sub.SetArgs(strings.Fields(line))
					sub.SetIn(strings.NewReader(""))
					sub.SetOut(out)
					sub.SetErr(cmd.ErrOrStderr())
					_ = sub.ExecuteContext(cmd.Context())
				}
				fmt.Fprint(out, "> ")
			}
			return scanner.Err()
		},
	}
}

// userError prefers the backend's own message, then fallback.
func userError(err error, fallback string) error {
	if msg := backend.UserMessage(err); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("%s (%w)", fallback, err)
}

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sungwon/ion-notify/internal/auth"
	"github.com/sungwon/ion-notify/internal/mimeparse"
	"github.com/sungwon/ion-notify/internal/msgstore"
	"github.com/sungwon/ion-notify/internal/ops"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ionctl",
		Short:         "Development and deployment chores for Ion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.configDir, "config", a.configDir, "Directory containing config.yaml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		runserverCmd(a),
		killserverCmd(a),
		cleanPycCmd(a),
		restartGunicornCmd(a),
		clearSessionsCmd(a),
		clearCacheCmd(a),
		loadFixturesCmd(a),
		deployCmd(a),
		contributorsCmd(a),
		linecountCmd(a),
		archivedEmailCmd(a),
		tokenCmd(a),
	)
	return root
}

func runserverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "runserver <port> [yes|no]",
		Short: "Clear compiled python files and start the Django dev server",
		Long: `Clear compiled python files and start the Django dev server on 0.0.0.0:<port>.

The optional second argument enables (yes, the default) or disables (no)
the debug toolbar.`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("you must specify a port")
			}
			o, err := a.ops()
			if err != nil {
				return err
			}
			dbt := ""
			if len(args) == 2 {
				dbt = args[1]
			}
			return o.RunServer(cmd.Context(), args[0], dbt)
		},
	}
}

func killserverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "killserver <port>",
		Short: "Kill the Django dev server running on a port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.ops()
			if err != nil {
				return err
			}
			return o.KillServer(cmd.Context(), args[0])
		},
	}
}

func cleanPycCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "clean_pyc",
		Aliases: []string{"clean-pyc"},
		Short:   "Delete .pyc files under the current directory",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.ops()
			if err != nil {
				return err
			}
			n, err := o.CleanPyc(".")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d .pyc file(s).\n", n)
			return nil
		},
	}
}

func restartGunicornCmd(a *app) *cobra.Command {
	var skip bool
	cmd := &cobra.Command{
		Use:     "restart_production_gunicorn",
		Aliases: []string{"restart-production-gunicorn"},
		Short:   "Restart the production Gunicorn instance (root only)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.ops()
			if err != nil {
				return err
			}
			return o.RestartProductionGunicorn(cmd.Context(), skip)
		},
	}
	cmd.Flags().BoolVarP(&skip, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func clearSessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "clear_sessions [sandbox]",
		Aliases: []string{"clear-sessions"},
		Short:   `Clear all sessions of a sandbox, or of production with "ion"`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.ops()
			if err != nil {
				return err
			}
			sandbox := ""
			if len(args) == 1 {
				sandbox = args[0]
			}
			return o.ClearSessions(cmd.Context(), sandbox)
		},
	}
}

func clearCacheCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "clear_cache [0|1]",
		Aliases: []string{"clear-cache"},
		Short:   "Clear the production (0) or sandbox (1) Redis cache",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			choice := ops.CacheAsk
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || (n != ops.CacheProduction && n != ops.CacheSandbox) {
					return fmt.Errorf("not a valid option: %q", args[0])
				}
				choice = n
			}
			o, err := a.ops()
			if err != nil {
				return err
			}
			return o.ClearCache(cmd.Context(), choice)
		},
	}
}

func loadFixturesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "load_fixtures",
		Aliases: []string{"load-fixtures"},
		Short:   "Clear and repopulate a database with data from fixtures",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.ops()
			if err != nil {
				return err
			}
			return o.LoadFixtures(cmd.Context())
		},
	}
}

func deployCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the production checkout (root only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.ops()
			if err != nil {
				return err
			}
			return o.Deploy(cmd.Context())
		},
	}
}

func contributorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "contributors",
		Short: "Print a list of contributors through git",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.ops()
			if err != nil {
				return err
			}
			return o.Contributors(cmd.Context())
		},
	}
}

func linecountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "linecount",
		Short: "Count lines of Python, HTML, CSS, Javascript and reST",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := ops.CountLines(".")
			if err != nil {
				return err
			}
			ops.WriteLineCounts(cmd.OutOrStdout(), counts)
			return nil
		},
	}
}

func archivedEmailCmd(a *app) *cobra.Command {
	var showHTML bool
	cmd := &cobra.Command{
		Use:     "archived_email <message-id>",
		Aliases: []string{"archived-email"},
		Short:   "Print an archived notification email",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			store, err := msgstore.New(cfg.Archive, a.logger())
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("message archive is disabled")
			}

			raw, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch %s: %w", args[0], err)
			}
			msg, err := mimeparse.Parse(raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Message-ID: %s\n", msg.MessageID)
			fmt.Fprintf(out, "From: %s\n", msg.From)
			for _, to := range msg.To {
				fmt.Fprintf(out, "To: %s\n", to)
			}
			fmt.Fprintf(out, "Subject: %s\n\n", msg.Subject)
			fmt.Fprintln(out, msg.TextBody)
			if showHTML && msg.HTMLBody != "" {
				fmt.Fprintln(out, "--- text/html ---")
				fmt.Fprintln(out, msg.HTMLBody)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHTML, "html", false, "Also print the HTML body")
	return cmd
}

func tokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint an API token acting as a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("not a valid user id: %q", args[0])
			}
			cfg, err := a.config()
			if err != nil {
				return err
			}
			token, err := auth.NewJWTService(cfg.Auth).GenerateToken(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

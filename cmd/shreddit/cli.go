package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/hvariant/shreddit2/internal/config"
	"github.com/hvariant/shreddit2/internal/db"
	"github.com/hvariant/shreddit2/internal/errors"
	"github.com/hvariant/shreddit2/internal/ops"
	"github.com/hvariant/shreddit2/internal/reddit"
)

// Account is the logged-in Reddit account both modes run against.
type Account interface {
	ops.Eraser
	Login(ctx context.Context) error
	Me(ctx context.Context) (string, error)
}

// AccountFactory builds an Account from credentials. Tests replace it.
type AccountFactory func(creds config.Credentials) Account

// newRedditAccount is the production AccountFactory.
func newRedditAccount(creds config.Credentials) Account {
	return reddit.NewClient(creds)
}

// RunOutput is printed to stdout after a run.
type RunOutput struct {
	Username string             `json:"username"`
	Archive  *ops.ArchiveOutput `json:"archive,omitempty"`
	Shred    *ops.ShredOutput   `json:"shred,omitempty"`
}

// newCLIApp creates the CLI application.
func newCLIApp(newAccount AccountFactory) *cli.App {
	app := &cli.App{
		Name:    "shreddit",
		Usage:   "Archive and/or delete your Reddit comments and submissions",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultPath, Usage: "Configuration file"},
			&cli.BoolFlag{Name: "shred", Aliases: []string{"d"}, Usage: "Run shred mode: delete all comments and submissions"},
			&cli.BoolFlag{Name: "archive", Aliases: []string{"a"}, Usage: "Run archive mode: save comments, submissions, upvoted and saved posts as JSON"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "Directory the <username>/ archive tree is written under"},
			&cli.StringFlag{Name: "ledger", Usage: "SQLite file recording every shredded item (disabled when empty)"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level: debug|info|warn|error"},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "Log format: text|json"},
		},
		Action: func(c *cli.Context) error {
			return runAction(c, newAccount)
		},
		Commands: []*cli.Command{
			ledgerCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// runAction logs in, then archives and/or shreds. Archive always runs first.
func runAction(c *cli.Context, newAccount AccountFactory) error {
	ctx := c.Context
	logger := newLogger(c.String("log-level"), c.String("log-format"), c.App.ErrWriter)

	configPath := c.String("config")
	logger.Info(fmt.Sprintf("logging in using credentials found in %s", configPath))
	creds, err := config.Load(configPath)
	if err != nil {
		return outputError(err)
	}

	account := newAccount(*creds)
	if err := account.Login(ctx); err != nil {
		return outputError(err)
	}
	username, err := account.Me(ctx)
	if err != nil {
		return outputError(err)
	}

	out := RunOutput{Username: username}

	if c.Bool("archive") {
		layout, err := ops.Setup(c.String("out"), username)
		if err != nil {
			return outputError(err)
		}
		out.Archive, err = ops.Archive(ctx, logger, account, ops.ArchiveInput{
			Username: username,
			Layout:   layout,
		})
		if err != nil {
			return outputError(err)
		}
	}

	if c.Bool("shred") {
		input := ops.ShredInput{Username: username}
		if path := c.String("ledger"); path != "" {
			ledger, err := db.Open(path)
			if err != nil {
				return outputError(errors.NewInternal(fmt.Errorf("open ledger: %w", err)))
			}
			defer ledger.Close()
			input.Ledger = ledger
		}

		out.Shred, err = ops.Shred(ctx, logger, account, input)
		if err != nil {
			return outputError(err)
		}
	}

	return outputJSON(c.App.Writer, out)
}

// LedgerRunsOutput is printed by the ledger command without --run.
type LedgerRunsOutput struct {
	Runs []db.Run `json:"runs"`
}

// LedgerRunOutput is printed by the ledger command for one run.
type LedgerRunOutput struct {
	Run   *db.Run           `json:"run"`
	Items []db.ShreddedItem `json:"items"`
}

// ledgerCmd creates the ledger command.
func ledgerCmd() *cli.Command {
	return &cli.Command{
		Name:  "ledger",
		Usage: "Show recorded shred runs, or the items deleted in one run",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Ledger file written by --ledger"},
			&cli.StringFlag{Name: "run", Aliases: []string{"r"}, Usage: "Run ID to show items for"},
		},
		Action: func(c *cli.Context) error {
			ledger, err := db.OpenExisting(c.String("path"))
			if err != nil {
				return outputError(err)
			}
			defer ledger.Close()

			runID := c.String("run")
			if runID == "" {
				runs, err := db.ListRuns(ledger.DB)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(c.App.Writer, LedgerRunsOutput{Runs: runs})
			}

			run, err := db.GetRun(ledger.DB, runID)
			if err != nil {
				return outputError(err)
			}
			items, err := db.ListShredded(ledger.DB, runID)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, LedgerRunOutput{Run: run, Items: items})
		},
	}
}

// Helper functions

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var sErr *errors.ShredditError
	if stderrors.As(err, &sErr) {
		msg := sErr.Message
		if top := err.Error(); top != sErr.Error() {
			// Keep the wrapping context, e.g. "archive comments: ...".
			msg = top
		}
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, msg), 1)
	}
	return cli.Exit(err.Error(), 1)
}

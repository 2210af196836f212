package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"eventdesk/internal/db"
	"eventdesk/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var draftsCommand = &cli.Command{
	Name:  "drafts",
	Usage: "Inspect and prune wizard drafts stored in Postgres",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "List stored drafts, most recent first",
			Action: listDrafts,
		},
		{
			Name:  "show",
			Usage: "Print the decoded snapshot of one user's draft",
			Flags: []cli.Flag{
				&cli.Int64Flag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Usage:    "Owner of the draft",
					Required: true,
				},
			},
			Action: showDraft,
		},
		{
			Name:  "purge",
			Usage: "Delete drafts not saved within the given window",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "older-than",
					Usage: "Age cutoff, defaults to DRAFT_MAX_AGE_HRS",
				},
			},
			Action: purgeStaleDrafts,
		},
	},
}

// withDraftRepository connects to the configured database for the length of fn.
func withDraftRepository(ctx context.Context, fn func(repo *store.DraftRepository, maxAge time.Duration) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("set DATABASE_URL")
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	return fn(store.NewDraftRepository(pool), time.Duration(cfg.DraftMaxAgeHrs)*time.Hour)
}

func listDrafts(c *cli.Context) error {
	return withDraftRepository(c.Context, func(repo *store.DraftRepository, _ time.Duration) error {
		drafts, err := repo.Drafts(c.Context)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USER\tVARIANT\tSTEP\tSAVED")
		for _, d := range drafts {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", d.UserID, d.Variant, d.Step, d.SavedAt.Format(time.RFC3339))
		}
		return w.Flush()
	})
}

func showDraft(c *cli.Context) error {
	return withDraftRepository(c.Context, func(repo *store.DraftRepository, _ time.Duration) error {
		snap, err := repo.LoadDraft(c.Context, c.Int64("user-id"))
		if err != nil {
			return err
		}

		_, err = pp.Println(snap)
		return err
	})
}

func purgeStaleDrafts(c *cli.Context) error {
	return withDraftRepository(c.Context, func(repo *store.DraftRepository, maxAge time.Duration) error {
		if d := c.Duration("older-than"); d > 0 {
			maxAge = d
		}
		if maxAge <= 0 {
			return fmt.Errorf("set --older-than or DRAFT_MAX_AGE_HRS")
		}

		purged, err := repo.PurgeBefore(c.Context, time.Now().Add(-maxAge))
		if err != nil {
			return err
		}

		logrus.WithField("purged", purged).WithField("older_than", maxAge.String()).Info("drafts purged")
		return nil
	})
}

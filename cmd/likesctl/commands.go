package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vytor/likescenter/internal/app"
	"github.com/vytor/likescenter/internal/config"
	"github.com/vytor/likescenter/internal/engine"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/services"
)

// cli carries the per-invocation state shared by subcommands.
type cli struct {
	cfg    config.Config
	asJSON bool
	core   *app.App
}

func newRootCmd(cfg config.Config) *cobra.Command {
	c := &cli{cfg: cfg}

	root := &cobra.Command{
		Use:           "likesctl",
		Short:         "Inspect and drive the local likes cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			core, err := app.New(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			c.core = core
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.core != nil {
				c.core.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	root.PersistentFlags().StringVar(&c.cfg.RemoteBaseURL, "remote", cfg.RemoteBaseURL, "remote base URL (empty uses the mock feed)")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print JSON instead of tables")

	root.AddCommand(
		c.listCmd(),
		c.syncCmd(),
		c.actionCmd(models.ActionLike),
		c.actionCmd(models.ActionPass),
		c.unblurCmd(),
	)
	return root
}

func (c *cli) listCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached profiles with one status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := models.ParseStatus(status)
			if err != nil {
				return err
			}
			view, err := c.core.Likes.View(cmd.Context(), st)
			if err != nil {
				return err
			}
			if c.asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			printView(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "incoming", "incoming, mutual or passed")
	return cmd
}

func (c *cli) syncCmd() *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh from the remote and follow up to --pages pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res, err := c.core.Engine.Refresh(ctx)
			if err != nil {
				return err
			}
			total := engine.Result{Fetched: res.Fetched, HasMore: res.HasMore}
			for i := 1; i < pages && total.HasMore; i++ {
				res, err = c.core.Engine.LoadMore(ctx)
				if err != nil {
					return err
				}
				total.Fetched += res.Fetched
				total.HasMore = res.HasMore
			}
			if c.asJSON {
				return writeJSON(cmd.OutOrStdout(), total)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d profiles, more available: %t\n", total.Fetched, total.HasMore)
			return nil
		},
	}
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to fetch")
	return cmd
}

func (c *cli) actionCmd(action models.Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <id>",
		Short: fmt.Sprintf("Mark a profile as %s and tell the remote", action.TargetStatus()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var err error
			if action == models.ActionLike {
				err = c.core.Likes.Like(ctx, args[0])
			} else {
				err = c.core.Likes.Pass(ctx, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], action.TargetStatus())
			return nil
		},
	}
}

func (c *cli) unblurCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unblur",
		Short: "Show or start the unblur window",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the unblur window",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.printBlur(cmd, c.core.Likes.Blur(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "activate",
			Short: "Start a new unblur window",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				view, err := c.core.Likes.ActivateUnblur(cmd.Context())
				if err != nil {
					return err
				}
				return c.printBlur(cmd, view)
			},
		},
	)
	return cmd
}

func (c *cli) printBlur(cmd *cobra.Command, view services.BlurView) error {
	out := cmd.OutOrStdout()
	if c.asJSON {
		return writeJSON(out, view)
	}
	switch {
	case !view.Enabled:
		fmt.Fprintln(out, "blur disabled")
	case view.Unblur.Active:
		fmt.Fprintf(out, "unblurred, %s left\n", view.Remaining)
	default:
		fmt.Fprintln(out, "blurred")
	}
	return nil
}

func printView(out io.Writer, view *services.LikesView) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, p := range view.Profiles {
		name := p.Name
		if view.Blur.Blurred {
			name = "(hidden)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, name, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "%d %s profiles\n", len(view.Profiles), view.Status)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/annolab/margin/cli"
	"github.com/annolab/margin/pkg/models"
	"github.com/moby/patternmatcher"
	"github.com/spf13/cobra"
)

func NewThreadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Inspect and manage comment threads",
	}

	cmd.AddCommand(newThreadsListCmd())
	cmd.AddCommand(newThreadsResolveCmd())
	return cmd
}

func newThreadsListCmd() *cobra.Command {
	var (
		targetGlob   string
		sortKey      string
		onlyResolved bool
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List comment threads",
		Long: `Lists threads across all annotated targets.

Examples:
  margin threads list
  margin threads list --target "notebooks/*.ipynb"
  margin threads list --sort mostReplies --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			var pm *patternmatcher.PatternMatcher
			if targetGlob != "" {
				pm, err = patternmatcher.New([]string{targetGlob})
				if err != nil {
					return fmt.Errorf("invalid target pattern: %w", err)
				}
			}

			sort := models.SortLatest
			if sortKey != "" {
				var ok bool
				if sort, ok = models.ParseSortKey(sortKey); !ok {
					return fmt.Errorf("unknown sort key %q (latest, date, mostReplies)", sortKey)
				}
			}

			type targetThreads struct {
				Target  string          `json:"target"`
				Threads []models.Thread `json:"threads"`
			}

			var out []targetThreads
			for _, target := range store.Targets() {
				if pm != nil {
					matched, err := pm.MatchesOrParentMatches(target)
					if err != nil || !matched {
						continue
					}
				}

				threads := store.ThreadsByTarget(target)
				if onlyResolved {
					filtered := threads[:0]
					for _, th := range threads {
						if th.Resolved {
							filtered = append(filtered, th)
						}
					}
					threads = filtered
				}
				if len(threads) == 0 {
					continue
				}

				models.SortThreads(threads, sort)
				out = append(out, targetThreads{Target: target, Threads: threads})
			}

			if jsonOutput {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(out) == 0 {
				fmt.Println(cli.Render(cli.MutedStyle, "No threads found."))
				return nil
			}

			for _, tt := range out {
				fmt.Println(cli.Render(cli.AccentStyle, tt.Target))
				for _, th := range tt.Threads {
					fmt.Println(formatThreadLine(th))
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&targetGlob, "target", "", "Only targets matching this pattern")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort key: latest, date or mostReplies")
	cmd.Flags().BoolVar(&onlyResolved, "resolved", false, "Only resolved threads")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// formatThreadLine renders one thread as a summary line.
func formatThreadLine(th models.Thread) string {
	state := " "
	if th.Resolved {
		state = cli.Render(cli.ResolvedStyle, "✓")
	}

	preview := ""
	creator := ""
	if len(th.Body) > 0 {
		preview = th.Body[0].Value
		creator = th.Body[0].Creator.Name
	}
	if len(preview) > 60 {
		preview = preview[:57] + "..."
	}
	preview = strings.ReplaceAll(preview, "\n", " ")

	meta := fmt.Sprintf("%s, %d comment(s)", creator, th.Total)
	return fmt.Sprintf("  %s %-10s %s %s", state, th.ID, preview, cli.Render(cli.MutedStyle, meta))
}

func newThreadsResolveCmd() *cobra.Command {
	var unresolve bool

	cmd := &cobra.Command{
		Use:   "resolve <target> <thread-id>",
		Short: "Mark a thread resolved",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			target, threadID := args[0], args[1]
			if err := store.SetResolved(target, threadID, !unresolve); err != nil {
				return cli.NewErrorHandler(GetVerbose(cmd)).Handle(err)
			}
			store.Sync()

			verb := "Resolved"
			if unresolve {
				verb = "Reopened"
			}
			fmt.Printf("%s %s on %s\n", cli.Render(cli.AccentStyle, verb), threadID, target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unresolve, "unresolve", false, "Reopen the thread instead")
	return cmd
}

// GetVerbose reads the persistent verbose flag.
func GetVerbose(cmd *cobra.Command) bool {
	return cli.GetBoolFlag(cmd, "verbose")
}

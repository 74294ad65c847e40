package cmd

import (
	"fmt"
	"os"

	"github.com/annolab/margin/cli"
	"github.com/spf13/cobra"
)

const starterConfig = `version: "1.0"

settings:
  store_path: .margin/comments.json
  backend: file
  poll_interval_ms: 1000
  watch_debounce_ms: 500
  default_sort: latest

# github:
#   token: ${GITHUB_TOKEN}

# bridge:
#   socket: .margin/bridge.sock
#   pid_file: .margin/bridge.pid
`

func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter margin.yml in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "margin.yml"
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := os.WriteFile(path, []byte(starterConfig), 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Printf("%s %s\n", cli.Render(cli.AccentStyle, "Created"), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing margin.yml")
	return cmd
}

package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/annolab/margin/cli"
	"github.com/spf13/cobra"
)

func NewPersonsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "persons",
		Short: "List known comment authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			persons := store.AllPersons()

			if jsonOutput {
				data, err := json.MarshalIndent(persons, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(persons) == 0 {
				fmt.Println(cli.Render(cli.MutedStyle, "No persons recorded."))
				return nil
			}

			names := make([]string, 0, len(persons))
			byName := make(map[string]string, len(persons))
			for id, p := range persons {
				names = append(names, p.Name)
				byName[p.Name] = id
			}
			sort.Strings(names)

			for _, name := range names {
				fmt.Printf("%s %s\n", cli.Render(cli.AccentStyle, name), cli.Render(cli.MutedStyle, byName[name]))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func NewTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List annotated targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			targets := store.Targets()
			if len(targets) == 0 {
				fmt.Println(cli.Render(cli.MutedStyle, "No annotated targets."))
				return nil
			}
			for _, target := range targets {
				count := len(store.ThreadsByTarget(target))
				fmt.Printf("%s %s\n", target, cli.Render(cli.MutedStyle, fmt.Sprintf("(%d threads)", count)))
			}
			return nil
		},
	}
}

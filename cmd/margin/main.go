package main

import (
	"os"

	"github.com/annolab/margin/cli"
	"github.com/annolab/margin/cmd"
	"github.com/annolab/margin/version"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"margin",
		"Comment threads for notebooks, in the margin",
	)

	info := version.GetInfo()
	rootCmd.Version = info.Version
	cli.SetVersionTemplate(rootCmd, cli.VersionInfo{
		Version:   info.Version,
		Commit:    info.Commit,
		BuildDate: info.BuildDate,
		BuildArch: info.Platform,
	})

	rootCmd.AddCommand(cmd.NewVersionCmd())
	rootCmd.AddCommand(cmd.NewInitCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewThreadsCmd())
	rootCmd.AddCommand(cmd.NewPersonsCmd())
	rootCmd.AddCommand(cmd.NewTargetsCmd())
	rootCmd.AddCommand(cmd.NewServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

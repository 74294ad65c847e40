package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Styles used across command output. Rendering degrades to plain text when
// stdout is not a terminal.
var (
	AccentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	MutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	ResolvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// ColorEnabled reports whether styled output should be rendered.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Render applies the style when color is enabled, otherwise passes through.
func Render(style lipgloss.Style, s string) string {
	if !ColorEnabled() {
		return s
	}
	return style.Render(s)
}

// PrintError prints a styled error message to stderr with a help hint.
func PrintError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", Render(ErrorStyle, "Error:"), err.Error())
	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", Render(MutedStyle, fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath())))
}

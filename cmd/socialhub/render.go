package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/benaskins/socialhub/internal/hub"
)

// errPostFailed is returned when at least one platform failed, after the
// results have been printed.
var errPostFailed = errors.New("one or more platforms failed")

var (
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	errorStyle    = failStyle
	platformStyle = lipgloss.NewStyle().Width(9)
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

func renderResults(w io.Writer, results []hub.Result) {
	for _, r := range results {
		renderResult(w, r)
	}
}

func renderResult(w io.Writer, r hub.Result) {
	name := platformStyle.Render(string(r.Platform))
	if r.Success {
		fmt.Fprintf(w, "%s %s %s\n", okStyle.Render("OK  "), name, r.URL)
		return
	}
	fmt.Fprintf(w, "%s %s %s\n", failStyle.Render("FAIL"), name, dimStyle.Render(r.Error))
}

func exitCode(err error) int {
	if errors.Is(err, errPostFailed) {
		return 2
	}
	return 1
}

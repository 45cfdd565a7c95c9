package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/uniclip/internal/common"
	"github.com/dmitrijs2005/uniclip/internal/models"
	"github.com/dmitrijs2005/uniclip/internal/session"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.Bold)
)

func printStatus(w io.Writer, st session.Status) {
	switch st.Kind {
	case session.StatusSuccess:
		successColor.Fprintln(w, st.Message)
	case session.StatusError:
		errorColor.Fprintln(w, st.Message)
	case session.StatusInfo:
		infoColor.Fprintln(w, st.Message)
	default:
		if st.Message != "" {
			fmt.Fprintln(w, st.Message)
		}
	}
}

func printSections(w io.Writer, selectedID string, count int, sections []models.TextSection) {
	title := "unsaved clipboard"
	if selectedID != "" {
		title = "clipboard " + selectedID
	}
	headerColor.Fprintf(w, "%s  [%d/%d clipboards]\n", title, count, common.MaxClipboardsPerAccount)

	if selectedID == "" && count >= common.MaxClipboardsPerAccount {
		warnColor.Fprintf(w, "You've reached the maximum limit of %d clipboards. Please use your existing clipboards.\n", common.MaxClipboardsPerAccount)
	}

	for i, s := range sections {
		fmt.Fprintf(w, "--- section %d ---\n", i+1)
		if s.Content == "" {
			fmt.Fprintln(w, "(empty)")
			continue
		}
		fmt.Fprintln(w, s.Content)
	}
}

func printList(w io.Writer, selectedID string, list []models.ClipboardSummary) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No clipboards yet")
		return
	}
	for i, c := range list {
		marker := " "
		if c.ID == selectedID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %d. Clipboard %d  %s  created %s\n", marker, i+1, i+1, c.ID, c.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func prompt(state session.State, username string) string {
	var b strings.Builder
	b.WriteString("uniclip")
	switch state {
	case session.StateAuthenticated:
		fmt.Fprintf(&b, " (%s)", username)
	case session.StateLocked:
		fmt.Fprintf(&b, " (%s, locked)", username)
	}
	b.WriteString(" > ")
	return b.String()
}

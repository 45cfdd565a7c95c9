// Package cli is the interactive front end of uniclip: a line-oriented REPL
// that drives a session.Session and renders its statuses.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/uniclip/internal/models"
	"github.com/dmitrijs2005/uniclip/internal/session"
)

type App struct {
	session *session.Session
	reader  *bufio.Reader
	out     io.Writer

	// last listing, for "select <n>"
	listed []models.ClipboardSummary
}

func NewApp(s *session.Session, in io.Reader, out io.Writer) *App {
	return &App{session: s, reader: bufio.NewReader(in), out: out}
}

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// Run restores a cached session if there is one and then serves commands
// until exit or end of input.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to uniclip (type 'help' for commands)")

	st := a.session.Restore(ctx)
	printStatus(a.out, st)
	if a.session.State() == session.StateAuthenticated {
		a.show()
	}

	runREPL(ctx, a, a.reader, a.out)
}

func (a *App) status() string {
	return prompt(a.session.State(), a.session.Username())
}

func (a *App) state() session.State {
	return a.session.State()
}

func (a *App) register(ctx context.Context) {
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return
	}
	password, err := getPassword(a.reader, "Choose a password", a.out)
	if err != nil {
		return
	}

	st := a.session.Register(ctx, username, email, password)
	printStatus(a.out, st)
	a.afterLogin()
}

func (a *App) login(ctx context.Context) {
	identifier, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return
	}

	st := a.session.Login(ctx, identifier, password, session.LoginTypeFor(identifier))
	printStatus(a.out, st)
	a.afterLogin()
}

func (a *App) unlock(ctx context.Context) {
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return
	}
	printStatus(a.out, a.session.Unlock(ctx, password))
	a.afterLogin()
}

func (a *App) afterLogin() {
	a.listed = nil
	if a.session.State() == session.StateAuthenticated {
		a.show()
	}
}

func (a *App) show() {
	printSections(a.out, a.session.SelectedID(), a.session.ClipboardCount(), a.session.Sections())
}

func (a *App) edit(args []string) {
	if st, ok := a.session.Editable(); !ok {
		printStatus(a.out, st)
		return
	}
	i, ok := a.sectionIndex(args, len(a.session.Sections()) == 1)
	if !ok {
		return
	}
	text, err := getMultiline(a.reader, fmt.Sprintf("Text for section %d", i+1), a.out)
	if err != nil {
		return
	}
	printStatus(a.out, a.session.SetContent(i, text))
}

func (a *App) add() {
	st := a.session.AddSection()
	printStatus(a.out, st)
	if st == (session.Status{}) {
		fmt.Fprintf(a.out, "Added section %d\n", len(a.session.Sections()))
	}
}

func (a *App) remove(args []string) {
	i, ok := a.sectionIndex(args, false)
	if !ok {
		return
	}
	printStatus(a.out, a.session.RemoveSection(i))
}

func (a *App) clear() {
	printStatus(a.out, a.session.ClearAll())
}

func (a *App) newClipboard() {
	printStatus(a.out, a.session.NewClipboard())
}

func (a *App) list(ctx context.Context) {
	list, st := a.session.Clipboards(ctx)
	if st.Kind == session.StatusError {
		printStatus(a.out, st)
		return
	}
	a.listed = list
	printList(a.out, a.session.SelectedID(), list)
}

func (a *App) selectClipboard(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: select <number|id>")
		return
	}

	id := args[0]
	if n, err := strconv.Atoi(id); err == nil {
		if a.listed == nil {
			a.listed, _ = a.session.Clipboards(ctx)
		}
		if n < 1 || n > len(a.listed) {
			fmt.Fprintf(a.out, "No clipboard %d; run 'list' to see yours\n", n)
			return
		}
		id = a.listed[n-1].ID
	}

	st := a.session.Select(ctx, id)
	printStatus(a.out, st)
	if st.Kind == session.StatusSuccess {
		a.show()
	}
}

func (a *App) refresh(ctx context.Context) {
	st := a.session.Refresh(ctx)
	printStatus(a.out, st)
	if st.Kind == session.StatusSuccess {
		a.show()
	}
}

func (a *App) save(ctx context.Context) {
	st := a.session.Save(ctx)
	printStatus(a.out, st)
	if st.Kind == session.StatusSuccess {
		a.listed = nil
	}
}

func (a *App) logout(ctx context.Context) {
	a.listed = nil
	printStatus(a.out, a.session.Logout(ctx))
}

// sectionIndex parses a 1-based section number. With implicitFirst, a
// missing argument selects the first section.
func (a *App) sectionIndex(args []string, implicitFirst bool) (int, bool) {
	if len(args) == 0 && implicitFirst {
		return 0, true
	}
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: <command> <section number>")
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		fmt.Fprintf(a.out, "Not a section number: %q\n", args[0])
		return 0, false
	}
	return n - 1, true
}

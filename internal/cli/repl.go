package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/uniclip/internal/session"
)

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a recording stub.
type execIface interface {
	status() string
	state() session.State
	register(ctx context.Context)
	login(ctx context.Context)
	unlock(ctx context.Context)
	show()
	edit(args []string)
	add()
	remove(args []string)
	clear()
	newClipboard()
	list(ctx context.Context)
	selectClipboard(ctx context.Context, args []string)
	refresh(ctx context.Context)
	save(ctx context.Context)
	logout(ctx context.Context)
}

const (
	helpAnonymous = "Available commands: register, login, exit"
	helpLocked    = "Available commands: unlock, list, logout, exit"
	helpSignedIn  = "Available commands: show, edit [n], add, remove <n>, clear, new, (l)ist, select <n|id>, refresh, save, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// The loop ends on "exit"/"quit" or when input is exhausted.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprint(w, a.status())

		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				fmt.Fprintln(w)
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			switch a.state() {
			case session.StateAuthenticated:
				fmt.Fprintln(w, helpSignedIn)
			case session.StateLocked:
				fmt.Fprintln(w, helpLocked)
			default:
				fmt.Fprintln(w, helpAnonymous)
			}

		case "register":
			a.register(ctx)

		case "login":
			a.login(ctx)

		case "unlock":
			a.unlock(ctx)

		case "show":
			a.show()

		case "edit":
			a.edit(args)

		case "add":
			a.add()

		case "remove", "rm":
			a.remove(args)

		case "clear":
			a.clear()

		case "new":
			a.newClipboard()

		case "l", "list":
			a.list(ctx)

		case "select":
			a.selectClipboard(ctx, args)

		case "refresh":
			a.refresh(ctx)

		case "save":
			a.save(ctx)

		case "logout":
			a.logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

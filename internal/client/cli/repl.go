package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"unicode"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

const helpText = `Commands:
  check              ask the server whether the session is still valid
  signup             create an account
  login              log in
  logout             log out
  avatar <file>      upload a profile picture
  whoami             show the current user
  users              list other users
  chat <user-id>     show the conversation with a user
  send <user-id> <text | @image-file>
  status             show session state and pending calls
  help               show this help
  quit | exit        leave`

// execIface is the command surface the REPL drives. *App satisfies it.
type execIface interface {
	Check(ctx context.Context) error
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Avatar(ctx context.Context, path string) error
	WhoAmI(ctx context.Context) error
	Users(ctx context.Context) error
	Chat(ctx context.Context, userID string) error
	Send(ctx context.Context, userID, text string) error
	Status(ctx context.Context) error
}

// runREPL reads commands until EOF, quit, or ctx is cancelled. Command
// errors are already reported to the user by the handlers, so the loop
// ignores them.
//
// Lines come from the same reader the commands prompt on, so input typed
// ahead for a prompt is not swallowed by the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("chatty [%s]> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "check":
			_ = a.Check(ctx)

		case "signup", "register":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "avatar":
			if len(args) != 1 {
				printlnFn("Usage: avatar <file>")
				continue
			}
			_ = a.Avatar(ctx, args[0])

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "users":
			_ = a.Users(ctx)

		case "chat":
			if len(args) != 1 {
				printlnFn("Usage: chat <user-id>")
				continue
			}
			_ = a.Chat(ctx, args[0])

		case "send":
			if len(args) < 2 {
				printlnFn("Usage: send <user-id> <text | @image-file>")
				continue
			}
			_ = a.Send(ctx, args[0], afterFields(line, 2))

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// afterFields returns what follows the first n whitespace-separated fields
// of line, with the line ending removed and inner spacing kept.
func afterFields(line string, n int) string {
	rest := strings.TrimRight(line, "\r\n")
	for range n {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		i := strings.IndexFunc(rest, unicode.IsSpace)
		if i < 0 {
			return ""
		}
		rest = rest[i:]
	}
	return strings.TrimLeftFunc(rest, unicode.IsSpace)
}

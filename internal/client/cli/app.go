package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/client/gateway"
	"github.com/vedran77/chatty/internal/client/session"
	"github.com/vedran77/chatty/internal/domain"
)

var errNotLoggedIn = errors.New("not logged in")

// ChatAPI is the part of the gateway the chat commands use.
type ChatAPI interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	Messages(ctx context.Context, userID uuid.UUID) ([]domain.Message, error)
	SendMessage(ctx context.Context, userID uuid.UUID, req gateway.SendMessageRequest) (*domain.Message, error)
}

// App runs the terminal commands against the session store.
type App struct {
	store  *session.Store
	chat   ChatAPI
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(store *session.Store, chat ChatAPI, in io.Reader, out io.Writer) *App {
	return &App{
		store:  store,
		chat:   chat,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

// status is shown in the prompt.
func (a *App) status() string {
	snap := a.store.Snapshot()
	if snap.User != nil {
		return snap.User.FullName
	}
	return snap.State.String()
}

func (a *App) Check(ctx context.Context) error {
	res := a.store.CheckSession(ctx)
	if res.Err != nil {
		fmt.Fprintf(a.out, "Session check failed: %s\n", res.Err.Message)
		return res.Err
	}
	if !res.Success {
		fmt.Fprintln(a.out, "No active session.")
		return nil
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", a.store.User().FullName)
	return nil
}

func (a *App) Signup(ctx context.Context) error {
	fullName, err := GetSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	res := a.store.Signup(ctx, session.SignupInput{FullName: fullName, Email: email, Password: password})
	return a.explain(res)
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	res := a.store.Login(ctx, session.LoginInput{Email: email, Password: password})
	if res.Err != nil {
		return res.Err
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	res := a.store.Logout(ctx)
	if res.Err != nil {
		return res.Err
	}
	return nil
}

// Avatar uploads the image at path as the profile picture.
func (a *App) Avatar(ctx context.Context, path string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Log in first.")
		return errNotLoggedIn
	}

	uri, err := imageDataURI(path)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot use %s: %v\n", path, err)
		return err
	}

	res := a.store.UpdateProfile(ctx, session.ProfileUpdate{}.WithProfilePicture(uri))
	if res.Err != nil {
		return a.explain(res)
	}
	fmt.Fprintf(a.out, "Avatar: %s\n", a.store.User().ProfilePicture)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	user := a.store.User()
	if user == nil {
		fmt.Fprintf(a.out, "Nobody (%s).\n", a.store.State())
		return nil
	}

	fmt.Fprintf(a.out, "%s <%s>\n", user.FullName, user.Email)
	fmt.Fprintf(a.out, "  id:      %s\n", user.ID)
	if user.ProfilePicture != "" {
		fmt.Fprintf(a.out, "  avatar:  %s\n", user.ProfilePicture)
	}
	fmt.Fprintf(a.out, "  member since %s\n", user.CreatedAt.Format("2006-01-02"))
	return nil
}

func (a *App) Users(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Log in first.")
		return errNotLoggedIn
	}

	users, err := a.chat.ListUsers(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No other users yet.")
		return nil
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%s  %s <%s>\n", u.ID, u.FullName, u.Email)
	}
	return nil
}

// Chat prints the conversation with the given user.
func (a *App) Chat(ctx context.Context, rawID string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Log in first.")
		return errNotLoggedIn
	}
	otherID, err := uuid.Parse(rawID)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid user id %q.\n", rawID)
		return err
	}

	msgs, err := a.chat.Messages(ctx, otherID)
	if err != nil {
		return a.report(err)
	}
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No messages yet.")
		return nil
	}

	me := a.store.User()
	for _, m := range msgs {
		who := "them"
		if me != nil && m.SenderID == me.ID {
			who = "me"
		}
		fmt.Fprintf(a.out, "[%s] %s: %s\n", m.CreatedAt.Format("15:04"), who, messageBody(m))
	}
	return nil
}

// Send posts a message. A text starting with @ names an image file.
func (a *App) Send(ctx context.Context, rawID, text string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Log in first.")
		return errNotLoggedIn
	}
	otherID, err := uuid.Parse(rawID)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid user id %q.\n", rawID)
		return err
	}

	var req gateway.SendMessageRequest
	if path, ok := strings.CutPrefix(text, "@"); ok {
		uri, err := imageDataURI(path)
		if err != nil {
			fmt.Fprintf(a.out, "Cannot use %s: %v\n", path, err)
			return err
		}
		req.Image = uri
	} else {
		req.Text = text
	}

	if _, err := a.chat.SendMessage(ctx, otherID, req); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Sent.")
	return nil
}

// Status prints the store's state and any call in flight.
func (a *App) Status(ctx context.Context) error {
	snap := a.store.Snapshot()
	fmt.Fprintf(a.out, "state: %s\n", snap.State)

	var busy []string
	if snap.Flags.Checking {
		busy = append(busy, "checking")
	}
	if snap.Flags.SigningUp {
		busy = append(busy, "signing up")
	}
	if snap.Flags.LoggingIn {
		busy = append(busy, "logging in")
	}
	if snap.Flags.LoggingOut {
		busy = append(busy, "logging out")
	}
	if snap.Flags.UpdatingProfile {
		busy = append(busy, "updating profile")
	}
	if len(busy) > 0 {
		fmt.Fprintf(a.out, "busy: %s\n", strings.Join(busy, ", "))
	}
	if snap.LastError != nil {
		fmt.Fprintf(a.out, "last error: %s\n", snap.LastError)
	}
	return nil
}

// explain adds the server's reason under the generic toast.
func (a *App) explain(res session.Result) error {
	if res.Err == nil {
		return nil
	}
	fmt.Fprintf(a.out, "  %s\n", res.Err.Message)
	return res.Err
}

func (a *App) report(err error) error {
	gwErr := gateway.AsError(err)
	fmt.Fprintf(a.out, "Error: %s\n", gwErr.Message)
	return gwErr
}

func messageBody(m domain.Message) string {
	var parts []string
	if m.Text != nil {
		parts = append(parts, *m.Text)
	}
	if m.Image != nil {
		parts = append(parts, "[image "+*m.Image+"]")
	}
	return strings.Join(parts, " ")
}

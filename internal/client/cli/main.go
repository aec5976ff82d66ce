package cli

import (
	"context"
	"io"
	"os"

	"github.com/vedran77/chatty/internal/client/config"
	"github.com/vedran77/chatty/internal/client/gateway"
	"github.com/vedran77/chatty/internal/client/session"
	"github.com/vedran77/chatty/internal/logging"
)

// Run wires the gateway, the session store and the REPL, checks the
// session once, then serves commands until the user quits or ctx ends.
func Run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	log := logging.NewText(os.Stderr, cfg.LogLevel)

	client, err := gateway.New(cfg.ServerURL, cfg.Timeout)
	if err != nil {
		return err
	}

	store := session.NewStore(client,
		session.WithNotifier(NewToastNotifier(out)),
		session.WithLogger(log),
	)
	app := NewApp(store, client, in, out)

	printlnFn("Connecting to", cfg.ServerURL)
	_ = app.Check(ctx)
	printlnFn("Type 'help' for commands.")

	runREPL(ctx, app, app.status, app.reader)
	return nil
}

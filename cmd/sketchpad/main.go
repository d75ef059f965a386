// Command sketchpad runs the collaborative drawing client core: it
// connects to the studio socket, mirrors the shared canvas state, and
// plays back agent strokes. Screens and rendering sit above this binary;
// it is the synchronization core plus a handful of utility subcommands.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmfenton/Sketchpad-sub000/internal/client"
	"github.com/dmfenton/Sketchpad-sub000/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "export":
			return exportCommand(cfg, args[1:])
		case "help", "--help", "-h":
			printUsage()
			return nil
		case "version", "--version", "-v":
			fmt.Println("sketchpad-client v1.0.0")
			return nil
		default:
			return fmt.Errorf("unknown command %q (see 'sketchpad help')", args[0])
		}
	}

	if cfg.Debug {
		log.Printf("Config: ServerURL=%s SocketURL=%s Home=%s", cfg.ServerURL, cfg.SocketURL, cfg.SketchpadHome)
	}

	creds := newFileCredentials(cfg)
	token, err := creds.CurrentToken()
	if err != nil {
		return fmt.Errorf("no access token: %w (sign in first)", err)
	}

	c := client.New(cfg, creds, token)
	c.Start()
	defer c.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Connect(ctx, token); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Println("shutting down")
	return nil
}

func printUsage() {
	fmt.Println(`Usage: sketchpad [command]

Commands:
  (none)                      run the studio client
  export <strokes.json> <out.pdf>   render a saved canvas to PDF
  version                     print version
  help                        show this help

Environment:
  SKETCHPAD_SERVER_URL        REST API base URL
  SKETCHPAD_WS_URL            websocket updates endpoint
  SKETCHPAD_HOME_DIR          local state directory
  SKETCHPAD_RECONNECT_BACKOFF reconnect delay (e.g. 3s)
  SKETCHPAD_REFRESH_COOLDOWN  token refresh cooldown (e.g. 5s)
  DEBUG                       verbose logging (true/1)`)
}

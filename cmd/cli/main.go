package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/scott12355/MeditationApp-sub000/internal/app"
	"github.com/scott12355/MeditationApp-sub000/internal/config"
	"github.com/scott12355/MeditationApp-sub000/internal/logging"
	"github.com/scott12355/MeditationApp-sub000/internal/models"
	"github.com/scott12355/MeditationApp-sub000/internal/syncer"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.Close()

	if err := run(ctx, a); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, a *app.App) error {
	args := flagArgs()
	if len(args) == 0 {
		return fmt.Errorf("usage: sync [-force] | poll <session-id> | logout")
	}

	switch args[0] {
	case "sync":
		force := len(args) > 1 && args[1] == "-force"
		a.Syncer.SetObserver(func(e syncer.Event) {
			fmt.Printf("%s: %s\n", e.Phase, e.Message)
		})
		return a.Syncer.Run(ctx, force)

	case "poll":
		if len(args) < 2 {
			return fmt.Errorf("poll requires a session id")
		}
		p := a.NewStatusPoller(args[1], func(status models.SessionStatus, errorMessage string) {
			if errorMessage != "" {
				fmt.Printf("%s: %s\n", status, errorMessage)
				return
			}
			fmt.Println(status)
		})
		fmt.Printf("result: %s\n", p.Run(ctx))
		return nil

	case "logout":
		return a.Logout(ctx)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// flagArgs returns the positional arguments, skipping the flags that
// config.LoadConfig consumes.
func flagArgs() []string {
	var out []string
	skip := false
	for _, arg := range os.Args[1:] {
		if skip {
			skip = false
			continue
		}
		switch arg {
		case "-a", "-t", "-d", "-c", "-config":
			skip = true
		default:
			out = append(out, arg)
		}
	}
	return out
}

// Package command defines the admingate-cli command tree using
// urfave/cli. Every admin command dials the gate server, completes the
// credential handshake, and sends one fire-and-forget frame; the
// protocol acknowledges nothing, so success output means only that the
// command was delivered.
package command

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tehnewb/admingate/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "admingate-cli",
		Usage:   "AdminGate administrator management tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			AdminCommand(),
			VersionCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "gate server address",
			EnvVars: []string{"ADMINGATE_SERVER"},
			Value:   "localhost:6343",
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "your administrator token",
			EnvVars: []string{"ADMINGATE_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "your administrator username",
			EnvVars: []string{"ADMINGATE_USERNAME"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "dial and send timeout",
			Value: 10 * time.Second,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "enable debug logging",
		},
	}
}

func logLevel(c *cli.Context) slog.Level {
	if c.Bool("verbose") {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

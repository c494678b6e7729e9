package command

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tehnewb/admingate/internal/client"
)

// AdminCommand returns the admin subcommand group.
func AdminCommand() *cli.Command {
	return &cli.Command{
		Name:    "admin",
		Aliases: []string{"a"},
		Usage:   "Manage administrator records",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create an administrator record",
				ArgsUsage: "USERNAME",
				Action:    adminAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove an administrator record",
				ArgsUsage: "USERNAME",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "target-token",
						Usage:    "token of the record to remove",
						Required: true,
					},
				},
				Action: adminRemove,
			},
			{
				Name:      "rotate",
				Usage:     "Rotate an administrator's token",
				ArgsUsage: "USERNAME",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "target-token",
						Usage:    "current token of the record to rotate",
						Required: true,
					},
				},
				Action: adminRotate,
			},
		},
	}
}

func adminAdd(c *cli.Context) error {
	username, err := requireArg(c, "USERNAME")
	if err != nil {
		return err
	}
	return withClient(c, func(cl *client.Client) error {
		if err := cl.AddAdmin(username); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer,
			"add request for %q delivered; the new token is issued server-side\n", username)
		return nil
	})
}

func adminRemove(c *cli.Context) error {
	username, err := requireArg(c, "USERNAME")
	if err != nil {
		return err
	}
	return withClient(c, func(cl *client.Client) error {
		if err := cl.RemoveAdmin(username, c.String("target-token")); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "remove request for %q delivered\n", username)
		return nil
	})
}

func adminRotate(c *cli.Context) error {
	username, err := requireArg(c, "USERNAME")
	if err != nil {
		return err
	}
	return withClient(c, func(cl *client.Client) error {
		if err := cl.RotateToken(username, c.String("target-token")); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "rotate request for %q delivered\n", username)
		return nil
	})
}

func requireArg(c *cli.Context, name string) (string, error) {
	v := c.Args().First()
	if v == "" {
		return "", fmt.Errorf("%s argument is required", name)
	}
	return v, nil
}

// withClient dials with the global credential flags, runs fn, and
// closes the connection.
func withClient(c *cli.Context, fn func(*client.Client) error) error {
	tok := c.String("token")
	username := c.String("username")
	if tok == "" || username == "" {
		return fmt.Errorf("--token and --username (or ADMINGATE_TOKEN/ADMINGATE_USERNAME) are required")
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(c),
	}))

	cl, err := client.Dial(c.Context, client.Options{
		Addr:         c.String("server"),
		Token:        tok,
		Username:     username,
		DialTimeout:  c.Duration("timeout"),
		FrameTimeout: c.Duration("timeout"),
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer cl.Close()

	if err := fn(cl); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("send timed out")
		}
		return err
	}
	return nil
}

package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/warden/cmd/app/commands"
	"github.com/allisson/warden/internal/app"
)

func getPrincipalCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-principal",
			Usage: "Register a profile in the principal directory",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "subject",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Subject identifier assigned by the identity provider",
				},
				&cli.StringFlag{
					Name:    "email",
					Aliases: []string{"e"},
					Usage:   "Contact email address",
				},
				&cli.StringFlag{
					Name:    "display-name",
					Aliases: []string{"n"},
					Usage:   "Human-readable name",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				if err := container.Start(ctx); err != nil {
					return err
				}

				profileUseCase, err := container.ProfileUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreatePrincipal(
					ctx,
					profileUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("subject"),
					cmd.String("email"),
					cmd.String("display-name"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "verify-credential",
			Usage: "Verify a bearer credential with the configured identity provider",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "credential",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Bearer credential to verify",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				verifier, err := container.PrincipalVerifier()
				if err != nil {
					return err
				}

				return commands.RunVerifyCredential(
					ctx,
					verifier,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("credential"),
					cmd.String("format"),
				)
			},
		},
	}
}

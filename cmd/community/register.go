package main

import (
	"fmt"

	"github.com/jrsteele09/community-client/auth"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func register(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("register requires no arguments")
	}

	// A password given once on the command line is its own confirmation.
	password := c.String(flagPassword)
	message, err := env.auth.SignUp(c.Context, auth.SignUpForm{
		Email:           c.String(flagEmail),
		BahaiID:         c.String(flagBahaiID),
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.RegistrationFailedMessage))
	}

	fmt.Println(message)
	return nil
}

func verify(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("verify requires no arguments")
	}

	user, err := env.auth.Verify(
		c.Context,
		c.String(flagBahaiID),
		c.String(flagCode),
		c.String(flagPassword),
	)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.VerificationFailedMessage))
	}

	if err := env.session.WaitPreload(c.Context); err != nil {
		env.logger.Warn().Err(err).Msg("preload did not finish")
	}

	fmt.Printf("Account verified. Logged in as %s.\n", displayName(user.FullName(), user.Email))
	return nil
}

func forgotPassword(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("forgot-password requires no arguments")
	}

	message, err := env.auth.ForgotPassword(c.Context, c.String(flagEmail))
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.ForgotPasswordFailedMessage))
	}

	fmt.Println(message)
	return nil
}

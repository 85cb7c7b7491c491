package main

import (
	"fmt"

	"github.com/jrsteele09/community-client/auth"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func login(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("login requires no arguments")
	}

	user, err := env.auth.SignIn(c.Context, c.String(flagEmail), c.String(flagPassword))
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.LoginFailedMessage))
	}

	// The feeds are fetched in the background; give them a chance to land in
	// the store before the process exits.
	if err := env.session.WaitPreload(c.Context); err != nil {
		env.logger.Warn().Err(err).Msg("preload did not finish")
	}

	fmt.Printf("Logged in as %s.\n", displayName(user.FullName(), user.Email))
	return nil
}

func logout(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("logout requires no arguments")
	}

	env.auth.SignOut(c.Context)

	fmt.Println("Logout was successful.")
	return nil
}

func displayName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

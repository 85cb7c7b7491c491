package main

import (
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/jrsteele09/community-client/auth"
	"github.com/jrsteele09/community-client/users"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func profileGet(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("profile get requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	user := env.session.Snapshot().User
	if c.Bool(flagRefresh) || user == nil {
		var err error
		if user, err = env.auth.RefreshProfile(c.Context); err != nil {
			return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
		}
	}

	return printOutput(output, "get profile", user, func(table *uitable.Table) {
		table.AddRow("ID", user.ID)
		table.AddRow("NAME", user.FullName())
		table.AddRow("EMAIL", user.Email)
		table.AddRow("BAHA'I ID", user.BahaiID)
		community := ""
		if user.Community != nil {
			community = displayName(user.Community.Name, user.Community.ID)
		}
		table.AddRow("COMMUNITY", community)
		table.AddRow("ROLES", strings.Join(user.Roles, ", "))
	})
}

func profileUpdate(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("profile update requires no arguments")
	}

	current := env.session.Snapshot().User
	if current == nil {
		return errors.New(auth.NotLoggedInMessage)
	}

	edited := current.Clone()
	if c.IsSet(flagFirstName) {
		edited.FirstName = c.String(flagFirstName)
	}
	if c.IsSet(flagLastName) {
		edited.LastName = c.String(flagLastName)
	}
	if c.IsSet(flagEmail) {
		edited.Email = c.String(flagEmail)
	}
	if c.IsSet(flagCommunity) {
		edited.Community = &users.Community{ID: c.String(flagCommunity)}
	}

	stored, err := env.auth.UpdateProfile(c.Context, edited)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.ProfileUpdateFailedMessage))
	}
	if err := env.session.WaitPreload(c.Context); err != nil {
		env.logger.Warn().Err(err).Msg("preload did not finish")
	}

	fmt.Printf("Profile for %s updated.\n", displayName(stored.FullName(), stored.Email))
	return nil
}

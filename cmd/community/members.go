package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/jrsteele09/community-client/auth"
	"github.com/jrsteele09/community-client/users"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func memberList(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() > 1 {
		return errors.New("member list accepts at most one argument-- a community ID")
	}
	id, err := targetCommunity(c.Args().Get(0), env.session.Snapshot())
	if err != nil {
		return err
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	members, err := env.client.Members(c.Context, env.session, id)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}
	return printUsers(output, "list members", members)
}

func memberDiscover(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("member discover requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	found, err := env.client.DiscoverUsers(c.Context, env.session)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}
	return printUsers(output, "discover members", found)
}

func memberGet(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("member get requires one argument-- a user ID")
	}
	id := c.Args().Get(0)

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	user, err := env.client.User(c.Context, env.session, id)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	return printOutput(output, "get member", user, func(table *uitable.Table) {
		table.AddRow("ID", "NAME", "OCCUPATION", "COMMUNITY")
		table.AddRow(user.ID, user.FullName(), user.Occupation, user.CommunityID())
	})
}

func printUsers(output, operation string, found []users.User) error {
	if len(found) == 0 {
		fmt.Println("No members found.")
		return nil
	}
	return printOutput(output, operation, found, func(table *uitable.Table) {
		table.AddRow("ID", "NAME", "OCCUPATION")
		for _, u := range found {
			table.AddRow(u.ID, u.FullName(), u.Occupation)
		}
	})
}

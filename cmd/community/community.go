package main

import (
	"github.com/gosuri/uitable"
	"github.com/jrsteele09/community-client/api"
	"github.com/jrsteele09/community-client/auth"
	"github.com/jrsteele09/community-client/sessions"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func communityGet(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() > 1 {
		return errors.New("community get accepts at most one argument-- a community ID")
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

	community, err := env.client.Community(c.Context, env.session, id)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	return printOutput(output, "get community", community, func(table *uitable.Table) {
		table.AddRow("ID", "NAME", "MEMBERS")
		table.AddRow(community.ID, community.Name, community.MemberCount())
		if community.Description != "" {
			table.AddRow("")
			table.AddRow(community.Description)
		}
	})
}

func communityBody(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() < 1 || c.Args().Len() > 2 {
		return errors.New(
			"community body requires one or two arguments-- a body (lsa, feast, holy-days) and optionally a community ID",
		)
	}
	kind, err := api.ParseBodyKind(c.Args().Get(0))
	if err != nil {
		return err
	}
	id, err := targetCommunity(c.Args().Get(1), env.session.Snapshot())
	if err != nil {
		return err
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	body, err := env.client.CommunityBody(c.Context, env.session, id, kind)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	return printOutput(output, "get community body", body, func(table *uitable.Table) {
		table.AddRow("ID", "NAME", "TYPE", "MEMBERS")
		table.AddRow(body.ID, body.Name, body.Type, body.MemberCount())
	})
}

// communityMemberships reports which bodies of the community a user sits on,
// the logged in user by default.
func communityMemberships(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() > 1 {
		return errors.New("community memberships accepts at most one argument-- a user ID")
	}
	snap := env.session.Snapshot()
	communityID, err := targetCommunity("", snap)
	if err != nil {
		return err
	}
	userID := c.Args().Get(0)
	if userID == "" {
		if snap.User == nil {
			return errors.New(auth.NotLoggedInMessage)
		}
		userID = snap.User.ID
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	memberships := make(map[api.BodyKind]bool, len(api.BodyKinds))
	for _, kind := range api.BodyKinds {
		isMember, err := env.client.IsBodyMember(c.Context, env.session, kind, communityID, userID)
		if err != nil {
			return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
		}
		memberships[kind] = isMember
	}

	return printOutput(output, "get memberships", memberships, func(table *uitable.Table) {
		table.AddRow("BODY", "MEMBER")
		for _, kind := range api.BodyKinds {
			table.AddRow(kind, memberships[kind])
		}
	})
}

// targetCommunity is id when given, else the session's community.
func targetCommunity(id string, snap sessions.Snapshot) (string, error) {
	if id != "" {
		return id, nil
	}
	if snap.CommunityID == "" {
		if snap.User == nil {
			return "", errors.New(auth.NotLoggedInMessage)
		}
		return "", errors.New("You are not a member of a community. Pass a community ID.")
	}
	return snap.CommunityID, nil
}

package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/jrsteele09/community-client/auth"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func activityList(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("activity list requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	activities := env.session.Snapshot().Activities
	if c.Bool(flagRefresh) {
		var err error
		if activities, err = env.client.Activities(c.Context, env.session); err != nil {
			return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
		}
	}

	if len(activities) == 0 {
		fmt.Println("No activities found.")
		return nil
	}

	return printOutput(output, "list activities", activities, func(table *uitable.Table) {
		table.AddRow("ID", "TITLE", "TYPE", "STARTS")
		for _, activity := range activities {
			table.AddRow(activity.ID, activity.Title, activity.ActivityType, activity.StartDate)
		}
	})
}

func activityGet(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("activity get requires one argument-- an activity ID")
	}
	id := c.Args().Get(0)

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	activity, err := env.client.Activity(c.Context, env.session, id)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	return printOutput(output, "get activity", activity, func(table *uitable.Table) {
		table.AddRow("ID", "TITLE", "TYPE", "STARTS", "ADDRESS")
		table.AddRow(activity.ID, activity.Title, activity.ActivityType, activity.StartDate, activity.Address)
	})
}

package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/jrsteele09/community-client/auth"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func eventList(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("event list requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	events := env.session.Snapshot().Events
	if c.Bool(flagRefresh) {
		var err error
		if events, err = env.client.Events(c.Context, env.session); err != nil {
			return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
		}
	}

	if len(events) == 0 {
		fmt.Println("No events found.")
		return nil
	}

	return printOutput(output, "list events", events, func(table *uitable.Table) {
		table.AddRow("ID", "TITLE", "TYPE", "DATE", "TIME")
		for _, event := range events {
			table.AddRow(event.ID, event.Title, event.EventType, event.Date, eventTime(event.StartTime, event.EndTime))
		}
	})
}

func eventGet(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("event get requires one argument-- an event ID")
	}
	id := c.Args().Get(0)

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	event, err := env.client.Event(c.Context, env.session, id)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	return printOutput(output, "get event", event, func(table *uitable.Table) {
		table.AddRow("ID", "TITLE", "TYPE", "DATE", "TIME")
		table.AddRow(event.ID, event.Title, event.EventType, event.Date, eventTime(event.StartTime, event.EndTime))
		if event.Description != "" {
			table.AddRow("")
			table.AddRow(event.Description)
		}
	})
}

func eventJoin(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("event join requires one argument-- an event ID")
	}
	id := c.Args().Get(0)

	if err := env.client.JoinEvent(c.Context, env.session, id); err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	fmt.Printf("Joined event %q.\n", id)
	return nil
}

func eventTime(start, end string) string {
	switch {
	case start == "":
		return end
	case end == "":
		return start
	}
	return start + " - " + end
}

func eventAddHost(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() < 2 {
		return errors.New("event add-host requires at least two arguments-- an event ID and one or more user IDs")
	}
	id := c.Args().Get(0)
	hostIDs := c.Args().Slice()[1:]

	event, err := env.client.AddEventHosts(c.Context, env.session, id, hostIDs)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	fmt.Printf("Added %d host(s) to %q.\n", len(hostIDs), event.Title)
	return nil
}

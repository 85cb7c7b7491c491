package main

import (
	"fmt"
	"time"

	"github.com/gosuri/uitable"
	"github.com/jrsteele09/community-client/auth"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func notificationList(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("notification list requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)
	since, err := parseSince(c.String(flagSince), time.Now())
	if err != nil {
		return err
	}

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	user := env.session.Snapshot().User
	if user == nil {
		return errors.New(auth.NotLoggedInMessage)
	}

	notifications, err := env.client.Notifications(c.Context, env.session, user.ID, since)
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	if len(notifications) == 0 {
		fmt.Println("No notifications.")
		return nil
	}

	return printOutput(output, "list notifications", notifications, func(table *uitable.Table) {
		table.AddRow("ID", "TYPE", "READ", "CREATED", "CAPTION")
		for _, n := range notifications {
			table.AddRow(n.ID, n.Type, n.Read, n.CreatedAt, n.Caption())
		}
	})
}

func notificationRead(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("notification read requires one argument-- a notification ID")
	}
	id := c.Args().Get(0)

	if err := env.client.MarkNotificationRead(c.Context, env.session, id); err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	fmt.Printf("Marked notification %q as read.\n", id)
	return nil
}

func notificationReadAll(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("notification read-all requires no arguments")
	}

	user := env.session.Snapshot().User
	if user == nil {
		return errors.New(auth.NotLoggedInMessage)
	}

	if err := env.client.MarkAllNotificationsRead(c.Context, env.session, user.ID); err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	fmt.Println("Marked all notifications as read.")
	return nil
}

// parseSince reads --since as a lookback duration ("24h") or an RFC 3339
// time. Empty means no lower bound.
func parseSince(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return time.Time{}, errors.Errorf("--%s must not be negative", flagSince)
		}
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Errorf("--%s takes a duration such as 24h or an RFC 3339 time, got %q", flagSince, value)
	}
	return t, nil
}

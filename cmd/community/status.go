package main

import (
	"fmt"
	"time"

	"github.com/gosuri/uitable"
	"github.com/jrsteele09/community-client/auth"
	"github.com/jrsteele09/community-client/sessions"
	"github.com/jrsteele09/community-client/token/jwt"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// sessionStatus is the printable view of a session snapshot. The tokens
// themselves are never printed.
type sessionStatus struct {
	Status      string     `json:"status"`
	UserID      string     `json:"userId,omitempty"`
	Name        string     `json:"name,omitempty"`
	Email       string     `json:"email,omitempty"`
	CommunityID string     `json:"communityId,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Posts       int        `json:"posts"`
	Activities  int        `json:"activities"`
	Events      int        `json:"events"`
}

func newSessionStatus(snap sessions.Snapshot) sessionStatus {
	st := sessionStatus{
		Status:      snap.Status.String(),
		CommunityID: snap.CommunityID,
		Posts:       len(snap.Posts),
		Activities:  len(snap.Activities),
		Events:      len(snap.Events),
	}
	if snap.User != nil {
		st.UserID = snap.User.ID
		st.Name = snap.User.FullName()
		st.Email = snap.User.Email
	}
	if exp, err := jwt.ExpiresAt(snap.AccessToken); err == nil {
		st.ExpiresAt = &exp
	}
	return st
}

func status(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("status requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	st := newSessionStatus(env.session.Snapshot())
	return printOutput(output, "status", st, func(table *uitable.Table) {
		table.AddRow("STATUS", st.Status)
		table.AddRow("USER", displayName(st.Name, st.UserID))
		table.AddRow("EMAIL", st.Email)
		table.AddRow("COMMUNITY", st.CommunityID)
		expires := ""
		if st.ExpiresAt != nil {
			expires = st.ExpiresAt.Local().Format(time.RFC1123)
		}
		table.AddRow("EXPIRES", expires)
		table.AddRow("CACHED", fmt.Sprintf("%d posts, %d activities, %d events",
			st.Posts, st.Activities, st.Events))
	})
}

func refresh(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("refresh requires no arguments")
	}

	if err := env.session.RefreshSession(c.Context); err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}
	if err := env.session.WaitPreload(c.Context); err != nil {
		env.logger.Warn().Err(err).Msg("preload did not finish")
	}

	fmt.Println("Session refreshed.")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/community-client/internal/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "community"
	app.Usage = "Sign in to your community and keep up with its posts, activities and events"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  flagVerbose,
			Usage: "Log at debug level",
		},
		&cli.StringFlag{
			Name:    flagPassphrase,
			Usage:   "Passphrase sealing the local session file",
			EnvVars: []string{"COMMUNITY_PASSPHRASE"},
		},
	}
	app.Action = func(c *cli.Context) error {
		displayAppname(config.New().GetAppName())
		return cli.ShowAppHelp(c)
	}
	app.Commands = []*cli.Command{
		{
			Name:  "login",
			Usage: "Log in with email and password",
			Flags: []cli.Flag{
				cliFlagEmail,
				cliFlagPassword,
			},
			Action: withPreloadingEnvironment(login),
		},
		{
			Name:   "logout",
			Usage:  "Log out and forget the local session",
			Action: withEnvironment(logout),
		},
		{
			Name:  "register",
			Usage: "Create an account; a verification code is emailed to you",
			Flags: []cli.Flag{
				cliFlagEmail,
				cliFlagBahaiID,
				cliFlagPassword,
			},
			Action: withEnvironment(register),
		},
		{
			Name:  "verify",
			Usage: "Redeem the emailed verification code and log in",
			Flags: []cli.Flag{
				cliFlagBahaiID,
				&cli.StringFlag{
					Name:    flagCode,
					Aliases: []string{"c"},
					Usage:   "The verification code from the email",
				},
				cliFlagPassword,
			},
			Action: withPreloadingEnvironment(verify),
		},
		{
			Name:  "forgot-password",
			Usage: "Email a password reset link",
			Flags: []cli.Flag{
				cliFlagEmail,
			},
			Action: withEnvironment(forgotPassword),
		},
		{
			Name:  "status",
			Usage: "Show the local session",
			Flags: []cli.Flag{
				cliFlagOutput,
			},
			Action: withEnvironment(status),
		},
		{
			Name:   "refresh",
			Usage:  "Exchange the refresh token for a new access token",
			Action: withPreloadingEnvironment(refresh),
		},
		{
			Name:  "watch",
			Usage: "Keep the session alive and print every change until interrupted",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:    flagInterval,
					Aliases: []string{"i"},
					Usage:   "How often the access token is checked",
					Value:   30 * time.Second,
				},
				&cli.StringFlag{
					Name:  flagMetricsAddr,
					Usage: "Serve session metrics on this address (e.g. :9090)",
				},
			},
			Action: withPreloadingEnvironment(watch),
		},
		{
			Name:  "profile",
			Usage: "Manage your profile",
			Subcommands: []*cli.Command{
				{
					Name:  "get",
					Usage: "Show your profile",
					Flags: []cli.Flag{
						cliFlagOutput,
						&cli.BoolFlag{
							Name:  flagRefresh,
							Usage: "Fetch the profile from the server",
						},
					},
					Action: withEnvironment(profileGet),
				},
				{
					Name:  "update",
					Usage: "Update your profile",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  flagFirstName,
							Usage: "Your first name",
						},
						&cli.StringFlag{
							Name:  flagLastName,
							Usage: "Your last name",
						},
						&cli.StringFlag{
							Name:  flagEmail,
							Usage: "Your email address",
						},
						&cli.StringFlag{
							Name:  flagCommunity,
							Usage: "The ID of the community to move to",
						},
					},
					Action: withPreloadingEnvironment(profileUpdate),
				},
			},
		},
		{
			Name:  "post",
			Usage: "Read and interact with posts",
			Subcommands: []*cli.Command{
				{
					Name:  "list",
					Usage: "List your community's posts",
					Flags: []cli.Flag{
						cliFlagOutput,
						&cli.BoolFlag{
							Name:  flagRefresh,
							Usage: "Fetch the feed from the server instead of the local cache",
						},
						&cli.BoolFlag{
							Name:  flagExplore,
							Usage: "List posts from every community",
						},
					},
					Action: withEnvironment(postList),
				},
				{
					Name:      "create",
					Usage:     "Post to your community",
					ArgsUsage: "TITLE CONTENT",
					Action:    withEnvironment(postCreate),
				},
				{
					Name:      "like",
					Usage:     "Like a post",
					ArgsUsage: "POST_ID",
					Action:    withEnvironment(postLike),
				},
				{
					Name:      "comment",
					Usage:     "Comment on a post",
					ArgsUsage: "POST_ID COMMENT",
					Action:    withEnvironment(postComment),
				},
			},
		},
		{
			Name:  "activity",
			Usage: "Browse community activities",
			Subcommands: []*cli.Command{
				{
					Name:  "list",
					Usage: "List activities",
					Flags: []cli.Flag{
						cliFlagOutput,
						&cli.BoolFlag{
							Name:  flagRefresh,
							Usage: "Fetch from the server instead of the local cache",
						},
					},
					Action: withEnvironment(activityList),
				},
				{
					Name:      "get",
					Usage:     "Get an activity",
					ArgsUsage: "ACTIVITY_ID",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: withEnvironment(activityGet),
				},
			},
		},
		{
			Name:  "event",
			Usage: "Browse and join community events",
			Subcommands: []*cli.Command{
				{
					Name:  "list",
					Usage: "List events",
					Flags: []cli.Flag{
						cliFlagOutput,
						&cli.BoolFlag{
							Name:  flagRefresh,
							Usage: "Fetch from the server instead of the local cache",
						},
					},
					Action: withEnvironment(eventList),
				},
				{
					Name:      "get",
					Usage:     "Get an event",
					ArgsUsage: "EVENT_ID",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: withEnvironment(eventGet),
				},
				{
					Name:      "join",
					Usage:     "Join an event",
					ArgsUsage: "EVENT_ID",
					Action:    withEnvironment(eventJoin),
				},
				{
					Name:      "add-host",
					Usage:     "Add hosts to an event",
					ArgsUsage: "EVENT_ID USER_ID...",
					Action:    withEnvironment(eventAddHost),
				},
			},
		},
		{
			Name:  "community",
			Usage: "View a community and its bodies",
			Subcommands: []*cli.Command{
				{
					Name:      "get",
					Usage:     "Get a community, your own by default",
					ArgsUsage: "[COMMUNITY_ID]",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: withEnvironment(communityGet),
				},
				{
					Name:      "body",
					Usage:     "Get a community body: lsa, feast or holy-days",
					ArgsUsage: "BODY [COMMUNITY_ID]",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: withEnvironment(communityBody),
				},
				{
					Name:      "memberships",
					Usage:     "Show which of your community's bodies a user sits on, yourself by default",
					ArgsUsage: "[USER_ID]",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: withEnvironment(communityMemberships),
				},
			},
		},
		{
			Name:  "member",
			Usage: "Browse community members",
			Subcommands: []*cli.Command{
				{
					Name:      "list",
					Usage:     "List the members of a community, your own by default",
					ArgsUsage: "[COMMUNITY_ID]",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: withEnvironment(memberList),
				},
				{
					Name:      "get",
					Usage:     "Get a member's profile",
					ArgsUsage: "USER_ID",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: withEnvironment(memberGet),
				},
				{
					Name:  "discover",
					Usage: "List suggested members",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: withEnvironment(memberDiscover),
				},
			},
		},
		{
			Name:  "notification",
			Usage: "Read your notifications",
			Subcommands: []*cli.Command{
				{
					Name:  "list",
					Usage: "List notifications",
					Flags: []cli.Flag{
						cliFlagOutput,
						&cli.StringFlag{
							Name:  flagSince,
							Usage: "Only notifications newer than a duration ago (24h) or an RFC 3339 time",
						},
					},
					Action: withEnvironment(notificationList),
				},
				{
					Name:      "read",
					Usage:     "Mark a notification as read",
					ArgsUsage: "NOTIFICATION_ID",
					Action:    withEnvironment(notificationRead),
				},
				{
					Name:   "read-all",
					Usage:  "Mark every notification as read",
					Action: withEnvironment(notificationReadAll),
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Printf("\n%s\n\n", err)
		os.Exit(1)
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

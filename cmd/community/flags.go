package main

import "github.com/urfave/cli/v2"

const (
	flagBahaiID     = "bahai-id"
	flagCode        = "code"
	flagCommunity   = "community"
	flagEmail       = "email"
	flagExplore     = "explore"
	flagFirstName   = "first-name"
	flagInterval    = "interval"
	flagLastName    = "last-name"
	flagMetricsAddr = "metrics-addr"
	flagOutput      = "output"
	flagPassphrase  = "passphrase"
	flagPassword    = "password"
	flagRefresh     = "refresh"
	flagSince       = "since"
	flagVerbose     = "verbose"
)

var (
	cliFlagOutput = &cli.StringFlag{
		Name:    flagOutput,
		Aliases: []string{"o"},
		Usage:   "Return output in another format. Supported formats: table, yaml, json",
		Value:   "table",
	}
	cliFlagEmail = &cli.StringFlag{
		Name:    flagEmail,
		Aliases: []string{"e"},
		Usage:   "The account email address",
		EnvVars: []string{"COMMUNITY_EMAIL"},
	}
	cliFlagPassword = &cli.StringFlag{
		Name:    flagPassword,
		Aliases: []string{"p"},
		Usage:   "The account password",
		EnvVars: []string{"COMMUNITY_PASSWORD"},
	}
	cliFlagBahaiID = &cli.StringFlag{
		Name:  flagBahaiID,
		Usage: "The Bahá'í ID the account is registered with",
	}
)

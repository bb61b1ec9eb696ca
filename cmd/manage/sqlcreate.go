package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/syssam/veloxext/management/sqlcreate"
	"github.com/syssam/veloxext/settings"
)

func (a *app) sqlcreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "sqlcreate",
		Usage: "Print the SQL that creates the database and user of a database alias",
		Description: "The output is meant to be reviewed and piped to the database client, " +
			"e.g. manage sqlcreate | psql -U postgres. Advisories go to stderr.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "database",
				Usage: "database alias to create",
				Value: settings.DefaultDBAlias,
			},
			&cli.StringFlag{
				Name:    "router",
				Aliases: []string{"R"},
				Usage:   "deprecated, use --database",
				Value:   settings.DefaultDBAlias,
			},
			&cli.BoolFlag{
				Name:    "drop",
				Aliases: []string{"D"},
				Usage:   "start with DROP DATABASE and DROP USER statements",
			},
		},
		Action: a.runSQLCreate,
	}
}

func (a *app) runSQLCreate(ctx context.Context, cmd *cli.Command) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	c := &sqlcreate.Command{
		Settings:   s,
		Classifier: s.Classifier(),
		Stdout:     a.stdout,
		Stderr:     a.stderr,
		Logger:     a.log.Named("sqlcreate"),
	}
	return c.Run(ctx, sqlcreate.Options{
		Database: cmd.String("database"),
		Router:   cmd.String("router"),
		Drop:     cmd.Bool("drop"),
	})
}

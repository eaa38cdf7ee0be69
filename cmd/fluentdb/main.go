package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out, errOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "fluentdb",
		Usage:   "Build and run SQL statements against the configured database",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-dir",
				Value: "configs",
				Usage: "Folder holding .env and .<APP_ENV>.env",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML config file, read instead of the .env files",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Table prefix, overrides DB_TABLE_PREFIX",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "WARN",
				Usage: "DEBUG logs every statement",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Print the app_sql_stats histogram to stderr on exit",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "Trace statements and tag their logs with the trace id",
			},
			&cli.StringFlag{
				Name:  "trace-exporter",
				Usage: "zipkin or otlp, implies --trace",
			},
			&cli.StringFlag{
				Name:  "trace-url",
				Usage: "Zipkin collector URL or OTLP gRPC endpoint",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "Print a statement and its arguments without connecting",
				Flags: append(statementFlags(),
					&cli.StringFlag{
						Name:     "table",
						Usage:    "Table name, without prefix",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "action",
						Value: "select",
						Usage: "select, count, insert, update or delete",
					},
					&cli.StringSliceFlag{
						Name:  "set",
						Usage: "column=value, for insert and update",
					},
					&cli.StringFlag{
						Name:  "dialect",
						Value: "mysql",
						Usage: "mysql, postgres or sqlite",
					},
				),
				Action: func(_ context.Context, cmd *cli.Command) error {
					return render(cmd, out)
				},
			},
			{
				Name:      "select",
				Usage:     "Print the matching rows as JSON lines",
				Arguments: tableArg(),
				Flags:     statementFlags(),
				Action:    withSession(errOut, selectRows(out)),
			},
			{
				Name:      "count",
				Usage:     "Print the number of matching rows",
				Arguments: tableArg(),
				Flags:     statementFlags()[:1],
				Action:    withSession(errOut, countRows(out)),
			},
			{
				Name:      "delete",
				Usage:     "Delete the matching rows, at least one --where is required",
				Arguments: tableArg(),
				Flags:     statementFlags(),
				Action:    withSession(errOut, deleteRows(out)),
			},
			{
				Name:   "tables",
				Usage:  "List the tables of the database",
				Action: withSession(errOut, listTables(out)),
			},
			{
				Name:      "columns",
				Usage:     "List the columns of a table",
				Arguments: tableArg(),
				Action:    withSession(errOut, listColumns(out)),
			},
			{
				Name:  "describe",
				Usage: "Count the rows of every table",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "concurrency",
						Value: 4,
						Usage: "Tables counted at once",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Counts started per second, 0 for no limit",
					},
				},
				Action: withSession(errOut, describe(out)),
			},
		},
	}
}

func statementFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "where",
			Aliases: []string{"w"},
			Usage:   "column:value or column:operator:value, IN lists separated by |",
		},
		&cli.StringSliceFlag{
			Name:    "order",
			Aliases: []string{"o"},
			Usage:   "column or column:asc|desc",
		},
	}
}

func tableArg() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{
			Name: "table",
		},
	}
}

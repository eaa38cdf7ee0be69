package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sllt/fluentdb/pkg/fluentdb/config"
	fsql "github.com/sllt/fluentdb/pkg/fluentdb/datasource/sql"
	"github.com/sllt/fluentdb/pkg/fluentdb/datasource/sql/qb"
	"github.com/sllt/fluentdb/pkg/fluentdb/logging"
	"github.com/sllt/fluentdb/pkg/fluentdb/metrics"
)

var (
	errNoTable            = errors.New("please provide a table name, e.g.: fluentdb select users")
	errDeleteWithoutWhere = errors.New("delete needs at least one --where")
	errConcurrency        = errors.New("concurrency must be at least 1")
)

type session struct {
	db      *fsql.DB
	logger  logging.Logger
	metrics *metrics.Manager
	tp      *sdktrace.TracerProvider
	stats   bool
	errOut  io.Writer
}

type sessionFunc func(ctx context.Context, cmd *cli.Command, s *session) error

// withSession connects before fn and closes the connection after it.
func withSession(errOut io.Writer, fn sessionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) (err error) {
		s, err := openSession(ctx, cmd, errOut)
		if err != nil {
			return err
		}

		defer func() {
			err = errors.Join(err, s.close(context.WithoutCancel(ctx)))
		}()

		if s.tp != nil {
			var span trace.Span

			ctx, span = s.tp.Tracer("fluentdb").Start(ctx, cmd.Name)
			defer span.End()
		}

		return fn(ctx, cmd, s)
	}
}

func loadConfig(cmd *cli.Command, logger logging.Logger) (config.Config, error) {
	if path := cmd.String("config"); path != "" {
		return config.NewYAMLFile(path, logger)
	}

	return config.NewEnvFile(cmd.String("env-dir"), logger), nil
}

func openSession(ctx context.Context, cmd *cli.Command, errOut io.Writer) (*session, error) {
	logger := logging.NewLogger(logging.GetLevelFromString(cmd.String("log-level")))

	conf, err := loadConfig(cmd, logger)
	if err != nil {
		return nil, err
	}

	cfg, err := fsql.ConfigFromEnv(conf)
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("prefix") {
		cfg.Prefix = cmd.String("prefix")

		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}

	s := &session{
		logger:  logger,
		metrics: metrics.NewManager(logger),
		stats:   cmd.Bool("stats"),
		errOut:  errOut,
	}

	if err := fsql.RegisterStats(s.metrics); err != nil {
		return nil, err
	}

	if exporter := cmd.String("trace-exporter"); cmd.Bool("trace") || exporter != "" {
		s.tp, err = newTracerProvider(ctx, exporter, cmd.String("trace-url"))
		if err != nil {
			return nil, err
		}

		otel.SetTracerProvider(s.tp)
	}

	s.db, err = fsql.Connect(ctx, cfg, logger, s.metrics)
	if err != nil {
		return nil, err
	}

	if s.tp != nil {
		s.db.UseTracer(s.tp.Tracer("fluentdb"))
	}

	return s, nil
}

func (s *session) close(ctx context.Context) error {
	var errs []error

	if s.stats {
		errs = append(errs, s.metrics.WriteText(s.errOut))
	}

	if s.tp != nil {
		errs = append(errs, s.tp.Shutdown(ctx))
	}

	errs = append(errs, s.db.Close())

	return errors.Join(errs...)
}

func statementOf(cmd *cli.Command, action string) (statement, error) {
	table := cmd.StringArg("table")
	if table == "" {
		return statement{}, errNoTable
	}

	return statement{
		table:  table,
		action: action,
		wheres: cmd.StringSlice("where"),
		orders: cmd.StringSlice("order"),
	}, nil
}

func render(cmd *cli.Command, out io.Writer) error {
	dialect, err := qb.ParseDialect(cmd.String("dialect"))
	if err != nil {
		return err
	}

	st := statement{
		table:  cmd.String("table"),
		action: cmd.String("action"),
		wheres: cmd.StringSlice("where"),
		orders: cmd.StringSlice("order"),
		sets:   cmd.StringSlice("set"),
	}

	b, err := st.apply(qb.New(nil, qb.WithDialect(dialect), qb.WithPrefix(cmd.String("prefix"))))
	if err != nil {
		return err
	}

	query, args, err := b.ToSQL()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, query)

	return json.NewEncoder(out).Encode(args)
}

func selectRows(out io.Writer) sessionFunc {
	return func(ctx context.Context, cmd *cli.Command, s *session) error {
		st, err := statementOf(cmd, "select")
		if err != nil {
			return err
		}

		b, err := st.apply(s.db.Builder())
		if err != nil {
			return err
		}

		res, err := b.Run(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(out)

		for _, row := range res.Rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}

		return nil
	}
}

func countRows(out io.Writer) sessionFunc {
	return func(ctx context.Context, cmd *cli.Command, s *session) error {
		st, err := statementOf(cmd, "count")
		if err != nil {
			return err
		}

		b, err := st.apply(s.db.Builder())
		if err != nil {
			return err
		}

		var n int64

		if _, err := b.RunInto(ctx, &n); err != nil {
			return err
		}

		fmt.Fprintln(out, n)

		return nil
	}
}

func deleteRows(out io.Writer) sessionFunc {
	return func(ctx context.Context, cmd *cli.Command, s *session) error {
		st, err := statementOf(cmd, "delete")
		if err != nil {
			return err
		}

		if len(st.wheres) == 0 {
			return errDeleteWithoutWhere
		}

		b, err := st.apply(s.db.Builder())
		if err != nil {
			return err
		}

		res, err := b.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%d rows deleted\n", res.RowsAffected)

		return nil
	}
}

func listTables(out io.Writer) sessionFunc {
	return func(ctx context.Context, _ *cli.Command, s *session) error {
		tables, err := s.db.Tables(ctx)
		if err != nil {
			return err
		}

		for _, t := range tables {
			fmt.Fprintln(out, t)
		}

		return nil
	}
}

func listColumns(out io.Writer) sessionFunc {
	return func(ctx context.Context, cmd *cli.Command, s *session) error {
		table := cmd.StringArg("table")
		if table == "" {
			return errNoTable
		}

		columns, err := s.db.Columns(ctx, table)
		if err != nil {
			return err
		}

		for _, c := range columns {
			fmt.Fprintln(out, c)
		}

		return nil
	}
}

// describe counts every table with its own builder, since a builder holds one statement
// at a time. Table names are listed with their prefix, so the builders carry none. A
// positive --rate caps the counts started per second.
func describe(out io.Writer) sessionFunc {
	return func(ctx context.Context, cmd *cli.Command, s *session) error {
		limit := int(cmd.Int("concurrency"))
		if limit < 1 {
			return errConcurrency
		}

		tables, err := s.db.Tables(ctx)
		if err != nil {
			return err
		}

		dialect, err := qb.ParseDialect(s.db.Dialect())
		if err != nil {
			return err
		}

		var limiter *rate.Limiter
		if r := cmd.Float("rate"); r > 0 {
			limiter = rate.NewLimiter(rate.Limit(r), 1)
		}

		counts := make([]int64, len(tables))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)

		for i, table := range tables {
			g.Go(func() error {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				}

				b := qb.New(s.db, qb.WithDialect(dialect), qb.WithLogger(s.logger))

				_, err := b.Table(table).Count().RunInto(gctx, &counts[i])

				return err
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		for i, table := range tables {
			fmt.Fprintf(out, "%s\t%d\n", table, counts[i])
		}

		return nil
	}
}

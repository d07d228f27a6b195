package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
	"github.com/MarcosBaez42/automatizacion-sofia/core/report"
	emailsvc "github.com/MarcosBaez42/automatizacion-sofia/services/email"
	"github.com/MarcosBaez42/automatizacion-sofia/services/portal"
	"github.com/MarcosBaez42/automatizacion-sofia/storage/database"
	inmemdb "github.com/MarcosBaez42/automatizacion-sofia/storage/database/inmem"
	sqlxrepos "github.com/MarcosBaez42/automatizacion-sofia/storage/database/sqlx"
)

var openDBFunc = database.Open // mockable

type app struct {
	conf   *core.Config
	out    io.Writer
	std    *log.Logger
	logger core.Logger

	db     *sqlx.DB
	ownsDB bool
}

// database opens the database on first use.
func (a *app) database() (*sqlx.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := openDBFunc(a.conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	a.db, a.ownsDB = db, true
	return db, nil
}

func (a *app) close() {
	if a.db != nil && a.ownsDB {
		if err := a.db.Close(); err != nil {
			a.logger.Error("closing database", err)
		}
	}
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sofia-job",
		Short:        "Check Sofía Plus grading reports of overdue fiches",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRunCmd(a), newAnalyzeCmd(a))
	return rootCmd
}

func newRunCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process one batch of pending fiches",
		Long: `run downloads the grading report of each overdue fiche (at most job.batchSize per run),
updates its schedules, notifies the instructor when grading is still missing
and writes one processing log per fiche.

With --dry-run nothing is written and no email is sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Analyze reports without updating schedules or sending emails")
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze FILE",
		Short: "Print the grading decision of a report file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision, err := report.NewAnalyzer(a.conf.Location(), a.logger).AnalyzeFile(args[0])
			if err != nil {
				return err
			}
			return a.printJSON(decision)
		},
	}
}

func (a *app) run(ctx context.Context, dryRun bool) error {
	db, err := a.database()
	if err != nil {
		return err
	}

	var (
		schedules fiche.ScheduleRepository = sqlxrepos.NewScheduleRepository(db)
		logs      fiche.LogRepository      = sqlxrepos.NewLogRepository(db)
		mailer                             = fiche.NewMailNotifier(a.conf, emailsvc.New(a.conf, a.std, a.logger), a.logger)
		notifier  fiche.Notifier           = mailer
	)
	if dryRun {
		a.logger.Info("Ejecución de prueba: no se actualizarán horarios ni se enviarán correos.")
		schedules = dryRunSchedules{ScheduleRepository: schedules, logger: a.logger}
		logs = inmemdb.NewLogRepository(inmemdb.Open())
		notifier = dryRunNotifier{mailer: mailer, logger: a.logger}
	}

	svc := fiche.NewService(fiche.Options{
		Conf:      a.conf,
		Schedules: schedules,
		Logs:      logs,
		Portal:    portal.NewInboxClient(a.conf, a.logger),
		Analyzer:  report.NewAnalyzer(a.conf.Location(), a.logger),
		Notifier:  notifier,
		Logger:    a.logger,
	})

	summary, err := svc.ProcessPending(ctx)
	if pErr := a.printJSON(summary); pErr != nil && err == nil {
		err = pErr
	}
	return err
}

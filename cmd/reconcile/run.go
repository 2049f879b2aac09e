package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/reconcile/internal/config"
	"github.com/JonMunkholm/reconcile/internal/core"
	"github.com/JonMunkholm/reconcile/internal/workbook"
)

// runOptions are the flags of the run command.
type runOptions struct {
	master         string
	sheet          string
	sources        []string
	labels         []string
	out            string
	dayFirst       bool
	duplicateScope string
	exclude        []string
	timeout        time.Duration
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile a master schedule against vendor exports",
		Long: `Run links each --source to the master schedule, classifies every cell
and writes the merged workbook to --out.

Without --master the schedule is read from the database configured by
DATABASE_URL. The command exits non-zero when any source could not be
reconciled; the workbook is still written for the others.`,
		Example: `  reconcile run --master week45.xlsx --source V8.csv --source events.json
  reconcile run --master week45.csv --source a.csv --label Vendor --out merged.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, opts)
		},
	}

	defaults := core.DefaultOptions()
	f := cmd.Flags()
	f.StringVarP(&opts.master, "master", "m", "", "master schedule (.xlsx, .xlsm or .csv)")
	f.StringVar(&opts.sheet, "sheet", "", "workbook sheet holding the schedule (default first sheet)")
	f.StringArrayVarP(&opts.sources, "source", "s", nil, "source export, repeatable; merged in the given order")
	f.StringArrayVarP(&opts.labels, "label", "l", nil, "label for the source at the same position, repeatable")
	f.StringVarP(&opts.out, "out", "o", "reconciled.xlsx", "output workbook")
	f.BoolVar(&opts.dayFirst, "day-first", defaults.DayFirst, "read ambiguous master dates as DD/MM")
	f.StringVar(&opts.duplicateScope, "duplicate-scope", string(defaults.DuplicateScope), "columns compared for duplicates: all or master")
	f.StringSliceVar(&opts.exclude, "exclude", defaults.ExcludedColumns, "flat export columns dropped before merging")
	f.DurationVar(&opts.timeout, "timeout", core.DefaultServiceConfig().Timeout, "upper bound for the run")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func runReconcile(cmd *cobra.Command, opts *runOptions) error {
	scope := core.DuplicateScope(opts.duplicateScope)
	if scope != core.DuplicateAllColumns && scope != core.DuplicateMasterColumns {
		return fmt.Errorf("invalid --duplicate-scope %q: want all or master", opts.duplicateScope)
	}
	if len(opts.labels) > len(opts.sources) {
		return fmt.Errorf("%d labels for %d sources", len(opts.labels), len(opts.sources))
	}

	ctx := cmd.Context()
	cfg := core.DefaultServiceConfig()
	cfg.MaxConcurrent = 1
	cfg.Timeout = opts.timeout
	cfg.MasterSheet = opts.sheet
	cfg.Options = core.Options{
		ExcludedColumns: opts.exclude,
		DayFirst:        opts.dayFirst,
		DuplicateScope:  scope,
	}

	var req core.RunRequest
	var db core.DBTX
	if opts.master != "" {
		f, err := os.Open(opts.master)
		if err != nil {
			return fmt.Errorf("open master: %w", err)
		}
		defer f.Close()
		req.MasterName = filepath.Base(opts.master)
		req.Master = f
	} else {
		pool, query, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		db = pool
		cfg.MasterQuery = query
		req.MasterName = "database"
	}

	for i, path := range opts.sources {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		defer f.Close()
		in := core.SourceInput{Name: filepath.Base(path), Reader: f}
		if i < len(opts.labels) {
			in.Label = opts.labels[i]
		}
		req.Sources = append(req.Sources, in)
	}

	svc := core.NewService(db, workbook.LoadMaster, cfg)
	defer svc.Close()

	rec, err := svc.Run(ctx, req)
	var runErr *core.RunError
	if err != nil && !(errors.As(err, &runErr) && rec != nil) {
		return core.NewUserError(err)
	}

	if err := writeWorkbook(opts.out, rec.Result); err != nil {
		return err
	}
	if err := printRun(cmd.OutOrStdout(), rec, opts.out); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	return nil
}

// openDatabase connects with the DATABASE_URL settings.
func openDatabase(ctx context.Context) (*pgxpool.Pool, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	if !cfg.Database.Enabled() {
		return nil, "", errors.New("no file provided: --master is required when DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, "", fmt.Errorf("connect database: %w", err)
	}
	return pool, cfg.Database.MasterQuery, nil
}

func writeWorkbook(path string, res *core.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := workbook.Write(f, res); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

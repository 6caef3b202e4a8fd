package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/vob-portal/pkg/portaldb"
	"storj.io/vob-portal/pkg/ratecsv"
	"storj.io/vob-portal/pkg/vob"
)

// importBatch is how many rows are inserted between progress updates.
const importBatch = 500

type importConfig struct {
	*rootConfig

	// CSVPaths are the seed files, plain or gzip compressed
	CSVPaths []string

	SkipConfirmation bool
}

func newImportCommand(rootConfig *rootConfig) *cobra.Command {
	config := &importConfig{
		rootConfig: rootConfig,
	}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Imports seed data from CSV files into the database",
	}
	cmd.PersistentFlags().BoolVarP(
		&config.SkipConfirmation,
		"yes", "y",
		false,
		"Import without asking for confirmation")

	cmd.AddCommand(&cobra.Command{
		Use:   "rates CSVPATH...",
		Short: "Imports reimbursement rates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.CSVPaths = args
			return checkCmd(doImport(config, "rates", ratecsv.LoadRates, (*portaldb.Tx).InsertRates))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "vob CSVPATH...",
		Short: "Imports VOB records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.CSVPaths = args
			return checkCmd(doImport(config, "vob", ratecsv.LoadVOB, (*portaldb.Tx).InsertVOBRecords))
		},
	})
	return cmd
}

type importFile[T any] struct {
	path string
	rows []T
}

type insertFunc[T any] func(tx *portaldb.Tx, ctx context.Context, rows []T) error

// compile time checks that the loaders line up with the inserts
var (
	_ insertFunc[portaldb.Rate] = (*portaldb.Tx).InsertRates
	_ insertFunc[vob.Record]    = (*portaldb.Tx).InsertVOBRecords
)

func doImport[T any](config *importConfig, kind string, load func(string) ([]T, error), insert insertFunc[T]) (err error) {
	log, err := openLog(config.DataDir, "import", config.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var files []importFile[T]
	var total int
	for _, path := range config.CSVPaths {
		rows, err := load(path)
		if err != nil {
			return errs.New("failed to load %q: %v", path, err)
		}
		log.Debug("Loaded seed file", zap.String("kind", kind), zap.String("path", path), zap.Int("rows", len(rows)))
		files = append(files, importFile[T]{path: path, rows: rows})
		total += len(rows)
	}

	if !config.SkipConfirmation {
		label := fmt.Sprintf("Import %d %s rows from %d file(s) into %s", total, kind, len(files), config.Config.Server.DBPath)
		if err := promptConfirm(label); err != nil {
			return err
		}
	}

	db, err := config.Config.Server.OpenDB(config.Ctx, log, false)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, db.Close()) }()

	progress := mpb.NewWithContext(config.Ctx, mpb.WithOutput(os.Stderr), mpb.WithWidth(60))
	bars := make([]*mpb.Bar, len(files))
	for i, file := range files {
		bars[i] = progress.AddBar(int64(len(file.rows)),
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("[%d/%d] %s ", i+1, len(files), filepath.Base(file.path)), decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
			),
		)
	}

	err = db.WithTx(config.Ctx, func(tx *portaldb.Tx) error {
		for i, file := range files {
			for start := 0; start < len(file.rows); start += importBatch {
				end := min(start+importBatch, len(file.rows))
				if err := insert(tx, config.Ctx, file.rows[start:end]); err != nil {
					return errs.New("failed to import %q: %v", file.path, err)
				}
				bars[i].IncrBy(end - start)
			}
			// empty files never reach their total on their own
			bars[i].SetTotal(-1, true)
		}
		return nil
	})
	for _, bar := range bars {
		bar.Abort(false)
	}
	progress.Wait()
	if err != nil {
		return err
	}

	log.Info("Import complete", zap.String("kind", kind), zap.Int("rows", total), zap.String("db", db.Path()))
	return nil
}

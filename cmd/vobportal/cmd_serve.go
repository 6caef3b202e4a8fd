package main

import (
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/vob-portal/pkg/server"
)

type serveConfig struct {
	*rootConfig

	Listen   string
	ReadOnly bool
}

func newServeCommand(rootConfig *rootConfig) *cobra.Command {
	config := &serveConfig{
		rootConfig: rootConfig,
	}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the query service over the SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCmd(doServe(config))
		},
	}
	cmd.Flags().StringVarP(
		&config.Listen,
		"listen", "",
		"",
		"Address to listen on (overrides server.listen)")
	cmd.Flags().BoolVarP(
		&config.ReadOnly,
		"read-only", "",
		false,
		"Open an existing database read-only instead of creating the schema")
	return cmd
}

func doServe(config *serveConfig) (err error) {
	log, err := openLog(config.DataDir, "serve", config.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := config.Config.Server.OpenDB(config.Ctx, log, config.ReadOnly)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, db.Close()) }()

	serverConfig := config.Config.Server.ServerConfig()
	if config.Listen != "" {
		serverConfig.Listen = config.Listen
	}

	log.Debug("Database opened",
		zap.String("path", db.Path()),
		zap.Bool("read_only", config.ReadOnly),
		zap.Duration("request_timeout", serverConfig.RequestTimeout),
	)

	return server.New(log, db, serverConfig).Run(config.Ctx)
}

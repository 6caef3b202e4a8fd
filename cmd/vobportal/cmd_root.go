package main

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/config"
)

const (
	defaultDataDir = "."
)

type rootConfig struct {
	Ctx context.Context

	ConfigPath string
	DataDir    string
	APIURL     string
	DBPath     string
	Verbose    bool

	Config config.Config
}

func newRootCommand() *cobra.Command {
	root := new(rootConfig)
	cmd := &cobra.Command{
		Use:   "vobportal",
		Short: "Search VOB records and summarize reimbursement rates",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			root.Ctx = cmdCtx()
			return checkCmd(root.load(cmd.Flags().Changed("config")))
		},
		Version: getVersion(),
	}
	cmd.PersistentFlags().StringVarP(
		&root.ConfigPath,
		"config", "",
		config.DefaultPath,
		"Path to the TOML config file")
	cmd.PersistentFlags().StringVarP(
		&root.DataDir,
		"data-dir", "",
		defaultDataDir,
		"Directory to store data (e.g. logs)")
	cmd.PersistentFlags().StringVarP(
		&root.APIURL,
		"api-url", "",
		"",
		"URL of the query service (overrides client.api_url)")
	cmd.PersistentFlags().StringVarP(
		&root.DBPath,
		"db", "",
		"",
		"Path to the SQLite database (overrides server.db_path)")
	cmd.PersistentFlags().BoolVarP(
		&root.Verbose,
		"verbose", "v",
		false,
		"Log debug output to stderr")

	cmd.AddCommand(newServeCommand(root))
	cmd.AddCommand(newImportCommand(root))
	cmd.AddCommand(newVOBCommand(root))
	cmd.AddCommand(newReimbCommand(root))
	cmd.AddCommand(newHealthCommand(root))
	return cmd
}

// load reads the config file and applies the flag overrides. A missing
// default config file is not an error.
func (root *rootConfig) load(explicit bool) error {
	path := string(config.ToPath(root.ConfigPath))

	var cfg config.Config
	var err error
	if explicit {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOptional(path)
	}
	if err != nil {
		if unknown := config.DumpUnknownFields(err); unknown != "" {
			return errs.New("%v\n%s", err, unknown)
		}
		return errs.Wrap(err)
	}

	if root.APIURL != "" {
		cfg.Client.APIURL = root.APIURL
	}
	if root.DBPath != "" {
		cfg.Server.DBPath = config.ToPath(root.DBPath)
	}
	root.Config = cfg
	return nil
}

func getVersion() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	return fmt.Sprintf("%s (built with %s)\n", buildInfo.Main.Version, runtime.Version())
}

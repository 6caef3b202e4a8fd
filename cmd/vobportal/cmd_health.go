package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"storj.io/vob-portal/pkg/fancy"
	"storj.io/vob-portal/pkg/portalapi"
)

type healthConfig struct {
	*rootConfig
}

func newHealthCommand(rootConfig *rootConfig) *cobra.Command {
	config := &healthConfig{
		rootConfig: rootConfig,
	}
	return &cobra.Command{
		Use:   "health",
		Short: "Checks connectivity to the query service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCmd(doHealth(config))
		},
	}
}

func doHealth(config *healthConfig) error {
	client, err := portalapi.NewClient(config.Config.Client.APIURL)
	if err != nil {
		return usageErr.Wrap(err)
	}
	printHealth(config.Ctx, os.Stdout, client)
	return nil
}

type healthChecker interface {
	Health(ctx context.Context) (*portalapi.Health, error)
}

// printHealth shows the connectivity pill. A failed check is only ever
// reported, never returned.
func printHealth(ctx context.Context, w io.Writer, checker healthChecker) {
	health, err := checker.Health(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(w, fancy.Pill(false))
		fancy.Fmutedln(w, message(err))
		return
	}
	_, _ = fmt.Fprintln(w, fancy.Pill(true))
	fancy.Fmutedln(w, fmt.Sprintf("db: %s (ok=%t)", health.DBPath, health.OK))
}

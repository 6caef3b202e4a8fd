package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/clip"
	"storj.io/vob-portal/pkg/fancy"
	"storj.io/vob-portal/pkg/format"
	"storj.io/vob-portal/pkg/reimb"
	"storj.io/vob-portal/pkg/view"
)

const noReimbursementData = "No reimbursement data found."

type reimbConfig struct {
	*rootConfig

	Filters     reimb.Filters
	CSVPath     string
	Copy        bool
	Interactive bool
}

func newReimbCommand(rootConfig *rootConfig) *cobra.Command {
	config := &reimbConfig{
		rootConfig: rootConfig,
	}
	cmd := &cobra.Command{
		Use:   "reimb",
		Short: "Summarizes reimbursement rates per person and location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCmd(doReimb(config))
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&config.Filters.FirstName, "first-name", "", "", "First name substring")
	flags.StringVarP(&config.Filters.LastName, "last-name", "", "", "Last name substring")
	flags.StringVarP(&config.Filters.Prefix, "prefix", "", "", "Member id prefix")
	flags.StringVarP(&config.Filters.Payer, "payer", "", "", "Payer name substring")
	flags.StringVarP(&config.Filters.State, "state", "", "", "BCBS state")
	flags.StringVarP(&config.Filters.Employer, "employer", "", "", "Employer name substring")
	flags.StringVarP(&config.CSVPath, "csv", "", "", "Also write the summaries to a CSV file")
	flags.BoolVarP(&config.Copy, "copy", "", false, "Copy the summaries to the clipboard")
	flags.BoolVarP(&config.Interactive, "interactive", "i", false, "Browse summaries and daily rows")
	return cmd
}

func doReimb(config *reimbConfig) error {
	api, err := config.Config.Client.NewAPI()
	if err != nil {
		return usageErr.Wrap(err)
	}

	people, err := reimb.Search(config.Ctx, api, config.Filters)
	switch {
	case reimb.ErrValidation.Has(err):
		return usageErr.New("%s", message(err))
	case err != nil:
		return errs.New("%s", message(err))
	}

	fancy.Finfoln(os.Stdout, format.Matches(len(people)))
	if len(people) == 0 {
		fancy.Fmutedln(os.Stdout, noReimbursementData)
		return nil
	}

	if config.CSVPath != "" {
		var export reimb.ExportBuffer
		for _, p := range people {
			export.Emit(p)
		}
		if err := writeFile(config.CSVPath, export.Finalize()); err != nil {
			return errs.New("failed to write %q: %v", config.CSVPath, err)
		}
		fancy.Fmutedln(os.Stdout, fmt.Sprintf("Wrote %d summaries to %s", len(people), config.CSVPath))
	}

	clipboard := clip.New(os.Stdout)

	if config.Interactive {
		log, err := openLog(config.DataDir, "reimb", config.Verbose)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		views := view.NewController(log, api, terminalRenderer{w: os.Stdout}, config.Config.Client.RowsLimit)
		return browsePeople(config.Ctx, os.Stdout, views, clipboard, people)
	}

	var texts []string
	for _, p := range people {
		text := reimb.BuildSummary(p).Text()
		texts = append(texts, text)
		_, _ = fmt.Fprintln(os.Stdout)
		fancy.Finfoln(os.Stdout, text)
	}

	if config.Copy {
		copySummary(os.Stdout, clipboard, strings.Join(texts, "\n\n"))
	}
	return nil
}

type copier interface {
	Copy(text string) bool
}

func copySummary(w io.Writer, c copier, text string) {
	ok := c.Copy(text)
	_, _ = fmt.Fprintln(w, fancy.Status(ok, clip.Status(ok)))
}

// personLabel is how a person is listed before a summary is opened.
func personLabel(p *reimb.Person) string {
	label := p.DisplayName() + " • " + p.MemberID
	if p.PayerName != "" {
		label += "  " + p.PayerName
	}
	return label
}

func browsePeople(ctx context.Context, w io.Writer, views *view.Controller, c copier, people []*reimb.Person) error {
	items := make([]string, 0, len(people)+1)
	for _, p := range people {
		items = append(items, personLabel(p))
	}
	items = append(items, "Quit")

	for {
		i, err := promptSelect(format.Matches(len(people)), items)
		if errs.Is(err, errAborted) || i == len(people) {
			views.Close()
			return nil
		}
		if err != nil {
			return err
		}
		if err := browsePerson(ctx, w, views, c, people[i]); err != nil {
			return err
		}
	}
}

const (
	actionCopy  = "Copy summary"
	actionBack  = "Back"
	actionClose = "Close"
)

// browsePerson drives the view controller from the summary of p until the
// user closes the view.
func browsePerson(ctx context.Context, w io.Writer, views *view.Controller, c copier, p *reimb.Person) error {
	views.OpenClientSummary(p)
	for {
		state := views.State()
		switch state.Kind {
		case view.ClientSummary:
			items := make([]string, 0, len(state.Summary.Lines)+2)
			for _, line := range state.Summary.Lines {
				items = append(items, line.String())
			}
			items = append(items, actionCopy, actionClose)

			i, err := promptSelect(state.Summary.Subtitle(), items)
			switch {
			case errs.Is(err, errAborted):
				views.Close()
				return nil
			case err != nil:
				return err
			case i < len(state.Summary.Lines):
				views.OpenLocationDetail(ctx, state.Person, state.Summary.Lines[i].Location)
			case items[i] == actionCopy:
				copySummary(w, c, state.Summary.Text())
			default:
				views.Close()
				return nil
			}

		case view.LocationDetail:
			i, err := promptSelect(view.DetailTitle(state.Location), []string{actionBack, actionClose})
			switch {
			case errs.Is(err, errAborted):
				views.Close()
				return nil
			case err != nil:
				return err
			case i == 0:
				views.Back()
			default:
				views.Close()
				return nil
			}

		default:
			return nil
		}
	}
}

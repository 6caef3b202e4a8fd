package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/fancy"
	"storj.io/vob-portal/pkg/format"
	"storj.io/vob-portal/pkg/portalapi"
	"storj.io/vob-portal/pkg/vob"
)

type vobConfig struct {
	*rootConfig

	Filters     vob.Filters
	Members     bool
	Interactive bool
}

func newVOBCommand(rootConfig *rootConfig) *cobra.Command {
	config := &vobConfig{
		rootConfig: rootConfig,
	}
	cmd := &cobra.Command{
		Use:   "vob",
		Short: "Searches verification-of-benefits records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCmd(doVOB(config))
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&config.Filters.MemberID, "member-id", "", "", "Member (insurance) id substring")
	flags.StringVarP(&config.Filters.DOB, "dob", "", "", "Exact date of birth")
	flags.StringVarP(&config.Filters.Payer, "payer", "", "", "Payer name substring")
	flags.StringVarP(&config.Filters.State, "state", "", "", "BCBS state (only used for Blue Cross payers)")
	flags.StringVarP(&config.Filters.Facility, "facility", "", "", "Facility name substring")
	flags.StringVarP(&config.Filters.Employer, "employer", "", "", "Employer name substring")
	flags.StringVarP(&config.Filters.FirstName, "first-name", "", "", "First name substring")
	flags.StringVarP(&config.Filters.LastName, "last-name", "", "", "Last name substring")
	flags.IntVarP(&config.Filters.Limit, "limit", "", 0, "Maximum number of results (defaults to client.vob_limit)")
	flags.BoolVarP(&config.Members, "members", "", false, "Mark records whose member has reimbursement data")
	flags.BoolVarP(&config.Interactive, "interactive", "i", false, "Pick results to show their details")
	return cmd
}

func doVOB(config *vobConfig) error {
	client, err := portalapi.NewClient(config.Config.Client.APIURL)
	if err != nil {
		return usageErr.Wrap(err)
	}

	filters := config.Filters
	if filters.Limit <= 0 {
		filters.Limit = config.Config.Client.VOBLimit
	}

	controller := vob.NewController(nil, client)
	records, err := controller.Search(config.Ctx, filters)
	switch {
	case vob.ErrValidation.Has(err):
		return usageErr.New("%s", message(err))
	case err != nil:
		return errs.New("%s", message(err))
	}

	var members map[string]bool
	if config.Members {
		members = lookupMembers(config.Ctx, os.Stderr, client, records)
	}

	fancy.Finfoln(os.Stdout, controller.CountText())
	if len(records) == 0 {
		return nil
	}
	renderVOB(os.Stdout, records, members)

	if !config.Interactive {
		return nil
	}
	return browseVOB(os.Stdout, controller)
}

type membersQuerier interface {
	MembersWithReimbursement(ctx context.Context, memberIDs []string) ([]string, error)
}

// lookupMembers returns the set of record members with reimbursement data.
// A failure is reported and yields an empty set.
func lookupMembers(ctx context.Context, w io.Writer, q membersQuerier, records []vob.Record) map[string]bool {
	var ids []string
	for i := range records {
		if id := memberID(&records[i]); id != "" {
			ids = append(ids, id)
		}
	}

	members := make(map[string]bool)
	found, err := q.MembersWithReimbursement(ctx, ids)
	if err != nil {
		fancy.Fwarnln(w, message(err))
		return members
	}
	for _, id := range found {
		members[id] = true
	}
	return members
}

func browseVOB(w io.Writer, controller *vob.Controller) error {
	records := controller.Results()
	items := make([]string, 0, len(records)+1)
	for i := range records {
		r := &records[i]
		items = append(items, fmt.Sprintf("%s  %s %s  %s  %s",
			format.Text(r.ID), format.Text(r.FirstName), format.Text(r.LastName), format.Text(r.DOB), r.Payer()))
	}
	items = append(items, "Done")

	for {
		i, err := promptSelect(controller.CountText(), items)
		if errs.Is(err, errAborted) || i == len(records) {
			return nil
		}
		if err != nil {
			return err
		}
		detail, err := controller.Detail(i)
		if err != nil {
			return err
		}
		renderDetail(w, detail)
	}
}

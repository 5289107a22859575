package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mch/mch/pkg/anc"
)

func ancCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anc",
		Short: "Antenatal care",
	}

	statusCmd := &cobra.Command{
		Use:   "status <patient-id>",
		Short: "Show where a patient is in the ANC flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.api.GetPatient(ctx, args[0])
			if err := a.done(err); err != nil {
				return err
			}

			flow := anc.NewFlow(anc.NewController(), a.api)
			defer flow.Close()
			lookup, _ := flow.SelectPatient(ctx, p.ID)
			if lookup.Status == anc.LookupFetchFailed {
				if err := a.done(lookup.Err); err != nil {
					return err
				}
			}

			progress, err := a.api.ANCProgress(ctx, p.ID)
			if err := a.done(err); err != nil {
				return err
			}
			completed := make(map[anc.Stage]bool, len(progress.Completed))
			for _, s := range progress.Completed {
				completed[s] = true
			}

			fmt.Fprintf(a.out, "%s %s\n", p.FirstName, p.LastName)
			fmt.Fprintf(a.out, "Registration: %s\n", lookup.Status)
			for _, s := range anc.Stages {
				mark := " "
				if completed[s] {
					mark = "x"
				}
				note := ""
				switch {
				case s == progress.Current:
					note = "  <- current"
				case !progress.Accessible[s]:
					note = "  (locked)"
				}
				fmt.Fprintf(a.out, "  [%s] %s%s\n", mark, s, note)
			}

			if lookup.Status == anc.LookupFound {
				visits, err := a.api.ListVisits(ctx, lookup.RegistrationID)
				if err := a.done(err); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Visits recorded: %d\n", len(visits))
				return nil
			}
			ctrl := flow.Controller()
			if err := ctrl.GoTo(anc.StageVisits); err != nil {
				return err
			}
			if v := ctrl.View(); v.Placeholder != "" {
				fmt.Fprintln(a.out, v.Placeholder)
			}
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}

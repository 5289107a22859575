package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func reportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Data-capture reports and dashboard figures",
	}

	captureCmd := &cobra.Command{
		Use:   "data-capture",
		Short: "Records entered per account over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			from, to, err := reportRange(cmd)
			if err != nil {
				return err
			}

			if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
				data, err := a.api.DataCaptureReportXLSX(cmd.Context(), from, to)
				if err := a.done(err); err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", path, len(data))
				return nil
			}

			rep, err := a.api.DataCaptureReport(cmd.Context(), from, to)
			if err := a.done(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Data capture %s to %s\n", rep.From.Format(dateLayout), rep.To.Format(dateLayout))
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "USER\tNAME\tPATIENTS\tREGISTRATIONS\tVISITS\tKITS\tTOTAL")
			var patients, regs, visits, kits int
			for _, r := range rep.Rows {
				total := r.Patients + r.Registrations + r.Visits + r.KitLogs
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n", r.Username, r.FullName, r.Patients, r.Registrations, r.Visits, r.KitLogs, total)
				patients += r.Patients
				regs += r.Registrations
				visits += r.Visits
				kits += r.KitLogs
			}
			fmt.Fprintf(tw, "TOTAL\t\t%d\t%d\t%d\t%d\t%d\n", patients, regs, visits, kits, patients+regs+visits+kits)
			return tw.Flush()
		},
	}
	captureCmd.Flags().String("from", "", "First day, YYYY-MM-DD (default: 30 days before --to)")
	captureCmd.Flags().String("to", "", "Last day, YYYY-MM-DD (default: today)")
	captureCmd.Flags().String("xlsx", "", "Save the report as a spreadsheet at this path")
	cmd.AddCommand(captureCmd)

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Headline counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			agg, err := a.api.DashboardAggregates(cmd.Context())
			if err := a.done(err); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Patients\t%d\n", agg.Patients)
			fmt.Fprintf(tw, "ANC registrations\t%d\n", agg.Registrations)
			fmt.Fprintf(tw, "ANC visits\t%d\n", agg.Visits)
			fmt.Fprintf(tw, "Upcoming visits (7 days)\t%d\n", agg.UpcomingVisits)
			fmt.Fprintf(tw, "Referrals\t%d\n", agg.Referrals)
			fmt.Fprintf(tw, "Kits distributed\t%d\n", agg.KitsDistributed)
			for _, k := range agg.KitsByType {
				fmt.Fprintf(tw, "  %s\t%d\n", k.KitType, k.Quantity)
			}
			for _, r := range agg.PatientsByRegion {
				fmt.Fprintf(tw, "Patients in %s\t%d\n", r.Region, r.Count)
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(dashboardCmd)

	return cmd
}

func reportRange(cmd *cobra.Command) (time.Time, time.Time, error) {
	fromS, _ := cmd.Flags().GetString("from")
	toS, _ := cmd.Flags().GetString("to")

	to := time.Now().UTC().Truncate(24 * time.Hour)
	if toS != "" {
		t, err := time.Parse(dateLayout, toS)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
		}
		to = t
	}
	from := to.AddDate(0, 0, -30)
	if fromS != "" {
		t, err := time.Parse(dateLayout, fromS)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
		}
		from = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", to.Format(dateLayout), from.Format(dateLayout))
	}
	return from, to, nil
}

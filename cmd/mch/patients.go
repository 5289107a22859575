package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mch/mch/pkg/client"
)

func patientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Look up patients",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			var f client.PatientFilter
			f.Search, _ = cmd.Flags().GetString("search")
			f.Region, _ = cmd.Flags().GetString("region")
			f.District, _ = cmd.Flags().GetString("district")
			f.Community, _ = cmd.Flags().GetString("community")
			f.Limit, _ = cmd.Flags().GetInt("limit")
			f.Offset, _ = cmd.Flags().GetInt("offset")

			page, err := a.api.ListPatients(cmd.Context(), f)
			if err := a.done(err); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPHONE\tCOMMUNITY")
			for _, p := range page.Data {
				fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n", p.ID, p.FirstName, p.LastName, p.Phone, p.Community)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d of %d shown", len(page.Data), page.Total)
			if page.HasMore {
				fmt.Fprintf(a.out, " (next: --offset %d)", page.Offset+page.Limit)
			}
			fmt.Fprintln(a.out)
			return nil
		},
	}
	listCmd.Flags().StringP("search", "s", "", "Match name, phone or national id")
	listCmd.Flags().String("region", "", "Only patients in this region")
	listCmd.Flags().String("district", "", "Only patients in this district")
	listCmd.Flags().String("community", "", "Only patients in this community")
	listCmd.Flags().Int("limit", 20, "Page size")
	listCmd.Flags().Int("offset", 0, "Rows to skip")
	cmd.AddCommand(listCmd)

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			p, err := a.api.GetPatient(cmd.Context(), args[0])
			if err := a.done(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", p.FirstName, p.LastName)
			if p.OtherNames != "" {
				fmt.Fprintf(a.out, "Other names:    %s\n", p.OtherNames)
			}
			if p.DateOfBirth != nil {
				fmt.Fprintf(a.out, "Date of birth:  %s\n", p.DateOfBirth.Format("2006-01-02"))
			}
			if p.Phone != "" {
				fmt.Fprintf(a.out, "Phone:          %s\n", p.Phone)
			}
			if p.MaritalStatus != "" {
				fmt.Fprintf(a.out, "Marital status: %s\n", p.MaritalStatus)
			}
			fmt.Fprintf(a.out, "Location:       %s\n", joinLocation(p.Region, p.District, p.Subdistrict, p.Community))
			return nil
		},
	}
	cmd.AddCommand(showCmd)

	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a patient's location, and optionally phone",
		Long: "Walks the location tiers starting from the patient's stored location.\n" +
			"A blank answer keeps a tier; changing a tier clears the ones below it\n" +
			"unless the stored value is picked again.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			p, err := a.api.GetPatient(cmd.Context(), args[0])
			if err := a.done(err); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s %s, currently in %s\n", p.FirstName, p.LastName,
				joinLocation(p.Region, p.District, p.Subdistrict, p.Community))
			stored := p.Location()
			sel, err := a.pickLocation(cmd, &stored)
			if err != nil {
				return err
			}
			p.Region, p.District, p.Subdistrict, p.Community = sel.Region, sel.District, sel.Subdistrict, sel.Community
			if cmd.Flags().Changed("phone") {
				p.Phone, _ = cmd.Flags().GetString("phone")
			}

			updated, err := a.api.UpdatePatient(cmd.Context(), p)
			if err := a.done(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %s %s: %s\n", updated.FirstName, updated.LastName,
				joinLocation(updated.Region, updated.District, updated.Subdistrict, updated.Community))
			return nil
		},
	}
	editCmd.Flags().String("phone", "", "New phone number")
	cmd.AddCommand(editCmd)

	return cmd
}

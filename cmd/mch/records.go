package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mch/mch/pkg/client"
	"github.com/mch/mch/pkg/geo"
)

func kitsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kits",
		Short: "Kit distribution logs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List kit distributions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			patientID, _ := cmd.Flags().GetString("patient")
			page, err := a.api.ListKitLogs(cmd.Context(), patientID)
			if err := a.done(err); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tPATIENT\tKIT\tQTY")
			for _, l := range page.Data {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", l.DistributedAt.Format(dateLayout), l.PatientID, l.KitType, l.Quantity)
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().String("patient", "", "Only kits given to this patient")
	cmd.AddCommand(listCmd)

	giveCmd := &cobra.Command{
		Use:   "give <patient-id>",
		Short: "Record a kit handed to a patient today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			l := &client.KitDistroLog{PatientID: args[0], DistributedAt: time.Now().UTC()}
			l.KitType, _ = cmd.Flags().GetString("type")
			l.Quantity, _ = cmd.Flags().GetInt("quantity")
			l.Notes, _ = cmd.Flags().GetString("notes")

			saved, err := a.api.CreateKitLog(cmd.Context(), l)
			if err := a.done(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Recorded %d x %s for %s.\n", saved.Quantity, saved.KitType, saved.PatientID)
			return nil
		},
	}
	giveCmd.Flags().String("type", "", "mama_kit, delivery_kit, newborn_kit or hygiene_kit")
	giveCmd.Flags().Int("quantity", 1, "Number of kits")
	giveCmd.Flags().String("notes", "", "Free text")
	_ = giveCmd.MarkFlagRequired("type")
	cmd.AddCommand(giveCmd)

	return cmd
}

func contactsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Address book",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			page, err := a.api.ListContacts(cmd.Context())
			if err := a.done(err); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPHONE\tORGANIZATION\tLOCATION")
			for _, ct := range page.Data {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ct.Name, ct.Phone, ct.Organization,
					joinLocation(ct.Region, ct.District, ct.Subdistrict, ct.Community))
			}
			return tw.Flush()
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact, optionally choosing a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			ct := &client.Contact{}
			ct.Name, _ = cmd.Flags().GetString("name")
			ct.Phone, _ = cmd.Flags().GetString("phone")
			ct.Email, _ = cmd.Flags().GetString("email")
			ct.Organization, _ = cmd.Flags().GetString("organization")
			ct.Role, _ = cmd.Flags().GetString("role")

			if pick, _ := cmd.Flags().GetBool("pick-location"); pick {
				sel, err := a.pickLocation(cmd, nil)
				if err != nil {
					return err
				}
				ct.Region, ct.District, ct.Subdistrict, ct.Community = sel.Region, sel.District, sel.Subdistrict, sel.Community
			}

			saved, err := a.api.CreateContact(cmd.Context(), ct)
			if err := a.done(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %s", saved.Name)
			if loc := joinLocation(saved.Region, saved.District, saved.Subdistrict, saved.Community); loc != "" {
				fmt.Fprintf(a.out, " (%s)", loc)
			}
			fmt.Fprintln(a.out, ".")
			return nil
		},
	}
	addCmd.Flags().String("name", "", "Contact name")
	addCmd.Flags().String("phone", "", "Phone number")
	addCmd.Flags().String("email", "", "Email address")
	addCmd.Flags().String("organization", "", "Facility or organization")
	addCmd.Flags().String("role", "", "Role at the organization")
	addCmd.Flags().Bool("pick-location", false, "Choose region, district, subdistrict and community")
	_ = addCmd.MarkFlagRequired("name")
	cmd.AddCommand(addCmd)

	return cmd
}

func referralsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "referrals",
		Short: "Refer patients to a facility",
	}

	createCmd := &cobra.Command{
		Use:   "create <patient-id>",
		Short: "Refer a patient; the location starts at the patient's own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			p, err := a.api.GetPatient(cmd.Context(), args[0])
			if err := a.done(err); err != nil {
				return err
			}
			home := p.Location()
			sel, err := a.pickLocation(cmd, &home)
			if err != nil {
				return err
			}

			r := &client.Referral{
				PatientID:   p.ID,
				Region:      sel.Region,
				District:    sel.District,
				Subdistrict: sel.Subdistrict,
				Community:   sel.Community,
			}
			r.Reason, _ = cmd.Flags().GetString("reason")
			r.Urgency, _ = cmd.Flags().GetString("urgency")
			r.Facility, _ = cmd.Flags().GetString("facility")

			saved, err := a.api.CreateReferral(cmd.Context(), r)
			if err := a.done(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Referral %s is %s (%s).\n", saved.ID, saved.Status, saved.Urgency)
			return nil
		},
	}
	createCmd.Flags().String("reason", "", "Why the patient is referred")
	createCmd.Flags().String("urgency", "routine", "routine, urgent or emergency")
	createCmd.Flags().String("facility", "", "Receiving facility")
	_ = createCmd.MarkFlagRequired("reason")
	cmd.AddCommand(createCmd)

	return cmd
}

func feedbackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Send feedback to the administrators",
	}
	sendCmd := &cobra.Command{
		Use:   "send <message...>",
		Short: "Send a feedback message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			f := &client.Feedback{Message: strings.Join(args, " ")}
			f.Subject, _ = cmd.Flags().GetString("subject")
			f.Category, _ = cmd.Flags().GetString("category")

			_, err := a.api.SendFeedback(cmd.Context(), f)
			if err := a.done(err); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Thanks, your feedback was sent.")
			return nil
		},
	}
	sendCmd.Flags().String("subject", "", "Short subject line")
	sendCmd.Flags().String("category", "general", "general, bug, feature or data")
	_ = sendCmd.MarkFlagRequired("subject")
	cmd.AddCommand(sendCmd)
	return cmd
}

func settingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "System settings",
	}

	show := func(st *client.Settings) {
		fmt.Fprintf(a.out, "Default location: %s\n", joinLocation(st.DefaultRegion, st.DefaultDistrict))
		fmt.Fprintf(a.out, "Idle timeout:     %d minutes\n", st.IdleTimeoutMinutes)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			st, err := a.api.GetSettings(cmd.Context())
			if err := a.done(err); err != nil {
				return err
			}
			show(st)
			return nil
		},
	})

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change the default district or the idle timeout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("region") && !cmd.Flags().Changed("district") && !cmd.Flags().Changed("idle-timeout") {
				return errors.New("nothing to change; pass --region, --district or --idle-timeout")
			}
			st, err := a.api.GetSettings(cmd.Context())
			if err := a.done(err); err != nil {
				return err
			}
			if cmd.Flags().Changed("region") {
				st.DefaultRegion, _ = cmd.Flags().GetString("region")
				// A new region invalidates the old district unless one is given.
				st.DefaultDistrict = ""
			}
			if cmd.Flags().Changed("district") {
				st.DefaultDistrict, _ = cmd.Flags().GetString("district")
			}
			if cmd.Flags().Changed("idle-timeout") {
				st.IdleTimeoutMinutes, _ = cmd.Flags().GetInt("idle-timeout")
			}

			saved, err := a.api.UpdateSettings(cmd.Context(), st)
			if err := a.done(err); err != nil {
				return err
			}
			show(saved)
			return nil
		},
	}
	setCmd.Flags().String("region", "", "Default region")
	setCmd.Flags().String("district", "", "Default district within the region")
	setCmd.Flags().Int("idle-timeout", 0, "Client idle timeout in minutes (1-1440)")
	cmd.AddCommand(setCmd)

	return cmd
}

// pickLocation runs the tier prompts under the session watcher. With start
// set the cascade begins at that location and blank answers keep it.
func (a *app) pickLocation(cmd *cobra.Command, start *geo.Selection) (geo.Selection, error) {
	stop, err := a.watchSession()
	if err != nil {
		return geo.Selection{}, err
	}
	defer stop()

	c, err := a.loadCascade(cmd.Context())
	if err != nil {
		return geo.Selection{}, err
	}
	if start != nil {
		if err := c.Hydrate(*start); err != nil {
			fmt.Fprintf(a.out, "Stored location %s is not in the community list (%v).\n",
				joinLocation(start.Region, start.District, start.Subdistrict, start.Community), err)
		}
	}
	return a.pick(c, start != nil)
}

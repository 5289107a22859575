package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mch/mch/pkg/geo"
	"github.com/mch/mch/pkg/session"
)

func geoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geo",
		Short: "Browse the region, district, subdistrict and community list",
	}

	optionsCmd := &cobra.Command{
		Use:   "options",
		Short: "Print the choices for each tier below a partial selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			var sel geo.Selection
			sel.Region, _ = cmd.Flags().GetString("region")
			sel.District, _ = cmd.Flags().GetString("district")
			sel.Subdistrict, _ = cmd.Flags().GetString("subdistrict")

			opts, err := a.api.CommunityOptions(cmd.Context(), sel)
			if err := a.done(err); err != nil {
				return err
			}
			for _, t := range geo.Tiers {
				list := opts.For(t)
				if len(list) == 0 {
					continue
				}
				fmt.Fprintf(a.out, "%s: %s\n", t, strings.Join(list, ", "))
			}
			return nil
		},
	}
	optionsCmd.Flags().String("region", "", "Selected region")
	optionsCmd.Flags().String("district", "", "Selected district")
	optionsCmd.Flags().String("subdistrict", "", "Selected subdistrict")
	cmd.AddCommand(optionsCmd)

	pickCmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a community one tier at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}

			stop, err := a.watchSession()
			if err != nil {
				return err
			}
			defer stop()

			c, err := a.loadCascade(cmd.Context())
			if err != nil {
				return err
			}

			sel, err := a.pick(c, false)
			if err != nil {
				return err
			}
			if a.sessions.Current() == nil {
				return session.ErrNoSession
			}
			fmt.Fprintf(a.out, "Selected: %s\n", joinLocation(sel.Region, sel.District, sel.Subdistrict, sel.Community))
			return nil
		},
	}
	cmd.AddCommand(pickCmd)

	return cmd
}

// watchSession keeps enforcing the idle timeout while prompts wait on the
// user. A logout is handed to the prompt loop through a.ended.
func (a *app) watchSession() (stop func(), err error) {
	ended := make(chan session.LogoutReason, 1)
	w, err := session.NewWatcher(a.sessions, session.DefaultCheckSpec, func(reason session.LogoutReason) {
		select {
		case ended <- reason:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	a.ended = ended
	w.Start()
	return func() {
		w.Stop()
		a.ended = nil
	}, nil
}

// sessionEnded reports a logout the watcher delivered since the last prompt.
func (a *app) sessionEnded() error {
	select {
	case reason := <-a.ended:
		fmt.Fprintf(a.out, "Session ended (%s).\n", reason)
		return session.ErrNoSession
	default:
		return nil
	}
}

// pick walks the cascade tier by tier. A blank answer stops at the current
// depth, or with keep set, keeps the tier's current value and moves on.
func (a *app) pick(c *geo.Cascade, keep bool) (geo.Selection, error) {
	for _, t := range geo.Tiers {
		list := c.Options().For(t)
		if len(list) == 0 {
			break
		}
		current := c.Selection().Value(t)
		for i, v := range list {
			if v == current {
				fmt.Fprintf(a.out, "  %2d) %s  (current)\n", i+1, v)
				continue
			}
			fmt.Fprintf(a.out, "  %2d) %s\n", i+1, v)
		}
		label := fmt.Sprintf("Choose %s [1-%d, blank to stop]: ", t, len(list))
		switch {
		case keep && current != "":
			label = fmt.Sprintf("Choose %s [1-%d, blank keeps %s]: ", t, len(list), current)
		case keep:
			label = fmt.Sprintf("Choose %s [1-%d]: ", t, len(list))
		}
		for {
			answer, err := a.prompt(label)
			if err != nil {
				return geo.Selection{}, err
			}
			if err := a.sessionEnded(); err != nil {
				return geo.Selection{}, err
			}
			if answer == "" {
				if !keep {
					return c.Selection(), nil
				}
				if current != "" {
					break
				}
				fmt.Fprintf(a.out, "A %s is required.\n", t)
				continue
			}
			if err := a.sessions.Touch(); err != nil {
				if errors.Is(err, session.ErrNoSession) {
					return geo.Selection{}, err
				}
				a.logger.Warn().Err(err).Msg("record activity")
			}
			v, ok := chooseOption(list, answer)
			if !ok {
				fmt.Fprintf(a.out, "%q is not one of the choices.\n", answer)
				continue
			}
			if err := c.Set(t, v); err != nil {
				return geo.Selection{}, err
			}
			break
		}
	}
	return c.Selection(), nil
}

// loadCascade fetches the community list into a ready cascade.
func (a *app) loadCascade(ctx context.Context) (*geo.Cascade, error) {
	c := geo.NewCascade()
	c.BeginLoad()
	records, err := a.api.CommunityRecords(ctx)
	if err := a.done(err); err != nil {
		_ = c.FinishLoad(nil, err)
		return nil, fmt.Errorf("load communities: %w", err)
	}
	if err := c.FinishLoad(records, nil); err != nil {
		return nil, err
	}
	return c, nil
}

// chooseOption accepts a 1-based index or an exact option name.
func chooseOption(list []string, answer string) (string, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(list) {
			return "", false
		}
		return list[n-1], true
	}
	for _, v := range list {
		if v == answer {
			return v, true
		}
	}
	return "", false
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mch/mch/pkg/client"
	"github.com/mch/mch/pkg/permission"
	"github.com/mch/mch/pkg/session"
)

func loginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reason, msg, err := a.sessions.LastLogout(); err == nil && reason != "" && reason != session.ReasonManual && msg != "" {
				fmt.Fprintln(a.out, msg)
			}

			username, _ := cmd.Flags().GetString("username")
			var err error
			if username == "" {
				if username, err = a.prompt("Username: "); err != nil {
					return err
				}
			}
			password := os.Getenv("MCH_PASSWORD")
			if password == "" {
				if password, err = a.prompt("Password: "); err != nil {
					return err
				}
			}

			resp, err := a.api.Login(cmd.Context(), username, password)
			if err != nil {
				if client.IsStatus(err, http.StatusUnauthorized) {
					return fmt.Errorf("invalid username or password")
				}
				return err
			}
			s, err := a.sessions.Login(resp.Account, resp.Token)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s (%s).\n", s.Account.Username, s.Account.UserType)
			a.applyServerSettings(cmd.Context())
			fmt.Fprintf(a.out, "Idle timeout: %s.\n", a.sessions.IdleTimeout())
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "Login name (prompted when empty)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.sessions.Current() == nil {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}
			// The local session ends even if the server call fails.
			if err := a.api.Logout(cmd.Context()); err != nil && !client.IsStatus(err, http.StatusUnauthorized) {
				a.logger.Warn().Err(err).Msg("server logout failed")
			}
			if err := a.sessions.Logout(session.ReasonManual, ""); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and its permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			acct, err := a.api.Me(cmd.Context())
			if err := a.done(err); err != nil {
				return err
			}
			s := a.sessions.Current()
			fmt.Fprintf(a.out, "%s (%s)\n", acct.FullName, acct.Username)
			fmt.Fprintf(a.out, "Role:        %s\n", acct.UserType)
			if loc := joinLocation(acct.Region, acct.District, acct.Subdistrict, acct.Community); loc != "" {
				fmt.Fprintf(a.out, "Location:    %s\n", loc)
			}
			fmt.Fprintf(a.out, "Permissions: %s\n", strings.Join(sortedPermissions(s.Permissions), ", "))
			return nil
		},
	}
}

// applyServerSettings adopts the server's idle timeout unless
// MCH_IDLE_TIMEOUT overrides it. Failures leave the current period in place.
func (a *app) applyServerSettings(ctx context.Context) {
	st, err := a.api.GetSettings(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("load server settings")
		return
	}
	if _, err := a.sessions.SetIdleTimeout(time.Duration(st.IdleTimeoutMinutes) * time.Minute); err != nil {
		a.logger.Warn().Err(err).Msg("apply idle timeout")
	}
}

func sortedPermissions(set permission.Set) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}

func joinLocation(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " / ")
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mch/mch/internal/config"
	"github.com/mch/mch/pkg/client"
	"github.com/mch/mch/pkg/session"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app is what every subcommand works with once the root has loaded the
// config and the stored session.
type app struct {
	in       *bufio.Reader
	out      io.Writer
	logger   zerolog.Logger
	cfg      *config.ClientConfig
	sessions *session.Manager
	api      *client.Client
	ended    <-chan session.LogoutReason
}

func newApp(cfg *config.ClientConfig, in io.Reader, out io.Writer, logger zerolog.Logger) (*app, error) {
	path := cfg.SessionFile
	if path == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locate session file: %w", err)
		}
		path = p
	}
	opts := []session.Option{session.WithLogger(logger)}
	if cfg.IdleTimeoutSet {
		opts = append(opts, session.WithIdleTimeout(cfg.IdleTimeout))
	}
	sessions, err := session.NewManager(session.NewFileStore(path), opts...)
	if err != nil {
		return nil, err
	}
	api := client.New(cfg.APIBaseURL,
		client.WithToken(sessions.Token),
		client.WithLogger(logger))
	return &app{
		in:       bufio.NewReader(in),
		out:      out,
		logger:   logger,
		cfg:      cfg,
		sessions: sessions,
		api:      api,
	}, nil
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "mch",
		Short:        "Command-line client for the maternal and child health records API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: errOut}).Level(level).With().Timestamp().Logger()

			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			built, err := newApp(cfg, in, out, logger)
			if err != nil {
				return err
			}
			*a = *built
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolP("verbose", "v", false, "Log requests and session activity")

	root.AddCommand(loginCmd(a), logoutCmd(a), whoamiCmd(a))
	root.AddCommand(geoCmd(a))
	root.AddCommand(patientsCmd(a))
	root.AddCommand(ancCmd(a))
	root.AddCommand(reportCmd(a))
	root.AddCommand(kitsCmd(a), contactsCmd(a), referralsCmd(a))
	root.AddCommand(feedbackCmd(a), settingsCmd(a))
	return root
}

// requireSession ends an idle or expired session before a command runs
// and reports the reason to the user.
func (a *app) requireSession() (*session.Session, error) {
	reason, err := a.sessions.Check(time.Now())
	if err != nil {
		return nil, err
	}
	if reason != "" {
		_, msg, _ := a.sessions.LastLogout()
		fmt.Fprintln(a.out, msg)
	}
	s := a.sessions.Current()
	if s == nil {
		return nil, fmt.Errorf("%w: run `mch login` first", session.ErrNoSession)
	}
	return s, nil
}

// done records activity after a request, or drops the session when the
// server refused the token.
func (a *app) done(err error) error {
	if client.IsStatus(err, http.StatusUnauthorized) {
		if ierr := a.sessions.Invalidate(); ierr != nil {
			a.logger.Error().Err(ierr).Msg("drop session")
		}
		return errors.New("the server rejected your session; log in again")
	}
	if err != nil {
		return err
	}
	if terr := a.sessions.Touch(); terr != nil && !errors.Is(terr, session.ErrNoSession) {
		a.logger.Warn().Err(terr).Msg("record activity")
	}
	return nil
}

// prompt prints label and reads one trimmed line.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/arnavshah/shiftboard/pkg/auth"
	"github.com/arnavshah/shiftboard/pkg/calendar"
	"github.com/arnavshah/shiftboard/pkg/client"
	"github.com/arnavshah/shiftboard/pkg/config"
	"github.com/arnavshah/shiftboard/pkg/controller"
	"github.com/arnavshah/shiftboard/pkg/logging"
	"github.com/arnavshah/shiftboard/pkg/models"
	"go.uber.org/zap"
)

var errNoCredentials = errors.New("no credentials: pass --token or --username/--password (or set SHIFTBOARD_CLIENT_TOKEN)")

// reportedError is a failure already shown on the status channel.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

type session struct {
	cfg    *config.Config
	logger *zap.Logger
	client *client.Client
	viewer models.Viewer
}

// newLogger writes to the configured log file, or nowhere when tui is set
// and no file is configured.
func newLogger(cfg *config.Config, tui bool) *zap.Logger {
	if cfg.Log.File == "" && tui {
		return zap.NewNop()
	}
	return logging.Must(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, OutputPath: cfg.Log.File})
}

// openSession builds an authenticated client. A configured token wins;
// otherwise the username and password are exchanged for one.
func openSession(ctx context.Context, tui bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, tui)

	c := client.New(cfg.Client.BaseURL,
		client.WithTimeout(cfg.Client.Timeout),
		client.WithLogger(logger.Named("client")),
		client.WithToken(cfg.Client.Token))

	s := &session{cfg: cfg, logger: logger, client: c}
	switch {
	case cfg.Client.Token != "":
		viewer, err := auth.ViewerFromToken(cfg.Client.Token)
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		s.viewer = viewer
	case cfg.Client.Username != "":
		resp, err := c.Login(ctx, cfg.Client.Username, cfg.Client.Password)
		if err != nil {
			return nil, errors.New(client.Message(err, client.MsgLogin))
		}
		s.client = c.WithCredential(resp.AccessToken)
		s.viewer = models.Viewer{ID: resp.StaffID, Role: resp.Role}
	default:
		return nil, errNoCredentials
	}
	logger.Debug("session opened", zap.Int64("staff_id", s.viewer.ID), zap.String("role", string(s.viewer.Role)))
	return s, nil
}

// controller builds a controller whose status channel writes to out.
func (s *session) controller(out io.Writer, opts ...controller.Option) *controller.Controller {
	opts = append([]controller.Option{
		controller.WithLogger(s.logger.Named("controller")),
		controller.WithStatus(func(msg string) { fmt.Fprintln(out, msg) }),
	}, opts...)
	return controller.New(s.client, s.viewer, opts...)
}

// parseWeekFlag returns the week containing iso, or the current week when
// iso is empty.
func parseWeekFlag(iso string) (calendar.Week, error) {
	if iso == "" {
		return calendar.WeekOf(time.Now()), nil
	}
	return calendar.ParseWeek(iso, time.Local)
}

// loadWeek selects the week containing date and loads it. Load failures are
// already printed by the controller.
func loadWeek(ctx context.Context, ctrl *controller.Controller, date time.Time) error {
	ctrl.SelectWeek(date)
	if err := ctrl.Load(ctx); err != nil {
		return reportedError{err}
	}
	return nil
}

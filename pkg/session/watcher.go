package session

import (
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultCheckSpec = "@every 30s"

// Watcher runs Manager.Check on a cron schedule.
type Watcher struct {
	cronEngine *cron.Cron
	manager    *Manager
	onLogout   func(reason LogoutReason)
}

// NewWatcher schedules checks with spec, e.g. "@every 30s". onLogout is called
// from the cron goroutine when a check ends the session.
func NewWatcher(m *Manager, spec string, onLogout func(reason LogoutReason)) (*Watcher, error) {
	w := &Watcher{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		manager:    m,
		onLogout:   onLogout,
	}
	if _, err := w.cronEngine.AddFunc(spec, w.check); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Watcher) check() {
	reason, err := w.manager.Check(w.manager.now())
	if err != nil {
		w.manager.logger.Error().Err(err).Msg("session check failed")
		return
	}
	if reason != "" && w.onLogout != nil {
		w.onLogout(reason)
	}
}

func (w *Watcher) Start() {
	w.cronEngine.Start()
}

// Stop halts the schedule and waits for a running check to return.
func (w *Watcher) Stop() {
	ctx := w.cronEngine.Stop()
	<-ctx.Done()
}

package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/arnavshah/shiftboard/pkg/client"
	"github.com/arnavshah/shiftboard/pkg/grid"
	"github.com/arnavshah/shiftboard/pkg/models"
	"go.uber.org/zap"
)

// Store is the part of the schedule backend the engine mutates.
type Store interface {
	CreateAssignment(ctx context.Context, date, slot string, staffID *int64) (*models.ShiftAssignment, error)
	DeleteAssignment(ctx context.Context, id int64) error
}

// StatusFunc receives every load and mutation outcome. It must not block.
type StatusFunc func(msg string)

// ReloadFunc re-fetches the whole displayed week after a successful mutation.
type ReloadFunc func(ctx context.Context) error

type Engine struct {
	store  Store
	states *RequestStates
	status StatusFunc
	reload ReloadFunc
	logger *zap.Logger

	mu     sync.Mutex
	banner string
}

type Option func(*Engine)

func WithStatus(fn StatusFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.status = fn
		}
	}
}

func WithReload(fn ReloadFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.reload = fn
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		states: NewRequestStates(),
		status: func(string) {},
		reload: func(context.Context) error { return nil },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// States exposes the per-key request states for rendering.
func (e *Engine) States() *RequestStates { return e.states }

// Banner is the most recent mutation error, empty once a new mutation starts.
func (e *Engine) Banner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.banner
}

func (e *Engine) setBanner(msg string) {
	e.mu.Lock()
	e.banner = msg
	e.mu.Unlock()
}

// Dispatch validates intent for viewer against lookup and, when allowed,
// sends it to the store. A successful mutation triggers a full reload; the
// request state of the intent's key never stays pending after Dispatch
// returns. Local rejections never reach the store.
func (e *Engine) Dispatch(ctx context.Context, viewer models.Viewer, lookup grid.Lookup, intent Intent) error {
	key := intent.Key()
	if e.states.Pending(key) {
		return ErrPending
	}

	m, err := resolve(viewer, lookup, intent)
	if err != nil {
		msg := err.Error()
		e.setBanner(msg)
		e.states.Fail(key, msg)
		e.status(msg)
		e.logger.Debug("mutation rejected locally", zap.String("key", key), zap.Error(err))
		return err
	}

	if err := e.states.Begin(key); err != nil {
		return err
	}
	e.setBanner("")

	var failure error
	defer func() {
		if failure != nil {
			e.states.Finish(key, failure.Error(), true)
			return
		}
		e.states.Finish(key, "", false)
	}()

	var success string
	if m.isRemove() {
		err = e.store.DeleteAssignment(ctx, m.removeID)
		success = "Removed shift for " + dateOf(intent) + "."
	} else {
		_, err = e.store.CreateAssignment(ctx, m.date, m.slot, m.staffID)
		success = "Shift assigned for " + m.date + "."
	}

	if err != nil {
		msg := client.Message(err, fallbackFor(m))
		failure = errors.New(msg)
		e.setBanner(msg)
		e.status(msg)
		e.logger.Info("mutation failed", zap.String("key", key), zap.Error(err))
		return &MutationError{Key: key, Message: msg, Err: err}
	}

	e.logger.Info("mutation applied", zap.String("key", key))
	e.status(success)
	if err := e.reload(ctx); err != nil {
		// the reload reports its own failure on the status channel
		e.logger.Warn("reload after mutation failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func fallbackFor(m mutation) string {
	if m.isRemove() {
		return client.MsgRemoveShift
	}
	return client.MsgAssignShift
}

// MutationError is a store failure surfaced by Dispatch.
type MutationError struct {
	Key     string
	Message string
	Err     error
}

func (e *MutationError) Error() string { return e.Message }

func (e *MutationError) Unwrap() error { return e.Err }

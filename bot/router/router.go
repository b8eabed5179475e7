package router

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"nuggies/bot/common"
)

// Responder is the two-phase reply channel of one interaction.
type Responder interface {
	// Defer acknowledges the interaction before any work starts
	Defer(ctx context.Context) error

	// Finalize replaces the deferred acknowledgement with the result
	Finalize(ctx context.Context, content string) error
}

// DefaultFallback is used by routes that do not set their own.
const DefaultFallback = "❌ Something went wrong. Please try again later."

// finalizeTimeout bounds the edit call; it runs even after the handler timed out.
const finalizeTimeout = 10 * time.Second

// Config holds router limits
type Config struct {
	// Timeout bounds each task, including its wait for a slot; zero means no limit
	Timeout time.Duration

	// MaxConcurrent bounds handlers running at once; zero means 32
	MaxConcurrent int64
}

// Router dispatches commands to routes. Every command runs on its own
// goroutine; intake never waits on a handler.
type Router struct {
	mu      sync.RWMutex
	routes  map[string]Route
	timeout time.Duration
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
}

// New creates a router with the given routes
func New(cfg Config, routes ...Route) *Router {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 32
	}
	r := &Router{
		routes:  make(map[string]Route),
		timeout: cfg.Timeout,
		sem:     semaphore.NewWeighted(cfg.MaxConcurrent),
	}
	for _, route := range routes {
		r.Register(route)
	}
	return r
}

// Register adds or replaces a route
func (r *Router) Register(route Route) {
	if route.Fallback == "" {
		route.Fallback = DefaultFallback
	}
	r.mu.Lock()
	r.routes[route.Name] = route
	r.mu.Unlock()
}

// Routes returns every route sorted by name
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Name < routes[j].Name })
	return routes
}

func (r *Router) lookup(name string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[name]
	return route, ok
}

// Task is a unit of work spawned by the router.
type Task struct {
	ID   string
	Name string

	done    chan struct{}
	content string
	err     error
}

func newTask(id, name string) *Task {
	if id == "" {
		id = uuid.NewString()
	}
	return &Task{ID: id, Name: name, done: make(chan struct{})}
}

// Done is closed once the task has finished, including finalization.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns the content it sent
// and any error from the gateway.
func (t *Task) Wait() (string, error) {
	<-t.done
	return t.content, t.err
}

// Dispatch acknowledges the interaction, then runs the command out of band.
// The deferred response is always finalized, with the route fallback if the
// handler fails.
func (r *Router) Dispatch(ctx context.Context, inv Invocation, resp Responder) *Task {
	task := newTask(inv.TaskID, inv.Command)
	inv.TaskID = task.ID

	logger := log.WithFields(log.Fields{
		"task_id":  task.ID,
		"command":  inv.Command,
		"user_id":  inv.UserID,
		"guild_id": inv.GuildID,
	})

	if err := resp.Defer(ctx); err != nil {
		// Without an acknowledgement the interaction token is useless
		logger.WithError(err).Error("Could not defer interaction response")
		task.err = fmt.Errorf("failed to defer response: %w", err)
		close(task.done)
		return task
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(task.done)

		task.content = r.execute(ctx, inv, logger)

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
		defer cancel()
		if err := resp.Finalize(fctx, task.content); err != nil {
			logger.WithError(err).Error("Could not edit interaction response")
			task.err = fmt.Errorf("failed to finalize response: %w", err)
		}
	}()

	return task
}

func (r *Router) execute(ctx context.Context, inv Invocation, logger *log.Entry) string {
	route, ok := r.lookup(inv.Command)
	if !ok {
		logger.Warn("Received unknown command")
		return UnknownCommand
	}

	if route.missingRequired(inv) {
		return route.Prompt
	}

	// The wait for a slot counts against the same deadline as the handler,
	// so a queued command still answers before its interaction token expires
	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	if err := r.sem.Acquire(ctx, 1); err != nil {
		logger.WithError(err).Warn("Gave up waiting for a task slot")
		return route.Fallback
	}
	defer r.sem.Release(1)

	start := time.Now()
	content, err := r.run(ctx, route, inv)
	logger = logger.WithField("duration", time.Since(start))
	if err != nil {
		if msg := common.UserMessage(err); msg != "" {
			logger.WithError(err).Info("Command rejected")
			return msg
		}
		logger.WithError(err).Error("Command failed, sending fallback")
		return route.Fallback
	}

	logger.Debug("Command completed")
	return content
}

// withDeadline bounds ctx by the configured task timeout, if any.
func (r *Router) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

func (r *Router) run(ctx context.Context, route Route, inv Invocation) (content string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panicked: %v\n%s", rec, debug.Stack())
		}
	}()

	return route.Handle(ctx, inv)
}

// Go runs fn as a tracked task under the same concurrency limit and panic
// isolation as commands. Used for plain messages and reactions.
func (r *Router) Go(ctx context.Context, name string, fn func(ctx context.Context)) *Task {
	task := newTask("", name)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(task.done)

		logger := log.WithFields(log.Fields{"task_id": task.ID, "task": name})

		tctx, cancel := r.withDeadline(ctx)
		defer cancel()

		if err := r.sem.Acquire(tctx, 1); err != nil {
			logger.WithError(err).Warn("Dropped task waiting for a slot")
			task.err = err
			return
		}
		defer r.sem.Release(1)

		defer func() {
			if rec := recover(); rec != nil {
				logger.WithField("panic", rec).Errorf("Task panicked\n%s", debug.Stack())
				task.err = fmt.Errorf("task panicked: %v", rec)
			}
		}()

		fn(tctx)
	}()

	return task
}

// Shutdown waits for every in-flight task, or until ctx is done.
func (r *Router) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("tasks still running at shutdown: %w", ctx.Err())
	}
}

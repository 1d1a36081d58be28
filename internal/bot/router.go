package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Broodje2/kudos-bot/internal/logger"
	"github.com/Broodje2/kudos-bot/internal/metrics"
)

// AckDeadline is how long the platform waits for an acknowledgment.
const AckDeadline = 3 * time.Second

// ErrAck is returned by Dispatch when the envelope could not be acknowledged.
var ErrAck = errors.New("acknowledge failed")

// HandlerFunc handles one interaction after it has been acknowledged.
// Handlers deliver their own outcome message, success or failure. They
// return an error only when that message could not be delivered; the router
// then logs it and sends a fallback.
type HandlerFunc func(ctx context.Context, c *Context) error

type route struct {
	kind Kind
	name string
}

type keywordRoute struct {
	keyword string
	handler HandlerFunc
}

// Router maps interactions to handlers. Routes are registered at startup
// and read-only afterwards.
type Router struct {
	platform Platform
	log      *logger.Logger
	timeout  time.Duration

	routes   map[route]HandlerFunc
	keywords []keywordRoute

	wg sync.WaitGroup
}

type RouterOption func(*Router)

// WithHandlerTimeout bounds the time one handler may run after the ack.
func WithHandlerTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.timeout = d }
}

func NewRouter(p Platform, log *logger.Logger, opts ...RouterOption) *Router {
	if log == nil {
		log = logger.Nop()
	}
	r := &Router{
		platform: p,
		log:      log.With("component", "router"),
		timeout:  2 * time.Minute,
		routes:   map[route]HandlerFunc{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Router) Command(name string, h HandlerFunc) {
	r.handle(KindCommand, strings.TrimPrefix(name, "/"), h)
}

func (r *Router) Action(actionID string, h HandlerFunc) { r.handle(KindAction, actionID, h) }

func (r *Router) View(callbackID string, h HandlerFunc) { r.handle(KindView, callbackID, h) }

func (r *Router) Event(eventType string, h HandlerFunc) { r.handle(KindEvent, eventType, h) }

// Hear registers a handler for channel messages containing keyword.
// The first matching keyword in registration order wins.
func (r *Router) Hear(keyword string, h HandlerFunc) {
	if keyword == "" || h == nil {
		panic("bot: Hear needs a keyword and a handler")
	}
	r.keywords = append(r.keywords, keywordRoute{keyword: keyword, handler: h})
}

func (r *Router) handle(kind Kind, name string, h HandlerFunc) {
	if name == "" || h == nil {
		panic(fmt.Sprintf("bot: empty route for %s", kind))
	}
	key := route{kind: kind, name: name}
	if _, dup := r.routes[key]; dup {
		panic(fmt.Sprintf("bot: duplicate route %s %q", kind, name))
	}
	r.routes[key] = h
}

func (r *Router) lookup(in Interaction) (HandlerFunc, bool) {
	if in.Kind == KindMessage {
		for _, kw := range r.keywords {
			if strings.Contains(in.Text, kw.keyword) {
				return kw.handler, true
			}
		}
		return nil, false
	}
	h, ok := r.routes[route{kind: in.Kind, name: strings.TrimPrefix(in.Name, "/")}]
	return h, ok
}

// Dispatch acknowledges the interaction, then runs its handler on a new
// goroutine. Nothing else happens before the ack. If the ack fails the
// handler is not run.
func (r *Router) Dispatch(ctx context.Context, in Interaction, ack AckFunc) error {
	start := time.Now()
	if in.ReceivedAt.IsZero() {
		in.ReceivedAt = start
	}
	err := ack()
	elapsed := time.Since(in.ReceivedAt)
	metrics.RecordAck(elapsed)
	if err != nil {
		metrics.RecordInteraction(string(in.Kind), in.Name, "ack_failed")
		r.log.Error("ack failed", "kind", in.Kind, "name", in.Name, "error", err)
		return fmt.Errorf("%w: %s %s: %v", ErrAck, in.Kind, in.Name, err)
	}
	if elapsed > AckDeadline {
		r.log.Error("ack missed platform deadline", "kind", in.Kind, "name", in.Name, "elapsed", elapsed)
	}

	h, ok := r.lookup(in)
	if !ok {
		metrics.RecordInteraction(string(in.Kind), in.Name, "unrouted")
		r.log.Debug("no handler", "kind", in.Kind, "name", in.Name)
		return nil
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	c := &Context{
		Interaction: in,
		platform:    r.platform,
		log:         r.log.With("interaction_id", in.ID, "kind", in.Kind, "name", in.Name, "user", in.UserID),
	}

	r.wg.Add(1)
	go r.run(ctx, h, c)
	return nil
}

func (r *Router) run(ctx context.Context, h HandlerFunc, c *Context) {
	defer r.wg.Done()

	// Handlers outlive the listener; shutdown waits for them via Wait.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			metrics.RecordInteraction(string(c.Kind), c.Name, "panic")
			c.log.Error("handler panicked", "panic", p, "stack", string(debug.Stack()))
			r.fallback(ctx, c)
		}
	}()

	if err := h(ctx, c); err != nil {
		metrics.RecordInteraction(string(c.Kind), c.Name, "error")
		c.log.Error("handler failed", "error", err)
		r.fallback(ctx, c)
		return
	}
	metrics.RecordInteraction(string(c.Kind), c.Name, "ok")
}

// fallback is best effort: channel if known, else a DM to the user.
func (r *Router) fallback(ctx context.Context, c *Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	target := c.ChannelID
	if target == "" {
		target = c.UserID
	}
	if target == "" {
		return
	}
	if err := r.platform.PostMessage(ctx, target, msgSomethingWentWrong); err != nil {
		c.log.Warn("fallback message failed", "target", target, "error", err)
	}
}

// Wait blocks until every dispatched handler returned or ctx is done.
func (r *Router) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package edge is the event-loop runtime adapter. A single loop goroutine
// accepts fetch events in arrival order and resolves their responses; each
// event suspends only while its pipeline (and so its gateway call) runs.
package edge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/bryanwahyu/agentcy/internal/application/router"
)

const maxBodyBytes = 1 << 20

// ErrStopped is returned by Fetch once the loop stops accepting events.
var ErrStopped = errors.New("edge runtime stopped")

// Request is the native fetch event: a full URL plus flat headers.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is the native response object handed back to the host.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// Handler is the runtime-neutral core.
type Handler interface {
	Handle(ctx context.Context, req router.Request) router.Response
}

type event struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

type completion struct {
	ev   *event
	resp router.Response
}

type Runtime struct {
	core        Handler
	logger      *zap.Logger
	inbox       chan *event
	completions chan completion
	closing     chan struct{} // closed once ctx is cancelled
	stopped     chan struct{} // closed when the loop exits
	closeOnce   sync.Once
	stopOnce    sync.Once
}

func New(core Handler, logger *zap.Logger, queueSize int) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Runtime{
		core:        core,
		logger:      logger,
		inbox:       make(chan *event, queueSize),
		completions: make(chan completion),
		closing:     make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

// Run drives the loop until ctx is cancelled. It must be called once.
// After cancellation no new events are accepted, but events already
// dispatched are resolved before Run returns.
func (rt *Runtime) Run(ctx context.Context) error {
	defer rt.stopOnce.Do(func() { close(rt.stopped) })

	pending := 0
	done := ctx.Done()
	for {
		if done == nil && pending == 0 && len(rt.inbox) == 0 {
			return ctx.Err()
		}
		select {
		case <-done:
			rt.closeOnce.Do(func() { close(rt.closing) })
			if pending > 0 {
				rt.logger.Info("edge runtime draining", zap.Int("pending", pending))
			}
			done = nil

		case ev := <-rt.inbox:
			pending++
			rt.dispatch(ev, toCore(ev.req))

		case c := <-rt.completions:
			pending--
			c.ev.reply <- fromCore(c.resp)
		}
	}
}

// dispatch starts the pipeline for one event. The pipeline is the sole
// suspension point; its result re-enters the loop through completions.
func (rt *Runtime) dispatch(ev *event, req router.Request) {
	go func() {
		resp := rt.core.Handle(ev.ctx, req)
		select {
		case rt.completions <- completion{ev: ev, resp: resp}:
		case <-rt.stopped:
		}
	}()
}

// Fetch submits one event and waits for its response.
func (rt *Runtime) Fetch(ctx context.Context, req Request) (Response, error) {
	select {
	case <-rt.closing:
		return Response{}, ErrStopped
	default:
	}
	ev := &event{ctx: ctx, req: req, reply: make(chan Response, 1)}
	select {
	case rt.inbox <- ev:
	case <-rt.closing:
		return Response{}, ErrStopped
	case <-rt.stopped:
		return Response{}, ErrStopped
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	select {
	case resp := <-ev.reply:
		return resp, nil
	case <-rt.stopped:
		return Response{}, ErrStopped
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// ServeHTTP bridges a net/http listener onto the event loop.
func (rt *Runtime) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		body = nil
	}
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}

	resp, err := rt.Fetch(r.Context(), Request{
		Method:  r.Method,
		URL:     r.URL.String(),
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		rt.logger.Warn("edge fetch failed", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"runtime unavailable"}`))
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

// toCore extracts the path from the event URL; an unparseable URL gets an
// empty path and therefore a 404 from the core.
func toCore(req Request) router.Request {
	path := ""
	if u, err := url.Parse(req.URL); err == nil {
		path = u.Path
	}
	return router.Request{Method: req.Method, Path: path, Body: req.Body}
}

func fromCore(resp router.Response) Response {
	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return Response{Status: resp.Status, Headers: headers, Body: resp.Body}
}

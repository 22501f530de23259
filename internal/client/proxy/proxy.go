package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/videonotes/internal/client/models"
	"github.com/dmitrijs2005/videonotes/internal/client/store"
	"github.com/dmitrijs2005/videonotes/internal/logging"
)

// Syncer pushes the full local snapshot to the cloud.
type Syncer interface {
	PushToCloud(ctx context.Context) error
}

// CodeExchanger swaps a one-time handshake code for a stored token pair.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) error
}

// Proxy serializes local-store access for all UI contexts. Sync pushes run on
// a single worker fed by a 1-buffered trigger channel, so at most one push is
// in flight and at most one more is queued; further triggers coalesce into
// the queued one.
type Proxy struct {
	store  *store.LocalStore
	syncer Syncer
	auth   CodeExchanger
	logger logging.Logger

	trigger chan struct{}

	mu        sync.Mutex
	listeners []func(Broadcast)

	wg sync.WaitGroup
}

// New constructs a Proxy. Run must be started for sync triggers to drain.
func New(s *store.LocalStore, syncer Syncer, auth CodeExchanger, logger logging.Logger) *Proxy {
	return &Proxy{
		store:   s,
		syncer:  syncer,
		auth:    auth,
		logger:  logger,
		trigger: make(chan struct{}, 1),
	}
}

// RegisterListener subscribes to broadcasts. Delivery is best-effort and
// synchronous with the broadcast.
func (p *Proxy) RegisterListener(fn func(Broadcast)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Run drains sync triggers until ctx is cancelled. Push failures are logged
// and dropped; the next mutation or manual trigger retries.
func (p *Proxy) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.trigger:
			if err := p.syncer.PushToCloud(ctx); err != nil {
				p.logger.Warn(ctx, "sync push failed", "error", err)
			}
		}
	}
}

// Wait blocks until in-flight handshake goroutines finish. Used on shutdown
// and in tests.
func (p *Proxy) Wait() {
	p.wg.Wait()
}

// Handle dispatches one inbound message and returns its reply. Replies to
// callers that have gone away are simply discarded by the transport; nothing
// here depends on delivery.
func (p *Proxy) Handle(ctx context.Context, req Request) Response {
	switch req.Type {
	case TypeDBCall:
		return p.handleDBCall(ctx, req)
	case TypeAuthHandshake:
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.handleHandshake(ctx, req.Code)
		}()
		return Response{}
	case TypeTriggerSync:
		p.scheduleSync(ctx)
		return Response{}
	default:
		return Response{Error: fmt.Sprintf("unknown message type %q", req.Type)}
	}
}

func (p *Proxy) handleDBCall(ctx context.Context, req Request) Response {
	result, err := p.dispatch(ctx, req.Method, req.Args)
	if err != nil {
		p.logger.Error(ctx, "db call failed", "method", req.Method, "error", err)
		return Response{Error: err.Error()}
	}

	if mutatingMethods[req.Method] {
		p.scheduleSync(ctx)
	}

	if result == nil {
		return Response{}
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return Response{Error: err.Error()}
	}
	return Response{Result: raw}
}

func (p *Proxy) dispatch(ctx context.Context, method string, args json.RawMessage) (any, error) {
	switch method {
	case MethodSaveNote:
		var n models.Note
		if err := decodeArgs(args, &n); err != nil {
			return nil, err
		}
		return p.store.SaveNote(ctx, &n)
	case MethodGetNotes:
		var videoID string
		if err := decodeArgs(args, &videoID); err != nil {
			return nil, err
		}
		return p.store.GetNotes(ctx, videoID)
	case MethodDeleteNote:
		var id string
		if err := decodeArgs(args, &id); err != nil {
			return nil, err
		}
		return nil, p.store.DeleteNote(ctx, id)
	case MethodGetVideo:
		var videoID string
		if err := decodeArgs(args, &videoID); err != nil {
			return nil, err
		}
		return p.store.GetVideo(ctx, videoID)
	case MethodSaveVideo:
		var v models.Video
		if err := decodeArgs(args, &v); err != nil {
			return nil, err
		}
		return nil, p.store.SaveVideo(ctx, &v)
	case MethodSetBookmark:
		var videoID string
		var timestamp *float64
		if err := decodeArgs(args, &videoID, &timestamp); err != nil {
			return nil, err
		}
		return nil, p.store.SetBookmark(ctx, videoID, timestamp)
	case MethodToggleDistraction:
		var videoID string
		var enabled bool
		if err := decodeArgs(args, &videoID, &enabled); err != nil {
			return nil, err
		}
		return nil, p.store.ToggleDistraction(ctx, videoID, enabled)
	case MethodGetAllNotes:
		return p.store.GetAllNotes(ctx)
	case MethodGetAllVideos:
		return p.store.GetAllVideos(ctx)
	default:
		return nil, fmt.Errorf("unknown db method %q", method)
	}
}

// scheduleSync queues a push without blocking. A full trigger channel means a
// push is already pending; the snapshot it sends will cover this mutation too.
func (p *Proxy) scheduleSync(ctx context.Context) {
	select {
	case p.trigger <- struct{}{}:
	default:
		p.logger.Debug(ctx, "sync already pending, trigger coalesced")
	}
}

func (p *Proxy) handleHandshake(ctx context.Context, code string) {
	if err := p.auth.ExchangeCode(ctx, code); err != nil {
		p.logger.Error(ctx, "handshake failed", "error", err)
		return
	}
	p.logger.Info(ctx, "handshake successful, tokens stored")
	p.broadcast(Broadcast{Type: TypeAuthUpdated, Authenticated: true})
	p.scheduleSync(ctx)
}

func (p *Proxy) broadcast(b Broadcast) {
	p.mu.Lock()
	listeners := make([]func(Broadcast), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(b)
	}
}

// decodeArgs unpacks a JSON array of positional arguments into dests.
func decodeArgs(raw json.RawMessage, dests ...any) error {
	var items []json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("malformed args: %w", err)
		}
	}
	if len(items) < len(dests) {
		return errors.New("missing arguments")
	}
	for i, dest := range dests {
		if err := json.Unmarshal(items[i], dest); err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
	}
	return nil
}

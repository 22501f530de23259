package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/client/models"
	"github.com/dmitrijs2005/videonotes/internal/client/proxy"
	"github.com/dmitrijs2005/videonotes/internal/logging"
)

// backgroundCaller is the narrow slice of the background proxy the bridge
// needs: untrusted pages never reach the proxy except through here.
type backgroundCaller interface {
	Handle(ctx context.Context, req proxy.Request) proxy.Response
}

// Bridge serves page requests from all registered transports, announces its
// readiness periodically, and consults the context-validity probe before
// every unit of work. Once the probe reports invalid, the bridge drops the
// current request, stops its timers, and returns; the only remedy is a page
// reload, so no error surfaces to the page.
type Bridge struct {
	background    backgroundCaller
	healthy       func() bool
	announceEvery time.Duration
	transports    []Transport
	logger        logging.Logger
}

type inbound struct {
	transport Transport
	req       Request
}

// New constructs a Bridge over the given transports.
func New(background backgroundCaller, healthy func() bool, announceEvery time.Duration, logger logging.Logger, transports ...Transport) *Bridge {
	return &Bridge{
		background:    background,
		healthy:       healthy,
		announceEvery: announceEvery,
		transports:    transports,
		logger:        logger,
	}
}

// Run serves until ctx is cancelled or the context-validity probe fails.
func (b *Bridge) Run(ctx context.Context) {
	merged := make(chan inbound)
	for _, t := range b.transports {
		go func(t Transport) {
			for {
				select {
				case <-ctx.Done():
					return
				case req, ok := <-t.Requests():
					if !ok {
						return
					}
					select {
					case merged <- inbound{transport: t, req: req}:
					case <-ctx.Done():
						return
					}
				}
			}
		}(t)
	}

	// Announce immediately so a page that loaded first discovers us without
	// waiting a full interval.
	b.announce()

	ticker := time.NewTicker(b.announceEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !b.healthy() {
				b.logger.Warn(ctx, "extension context invalidated, bridge stopping")
				return
			}
			b.announce()
		case in := <-merged:
			if !b.healthy() {
				b.logger.Warn(ctx, "extension context invalidated, dropping request", "type", in.req.Type)
				return
			}
			b.serve(ctx, in.transport, in.req)
		}
	}
}

// announce broadcasts readiness on every transport, request-scoped to none.
func (b *Bridge) announce() {
	for _, t := range b.transports {
		t.Send(Response{Source: SourceExtension, Type: TypeBridgeReady})
	}
}

func (b *Bridge) serve(ctx context.Context, t Transport, req Request) {
	if req.Source != SourceDashboard {
		return
	}

	switch req.Type {
	case TypePing:
		t.Send(Response{Source: SourceExtension, Type: TypePong})

	case TypeRequestLocalVideos:
		videos, err := b.fetchVideos(ctx)
		if err != nil {
			b.logger.Error(ctx, "bridge: fetching local videos failed", "transport", t.Name(), "error", err)
			return
		}
		t.Send(Response{Source: SourceExtension, Type: TypeLocalVideosResponse, Payload: videos})

	case TypeRequestAllNotes:
		notes, err := b.fetchNotes(ctx, proxy.MethodGetAllNotes, nil)
		if err != nil {
			b.logger.Error(ctx, "bridge: fetching all notes failed", "transport", t.Name(), "error", err)
			return
		}
		t.Send(Response{Source: SourceExtension, Type: TypeAllNotesResponse, Payload: notes})

	case TypeRequestVideoNotes:
		notes, err := b.fetchNotes(ctx, proxy.MethodGetNotes, []any{req.VideoID})
		if err != nil {
			b.logger.Error(ctx, "bridge: fetching video notes failed", "transport", t.Name(), "error", err)
			return
		}
		t.Send(Response{Source: SourceExtension, Type: TypeVideoNotesResponse, Payload: notes, VideoID: req.VideoID})

	default:
		// Unknown tags are ignored, never answered.
	}
}

// fetchVideos reads the full video list through the proxy and keeps only
// videos with saved content: a bookmark or at least one note. Videos the
// user merely visited never reach the page.
func (b *Bridge) fetchVideos(ctx context.Context) ([]LocalVideo, error) {
	var items []models.VideoListItem
	if err := b.callDB(ctx, proxy.MethodGetAllVideos, nil, &items); err != nil {
		return nil, err
	}

	active := make([]LocalVideo, 0, len(items))
	for _, item := range items {
		if !item.HasBookmark() && item.Count.Notes == 0 {
			continue
		}
		active = append(active, LocalVideo{VideoListItem: item, BookmarkTime: item.BookmarkTimestamp})
	}
	return active, nil
}

func (b *Bridge) fetchNotes(ctx context.Context, method string, args []any) ([]models.Note, error) {
	var notes []models.Note
	if err := b.callDB(ctx, method, args, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

func (b *Bridge) callDB(ctx context.Context, method string, args []any, dest any) error {
	var raw json.RawMessage
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return err
		}
		raw = encoded
	}

	resp := b.background.Handle(ctx, proxy.Request{Type: proxy.TypeDBCall, Method: method, Args: raw})
	if resp.Error != "" {
		return &backgroundError{msg: resp.Error}
	}
	if len(resp.Result) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Result, dest)
}

type backgroundError struct{ msg string }

func (e *backgroundError) Error() string { return e.msg }

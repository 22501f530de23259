// Package cli implements the device agent's interactive shell. Commands go
// through the background proxy rather than straight to the store, so every
// mutation schedules a sync push the same way a captured page event would.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/videonotes/internal/client/bridge"
	"github.com/dmitrijs2005/videonotes/internal/client/config"
	"github.com/dmitrijs2005/videonotes/internal/client/models"
	"github.com/dmitrijs2005/videonotes/internal/client/proxy"
	"github.com/dmitrijs2005/videonotes/internal/client/services"
	"github.com/dmitrijs2005/videonotes/internal/client/store"
	"github.com/dmitrijs2005/videonotes/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config        *config.Config
	store         *store.LocalStore
	background    *proxy.Proxy
	bridge        *bridge.Bridge
	pageTransport *bridge.ChannelTransport
	auth          *services.AuthActions
	logger        logging.Logger
}

// NewApp opens the local database and wires the store, sync client, and
// background proxy together.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	db, err := sql.Open("sqlite", c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := store.NewLocalStore(db)
	if err := s.InitSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	auth := services.NewAuthActions(c.ServerBaseURL, s.Metadata(), logger)
	sync := services.NewSyncClient(s, auth, c.ServerBaseURL, logger)
	bg := proxy.New(s, sync, auth, logger)

	// The agent process outlives every request it serves, so the bridge's
	// context-validity probe never trips here.
	page := bridge.NewPageTransport(16)
	br := bridge.New(bg, func() bool { return true }, c.AnnounceInterval, logger,
		page, bridge.NewEventTransport(16))

	return &App{
		config:        c,
		store:         s,
		background:    bg,
		bridge:        br,
		pageTransport: page,
		auth:          auth,
		logger:        logger,
	}, nil
}

// Background exposes the proxy for embeddings that serve a dashboard bridge.
func (a *App) Background() *proxy.Proxy { return a.background }

// PageTransport exposes the bridge's structured-messaging channel so an
// embedding can inject dashboard requests and read the responses.
func (a *App) PageTransport() *bridge.ChannelTransport { return a.pageTransport }

// Run starts the proxy worker, the dashboard bridge, and the REPL; it
// returns when the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.background.Run(ctx)
	go a.bridge.Run(ctx)

	printlnFn("videonotes agent (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))

	cancel()
	a.background.Wait()
}

func (a *App) isLinked(ctx context.Context) bool {
	return a.auth.IsAuthenticated(ctx)
}

func (a *App) status(ctx context.Context) string {
	if a.isLinked(ctx) {
		return "linked"
	}
	return "local-only"
}

// call routes a store method through the proxy so mutations trigger a push.
func (a *App) call(ctx context.Context, method string, args []any, dest any) error {
	var raw json.RawMessage
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return err
		}
		raw = encoded
	}

	resp := a.background.Handle(ctx, proxy.Request{Type: proxy.TypeDBCall, Method: method, Args: raw})
	if resp.Error != "" {
		return fmt.Errorf("%s", resp.Error)
	}
	if dest != nil && len(resp.Result) > 0 {
		return json.Unmarshal(resp.Result, dest)
	}
	return nil
}

func (a *App) AddNote(ctx context.Context, videoID, timestamp, text string) error {
	ts, err := strconv.ParseFloat(timestamp, 64)
	if err != nil {
		printlnFn("timestamp must be a number of seconds")
		return err
	}

	note := models.Note{VideoID: videoID, Timestamp: ts, Text: text}
	var saved models.Note
	if err := a.call(ctx, proxy.MethodSaveNote, []any{note}, &saved); err != nil {
		printlnFn("error:", err.Error())
		return err
	}
	printlnFn("saved note", saved.ID)
	return nil
}

func (a *App) Bookmark(ctx context.Context, videoID, timestamp string) error {
	ts, err := strconv.ParseFloat(timestamp, 64)
	if err != nil {
		printlnFn("timestamp must be a number of seconds")
		return err
	}

	if err := a.call(ctx, proxy.MethodSetBookmark, []any{videoID, ts}, nil); err != nil {
		printlnFn("error:", err.Error())
		return err
	}
	printlnFn("bookmarked", videoID, "at", timestamp)
	return nil
}

func (a *App) Unbookmark(ctx context.Context, videoID string) error {
	if err := a.call(ctx, proxy.MethodSetBookmark, []any{videoID, nil}, nil); err != nil {
		printlnFn("error:", err.Error())
		return err
	}
	printlnFn("bookmark cleared for", videoID)
	return nil
}

func (a *App) List(ctx context.Context) error {
	var videos []models.VideoListItem
	if err := a.call(ctx, proxy.MethodGetAllVideos, nil, &videos); err != nil {
		printlnFn("error:", err.Error())
		return err
	}

	if len(videos) == 0 {
		printlnFn("no videos yet")
		return nil
	}
	for _, v := range videos {
		line := fmt.Sprintf("%s  notes:%d", v.VideoID, v.Count.Notes)
		if v.HasBookmark() {
			line += fmt.Sprintf("  bookmark:%.1fs", *v.BookmarkTimestamp)
		}
		if v.Title != "" {
			line += "  " + v.Title
		}
		printlnFn(line)
	}
	return nil
}

func (a *App) Notes(ctx context.Context, videoID string) error {
	var notes []models.Note
	if err := a.call(ctx, proxy.MethodGetNotes, []any{videoID}, &notes); err != nil {
		printlnFn("error:", err.Error())
		return err
	}

	if len(notes) == 0 {
		printlnFn("no notes for", videoID)
		return nil
	}
	for _, n := range notes {
		printlnFn(fmt.Sprintf("[%7.1fs] %s  (%s)", n.Timestamp, n.Text, n.ID))
	}
	return nil
}

func (a *App) DeleteNote(ctx context.Context, id string) error {
	if err := a.call(ctx, proxy.MethodDeleteNote, []any{id}, nil); err != nil {
		printlnFn("error:", err.Error())
		return err
	}
	printlnFn("deleted note", id)
	return nil
}

// Login exchanges a one-time code obtained from the web dashboard.
func (a *App) Login(ctx context.Context, code string) error {
	if err := a.auth.ExchangeCode(ctx, code); err != nil {
		printlnFn("error:", err.Error())
		return err
	}
	printlnFn("device linked")
	a.background.Handle(ctx, proxy.Request{Type: proxy.TypeTriggerSync})
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	resp := a.background.Handle(ctx, proxy.Request{Type: proxy.TypeTriggerSync})
	if resp.Error != "" {
		printlnFn("error:", resp.Error)
		return fmt.Errorf("%s", resp.Error)
	}
	printlnFn("sync scheduled")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	printlnFn("server:", a.config.ServerBaseURL)
	printlnFn("database:", a.config.DatabasePath)
	printlnFn("state:", a.status(ctx))
	return nil
}

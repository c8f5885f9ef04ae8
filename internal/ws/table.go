package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kiwari-pos/backoffice/internal/pager"
)

// Client to server.
const (
	MsgLoadMore = "load_more"
	MsgSearch   = "search"
	MsgReset    = "reset"
)

// Server to client.
const (
	MsgRows    = "rows"
	MsgLoading = "loading"
	MsgError   = "error"
)

const maxTablePageSize = 100

// TableSource builds the fetch function for one dashboard table in one branch.
// search is the last free-text filter the client sent, "" for none.
type TableSource func(branchID uuid.UUID, search string) pager.FetchFunc[any]

// Sources maps table names, as they appear in the URL, to their sources.
type Sources map[string]TableSource

// TableObserver receives page and session metrics. Satisfied by *metrics.Metrics.
type TableObserver interface {
	pager.Observer
	SessionOpened()
	SessionClosed()
}

type clientMessage struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

type rowsMessage struct {
	Type        string `json:"type"`
	Table       string `json:"table"`
	Rows        []any  `json:"rows"`
	Append      bool   `json:"append"`
	HasNextPage bool   `json:"has_next_page"`
	Page        int    `json:"page"`
	Total       int    `json:"total"`
	Failed      bool   `json:"failed,omitempty"`
}

type loadingMessage struct {
	Type    string `json:"type"`
	Table   string `json:"table"`
	Loading bool   `json:"loading"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Table string `json:"table"`
	Error string `json:"error"`
}

// tableSession owns one controller for the lifetime of one connection.
// Messages are handled one at a time, so at most one fetch is ever running.
type tableSession struct {
	table    string
	branchID uuid.UUID
	source   TableSource
	ctrl     *pager.Controller[any]
	emit     func(v any) error
	log      *slog.Logger
	observer pager.Observer

	mu     sync.Mutex
	search string
}

// newTableSession creates a session. log may be nil; observer may be nil.
func newTableSession(table string, branchID uuid.UUID, src TableSource, pageSize int, emit func(v any) error, log *slog.Logger, observer pager.Observer) *tableSession {
	if log == nil {
		log = slog.Default()
	}
	s := &tableSession{table: table, branchID: branchID, source: src, emit: emit, log: log, observer: observer}
	opts := []pager.Option{pager.WithLogger(log), pager.WithName(table)}
	if observer != nil {
		opts = append(opts, pager.WithObserver(observer))
	}
	s.ctrl = pager.New(nil, pageSize, s.fetch, opts...)
	return s
}

func (s *tableSession) fetch(ctx context.Context, page, pageSize int) ([]any, error) {
	s.mu.Lock()
	search := s.search
	s.mu.Unlock()
	return s.source(s.branchID, search)(ctx, page, pageSize)
}

// open sends the first page.
func (s *tableSession) open(ctx context.Context) error {
	return s.load(ctx, false)
}

func (s *tableSession) handle(ctx context.Context, msg clientMessage) error {
	switch msg.Type {
	case MsgLoadMore:
		if !s.ctrl.CanLoadMore() {
			return nil
		}
		return s.load(ctx, true)
	case MsgSearch:
		return s.searchFor(ctx, strings.TrimSpace(msg.Query))
	case MsgReset:
		s.ctrl.Reset()
		return s.load(ctx, false)
	default:
		return s.emit(errorMessage{Type: MsgError, Table: s.table, Error: "unknown message type " + strconv.Quote(msg.Type)})
	}
}

// searchFor fetches page 1 under the new filter and swaps it in with
// ReplaceData, so the old rows stay visible until the new ones arrive. If the
// fetch fails the controller is reset and the next load_more retries page 1.
func (s *tableSession) searchFor(ctx context.Context, query string) error {
	s.mu.Lock()
	s.search = query
	s.mu.Unlock()

	if err := s.emit(loadingMessage{Type: MsgLoading, Table: s.table, Loading: true}); err != nil {
		return err
	}
	start := time.Now()
	rows, err := s.fetch(ctx, 1, s.ctrl.PageSize())
	failed := err != nil
	if failed {
		s.ctrl.Reset()
		if errors.Is(err, context.Canceled) {
			s.log.Debug("search fetch cancelled", "table", s.table)
		} else {
			s.log.Warn("search fetch failed", "table", s.table, "err", err)
		}
		if s.observer != nil {
			s.observer.PageFailed(s.table, 1, err)
		}
	} else {
		s.ctrl.ReplaceData(rows)
		if s.observer != nil {
			s.observer.PageLoaded(s.table, 1, len(rows), time.Since(start))
		}
	}
	if err := s.emit(loadingMessage{Type: MsgLoading, Table: s.table}); err != nil {
		return err
	}
	return s.emitRows(s.ctrl.Rows(), false, failed)
}

// load fetches one page and sends it. With appendRows the message carries only
// the new rows, otherwise the whole collection.
func (s *tableSession) load(ctx context.Context, appendRows bool) error {
	before := s.ctrl.Len()
	if err := s.emit(loadingMessage{Type: MsgLoading, Table: s.table, Loading: true}); err != nil {
		return err
	}
	loaded := s.ctrl.LoadMore(ctx)
	if err := s.emit(loadingMessage{Type: MsgLoading, Table: s.table}); err != nil {
		return err
	}

	var rows []any
	if appendRows {
		rows = s.ctrl.RowsFrom(before)
	} else {
		rows = s.ctrl.Rows()
	}
	return s.emitRows(rows, appendRows, !loaded && s.ctrl.HasNextPage())
}

func (s *tableSession) emitRows(rows []any, appendRows, failed bool) error {
	if rows == nil {
		rows = []any{}
	}
	st := s.ctrl.State()
	return s.emit(rowsMessage{
		Type:        MsgRows,
		Table:       s.table,
		Rows:        rows,
		Append:      appendRows,
		HasNextPage: st.HasNextPage,
		Page:        st.Page - 1,
		Total:       st.Len,
		Failed:      failed,
	})
}

func (s *tableSession) close() {
	s.ctrl.Close()
}

// TableServer serves WS /ws/branches/{bid}/tables/{table}?token=JWT&page_size=N&query=Q.
type TableServer struct {
	jwtSecret string
	sources   Sources
	observer  TableObserver
	log       *slog.Logger
}

// NewTableServer creates a TableServer. observer and log may be nil.
func NewTableServer(jwtSecret string, sources Sources, observer TableObserver, log *slog.Logger) *TableServer {
	if log == nil {
		log = slog.Default()
	}
	return &TableServer{jwtSecret: jwtSecret, sources: sources, observer: observer, log: log}
}

func (s *TableServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, branchID, ok := authorize(w, r, s.jwtSecret)
	if !ok {
		return
	}
	table := chi.URLParam(r, "table")
	src, ok := s.sources[table]
	if !ok {
		http.Error(w, "unknown table", http.StatusNotFound)
		return
	}
	pageSize := pager.DefaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		pageSize = min(v, maxTablePageSize)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "table", table, "err", err)
		return
	}
	s.serve(r.Context(), conn, table, branchID, src, pageSize, r.URL.Query().Get("query"))
}

func (s *TableServer) serve(ctx context.Context, conn *websocket.Conn, table string, branchID uuid.UUID, src TableSource, pageSize int, query string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.Close()

	var writeMu sync.Mutex
	emit := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	var observer pager.Observer
	if s.observer != nil {
		observer = s.observer
		s.observer.SessionOpened()
		defer s.observer.SessionClosed()
	}
	sess := newTableSession(table, branchID, src, pageSize, emit, s.log, observer)
	sess.search = strings.TrimSpace(query)
	defer sess.close()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	log := s.log.With("table", table, "branch_id", branchID)
	log.Debug("table session opened", "page_size", pageSize)
	defer log.Debug("table session closed")

	if err := sess.open(ctx); err != nil {
		return
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("table session read", "err", err)
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if err := emit(errorMessage{Type: MsgError, Table: table, Error: "invalid message"}); err != nil {
				return
			}
			continue
		}
		if err := sess.handle(ctx, msg); err != nil {
			return
		}
	}
}

package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/logging"
	"github.com/mark3labs/swagger2client/internal/spec"
)

const maxBodyBytes = 1 << 20

type options struct {
	logger    *zap.Logger
	seedCount int
}

// Option configures a Server.
type Option func(*options)

// WithLogger sets the request logger. The default discards output.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithSeedCount sets how many fixture records each entity starts with.
func WithSeedCount(n int) Option { return func(o *options) { o.seedCount = n } }

// Server answers every operation of a document from an in-memory store,
// applying the status-simulation protocol.
type Server struct {
	router *chi.Mux
	store  *Store
	logger *zap.Logger
}

// Route describes how one operation is served.
type Route struct {
	Op spec.OperationRecord
	// Entity is the store collection; empty when no entity schema is
	// reachable from the operation's payloads or from its collection.
	Entity string
	// ItemParam names the path parameter addressing one record.
	ItemParam string
}

// Routes derives the route table of ops. An operation without an entity
// payload, such as a DELETE answering 204, takes the entity of the first
// operation on the same collection that has one.
func Routes(idx *spec.SchemaIndex, ops []spec.OperationRecord) []Route {
	routes := make([]Route, 0, len(ops))
	byCollection := make(map[string]string)
	for _, op := range ops {
		r := Route{Op: op, Entity: EntityFor(idx, op)}
		if strings.HasSuffix(op.Path, "}") {
			if names := spec.PathPlaceholders(op.Path); len(names) > 0 {
				r.ItemParam = names[len(names)-1]
			}
		}
		if c := collectionPath(op.Path); r.Entity != "" && byCollection[c] == "" {
			byCollection[c] = r.Entity
		}
		routes = append(routes, r)
	}
	for i := range routes {
		if routes[i].Entity == "" {
			routes[i].Entity = byCollection[collectionPath(routes[i].Op.Path)]
		}
	}
	return routes
}

// collectionPath strips a trailing item placeholder: /widgets/{id} and
// /widgets share /widgets.
func collectionPath(p string) string {
	p = strings.TrimSuffix(p, "/")
	if strings.HasSuffix(p, "}") {
		if i := strings.LastIndex(p, "/"); i >= 0 {
			return p[:i]
		}
	}
	return p
}

// EntityFor picks the entity an operation manipulates: the one carried by
// its response, else by its request body.
func EntityFor(idx *spec.SchemaIndex, op spec.OperationRecord) string {
	for _, payload := range []*spec.SchemaRecord{op.Response, op.RequestBody} {
		name := emitter.PayloadEntity(idx, payload)
		if rec, ok := idx.Get(name); ok && emitter.IsEntity(name, rec) {
			return name
		}
	}
	return ""
}

// New builds a server for ops, seeding the store from fixtures.
func New(idx *spec.SchemaIndex, ops []spec.OperationRecord, opts ...Option) (*Server, error) {
	o := options{logger: zap.NewNop(), seedCount: 3}
	for _, opt := range opts {
		opt(&o)
	}

	routes := Routes(idx, ops)
	var entities []string
	seen := make(map[string]bool)
	for _, r := range routes {
		if r.Entity != "" && !seen[r.Entity] {
			seen[r.Entity] = true
			entities = append(entities, r.Entity)
		}
	}
	store := NewStore()
	if err := store.Seed(idx, entities, o.seedCount); err != nil {
		return nil, err
	}

	s := &Server{router: chi.NewRouter(), store: store, logger: o.logger}
	s.router.Use(
		middleware.RequestID,
		logging.RequestLogger(o.logger),
		middleware.Recoverer,
		cors,
	)
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, NewFailure(http.StatusNotFound))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, NewFailure(http.StatusMethodNotAllowed))
	})
	for _, r := range routes {
		if err := s.mount(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// mount registers one route; chi panics on conflicting patterns.
func (s *Server) mount(r Route) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("mount %s %s: %v", r.Op.Method, r.Op.Path, p)
		}
	}()
	s.router.MethodFunc(string(r.Op.Method), r.Op.Path, s.handle(r))
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Store exposes the backing store.
func (s *Server) Store() *Store { return s.store }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("mock server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handle(route Route) http.HandlerFunc {
	names := spec.PathPlaceholders(route.Op.Path)
	return func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]string, len(names))
		for _, name := range names {
			params[name] = chi.URLParam(r, name)
		}
		body, err := readBody(r)
		if err != nil {
			logging.FromRequest(r, s.logger).Debug("rejecting body", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, NewFailure(http.StatusBadRequest))
			return
		}

		status, forced := Simulate(Request{Query: r.URL.Query(), Body: body, PathParams: params})
		if forced && !IsSuccess(status) {
			writeJSON(w, status, NewFailure(status))
			return
		}
		if !forced {
			status = DefaultStatus(route.Op.Method)
		}
		delete(body, "_error")

		id := params[route.ItemParam]
		switch {
		case route.Entity == "":
			s.respond(w, status, body, nil)
		case route.Op.Method == spec.GET && route.ItemParam != "":
			item, ok := s.store.Get(route.Entity, id)
			if !ok {
				writeJSON(w, http.StatusNotFound, NewFailure(http.StatusNotFound))
				return
			}
			s.respond(w, status, item, nil)
		case route.Op.Method == spec.GET:
			page, perPage := PageParams(r.URL.Query())
			items, p := Paginate(s.store.List(route.Entity), page, perPage, r.URL.Path)
			s.respond(w, status, items, &p)
		case route.Op.Method == spec.POST:
			s.respond(w, status, s.store.Create(route.Entity, body), nil)
		case route.ItemParam == "":
			s.respond(w, status, body, nil)
		case route.Op.Method == spec.DELETE:
			if !s.store.Delete(route.Entity, id) {
				writeJSON(w, http.StatusNotFound, NewFailure(http.StatusNotFound))
				return
			}
			s.respond(w, status, nil, nil)
		default:
			item, ok := s.store.Update(route.Entity, id, body, route.Op.Method == spec.PUT)
			if !ok {
				writeJSON(w, http.StatusNotFound, NewFailure(http.StatusNotFound))
				return
			}
			s.respond(w, status, item, nil)
		}
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, data any, page *Pagination) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	resp := Success{Success: true, Data: data, Pagination: page}
	if status != http.StatusOK {
		resp.Message = Message(status)
	}
	writeJSON(w, status, resp)
}

// readBody decodes a JSON object body. An empty body yields an empty map.
func readBody(r *http.Request) (map[string]any, error) {
	body := make(map[string]any)
	if r.Body == nil {
		return body, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

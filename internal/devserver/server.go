// Package devserver is a local implementation of the back-office REST API
// used by 'propdesk playground'. It stores every resource in SQLite and
// applies the same pagination and filter rules as the real backend.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/log"
)

const maxBodyBytes = 1 << 20

// Server serves the REST contract over a Store.
type Server struct {
	store  *Store
	token  string
	now    func() time.Time
	router chi.Router
}

// New builds the router. An empty token disables the bearer check.
func New(store *Store, token string) *Server {
	s := &Server{store: store, token: token, now: func() time.Time { return time.Now().UTC() }}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}).Handler)
	r.Use(requestLogger)
	r.Use(s.authenticate)

	r.Route("/city", func(r chi.Router) {
		r.Get("/", s.listLocations)
		r.Post("/", s.createLocation)
	})
	r.Route("/builder", func(r chi.Router) {
		r.Get("/", s.listBuilders)
		r.Post("/", s.createBuilder)
		r.Get("/{id}", s.getBuilder)
		r.Post("/{id}/contact", s.addContactPerson)
	})
	r.Route("/project", func(r chi.Router) {
		r.Get("/", s.listProjects)
		r.Post("/", s.createProject)
		r.Get("/amenities/list", s.listAmenities)
		r.Get("/{id}", s.getProject)
		r.Put("/{id}", s.updateProject)
		r.Delete("/{id}", s.deleteProject)
	})
	r.Route("/property-management", func(r chi.Router) {
		r.Get("/", s.listProperties)
		r.Post("/", s.createProperty)
		r.Get("/{id}", s.getProperty)
		r.Put("/{id}", s.updateProperty)
		r.Delete("/{id}", s.deleteProperty)
	})
	r.Get("/user/get-all-users", s.listUsers)
	r.Get("/leads", s.listLeads)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.CatServer, "Playground listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug(log.CatServer, "Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start))
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token != s.token {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorErr(log.CatServer, "Failed to encode response", err)
	}
}

// writeError writes {"message": message}; message may be a string or a
// list of strings.
func writeError(w http.ResponseWriter, status int, message any) {
	writeJSON(w, status, map[string]any{"message": message, "statusCode": status})
}

func writeInternal(w http.ResponseWriter, err error) {
	log.ErrorErr(log.CatServer, "Request failed", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// decodePayload decodes and validates the request body. Validation
// failures answer 400 with a message list.
func decodePayload[P interface{ Validate() error }](w http.ResponseWriter, r *http.Request) (P, bool) {
	var p P
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, []string{"body must be valid JSON"})
		return p, false
	}
	if err := p.Validate(); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, []string{verr.Field + " " + verr.Reason})
		} else {
			writeError(w, http.StatusBadRequest, []string{err.Error()})
		}
		return p, false
	}
	return p, true
}

// parsePaging reads page and limit, defaulting to 1 and 10.
func parsePaging(w http.ResponseWriter, r *http.Request) (domain.Pagination, bool) {
	p := domain.FirstPage(domain.DefaultLimit)
	q := r.URL.Query()
	var problems []string
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			problems = append(problems, "page must be a positive integer")
		}
		p.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			problems = append(problems, "limit must be between 1 and 100")
		}
		p.Limit = n
	}
	if len(problems) > 0 {
		writeError(w, http.StatusBadRequest, problems)
		return p, false
	}
	return p, true
}

// writePage queries one page and writes it in the paginated envelope.
func writePage[T any](w http.ResponseWriter, r *http.Request, s *Server, resource string, conds []Cond, p domain.Pagination) {
	raw, total, err := s.store.Query(r.Context(), resource, conds, (p.Page-1)*p.Limit, p.Limit)
	if err != nil {
		writeInternal(w, err)
		return
	}
	data, err := decodeAll[T](raw)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.Page[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: domain.TotalPagesFor(total, p.Limit),
	})
}

func writeAll[T any](w http.ResponseWriter, r *http.Request, s *Server, resource string) {
	items, err := All[T](r.Context(), s.store, resource)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// getOne writes the document with the URL id or a 404 naming label.
func getOne[T any](w http.ResponseWriter, r *http.Request, s *Server, resource, label string) (T, bool) {
	var item T
	found, err := s.store.Get(r.Context(), resource, chi.URLParam(r, "id"), &item)
	if err != nil {
		writeInternal(w, err)
		return item, false
	}
	if !found {
		writeError(w, http.StatusNotFound, label+" not found")
		return item, false
	}
	return item, true
}

func (s *Server) deleteOne(w http.ResponseWriter, r *http.Request, resource, label string) {
	found, err := s.store.Delete(r.Context(), resource, chi.URLParam(r, "id"))
	if err != nil {
		writeInternal(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, label+" not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": label + " deleted"})
}

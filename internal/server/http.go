package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type httpError struct {
	Error string `json:"error"`
}

// Router returns the HTTP API. It offers the detection core to browser
// drawing clients, so CORS is open to any origin.
//
//	POST /detect          body as staff_detect_note
//	POST /detect/strokes  same, but points are required
//	GET  /conventions     as staff_conventions
//	GET  /health          liveness
func (s *Server) Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(s.logRequests)
	router.HandleFunc("/detect", s.handleHTTPDetect).Methods(http.MethodPost)
	router.HandleFunc("/detect/strokes", s.handleHTTPStrokes).Methods(http.MethodPost)
	router.HandleFunc("/conventions", s.handleHTTPConventions).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHTTPHealth).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

// ListenHTTP serves Router on addr until ctx is cancelled.
func (s *Server) ListenHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"call_id":  uuid.NewString(),
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("http request")
	})
}

func (s *Server) handleHTTPDetect(w http.ResponseWriter, r *http.Request) {
	s.serveDetect(w, r, false)
}

func (s *Server) handleHTTPStrokes(w http.ResponseWriter, r *http.Request) {
	s.serveDetect(w, r, true)
}

func (s *Server) serveDetect(w http.ResponseWriter, r *http.Request, needPoints bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	var a detectNoteArgs
	if err := s.decodeArgs(body, &a); err != nil {
		writeJSON(w, http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}
	if needPoints && len(a.Points) == 0 {
		writeJSON(w, http.StatusBadRequest, httpError{Error: "points are required"})
		return
	}

	res, err := s.detectNote(a)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidArguments) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, httpError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHTTPConventions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.conventions())
}

func (s *Server) handleHTTPHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package httpapi exposes the session and file operations over a REST API.
// It owns transport concerns only: routing, serialization, status mapping,
// and CORS. All business rules live in the services package.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	"github.com/gorilla/mux"
)

// AuthService is the session surface the gate consumes.
type AuthService interface {
	Login(ctx context.Context, login string, password string) (string, error)
	Logout(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (string, error)
	Register(ctx context.Context, username string, password string, email string) error
}

// FileService is the file-storage surface the gate consumes. Every method
// takes the caller's resolved owner identity explicitly.
type FileService interface {
	Upload(ctx context.Context, owner string, filename string, r io.Reader, size int64, mimeType string) error
	Delete(ctx context.Context, owner string, filename string) error
	Download(ctx context.Context, owner string, filename string) (*models.FileMetadata, io.ReadCloser, error)
	List(ctx context.Context, owner string, limit int) ([]models.FileListItem, error)
	Rename(ctx context.Context, owner string, filename string, newName string) error
}

// HTTPServer serves the cloudstore REST API.
type HTTPServer struct {
	address         string
	auth            AuthService
	files           FileService
	logger          logging.Logger
	corsOrigin      string
	shutdownTimeout time.Duration
}

// NewHTTPServer constructs the gate around the given services.
func NewHTTPServer(addr string, l logging.Logger, as AuthService, fs FileService, corsOrigin string, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         addr,
		auth:            as,
		files:           fs,
		logger:          l.With("module", "http_server"),
		corsOrigin:      corsOrigin,
		shutdownTimeout: shutdownTimeout,
	}
}

// Router builds the route table.
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware)

	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/file", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/file", s.handleDownload).Methods(http.MethodGet)
	r.HandleFunc("/file", s.handleRename).Methods(http.MethodPut)
	r.HandleFunc("/file", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/list", s.handleList).Methods(http.MethodGet)

	// browsers preflight the non-simple requests
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodOptions)

	return r
}

// Run starts the server and blocks until ctx is cancelled, then drains
// in-flight requests within the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

/*
	status serves health checks, prometheus metrics, pass summaries and
	stored vertex values over HTTP.
*/

package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mycok/uPregel/sink/bolt"
)

const shutdownTimeout = 5 * time.Second

// Service implements the HTTP status endpoints. It satisfies the
// service.Service interface.
type Service struct {
	config Config
	router *mux.Router
}

// New creates and returns a fully configured status service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("status service: config validation failed: %w", err)
	}

	svc := &Service{
		config: config,
		router: mux.NewRouter(),
	}

	svc.router.Use(svc.logRequests)
	svc.router.HandleFunc("/health", svc.health).Methods(http.MethodGet)
	svc.router.Handle(
		"/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}),
	).Methods(http.MethodGet)
	svc.router.HandleFunc("/passes/{computation}", svc.lastPass).Methods(http.MethodGet)
	svc.router.HandleFunc("/values/{computation}/{vertexID}", svc.value).Methods(http.MethodGet)

	return svc, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "status" }

// Run executes the service and blocks until the context gets cancelled
// or an error occurs.
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.config.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{
		Addr:         svc.config.ListenAddr,
		Handler:      svc.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	svc.config.Logger.WithField("addr", svc.config.ListenAddr).Info("started service")
	defer svc.config.Logger.Info("stopped service")

	group, gCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.Serve(l); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})
	group.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancelFn := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelFn()

		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// ServeHTTP allows the service to be mounted on other servers and tested
// without a listener.
func (svc *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	svc.router.ServeHTTP(w, r)
}

func (svc *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			svc.config.Logger.WithField("uri", r.RequestURI).Debug("serving request")
		}

		next.ServeHTTP(w, r)
	})
}

func (svc *Service) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (svc *Service) lastPass(w http.ResponseWriter, r *http.Request) {
	computation := mux.Vars(r)["computation"]

	reporter, exists := svc.config.Passes[computation]
	if !exists {
		svc.renderError(w, http.StatusNotFound, fmt.Sprintf("unknown computation %q", computation))
		return
	}

	summary, found := reporter.LastPass()
	if !found {
		svc.renderError(w, http.StatusNotFound, fmt.Sprintf("no completed pass for %q", computation))
		return
	}

	svc.renderJSON(w, summary)
}

func (svc *Service) value(w http.ResponseWriter, r *http.Request) {
	if svc.config.Values == nil {
		svc.renderError(w, http.StatusNotImplemented, "no value store configured")
		return
	}

	vars := mux.Vars(r)
	value, err := svc.config.Values.Value(vars["computation"], vars["vertexID"])
	if err != nil {
		if errors.Is(err, bolt.ErrNotFound) {
			svc.renderError(w, http.StatusNotFound, err.Error())
			return
		}

		svc.config.Logger.WithField("err", err).Error("reading stored value")
		svc.renderError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	svc.renderJSON(w, map[string]interface{}{
		"computation": vars["computation"],
		"vertex":      vars["vertexID"],
		"value":       formatValue(value),
	})
}

func (svc *Service) renderJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		svc.config.Logger.WithField("err", err).Error("encoding response")
	}
}

func (svc *Service) renderError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// formatValue keeps infinite distances encodable.
func formatValue(value float64) interface{} {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return fmt.Sprint(value)
	}

	return value
}

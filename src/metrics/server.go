package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	MessagesEvaluated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "haikubot",
			Name:      "messages_evaluated_total",
			Help:      "Total number of messages checked for haiku",
		},
	)

	HaikuDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haikubot",
			Name:      "haiku_detected_total",
			Help:      "Total number of haiku detected by outcome (new, duplicate)",
		},
		[]string{"outcome"},
	)

	CommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haikubot",
			Name:      "command_total",
			Help:      "Total number of commands invoked by command name",
		},
		[]string{"command"},
	)

	CommandErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haikubot",
			Name:      "command_errors_total",
			Help:      "Total number of command errors by command name",
		},
		[]string{"command"},
	)
)

// NewRegistry returns a registry holding the bot's metrics along with the standard Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		MessagesEvaluated,
		HaikuDetected,
		CommandTotal,
		CommandErrors,
	)
	return reg
}

type Server struct {
	*http.Server
}

// SetupServer serves /metrics and /healthz on addr.
func SetupServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(NewRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", healthzHandler)

	return &Server{&http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}}
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Run blocks serving requests until the server is shut down.
func (s *Server) Run(logger *zap.SugaredLogger) {
	logger.Infow("serving metrics", "addr", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorw("metrics server stopped", "error", err)
	}
}

// Stop gracefully shuts the server down, waiting at most five seconds for open requests.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Package httpapi is the read-only diagnostic sidecar: a small Gin
// server, separate from the line-protocol port, exposing health,
// Prometheus metrics and a live transaction feed. It never accepts
// account commands — internal/protocol and internal/server own that
// surface exclusively, following spec.md §1's split between the wire
// protocol and everything else.
package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ledgerd/internal/infrastructure/events"
	"ledgerd/internal/observability/metrics"
	"ledgerd/internal/pkg/logging"
)

// Server wraps the sidecar's http.Server so Container can start and
// stop it alongside the TCP reactor.
type Server struct {
	httpServer *http.Server
	broker     *events.Broker
	startedAt  time.Time
}

// New builds the sidecar router bound to addr (":9090" by default). It
// does not start listening until Run is called.
func New(addr string, broker *events.Broker) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{broker: broker, startedAt: time.Now()}

	router.GET("/healthz", s.healthz)
	router.GET("/metrics", s.prometheusMetrics)
	router.GET("/events", s.events)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // /events streams indefinitely
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Run blocks serving HTTP until Shutdown closes the listener.
func (s *Server) Run() error {
	logging.Info("observability sidecar listening", map[string]interface{}{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the sidecar within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startedAt).String(),
	})
}

func (s *Server) prometheusMetrics(c *gin.Context) {
	metrics.UpdateSystemMetrics()
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}

// events streams every TransactionEvent published since subscription as
// a server-sent-events feed, for dashboards that want a live tail
// instead of polling /metrics.
func (s *Server) events(c *gin.Context) {
	ch := s.broker.Subscribe()
	defer s.broker.Unsubscribe(ch)

	c.Stream(func(w io.Writer) bool {
		if evt, ok := <-ch; ok {
			c.SSEvent("transaction", evt)
			return true
		}
		return false
	})
}

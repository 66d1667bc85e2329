// Package http is the driver adapter exposing the job lifecycle over a JSON
// API. It owns routing and auth only; all behavior lives in the services.
package http

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"framex/internal/port"
	"framex/internal/service"
)

// Enqueuer accepts a new upload and returns the created job id.
type Enqueuer interface {
	Enqueue(ctx context.Context, userID string, r io.Reader, filename string, fps int) (string, error)
}

// JobQueries are the read-only projections of job state.
type JobQueries interface {
	GetJobStatus(ctx context.Context, jobID, userID string) (service.JobStatusView, error)
	ListJobsByUser(ctx context.Context, userID string) ([]service.JobSummaryView, error)
}

type Server struct {
	engine  *gin.Engine
	enqueue Enqueuer
	queries JobQueries
	storage port.Storage
}

func NewServer(enqueue Enqueuer, queries JobQueries, storage port.Storage, authSecret string, maxUploadSizeMB int, reg *prometheus.Registry) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = int64(maxUploadSizeMB) << 20

	s := &Server{
		engine:  engine,
		enqueue: enqueue,
		queries: queries,
		storage: storage,
	}

	engine.GET("/health", s.health)
	if reg != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	authed := engine.Group("/", authMiddleware([]byte(authSecret)))
	authed.POST("/videos", s.enqueueVideo)
	authed.GET("/videos", s.listJobs)
	authed.GET("/videos/:job_id", s.getStatus)
	authed.GET("/download/:job_id", s.download)

	return s
}

// Engine exposes the router for http.Server and tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/dmarkhas/sensorgrid/core/broadcast"
	"github.com/dmarkhas/sensorgrid/internal/domain"
	"github.com/dmarkhas/sensorgrid/internal/query"
	"github.com/dmarkhas/sensorgrid/internal/worker"
	"go.uber.org/zap"
)

type Server struct {
	config  *ServerConfig
	worker  *worker.Worker
	queries *query.Service
	router  *gin.Engine
	logger  *zap.Logger
}

func NewServer(options ...ConfigOption) (*Server, error) {
	config := &ServerConfig{
		Logger:      zap.NewNop(),
		WorkerCount: 4,
		BatchSize:   100,
		Port:        "8080",
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return nil, err
		}
	}

	if config.Broadcaster == nil {
		config.Broadcaster = broadcast.NewLogBroadcaster("DefaultBroadcaster", config.Logger)
	}

	processor := worker.NewWorker(config.ReadingStore, config.Broadcaster, config.WorkerCount, config.BatchSize, config.Logger)

	server := &Server{
		config:  config,
		worker:  processor,
		queries: query.NewService(config.ReadingStore, config.Logger),
		router:  gin.Default(),
		logger:  config.Logger,
	}

	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Prometheus endpoint
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := s.router.Group("/api/v1")
	{
		api.POST("/ingest", s.handleIngest)
		api.GET("/metrics", s.handleGetMetrics)
		api.GET("/readings/aggregated", s.handleGetAggregated)
	}
}

func (s *Server) handleIngest(c *gin.Context) {
	var bulkData domain.BulkSensorData
	if err := c.ShouldBindJSON(&bulkData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(bulkData.Data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no data provided"})
		return
	}

	// Publish to the message queue; the worker pool persists it.
	data, err := json.Marshal(bulkData)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to serialize data"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := s.config.MessageQueue.Publish(ctx, data); err != nil {
		s.logger.Error("failed to publish batch", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish data"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "data accepted for processing",
		"count":   len(bulkData.Data),
	})
}

func (s *Server) handleGetMetrics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	snapshot, err := s.queries.Metrics(ctx)
	if err != nil {
		s.logger.Error("failed to compute metrics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleGetAggregated(c *gin.Context) {
	rangeToken := c.Query("range")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	points, err := s.queries.AggregatedSeries(ctx, rangeToken)
	if err != nil {
		s.logger.Error("failed to compute aggregated series", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute aggregated series"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": points,
		"count":   len(points),
	})
}

func (s *Server) Start(ctx context.Context) error {
	// Start the ingest workers
	go func() {
		if err := s.worker.Start(ctx, s.config.MessageQueue); err != nil {
			s.logger.Error("worker pool error", zap.Error(err))
		}
	}()

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("server starting", zap.String("port", s.config.Port))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Close() error {
	if s.config.MessageQueue != nil {
		s.config.MessageQueue.Close()
	}
	if s.config.ReadingStore != nil {
		s.config.ReadingStore.Close()
	}
	return nil
}

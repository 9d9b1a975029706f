package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/core"
	"github.com/agenthands/synapse/internal/core/connectors"
	"github.com/agenthands/synapse/internal/core/model"
	"github.com/agenthands/synapse/internal/core/partners"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	Analyzer *core.Analyzer
	Logger   *zap.Logger
}

func NewServer(analyzer *core.Analyzer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Analyzer: analyzer, Logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/partners", s.Partners)
	r.POST("/connectors", s.Connectors)
	r.POST("/communities", s.Communities)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		s.Logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

type PartnersRequest struct {
	NeuronIDs []model.NeuronID `json:"neuron_ids"`
	Direction string           `json:"direction" binding:"required"`
	Threshold int              `json:"threshold"`
}

func (s *Server) Partners(c *gin.Context) {
	var req PartnersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	dir, err := model.ParseDirection(req.Direction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, err := s.Analyzer.PartnerTable(c.Request.Context(), req.NeuronIDs, dir, req.Threshold)
	if err != nil {
		s.fail(c, "Failed to build partner table", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":     table.Rows,
		"count":    table.Len(),
		"partners": partners.Summarize(table, dir),
	})
}

type ConnectorsRequest struct {
	SkeletonID      model.NeuronID `json:"skeleton_id" binding:"required"`
	VoxelResolution *[3]float64    `json:"voxel_resolution"`
	Transform       *bool          `json:"transform"`
}

func (s *Server) Connectors(c *gin.Context) {
	var req ConnectorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	res := model.DefaultResolution
	if req.VoxelResolution != nil {
		res = model.Resolution(*req.VoxelResolution)
	}
	transform := true
	if req.Transform != nil {
		transform = *req.Transform
	}

	in, out, err := s.Analyzer.ConnectorCoordinates(c.Request.Context(), req.SkeletonID, res, transform)
	if err != nil {
		if errors.Is(err, model.ErrInvalidResolution) || errors.Is(err, connectors.ErrNoRealigner) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.fail(c, "Failed to fetch connector coordinates", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"inputs": in, "outputs": out})
}

func (s *Server) Communities(c *gin.Context) {
	var req PartnersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	dir, err := model.ParseDirection(req.Direction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	communities, err := s.Analyzer.PartnerCommunities(c.Request.Context(), req.NeuronIDs, dir, req.Threshold)
	if err != nil {
		s.fail(c, "Failed to detect communities", err)
		return
	}
	if communities == nil {
		communities = []model.Community{}
	}
	c.JSON(http.StatusOK, gin.H{"communities": communities})
}

func (s *Server) fail(c *gin.Context, msg string, err error) {
	s.Logger.Error(msg, zap.String("request_id", c.GetString("request_id")), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": msg})
}

package http

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mnemo/internal/logging"
	"mnemo/internal/orchestrator"
)

// Server exposes the memory-augmented model endpoint.
type Server struct {
	engine       *gin.Engine
	orchestrator *orchestrator.Orchestrator
	logger       logging.Logger
	port         string
}

func NewServer(orch *orchestrator.Orchestrator, port string, logger logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	s := &Server{
		engine:       engine,
		orchestrator: orch,
		logger:       logging.OrNop(logger),
		port:         port,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.POST("/model", s.handleModel)
}

// Run blocks serving HTTP.
func (s *Server) Run() error {
	addr := ":" + s.port
	s.logger.Info("http server listening on %s", addr)
	return s.engine.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, "mnemo memory service is running")
}

type modelRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	SessionID    string `json:"session_id"`
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt" binding:"required"`
}

func (s *Server) handleModel(c *gin.Context) {
	var req modelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = req.UserID
	}

	response, err := s.orchestrator.HandleTurn(c.Request.Context(), req.UserID, sessionID, req.SystemPrompt, req.UserPrompt)
	if err != nil {
		s.logger.Error("turn failed for %s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     err.Error(),
			"traceback": stackLines(),
		})
		return
	}

	c.String(http.StatusOK, response)
}

// stackLines returns the current stack as individual lines for the error
// payload.
func stackLines() []string {
	return strings.Split(strings.TrimSpace(string(debug.Stack())), "\n")
}

// Package server exposes the BUDDY client over HTTP: auth, profile, and
// one route per panel. Every route delegates to the same session
// provider and backend client the CLI uses, and the session guard
// mirrors the route guard.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/buddyapp/buddy/internal/core"
	"github.com/buddyapp/buddy/internal/domain"
	"github.com/buddyapp/buddy/internal/plugins/api"
	"github.com/buddyapp/buddy/internal/plugins/db/firedb"
)

var validate = validator.New()

type Server struct {
	engine   *gin.Engine
	provider *core.SessionProvider
	profiles *firedb.ProfileRepository
	backend  *api.Client
}

// New wires the routes. The provider carries the session shared by all
// routes; panels stay stateless pass-throughs.
func New(provider *core.SessionProvider, profiles *firedb.ProfileRepository, backend *api.Client) *Server {
	s := &Server{
		engine:   gin.New(),
		provider: provider,
		profiles: profiles,
		backend:  backend,
	}
	s.engine.Use(gin.Recovery(), requestID())
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Serve blocks listening on the address.
func (s *Server) Serve(address string) error {
	return s.engine.Run(address)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)
	s.engine.GET("/session", s.session)

	auth := s.engine.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/logout", s.logout)

	protected := s.engine.Group("/", s.requireSession())
	protected.GET("/profile", s.getProfile)
	protected.PUT("/profile", s.putProfile)

	panels := protected.Group("/panels")
	panels.POST("/text", s.generateText)
	panels.POST("/image", s.generateImage)
	panels.POST("/finance", s.finance)
	panels.POST("/rag/ask", s.ragAsk)
	panels.GET("/rag/compare", s.ragCompare)
	panels.GET("/rag/search", s.ragSearch)
	panels.POST("/rag/add", s.ragAdd)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requireSession is the HTTP form of the route guard: protected routes
// answer 401 while signed out instead of redirecting.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.provider.Snapshot().Session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *domain.AuthError:
		status := http.StatusUnauthorized
		if e.Code == "EMAIL_EXISTS" || e.Code == "WEAK_PASSWORD" {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": e.Error()})
	case *domain.ProfileError:
		c.JSON(http.StatusBadGateway, gin.H{"error": e.Error()})
	case *domain.RequestError:
		switch e.Kind {
		case domain.ServerError:
			status := e.Status
			if status == 0 {
				status = http.StatusBadGateway
			}
			c.JSON(status, gin.H{"error": e.Error()})
		case domain.NoResponse:
			c.JSON(http.StatusBadGateway, gin.H{"error": e.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": e.Error()})
		}
	case validator.ValidationErrors:
		c.JSON(http.StatusBadRequest, gin.H{"error": e.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) health(c *gin.Context) {
	backendUp := s.backend.Health(c.Request.Context()) == nil
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend_reachable": backendUp})
}

func (s *Server) session(c *gin.Context) {
	snap := s.provider.Snapshot()
	out := gin.H{"loading": snap.Loading, "signed_in": snap.Session != nil}
	if snap.Session != nil {
		out["uid"] = snap.Session.UID
		out["email"] = snap.Session.Email
	}
	c.JSON(http.StatusOK, out)
}

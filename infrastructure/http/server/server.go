package server

import (
	"alumni-net/auth"
	"alumni-net/domain"
	"alumni-net/errors"
	"alumni-net/services"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Server exposes the services as a JSON API under /api.
type Server struct {
	authService       services.IAuthService
	profileService    services.IProfileService
	connectionService services.IConnectionService
	messagingService  services.IMessagingService
	issuer            *auth.TokenIssuer
	searchLimit       int
	log               *slog.Logger
}

func NewServer(log *slog.Logger, issuer *auth.TokenIssuer, searchLimit int,
	authService services.IAuthService, profileService services.IProfileService,
	connectionService services.IConnectionService, messagingService services.IMessagingService) *Server {
	return &Server{
		authService:       authService,
		profileService:    profileService,
		connectionService: connectionService,
		messagingService:  messagingService,
		issuer:            issuer,
		searchLimit:       searchLimit,
		log:               log,
	}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	public := api.Group("/auth")
	public.POST("/register", s.register)
	public.POST("/login", s.login)

	private := api.Group("")
	private.Use(auth.Authenticate(s.issuer))
	private.GET("/auth", s.currentUser)

	users := private.Group("/users")
	users.GET("/profile/:id", s.getProfile)
	users.PUT("/profile", s.updateProfile)
	users.GET("/search", s.searchProfiles)
	users.GET("/connections", s.listConnections)
	users.GET("/connections/:id", s.areConnected)
	users.POST("/connections/:id", s.connect)
	users.DELETE("/connections/:id", s.disconnect)

	messages := private.Group("/messages")
	messages.POST("", s.sendMessage)
	messages.PUT("/read/:userId", s.markRead)
	messages.GET("/with/:userId", s.messagesWith)
	messages.GET("/conversations", s.conversations)
	messages.GET("/unread", s.unreadTotal)

	admin := private.Group("/admin")
	admin.Use(auth.RequireRole(domain.RoleAdmin))
	admin.GET("/users", s.listUsers)

	return router
}

// writeError maps err to its status and machine code.
// Server side failures are logged, client errors are not.
func (s *Server) writeError(c *gin.Context, err error) {
	status, code := errors.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": code})
}

// caller returns the authenticated user. Authenticate guarantees presence.
func caller(c *gin.Context) domain.UserID {
	id, _ := auth.UserIDFrom(c)
	return id
}

func pathUserID(c *gin.Context, name string) (domain.UserID, error) {
	return domain.ParseUserID(c.Param(name))
}

// queryInt reads a positive integer parameter capped at maxValue. Missing or
// malformed values fall back to the default.
func queryInt(c *gin.Context, name string, fallback, maxValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return min(n, maxValue)
}

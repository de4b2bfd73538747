package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/board"
	"github.com/yurufuwa/board/internal/store"
	"github.com/yurufuwa/board/pkg/logging"
	"github.com/yurufuwa/board/pkg/telemetry"
)

// Router sets up API routes
type Router struct {
	handler  *JSONRPCHandler
	sessions *Sessions
	store    store.Store
	metrics  bool
	logger   *zap.Logger
}

// NewRouter creates a new API router. metrics exposes /metrics.
func NewRouter(sessions *Sessions, s store.Store, metrics bool) *Router {
	router := &Router{
		handler:  NewJSONRPCHandler(),
		sessions: sessions,
		store:    s,
		metrics:  metrics,
		logger:   logging.WithComponent("api-router"),
	}

	router.registerMethods()

	return router
}

// Handler returns the JSON-RPC method table
func (r *Router) Handler() *JSONRPCHandler {
	return r.handler
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// A plain GET is a page load: ?room= picks the room
	engine.GET("/board", r.boardHandler)

	if r.metrics {
		engine.GET("/metrics", gin.WrapH(telemetry.Handler()))
	}

	engine.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	boardAPI := NewBoardAPI(r.sessions)

	r.handler.RegisterMethod("board.load_room", boardAPI.LoadRoom)
	r.handler.RegisterMethod("board.state", boardAPI.State)
	r.handler.RegisterMethod("board.create_post", boardAPI.CreatePost)
	r.handler.RegisterMethod("board.get_post", boardAPI.GetPost)
	r.handler.RegisterMethod("board.remove_post", boardAPI.RemovePost)
	r.handler.RegisterMethod("board.toggle_reaction", boardAPI.ToggleReaction)
	r.handler.RegisterMethod("board.toggle_pin", boardAPI.TogglePin)
	r.handler.RegisterMethod("board.share_text", boardAPI.ShareText)

	r.handler.RegisterMethod("board.notifications", boardAPI.Notifications)
	r.handler.RegisterMethod("board.toasts", boardAPI.Toasts)

	r.handler.RegisterMethod("board.get_preferences", boardAPI.GetPreferences)
	r.handler.RegisterMethod("board.set_preferences", boardAPI.SetPreferences)
}

// boardHandler loads the room named by the query and returns its state
func (r *Router) boardHandler(c *gin.Context) {
	room := board.RoomFromQuery(c.Request.URL.Query(), r.sessions.defaultRoom)
	s, err := r.sessions.Load(c.Request.Context(), room)
	if err != nil {
		r.logger.Error("Failed to load room", zap.String("room", room), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stateOf(s, c.Query("filter")))
}

type healthChecker interface {
	Health(ctx context.Context) error
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if hc, ok := r.store.(healthChecker); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := hc.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "UNAVAILABLE",
				"service": "yurufuwa-board",
				"error":   err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "yurufuwa-board",
	})
}

package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/relaychat/relaychat-server/internal/config"
	"github.com/relaychat/relaychat-server/internal/core"
)

// NewServer builds the HTTP server: the static chat page, the history
// endpoints, and the WebSocket upgrade route.
func NewServer(svc *core.ChatService, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	ws := NewWSHandler(svc, logger)
	history := NewHistoryHandlers(svc, logger)

	router.StaticFile("/", cfg.IndexPath)
	router.GET("/healthz", healthHandler)
	router.GET("/get_history", history.GetHistory)
	router.POST("/clear_history", history.ClearHistory)
	router.GET("/ws", ws.Handle)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

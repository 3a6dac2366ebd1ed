package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"dashboard-sync/src/autosave"
	"dashboard-sync/src/channel"
	"dashboard-sync/src/heartbeat"
	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"
	"dashboard-sync/src/panels"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// StatusServer
//
// Local HTTP/websocket surface for the browser: panel snapshots over REST,
// channel health and toasts over one websocket feed.
// -----------------------------------------------------------------------------

type StatusServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	registry *channel.Registry
	monitor  *heartbeat.Monitor
	panels   *panels.Manager
	settings *autosave.Queue

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan interface{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	clientMutex sync.RWMutex
	stopOnce    sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewStatusServer(cfg *models.MConfig, registry *channel.Registry, monitor *heartbeat.Monitor, panelMgr *panels.Manager, settings *autosave.Queue, log *logger.Logger) *StatusServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &StatusServer{
		Config:   cfg,
		Logger:   log,
		engine:   gin.Default(),
		registry: registry,
		monitor:  monitor,
		panels:   panelMgr,
		settings: settings,
		clients:  make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		// Queue size of 256 ensures we can handle bursts of updates
		broadcast:  make(chan interface{}, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *StatusServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/channels", s.getChannels)
	s.engine.GET("/api/panels", s.getPanels)
	s.engine.GET("/api/panels/:name", s.getPanel)
	s.engine.GET("/api/features/history", s.getFeatureHistory)
	s.engine.GET("/api/settings", s.getSettings)
	s.engine.POST("/api/settings", s.postSettings)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *StatusServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting status server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *StatusServer) Stop() error {
	// Clean shutdown: the done channel releases the hub loop and every
	// producer blocked on a hub channel, so a client disconnecting after
	// Stop cannot send into a torn-down hub.
	s.stopOnce.Do(func() {
		close(s.done)
	})
	return nil
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues any payload for every subscribed websocket client.
// A no-op once the server is stopped.
func (s *StatusServer) Broadcast(message interface{}) {
	select {
	case s.broadcast <- message:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------

// PushUpdate broadcasts a fresh status snapshot. Wired as the change
// callback of the channels, the heartbeat monitor and the panel manager.
func (s *StatusServer) PushUpdate() {
	s.Broadcast(s.statusSnapshot("UPDATE"))
}

// -----------------------------------------------------------------------------

// Notify implements the toast surface: transient user-visible messages
// ride the same websocket feed as status updates.
func (s *StatusServer) Notify(level, message string) {
	s.Broadcast(&models.MToast{
		Type:      "TOAST",
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *StatusServer) getHealth(c *gin.Context) {
	s.clientMutex.RLock()
	connections := len(s.clients)
	s.clientMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":      "ok",
		"name":        s.Config.Name,
		"connections": connections,
		"channels":    len(s.registry.All()),
	})
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getChannels(c *gin.Context) {
	c.JSON(200, s.channelStatuses())
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getPanels(c *gin.Context) {
	c.JSON(200, s.panels.Counts())
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getPanel(c *gin.Context) {
	switch c.Param("name") {
	case "orders":
		c.JSON(200, s.panels.OrdersSnapshot())
	case "positions":
		c.JSON(200, s.panels.PositionsSnapshot())
	case "posterior":
		c.JSON(200, s.panels.LatestPosterior())
	case "features":
		c.JSON(200, s.panels.LatestFeature())
	case "risk":
		c.JSON(200, s.panels.LatestRisk())
	default:
		c.JSON(404, gin.H{"error": fmt.Sprintf("unknown panel %q", c.Param("name"))})
	}
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getFeatureHistory(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), s.panels.History().Capacity())
	c.JSON(200, s.panels.History().GetLatest(limit))
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getSettings(c *gin.Context) {
	c.JSON(200, gin.H{
		"committed":    s.settings.Committed(),
		"pending_keys": s.settings.PendingCount(),
	})
}

// -----------------------------------------------------------------------------

func (s *StatusServer) postSettings(c *gin.Context) {
	var changes map[string]interface{}
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid settings body: %v", err)})
		return
	}
	if len(changes) == 0 {
		c.JSON(400, gin.H{"error": "empty change-set"})
		return
	}

	s.settings.Push(changes)
	c.JSON(202, gin.H{"status": "queued", "keys": len(changes)})
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

// dropClient hands a disconnecting client back to the hub, unless the hub
// is already gone.
func (s *StatusServer) dropClient(c *Client) {
	select {
	case s.unregister <- c:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------

func (s *StatusServer) channelStatuses() []models.MChannelStatus {
	statuses := s.registry.Statuses()
	for i := range statuses {
		statuses[i].Degraded = s.monitor.IsDegraded(statuses[i].Name)
	}
	return statuses
}

// -----------------------------------------------------------------------------

func (s *StatusServer) statusSnapshot(updateType string) *models.MStatusUpdate {
	return &models.MStatusUpdate{
		Type:      updateType,
		Channels:  s.channelStatuses(),
		Panels:    s.panels.Counts(),
		Timestamp: time.Now().UnixMilli(),
	}
}

package server

import (
	"net/http"
	stdrpc "net/rpc"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/wfunc/manhunt/broadcast"
	"github.com/wfunc/manhunt/cache"
	"github.com/wfunc/manhunt/config"
	"github.com/wfunc/manhunt/game"
	"github.com/wfunc/manhunt/logger"
	"github.com/wfunc/manhunt/monitor"
	"github.com/wfunc/manhunt/notify"
	"github.com/wfunc/manhunt/persistence"
	"github.com/wfunc/manhunt/proximity"
	"github.com/wfunc/manhunt/room"
	manhunt_rpc "github.com/wfunc/manhunt/rpc"
	"github.com/wfunc/manhunt/session"
	"github.com/wfunc/manhunt/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	engine         *game.Engine
	prox           *proximity.Service
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	notifier       *notify.Notifier
	rpcServer      *manhunt_rpc.Server
	mon            *monitor.Monitor
	timers         *timer.Manager
	limiters       *sessionLimiters
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, store persistence.Store, locations cache.LocationCache) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		engine:         game.NewEngine(store, cfg.Game.MinPlayers),
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		mon:            monitor.NewMonitor("manhunt"),
		timers:         timer.NewManager(),
		limiters:       newSessionLimiters(cfg.Game.LocationUpdatesPerSecond),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.prox = proximity.NewService(store, locations,
		cfg.Game.ProximityThresholdMeters, cfg.Game.LocationTTL())
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)
	s.notifier = notify.NewNotifier(s.broadcaster)

	rpcServer, err := manhunt_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	stdrpc.Register(manhunt_rpc.NewGameService(s.engine))

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.mon.StartServer(s.cfg.Server.MetricsAddress)

	// Sweep idle sessions and sample room count off the shared scheduler.
	s.timers.Repeat(30*time.Second, func() { s.sweepIdleSessions() })
	s.timers.Repeat(10*time.Second, func() { s.mon.SetActiveRooms(s.roomManager.Count()) })

	router := s.buildRouter()
	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return router.Run(s.cfg.Server.HTTPAddress)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ws", func(c *gin.Context) {
		s.handleWebSocket(c.Writer, c.Request)
	})

	api := router.Group("/api")

	api.POST("/games", s.handleCreateGame)
	api.GET("/games", s.handleListGames)
	api.GET("/games/:gameId", s.handleGetGame)

	gamePlayers := api.Group("/games/:gameId/players")
	gamePlayers.GET("", s.handleListPlayers)
	gamePlayers.DELETE("", s.handleDeleteAllPlayers)
	gamePlayers.GET("/alive", s.handleAlivePlayers)
	gamePlayers.GET("/leaderboard", s.handleLeaderboard)
	gamePlayers.POST("/join", s.handleJoinGame)
	gamePlayers.POST("/assign-targets", s.handleAssignTargets)
	gamePlayers.POST("/standalone/:playerId", s.handleJoinStandalone)
	gamePlayers.POST("/:playerId/kill", s.handleKill)
	gamePlayers.PATCH("/:playerId/nickname", s.handleChangeNickname)
	gamePlayers.DELETE("/:playerId", s.handleDeletePlayer)

	api.POST("/players", s.handleCreateStandalone)
	api.GET("/players", s.handleAllPlayers)
	api.PATCH("/players/:playerId/nickname", s.handleChangeNickname)
	api.DELETE("/players", s.handleDeleteEveryone)

	return router
}

func (s *GameServer) sweepIdleSessions() {
	idle := s.sessionManager.IdleSessions(s.cfg.Game.SessionIdleTimeout())
	for _, sess := range idle {
		logger.Log.Infof("Closing idle session %s", sess.GetID())
		sess.Close()
	}
}

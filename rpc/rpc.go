package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/manhunt/game"
	"github.com/wfunc/manhunt/logger"
	"github.com/wfunc/manhunt/models"
)

// Server manages the RPC listener used by ops tooling.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameService exposes read-only game state over net/rpc.
type GameService struct {
	engine *game.Engine
}

func NewGameService(engine *game.Engine) *GameService {
	return &GameService{engine: engine}
}

type LeaderboardArgs struct {
	GameID uint
}

type LeaderboardReply struct {
	Entries []models.LeaderboardEntry
}

func (gs *GameService) GetLeaderboard(args *LeaderboardArgs, reply *LeaderboardReply) error {
	entries, err := gs.engine.Leaderboard(args.GameID)
	if err != nil {
		return err
	}
	reply.Entries = entries
	return nil
}

type GameStatsArgs struct {
	GameID uint
}

type GameStatsReply struct {
	Status     models.GameStatus
	Players    int
	Alive      int
	WinnerID   *uint
	FinishedAt string
}

func (gs *GameService) GetGameStats(args *GameStatsArgs, reply *GameStatsReply) error {
	g, err := gs.engine.GetGame(args.GameID)
	if err != nil {
		return err
	}
	players, err := gs.engine.Players(args.GameID)
	if err != nil {
		return err
	}
	alive := 0
	for _, p := range players {
		if p.IsAlive {
			alive++
		}
	}
	reply.Status = g.Status
	reply.Players = len(players)
	reply.Alive = alive
	reply.WinnerID = g.WinnerID
	if g.FinishedAt != nil {
		reply.FinishedAt = g.FinishedAt.String()
	}
	return nil
}

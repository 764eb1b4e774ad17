package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/wfunc/manhunt/apperr"
	"github.com/wfunc/manhunt/logger"
	"github.com/wfunc/manhunt/models"
)

type joinGameRequest struct {
	Nickname string `json:"nickname" binding:"required,min=2,max=64"`
}

type createPlayerRequest struct {
	Nickname string `json:"nickname" binding:"required,min=2,max=64"`
}

type nicknameRequest struct {
	NewNickname string `json:"newNickname" binding:"required,min=2,max=64"`
}

type killRequest struct {
	TargetCode string `json:"targetCode" binding:"required,len=6"`
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field: " + verrs[0].Field()})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// writeError maps domain error kinds to HTTP statuses; anything else is a
// 500 with no internals leaked.
func writeError(c *gin.Context, err error) {
	if kind, ok := apperr.KindOf(err); ok {
		status := http.StatusBadRequest
		switch kind {
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindConflict:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error(), "kind": kind.String()})
		return
	}
	logger.Log.Errorf("Request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// --- Games ---

func (s *GameServer) handleCreateGame(c *gin.Context) {
	g, err := s.engine.CreateGame()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (s *GameServer) handleListGames(c *gin.Context) {
	games, err := s.engine.ListGames()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (s *GameServer) handleGetGame(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	g, err := s.engine.GetGame(gameID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// --- Game-scoped players ---

func (s *GameServer) handleJoinGame(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	var req joinGameRequest
	if !bindJSON(c, &req) {
		return
	}
	player, err := s.engine.JoinGame(gameID, req.Nickname)
	if err != nil {
		writeError(c, err)
		return
	}
	// The joining player gets their own secret code, exactly once.
	c.JSON(http.StatusCreated, models.NewPlayerView(player, true))
}

func (s *GameServer) handleListPlayers(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	players, err := s.engine.Players(gameID)
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]models.PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, models.NewPlayerView(p, false))
	}
	c.JSON(http.StatusOK, views)
}

func (s *GameServer) handleAlivePlayers(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	players, err := s.engine.AlivePlayers(gameID)
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]models.PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, models.NewPlayerView(p, false))
	}
	c.JSON(http.StatusOK, views)
}

func (s *GameServer) handleLeaderboard(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	entries, err := s.engine.Leaderboard(gameID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *GameServer) handleAssignTargets(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	if err := s.engine.AssignInitialTargets(gameID); err != nil {
		writeError(c, err)
		return
	}
	s.notifier.GameStarted(gameID)
	c.JSON(http.StatusOK, gin.H{"message": "Targets assigned"})
}

func (s *GameServer) handleKill(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	playerID, ok := uintParam(c, "playerId")
	if !ok {
		return
	}
	var req killRequest
	if !bindJSON(c, &req) {
		return
	}

	start := time.Now()
	result, err := s.engine.KillTarget(playerID, req.TargetCode)
	s.mon.ObserveKillLatency(time.Since(start))
	if err != nil {
		if _, domain := apperr.KindOf(err); domain {
			s.mon.IncKillsRejected()
		}
		writeError(c, err)
		return
	}

	s.mon.IncKillsResolved()
	if result.Finished {
		s.mon.IncGamesFinished()
	}
	s.notifier.KillResolved(gameID, result)
	c.JSON(http.StatusOK, result)
}

func (s *GameServer) handleChangeNickname(c *gin.Context) {
	playerID, ok := uintParam(c, "playerId")
	if !ok {
		return
	}
	var req nicknameRequest
	if !bindJSON(c, &req) {
		return
	}
	player, err := s.engine.ChangeNickname(playerID, req.NewNickname)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPlayerView(player, false))
}

func (s *GameServer) handleDeletePlayer(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	playerID, ok := uintParam(c, "playerId")
	if !ok {
		return
	}
	if err := s.engine.DeletePlayer(gameID, playerID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Player deleted"})
}

func (s *GameServer) handleDeleteAllPlayers(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	if err := s.engine.DeleteAllPlayers(gameID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All players deleted"})
}

func (s *GameServer) handleJoinStandalone(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	playerID, ok := uintParam(c, "playerId")
	if !ok {
		return
	}
	player, err := s.engine.JoinStandaloneGame(playerID, gameID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPlayerView(player, true))
}

// --- Global players ---

func (s *GameServer) handleCreateStandalone(c *gin.Context) {
	var req createPlayerRequest
	if !bindJSON(c, &req) {
		return
	}
	player, err := s.engine.CreateStandalonePlayer(req.Nickname)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewPlayerView(player, true))
}

func (s *GameServer) handleAllPlayers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	result, err := s.engine.AllPlayers(page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *GameServer) handleDeleteEveryone(c *gin.Context) {
	if err := s.engine.DeleteEveryone(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All players deleted"})
}

// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/manhunt/models"
)

// ErrRecordNotFound is returned when a game or player lookup misses.
var ErrRecordNotFound = errors.New("record not found")

// Store is the entity store consumed by the ring engine and the proximity
// service. InTransaction hands the callback a Store bound to one database
// transaction: writes made through it are visible to subsequent reads in
// the same callback, and everything rolls back if the callback errors.
type Store interface {
	CreateGame(g *models.Game) error
	GetGame(id uint) (*models.Game, error)
	SaveGame(g *models.Game) error
	ListGames() ([]models.Game, error)

	CreatePlayer(p *models.Player) error
	GetPlayer(id uint) (*models.Player, error)
	FindPlayerByCode(gameID uint, code string) (*models.Player, error)
	FindPlayerByNickname(gameID uint, nickname string) (*models.Player, error)
	SavePlayers(players ...*models.Player) error
	PlayersByGame(gameID uint) ([]*models.Player, error)
	AlivePlayersByGame(gameID uint) ([]*models.Player, error)
	CountAlive(gameID uint) (int64, error)
	Leaderboard(gameID uint) ([]models.LeaderboardEntry, error)
	ListPlayers(offset, limit int) ([]models.Player, int64, error)
	// PlayerIDs returns the ids of a game's players, or of every player
	// when gameID is nil.
	PlayerIDs(gameID *uint) ([]uint, error)
	// DeletePlayers removes the given players and nulls out any
	// CurrentTargetID still referencing them.
	DeletePlayers(ids []uint) error

	AppendEvent(ev *models.GameEvent) error

	InTransaction(fn func(Store) error) error

	Close() error
}

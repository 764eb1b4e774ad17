package models

import (
	"time"

	"gorm.io/datatypes"
)

type GameStatus string

const (
	StatusWaiting    GameStatus = "waiting"
	StatusInProgress GameStatus = "in_progress"
	StatusFinished   GameStatus = "finished"
)

// Game is a single elimination ring. Status only ever moves
// waiting -> in_progress -> finished.
type Game struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Status     GameStatus `gorm:"size:32;not null;default:waiting" json:"status"`
	WinnerID   *uint      `gorm:"index" json:"winner_id,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
	Players    []Player   `json:"players,omitempty"`
}

// Player is a ring participant. CurrentTargetID is an id-based edge, never
// an owned object: the ring algorithms work on id->player maps.
type Player struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Nickname   string `gorm:"size:64;not null;uniqueIndex:idx_players_game_nickname" json:"nickname"`
	SecretCode string `gorm:"size:12;not null;uniqueIndex:idx_players_game_code" json:"secret_code,omitempty"`
	IsAlive    bool   `gorm:"not null;default:true;index:idx_players_game_alive" json:"is_alive"`
	Kills      int    `gorm:"not null;default:0" json:"kills"`
	// GameID is nullable: a standalone player exists outside any game.
	GameID          *uint     `gorm:"uniqueIndex:idx_players_game_nickname;uniqueIndex:idx_players_game_code;index:idx_players_game_alive" json:"game_id,omitempty"`
	CurrentTargetID *uint     `gorm:"index" json:"current_target_id,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// HasTarget reports whether the player currently points at someone.
func (p *Player) HasTarget() bool {
	return p.CurrentTargetID != nil
}

// InGame reports membership in the given game.
func (p *Player) InGame(gameID uint) bool {
	return p.GameID != nil && *p.GameID == gameID
}

// GameEvent is a durable audit row, written inside the same transaction as
// the mutation it records.
type GameEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	GameID    uint           `gorm:"index;not null" json:"game_id"`
	Type      string         `gorm:"size:64;not null" json:"type"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

const (
	EventPlayerJoined    = "player_joined"
	EventTargetsAssigned = "targets_assigned"
	EventPlayerKilled    = "player_killed"
	EventGameFinished    = "game_finished"
)

package models

// PlayerView is the client-facing projection of a player. The secret code
// is only present on the views a player receives about themself.
type PlayerView struct {
	ID              uint   `json:"id"`
	Nickname        string `json:"nickname"`
	Kills           int    `json:"kills"`
	IsAlive         bool   `json:"is_alive"`
	CurrentTargetID *uint  `json:"current_target_id,omitempty"`
	SecretCode      string `json:"secret_code,omitempty"`
}

func NewPlayerView(p *Player, includeCode bool) PlayerView {
	v := PlayerView{
		ID:              p.ID,
		Nickname:        p.Nickname,
		Kills:           p.Kills,
		IsAlive:         p.IsAlive,
		CurrentTargetID: p.CurrentTargetID,
	}
	if includeCode {
		v.SecretCode = p.SecretCode
	}
	return v
}

type LeaderboardEntry struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
	Kills    int    `json:"kills"`
	IsAlive  bool   `json:"is_alive"`
}

// KillResult is the outcome of a resolved kill. Finished is set when the
// deciding kill ended the game, in which case Winner equals Killer.
type KillResult struct {
	Finished bool        `json:"finished"`
	Killer   PlayerView  `json:"killer"`
	Victim   PlayerView  `json:"victim"`
	Winner   *PlayerView `json:"winner,omitempty"`
	// AliveCount after the kill, for client UI.
	AliveCount int `json:"alive_count"`
}

// ProximityResult reports distance to the current target. Distance is nil
// when either side has no recent location; that is not an error.
type ProximityResult struct {
	Nearby   bool `json:"nearby"`
	Distance *int `json:"distance,omitempty"`
	TargetID uint `json:"target_id,omitempty"`
}

// PageMeta is the pagination envelope for global player listing.
type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	LastPage int   `json:"last_page"`
}

type PlayerPage struct {
	Data []Player `json:"data"`
	Meta PageMeta `json:"meta"`
}

// persistence/memory.go
package persistence

import (
	"sort"
	"sync"
	"time"

	"github.com/wfunc/manhunt/models"
)

// MemoryStore is an in-memory Store used by tests and local development.
// InTransaction runs the callback against a deep copy and swaps it in on
// success, so a failed callback leaves no partial state behind. The parent
// lock is held for the whole transaction, which serializes writers the way
// the per-game lock does for Postgres.
type MemoryStore struct {
	mu         sync.Mutex
	games      map[uint]models.Game
	players    map[uint]models.Player
	events     []models.GameEvent
	nextGameID uint
	nextPlayer uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:      make(map[uint]models.Game),
		players:    make(map[uint]models.Player),
		nextGameID: 1,
		nextPlayer: 1,
	}
}

func copyUintPtr(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func clonePlayer(p models.Player) models.Player {
	p.GameID = copyUintPtr(p.GameID)
	p.CurrentTargetID = copyUintPtr(p.CurrentTargetID)
	return p
}

func cloneGame(g models.Game) models.Game {
	g.WinnerID = copyUintPtr(g.WinnerID)
	g.FinishedAt = copyTimePtr(g.FinishedAt)
	g.Players = nil
	return g
}

func (s *MemoryStore) CreateGame(g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createGame(g)
}

func (s *MemoryStore) createGame(g *models.Game) error {
	if g.ID == 0 {
		g.ID = s.nextGameID
		s.nextGameID++
	} else if g.ID >= s.nextGameID {
		s.nextGameID = g.ID + 1
	}
	if g.Status == "" {
		g.Status = models.StatusWaiting
	}
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	s.games[g.ID] = cloneGame(*g)
	return nil
}

func (s *MemoryStore) GetGame(id uint) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getGame(id)
}

func (s *MemoryStore) getGame(id uint) (*models.Game, error) {
	g, ok := s.games[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := cloneGame(g)
	return &out, nil
}

func (s *MemoryStore) SaveGame(g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveGame(g)
}

func (s *MemoryStore) saveGame(g *models.Game) error {
	if _, ok := s.games[g.ID]; !ok {
		return s.createGame(g)
	}
	g.UpdatedAt = time.Now()
	s.games[g.ID] = cloneGame(*g)
	return nil
}

func (s *MemoryStore) ListGames() ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games := make([]models.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, cloneGame(g))
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID > games[j].ID })
	return games, nil
}

func (s *MemoryStore) CreatePlayer(p *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createPlayer(p)
}

func (s *MemoryStore) createPlayer(p *models.Player) error {
	if p.ID == 0 {
		p.ID = s.nextPlayer
		s.nextPlayer++
	} else if p.ID >= s.nextPlayer {
		s.nextPlayer = p.ID + 1
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.players[p.ID] = clonePlayer(*p)
	return nil
}

func (s *MemoryStore) GetPlayer(id uint) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getPlayer(id)
}

func (s *MemoryStore) getPlayer(id uint) (*models.Player, error) {
	p, ok := s.players[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := clonePlayer(p)
	return &out, nil
}

func (s *MemoryStore) FindPlayerByCode(gameID uint, code string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.InGame(gameID) && p.SecretCode == code {
			out := clonePlayer(p)
			return &out, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (s *MemoryStore) FindPlayerByNickname(gameID uint, nickname string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.InGame(gameID) && p.Nickname == nickname {
			out := clonePlayer(p)
			return &out, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (s *MemoryStore) SavePlayers(players ...*models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range players {
		if _, ok := s.players[p.ID]; !ok {
			if err := s.createPlayer(p); err != nil {
				return err
			}
			continue
		}
		p.UpdatedAt = time.Now()
		s.players[p.ID] = clonePlayer(*p)
	}
	return nil
}

func (s *MemoryStore) PlayersByGame(gameID uint) ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playersByGame(gameID, false), nil
}

func (s *MemoryStore) AlivePlayersByGame(gameID uint) ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playersByGame(gameID, true), nil
}

func (s *MemoryStore) playersByGame(gameID uint, aliveOnly bool) []*models.Player {
	var out []*models.Player
	for _, p := range s.players {
		if !p.InGame(gameID) {
			continue
		}
		if aliveOnly && !p.IsAlive {
			continue
		}
		c := clonePlayer(p)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) CountAlive(gameID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, p := range s.players {
		if p.InGame(gameID) && p.IsAlive {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Leaderboard(gameID uint) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []models.LeaderboardEntry
	for _, p := range s.players {
		if p.InGame(gameID) {
			entries = append(entries, models.LeaderboardEntry{
				ID:       p.ID,
				Nickname: p.Nickname,
				Kills:    p.Kills,
				IsAlive:  p.IsAlive,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kills != entries[j].Kills {
			return entries[i].Kills > entries[j].Kills
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (s *MemoryStore) ListPlayers(offset, limit int) ([]models.Player, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.Player, 0, len(s.players))
	for _, p := range s.players {
		all = append(all, clonePlayer(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *MemoryStore) PlayerIDs(gameID *uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for id, p := range s.players {
		if gameID == nil || p.InGame(*gameID) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) DeletePlayers(ids []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		deleted[id] = true
		delete(s.players, id)
	}
	for id, p := range s.players {
		if p.CurrentTargetID != nil && deleted[*p.CurrentTargetID] {
			p.CurrentTargetID = nil
			s.players[id] = p
		}
	}
	return nil
}

func (s *MemoryStore) AppendEvent(ev *models.GameEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = uint(len(s.events) + 1)
	ev.CreatedAt = time.Now()
	s.events = append(s.events, *ev)
	return nil
}

// Events returns a copy of the recorded events, oldest first.
func (s *MemoryStore) Events() []models.GameEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.GameEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemoryStore) InTransaction(fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.snapshot()
	if err := fn(tx); err != nil {
		return err
	}

	s.games = tx.games
	s.players = tx.players
	s.events = tx.events
	s.nextGameID = tx.nextGameID
	s.nextPlayer = tx.nextPlayer
	return nil
}

func (s *MemoryStore) snapshot() *MemoryStore {
	tx := &MemoryStore{
		games:      make(map[uint]models.Game, len(s.games)),
		players:    make(map[uint]models.Player, len(s.players)),
		events:     make([]models.GameEvent, len(s.events)),
		nextGameID: s.nextGameID,
		nextPlayer: s.nextPlayer,
	}
	for id, g := range s.games {
		tx.games[id] = cloneGame(g)
	}
	for id, p := range s.players {
		tx.players[id] = clonePlayer(p)
	}
	copy(tx.events, s.events)
	return tx
}

func (s *MemoryStore) Close() error {
	return nil
}

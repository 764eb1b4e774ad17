package game

import (
	"fmt"
	"testing"

	"github.com/wfunc/manhunt/apperr"
	"github.com/wfunc/manhunt/models"
	"github.com/wfunc/manhunt/persistence"
)

func nick(i int) string { return fmt.Sprintf("player-%d", i) }
func code(i int) string { return fmt.Sprintf("%06d", 100000+i) }

func newTestEngine() (*Engine, *persistence.MemoryStore) {
	store := persistence.NewMemoryStore()
	return NewEngine(store, 4), store
}

func makeGame(t *testing.T, store *persistence.MemoryStore, status models.GameStatus) *models.Game {
	t.Helper()
	game := &models.Game{Status: status}
	if err := store.CreateGame(game); err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	return game
}

func makePlayer(t *testing.T, store *persistence.MemoryStore, gameID uint, nickname, code string) *models.Player {
	t.Helper()
	player := &models.Player{
		Nickname:   nickname,
		SecretCode: code,
		IsAlive:    true,
		GameID:     &gameID,
	}
	if err := store.CreatePlayer(player); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	return player
}

// assertSingleCycle follows target pointers from every alive player and
// checks the edges form exactly one cycle covering the whole alive set.
func assertSingleCycle(t *testing.T, store *persistence.MemoryStore, gameID uint) {
	t.Helper()
	alive, err := store.AlivePlayersByGame(gameID)
	if err != nil {
		t.Fatalf("AlivePlayersByGame failed: %v", err)
	}
	byID := make(map[uint]*models.Player, len(alive))
	for _, p := range alive {
		if p.CurrentTargetID == nil {
			t.Fatalf("alive player %d has no target", p.ID)
		}
		if *p.CurrentTargetID == p.ID {
			t.Fatalf("player %d targets itself", p.ID)
		}
		byID[p.ID] = p
	}

	// N hops from any player must return to it, visiting everyone once.
	start := alive[0]
	visited := make(map[uint]bool)
	current := start
	for i := 0; i < len(alive); i++ {
		if visited[current.ID] {
			t.Fatalf("sub-cycle detected at player %d after %d hops", current.ID, i)
		}
		visited[current.ID] = true
		next, ok := byID[*current.CurrentTargetID]
		if !ok {
			t.Fatalf("player %d targets non-alive player %d", current.ID, *current.CurrentTargetID)
		}
		current = next
	}
	if current.ID != start.ID {
		t.Fatalf("cycle did not close: started at %d, ended at %d", start.ID, current.ID)
	}
	if len(visited) != len(alive) {
		t.Fatalf("cycle covers %d of %d alive players", len(visited), len(alive))
	}
}

func TestAssignInitialTargets_SingleCycle(t *testing.T) {
	for _, n := range []int{4, 5, 8} {
		engine, store := newTestEngine()
		game := makeGame(t, store, models.StatusWaiting)
		for i := 0; i < n; i++ {
			makePlayer(t, store, game.ID, nick(i), code(i))
		}

		if err := engine.AssignInitialTargets(game.ID); err != nil {
			t.Fatalf("AssignInitialTargets(%d players) failed: %v", n, err)
		}

		assertSingleCycle(t, store, game.ID)

		updated, err := store.GetGame(game.ID)
		if err != nil {
			t.Fatalf("GetGame failed: %v", err)
		}
		if updated.Status != models.StatusInProgress {
			t.Errorf("Expected status %s, got %s", models.StatusInProgress, updated.Status)
		}
	}
}

func TestAssignInitialTargets_NotEnoughPlayers(t *testing.T) {
	engine, store := newTestEngine()
	game := makeGame(t, store, models.StatusWaiting)
	for i := 0; i < 3; i++ {
		makePlayer(t, store, game.ID, nick(i), code(i))
	}

	err := engine.AssignInitialTargets(game.ID)
	if !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("Expected InvalidState, got %v", err)
	}

	// Nothing should have been assigned.
	players, _ := store.PlayersByGame(game.ID)
	for _, p := range players {
		if p.CurrentTargetID != nil {
			t.Errorf("Player %d got a target despite the rejection", p.ID)
		}
	}
}

func TestAssignInitialTargets_RequiresWaitingGame(t *testing.T) {
	engine, store := newTestEngine()
	game := makeGame(t, store, models.StatusInProgress)
	for i := 0; i < 4; i++ {
		makePlayer(t, store, game.ID, nick(i), code(i))
	}

	if err := engine.AssignInitialTargets(game.ID); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("Expected InvalidState, got %v", err)
	}
}

func TestAssignInitialTargets_GameNotFound(t *testing.T) {
	engine, _ := newTestEngine()
	if err := engine.AssignInitialTargets(99); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Expected NotFound, got %v", err)
	}
}

func uintPtr(v uint) *uint { return &v }

func TestRepair_SkipsDeadNodes(t *testing.T) {
	// 1 -> 2(dead just now) -> 3(dead earlier) -> 4 -> 1
	players := map[uint]*models.Player{
		1: {ID: 1, IsAlive: true, CurrentTargetID: uintPtr(2)},
		2: {ID: 2, IsAlive: false, CurrentTargetID: nil},
		3: {ID: 3, IsAlive: false, CurrentTargetID: uintPtr(4)},
		4: {ID: 4, IsAlive: true, CurrentTargetID: uintPtr(1)},
	}

	changed := repairDeadReferences(players, 2, uintPtr(3))
	if len(changed) != 1 {
		t.Fatalf("Expected 1 repaired hunter, got %d", len(changed))
	}
	hunter := changed[0]
	if hunter.ID != 1 {
		t.Fatalf("Expected hunter 1, got %d", hunter.ID)
	}
	if hunter.CurrentTargetID == nil || *hunter.CurrentTargetID != 4 {
		t.Errorf("Expected hunter to target 4, got %v", hunter.CurrentTargetID)
	}
}

func TestRepair_SoleSurvivorGetsNilTarget(t *testing.T) {
	players := map[uint]*models.Player{
		1: {ID: 1, IsAlive: true, CurrentTargetID: uintPtr(2)},
		2: {ID: 2, IsAlive: false, CurrentTargetID: uintPtr(1)},
	}

	changed := repairDeadReferences(players, 2, uintPtr(1))
	if len(changed) != 1 {
		t.Fatalf("Expected 1 repaired hunter, got %d", len(changed))
	}
	if changed[0].CurrentTargetID != nil {
		t.Errorf("Sole survivor should end with no target, got %v", *changed[0].CurrentTargetID)
	}
}

func TestRepair_CorruptChainDegradesToNil(t *testing.T) {
	// Dead player's chain points at an id that does not exist.
	players := map[uint]*models.Player{
		1: {ID: 1, IsAlive: true, CurrentTargetID: uintPtr(2)},
		2: {ID: 2, IsAlive: false, CurrentTargetID: nil},
	}

	changed := repairDeadReferences(players, 2, uintPtr(99))
	if len(changed) != 1 {
		t.Fatalf("Expected 1 repaired hunter, got %d", len(changed))
	}
	if changed[0].CurrentTargetID != nil {
		t.Errorf("Corrupt chain should degrade to nil target, got %v", *changed[0].CurrentTargetID)
	}
}

func TestRepair_NoHunter(t *testing.T) {
	players := map[uint]*models.Player{
		1: {ID: 1, IsAlive: true, CurrentTargetID: uintPtr(3)},
		2: {ID: 2, IsAlive: false, CurrentTargetID: nil},
		3: {ID: 3, IsAlive: true, CurrentTargetID: uintPtr(1)},
	}

	if changed := repairDeadReferences(players, 2, nil); len(changed) != 0 {
		t.Fatalf("Expected no repairs, got %d", len(changed))
	}
}

func TestLinkCycle_NeverSelfLoops(t *testing.T) {
	for trial := 0; trial < 50; trial++ {
		players := []*models.Player{
			{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5},
		}
		linkCycle(players)
		for _, p := range players {
			if p.CurrentTargetID == nil {
				t.Fatalf("player %d has no target", p.ID)
			}
			if *p.CurrentTargetID == p.ID {
				t.Fatalf("player %d targets itself", p.ID)
			}
		}
	}
}

package persistence

import (
	"errors"
	"testing"

	"github.com/wfunc/manhunt/models"
)

func seedGameWithPlayers(t *testing.T, store *MemoryStore, n int) (*models.Game, []*models.Player) {
	t.Helper()
	game := &models.Game{Status: models.StatusWaiting}
	if err := store.CreateGame(game); err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	players := make([]*models.Player, n)
	for i := 0; i < n; i++ {
		players[i] = &models.Player{
			Nickname:   string(rune('a' + i)),
			SecretCode: "10000" + string(rune('0'+i)),
			IsAlive:    true,
			GameID:     &game.ID,
		}
		if err := store.CreatePlayer(players[i]); err != nil {
			t.Fatalf("CreatePlayer failed: %v", err)
		}
	}
	return game, players
}

func TestMemoryStore_TransactionCommit(t *testing.T) {
	store := NewMemoryStore()
	game, players := seedGameWithPlayers(t, store, 2)

	err := store.InTransaction(func(tx Store) error {
		p, err := tx.GetPlayer(players[0].ID)
		if err != nil {
			return err
		}
		p.Kills = 5
		if err := tx.SavePlayers(p); err != nil {
			return err
		}
		g, err := tx.GetGame(game.ID)
		if err != nil {
			return err
		}
		g.Status = models.StatusInProgress
		return tx.SaveGame(g)
	})
	if err != nil {
		t.Fatalf("InTransaction failed: %v", err)
	}

	p, _ := store.GetPlayer(players[0].ID)
	if p.Kills != 5 {
		t.Errorf("Expected committed kills=5, got %d", p.Kills)
	}
	g, _ := store.GetGame(game.ID)
	if g.Status != models.StatusInProgress {
		t.Errorf("Expected committed status, got %s", g.Status)
	}
}

func TestMemoryStore_TransactionRollback(t *testing.T) {
	store := NewMemoryStore()
	game, players := seedGameWithPlayers(t, store, 2)

	boom := errors.New("boom")
	err := store.InTransaction(func(tx Store) error {
		p, err := tx.GetPlayer(players[0].ID)
		if err != nil {
			return err
		}
		p.IsAlive = false
		p.Kills = 99
		if err := tx.SavePlayers(p); err != nil {
			return err
		}
		if err := tx.AppendEvent(&models.GameEvent{GameID: game.ID, Type: models.EventPlayerKilled}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the callback error back, got %v", err)
	}

	p, _ := store.GetPlayer(players[0].ID)
	if !p.IsAlive || p.Kills != 0 {
		t.Errorf("Rollback should discard writes, got alive=%v kills=%d", p.IsAlive, p.Kills)
	}
	if len(store.Events()) != 0 {
		t.Errorf("Rollback should discard events, got %d", len(store.Events()))
	}
}

func TestMemoryStore_GetReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	_, players := seedGameWithPlayers(t, store, 1)

	p, _ := store.GetPlayer(players[0].ID)
	p.Kills = 42

	again, _ := store.GetPlayer(players[0].ID)
	if again.Kills != 0 {
		t.Error("Mutating a returned player must not leak into the store")
	}
}

func TestMemoryStore_FindPlayerByCode(t *testing.T) {
	store := NewMemoryStore()
	game, players := seedGameWithPlayers(t, store, 2)

	found, err := store.FindPlayerByCode(game.ID, players[1].SecretCode)
	if err != nil {
		t.Fatalf("FindPlayerByCode failed: %v", err)
	}
	if found.ID != players[1].ID {
		t.Errorf("Expected player %d, got %d", players[1].ID, found.ID)
	}

	if _, err := store.FindPlayerByCode(game.ID, "999999"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound, got %v", err)
	}

	// Codes are scoped to the game.
	other := &models.Game{Status: models.StatusWaiting}
	store.CreateGame(other)
	if _, err := store.FindPlayerByCode(other.ID, players[1].SecretCode); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound in other game, got %v", err)
	}
}

func TestMemoryStore_DeletePlayersClearsReferences(t *testing.T) {
	store := NewMemoryStore()
	_, players := seedGameWithPlayers(t, store, 3)

	players[0].CurrentTargetID = &players[1].ID
	players[2].CurrentTargetID = &players[1].ID
	if err := store.SavePlayers(players[0], players[2]); err != nil {
		t.Fatalf("SavePlayers failed: %v", err)
	}

	if err := store.DeletePlayers([]uint{players[1].ID}); err != nil {
		t.Fatalf("DeletePlayers failed: %v", err)
	}

	for _, id := range []uint{players[0].ID, players[2].ID} {
		p, err := store.GetPlayer(id)
		if err != nil {
			t.Fatalf("GetPlayer failed: %v", err)
		}
		if p.CurrentTargetID != nil {
			t.Errorf("Player %d still references the deleted player", id)
		}
	}
}

func TestMemoryStore_CountAlive(t *testing.T) {
	store := NewMemoryStore()
	game, players := seedGameWithPlayers(t, store, 3)

	players[0].IsAlive = false
	if err := store.SavePlayers(players[0]); err != nil {
		t.Fatalf("SavePlayers failed: %v", err)
	}

	count, err := store.CountAlive(game.ID)
	if err != nil {
		t.Fatalf("CountAlive failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 alive, got %d", count)
	}
}

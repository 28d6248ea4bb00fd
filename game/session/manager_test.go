package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
)

func createTestConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:              "Test Config",
		Description:       "Test configuration",
		CardsToSpawn:      4,
		CardCheckDelayMs:  10,
		CardUnflipDelayMs: 10,
		Variants:          []string{"apple", "banana", "cherry"},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	t.Run("generated ID", func(t *testing.T) {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4 character ID, got %q", session.ID)
		}
		if session.Engine == nil || session.Events == nil {
			t.Fatal("Expected engine and event log")
		}
		if session.Events.Len() == 0 {
			t.Error("Expected the first deal to be recorded")
		}
		if session.CreatedAt.IsZero() || session.LastAccessed().IsZero() {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("custom ID", func(t *testing.T) {
		session, err := manager.Create("MyGame", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "MyGame" {
			t.Errorf("Expected ID MyGame, got %s", session.ID)
		}
	})

	t.Run("duplicate ID is case-insensitive", func(t *testing.T) {
		if _, err := manager.Create("mygame", config); !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		for _, id := range []string{"../escape", "has space", strings.Repeat("x", 65)} {
			if _, err := manager.Create(id, config); !errors.Is(err, ErrInvalidSessionID) {
				t.Errorf("Create(%q): expected ErrInvalidSessionID, got %v", id, err)
			}
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := createTestConfig()
		bad.CardsToSpawn = 3
		if _, err := manager.Create("bad", bad); err == nil {
			t.Error("Expected error for invalid config")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager(nil)
	created, _ := manager.Create("abcd", createTestConfig())

	for _, id := range []string{"abcd", "ABCD", "AbCd"} {
		session, err := manager.Get(id)
		if err != nil {
			t.Errorf("Get(%s) failed: %v", id, err)
			continue
		}
		if session != created {
			t.Errorf("Get(%s) returned a different session", id)
		}
	}

	if _, err := manager.Get("none"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	first, err := manager.GetOrCreate("game1", config)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := manager.GetOrCreate("game1", config)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first != second {
		t.Error("Expected the existing session to be returned")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()
	config.CardCheckDelayMs = 100
	session, _ := manager.Create("del1", config)

	// Leave a match check pending; deleting must cancel it
	state := session.Engine.GetState()
	byVariant := make(map[int][]string)
	for _, c := range state.Cards {
		byVariant[c.Variant] = append(byVariant[c.Variant], c.ID)
	}
	for _, ids := range byVariant {
		session.Engine.FlipCard(ids[0])
		session.Engine.FlipCard(ids[1])
		break
	}

	if err := manager.Delete("DEL1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := manager.Get("del1"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected session to be gone")
	}

	time.Sleep(200 * time.Millisecond)
	if session.Engine.GetCorrectCount() != 0 {
		t.Error("Pending check ran after the session was deleted")
	}

	if err := manager.Delete("del1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_DeleteFromMemory(t *testing.T) {
	manager := NewManager(nil)
	manager.Create("mem1", createTestConfig())

	if err := manager.DeleteFromMemory("mem1"); err != nil {
		t.Fatalf("DeleteFromMemory failed: %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected 0 sessions, got %d", manager.Count())
	}
	if err := manager.DeleteFromMemory("mem1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager(nil)
	for _, id := range []string{"a1", "b2", "c3"} {
		if _, err := manager.Create(id, createTestConfig()); err != nil {
			t.Fatalf("Failed to create session %s: %v", id, err)
		}
	}

	sessions := manager.List()
	if len(sessions) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(sessions))
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager(nil)
	old, _ := manager.Create("old1", createTestConfig())
	manager.Create("new1", createTestConfig())

	old.SetLastAccessed(time.Now().Add(-2 * time.Hour))

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 session removed, got %d", removed)
	}
	if _, err := manager.Get("old1"); err == nil {
		t.Error("Expected expired session to be removed")
	}
	if _, err := manager.Get("new1"); err != nil {
		t.Error("Expected fresh session to remain")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager(nil)
	session, _ := manager.Create("acc1", createTestConfig())
	before := session.LastAccessed()

	time.Sleep(5 * time.Millisecond)
	if err := manager.UpdateLastAccessed("ACC1"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessed().After(before) {
		t.Error("Expected last accessed time to advance")
	}
	if err := manager.UpdateLastAccessed("none"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("", config)
			if err != nil {
				t.Errorf("Create failed: %v", err)
				return
			}
			if _, err := manager.Get(session.ID); err != nil {
				t.Errorf("Get failed: %v", err)
			}
			manager.List()
		}()
	}
	wg.Wait()

	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager(nil)
	s1, _ := manager.Create("iso1", createTestConfig())
	s2, _ := manager.Create("iso2", createTestConfig())

	card := s1.Engine.GetState().Cards[0]
	if _, err := s1.Engine.FlipCard(card.ID); err != nil {
		t.Fatalf("FlipCard failed: %v", err)
	}

	if s2.Engine.GetState().Guess1 != nil {
		t.Error("Flip in one session leaked into another")
	}
	if s1.Events.Len() == s2.Events.Len() {
		t.Error("Expected separate event logs")
	}
}

func TestValidSessionID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"ab12", true},
		{"my-game_1", true},
		{"", false},
		{"a/b", false},
		{"..", false},
		{"a.json", false},
	}

	for _, test := range tests {
		if got := ValidSessionID(test.id); got != test.valid {
			t.Errorf("ValidSessionID(%q) = %t, want %t", test.id, got, test.valid)
		}
	}
}

package repo

import (
	"context"
	"fmt"
	"sync"

	"goshapes/internal/domain/game"
	apperrors "goshapes/internal/errors"
)

// MemoryGameStore: хранилище в памяти процесса, когда Redis не настроен.
type MemoryGameStore struct {
	mu      sync.RWMutex
	games   map[string]game.Game
	archive map[string]game.Summary
}

func NewMemoryGameStore() *MemoryGameStore {
	return &MemoryGameStore{
		games:   make(map[string]game.Game),
		archive: make(map[string]game.Summary),
	}
}

func (m *MemoryGameStore) SaveGame(_ context.Context, play game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// копия ходов, чтобы вызывающий не менял сохранённую запись
	play.Moves = append([]game.Move(nil), play.Moves...)
	play.Setup = append([]game.Move(nil), play.Setup...)
	m.games[play.ID] = play
	return nil
}

func (m *MemoryGameStore) LoadGame(_ context.Context, id string) (game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	play, ok := m.games[id]
	if !ok {
		return game.Game{}, fmt.Errorf("%w: %s", apperrors.ErrGameNotFound, id)
	}
	play.Moves = append([]game.Move{}, play.Moves...)
	return play, nil
}

func (m *MemoryGameStore) DeleteGame(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.games, id)
	return nil
}

func (m *MemoryGameStore) ArchiveGame(_ context.Context, summary game.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.archive[summary.ID] = summary
	return nil
}

func (m *MemoryGameStore) GetArchivedGame(_ context.Context, id string) (game.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary, ok := m.archive[id]
	if !ok {
		return game.Summary{}, fmt.Errorf("%w: %s", apperrors.ErrGameNotFound, id)
	}
	return summary, nil
}

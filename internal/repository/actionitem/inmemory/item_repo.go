package inmemory

import (
	"context"
	"sync"

	"actionTracker/internal/logger"
	"actionTracker/internal/models/actionitem"
	repo "actionTracker/internal/repository"

	"go.uber.org/zap"
)

type ItemStorage struct {
	storage map[string]*actionitem.Item
	mtx     *sync.RWMutex
	ids     []string
}

func NewItemStorage() *ItemStorage {
	return &ItemStorage{
		storage: make(map[string]*actionitem.Item),
		mtx:     &sync.RWMutex{},
		ids:     []string{},
	}
}

// полная замена после первичной загрузки
func (s *ItemStorage) ReplaceAll(ctx context.Context, items []actionitem.Item) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage = make(map[string]*actionitem.Item, len(items))
	s.ids = make([]string, 0, len(items))

	for _, it := range items {
		copied := it.Clone()
		if _, exists := s.storage[copied.ID]; exists {
			logger.Warn("Repository: Повторный id при загрузке, оставлена последняя запись", zap.String("id", copied.ID))
			s.storage[copied.ID] = &copied
			continue
		}
		s.storage[copied.ID] = &copied
		s.ids = append(s.ids, copied.ID)
	}

	logger.Debug("Repository: Хранилище заменено", zap.Int("count", len(s.ids)))
	return nil
}

// вставка в начало: только что созданная запись видна первой
func (s *ItemStorage) InsertFront(ctx context.Context, it actionitem.Item) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	copied := it.Clone()
	if _, exists := s.storage[copied.ID]; exists {
		s.removeID(copied.ID)
	}
	s.storage[copied.ID] = &copied
	s.ids = append([]string{copied.ID}, s.ids...)
	return nil
}

// Patch shallow-merges the options into the stored record.
func (s *ItemStorage) Patch(ctx context.Context, id string, opts ...actionitem.ItemOption) (actionitem.Item, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok {
		return actionitem.Item{}, repo.ErrNotFound
	}

	actionitem.Apply(existing, opts...)
	return existing.Clone(), nil
}

func (s *ItemStorage) Remove(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.storage, id)
	s.removeID(id)
	return nil
}

func (s *ItemStorage) GetByID(ctx context.Context, id string) (actionitem.Item, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	it, ok := s.storage[id]
	if !ok {
		return actionitem.Item{}, repo.ErrNotFound
	}
	return it.Clone(), nil
}

// List returns copies in store order.
func (s *ItemStorage) List(ctx context.Context) ([]actionitem.Item, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]actionitem.Item, 0, len(s.ids))
	for _, id := range s.ids {
		res = append(res, s.storage[id].Clone())
	}
	return res, nil
}

func (s *ItemStorage) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.ids)
}

func (s *ItemStorage) removeID(id string) {
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			return
		}
	}
}

package settings

import (
	"context"
	"sync"
)

// InMemRepository keeps settings in memory
type InMemRepository struct {
	settings Settings
	mutex    sync.RWMutex
}

// NewInMemRepository creates a repository holding Defaults
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{settings: Defaults()}
}

func (r *InMemRepository) Load(ctx context.Context) (Settings, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.settings, nil
}

func (r *InMemRepository) Save(ctx context.Context, s Settings) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.settings = s
	return nil
}

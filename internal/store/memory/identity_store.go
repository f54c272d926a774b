package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/store"
)

// IdentityStore implements store.IdentityStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type IdentityStore struct {
	mu sync.RWMutex

	identities map[uuid.UUID]*models.Identity // id -> Identity
	byEmail    map[string]*models.Identity    // email -> Identity
}

var _ store.IdentityStore = (*IdentityStore)(nil)

// NewIdentityStore creates a new in-memory identity store.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		identities: make(map[uuid.UUID]*models.Identity),
		byEmail:    make(map[string]*models.Identity),
	}
}

// List returns all identities ordered by creation time.
func (s *IdentityStore) List(ctx context.Context) ([]*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Identity, 0, len(s.identities))
	for _, identity := range s.identities {
		// Clone to avoid external modifications
		clone := *identity
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// Create registers a new identity in memory.
// The password is accepted for interface parity but never retained.
func (s *IdentityStore) Create(ctx context.Context, email, password string, metadata models.UserMetadata) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, store.ErrIdentityAlreadyExists
	}

	identity := &models.Identity{
		ID:        uuid.Must(uuid.NewV7()),
		Email:     email,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}

	s.identities[identity.ID] = identity
	s.byEmail[email] = identity

	clone := *identity
	return &clone, nil
}

// Get retrieves an identity by ID.
func (s *IdentityStore) Get(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, exists := s.identities[id]
	if !exists {
		return nil, store.ErrIdentityNotFound
	}

	clone := *identity
	return &clone, nil
}

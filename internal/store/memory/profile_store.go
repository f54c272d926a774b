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

// ProfileStore implements store.ProfileStore and store.RegistrationStore using
// in-memory storage. This implementation is for testing only - data is lost on restart.
type ProfileStore struct {
	mu sync.RWMutex

	profiles      map[uuid.UUID]*models.Profile             // user_id -> Profile
	companies     map[uuid.UUID]*models.Company             // company_id -> Company
	registrations map[uuid.UUID]*models.RegistrationRequest // company_id -> RegistrationRequest
}

var (
	_ store.ProfileStore      = (*ProfileStore)(nil)
	_ store.RegistrationStore = (*ProfileStore)(nil)
)

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles:      make(map[uuid.UUID]*models.Profile),
		companies:     make(map[uuid.UUID]*models.Company),
		registrations: make(map[uuid.UUID]*models.RegistrationRequest),
	}
}

// GetProfile retrieves the profile of an identity.
func (s *ProfileStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, exists := s.profiles[userID]
	if !exists {
		return nil, store.ErrProfileNotFound
	}

	return cloneProfile(profile), nil
}

// CreateProfile inserts a new profile.
func (s *ProfileStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.UserID]; exists {
		return store.ErrProfileAlreadyExists
	}

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}

	s.profiles[profile.UserID] = cloneProfile(profile)

	return nil
}

// UpdateProfile overwrites the reconciled fields of an existing profile.
func (s *ProfileStore) UpdateProfile(ctx context.Context, userID uuid.UUID, patch models.ProfilePatch) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, exists := s.profiles[userID]
	if !exists {
		return nil, store.ErrProfileNotFound
	}

	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = time.Now()
	}
	patch.Apply(profile)

	return cloneProfile(profile), nil
}

// GetCompany retrieves a company by ID.
func (s *ProfileStore) GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, exists := s.companies[companyID]
	if !exists {
		return nil, store.ErrCompanyNotFound
	}

	clone := *company
	return &clone, nil
}

// GetCompanyByName retrieves a company by exact name.
func (s *ProfileStore) GetCompanyByName(ctx context.Context, name string) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, company := range s.companies {
		if company.Name == name {
			clone := *company
			return &clone, nil
		}
	}

	return nil, store.ErrCompanyNotFound
}

// CreateCompany inserts a new company. Names are unique, matching the
// postgres schema.
func (s *ProfileStore) CreateCompany(ctx context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.companies[company.ID]; exists {
		return store.ErrCompanyAlreadyExists
	}
	for _, existing := range s.companies {
		if existing.Name == company.Name {
			return store.ErrCompanyAlreadyExists
		}
	}

	now := time.Now()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	if company.UpdatedAt.IsZero() {
		company.UpdatedAt = now
	}

	clone := *company
	s.companies[company.ID] = &clone

	return nil
}

// UpdateRegistrationRequest updates the registration request of a company.
func (s *ProfileStore) UpdateRegistrationRequest(ctx context.Context, companyID uuid.UUID, patch models.RegistrationPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, exists := s.registrations[companyID]
	if !exists {
		return store.ErrRegistrationRequestNotFound
	}

	req.Status = patch.Status
	if patch.ApprovedAt != nil {
		approvedAt := *patch.ApprovedAt
		req.ApprovedAt = &approvedAt
	}
	if patch.RejectedAt != nil {
		rejectedAt := *patch.RejectedAt
		req.RejectedAt = &rejectedAt
	}

	return nil
}

// SubmitRegistration inserts a company and its registration request together.
func (s *ProfileStore) SubmitRegistration(ctx context.Context, company *models.Company, req *models.RegistrationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.CompanyID != company.ID {
		return store.ErrCompanyNotFound
	}
	if _, exists := s.companies[company.ID]; exists {
		return store.ErrCompanyAlreadyExists
	}
	for _, existing := range s.companies {
		if existing.Name == company.Name {
			return store.ErrCompanyAlreadyExists
		}
	}

	now := time.Now()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	if company.UpdatedAt.IsZero() {
		company.UpdatedAt = now
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}

	companyClone := *company
	reqClone := *req
	s.companies[company.ID] = &companyClone
	s.registrations[company.ID] = &reqClone

	return nil
}

// CreateRegistrationRequest records a registration request for a company.
func (s *ProfileStore) CreateRegistrationRequest(ctx context.Context, req *models.RegistrationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.companies[req.CompanyID]; !exists {
		return store.ErrCompanyNotFound
	}

	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	clone := *req
	s.registrations[req.CompanyID] = &clone

	return nil
}

// GetRegistrationRequest retrieves the registration request of a company.
func (s *ProfileStore) GetRegistrationRequest(ctx context.Context, companyID uuid.UUID) (*models.RegistrationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, exists := s.registrations[companyID]
	if !exists {
		return nil, store.ErrRegistrationRequestNotFound
	}

	clone := *req
	return &clone, nil
}

// ListRegistrationRequests returns requests in the given status, newest first.
func (s *ProfileStore) ListRegistrationRequests(ctx context.Context, status models.RegistrationStatus) ([]*models.RegistrationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.RegistrationRequest
	for _, req := range s.registrations {
		if status != "" && req.Status != status {
			continue
		}
		clone := *req
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// UpdateCompanyStatus moves a company to a new lifecycle status.
func (s *ProfileStore) UpdateCompanyStatus(ctx context.Context, companyID uuid.UUID, status models.CompanyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, exists := s.companies[companyID]
	if !exists {
		return store.ErrCompanyNotFound
	}

	company.Status = status
	company.UpdatedAt = time.Now()

	return nil
}

func cloneProfile(p *models.Profile) *models.Profile {
	clone := *p
	if p.CompanyID != nil {
		companyID := *p.CompanyID
		clone.CompanyID = &companyID
	}
	return &clone
}

package provision

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/notify"
	"github.com/sitecrew/backoffice/internal/store"
	"github.com/sitecrew/backoffice/internal/store/memory"
)

// countingIdentityStore wraps the memory store, counting calls and
// injecting failures.
type countingIdentityStore struct {
	*memory.IdentityStore

	mu          sync.Mutex
	listCalls   int
	createCalls int

	createErr error
	// beforeCreate runs inside Create before the wrapped store is called.
	beforeCreate func(email string)
}

func newCountingIdentityStore() *countingIdentityStore {
	return &countingIdentityStore{IdentityStore: memory.NewIdentityStore()}
}

func (s *countingIdentityStore) List(ctx context.Context) ([]*models.Identity, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	return s.IdentityStore.List(ctx)
}

func (s *countingIdentityStore) Create(ctx context.Context, email, password string, metadata models.UserMetadata) (*models.Identity, error) {
	s.mu.Lock()
	s.createCalls++
	hook := s.beforeCreate
	err := s.createErr
	s.mu.Unlock()

	if hook != nil {
		hook(email)
	}
	if err != nil {
		return nil, err
	}
	return s.IdentityStore.Create(ctx, email, password, metadata)
}

func (s *countingIdentityStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls + s.createCalls
}

var _ store.IdentityStore = (*countingIdentityStore)(nil)

// countingProfileStore wraps the memory store, counting calls and
// injecting failures.
type countingProfileStore struct {
	*memory.ProfileStore

	mu     sync.Mutex
	counts map[string]int

	createProfileErr      error
	updateProfileErr      error
	updateRegistrationErr error
	getProfileErr         error
	panicOnUpdate         bool
	// beforeCreateProfile runs inside CreateProfile before the wrapped store is called.
	beforeCreateProfile func(p *models.Profile)
	// beforeCreateCompany runs inside CreateCompany before the wrapped store is called.
	beforeCreateCompany func(c *models.Company)
}

func newCountingProfileStore() *countingProfileStore {
	return &countingProfileStore{
		ProfileStore: memory.NewProfileStore(),
		counts:       make(map[string]int),
	}
}

func (s *countingProfileStore) inc(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[op]++
}

func (s *countingProfileStore) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[op]
}

func (s *countingProfileStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.counts {
		n += c
	}
	return n
}

func (s *countingProfileStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.inc("GetProfile")
	if s.getProfileErr != nil {
		return nil, s.getProfileErr
	}
	return s.ProfileStore.GetProfile(ctx, userID)
}

func (s *countingProfileStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	s.inc("CreateProfile")
	if s.beforeCreateProfile != nil {
		s.beforeCreateProfile(profile)
	}
	if s.createProfileErr != nil {
		return s.createProfileErr
	}
	return s.ProfileStore.CreateProfile(ctx, profile)
}

func (s *countingProfileStore) UpdateProfile(ctx context.Context, userID uuid.UUID, patch models.ProfilePatch) (*models.Profile, error) {
	s.inc("UpdateProfile")
	if s.panicOnUpdate {
		panic("profile store exploded")
	}
	if s.updateProfileErr != nil {
		return nil, s.updateProfileErr
	}
	return s.ProfileStore.UpdateProfile(ctx, userID, patch)
}

func (s *countingProfileStore) GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	s.inc("GetCompany")
	return s.ProfileStore.GetCompany(ctx, companyID)
}

func (s *countingProfileStore) GetCompanyByName(ctx context.Context, name string) (*models.Company, error) {
	s.inc("GetCompanyByName")
	return s.ProfileStore.GetCompanyByName(ctx, name)
}

func (s *countingProfileStore) CreateCompany(ctx context.Context, company *models.Company) error {
	s.inc("CreateCompany")
	if s.beforeCreateCompany != nil {
		s.beforeCreateCompany(company)
	}
	return s.ProfileStore.CreateCompany(ctx, company)
}

func (s *countingProfileStore) UpdateRegistrationRequest(ctx context.Context, companyID uuid.UUID, patch models.RegistrationPatch) error {
	s.inc("UpdateRegistrationRequest")
	if s.updateRegistrationErr != nil {
		return s.updateRegistrationErr
	}
	return s.ProfileStore.UpdateRegistrationRequest(ctx, companyID, patch)
}

var _ store.ProfileStore = (*countingProfileStore)(nil)

// recordingNotifier records every welcome email it is asked to send.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.WelcomeEmail
	err  error
}

func (n *recordingNotifier) SendWelcomeEmail(ctx context.Context, email notify.WelcomeEmail) (*notify.Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, email)
	if n.err != nil {
		return nil, n.err
	}
	return &notify.Receipt{MessageID: "msg-" + email.To}, nil
}

func (n *recordingNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

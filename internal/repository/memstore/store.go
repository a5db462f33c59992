// Package memstore implements the repositories in process memory. It backs
// DB_DRIVER=memory and the HTTP tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventsapi/internal/model"
	"eventsapi/internal/repository"
)

// Store keeps every collection in maps guarded by a single RWMutex.
type Store struct {
	mu         sync.RWMutex
	txMu       sync.Mutex
	users      map[string]model.User
	categories map[string]model.Category
	locations  map[string]model.Location
	events     map[string]model.Event
}

var _ repository.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:      make(map[string]model.User),
		categories: make(map[string]model.Category),
		locations:  make(map[string]model.Location),
		events:     make(map[string]model.Event),
	}
}

func (s *Store) Users() repository.UserRepository          { return &userRepository{s} }
func (s *Store) Categories() repository.CategoryRepository { return &categoryRepository{s} }
func (s *Store) Locations() repository.LocationRepository  { return &locationRepository{s} }
func (s *Store) Events() repository.EventRepository        { return &eventRepository{s} }

// WithTransaction serializes transactional sections. Writes made by fn are
// not rolled back on error.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx, s)
}

func (s *Store) Migrate(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

func now() time.Time {
	return time.Now().UTC()
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt, user.UpdatedAt = now(), now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) UpdateAvatar(_ context.Context, id string, avatarURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.AvatarURL = &avatarURL
	user.UpdatedAt = now()
	r.s.users[id] = user
	return nil
}

type categoryRepository struct{ s *Store }

func (r *categoryRepository) nameTaken(name, exceptID string) bool {
	for id, c := range r.s.categories {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}

func (r *categoryRepository) Create(_ context.Context, category *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(category.Name, "") {
		return repository.ErrDuplicate
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	category.CreatedAt, category.UpdatedAt = now(), now()
	r.s.categories[category.ID] = *category
	return nil
}

func (r *categoryRepository) FindByID(_ context.Context, id string) (*model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	category, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &category, nil
}

func (r *categoryRepository) List(_ context.Context) ([]model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	categories := make([]model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return strings.Compare(categories[i].Name, categories[j].Name) < 0
	})
	return categories, nil
}

func (r *categoryRepository) Update(_ context.Context, category *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(category.Name, category.ID) {
		return repository.ErrDuplicate
	}
	category.UpdatedAt = now()
	r.s.categories[category.ID] = *category
	return nil
}

func (r *categoryRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

type locationRepository struct{ s *Store }

func (r *locationRepository) Create(_ context.Context, location *model.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if location.ID == "" {
		location.ID = uuid.NewString()
	}
	location.CreatedAt, location.UpdatedAt = now(), now()
	r.s.locations[location.ID] = *location
	return nil
}

func (r *locationRepository) FindByID(_ context.Context, id string) (*model.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	location, ok := r.s.locations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &location, nil
}

func (r *locationRepository) List(_ context.Context) ([]model.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	locations := make([]model.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		locations = append(locations, l)
	}
	sort.Slice(locations, func(i, j int) bool {
		return strings.Compare(locations[i].Name, locations[j].Name) < 0
	})
	return locations, nil
}

func (r *locationRepository) Update(_ context.Context, location *model.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.locations[location.ID]; !ok {
		return repository.ErrNotFound
	}
	location.UpdatedAt = now()
	r.s.locations[location.ID] = *location
	return nil
}

func (r *locationRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.locations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.locations, id)
	return nil
}

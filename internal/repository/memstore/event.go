package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"eventsapi/internal/model"
	"eventsapi/internal/repository"
)

type eventRepository struct{ s *Store }

func (r *eventRepository) Create(_ context.Context, event *model.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt, event.UpdatedAt = now(), now()
	r.s.events[event.ID] = *event
	return nil
}

func (r *eventRepository) FindByID(_ context.Context, id string) (*model.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	event, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &event, nil
}

// expand resolves references; callers hold at least the read lock.
func (r *eventRepository) expand(e model.Event) model.EventDetails {
	var (
		category *model.Category
		location *model.Location
		creator  *model.User
	)
	if c, ok := r.s.categories[e.CategoryID]; ok {
		category = &c
	}
	if l, ok := r.s.locations[e.LocationID]; ok {
		location = &l
	}
	if u, ok := r.s.users[e.CreatedBy]; ok {
		creator = &u
	}
	return *model.NewEventDetails(&e, category, location, creator)
}

func (r *eventRepository) FindDetails(_ context.Context, id string) (*model.EventDetails, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	event, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	details := r.expand(event)
	return &details, nil
}

func (r *eventRepository) List(_ context.Context, filter repository.EventFilter) ([]model.EventDetails, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]model.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		if filter.Matches(&e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date)
	})

	events := make([]model.EventDetails, 0, len(matched))
	for _, e := range matched {
		events = append(events, r.expand(e))
	}
	return events, nil
}

func (r *eventRepository) Update(_ context.Context, event *model.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.events[event.ID]
	if !ok {
		return repository.ErrNotFound
	}
	event.CreatedBy = existing.CreatedBy
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = now()
	r.s.events[event.ID] = *event
	return nil
}

func (r *eventRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.events, id)
	return nil
}

func (r *eventRepository) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	return r.count(func(e model.Event) bool { return e.CategoryID == categoryID }), nil
}

func (r *eventRepository) CountByLocation(_ context.Context, locationID string) (int64, error) {
	return r.count(func(e model.Event) bool { return e.LocationID == locationID }), nil
}

func (r *eventRepository) count(match func(model.Event) bool) int64 {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, e := range r.s.events {
		if match(e) {
			n++
		}
	}
	return n
}

func (r *eventRepository) DeleteByCategory(_ context.Context, categoryID string) (int64, error) {
	return r.deleteWhere(func(e model.Event) bool { return e.CategoryID == categoryID }), nil
}

func (r *eventRepository) DeleteByLocation(_ context.Context, locationID string) (int64, error) {
	return r.deleteWhere(func(e model.Event) bool { return e.LocationID == locationID }), nil
}

func (r *eventRepository) deleteWhere(match func(model.Event) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, e := range r.s.events {
		if match(e) {
			delete(r.s.events, id)
			n++
		}
	}
	return n
}

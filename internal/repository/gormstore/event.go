package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"eventsapi/internal/model"
	"eventsapi/internal/repository"
)

// eventRecord maps the events table together with its references for Preload.
type eventRecord struct {
	model.Event
	Category *model.Category `gorm:"foreignKey:CategoryID"`
	Location *model.Location `gorm:"foreignKey:LocationID"`
	Creator  *model.User     `gorm:"foreignKey:CreatedBy"`
}

func (eventRecord) TableName() string {
	return "events"
}

func (r eventRecord) details() model.EventDetails {
	return *model.NewEventDetails(&r.Event, r.Category, r.Location, r.Creator)
}

type eventRepository struct {
	db *gorm.DB
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *eventRepository) expanded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&eventRecord{}).
		Preload("Category").
		Preload("Location").
		Preload("Creator")
}

func (r *eventRepository) FindDetails(ctx context.Context, id string) (*model.EventDetails, error) {
	var record eventRecord
	if err := r.expanded(ctx).Where("events.id = ?", id).First(&record).Error; err != nil {
		return nil, translate(err)
	}
	details := record.details()
	return &details, nil
}

func (r *eventRepository) List(ctx context.Context, filter repository.EventFilter) ([]model.EventDetails, error) {
	q := r.expanded(ctx)
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		q = q.Where("(LOWER(events.name) LIKE ? OR LOWER(events.description) LIKE ?)", pattern, pattern)
	}
	if filter.CategoryID != "" {
		q = q.Where("events.category_id = ?", filter.CategoryID)
	}
	if filter.LocationID != "" {
		q = q.Where("events.location_id = ?", filter.LocationID)
	}
	if filter.MinPrice != nil {
		q = q.Where("events.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("events.price <= ?", *filter.MaxPrice)
	}
	if filter.StartDate != nil {
		q = q.Where("events.date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("events.date <= ?", *filter.EndDate)
	}

	var records []eventRecord
	if err := q.Order("events.date ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	events := make([]model.EventDetails, 0, len(records))
	for _, record := range records {
		events = append(events, record.details())
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, event *model.Event) error {
	res := r.db.WithContext(ctx).Model(event).Select("*").Omit("id", "created_by", "created_at").Updates(event)
	return affected(res)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Event{}))
}

func (r *eventRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return r.count(ctx, "category_id = ?", categoryID)
}

func (r *eventRepository) CountByLocation(ctx context.Context, locationID string) (int64, error) {
	return r.count(ctx, "location_id = ?", locationID)
}

func (r *eventRepository) count(ctx context.Context, query string, arg string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Event{}).Where(query, arg).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *eventRepository) DeleteByCategory(ctx context.Context, categoryID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Delete(&model.Event{})
	return res.RowsAffected, res.Error
}

func (r *eventRepository) DeleteByLocation(ctx context.Context, locationID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("location_id = ?", locationID).Delete(&model.Event{})
	return res.RowsAffected, res.Error
}

package model

import "time"

// Event is a dated happening at a location, owned by the user who created it.
type Event struct {
	ID          string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" bson:"name" gorm:"size:100;not null"`
	Description string    `json:"description" bson:"description" gorm:"size:1000;not null"`
	Date        time.Time `json:"date" bson:"date" gorm:"index;not null"`
	Time        string    `json:"time" bson:"time" gorm:"size:5;not null"`
	Price       float64   `json:"price" bson:"price" gorm:"not null"`
	CategoryID  string    `json:"category" bson:"category" gorm:"column:category_id;size:36;index;not null"`
	LocationID  string    `json:"location" bson:"location" gorm:"column:location_id;size:36;index;not null"`
	ImageURL    *string   `json:"imageUrl" bson:"imageUrl" gorm:"column:image_url;size:512"`
	CreatedBy   string    `json:"createdBy" bson:"createdBy" gorm:"column:created_by;size:36;index;not null"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// EventDetails is an event with its references resolved. A reference that
// no longer resolves is left nil and renders as null.
type EventDetails struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
	Time        string      `json:"time"`
	Price       float64     `json:"price"`
	Category    *Category   `json:"category"`
	Location    *Location   `json:"location"`
	ImageURL    *string     `json:"imageUrl"`
	CreatedBy   *PublicUser `json:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// NewEventDetails expands e with the given references, any of which may be nil.
func NewEventDetails(e *Event, category *Category, location *Location, creator *User) *EventDetails {
	return &EventDetails{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Price:       e.Price,
		Category:    category,
		Location:    location,
		ImageURL:    e.ImageURL,
		CreatedBy:   creator.Public(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// EventPatch carries the fields of a partial event update.
type EventPatch struct {
	Name        *string
	Description *string
	Date        *time.Time
	Time        *string
	Price       *float64
	CategoryID  *string
	LocationID  *string
	ImageURL    OptionalString
}

// Apply merges the set fields of p into e.
func (p EventPatch) Apply(e *Event) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.LocationID != nil {
		e.LocationID = *p.LocationID
	}
	if p.ImageURL.Set {
		e.ImageURL = p.ImageURL.Value
	}
}

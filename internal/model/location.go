package model

import "time"

// Location is a geo-located venue where events take place.
type Location struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" bson:"name" gorm:"size:100;not null"`
	Address   string    `json:"address" bson:"address" gorm:"size:200"`
	Latitude  float64   `json:"latitude" bson:"latitude" gorm:"not null"`
	Longitude float64   `json:"longitude" bson:"longitude" gorm:"not null"`
	City      string    `json:"city" bson:"city" gorm:"size:50"`
	State     string    `json:"state" bson:"state" gorm:"size:50"`
	Country   string    `json:"country" bson:"country" gorm:"size:50"`
	ZipCode   string    `json:"zipCode" bson:"zipCode" gorm:"column:zip_code;size:20"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// LocationPatch carries the fields of a partial location update.
type LocationPatch struct {
	Name      *string
	Address   *string
	Latitude  *float64
	Longitude *float64
	City      *string
	State     *string
	Country   *string
	ZipCode   *string
}

// Apply merges the non-nil fields of p into l.
func (p LocationPatch) Apply(l *Location) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Address != nil {
		l.Address = *p.Address
	}
	if p.Latitude != nil {
		l.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		l.Longitude = *p.Longitude
	}
	if p.City != nil {
		l.City = *p.City
	}
	if p.State != nil {
		l.State = *p.State
	}
	if p.Country != nil {
		l.Country = *p.Country
	}
	if p.ZipCode != nil {
		l.ZipCode = *p.ZipCode
	}
}

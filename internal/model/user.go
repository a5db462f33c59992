package model

import "time"

// User represents an account that can authenticate against the API.
type User struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" bson:"name" gorm:"size:255;not null"`
	Email     string    `json:"email" bson:"email" gorm:"uniqueIndex;size:255;not null"`
	Password  string    `json:"-" bson:"password" gorm:"size:255;not null"` // bcrypt hash
	AvatarURL *string   `json:"avatarUrl" bson:"avatarUrl" gorm:"column:avatar_url;size:512"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PublicUser is the projection of a user that is safe to return to clients.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the client-facing projection of u.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

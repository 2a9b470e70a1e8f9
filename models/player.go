package models

import "time"

type Player struct {
	ID          int       `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	AvatarKey   *string   `json:"-" db:"avatar_key"`
	AvatarURL   *string   `json:"avatar_url,omitempty" db:"-"`
}

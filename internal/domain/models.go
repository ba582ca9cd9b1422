package domain

import "time"

// UnknownUserName is shown when an id has no display name in the identity collaborator.
const UnknownUserName = "unknown user"

type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, DisplayName: u.DisplayName}
}

package mapping

import (
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// UserDirectory is a fixed set of users, usually loaded from settings.
type UserDirectory map[uuid.UUID]simplecms.User

// NewUserDirectory indexes users by id.
func NewUserDirectory(users ...simplecms.User) UserDirectory {
	d := make(UserDirectory, len(users))
	for _, u := range users {
		d[u.ID] = u
	}
	return d
}

// User implements simplecms.UserResolver.
func (d UserDirectory) User(id uuid.UUID) (*simplecms.User, bool) {
	u, ok := d[id]
	if !ok {
		return nil, false
	}
	return &u, true
}

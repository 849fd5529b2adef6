package user

import "time"

// Apply returns a copy of u with the non-nil fields of req set.
func (u User) Apply(req EditUserRequest) User {
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.FirstName != nil {
		v := *req.FirstName
		u.FirstName = &v
	}
	if req.LastName != nil {
		v := *req.LastName
		u.LastName = &v
	}
	u.UpdatedAt = time.Now().UTC()

	return u
}

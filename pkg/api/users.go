package api

// CreateUserRequest is the body of POST /users/
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// UpdateUserRequest is the body of PATCH /users/{id}.
// Absent fields are left unchanged.
type UpdateUserRequest struct {
	Email    Optional[string] `json:"email"`
	FullName Optional[string] `json:"full_name"`
	Password Optional[string] `json:"password"`
}

// User is the public representation of an account. It never carries the password hash.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	ID       int64  `json:"id"`
	Active   bool   `json:"active"`
}

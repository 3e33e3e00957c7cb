package users

import "time"

// User is the public shape returned by every endpoint. The password
// hash never leaves the service layer.
type User struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Bio        string    `json:"bio"`
	ProfilePic string    `json:"profilePic"`
	Followers  []string  `json:"followers"`
	Following  []string  `json:"following"`
	CreatedAt  time.Time `json:"createdAt"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateRequest carries partial profile updates. Empty fields keep the
// stored value, including empty strings sent explicitly; the API
// cannot tell "absent" from "empty" and treats both as "keep".
type UpdateRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
}

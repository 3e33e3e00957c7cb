package posts

import "time"

// MaxTextChars is the hard cap on post text, matched by the client
// composer's live remaining-count.
const MaxTextChars = 500

type Post struct {
	ID        string    `json:"_id"`
	PostedBy  string    `json:"postedBy"`
	Text      string    `json:"text"`
	Img       string    `json:"img,omitempty"`
	Replies   []Reply   `json:"replies"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reply carries denormalized copies of the author's username and
// profile picture, captured at write time and reconciled whenever the
// author's profile changes.
type Reply struct {
	ID             string    `json:"_id"`
	UserID         string    `json:"userId"`
	Username       string    `json:"username"`
	UserProfilePic string    `json:"userProfilePic"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

type CreateRequest struct {
	PostedBy string `json:"postedBy"`
	Text     string `json:"text"`
	Img      string `json:"img"`
}

type ReplyRequest struct {
	Text string `json:"text"`
}

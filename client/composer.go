package client

import (
	"context"
	"sync"
)

// MaxPostChars matches the server-side cap; the composer truncates
// instead of rejecting so the remaining-count never goes negative.
const MaxPostChars = 500

// Composer drives the post-creation view: bounded text entry, optional
// image, and an optimistic prepend into the viewed feed. The prepend
// only happens when the viewed profile belongs to the posting user, so
// another user's feed view is never polluted with the actor's new post.
type Composer struct {
	api            *Client
	feed           *FeedStore
	viewedUsername string

	mu   sync.Mutex
	text string
	img  string
}

func NewComposer(api *Client, feed *FeedStore, viewedUsername string) *Composer {
	return &Composer{api: api, feed: feed, viewedUsername: viewedUsername}
}

func (cp *Composer) SetText(s string) {
	runes := []rune(s)
	if len(runes) > MaxPostChars {
		runes = runes[:MaxPostChars]
	}
	cp.mu.Lock()
	cp.text = string(runes)
	cp.mu.Unlock()
}

func (cp *Composer) Text() string {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.text
}

func (cp *Composer) Remaining() int {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return MaxPostChars - len([]rune(cp.text))
}

func (cp *Composer) SetImage(data string) {
	cp.mu.Lock()
	cp.img = data
	cp.mu.Unlock()
}

// Submit creates the post as user and mirrors it into the feed store
// when the viewed profile is the user's own. The draft resets only
// after a successful round trip.
func (cp *Composer) Submit(ctx context.Context, user User) (Post, error) {
	cp.mu.Lock()
	text, img := cp.text, cp.img
	cp.mu.Unlock()

	post, err := cp.api.CreatePost(ctx, user.ID, text, img)
	if err != nil {
		return Post{}, err
	}

	if cp.viewedUsername == user.Username {
		cp.feed.Prepend(post)
	}

	cp.mu.Lock()
	cp.text, cp.img = "", ""
	cp.mu.Unlock()
	return post, nil
}

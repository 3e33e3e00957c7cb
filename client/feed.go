package client

import "sync"

// FeedStore holds the post list backing one profile view. State flows
// one way: mutations go through Replace/Prepend and subscribers get a
// snapshot after each change. Each view owns its own store.
type FeedStore struct {
	mu    sync.RWMutex
	posts []Post
	subs  map[int]func([]Post)
	next  int
}

func NewFeedStore() *FeedStore {
	return &FeedStore{subs: map[int]func([]Post){}}
}

func (f *FeedStore) Posts() []Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Post(nil), f.posts...)
}

func (f *FeedStore) Replace(posts []Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append([]Post(nil), posts...)
	f.notifyLocked()
}

func (f *FeedStore) Prepend(post Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append([]Post{post}, f.posts...)
	f.notifyLocked()
}

// Subscribe registers fn for snapshots on every change and returns an
// unsubscribe func.
func (f *FeedStore) Subscribe(fn func([]Post)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *FeedStore) notifyLocked() {
	snapshot := append([]Post(nil), f.posts...)
	for _, fn := range f.subs {
		fn(snapshot)
	}
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFeedStoreReplaceAndPrepend(t *testing.T) {
	feed := NewFeedStore()
	feed.Replace([]Post{{ID: "p1"}, {ID: "p2"}})
	feed.Prepend(Post{ID: "p3"})

	posts := feed.Posts()
	if len(posts) != 3 || posts[0].ID != "p3" || posts[1].ID != "p1" {
		t.Fatalf("unexpected order: %+v", posts)
	}
}

func TestFeedStoreSnapshotIsolation(t *testing.T) {
	feed := NewFeedStore()
	feed.Replace([]Post{{ID: "p1"}})

	posts := feed.Posts()
	posts[0].ID = "mutated"
	if feed.Posts()[0].ID != "p1" {
		t.Fatalf("snapshot mutation leaked into store")
	}
}

func TestFeedStoreSubscribe(t *testing.T) {
	feed := NewFeedStore()

	var got [][]Post
	unsubscribe := feed.Subscribe(func(posts []Post) {
		got = append(got, posts)
	})

	feed.Replace([]Post{{ID: "p1"}})
	feed.Prepend(Post{ID: "p2"})
	unsubscribe()
	feed.Prepend(Post{ID: "p3"})

	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if len(got[1]) != 2 || got[1][0].ID != "p2" {
		t.Fatalf("unexpected snapshot: %+v", got[1])
	}
}

func TestComposerTruncatesText(t *testing.T) {
	cp := NewComposer(nil, NewFeedStore(), "ann")
	cp.SetText(strings.Repeat("é", MaxPostChars+50))

	if n := len([]rune(cp.Text())); n != MaxPostChars {
		t.Fatalf("expected %d runes, got %d", MaxPostChars, n)
	}
	if cp.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", cp.Remaining())
	}
}

func TestComposerRemaining(t *testing.T) {
	cp := NewComposer(nil, NewFeedStore(), "ann")
	cp.SetText("hello")
	if cp.Remaining() != MaxPostChars-5 {
		t.Fatalf("unexpected remaining: %d", cp.Remaining())
	}
}

func newComposerServer(t *testing.T) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/posts/create", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(Post{ID: "p9", PostedBy: req["postedBy"], Text: req["text"], Replies: []Reply{}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestComposerSubmitPrependsOwnFeed(t *testing.T) {
	api := newComposerServer(t)
	feed := NewFeedStore()
	feed.Replace([]Post{{ID: "p1"}})

	cp := NewComposer(api, feed, "ann")
	cp.SetText("fresh")

	post, err := cp.Submit(context.Background(), User{ID: "u1", Username: "ann"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if post.ID != "p9" {
		t.Fatalf("unexpected post: %+v", post)
	}

	posts := feed.Posts()
	if len(posts) != 2 || posts[0].ID != "p9" {
		t.Fatalf("expected new post prepended: %+v", posts)
	}
	if cp.Text() != "" {
		t.Fatalf("expected draft reset after submit")
	}
}

func TestComposerSubmitSkipsOtherUsersFeed(t *testing.T) {
	api := newComposerServer(t)
	feed := NewFeedStore()
	feed.Replace([]Post{{ID: "p1"}})

	cp := NewComposer(api, feed, "bob")
	cp.SetText("fresh")

	if _, err := cp.Submit(context.Background(), User{ID: "u1", Username: "ann"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	posts := feed.Posts()
	if len(posts) != 1 || posts[0].ID != "p1" {
		t.Fatalf("expected viewed feed untouched: %+v", posts)
	}
}

func TestComposerSubmitKeepsDraftOnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/posts/create", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Text field is required"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	api, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	cp := NewComposer(api, NewFeedStore(), "ann")
	cp.SetText("draft")

	if _, err := cp.Submit(context.Background(), User{ID: "u1", Username: "ann"}); err == nil {
		t.Fatalf("expected error")
	}
	if cp.Text() != "draft" {
		t.Fatalf("expected draft preserved on error, got %q", cp.Text())
	}
}

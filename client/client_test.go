package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/signup", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["username"] == "taken" {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "User already exists"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "session-token", Path: "/"})
		_ = json.NewEncoder(w).Encode(User{ID: "u1", Name: req["name"], Username: req["username"], Email: req["email"]})
	})
	mux.HandleFunc("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "session-token", Path: "/"})
		_ = json.NewEncoder(w).Encode(User{ID: "u1", Username: "ann"})
	})
	mux.HandleFunc("POST /api/users/logout", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "User logged out successfully"})
	})
	mux.HandleFunc("GET /api/users/profile/ann", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(User{ID: "u1", Username: "ann", Followers: []string{"u2"}, Following: []string{}})
	})
	mux.HandleFunc("POST /api/users/follow/u2", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "User followed successfully"})
	})
	mux.HandleFunc("POST /api/posts/create", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("jwt"); err != nil || ck.Value == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(Post{ID: "p1", PostedBy: req["postedBy"], Text: req["text"], Replies: []Reply{}})
	})
	mux.HandleFunc("GET /api/posts/user/ann", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Post{{ID: "p1", PostedBy: "u1", Text: "hello", Replies: []Reply{}}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return srv, c
}

func TestSignupStoresSessionCookie(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	user, err := c.Signup(ctx, "Ann", "ann@x.com", "ann", "pw1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.ID != "u1" || user.Username != "ann" {
		t.Fatalf("unexpected user: %+v", user)
	}

	// The jar must replay the session cookie on the next call.
	post, err := c.CreatePost(ctx, "u1", "hello", "")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.ID != "p1" {
		t.Fatalf("unexpected post: %+v", post)
	}
}

func TestSignupConflictSurfacesAPIError(t *testing.T) {
	_, c := newTestServer(t)

	_, err := c.Signup(context.Background(), "Ann", "ann@x.com", "taken", "pw1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "User already exists" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestCreatePostWithoutSession(t *testing.T) {
	_, c := newTestServer(t)

	_, err := c.CreatePost(context.Background(), "u1", "hello", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", apiErr.Status)
	}
}

func TestGetProfileAndFollow(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	user, err := c.GetProfile(ctx, "ann")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(user.Followers) != 1 || user.Followers[0] != "u2" {
		t.Fatalf("unexpected followers: %+v", user.Followers)
	}

	msg, err := c.FollowUnfollow(ctx, "u2")
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if msg != "User followed successfully" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestUserPosts(t *testing.T) {
	_, c := newTestServer(t)

	feed, err := c.UserPosts(context.Background(), "ann")
	if err != nil {
		t.Fatalf("user posts: %v", err)
	}
	if len(feed) != 1 || feed[0].Text != "hello" {
		t.Fatalf("unexpected feed: %+v", feed)
	}
}

func TestLogout(t *testing.T) {
	_, c := newTestServer(t)
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
}

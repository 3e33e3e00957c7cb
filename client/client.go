// Package client is a Go SDK for the Threads API. It keeps the session
// cookie in a jar, mirrors the wire shapes of the backend, and provides
// the view-scoped feed store and post composer the UI builds on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

type User struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Bio        string   `json:"bio"`
	ProfilePic string   `json:"profilePic"`
	Followers  []string `json:"followers"`
	Following  []string `json:"following"`
}

type Reply struct {
	ID             string `json:"_id"`
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	UserProfilePic string `json:"userProfilePic"`
	Text           string `json:"text"`
}

type Post struct {
	ID       string  `json:"_id"`
	PostedBy string  `json:"postedBy"`
	Text     string  `json:"text"`
	Img      string  `json:"img,omitempty"`
	Replies  []Reply `json:"replies"`
}

type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}, nil
}

func (c *Client) Signup(ctx context.Context, name, email, username, password string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/api/users/signup", map[string]string{
		"name": name, "email": email, "username": username, "password": password,
	}, &user)
	return user, err
}

func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/api/users/login", map[string]string{
		"username": username, "password": password,
	}, &user)
	return user, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/users/logout", nil, nil)
}

func (c *Client) GetProfile(ctx context.Context, query string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/api/users/profile/"+query, nil, &user)
	return user, err
}

func (c *Client) FollowUnfollow(ctx context.Context, userID string) (string, error) {
	var body struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/api/users/follow/"+userID, nil, &body)
	return body.Message, err
}

func (c *Client) CreatePost(ctx context.Context, postedBy, text, img string) (Post, error) {
	var post Post
	err := c.do(ctx, http.MethodPost, "/api/posts/create", map[string]string{
		"postedBy": postedBy, "text": text, "img": img,
	}, &post)
	return post, err
}

func (c *Client) UserPosts(ctx context.Context, username string) ([]Post, error) {
	var feed []Post
	err := c.do(ctx, http.MethodGet, "/api/posts/user/"+username, nil, &feed)
	return feed, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiBody)
		if apiBody.Error == "" {
			apiBody.Error = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: apiBody.Error}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

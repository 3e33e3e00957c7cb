package posts

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Rohitm121508/Thread-App/internal/apperr"
	"github.com/Rohitm121508/Thread-App/internal/db"
	"github.com/Rohitm121508/Thread-App/internal/media"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db    db.Querier
	media media.Store
}

func NewService(q db.Querier, mediaStore media.Store) *Service {
	return &Service{db: q, media: mediaStore}
}

func (s *Service) Create(ctx context.Context, actorID string, req CreateRequest) (Post, error) {
	if req.PostedBy == "" || req.Text == "" {
		return Post{}, apperr.Validation("postedBy and text fields are required")
	}
	if req.PostedBy != actorID {
		return Post{}, apperr.Auth("Unauthorized to create post")
	}
	if len([]rune(req.Text)) > MaxTextChars {
		return Post{}, apperr.Validation(fmt.Sprintf("Text must be less than %d characters", MaxTextChars))
	}

	var exists bool
	row := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, req.PostedBy)
	if err := row.Scan(&exists); err != nil {
		return Post{}, err
	}
	if !exists {
		return Post{}, apperr.NotFound("User not found")
	}

	img := req.Img
	if img != "" && s.media != nil {
		uploaded, err := s.media.Upload(ctx, img)
		if err != nil {
			return Post{}, apperr.Validation(err.Error())
		}
		img = uploaded
	}

	post := Post{
		ID:       uuid.NewString(),
		PostedBy: req.PostedBy,
		Text:     req.Text,
		Img:      img,
		Replies:  []Reply{},
	}

	row = s.db.QueryRow(ctx, `
		INSERT INTO posts (id, posted_by, text, img)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, post.ID, post.PostedBy, post.Text, post.Img)
	if err := row.Scan(&post.CreatedAt); err != nil {
		return Post{}, err
	}
	return post, nil
}

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, posted_by, text, img, created_at
		FROM posts WHERE id=$1
	`, id)

	var post Post
	err := row.Scan(&post.ID, &post.PostedBy, &post.Text, &post.Img, &post.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, apperr.NotFound("Post not found")
	}
	if err != nil {
		return Post{}, err
	}

	replies, err := s.loadReplies(ctx, []string{post.ID})
	if err != nil {
		return Post{}, err
	}
	post.Replies = replies[post.ID]
	if post.Replies == nil {
		post.Replies = []Reply{}
	}
	return post, nil
}

// GetUserPosts returns the newest-first posts backing a profile feed.
func (s *Service) GetUserPosts(ctx context.Context, username string) ([]Post, error) {
	var userID string
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE username=$1`, username).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, posted_by, text, img, created_at
		FROM posts WHERE posted_by=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	var ids []string
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.PostedBy, &p.Text, &p.Img, &p.CreatedAt); err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	replies, err := s.loadReplies(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Replies = replies[posts[i].ID]
		if posts[i].Replies == nil {
			posts[i].Replies = []Reply{}
		}
	}
	return posts, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	var postedBy, img string
	err := s.db.QueryRow(ctx, `SELECT posted_by, img FROM posts WHERE id=$1`, id).Scan(&postedBy, &img)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Post not found")
	}
	if err != nil {
		return err
	}
	if postedBy != actorID {
		return apperr.Auth("Unauthorized to delete post")
	}

	if img != "" && s.media != nil {
		if err := s.media.Delete(ctx, img); err != nil {
			log.Printf("delete post image: %v", err)
		}
	}

	_, err = s.db.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
	return err
}

// Reply appends a reply carrying the author's current username and
// profile picture.
func (s *Service) Reply(ctx context.Context, userID, postID, text string) (Reply, error) {
	if text == "" {
		return Reply{}, apperr.Validation("Text field is required")
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id=$1)`, postID).Scan(&exists); err != nil {
		return Reply{}, err
	}
	if !exists {
		return Reply{}, apperr.NotFound("Post not found")
	}

	reply := Reply{
		ID:     uuid.NewString(),
		UserID: userID,
		Text:   text,
	}
	err := s.db.QueryRow(ctx, `
		SELECT username, profile_pic FROM users WHERE id=$1
	`, userID).Scan(&reply.Username, &reply.UserProfilePic)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reply{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return Reply{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO replies (id, post_id, user_id, username, user_profile_pic, text)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, reply.ID, postID, reply.UserID, reply.Username, reply.UserProfilePic, reply.Text)
	if err := row.Scan(&reply.CreatedAt); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

func (s *Service) LikeUnlike(ctx context.Context, userID, postID string) (string, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id=$1)`, postID).Scan(&exists); err != nil {
		return "", err
	}
	if !exists {
		return "", apperr.NotFound("Post not found")
	}

	var liked bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id=$1 AND user_id=$2)
	`, postID, userID).Scan(&liked); err != nil {
		return "", err
	}

	if liked {
		if _, err := s.db.Exec(ctx, `
			DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2
		`, postID, userID); err != nil {
			return "", err
		}
		return "Post unliked successfully", nil
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id) VALUES ($1,$2)
	`, postID, userID); err != nil {
		return "", err
	}
	return "Post liked successfully", nil
}

// SyncReplyAuthor rewrites the denormalized author fields on every
// reply by userID. Safe to run repeatedly with the same values.
func (s *Service) SyncReplyAuthor(ctx context.Context, userID, username, profilePic string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE replies SET username=$2, user_profile_pic=$3 WHERE user_id=$1
	`, userID, username, profilePic)
	return err
}

func (s *Service) loadReplies(ctx context.Context, postIDs []string) (map[string][]Reply, error) {
	if len(postIDs) == 0 {
		return map[string][]Reply{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, user_id, username, user_profile_pic, text, created_at
		FROM replies WHERE post_id = ANY($1)
		ORDER BY created_at
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := map[string][]Reply{}
	for rows.Next() {
		var r Reply
		var postID string
		if err := rows.Scan(&r.ID, &postID, &r.UserID, &r.Username, &r.UserProfilePic, &r.Text, &r.CreatedAt); err != nil {
			return nil, err
		}
		replies[postID] = append(replies[postID], r)
	}
	return replies, rows.Err()
}

package users

import (
	"context"
	"errors"
	"log"

	"github.com/Rohitm121508/Thread-App/internal/apperr"
	"github.com/Rohitm121508/Thread-App/internal/db"
	"github.com/Rohitm121508/Thread-App/internal/media"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// ProfileSyncer propagates a changed username/profile picture into the
// denormalized reply rows authored by the user. Propagation is
// fire-and-forget relative to the profile-update response.
type ProfileSyncer interface {
	SyncProfile(ctx context.Context, userID, username, profilePic string) error
}

type Service struct {
	db     db.Querier
	media  media.Store
	syncer ProfileSyncer
}

func NewService(q db.Querier, mediaStore media.Store, syncer ProfileSyncer) *Service {
	return &Service{db: q, media: mediaStore, syncer: syncer}
}

// Compared against when a login targets an unknown username, so both
// failure modes cost a bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("invalid-password-placeholder"), bcrypt.DefaultCost)

const uniqueViolation = "23505"

func (s *Service) Signup(ctx context.Context, req SignupRequest) (User, error) {
	if req.Name == "" || req.Email == "" || req.Username == "" || req.Password == "" {
		return User{}, apperr.Validation("name, email, username and password are required")
	}

	var exists bool
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE username=$1 OR email=$2)
	`, req.Username, req.Email)
	if err := row.Scan(&exists); err != nil {
		return User{}, err
	}
	if exists {
		return User{}, apperr.Conflict("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Username:  req.Username,
		Email:     req.Email,
		Followers: []string{},
		Following: []string{},
	}

	row = s.db.QueryRow(ctx, `
		INSERT INTO users (id, name, username, email, password_hash)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, user.ID, user.Name, user.Username, user.Email, string(hash))
	if err := row.Scan(&user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return User{}, apperr.Conflict("User already exists")
		}
		return User{}, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, username, email, password_hash, bio, profile_pic, created_at
		FROM users WHERE username=$1
	`, req.Username)

	var user User
	var hash string
	err := row.Scan(&user.ID, &user.Name, &user.Username, &user.Email, &hash, &user.Bio, &user.ProfilePic, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Burn a comparison so unknown usernames cost the same as bad
		// passwords.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return User{}, apperr.Auth("Invalid username or password")
	}
	if err != nil {
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return User{}, apperr.Auth("Invalid username or password")
	}

	user.Followers, user.Following, err = s.loadFollows(ctx, user.ID)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// FollowUnfollow toggles the relation between actor and target inside
// one transaction, so both follow sets always move together. Calling
// it twice restores the original state.
func (s *Service) FollowUnfollow(ctx context.Context, actorID, targetID string) (string, error) {
	if actorID == targetID {
		return "", apperr.Validation("You cannot follow/unfollow yourself")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var n int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE id=$1 OR id=$2
	`, actorID, targetID).Scan(&n); err != nil {
		return "", err
	}
	if n != 2 {
		return "", apperr.NotFound("User not found")
	}

	var following bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM user_follows WHERE follower_id=$1 AND following_id=$2)
	`, actorID, targetID).Scan(&following); err != nil {
		return "", err
	}

	msg := "User followed successfully"
	if following {
		msg = "User unfollowed successfully"
		_, err = tx.Exec(ctx, `
			DELETE FROM user_follows WHERE follower_id=$1 AND following_id=$2
		`, actorID, targetID)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO user_follows (follower_id, following_id) VALUES ($1,$2)
		`, actorID, targetID)
	}
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return msg, nil
}

// Update applies a partial profile update. Empty request fields keep
// the stored value. A new profile picture is uploaded first and the
// old object is deleted only after the row persists, so neither a
// failed upload nor a failed UPDATE leaves the profile pointing at a
// missing object.
func (s *Service) Update(ctx context.Context, actorID, targetID string, req UpdateRequest) (User, error) {
	if actorID != targetID {
		return User{}, apperr.Validation("You cannot update other user's profile")
	}

	row := s.db.QueryRow(ctx, `
		SELECT name, username, email, password_hash, bio, profile_pic, created_at
		FROM users WHERE id=$1
	`, targetID)

	cur := User{ID: targetID}
	var hash string
	err := row.Scan(&cur.Name, &cur.Username, &cur.Email, &hash, &cur.Bio, &cur.ProfilePic, &cur.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return User{}, err
	}

	if req.Password != "" {
		newHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		hash = string(newHash)
	}

	profilePic := cur.ProfilePic
	if req.ProfilePic != "" {
		profilePic, err = s.uploadPicture(ctx, req.ProfilePic)
		if err != nil {
			return User{}, err
		}
	}

	next := User{
		ID:         targetID,
		Name:       orKeep(req.Name, cur.Name),
		Username:   orKeep(req.Username, cur.Username),
		Email:      orKeep(req.Email, cur.Email),
		Bio:        orKeep(req.Bio, cur.Bio),
		ProfilePic: profilePic,
		CreatedAt:  cur.CreatedAt,
	}

	_, err = s.db.Exec(ctx, `
		UPDATE users
		SET name=$2, username=$3, email=$4, password_hash=$5, bio=$6, profile_pic=$7, updated_at=now()
		WHERE id=$1
	`, next.ID, next.Name, next.Username, next.Email, hash, next.Bio, next.ProfilePic)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, apperr.Conflict("User already exists")
		}
		return User{}, err
	}

	// Only now is the old object unreferenced.
	if s.media != nil && profilePic != cur.ProfilePic && cur.ProfilePic != "" {
		if err := s.media.Delete(ctx, cur.ProfilePic); err != nil {
			log.Printf("delete old profile picture: %v", err)
		}
	}

	if err := s.syncer.SyncProfile(ctx, next.ID, next.Username, next.ProfilePic); err != nil {
		log.Printf("reply propagation enqueue failed for user %s: %v", next.ID, err)
	}

	next.Followers, next.Following, err = s.loadFollows(ctx, next.ID)
	if err != nil {
		return User{}, err
	}
	return next, nil
}

func (s *Service) uploadPicture(ctx context.Context, data string) (string, error) {
	if s.media == nil {
		return data, nil
	}
	uploaded, err := s.media.Upload(ctx, data)
	if err != nil {
		return "", apperr.Validation(err.Error())
	}
	return uploaded, nil
}

// GetProfile resolves query as a user id when it parses as a UUID and
// as a username otherwise.
func (s *Service) GetProfile(ctx context.Context, query string) (User, error) {
	where := "username=$1"
	if _, err := uuid.Parse(query); err == nil {
		where = "id=$1"
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, name, username, email, bio, profile_pic, created_at
		FROM users WHERE `+where, query)

	var user User
	err := row.Scan(&user.ID, &user.Name, &user.Username, &user.Email, &user.Bio, &user.ProfilePic, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return User{}, err
	}

	user.Followers, user.Following, err = s.loadFollows(ctx, user.ID)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// loadFollows derives both follow sets from the user_follows relation
// in a single query.
func (s *Service) loadFollows(ctx context.Context, userID string) (followers, following []string, err error) {
	followers = []string{}
	following = []string{}

	rows, err := s.db.Query(ctx, `
		SELECT follower_id, following_id
		FROM user_follows
		WHERE follower_id=$1 OR following_id=$1
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var followerID, followingID string
		if err := rows.Scan(&followerID, &followingID); err != nil {
			return nil, nil, err
		}
		if followerID == userID {
			following = append(following, followingID)
		} else {
			followers = append(followers, followerID)
		}
	}
	return followers, following, rows.Err()
}

func orKeep(next, prev string) string {
	if next == "" {
		return prev
	}
	return next
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

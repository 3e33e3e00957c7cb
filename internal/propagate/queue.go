// Package propagate delivers denormalized-field corrections to reply
// rows after a profile change. Tasks ride a redis list so the profile
// update response never waits on the batch write; delivery is
// at-least-once and the applied update is idempotent.
package propagate

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const queueKey = "replies:profile-sync"

type Task struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
}

// Applier performs the idempotent batch write for one task.
type Applier interface {
	SyncReplyAuthor(ctx context.Context, userID, username, profilePic string) error
}

type Queue struct {
	redis   *redis.Client
	applier Applier
	done    chan struct{}
}

// NewQueue starts a worker goroutine when a redis client is available.
// Without redis the queue degrades to synchronous application, so
// propagation still happens in dev setups.
func NewQueue(redisClient *redis.Client, applier Applier) *Queue {
	q := &Queue{
		redis:   redisClient,
		applier: applier,
		done:    make(chan struct{}),
	}
	if redisClient != nil {
		go q.run(context.Background())
	}
	return q
}

func (q *Queue) SyncProfile(ctx context.Context, userID, username, profilePic string) error {
	task := Task{UserID: userID, Username: username, ProfilePic: profilePic}
	if q.redis == nil {
		return q.applier.SyncReplyAuthor(ctx, task.UserID, task.Username, task.ProfilePic)
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.redis.LPush(ctx, queueKey, payload).Err()
}

// Close stops the worker goroutine.
func (q *Queue) Close() {
	close(q.done)
}

func (q *Queue) run(ctx context.Context) {
	for {
		select {
		case <-q.done:
			return
		default:
		}

		res, err := q.redis.BRPop(ctx, time.Second, queueKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			log.Printf("reply sync queue pop error: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if len(res) != 2 {
			continue
		}
		q.apply(ctx, []byte(res[1]))
	}
}

func (q *Queue) apply(ctx context.Context, payload []byte) {
	var task Task
	if err := json.Unmarshal(payload, &task); err != nil {
		log.Printf("reply sync task decode error: %v", err)
		return
	}
	if err := q.applier.SyncReplyAuthor(ctx, task.UserID, task.Username, task.ProfilePic); err != nil {
		log.Printf("reply sync for user %s failed, requeueing: %v", task.UserID, err)
		if pushErr := q.redis.LPush(ctx, queueKey, payload).Err(); pushErr != nil {
			log.Printf("reply sync requeue error: %v", pushErr)
		}
		time.Sleep(time.Second)
	}
}

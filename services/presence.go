package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"supchat-server/models"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// PresenceTTL is how long a user stays "online" without a heartbeat. The
// websocket layer refreshes the key on every pong, so a killed client
// decays to offline once the key expires instead of staying online forever.
const PresenceTTL = 90 * time.Second

// PresenceService tracks per-user liveness in Redis and mirrors the
// coarse online/offline transition into the users.status column. Status
// changes are broadcast to every connected socket — intentionally global,
// acceptable at this scale.
type PresenceService struct {
	db          *gorm.DB
	redis       *redis.Client
	broadcaster Broadcaster
}

func NewPresenceService(db *gorm.DB, rdb *redis.Client, b Broadcaster) *PresenceService {
	return &PresenceService{db: db, redis: rdb, broadcaster: b}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:user:%d", userID)
}

// SetOnline marks the user online on socket connect.
func (s *PresenceService) SetOnline(ctx context.Context, userID uint) {
	if err := s.redis.Set(ctx, presenceKey(userID), "online", PresenceTTL).Err(); err != nil {
		log.Printf("⚠️  presence: set online for user %d: %v", userID, err)
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Update("status", "online").Error; err != nil {
		log.Printf("⚠️  presence: persist online for user %d: %v", userID, err)
	}
	s.broadcaster.PublishAll("status_updated", map[string]interface{}{"userId": userID, "status": "online"})
}

// SetOffline marks the user offline on socket disconnect.
func (s *PresenceService) SetOffline(ctx context.Context, userID uint) {
	if err := s.redis.Del(ctx, presenceKey(userID)).Err(); err != nil {
		log.Printf("⚠️  presence: clear liveness for user %d: %v", userID, err)
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Update("status", "offline").Error; err != nil {
		log.Printf("⚠️  presence: persist offline for user %d: %v", userID, err)
	}
	s.broadcaster.PublishAll("status_updated", map[string]interface{}{"userId": userID, "status": "offline"})
}

// Heartbeat refreshes the liveness key; called from the websocket pong
// handler.
func (s *PresenceService) Heartbeat(ctx context.Context, userID uint) {
	if err := s.redis.Expire(ctx, presenceKey(userID), PresenceTTL).Err(); err != nil {
		log.Printf("⚠️  presence: heartbeat for user %d: %v", userID, err)
	}
}

// SetStatus persists a user-chosen status (online, busy or offline) and
// announces it. The liveness key is untouched: a busy user is still alive.
func (s *PresenceService) SetStatus(ctx context.Context, userID uint, status string) error {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Update("status", status).Error; err != nil {
		return err
	}
	s.broadcaster.PublishAll("status_updated", map[string]interface{}{"userId": userID, "status": status})
	return nil
}

// Resolve overlays liveness on the stored profile status: a user whose
// stored status says online or busy but whose liveness key has expired is
// reported offline.
func (s *PresenceService) Resolve(ctx context.Context, userID uint, stored string) string {
	if stored == "offline" {
		return "offline"
	}
	if _, err := s.redis.Get(ctx, presenceKey(userID)).Result(); err == redis.Nil {
		return "offline"
	} else if err != nil {
		// Redis being down should not hide everyone; trust the column.
		return stored
	}
	return stored
}

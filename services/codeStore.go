package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoCode is returned by a CodeStore when no code is stored for an address
var ErrNoCode = errors.New("verification code not found")

type StoredCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CodeStore keeps pending email verification codes keyed by address
type CodeStore interface {
	Save(ctx context.Context, email string, code StoredCode) error
	Get(ctx context.Context, email string) (StoredCode, error)
	Delete(ctx context.Context, email string) error
}

// RedisCodeStore keeps codes under verify:<email>. Keys outlive the code
// by a grace period so an expired code is still reported as expired.
type RedisCodeStore struct {
	client *redis.Client
	grace  time.Duration
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client, grace: 5 * time.Minute}
}

func redisKey(email string) string {
	return "verify:" + email
}

func (s *RedisCodeStore) Save(ctx context.Context, email string, code StoredCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}
	ttl := time.Until(code.ExpiresAt) + s.grace
	return s.client.Set(ctx, redisKey(email), data, ttl).Err()
}

func (s *RedisCodeStore) Get(ctx context.Context, email string) (StoredCode, error) {
	var code StoredCode
	data, err := s.client.Get(ctx, redisKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return code, ErrNoCode
	}
	if err != nil {
		return code, err
	}
	if err := json.Unmarshal(data, &code); err != nil {
		return code, err
	}
	return code, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, redisKey(email)).Err()
}

// DBCodeStore keeps codes in the email_verifications table
type DBCodeStore struct {
	db *gorm.DB
}

func NewDBCodeStore(db *gorm.DB) *DBCodeStore {
	return &DBCodeStore{db: db}
}

func (s *DBCodeStore) Save(ctx context.Context, email string, code StoredCode) error {
	row := models.EmailVerification{Email: email, Code: code.Code, ExpiresAt: code.ExpiresAt}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "created_at"}),
	}).Create(&row).Error
}

func (s *DBCodeStore) Get(ctx context.Context, email string) (StoredCode, error) {
	var row models.EmailVerification
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return StoredCode{}, ErrNoCode
	}
	if err != nil {
		return StoredCode{}, err
	}
	return StoredCode{Code: row.Code, ExpiresAt: row.ExpiresAt}, nil
}

func (s *DBCodeStore) Delete(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Where("email = ?", email).Delete(&models.EmailVerification{}).Error
}

// DeleteExpired removes codes that expired before now
func (s *DBCodeStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.EmailVerification{})
	return res.RowsAffected, res.Error
}

// RunSweeper deletes expired codes every interval until ctx is done
func (s *DBCodeStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.DeleteExpired(ctx, now)
			if err != nil {
				if ctx.Err() == nil {
					logger.Log.Warn("verification code sweep failed", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				logger.Log.Debug("expired verification codes removed", zap.Int64("count", n))
			}
		}
	}
}

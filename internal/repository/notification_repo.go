package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"lms-backend/internal/model"
	"lms-backend/internal/util"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(notification *model.Notification) error
	FindByID(id string) (*model.Notification, error)
	FindByUserID(userID string, limit, offset int) ([]*model.Notification, error)
	FindUnreadByUserID(userID string) ([]*model.Notification, error)
	CountUnreadByUserID(userID string) (int64, error)
	MarkAsRead(id string) error
	MarkAllAsRead(userID string) error
	Delete(id string) error
}

type notificationRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	notificationByUserCachePrefix = "notification:user:"
	notificationCountCachePrefix  = "notification:count:"
	notificationCacheExpiration   = 10 * time.Minute
)

func NewNotificationRepository(db *gorm.DB, redis *util.RedisClient) NotificationRepository {
	return &notificationRepository{
		db:    db,
		redis: redis,
	}
}

func (r *notificationRepository) Create(notification *model.Notification) error {
	if err := r.db.Create(notification).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.invalidateUserCache(notification.UserID)
	}

	return nil
}

func (r *notificationRepository) FindByID(id string) (*model.Notification, error) {
	var notification model.Notification
	err := r.db.Where("id = ?", id).First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// FindByUserID returns a user's notifications, newest first
func (r *notificationRepository) FindByUserID(userID string, limit, offset int) ([]*model.Notification, error) {
	cacheKey := fmt.Sprintf("%s%s:%d:%d", notificationByUserCachePrefix, userID, limit, offset)

	if r.redis != nil {
		if cached, err := r.redis.Get(cacheKey); err == nil {
			var notifications []*model.Notification
			if err := json.Unmarshal([]byte(cached), &notifications); err == nil {
				return notifications, nil
			}
		}
	}

	var notifications []*model.Notification
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		_ = r.redis.Set(cacheKey, notifications, notificationCacheExpiration)
	}

	return notifications, nil
}

func (r *notificationRepository) FindUnreadByUserID(userID string) ([]*model.Notification, error) {
	var notifications []*model.Notification
	err := r.db.
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnreadByUserID(userID string) (int64, error) {
	cacheKey := notificationCountCachePrefix + userID

	if r.redis != nil {
		if cached, err := r.redis.Get(cacheKey); err == nil {
			var count int64
			if err := json.Unmarshal([]byte(cached), &count); err == nil {
				return count, nil
			}
		}
	}

	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if r.redis != nil {
		_ = r.redis.Set(cacheKey, count, notificationCacheExpiration)
	}

	return count, nil
}

func (r *notificationRepository) MarkAsRead(id string) error {
	notification, err := r.FindByID(id)
	if err != nil {
		return err
	}

	now := time.Now()
	err = r.db.Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": &now,
		}).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.invalidateUserCache(notification.UserID)
	}

	return nil
}

func (r *notificationRepository) MarkAllAsRead(userID string) error {
	now := time.Now()
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": &now,
		}).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.invalidateUserCache(userID)
	}

	return nil
}

func (r *notificationRepository) Delete(id string) error {
	notification, err := r.FindByID(id)
	if err != nil {
		return err
	}

	if err := r.db.Where("id = ?", id).Delete(&model.Notification{}).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.invalidateUserCache(notification.UserID)
	}

	return nil
}

func (r *notificationRepository) invalidateUserCache(userID string) {
	_ = r.redis.DeletePattern(notificationByUserCachePrefix + userID + ":*")
	_ = r.redis.Delete(notificationCountCachePrefix + userID)
}

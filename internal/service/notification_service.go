package service

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"lms-backend/internal/model"
	"lms-backend/internal/repository"
	"lms-backend/internal/util"
)

type NotificationService interface {
	Notify(userID, message string) error
	CreateNotification(userID, message string) (*model.Notification, error)
	GetNotifications(userID string, limit, offset int) ([]*model.Notification, error)
	GetUnreadNotifications(userID string) ([]*model.Notification, error)
	GetUnreadCount(userID string) (int64, error)
	MarkAsRead(notificationID, userID string) error
	MarkAllAsRead(userID string) error
	DeleteNotification(notificationID, userID string) error
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	rabbitMQ  *util.RabbitMQClient
}

// NotificationMessage is the queue payload for async notification creation
type NotificationMessage struct {
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

var errNotOwner = errors.New("notification does not belong to user")

const (
	NotificationQueueName = "notification_queue"
	NotificationExchange  = "notification_exchange"
	NotificationRouteKey  = "notification"
)

func NewNotificationService(notifRepo repository.NotificationRepository, rabbitMQ *util.RabbitMQClient) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		rabbitMQ:  rabbitMQ,
	}
}

// Notify queues the notification for async persistence when RabbitMQ is
// available, otherwise persists it directly.
func (s *notificationService) Notify(userID, message string) error {
	if s.rabbitMQ != nil {
		msg := NotificationMessage{
			UserID:    userID,
			Message:   message,
			Timestamp: time.Now(),
		}

		msgJSON, err := json.Marshal(msg)
		if err != nil {
			return err
		}

		if err := s.rabbitMQ.Publish(NotificationExchange, NotificationRouteKey, msgJSON); err == nil {
			return nil
		}
		log.Printf("Failed to publish notification to RabbitMQ, falling back to direct create")
	}

	_, err := s.CreateNotification(userID, message)
	return err
}

func (s *notificationService) CreateNotification(userID, message string) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := s.notifRepo.Create(notification); err != nil {
		return nil, err
	}
	return notification, nil
}

func (s *notificationService) GetNotifications(userID string, limit, offset int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.notifRepo.FindByUserID(userID, limit, offset)
}

func (s *notificationService) GetUnreadNotifications(userID string) ([]*model.Notification, error) {
	return s.notifRepo.FindUnreadByUserID(userID)
}

func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	return s.notifRepo.CountUnreadByUserID(userID)
}

// MarkAsRead marks one notification read; users can only touch their own
func (s *notificationService) MarkAsRead(notificationID, userID string) error {
	notification, err := s.notifRepo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return errNotOwner
	}
	return s.notifRepo.MarkAsRead(notificationID)
}

func (s *notificationService) MarkAllAsRead(userID string) error {
	return s.notifRepo.MarkAllAsRead(userID)
}

func (s *notificationService) DeleteNotification(notificationID, userID string) error {
	notification, err := s.notifRepo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return errNotOwner
	}
	return s.notifRepo.Delete(notificationID)
}

package repository

import (
	"encoding/json"
	"time"

	"lms-backend/internal/model"
	"lms-backend/internal/util"

	"gorm.io/gorm"
)

// ChatRepository is the room directory and message store. AppendMessage is the
// single write path for messages; the store assigns the timestamp.
type ChatRepository interface {
	CreateRoom(room *model.ChatRoom) error
	EnsureRoom(name string, isPrivate bool) (*model.ChatRoom, error)
	RoomExists(name string) (bool, error)
	FindRoomByName(name string) (*model.ChatRoom, error)
	FindRoomByID(id string) (*model.ChatRoom, error)
	FindRoomsByParticipant(userID string) ([]model.ChatRoom, error)
	AddParticipant(roomID, userID string) error
	IsParticipant(roomID, userID string) (bool, error)

	AppendMessage(roomID, senderID, content string) (*model.Message, error)
	FindMessagesByRoom(roomID string, limit, offset int) ([]*model.Message, error)
}

type chatRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	roomByNameCachePrefix = "chatroom:name:"
	roomCacheExpiration   = 10 * time.Minute
)

func NewChatRepository(db *gorm.DB, redis *util.RedisClient) ChatRepository {
	return &chatRepository{db: db, redis: redis}
}

func (r *chatRepository) CreateRoom(room *model.ChatRoom) error {
	if err := r.db.Create(room).Error; err != nil {
		return err
	}
	if r.redis != nil {
		_ = r.redis.Delete(roomByNameCachePrefix + room.Name)
	}
	return nil
}

// EnsureRoom fetches the room with the given name, creating it if absent.
func (r *chatRepository) EnsureRoom(name string, isPrivate bool) (*model.ChatRoom, error) {
	room, err := r.FindRoomByName(name)
	if err == nil {
		return room, nil
	}

	room = &model.ChatRoom{Name: name, IsPrivate: isPrivate}
	if err := r.CreateRoom(room); err != nil {
		// Lost a create race, the room exists now
		if existing, findErr := r.FindRoomByName(name); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return room, nil
}

func (r *chatRepository) RoomExists(name string) (bool, error) {
	if _, err := r.FindRoomByName(name); err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *chatRepository) FindRoomByName(name string) (*model.ChatRoom, error) {
	cacheKey := roomByNameCachePrefix + name

	if r.redis != nil {
		if cached, err := r.redis.Get(cacheKey); err == nil {
			var room model.ChatRoom
			if err := json.Unmarshal([]byte(cached), &room); err == nil {
				return &room, nil
			}
		}
	}

	var room model.ChatRoom
	if err := r.db.Where("name = ?", name).First(&room).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		_ = r.redis.Set(cacheKey, room, roomCacheExpiration)
	}

	return &room, nil
}

func (r *chatRepository) FindRoomByID(id string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	err := r.db.
		Preload("Course").
		Preload("Participants").
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindRoomsByParticipant returns only rooms the user belongs to
func (r *chatRepository) FindRoomsByParticipant(userID string) ([]model.ChatRoom, error) {
	var rooms []model.ChatRoom
	err := r.db.
		Preload("Participants").
		Joins("JOIN chat_room_participants crp ON crp.chat_room_id = chat_rooms.id").
		Where("crp.user_id = ?", userID).
		Order("chat_rooms.created_at ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *chatRepository) AddParticipant(roomID, userID string) error {
	room := model.ChatRoom{ID: roomID}
	return r.db.Model(&room).Association("Participants").Append(&model.User{ID: userID})
}

func (r *chatRepository) IsParticipant(roomID, userID string) (bool, error) {
	var count int64
	err := r.db.Table("chat_room_participants").
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

// AppendMessage durably records a message and returns it with the
// store-assigned timestamp. Either the row is written or an error comes back;
// callers must not broadcast on error.
func (r *chatRepository) AppendMessage(roomID, senderID, content string) (*model.Message, error) {
	msg := &model.Message{
		RoomID:   roomID,
		SenderID: senderID,
		Content:  content,
	}
	if err := r.db.Create(msg).Error; err != nil {
		return nil, err
	}

	var saved model.Message
	if err := r.db.Preload("Sender").Where("id = ?", msg.ID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// FindMessagesByRoom returns room history in ascending timestamp order
func (r *chatRepository) FindMessagesByRoom(roomID string, limit, offset int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.
		Preload("Sender").
		Where("room_id = ?", roomID).
		Order("timestamp ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

package service

import (
	"errors"

	"lms-backend/internal/model"
	"lms-backend/internal/repository"

	"gorm.io/gorm"
)

// ChatService is the storage contract behind the chat connection lifecycle:
// room lookup, message persistence and room history reads.
type ChatService interface {
	SaveMessage(roomName, senderID, content string) (*model.Message, error)
	RoomHistory(userID, roomName string, limit, offset int) ([]*model.Message, error)
	RoomsForUser(userID string) ([]model.ChatRoom, error)
	RoomDetail(userID, roomName string) (*model.ChatRoom, error)
	CreateRoom(name string, isPrivate bool, participantIDs []string) (*model.ChatRoom, error)
	EnsureDefaultRoom() error
}

type chatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

var ErrRoomNotFound = errors.New("room not found")

// SaveMessage appends a message to the named room. The returned message
// carries the store-assigned timestamp; it is the canonical timestamp for any
// broadcast of this message. A missing room fails only this send.
func (s *chatService) SaveMessage(roomName, senderID, content string) (*model.Message, error) {
	if content == "" {
		return nil, errors.New("message content cannot be empty")
	}

	room, err := s.chatRepo.FindRoomByName(roomName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	return s.chatRepo.AppendMessage(room.ID, senderID, content)
}

// RoomHistory returns the room's messages in ascending timestamp order.
// Only participants can read history.
func (s *chatService) RoomHistory(userID, roomName string, limit, offset int) ([]*model.Message, error) {
	room, err := s.chatRepo.FindRoomByName(roomName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	isMember, err := s.chatRepo.IsParticipant(room.ID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, errors.New("you are not a participant of this room")
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	return s.chatRepo.FindMessagesByRoom(room.ID, limit, offset)
}

func (s *chatService) RoomsForUser(userID string) ([]model.ChatRoom, error) {
	return s.chatRepo.FindRoomsByParticipant(userID)
}

func (s *chatService) RoomDetail(userID, roomName string) (*model.ChatRoom, error) {
	room, err := s.chatRepo.FindRoomByName(roomName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	isMember, err := s.chatRepo.IsParticipant(room.ID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, errors.New("you are not a participant of this room")
	}

	return s.chatRepo.FindRoomByID(room.ID)
}

// CreateRoom creates a private or ad-hoc room. Private rooms are always
// caller-named; there is no derivation rule for them.
func (s *chatService) CreateRoom(name string, isPrivate bool, participantIDs []string) (*model.ChatRoom, error) {
	if name == "" {
		return nil, errors.New("room name is required")
	}

	exists, err := s.chatRepo.RoomExists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New("room name already taken")
	}

	room := &model.ChatRoom{Name: name, IsPrivate: isPrivate}
	if err := s.chatRepo.CreateRoom(room); err != nil {
		return nil, err
	}

	for _, userID := range participantIDs {
		if _, err := s.userRepo.FindByID(userID); err != nil {
			continue
		}
		if err := s.chatRepo.AddParticipant(room.ID, userID); err != nil {
			return nil, err
		}
	}

	return s.chatRepo.FindRoomByID(room.ID)
}

// EnsureDefaultRoom guarantees the dashboard room exists after startup
func (s *chatService) EnsureDefaultRoom() error {
	_, err := s.chatRepo.EnsureRoom(model.DefaultRoomName, false)
	return err
}

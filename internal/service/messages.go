package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

type MessageService struct{}

func NewMessageService() *MessageService {
	return &MessageService{}
}

// Post stores a new message for userID. Text is trimmed and must be
// 1 to models.MaxMessageLength runes long.
func (s *MessageService) Post(ctx context.Context, q store.Queries, userID int, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "is required")
	}
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return nil, invalid("text", fmt.Sprintf("must be at most %d characters", models.MaxMessageLength))
	}

	if err := requireAccount(ctx, q, userID); err != nil {
		return nil, err
	}

	msg := &models.Message{Text: text, UserID: userID}
	if err := q.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return q.GetMessage(ctx, msg.ID)
}

func (s *MessageService) Get(ctx context.Context, q store.Queries, id int) (*models.Message, error) {
	return q.GetMessage(ctx, id)
}

// Delete removes a message. Only its author may do so.
func (s *MessageService) Delete(ctx context.Context, q store.Queries, userID, messageID int) error {
	msg, err := q.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.UserID != userID {
		return ErrForbidden
	}
	return q.DeleteMessage(ctx, messageID)
}

// ToggleLike likes the message, or unlikes it if already liked, and returns
// the new state. Authors cannot like their own messages.
func (s *MessageService) ToggleLike(ctx context.Context, q store.Queries, userID, messageID int) (bool, error) {
	if err := requireAccount(ctx, q, userID); err != nil {
		return false, err
	}
	msg, err := q.GetMessage(ctx, messageID)
	if err != nil {
		return false, err
	}
	if msg.UserID == userID {
		return false, ErrForbidden
	}

	like := models.Like{UserID: userID, MessageID: messageID}
	liked, err := q.IsLiked(ctx, like)
	if err != nil {
		return false, err
	}
	if liked {
		err = q.RemoveLike(ctx, like)
	} else {
		err = q.AddLike(ctx, like)
	}
	if err != nil {
		return false, err
	}
	return !liked, nil
}

// Likes lists the messages userID has liked.
func (s *MessageService) Likes(ctx context.Context, q store.Queries, userID int) ([]models.Message, error) {
	if _, err := q.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return q.ListLikedMessages(ctx, userID)
}

// Timeline returns the newest messages by userID and the users they follow.
func (s *MessageService) Timeline(ctx context.Context, q store.Queries, userID, limit int) ([]models.Message, error) {
	return q.Timeline(ctx, userID, limit)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
	redisclient "github.com/tableguild/tableguild/internal/pkg/redis"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/utils/snowflake"
)

var (
	ErrEmptyMessage    = errors.New("message content is empty")
	ErrSelfMessage     = errors.New("cannot message yourself")
	ErrMessageNotFound = errors.New("message not found")
)

const (
	defaultMessagePageSize = 50
	maxMessagePageSize     = 100
)

// SendMessageRequest carries a direct message to another member.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

type IMessageService interface {
	Send(ctx context.Context, senderID string, req *SendMessageRequest) (*model.Message, error)
	History(ctx context.Context, memberID, otherID string, afterSeqID int64, limit int) ([]*model.Message, error)
}

type MessageService struct {
	messageRepo repository.IMessageRepository
	memberRepo  repository.IMemberRepository
	redisClient redisclient.RedisClient
	idGen       *snowflake.Generator
}

func NewMessageService(
	messageRepo repository.IMessageRepository,
	memberRepo repository.IMemberRepository,
	redisClient redisclient.RedisClient,
	idGen *snowflake.Generator,
) IMessageService {
	return &MessageService{
		messageRepo: messageRepo,
		memberRepo:  memberRepo,
		redisClient: redisClient,
		idGen:       idGen,
	}
}

// ConversationID derives the shared conversation key for a member pair.
// Ordering the IDs makes the key identical from either side.
func ConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// Send persists a direct message with a fresh snowflake ID and the next
// sequence number for the pair's conversation.
func (s *MessageService) Send(ctx context.Context, senderID string, req *SendMessageRequest) (*model.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if req.RecipientID == senderID {
		return nil, ErrSelfMessage
	}

	if _, err := s.memberRepo.FindByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to load recipient: %w", err)
	}

	conversationID := ConversationID(senderID, req.RecipientID)

	seqID, err := s.redisClient.GenerateSeqID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate seq id: %w", err)
	}

	id, err := s.idGen.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}

	message := &model.Message{
		ID:             strconv.FormatInt(id, 10),
		SenderID:       senderID,
		RecipientID:    req.RecipientID,
		ConversationID: conversationID,
		Content:        content,
		SeqID:          seqID,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return message, nil
}

// History returns the conversation between the caller and the other member,
// oldest first, resuming after afterSeqID.
func (s *MessageService) History(ctx context.Context, memberID, otherID string, afterSeqID int64, limit int) ([]*model.Message, error) {
	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}

	conversationID := ConversationID(memberID, otherID)
	messages, err := s.messageRepo.FindByConversation(ctx, conversationID, afterSeqID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return messages, nil
}

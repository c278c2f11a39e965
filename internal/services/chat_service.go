package services

import (
	"context"
	"strings"
	"unicode"

	"vinvest/internal/ai"
	"vinvest/internal/logger"
)

// Canned chat replies.
const (
	GreetingReply  = "Hi there! I'm Amani."
	WellbeingReply = "I'm fine. How can I help you today?"
	NewsReply      = "Let me refer you to my fellow agent Millie who would inform you on the latest news and trends and keep you updated. She is available 24/7."
)

// chatService answers simple prompts from a fixed table and forwards
// everything else to the model.
type chatService struct {
	generator ai.Generator
}

// NewChatService creates a new ChatServicer.
func NewChatService(generator ai.Generator) ChatServicer {
	return &chatService{generator: generator}
}

// Reply never fails; a model error is returned as the reply text.
func (s *chatService) Reply(ctx context.Context, text string) string {
	if reply, ok := cannedReply(text); ok {
		return reply
	}

	reply, err := s.generator.Generate(ctx, text)
	if err != nil {
		logger.Get().Warnw("chat generation failed", "error", err)
		return err.Error()
	}
	return reply
}

func cannedReply(text string) (string, bool) {
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if w == "hello" || w == "hi" {
			return GreetingReply, true
		}
	}

	switch {
	case strings.Contains(lower, "how are you"):
		return WellbeingReply, true
	case strings.Contains(lower, "news"):
		return NewsReply, true
	}
	return "", false
}

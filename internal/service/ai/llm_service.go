package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/neem-ai/assistant/backend/internal/model/chat"
	"github.com/neem-ai/assistant/backend/internal/model/role"
	"github.com/neem-ai/assistant/backend/internal/service/relay"
)

// Service answers relay queries with an Ark chat model. It is an
// in-process stand-in for the remote AI service.
type Service struct {
	roles   role.Store
	prompts *RolePromptManager
	chain   compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the prompt chain around chatModel.
func NewService(ctx context.Context, chatModel model.ChatModel, roles role.Store) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		roles:   roles,
		prompts: NewRolePromptManager(),
		chain:   runnable,
	}, nil
}

// Complete generates an answer and wraps it in the documented reply shape.
func (s *Service) Complete(ctx context.Context, req relay.Request) (*relay.Response, error) {
	r := role.Resolve(s.roles, req.Role)

	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": s.prompts.BuildSystemPrompt(&r),
		"query":  req.Query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run AI chain: %w", err)
	}

	body, err := json.Marshal(chat.Reply{Message: response.Content, Status: http.StatusOK})
	if err != nil {
		return nil, fmt.Errorf("failed to encode reply: %w", err)
	}

	log.Printf("[ai] generated response for role=%s, length=%d", r.ID, len(response.Content))
	return &relay.Response{Status: http.StatusOK, Body: body}, nil
}

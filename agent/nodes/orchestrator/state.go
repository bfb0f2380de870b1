package orchestratornode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
)

var (
	ErrInvalidSession = errors.New("session user id is empty")
	ErrEmptyHistory   = errors.New("message history is empty")
)

const DefaultMaxCycles = 8

type GraphInput struct {
	Session   contractx.Session
	Messages  []*schema.Message
	MaxCycles int
}

type GraphOutput struct {
	Messages  []*schema.Message
	Reply     string
	Decisions []contractx.Decision
	Cycles    int
}

// GraphState travels through every node of one turn. Messages only grows.
type GraphState struct {
	Session   contractx.Session
	Messages  []*schema.Message
	Now       time.Time
	MaxCycles int

	Profile   *contractx.Profile
	Decisions []contractx.Decision
	Cycles    int
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	session := in.Session.Normalize()
	if session.UserID == "" {
		return nil, ErrInvalidSession
	}
	if len(in.Messages) == 0 {
		return nil, ErrEmptyHistory
	}
	for i, m := range in.Messages {
		if m == nil {
			return nil, fmt.Errorf("%w: message %d is nil", contractx.ErrValidation, i)
		}
	}

	maxCycles := in.MaxCycles
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}

	return &GraphState{
		Session:   session,
		Messages:  append([]*schema.Message(nil), in.Messages...),
		Now:       nowFn().UTC(),
		MaxCycles: maxCycles,
	}, nil
}

func (s *GraphState) lastMessage() *schema.Message {
	if s == nil || len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// pendingCall returns the ChooseTask call the current handler answers.
func (s *GraphState) pendingCall() (schema.ToolCall, error) {
	last := s.lastMessage()
	if last == nil || len(last.ToolCalls) == 0 {
		return schema.ToolCall{}, fmt.Errorf("%w: last message carries no tool call", contractx.ErrValidation)
	}
	return last.ToolCalls[0], nil
}

func (s *GraphState) appendToolResult(content string, call schema.ToolCall) {
	s.Messages = append(s.Messages, schema.ToolMessage(content, call.ID))
}

func trimmed(v string) string {
	return strings.TrimSpace(v)
}

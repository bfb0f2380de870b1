package contract

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
)

type AgentType string

const (
	AgentTypeDecider   AgentType = "decider"
	AgentTypeExtractor AgentType = "extractor"
)

// Decision is the update_type carried by a ChooseTask call.
type Decision string

const (
	DecisionNone               Decision = ""
	DecisionUser               Decision = "user"
	DecisionFetchTaskCount     Decision = "fetch_task_count"
	DecisionCreateShiftSummary Decision = "create_shift_summary"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionUser, DecisionFetchTaskCount, DecisionCreateShiftSummary:
		return true
	default:
		return false
	}
}

// Session is supplied by the host for every turn. Only UserID is required;
// the backend fields are forwarded to the API untouched.
type Session struct {
	UserID       string `json:"user_id" envconfig:"USER_ID" split_words:"true"`
	AuthToken    string `json:"auth_token" envconfig:"AUTH_TOKEN" split_words:"true"`
	WorkforceID  string `json:"workforce_id" envconfig:"WORKFORCE_ID" split_words:"true"`
	EmploymentID string `json:"employment_id" envconfig:"EMPLOYMENT_ID" split_words:"true"`
	ShiftStart   string `json:"shift_start" envconfig:"SHIFT_START" split_words:"true"`
}

func (s Session) Normalize() Session {
	return Session{
		UserID:       strings.TrimSpace(s.UserID),
		AuthToken:    strings.TrimSpace(s.AuthToken),
		WorkforceID:  strings.TrimSpace(s.WorkforceID),
		EmploymentID: strings.TrimSpace(s.EmploymentID),
		ShiftStart:   strings.TrimSpace(s.ShiftStart),
	}
}

// Profile is the long-term record kept for a user.
type Profile struct {
	Name *string `json:"name,omitempty"`
	Job  *string `json:"job,omitempty"`
}

func (p Profile) IsEmpty() bool {
	return p.Name == nil && p.Job == nil
}

type DecisionRequest struct {
	Messages []*schema.Message
	Profile  *Profile
}

// ExistingDoc is a stored document offered to the extractor for patching.
type ExistingDoc struct {
	ID    string          `json:"json_doc_id"`
	Value json.RawMessage `json:"value"`
}

type ExtractRequest struct {
	Messages []*schema.Message
	Existing []ExistingDoc
	Now      time.Time
}

type ChangeType string

const (
	ChangeNew      ChangeType = "new"
	ChangeUpdate   ChangeType = "update"
	ChangeNoUpdate ChangeType = "no_update"
)

// ExtractedDoc is one document the extractor wants persisted. DocID is empty
// for newly created documents.
type ExtractedDoc struct {
	DocID        string          `json:"json_doc_id,omitempty"`
	Change       ChangeType      `json:"change"`
	PlannedEdits string          `json:"planned_edits,omitempty"`
	Value        json.RawMessage `json:"value"`
}

type ExtractResult struct {
	Responses []ExtractedDoc
}

type TurnEvent struct {
	UserID    string     `json:"user_id"`
	Decisions []Decision `json:"decisions"`
	Cycles    int        `json:"cycles"`
	Reply     string     `json:"reply"`
	At        time.Time  `json:"at"`
}

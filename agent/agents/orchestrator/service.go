package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	memoryx "github.com/tanpawarit/task-maistro/agent/memory"
	nodex "github.com/tanpawarit/task-maistro/agent/nodes/orchestrator"
)

var (
	ErrInvalidSession = nodex.ErrInvalidSession
	ErrEmptyHistory   = nodex.ErrEmptyHistory
)

type Config struct {
	MaxCycles int `envconfig:"MAX_CYCLES" split_words:"true" default:"8"`
}

type TurnResult struct {
	Messages  []*schema.Message
	Reply     string
	Decisions []contractx.Decision
	Cycles    int
}

type Option func(*Orchestrator)

// WithEventPublisher sends a TurnEvent after every completed turn.
func WithEventPublisher(p contractx.EventPublisher) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.events = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

type Orchestrator struct {
	store   memoryx.Store
	models  contractx.Registry
	backend contractx.Backend
	events  contractx.EventPublisher

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	maxCycles int
	now       func() time.Time
}

func New(
	store memoryx.Store,
	models contractx.Registry,
	backend contractx.Backend,
	cfg Config,
	opts ...Option,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("memory store is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if backend == nil {
		return nil, errors.New("backend client is required")
	}

	maxCycles := cfg.MaxCycles
	if maxCycles <= 0 {
		maxCycles = nodex.DefaultMaxCycles
	}

	o := &Orchestrator{
		store:     store,
		models:    models,
		backend:   backend,
		events:    noopPublisher{},
		maxCycles: maxCycles,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn runs decide/act cycles over history until the model answers
// without a tool call. The returned history contains the input messages
// followed by everything appended during the turn.
func (o *Orchestrator) HandleTurn(ctx context.Context, session contractx.Session, history []*schema.Message) (TurnResult, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		Session:   session,
		Messages:  history,
		MaxCycles: o.maxCycles,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("turn failed")
		return TurnResult{}, err
	}

	res := TurnResult{
		Messages:  out.Messages,
		Reply:     out.Reply,
		Decisions: out.Decisions,
		Cycles:    out.Cycles,
	}
	o.publish(ctx, session, res)
	return res, nil
}

func (o *Orchestrator) publish(ctx context.Context, session contractx.Session, res TurnResult) {
	event := contractx.TurnEvent{
		UserID:    session.Normalize().UserID,
		Decisions: res.Decisions,
		Cycles:    res.Cycles,
		Reply:     res.Reply,
		At:        o.now().UTC(),
	}
	if err := o.events.PublishTurn(ctx, event); err != nil {
		log.Warn().Err(err).Str("user_id", event.UserID).Msg("publish turn event failed")
	}
}

type noopPublisher struct{}

func (noopPublisher) PublishTurn(context.Context, contractx.TurnEvent) error {
	return nil
}

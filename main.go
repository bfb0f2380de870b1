package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	assistantx "github.com/tanpawarit/task-maistro/agent/agents/assistant"
	orchestratorx "github.com/tanpawarit/task-maistro/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	llmx "github.com/tanpawarit/task-maistro/agent/llm"
	memoryx "github.com/tanpawarit/task-maistro/agent/memory"
	backendx "github.com/tanpawarit/task-maistro/pkg/backend"
	configx "github.com/tanpawarit/task-maistro/pkg/config"
	_ "github.com/tanpawarit/task-maistro/pkg/logger/autoload"
	qstashx "github.com/tanpawarit/task-maistro/pkg/qstash"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[orchestratorx.Config]("APP")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	backendCfg := configx.MustNew[backendx.Config]("BACKEND")
	session := configx.MustNew[contractx.Session]("SESSION")

	store, closeStore, err := openStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("open memory store")
	}
	defer closeStore()

	models, err := assistantx.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build model registry")
	}

	var opts []orchestratorx.Option
	if qstashCfg := configx.MustNew[qstashx.Config]("QSTASH"); qstashCfg.Enabled() {
		opts = append(opts, orchestratorx.WithEventPublisher(qstashx.MustNew(*qstashCfg)))
	}

	orch, err := orchestratorx.New(store, models, backendx.MustNew(*backendCfg), *appCfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	if err := repl(ctx, orch, *session); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("repl stopped")
	}
}

func openStore(ctx context.Context) (memoryx.Store, func(), error) {
	storeCfg := configx.MustNew[memoryx.Config]("STORE")
	noop := func() {}

	switch storeCfg.Driver {
	case memoryx.DriverMemory, "":
		return memoryx.NewInMemoryStore(), noop, nil
	case memoryx.DriverUpstash:
		cfg := configx.MustNew[memoryx.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := memoryx.NewUpstashRedisStore(*cfg)
		return store, noop, err
	case memoryx.DriverPostgres:
		cfg := configx.MustNew[memoryx.PostgresConfig]("POSTGRES")
		store, err := memoryx.NewPostgresStore(ctx, *cfg)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", storeCfg.Driver)
	}
}

// repl keeps the conversation history in process; the profile outlives it
// in the configured store.
func repl(ctx context.Context, orch *orchestratorx.Orchestrator, session contractx.Session) error {
	var history []*schema.Message
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Print("> ")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}
		if line == "/exit" || line == "/quit" {
			return nil
		}

		res, err := orch.HandleTurn(ctx, session, append(history, schema.UserMessage(line)))
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			fmt.Print("> ")
			continue
		}
		history = res.Messages

		log.Debug().
			Str("user_id", session.UserID).
			Int("cycles", res.Cycles).
			Interface("decisions", res.Decisions).
			Msg("turn completed")
		fmt.Println(res.Reply)
		fmt.Print("> ")
	}
	return scanner.Err()
}

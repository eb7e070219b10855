package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

// InsightBus fans freshly generated insights out to interested consumers
// (notification workers, websocket gateways). Publishing is best-effort;
// the engine never depends on a delivery.
type InsightBus interface {
	PublishInsight(ctx context.Context, ins *types.Insight) error
	Close() error
}

type insightBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewInsightBus connects to the redis instance named by REDIS_ADDR. The
// channel defaults to "insights" and can be overridden with REDIS_CHANNEL.
func NewInsightBus(log *logger.Logger) (InsightBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "insights"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &insightBus{
		log:     log.With("service", "RedisInsightBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *insightBus) PublishInsight(ctx context.Context, ins *types.Insight) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("insight bus not initialized")
	}
	raw, err := json.Marshal(ins)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *insightBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

// noopInsightBus stands in when redis is not configured; publishes go
// nowhere and never fail.
type noopInsightBus struct{}

func NewNoopInsightBus() InsightBus { return noopInsightBus{} }

func (noopInsightBus) PublishInsight(ctx context.Context, ins *types.Insight) error { return nil }
func (noopInsightBus) Close() error                                                 { return nil }

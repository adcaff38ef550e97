package ai

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/agentcy/internal/domain/ai"
)

const defaultBaseDelay = 200 * time.Millisecond

// Service wraps a gateway client with an optional bounded retry policy.
// Only ai.ErrGatewayUnavailable is retried; gateway status errors and the
// sentinel answer are returned as-is.
type Service struct {
	client     ai.Client
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Service)

// WithRetry enables up to n extra attempts with jittered exponential backoff.
func WithRetry(n int, baseDelay time.Duration) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRetries = n
		}
		if baseDelay > 0 {
			s.baseDelay = baseDelay
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(client ai.Client, opts ...Option) *Service {
	s := &Service{
		client:    client,
		baseDelay: defaultBaseDelay,
		logger:    zap.NewNop(),
		sleep:     sleepCtx,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Generate(ctx context.Context, systemInstruction, userContent string) (string, error) {
	var err error
	for attempt := 0; ; attempt++ {
		var text string
		text, err = s.client.Generate(ctx, systemInstruction, userContent)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ai.ErrGatewayUnavailable) || attempt >= s.maxRetries {
			return "", err
		}

		delay := s.backoff(attempt)
		s.logger.Warn("gateway unavailable, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if serr := s.sleep(ctx, delay); serr != nil {
			return "", err
		}
	}
}

// backoff is base*2^attempt with equal jitter: half the ceiling fixed,
// the other half random.
func (s *Service) backoff(attempt int) time.Duration {
	ceiling := s.baseDelay << attempt
	return ceiling/2 + time.Duration(rand.Int63n(int64(ceiling/2)+1))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package tactical

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bryanwahyu/agentcy/internal/application"
	"github.com/bryanwahyu/agentcy/internal/domain/ai"
	domain "github.com/bryanwahyu/agentcy/internal/domain/tactical"
	"github.com/bryanwahyu/agentcy/internal/infra/ai/prompt"
)

// GatewayObserver receives the outcome of every gateway call.
type GatewayObserver interface {
	ObserveGateway(err error)
}

// Service implements the analysis use-case: prompt, gateway, mapping,
// then best-effort persistence and archiving.
// Service holds no per-request state and is safe for concurrent use.
type Service struct {
	AI       ai.Client
	Store    domain.RecordStore     // optional
	Archive  domain.BriefingArchive // optional
	Observer GatewayObserver        // optional
	Clock    application.Clock
	Logger   *zap.Logger
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

// Execute runs one request through the pipeline. Errors come only from
// prompt selection and the gateway; store and archive failures are logged.
func (s *Service) Execute(ctx context.Context, c domain.Category, content string) (domain.Record, error) {
	system, user, err := prompt.Build(c, content)
	if err != nil {
		return nil, err
	}

	text, err := s.AI.Generate(ctx, system, user)
	if s.Observer != nil {
		s.Observer.ObserveGateway(err)
	}
	if err != nil {
		return nil, fmt.Errorf("generate %s analysis: %w", c, err)
	}

	rec, err := domain.MapResponse(c, content, text, s.clock().Now())
	if err != nil {
		return nil, err
	}

	id := rec.Meta().ID
	if s.Store != nil {
		if err := s.Store.Create(ctx, rec); err != nil {
			s.logger().Error("persist record failed", zap.String("id", id), zap.Error(err))
		}
	}
	if s.Archive != nil {
		url, err := s.Archive.Archive(ctx, rec)
		if err != nil {
			s.logger().Error("archive briefing failed", zap.String("id", id), zap.Error(err))
		} else {
			s.logger().Debug("briefing archived", zap.String("id", id), zap.String("url", url))
		}
	}

	s.logger().Info("analysis completed",
		zap.String("category", string(c)),
		zap.String("id", id),
		zap.Int("analysis_len", len(text)),
	)
	return rec, nil
}

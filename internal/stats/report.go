package stats

import (
	"context"

	"github.com/verte-zerg/tuiread/internal/model"
)

// Source is the read side of the session history.
type Source interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	ListTexts(ctx context.Context, device string) ([]model.TextAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	// Window is the tail of Sessions covered by the curve window.
	Window []model.SessionAggregate
	Texts  []model.TextAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	texts, err := src.ListTexts(ctx, cfg.Device)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Sessions: sessions,
		Window:   lastSessions(sessions, cfg.CurveWindow),
		Texts:    texts,
	}, nil
}

func lastSessions(sessions []model.SessionAggregate, window int) []model.SessionAggregate {
	if window <= 0 || len(sessions) <= window {
		return sessions
	}
	return sessions[len(sessions)-window:]
}

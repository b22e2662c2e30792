package service

import (
	"ethics_eval_backend/internal/config"
	"sync/atomic"
)

// ScoringSettings is the shared, hot-swappable scoring configuration. Every
// service reads it once per operation so a reload never changes the rules
// halfway through a computation.
type ScoringSettings struct {
	v atomic.Pointer[config.ScoringConfig]
}

func NewScoringSettings(cfg config.ScoringConfig) *ScoringSettings {
	s := &ScoringSettings{}
	s.Set(cfg)
	return s
}

func (s *ScoringSettings) Get() config.ScoringConfig {
	if s == nil {
		return config.DefaultScoringConfig()
	}
	if p := s.v.Load(); p != nil {
		return *p
	}
	return config.DefaultScoringConfig()
}

func (s *ScoringSettings) Set(cfg config.ScoringConfig) {
	s.v.Store(&cfg)
}

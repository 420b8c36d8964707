package usecase

import (
	"time"

	"github.com/secmon-lab/posture/pkg/domain/interfaces"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

// RepositoryFactory creates the record store of a new session
type RepositoryFactory func() interfaces.Repository

type UseCases struct {
	newRepo      RepositoryFactory
	seed         *model.Seed
	headlineMode types.HeadlineMode
	clock        func() time.Time
	observers    []interfaces.RenderObserver

	Dashboard *DashboardUseCase
}

type Option func(*UseCases)

// WithSeed sets the dataset every new session starts from
func WithSeed(seed *model.Seed) Option {
	return func(uc *UseCases) {
		uc.seed = seed
	}
}

// WithHeadlineMode sets how headline metrics are produced
func WithHeadlineMode(mode types.HeadlineMode) Option {
	return func(uc *UseCases) {
		uc.headlineMode = mode
	}
}

// WithClock replaces time.Now, used to stamp discovery dates and renders
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithObserver registers an observer notified after every intent
func WithObserver(observer interfaces.RenderObserver) Option {
	return func(uc *UseCases) {
		uc.observers = append(uc.observers, observer)
	}
}

func New(newRepo RepositoryFactory, opts ...Option) *UseCases {
	uc := &UseCases{
		newRepo:      newRepo,
		headlineMode: types.HeadlineModeStatic,
		clock:        time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.seed == nil {
		uc.seed = model.DefaultSeed()
	}

	uc.Dashboard = NewDashboardUseCase(uc.newRepo, uc.seed,
		uc.headlineMode, uc.clock, uc.observers...)

	return uc
}

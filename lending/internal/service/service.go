package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	lendingRepo "github.com/Astemirdum/bookbuster/lending/internal/repository"
	"github.com/Astemirdum/bookbuster/pkg/kafka"
	"github.com/Astemirdum/bookbuster/pkg/validate"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	log       *zap.Logger
	repo      lendingRepo.Repository
	pub       kafka.Publisher
	clock     Clock
	validator *validate.CustomValidator
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithPublisher(p kafka.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func NewService(repo lendingRepo.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		pub:       kafka.NopPublisher(),
		clock:     systemClock{},
		validator: validate.NewCustomValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) validate(req any) error {
	return errs.Validation(s.validator.Validate(req))
}

func checkID(name string, id int64) error {
	if id <= 0 {
		return errs.Validationf("%s must be positive, got %d", name, id)
	}
	return nil
}

func checkPaging(page, size int) error {
	if page < 0 || size < 0 {
		return errs.Validationf("page and size must not be negative")
	}
	return nil
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *Service) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

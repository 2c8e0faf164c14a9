package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// DepartmentService seeds and lists departments.
type DepartmentService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewDepartmentService builds the service.
func NewDepartmentService(store repository.Store, logger *zap.Logger) *DepartmentService {
	return &DepartmentService{store: store, logger: logger}
}

// Seed creates names when the store holds no department. It returns the
// number created.
func (s *DepartmentService) Seed(ctx context.Context, names []string) (int, error) {
	created := 0
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		count, err := tx.Departments().Count(ctx)
		if err != nil || count > 0 {
			return err
		}
		seen := map[string]struct{}{}
		for _, name := range names {
			name = strings.TrimSpace(name)
			if _, dup := seen[name]; dup || name == "" {
				continue
			}
			seen[name] = struct{}{}
			if err := tx.Departments().Create(ctx, &domain.Department{ID: uuid.NewString(), Name: name}); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		s.logger.Info("departments seeded", zap.Int("count", created))
	}
	return created, nil
}

// List returns every department ordered by name.
func (s *DepartmentService) List(ctx context.Context) ([]domain.Department, error) {
	return s.store.Departments().List(ctx)
}

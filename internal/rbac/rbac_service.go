package rbac

import (
	"fmt"
	"sync"

	"go-leave/internal/domain"
	"go-leave/internal/person"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func subject(personID int64) string {
	return fmt.Sprintf("person:%d", personID)
}

// Enforce refreshes the role grouping of the person from the store and
// checks the permission. Inactive and unknown persons are always denied.
func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	roles, err := s.repo.GetPersonRoles(req.PersonID)
	if err != nil {
		s.logger.Error("rbac load roles failed", zap.Int64("person_id", req.PersonID), zap.Error(err))
		return false, err
	}
	if roles == nil || !(person.Person{Roles: roles}).IsActive() {
		s.logger.Debug("rbac denied inactive or unknown person", zap.Int64("person_id", req.PersonID))
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := subject(req.PersonID)
	if _, err := s.enforcer.DeleteRolesForUser(sub); err != nil {
		return false, err
	}
	if _, err := s.enforcer.AddRoleForUser(sub, string(person.RoleUser)); err != nil {
		return false, err
	}
	for _, role := range roles {
		if role == person.RoleUser {
			continue
		}
		if _, err := s.enforcer.AddRoleForUser(sub, string(role)); err != nil {
			return false, err
		}
	}

	allowed, err := s.enforcer.Enforce(sub, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.Int64("person_id", req.PersonID),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.Int64("person_id", req.PersonID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
		zap.Any("roles", roles),
	)
	return allowed, nil
}

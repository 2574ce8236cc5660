package department

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-leave/internal/person"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const MemberDepartmentsKeyPrefix = "org:member-departments:"

func GetMemberDepartmentsKey(personID int64) string {
	return fmt.Sprintf("%s%d", MemberDepartmentsKeyPrefix, personID)
}

// Service is the read-only view on the organization used by the approval
// workflow.
//
//go:generate mockgen -source=department_service.go -destination=mock/department_service_mock.go -package=mock
type Service interface {
	AssignedDepartmentsOfMember(ctx context.Context, personID int64) ([]Department, error)
	IsDepartmentHeadOf(ctx context.Context, head, member person.Person) (bool, error)
	IsSecondStageAuthorityOf(ctx context.Context, authority, member person.Person) (bool, error)
	DepartmentHeadsOf(ctx context.Context, member person.Person) ([]person.Person, error)
	SecondStageAuthoritiesOf(ctx context.Context, member person.Person) ([]person.Person, error)
	IsTwoStageApprovalActive(ctx context.Context, member person.Person) (bool, error)
	Invalidate(ctx context.Context, personID int64) error
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		ttl:    ttl,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) AssignedDepartmentsOfMember(ctx context.Context, personID int64) ([]Department, error) {
	cacheKey := GetMemberDepartmentsKey(personID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var depts []Department
			if json.Unmarshal([]byte(cached), &depts) == nil {
				return depts, nil
			}
			s.logger.Warn("member departments cache corrupted", zap.String("key", cacheKey))
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		depts, err := s.repo.FindAllByMember(ctx, personID)
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(depts); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, jsonData, s.ttl).Err(); err != nil {
					s.logger.Warn("cache member departments failed",
						zap.Int64("person_id", personID),
						zap.Error(err),
					)
				}
			}
		}

		return depts, nil
	})
	if err != nil {
		s.logger.Error("load member departments failed",
			zap.Int64("person_id", personID),
			zap.Error(err),
		)
		return nil, err
	}

	return v.([]Department), nil
}

func (s *service) IsDepartmentHeadOf(ctx context.Context, head, member person.Person) (bool, error) {
	if !head.HasRole(person.RoleDepartmentHead) {
		return false, nil
	}
	depts, err := s.AssignedDepartmentsOfMember(ctx, member.ID)
	if err != nil {
		return false, err
	}
	for _, d := range depts {
		if d.HasDepartmentHead(head.ID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) IsSecondStageAuthorityOf(ctx context.Context, authority, member person.Person) (bool, error) {
	if !authority.HasRole(person.RoleSecondStageAuthority) {
		return false, nil
	}
	depts, err := s.AssignedDepartmentsOfMember(ctx, member.ID)
	if err != nil {
		return false, err
	}
	for _, d := range depts {
		if d.HasSecondStageAuthority(authority.ID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) DepartmentHeadsOf(ctx context.Context, member person.Person) ([]person.Person, error) {
	depts, err := s.AssignedDepartmentsOfMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	var heads []person.Person
	for _, d := range depts {
		heads = appendDistinct(heads, d.DepartmentHeads, person.RoleDepartmentHead)
	}
	return heads, nil
}

func (s *service) SecondStageAuthoritiesOf(ctx context.Context, member person.Person) ([]person.Person, error) {
	depts, err := s.AssignedDepartmentsOfMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	var authorities []person.Person
	for _, d := range depts {
		authorities = appendDistinct(authorities, d.SecondStageAuthorities, person.RoleSecondStageAuthority)
	}
	return authorities, nil
}

// IsTwoStageApprovalActive is true when any department of member requires it.
func (s *service) IsTwoStageApprovalActive(ctx context.Context, member person.Person) (bool, error) {
	depts, err := s.AssignedDepartmentsOfMember(ctx, member.ID)
	if err != nil {
		return false, err
	}
	for _, d := range depts {
		if d.TwoStageApproval {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) Invalidate(ctx context.Context, personID int64) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, GetMemberDepartmentsKey(personID)).Err()
}

func appendDistinct(dst, src []person.Person, role person.Role) []person.Person {
	for _, p := range src {
		if !p.HasRole(role) || !p.IsActive() || containsPerson(dst, p.ID) {
			continue
		}
		dst = append(dst, p)
	}
	return dst
}

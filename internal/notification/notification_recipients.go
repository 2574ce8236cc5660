package notification

import (
	"context"

	"go-leave/internal/person"
)

func (s *Service) requester(_ context.Context, p parties) ([]person.Person, error) {
	if p.requester.ID == 0 {
		return nil, nil
	}
	return []person.Person{p.requester}, nil
}

func (s *Service) target(_ context.Context, p parties) ([]person.Person, error) {
	if p.target.ID == 0 {
		return nil, nil
	}
	return []person.Person{p.target}, nil
}

func (s *Service) office(ctx context.Context, _ parties) ([]person.Person, error) {
	return s.persons.FindActiveByRole(ctx, person.RoleOffice)
}

func (s *Service) secondStageAuthorities(ctx context.Context, p parties) ([]person.Person, error) {
	return s.org.SecondStageAuthoritiesOf(ctx, p.requester)
}

// approversOfInterest are bosses plus the department heads and second stage
// authorities of the requester, without the requester.
func (s *Service) approversOfInterest(ctx context.Context, p parties) ([]person.Person, error) {
	bosses, err := s.persons.FindActiveByRole(ctx, person.RoleBoss)
	if err != nil {
		return nil, err
	}
	heads, err := s.org.DepartmentHeadsOf(ctx, p.requester)
	if err != nil {
		return nil, err
	}
	authorities, err := s.org.SecondStageAuthoritiesOf(ctx, p.requester)
	if err != nil {
		return nil, err
	}

	var out []person.Person
	for _, group := range [][]person.Person{bosses, heads, authorities} {
		out = merge(out, group, p.requester.ID)
	}
	return out, nil
}

func (s *Service) requesterAnd(others func(context.Context, parties) ([]person.Person, error)) recipientsFunc {
	return func(ctx context.Context, p parties) ([]person.Person, error) {
		rest, err := others(ctx, p)
		if err != nil {
			return nil, err
		}
		own, _ := s.requester(ctx, p)
		return merge(own, rest, 0), nil
	}
}

// merge appends src persons not yet in dst, skipping exclude.
func merge(dst, src []person.Person, exclude int64) []person.Person {
	for _, p := range src {
		if p.ID == exclude {
			continue
		}
		dup := false
		for _, d := range dst {
			if d.ID == p.ID {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, p)
		}
	}
	return dst
}

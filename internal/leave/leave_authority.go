package leave

import (
	"context"

	"go-leave/internal/person"
)

// Organization is the part of the org model the permission checks need.
type Organization interface {
	IsDepartmentHeadOf(ctx context.Context, head, member person.Person) (bool, error)
	IsSecondStageAuthorityOf(ctx context.Context, authority, member person.Person) (bool, error)
	IsTwoStageApprovalActive(ctx context.Context, member person.Person) (bool, error)
}

type Capability uint8

const (
	CapOffice Capability = 1 << iota
	CapBoss
	// actor is second stage authority over the subject
	CapSecondStageAuthority
	// actor is department head over the subject
	CapDepartmentHead
	// subject is second stage authority over the actor
	CapSubjectIsSecondStageAuthority
	// actor and subject are the same person
	CapSelf
)

// Authority is the capability set of an actor towards the owner of an
// application. It is resolved once per operation.
type Authority struct {
	ActorID   int64
	SubjectID int64
	caps      Capability
}

func NewAuthority(actorID, subjectID int64, caps ...Capability) Authority {
	a := Authority{ActorID: actorID, SubjectID: subjectID}
	for _, c := range caps {
		a.caps |= c
	}
	if actorID == subjectID {
		a.caps |= CapSelf
	}
	return a
}

func ResolveAuthority(ctx context.Context, org Organization, actor, subject person.Person) (Authority, error) {
	var caps []Capability
	if actor.HasRole(person.RoleOffice) {
		caps = append(caps, CapOffice)
	}
	if actor.HasRole(person.RoleBoss) {
		caps = append(caps, CapBoss)
	}

	isHead, err := org.IsDepartmentHeadOf(ctx, actor, subject)
	if err != nil {
		return Authority{}, err
	}
	if isHead {
		caps = append(caps, CapDepartmentHead)
	}

	isAuthority, err := org.IsSecondStageAuthorityOf(ctx, actor, subject)
	if err != nil {
		return Authority{}, err
	}
	if isAuthority {
		caps = append(caps, CapSecondStageAuthority)
	}

	subjectIsAuthority, err := org.IsSecondStageAuthorityOf(ctx, subject, actor)
	if err != nil {
		return Authority{}, err
	}
	if subjectIsAuthority {
		caps = append(caps, CapSubjectIsSecondStageAuthority)
	}

	return NewAuthority(actor.ID, subject.ID, caps...), nil
}

func (a Authority) Has(c Capability) bool {
	return a.caps&c != 0
}

type approval int

const (
	approvalDenied approval = iota
	approvalProvisional
	approvalFinal
)

// approval evaluates the approval rules in priority order, first match wins.
func (a Authority) approval(twoStageApproval bool) approval {
	switch {
	case a.Has(CapBoss):
		return approvalFinal
	case a.Has(CapSecondStageAuthority) && !a.Has(CapSelf):
		return approvalFinal
	case a.Has(CapDepartmentHead) && !a.Has(CapSelf) && !a.Has(CapSubjectIsSecondStageAuthority):
		if twoStageApproval {
			return approvalProvisional
		}
		return approvalFinal
	default:
		return approvalDenied
	}
}

func (a Authority) CanApprove(twoStageApproval bool) bool {
	return a.approval(twoStageApproval) != approvalDenied
}

// CanCancelDirectly has neither the own-request exclusion nor
// the subject-is-authority exclusion of the approval rules.
func (a Authority) CanCancelDirectly() bool {
	return a.Has(CapOffice) || a.Has(CapBoss) || a.Has(CapDepartmentHead) || a.Has(CapSecondStageAuthority)
}

func (a Authority) CanActOnBehalf() bool {
	return a.CanCancelDirectly()
}

// IsPrivileged covers the direct entry operations.
func (a Authority) IsPrivileged() bool {
	return a.Has(CapOffice) || a.Has(CapBoss)
}

func (a Authority) IsSelf() bool {
	return a.Has(CapSelf)
}

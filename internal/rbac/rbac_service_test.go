package rbac

import (
	"errors"
	"testing"

	"go-leave/internal/domain"
	"go-leave/internal/person"
	"go-leave/internal/rbac/infra"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type mockRepo struct {
	roles map[int64][]person.Role
	err   error
}

func (m *mockRepo) GetPersonRoles(personID int64) ([]person.Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.roles[personID], nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	enforcer, err := infra.NewEnforcer("")
	assert.NoError(t, err)
	return NewService(repo, enforcer)
}

func TestRBACService_Enforce(t *testing.T) {
	repo := &mockRepo{roles: map[int64][]person.Role{
		1: {person.RoleUser},
		2: {person.RoleDepartmentHead},
		3: {person.RoleOffice},
		4: {person.RoleBoss, person.RoleInactive},
		5: {},
	}}
	service := newTestService(t, repo)

	tests := []struct {
		name     string
		personID int64
		action   string
		allowed  bool
	}{
		{"user can apply", 1, "apply", true},
		{"user can read", 1, "read", true},
		{"user cannot decide", 1, "decide", false},
		{"department head decides", 2, "decide", true},
		{"department head inherits apply", 2, "apply", true},
		{"department head cannot enter directly", 2, "direct", false},
		{"office enters directly", 3, "direct", true},
		{"inactive boss denied", 4, "decide", false},
		{"person without roles is a user", 5, "read", true},
		{"unknown person denied", 99, "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := service.Enforce(domain.EnforceRequest{
				PersonID: tt.personID,
				Resource: "leave",
				Action:   tt.action,
			})
			assert.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestRBACService_EnforceDropsStaleRoles(t *testing.T) {
	repo := &mockRepo{roles: map[int64][]person.Role{1: {person.RoleBoss}}}
	service := newTestService(t, repo)

	req := domain.EnforceRequest{PersonID: 1, Resource: "leave", Action: "direct"}

	allowed, err := service.Enforce(req)
	assert.NoError(t, err)
	assert.True(t, allowed)

	repo.roles[1] = []person.Role{person.RoleUser}

	allowed, err = service.Enforce(req)
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestRBACService_EnforceRepoError(t *testing.T) {
	service := newTestService(t, &mockRepo{err: errors.New("db down")})

	allowed, err := service.Enforce(domain.EnforceRequest{PersonID: 1, Resource: "leave", Action: "read"})

	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestRepository_GetPersonRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)

	repo := NewRepository(gdb)

	mock.ExpectQuery(`SELECT roles FROM "persons" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"roles"}).AddRow(`["OFFICE","USER"]`))

	roles, err := repo.GetPersonRoles(7)
	assert.NoError(t, err)
	assert.Equal(t, []person.Role{person.RoleOffice, person.RoleUser}, roles)

	mock.ExpectQuery(`SELECT roles FROM "persons" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"roles"}))

	roles, err = repo.GetPersonRoles(8)
	assert.NoError(t, err)
	assert.Nil(t, roles)

	assert.NoError(t, mock.ExpectationsWereMet())
}

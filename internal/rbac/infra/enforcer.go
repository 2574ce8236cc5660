package infra

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const DefaultModel = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// DefaultPolicy maps person roles to route permissions. Role inheritance is
// expressed as grouping rows.
var DefaultPolicy = [][]string{
	{"USER", "leave", "read"},
	{"USER", "leave", "apply"},
	{"DEPARTMENT_HEAD", "leave", "decide"},
	{"SECOND_STAGE_AUTHORITY", "leave", "decide"},
	{"OFFICE", "leave", "decide"},
	{"OFFICE", "leave", "direct"},
	{"BOSS", "leave", "decide"},
	{"BOSS", "leave", "direct"},
}

var DefaultGrouping = [][]string{
	{"DEPARTMENT_HEAD", "USER"},
	{"SECOND_STAGE_AUTHORITY", "USER"},
	{"OFFICE", "USER"},
	{"BOSS", "USER"},
}

// NewEnforcer loads the model from modelPath, or the built in model when the
// path is empty, and seeds the default policy.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	var (
		e   *casbin.Enforcer
		err error
	)
	if modelPath != "" {
		e, err = casbin.NewEnforcer(modelPath)
	} else {
		var m model.Model
		m, err = model.NewModelFromString(DefaultModel)
		if err != nil {
			return nil, err
		}
		e, err = casbin.NewEnforcer(m)
	}
	if err != nil {
		return nil, err
	}

	if _, err := e.AddPolicies(DefaultPolicy); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicies(DefaultGrouping); err != nil {
		return nil, err
	}
	return e, nil
}

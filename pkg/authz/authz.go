package authz

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"github.com/sirupsen/logrus"

	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/serrors"
)

var ErrForbidden = serrors.NewError("FORBIDDEN", "operation not permitted", "")

// ObjectName builds the canonical "<module>.<resource>" object identifier.
func ObjectName(module, resource string) string {
	return module + "." + resource
}

const builtinModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (keyMatch(r.obj, p.obj) || p.obj == "*") && (r.act == p.act || p.act == "*")
`

// builtinPolicies is the default grid applied when no policy file is
// configured. Ownership checks (an employee touching only their own goals)
// live in the services, not here.
var builtinPolicies = [][]string{
	{"admin", "*", "*"},
	{"supervisor", "evaluation.reviews", "*"},
	{"supervisor", "evaluation.assessments", "read"},
	{"supervisor", "org.assignments", "read"},
	{"employee", "evaluation.goals", "read"},
	{"employee", "evaluation.goals", "create"},
	{"employee", "evaluation.goals", "update"},
	{"employee", "evaluation.assessments", "read"},
	{"employee", "evaluation.assessments", "update"},
	{"employee", "evaluation.assessments", "submit"},
	{"employee", "evaluation.periods", "read"},
	{"employee", "org.stages", "read"},
	{"employee", "org.units", "read"},
	{"employee", "org.employees", "read"},
}

var builtinGroupings = [][]string{
	{"supervisor", "employee"},
	{"admin", "supervisor"},
}

type Config struct {
	ModelPath  string
	PolicyPath string
	Logger     *logrus.Logger
}

type Enforcer struct {
	enforcer *casbin.Enforcer
}

// New builds an enforcer from the configured model/policy files, falling back
// to the built-in grid when either file is missing.
func New(conf Config) (*Enforcer, error) {
	if fileExists(conf.ModelPath) && fileExists(conf.PolicyPath) {
		e, err := casbin.NewEnforcer(conf.ModelPath, conf.PolicyPath)
		if err != nil {
			return nil, err
		}
		return &Enforcer{enforcer: e}, nil
	}

	if conf.Logger != nil {
		conf.Logger.Info("authz: policy files not found, using built-in policy grid")
	}
	m, err := casbinmodel.NewModelFromString(builtinModel)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	for _, p := range builtinPolicies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	for _, g := range builtinGroupings {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}
	return &Enforcer{enforcer: e}, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Authorize checks the context user's role against the object/action pair.
func (e *Enforcer) Authorize(ctx context.Context, object, action string) error {
	user, err := composables.UseUser(ctx)
	if err != nil {
		return ErrForbidden
	}
	ok, err := e.enforcer.Enforce(user.Role.String(), object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

var defaultEnforcer atomic.Pointer[Enforcer]

// SetDefault installs the process-wide enforcer used by Authorize.
func SetDefault(e *Enforcer) {
	defaultEnforcer.Store(e)
}

// Authorize checks against the default enforcer. With no enforcer installed
// the check passes; services stub this in tests.
func Authorize(ctx context.Context, object, action string) error {
	e := defaultEnforcer.Load()
	if e == nil {
		return nil
	}
	return e.Authorize(ctx, object, action)
}

package combatlog

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// FilterEnv is the environment a user filter expression is evaluated against.
// Field names are the identifiers available in the expression.
type FilterEnv struct {
	Kind          string // "encounter" or "dungeon"
	BossID        int
	Name          string
	DifficultyID  int
	Difficulty    string
	InstanceID    int
	GroupSize     int
	KeystoneLevel int
}

// Filter is a compiled boolean expression, e.g.
//
//	Kind == "dungeon" || (DifficultyID in [15, 16] && BossID != 2902)
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles source. An empty source yields a nil filter that
// accepts everything.
func CompileFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(FilterEnv{}), expr.AsBool())
	if err != nil {
		return nil, rrerrors.NewFilterError(source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// Match evaluates the filter. A nil filter matches.
func (f *Filter) Match(env FilterEnv) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// String returns the expression source.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

package policy

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/core"
)

// Gate evaluates an optional expr-lang expression against the viewer binding
// before any network call is made. An empty expression allows everything.
type Gate struct {
	source  string
	program *vm.Program
}

// Compile builds a gate from an expression over external_viewer_id and
// external_value, e.g. `external_viewer_id startsWith "user_"`.
func Compile(expression string) (*Gate, error) {
	if expression == "" {
		return &Gate{}, nil
	}
	program, err := expr.Compile(expression,
		expr.Env(gateEnv(core.ViewerRequest{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling viewer policy: %w", err)
	}
	return &Gate{source: expression, program: program}, nil
}

// Allow reports whether the viewer may trigger an exchange.
func (g *Gate) Allow(viewer core.ViewerRequest) (bool, error) {
	if g.program == nil {
		return true, nil
	}
	out, err := expr.Run(g.program, gateEnv(viewer))
	if err != nil {
		return false, fmt.Errorf("evaluating viewer policy: %w", err)
	}
	allowed, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("viewer policy returned %T, want bool", out)
	}
	return allowed, nil
}

func gateEnv(viewer core.ViewerRequest) map[string]any {
	return map[string]any{
		"external_viewer_id": viewer.ExternalViewerID,
		"external_value":     viewer.ExternalValue,
	}
}

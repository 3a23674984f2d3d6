package executor

import (
	"strings"

	"github.com/hanpama/restgraph/internal/faults"
)

// resolveArgs substitutes $var references in parsed argument values
// with caller-supplied variable values.
//
// strict controls the two divergent behaviors for unresolved
// references: top-level query and mutation arguments are structurally
// required to build the request, so an unknown variable is a hard
// validation fault; nested resource arguments silently drop the
// reference instead.
func resolveArgs(args map[string]string, variables map[string]any, strict bool) (map[string]any, error) {
	resolved := make(map[string]any, len(args))
	for name, value := range args {
		if !strings.HasPrefix(value, "$") {
			resolved[name] = value
			continue
		}
		varName := strings.TrimPrefix(value, "$")
		v, ok := variables[varName]
		if !ok {
			if strict {
				return nil, faults.Validationf("argument %q references unknown variable $%s", name, varName)
			}
			continue
		}
		resolved[name] = v
	}
	return resolved, nil
}

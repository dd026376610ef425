// Package rules validates automation rules before they are submitted to
// the bridge. Validation is local and synchronous; an invalid rule never
// reaches the network.
package rules

import (
	"fmt"
	"strings"

	"github.com/lightpanel/lightpaneld/internal/bridge"
)

// Operators accepted in rule conditions.
var validOperators = map[string]bool{
	"eq":         true,
	"gt":         true,
	"lt":         true,
	"dx":         true,
	"ddx":        true,
	"stable":     true,
	"not stable": true,
	"in":         true,
	"not in":     true,
}

// Methods accepted in rule actions.
var validMethods = map[string]bool{
	"PUT":    true,
	"POST":   true,
	"DELETE": true,
}

// Validate checks a rule and returns the list of problems found. An empty
// list means the rule may be submitted.
func Validate(rule *bridge.Rule) []string {
	var problems []string

	if strings.TrimSpace(rule.Name) == "" {
		problems = append(problems, "name is required")
	}

	if len(rule.Conditions) == 0 {
		problems = append(problems, "at least one condition is required")
	}
	for i, cond := range rule.Conditions {
		if strings.TrimSpace(cond.Address) == "" {
			problems = append(problems, fmt.Sprintf("condition %d: address is required", i))
		}
		if cond.Operator == "" {
			problems = append(problems, fmt.Sprintf("condition %d: operator is required", i))
		} else if !validOperators[cond.Operator] {
			problems = append(problems, fmt.Sprintf("condition %d: unknown operator %q", i, cond.Operator))
		}
		// dx and ddx trigger on change and take no value
		if cond.Operator != "dx" && cond.Operator != "ddx" && cond.Value == "" {
			problems = append(problems, fmt.Sprintf("condition %d: value is required for operator %q", i, cond.Operator))
		}
	}

	if len(rule.Actions) == 0 {
		problems = append(problems, "at least one action is required")
	}
	for i, action := range rule.Actions {
		if strings.TrimSpace(action.Address) == "" {
			problems = append(problems, fmt.Sprintf("action %d: address is required", i))
		}
		if action.Method == "" {
			problems = append(problems, fmt.Sprintf("action %d: method is required", i))
		} else if !validMethods[action.Method] {
			problems = append(problems, fmt.Sprintf("action %d: unknown method %q", i, action.Method))
		}
		if len(action.Body) == 0 && action.Method != "DELETE" {
			problems = append(problems, fmt.Sprintf("action %d: body is required", i))
		}
	}

	return problems
}

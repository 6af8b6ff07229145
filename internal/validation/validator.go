package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"

	"github.com/mmrzaf/tsgen/internal/builders"
	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/registry"
	"github.com/mmrzaf/tsgen/internal/timeutil"
)

type Validator struct {
	factorRegistry *registry.FactorRegistry
	structs        *validator.Validate
	clock          clockwork.Clock
}

func NewValidator(factorRegistry *registry.FactorRegistry) *Validator {
	return NewValidatorWithClock(factorRegistry, clockwork.NewRealClock())
}

// NewValidatorWithClock resolves relative window dates against clock.
func NewValidatorWithClock(factorRegistry *registry.FactorRegistry, clock clockwork.Clock) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return IsValidIdentifier(fl.Field().String())
	})
	return &Validator{factorRegistry: factorRegistry, structs: v, clock: clock}
}

// identifier validation: dimension and factor names become output column names.
var (
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reservedWords = map[string]struct{}{
		"all": {}, "and": {}, "as": {}, "by": {}, "case": {}, "column": {},
		"create": {}, "date": {}, "default": {}, "delete": {}, "drop": {},
		"else": {}, "end": {}, "false": {}, "from": {}, "group": {},
		"in": {}, "index": {}, "insert": {}, "is": {}, "join": {},
		"not": {}, "null": {}, "or": {}, "order": {}, "select": {},
		"table": {}, "then": {}, "true": {}, "union": {}, "update": {},
		"user": {}, "values": {}, "when": {}, "where": {}, "with": {},
	}
)

func IsValidIdentifier(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !identRe.MatchString(s) {
		return false
	}
	if _, ok := reservedWords[strings.ToLower(s)]; ok {
		return false
	}
	return true
}

func (v *Validator) ValidateScenario(scenario *domain.Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	if err := v.structs.Struct(scenario); err != nil {
		return formatStructError(err)
	}

	if err := v.validateWindow(scenario.Start, scenario.End); err != nil {
		return err
	}

	dimNames := make(map[string]bool, len(scenario.Dimensions))
	for _, dim := range scenario.Dimensions {
		if err := validateDimension(&dim, dimNames); err != nil {
			return fmt.Errorf("dimension '%s': %w", dim.Name, err)
		}
	}

	factorNames := make(map[string]bool, len(scenario.Factors))
	for _, f := range scenario.Factors {
		if err := v.validateFactor(&f, factorNames, dimNames); err != nil {
			return fmt.Errorf("factor '%s': %w", f.Name, err)
		}
	}

	if err := validateDependencies(scenario); err != nil {
		return fmt.Errorf("dependency validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateWindow(start, end string) error {
	now := v.clock.Now()
	s, err := timeutil.ParseDate(start, now)
	if err != nil {
		return fmt.Errorf("invalid start: %w", err)
	}
	e, err := timeutil.ParseDate(end, now)
	if err != nil {
		return fmt.Errorf("invalid end: %w", err)
	}
	if s.After(e) {
		return fmt.Errorf("start %s is after end %s", start, end)
	}
	return nil
}

func validateDimension(dim *domain.DimensionSpec, dimNames map[string]bool) error {
	if dimNames[dim.Name] {
		return fmt.Errorf("duplicate dimension name: %s", dim.Name)
	}
	dimNames[dim.Name] = true

	hasValues := len(dim.Values) > 0
	hasGenerate := dim.Generate != nil
	if hasValues == hasGenerate {
		return errors.New("exactly one of values or generate must be provided")
	}

	seen := make(map[string]bool, len(dim.Values))
	for _, val := range dim.Values {
		if val == "" {
			return errors.New("empty dimension value")
		}
		if seen[val] {
			return fmt.Errorf("duplicate dimension value: %s", val)
		}
		seen[val] = true
	}
	return nil
}

func (v *Validator) validateFactor(f *domain.FactorSpec, factorNames, dimNames map[string]bool) error {
	if factorNames[f.Name] {
		return fmt.Errorf("duplicate factor name: %s", f.Name)
	}
	factorNames[f.Name] = true
	if dimNames[f.Name] {
		return fmt.Errorf("factor name collides with dimension: %s", f.Name)
	}

	b, err := v.factorRegistry.Get(f.Type)
	if err != nil {
		return fmt.Errorf("factor type not found: %s", f.Type)
	}
	if err := b.Validate(*f); err != nil {
		return fmt.Errorf("params validation failed: %w", err)
	}

	used := make(map[string]bool, len(f.Dimensions))
	for _, name := range f.Dimensions {
		if !dimNames[name] {
			return fmt.Errorf("unknown dimension: %s", name)
		}
		if used[name] {
			return fmt.Errorf("dimension listed twice: %s", name)
		}
		used[name] = true
	}
	return nil
}

func validateDependencies(scenario *domain.Scenario) error {
	factorMap := make(map[string]bool, len(scenario.Factors))
	for _, f := range scenario.Factors {
		factorMap[f.Name] = true
	}

	graph := make(map[string][]string)
	for _, f := range scenario.Factors {
		deps := builders.Dependencies(f)
		for _, ref := range deps {
			if !factorMap[ref] {
				return fmt.Errorf("factor '%s': referenced factor '%s' not found", f.Name, ref)
			}
		}
		graph[f.Name] = deps
	}

	if hasCycle(graph) {
		return errors.New("cyclic dependencies detected")
	}

	return nil
}

func hasCycle(graph map[string][]string) bool {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	for node := range graph {
		if !visited[node] {
			if hasCycleDFS(node, graph, visited, recStack) {
				return true
			}
		}
	}
	return false
}

func hasCycleDFS(node string, graph map[string][]string, visited, recStack map[string]bool) bool {
	visited[node] = true
	recStack[node] = true

	for _, neighbor := range graph[node] {
		if !visited[neighbor] {
			if hasCycleDFS(neighbor, graph, visited, recStack) {
				return true
			}
		} else if recStack[neighbor] {
			return true
		}
	}

	recStack[node] = false
	return false
}

func (v *Validator) ValidateRunRequest(req *domain.RunRequest) error {
	hasScenarioID := req.ScenarioID != ""
	hasScenario := req.Scenario != nil

	if !hasScenarioID && !hasScenario {
		return errors.New("either scenario_id or scenario must be provided")
	}

	if hasScenarioID && hasScenario {
		return errors.New("only one of scenario_id or scenario must be provided")
	}

	now := v.clock.Now()
	if req.Start != "" {
		if _, err := timeutil.ParseDate(req.Start, now); err != nil {
			return fmt.Errorf("invalid start: %w", err)
		}
	}
	if req.End != "" {
		if _, err := timeutil.ParseDate(req.End, now); err != nil {
			return fmt.Errorf("invalid end: %w", err)
		}
	}
	if req.Start != "" && req.End != "" {
		if err := v.validateWindow(req.Start, req.End); err != nil {
			return err
		}
	}

	if req.Scenario != nil {
		if err := v.ValidateScenario(req.Scenario); err != nil {
			return fmt.Errorf("scenario validation failed: %w", err)
		}
	}

	return nil
}

// TopologicalSort orders factors so that every factor follows the factors it
// transforms. Ties keep declaration order.
func TopologicalSort(scenario *domain.Scenario) ([]string, error) {
	graph := make(map[string][]string) // dependency -> dependents
	inDegree := make(map[string]int)
	order := make(map[string]int, len(scenario.Factors))

	for i, f := range scenario.Factors {
		order[f.Name] = i
		if _, ok := inDegree[f.Name]; !ok {
			inDegree[f.Name] = 0
		}
		for _, ref := range builders.Dependencies(f) {
			graph[ref] = append(graph[ref], f.Name)
			inDegree[f.Name]++
		}
	}

	byDeclaration := func(q []string) {
		sort.Slice(q, func(i, j int) bool { return order[q[i]] < order[q[j]] })
	}

	queue := make([]string, 0)
	for _, f := range scenario.Factors {
		if inDegree[f.Name] == 0 {
			queue = append(queue, f.Name)
		}
	}

	result := make([]string, 0, len(scenario.Factors))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range graph[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		byDeclaration(queue)
	}

	if len(result) != len(scenario.Factors) {
		return nil, errors.New("cycle detected in factor dependencies")
	}

	return result, nil
}

func formatStructError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "ident":
		return fmt.Sprintf("%s must be a valid identifier, got %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

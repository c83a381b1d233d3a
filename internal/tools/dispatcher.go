// Package tools implements the six soapbridge operations behind a fixed
// dispatcher. Handlers are pure functions of their arguments and the clock:
// they never touch the filesystem, the network or a process.
package tools

import (
	"slices"
	"strings"
	"time"

	"github.com/soapbridge/soapbridge/internal/core"
	"github.com/soapbridge/soapbridge/internal/testrunner"
)

// Clock supplies the timestamp embedded in every success text.
type Clock func() time.Time

type handlerFunc func(args Arguments) core.Result

// Dispatcher routes a tool name to its handler group. The registry is built
// once in NewDispatcher and never mutated afterwards, so a Dispatcher is
// safe for concurrent use.
type Dispatcher struct {
	registry map[string]handlerFunc
	policy   *core.Policy
	redactor *core.Redactor
}

type options struct {
	now      Clock
	policy   *core.Policy
	runner   *testrunner.Runner
	redactor *core.Redactor
}

// Option customizes a Dispatcher.
type Option func(*options)

func WithClock(now Clock) Option {
	return func(o *options) { o.now = now }
}

func WithPolicy(p *core.Policy) Option {
	return func(o *options) { o.policy = p }
}

func WithRunner(r *testrunner.Runner) Option {
	return func(o *options) { o.runner = r }
}

func WithRedactor(r *core.Redactor) Option {
	return func(o *options) { o.redactor = r }
}

// handlers carries what the leaf functions share.
type handlers struct {
	now      Clock
	runner   *testrunner.Runner
	redactor *core.Redactor
}

func (h *handlers) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

func NewDispatcher(opts ...Option) *Dispatcher {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runner == nil {
		o.runner = testrunner.NewRunner(testrunner.Config{})
	}
	if o.redactor == nil {
		o.redactor = core.NewRedactor()
	}
	h := &handlers{now: o.now, runner: o.runner, redactor: o.redactor}

	return &Dispatcher{
		registry: map[string]handlerFunc{
			ToolAnalyzeProject:     h.analyzeProject,
			ToolExecuteTestSuite:   h.executeTestSuite,
			ToolManageSOAPServices: h.manageSOAPServices,
			ToolManageRESTServices: h.manageRESTServices,
			ToolManageAssertions:   h.manageAssertions,
			ToolManageTestData:     h.manageTestData,
		},
		policy:   o.policy,
		redactor: o.redactor,
	}
}

// Resolve reports whether name can be called: UnknownOperationError for a
// name outside the registry, ToolDisabledError when policy switched it off.
func (d *Dispatcher) Resolve(name string) error {
	if _, ok := d.registry[name]; !ok {
		return &core.UnknownOperationError{Name: name}
	}
	return d.policy.CheckTool(name)
}

// Call runs the named tool. An unresolvable name yields an isError envelope
// naming the tool; anything else is the handler group's envelope, returned
// untouched.
func (d *Dispatcher) Call(name string, args map[string]any) core.Result {
	if err := d.Resolve(name); err != nil {
		return core.ErrorResult(err.Error())
	}
	return d.registry[name](Arguments(args))
}

// Definitions lists the tools this dispatcher will serve.
func (d *Dispatcher) Definitions() []Definition {
	all := Definitions()
	out := all[:0]
	for _, def := range all {
		if d.policy.Allows(def.Name) {
			out = append(out, def)
		}
	}
	return out
}

// ActionOf extracts the discriminator of a call for logs, metrics and the
// audit trail. Non-string values are ignored.
func ActionOf(name string, args map[string]any) string {
	key := "action"
	switch name {
	case ToolAnalyzeProject:
		key = "analysisType"
	case ToolExecuteTestSuite:
		key = "testRunner"
	}
	v, _ := Arguments(args).str(key)
	return strings.ToLower(strings.TrimSpace(v))
}

var actionValues = map[string][]string{
	ToolAnalyzeProject:     AnalysisTypes,
	ToolExecuteTestSuite:   TestRunners,
	ToolManageSOAPServices: SOAPActions,
	ToolManageRESTServices: RESTActions,
	ToolManageAssertions:   AssertionAction,
	ToolManageTestData:     TestDataActions,
}

// MetricAction maps an action onto a bounded label value: known values pass
// through, anything else becomes "unknown". Empty stays empty.
func MetricAction(name, action string) string {
	if action == "" || slices.Contains(actionValues[name], action) {
		return action
	}
	return "unknown"
}

// respond is the group boundary: a leaf error becomes a normal envelope
// whose text starts with the group's prefix.
func respond(prefix, text string, err error) core.Result {
	if err != nil {
		return core.TextResult(prefix + ": " + err.Error())
	}
	return core.TextResult(text)
}

package invoker

import (
	"fmt"
	"reflect"
	"sync"
)

// Constructors is the construction registry: it maps a target type to its
// named candidate factories and selects exactly one strategy per
// (type, raw value) pair.
//
// Go reflection cannot enumerate package-level factory functions, so
// candidates are declared at startup:
//
//	cons := invoker.NewConstructors()
//	cons.Register(CompanyID{},
//	    invoker.Factory("fromString", NewCompanyIDFromString),
//	)
//
// A candidate must take exactly one parameter and return the target type,
// either alone or with a trailing error. Tag a candidate with Tagged to
// make it authoritative; an untagged type with two or more eligible
// candidates for the same raw value fails with AmbiguousConstructionError
// rather than silently picking one.
//
// Constructors is safe for concurrent use after registration is complete.
// Do not call Register after handlers start executing.
type Constructors struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*typeEntry
}

type typeEntry struct {
	tagged     string
	candidates []candidate
}

// candidate is one registered construction strategy with its shape
// validation computed eagerly. Shape problems surface at construction
// time, not registration time: an invalid untagged candidate is silently
// ineligible, an invalid tagged candidate is a configuration error.
type candidate struct {
	name   string
	fn     reflect.Value
	param  reflect.Type
	hasErr bool
	reason string // non-empty when the shape is invalid
}

// CandidateOption configures one type registration.
type CandidateOption func(*typeEntry)

// Factory registers a named construction candidate. The name appears in
// error messages and is the handle Tagged refers to.
func Factory(name string, fn any) CandidateOption {
	return func(e *typeEntry) {
		e.candidates = append(e.candidates, candidate{name: name, fn: reflect.ValueOf(fn)})
	}
}

// Tagged marks the named candidate as the single authoritative strategy
// for the type. At most one tag per type; a later Tagged replaces an
// earlier one.
func Tagged(name string) CandidateOption {
	return func(e *typeEntry) {
		e.tagged = name
	}
}

// NewConstructors creates an empty construction registry.
func NewConstructors() *Constructors {
	return &Constructors{entries: make(map[reflect.Type]*typeEntry)}
}

// Register declares the construction candidates for the type of target.
// Pass a zero value of the target type. Repeated calls for the same type
// accumulate candidates.
func (c *Constructors) Register(target any, opts ...CandidateOption) {
	t := refType(target)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[t]
	if !ok {
		entry = &typeEntry{}
		c.entries[t] = entry
	}
	before := len(entry.candidates)
	for _, opt := range opts {
		opt(entry)
	}
	for i := before; i < len(entry.candidates); i++ {
		validateShape(t, &entry.candidates[i])
	}
}

// validateShape checks that a candidate is a func taking exactly one
// parameter and returning the target type, optionally with a trailing
// error.
func validateShape(target reflect.Type, cand *candidate) {
	if !cand.fn.IsValid() || cand.fn.Kind() != reflect.Func {
		cand.reason = "not a func"
		return
	}
	ft := cand.fn.Type()
	if ft.NumIn() != 1 || ft.IsVariadic() {
		cand.reason = fmt.Sprintf("takes %d parameters, want exactly 1", ft.NumIn())
		return
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			cand.reason = "second return value must be error"
			return
		}
		cand.hasErr = true
	default:
		cand.reason = fmt.Sprintf("returns %d values, want 1 or 2", ft.NumOut())
		return
	}
	if ft.Out(0) != target {
		cand.reason = fmt.Sprintf("returns %s, want %s", ft.Out(0), target)
		return
	}
	cand.param = ft.In(0)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Construct builds an instance of target from a raw value by selecting
// exactly one registered strategy.
//
// A tagged type uses only its tagged candidate: shape problems fail with
// InvalidTaggedStrategyError and a rejected raw value fails with
// RejectedValueError, regardless of other candidates. An untagged type
// enumerates candidates whose parameter accepts the raw value: zero
// eligible fails with NoConstructionStrategyError, two or more with
// AmbiguousConstructionError. The raw value is coerced to the chosen
// candidate's own parameter type just before the call, since a factory may
// accept a different primitive kind than the value object it produces.
func (c *Constructors) Construct(target reflect.Type, raw any) (any, error) {
	c.mu.RLock()
	entry, ok := c.entries[target]
	c.mu.RUnlock()
	if !ok {
		return nil, &NoConstructionStrategyError{Target: target}
	}

	if entry.tagged != "" {
		return c.constructTagged(target, entry, raw)
	}

	var eligible []*candidate
	for i := range entry.candidates {
		cand := &entry.candidates[i]
		if cand.reason != "" {
			continue
		}
		if !Accepts([]Type{typeOf(cand.param)}, canBeNil(cand.param), raw) {
			continue
		}
		eligible = append(eligible, cand)
	}

	switch len(eligible) {
	case 0:
		return nil, &NoConstructionStrategyError{Target: target}
	case 1:
		return invokeCandidate(target, eligible[0], raw)
	}
	names := make([]string, len(eligible))
	for i, cand := range eligible {
		names[i] = cand.name
	}
	return nil, &AmbiguousConstructionError{Target: target, Candidates: names}
}

func (c *Constructors) constructTagged(target reflect.Type, entry *typeEntry, raw any) (any, error) {
	var tagged *candidate
	for i := range entry.candidates {
		if entry.candidates[i].name == entry.tagged {
			tagged = &entry.candidates[i]
			break
		}
	}
	if tagged == nil {
		return nil, &InvalidTaggedStrategyError{Target: target, Method: entry.tagged, Reason: "no candidate registered under that name"}
	}
	if tagged.reason != "" {
		return nil, &InvalidTaggedStrategyError{Target: target, Method: tagged.name, Reason: tagged.reason}
	}
	if !Accepts([]Type{typeOf(tagged.param)}, canBeNil(tagged.param), raw) {
		return nil, &RejectedValueError{Target: target, Method: tagged.name, Value: raw}
	}
	return invokeCandidate(target, tagged, raw)
}

func invokeCandidate(target reflect.Type, cand *candidate, raw any) (any, error) {
	arg, err := coerce(cand.param, raw)
	if err != nil {
		return nil, &RejectedValueError{Target: target, Method: cand.name, Value: raw}
	}
	argv := reflect.ValueOf(arg)
	if !argv.IsValid() {
		argv = reflect.Zero(cand.param)
	}
	out := cand.fn.Call([]reflect.Value{argv})
	if cand.hasErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	instance := out[0].Interface()

	// A factory whose static return widens to an interface could hand back
	// anything; the produced instance must be of the requested type.
	if target.Kind() == reflect.Interface {
		if instance == nil || !reflect.TypeOf(instance).Implements(target) {
			return nil, fmt.Errorf("invoker: candidate %q for %s produced %T", cand.name, target, instance)
		}
	} else if reflect.TypeOf(instance) != target {
		return nil, fmt.Errorf("invoker: candidate %q for %s produced %T", cand.name, target, instance)
	}
	return instance, nil
}

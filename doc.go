// Package invoker binds raw named values to typed handler parameters and
// dispatches calls between two handler shapes.
//
// The package sits between an incoming request-like context and a handler
// callable. Given a handler with declared parameter types and a bag of raw
// named values (route segments, a payload object, framework objects), it
// decides per parameter what value to supply, coercing raw scalars and
// constructing typed value objects, and decides per call whether a
// registered handler runs through the dynamic path (resolver chain plus
// reflective invocation) or the conventional path (the framework's fixed
// Processor/Provider contracts).
//
// # Quick Start
//
// Declare how value objects are built:
//
//	type CompanyID string
//
//	func NewCompanyIDFromString(s string) (CompanyID, error) {
//	    return CompanyID(strings.ToLower(s)), nil
//	}
//
//	cons := invoker.NewConstructors()
//	cons.Register(CompanyID(""),
//	    invoker.Factory("fromString", NewCompanyIDFromString),
//	)
//
// Register a freeform callable and decorate the framework's fixed-contract
// handler:
//
//	registry := invoker.NewHandlerRegistry()
//	registry.Register("company.lookup",
//	    func(ctx context.Context, id CompanyID) (*Company, error) {
//	        return companies.Find(ctx, id)
//	    },
//	    invoker.WithParams("companyId"),
//	)
//
//	bridge := invoker.NewReadBridge(cons)
//	provider := invoker.DecorateProvider(inner, registry, bridge)
//
// Every call whose operation names a registered callable now resolves its
// arguments from the raw named values; every other call passes to inner
// unchanged.
//
// # Construction Strategies
//
// A target type is built by exactly one strategy per call. Candidates are
// registered by name with Factory; a candidate takes exactly one parameter
// and returns the target type, optionally with a trailing error. When two
// or more candidates accept the same raw value the engine fails with
// AmbiguousConstructionError instead of picking one; tag the authoritative
// candidate with Tagged to resolve the ambiguity:
//
//	cons.Register(Money{},
//	    invoker.Factory("fromString", ParseMoney),
//	    invoker.Factory("fromMinorUnits", MoneyFromMinorUnits),
//	    invoker.Tagged("fromString"),
//	)
//
// The raw value is coerced to the chosen candidate's own parameter type at
// the last moment: a factory declaring an int parameter receives int 456
// from the route value "456".
//
// # Acceptance and Coercion
//
// One pure module decides whether a raw value satisfies a declared type,
// and both the resolver chain and the construction registry use it. A
// single declared kind is lenient (an int parameter accepts "123"); a
// union of kinds is strict per branch (string|int rejects a float),
// because declaring a union signals the caller discriminates on exact
// kind.
//
// # Resolver Chain
//
// Each parameter is offered to the resolvers in priority order and the
// first value wins: route values (explicit binding first, then matching
// the parameter's own name), the payload object (reserved aliases data,
// payload, input, or a matching declared type), then the operation
// descriptor. External resolvers plug in after the core chain:
//
//	bridge := invoker.NewReadBridge(cons,
//	    invoker.WithResolver(myTenantResolver),
//	)
//
// # Hooks
//
// Hooks provide observability without coupling to a logging or metrics
// system:
//
//	bridge := invoker.NewWriteBridge(cons,
//	    invoker.WithOnResolve(func(ctx context.Context, handler, param, resolver string) {
//	        slog.DebugContext(ctx, "resolved", "handler", handler, "param", param, "via", resolver)
//	    }),
//	    invoker.WithOnFailure(func(ctx context.Context, handler string, err error, d time.Duration) {
//	        metrics.Incr("invoke.error", "handler:"+handler)
//	    }),
//	)
//
// # Thread Safety
//
// Constructors, HandlerRegistry and the bridges are safe for concurrent
// use after configuration is complete. Do not register types or handlers
// after calls start flowing. Carriers and invocation contexts belong to a
// single call and are never shared.
package invoker

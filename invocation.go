package invoker

// Operation describes the matched route: an opaque name, the identifier of
// the handler configured for it, and whatever extra metadata the framework
// attaches.
type Operation struct {
	// Name identifies the operation, e.g. "company.get".
	Name string

	// Handler is the registered handler identifier the dispatch layer
	// looks up. Empty means the operation did not opt into dynamic
	// dispatch.
	Handler string

	// Values carries framework metadata the engine does not interpret.
	Values map[string]any
}

// Reserved carrier attribute keys the bridge writes for resolvers to read
// back.
const (
	// AttrRouteParams holds the merged raw named values.
	AttrRouteParams = "route-params"

	// AttrOperation holds the *Operation for the call.
	AttrOperation = "operation"
)

// Carrier is the mutable request-like object threaded through a call. The
// framework owns it; the engine reads and writes attributes on it to
// propagate context between resolvers. Implementations need not be safe
// for concurrent use: a carrier belongs to a single call.
type Carrier interface {
	// Attribute returns the value stored under key.
	Attribute(key string) (any, bool)

	// SetAttribute stores value under key.
	SetAttribute(key string, value any)
}

// AttributeCarrier is a map-backed Carrier for frameworks that do not
// bring their own request object.
type AttributeCarrier struct {
	attrs map[string]any
}

// NewCarrier creates an empty AttributeCarrier.
func NewCarrier() *AttributeCarrier {
	return &AttributeCarrier{attrs: make(map[string]any)}
}

func (c *AttributeCarrier) Attribute(key string) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

func (c *AttributeCarrier) SetAttribute(key string, value any) {
	c.attrs[key] = value
}

// Invocation is the per-call resolution context handed to resolvers. It is
// created fresh for every call and discarded when the handler returns.
type Invocation struct {
	// Params are the raw named values, typically URI segments keyed by
	// route variable name.
	Params map[string]any

	// Payload is the domain input object, nil for read calls.
	Payload any

	// Operation is the matched route's descriptor, nil when the call did
	// not come through routing.
	Operation *Operation

	// Carrier is the request-like object for the call.
	Carrier Carrier
}

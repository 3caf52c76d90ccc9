package invoker

import (
	"context"
	"testing"
)

type innerProcessor struct {
	called bool
	op     *Operation
}

func (p *innerProcessor) Process(ctx context.Context, data any, op *Operation, params map[string]any, carrier Carrier) (any, error) {
	p.called = true
	p.op = op
	return data, nil
}

type innerProvider struct {
	called bool
}

func (p *innerProvider) Provide(ctx context.Context, op *Operation, params map[string]any, carrier Carrier) (any, error) {
	p.called = true
	return &company{ID: "conventional"}, nil
}

// fixedProvider is a registered value that implements the fixed contract,
// so it must dispatch conventionally even though it is registered.
type fixedProvider struct{}

func (fixedProvider) Provide(ctx context.Context, op *Operation, params map[string]any, carrier Carrier) (any, error) {
	return &company{ID: "fixed"}, nil
}

func TestProviderDecorator(t *testing.T) {
	newDecorated := func(t *testing.T) (*ProviderDecorator, *innerProvider, *HandlerRegistry) {
		t.Helper()
		registry := NewHandlerRegistry()
		inner := &innerProvider{}
		bridge := NewReadBridge(newTestConstructors())
		return DecorateProvider(inner, registry, bridge), inner, registry
	}

	t.Run("registered callable uses the dynamic path", func(t *testing.T) {
		dec, inner, registry := newDecorated(t)
		err := registry.Register("company.lookup",
			func(id companyID) (*company, error) { return &company{ID: id}, nil },
			WithParams("companyId"),
		)
		if err != nil {
			t.Fatalf("Register: %v", err)
		}

		result, err := dec.Provide(context.Background(), &Operation{Handler: "company.lookup"},
			map[string]any{"companyId": "Acme"}, NewCarrier())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.(*company).ID != "acme" {
			t.Errorf("ID = %q, want dynamic result", result.(*company).ID)
		}
		if inner.called {
			t.Error("inner provider must not be called on the dynamic path")
		}
	})

	t.Run("fixed-contract implementer uses the conventional path", func(t *testing.T) {
		dec, inner, registry := newDecorated(t)
		if err := registry.Register("company.lookup", fixedProvider{}); err != nil {
			t.Fatalf("Register: %v", err)
		}

		result, err := dec.Provide(context.Background(), &Operation{Handler: "company.lookup"}, nil, NewCarrier())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !inner.called {
			t.Error("expected delegation to the decorated implementation")
		}
		if result.(*company).ID != "conventional" {
			t.Errorf("ID = %q, want the inner result", result.(*company).ID)
		}
	})

	t.Run("unregistered identifier uses the conventional path", func(t *testing.T) {
		dec, inner, _ := newDecorated(t)

		_, err := dec.Provide(context.Background(), &Operation{Handler: "unknown"}, nil, NewCarrier())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !inner.called {
			t.Error("expected delegation for unknown identifier")
		}
	})

	t.Run("absent handler identifier uses the conventional path", func(t *testing.T) {
		dec, inner, _ := newDecorated(t)

		_, err := dec.Provide(context.Background(), &Operation{Name: "company.get"}, nil, NewCarrier())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !inner.called {
			t.Error("expected delegation when no handler is configured")
		}
	})

	t.Run("nil operation uses the conventional path", func(t *testing.T) {
		dec, inner, _ := newDecorated(t)

		if _, err := dec.Provide(context.Background(), nil, nil, NewCarrier()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !inner.called {
			t.Error("expected delegation")
		}
	})
}

func TestProcessorDecorator(t *testing.T) {
	t.Run("registered callable receives the payload", func(t *testing.T) {
		registry := NewHandlerRegistry()
		err := registry.Register("order.create",
			func(data *orderInput) (*orderInput, error) {
				data.Qty++
				return data, nil
			},
			WithParams("data"),
		)
		if err != nil {
			t.Fatalf("Register: %v", err)
		}

		inner := &innerProcessor{}
		dec := DecorateProcessor(inner, registry, NewWriteBridge(newTestConstructors()))

		result, err := dec.Process(context.Background(), &orderInput{Qty: 1},
			&Operation{Handler: "order.create"}, nil, NewCarrier())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.(*orderInput).Qty != 2 {
			t.Errorf("Qty = %d, want 2", result.(*orderInput).Qty)
		}
		if inner.called {
			t.Error("inner processor must not be called on the dynamic path")
		}
	})

	t.Run("passes original arguments through unchanged", func(t *testing.T) {
		inner := &innerProcessor{}
		dec := DecorateProcessor(inner, NewHandlerRegistry(), NewWriteBridge(newTestConstructors()))

		op := &Operation{Name: "order.create"}
		if _, err := dec.Process(context.Background(), &orderInput{}, op, nil, NewCarrier()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if inner.op != op {
			t.Error("operation must pass through untouched")
		}
	})
}

func TestHandlerRegistry(t *testing.T) {
	t.Run("classifies at registration", func(t *testing.T) {
		registry := NewHandlerRegistry()
		if err := registry.Register("dyn", func() error { return nil }); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if err := registry.Register("fixed", fixedProvider{}); err != nil {
			t.Fatalf("Register: %v", err)
		}

		if _, ok := registry.Get("dyn").(*Handler); !ok {
			t.Errorf("Get(dyn) = %T, want *Handler", registry.Get("dyn"))
		}
		if _, ok := registry.Get("fixed").(Provider); !ok {
			t.Errorf("Get(fixed) = %T, want the Provider itself", registry.Get("fixed"))
		}
	})

	t.Run("rejects values that are neither", func(t *testing.T) {
		registry := NewHandlerRegistry()
		if err := registry.Register("bad", 42); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects callables with invalid signatures", func(t *testing.T) {
		registry := NewHandlerRegistry()
		err := registry.Register("bad", func() (int, int) { return 0, 0 })
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("has reports registration", func(t *testing.T) {
		registry := NewHandlerRegistry()
		if registry.Has("x") {
			t.Error("empty registry has nothing")
		}
		if err := registry.Register("x", func() error { return nil }); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if !registry.Has("x") {
			t.Error("expected Has after Register")
		}
	})
}

// mapRegistry is an external registry returning plain funcs, the shape a
// service container lookup produces.
type mapRegistry map[string]any

func (m mapRegistry) Has(id string) bool { return m[id] != nil }
func (m mapRegistry) Get(id string) any  { return m[id] }

func TestDecoratorWithExternalRegistry(t *testing.T) {
	registry := mapRegistry{
		"companies": func() ([]company, error) {
			return []company{{ID: "a"}}, nil
		},
	}
	inner := &innerProvider{}
	dec := DecorateProvider(inner, registry, NewReadBridge(newTestConstructors()))

	result, err := dec.Provide(context.Background(), &Operation{Handler: "companies"}, nil, NewCarrier())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.([]company)) != 1 {
		t.Errorf("got %v", result)
	}
	if inner.called {
		t.Error("inner must not be called")
	}

	// Second call hits the introspection cache; behavior is identical.
	if _, err := dec.Provide(context.Background(), &Operation{Handler: "companies"}, nil, NewCarrier()); err != nil {
		t.Fatalf("unexpected error on cached call: %v", err)
	}
}

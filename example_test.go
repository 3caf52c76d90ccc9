package invoker_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/speto/invoker"
)

// CompanyID is a value object built from a route segment.
type CompanyID string

// NewCompanyIDFromString canonicalizes the raw segment to lower case.
func NewCompanyIDFromString(s string) (CompanyID, error) {
	if s == "" {
		return "", fmt.Errorf("empty company id")
	}
	return CompanyID(strings.ToLower(s)), nil
}

// Company is the domain object the read handler returns.
type Company struct {
	ID CompanyID
}

// fallbackProvider is the framework's fixed-contract handler, used for
// every call that does not opt into dynamic dispatch.
type fallbackProvider struct{}

func (fallbackProvider) Provide(ctx context.Context, op *invoker.Operation, params map[string]any, carrier invoker.Carrier) (any, error) {
	return nil, fmt.Errorf("no conventional handler for %s", op.Name)
}

func Example() {
	cons := invoker.NewConstructors()
	cons.Register(CompanyID(""),
		invoker.Factory("fromString", NewCompanyIDFromString),
		invoker.Tagged("fromString"),
	)

	registry := invoker.NewHandlerRegistry()
	err := registry.Register("company.lookup",
		func(ctx context.Context, id CompanyID) (*Company, error) {
			return &Company{ID: id}, nil
		},
		invoker.WithParams("id"),
		invoker.WithBinding("id", "companyId"),
	)
	if err != nil {
		log.Fatal(err)
	}

	bridge := invoker.NewReadBridge(cons)
	provider := invoker.DecorateProvider(fallbackProvider{}, registry, bridge)

	op := &invoker.Operation{Name: "company.get", Handler: "company.lookup"}
	result, err := provider.Provide(context.Background(), op,
		map[string]any{"companyId": "Acme-Corp"}, invoker.NewCarrier())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.(*Company).ID)

	// Output:
	// acme-corp
}

func Example_envelope() {
	raw := []byte(`{
		"operation": {"name": "user.get", "handler": "user.lookup"},
		"params": {"userId": "456"}
	}`)

	if !invoker.LooksLikeEnvelope(raw) {
		log.Fatal("not an operation envelope")
	}
	env, err := invoker.ParseEnvelope(raw)
	if err != nil {
		log.Fatal(err)
	}

	type UserID struct{ N int }
	cons := invoker.NewConstructors()
	cons.Register(UserID{},
		invoker.Factory("fromInt", func(n int) UserID { return UserID{N: n} }),
	)

	registry := invoker.NewHandlerRegistry()
	err = registry.Register("user.lookup",
		func(id UserID) (map[string]int, error) {
			return map[string]int{"id": id.N}, nil
		},
		invoker.WithParams("userId"),
	)
	if err != nil {
		log.Fatal(err)
	}

	bridge := invoker.NewReadBridge(cons)
	provider := invoker.DecorateProvider(fallbackProvider{}, registry, bridge)

	result, err := provider.Provide(context.Background(), &env.Operation, env.Params, invoker.NewCarrier())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.(map[string]int)["id"])

	// Output:
	// 456
}

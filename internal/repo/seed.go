package repo

import (
	"fmt"

	"qa-assignment-api/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// SeedUsers registers the demo account used by the UI tests.
func SeedUsers(users domain.UserRepository) error {
	if _, err := users.Register("test@buggy.com", "Password123!", "Test User"); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	return nil
}

// ImportUsers loads pre-hashed accounts, stopping at the first rejected one.
func ImportUsers(users domain.UserRepository, recs []domain.UserImport) error {
	for _, rec := range recs {
		if _, err := users.Import(rec); err != nil {
			return fmt.Errorf("import users: %w", err)
		}
	}
	return nil
}

func SeedProducts(products domain.ProductRepository) {
	for _, in := range []domain.ProductInput{
		{Name: "Laptop", Description: ptr("High-performance laptop"), Price: 999.99, Category: "Electronics", Stock: 5},
		{Name: "Mouse", Description: ptr("Wireless mouse"), Price: 29.99, Category: "Electronics", Stock: 50},
		{Name: "USB Cable", Description: ptr("Type-C cable"), Price: 9.99, Category: "Accessories", Stock: 100},
	} {
		products.Create(in)
	}
}

func SeedBugs(bugs domain.BugRepository) {
	bugs.Create(domain.BugInput{
		Title:             "Checkout Page Shows Empty Cart",
		Description:       "When adding items to cart and proceeding to checkout, the cart section appears completely empty",
		Severity:          domain.SeverityCritical,
		BugType:           domain.BugTypeFunctional,
		ReproductionSteps: []string{"1. Login", "2. Add product", "3. Go to checkout"},
		ExpectedBehavior:  "Cart displays all items",
		ActualBehavior:    "Cart is empty",
		Environment:       ptr("Chrome 120, Windows 11"),
	}, "tester@buggy.com")
}

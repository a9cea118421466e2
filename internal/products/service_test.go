package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(NewRepository(setupProductsTestDB(t)))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestServiceCreateAndGet(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), CreateRequest{
		Title:    "  Espresso Beans ",
		Category: "coffee",
		Price:    decimal.RequireFromString("12.50"),
		Stock:    10,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Title != "Espresso Beans" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("unexpected price %s", got.Price)
	}
}

func TestServiceCreateRejectsNegativePrice(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		Title:    "Broken",
		Category: "misc",
		Price:    decimal.RequireFromString("-1.00"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceListRejectsInvertedPriceRange(t *testing.T) {
	svc := newTestService(t)

	min := decimal.RequireFromString("20")
	max := decimal.RequireFromString("10")
	_, err := svc.List(context.Background(), ListFilter{MinPrice: &min, MaxPrice: &max})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceListRejectsUnknownSort(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.List(context.Background(), ListFilter{Page: pagination.Params{Sort: "password_hash"}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdateNotFound(t *testing.T) {
	svc := newTestService(t)

	title := "New Title"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateRequest{Title: &title})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

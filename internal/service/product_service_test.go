package service

import (
	"context"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/product-service/internal/repository/memory"
)

func pricePtr(v float64) *float64 { return &v }

func TestProductService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewProductService(memory.NewProductRepository())

	created, err := svc.Create(ctx, ProductInput{Name: " Lamp ", Price: pricePtr(19.5), Description: "desk lamp"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Lamp", created.Name)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 19.5, got.Price)

	updated, err := svc.Update(ctx, created.ID, ProductInput{Name: "Lamp", Price: pricePtr(0), Description: "free lamp"})
	require.NoError(t, err)
	require.Equal(t, float64(0), updated.Price)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	requireDomainStatus(t, err, http.StatusNotFound)
	requireDomainStatus(t, svc.Delete(ctx, created.ID), http.StatusNotFound)
	_, err = svc.Update(ctx, created.ID, ProductInput{Name: "x", Price: pricePtr(1), Description: "y"})
	requireDomainStatus(t, err, http.StatusNotFound)
}

func TestProductService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewProductService(memory.NewProductRepository())

	cases := []struct {
		name string
		in   ProductInput
		want []string
	}{
		{"empty", ProductInput{}, []string{"name is required", "price is required", "description is required"}},
		{"negative price", ProductInput{Name: "a", Price: pricePtr(-1), Description: "b"}, []string{"price must be a non-negative number"}},
		{"nan price", ProductInput{Name: "a", Price: pricePtr(math.NaN()), Description: "b"}, []string{"price must be a non-negative number"}},
		{"blank name", ProductInput{Name: "  ", Price: pricePtr(1), Description: "b"}, []string{"name is required"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			domainErr := requireDomainStatus(t, err, http.StatusBadRequest)
			require.Equal(t, tc.want, domainErr.Details["errorsList"])
		})
	}
}

package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/planflow/pkg/adapters/memory"
	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/persistence/middleware"
)

func contactSnapshot() *domain.Snapshot {
	snap := domain.NewSnapshot("pii")
	snap.Breadcrumbs.Set("contact", domain.Breadcrumb{Data: map[string]any{
		"_contact.applicant": map[string]any{"applicant": map[string]any{"email": "a@b.c"}},
	}})
	snap.Breadcrumbs.Set("details", domain.Breadcrumb{Data: map[string]any{
		"proposal.description": "rear extension",
		"site":                 map[string]any{"address": "1 High St", "uprn": "100"},
	}})
	snap.CachedBreadcrumbs.Set("phone", domain.Breadcrumb{Data: map[string]any{"applicant.phone": "0123"}})
	snap.Passport = &domain.Passport{Data: map[string]any{"applicant.phone": "0123", "property.type": []string{"residential"}}}
	return snap
}

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)(underlying)
	ctx := context.Background()

	snap := contactSnapshot()
	require.NoError(t, store.Save(ctx, "pii", snap))

	original, _ := snap.Breadcrumbs.Get("details")
	assert.Equal(t, "1 High St", original.Data["site"].(map[string]any)["address"], "the caller's snapshot is not modified")

	stored, err := underlying.Load(ctx, "pii")
	require.NoError(t, err)

	contact, _ := stored.Breadcrumbs.Get("contact")
	assert.Equal(t, middleware.Mask, contact.Data["_contact.applicant"])

	details, _ := stored.Breadcrumbs.Get("details")
	assert.Equal(t, "rear extension", details.Data["proposal.description"])
	site := details.Data["site"].(map[string]any)
	assert.Equal(t, middleware.Mask, site["address"])
	assert.Equal(t, "100", site["uprn"])

	phone, _ := stored.CachedBreadcrumbs.Get("phone")
	assert.Equal(t, middleware.Mask, phone.Data["applicant.phone"])

	assert.Equal(t, middleware.Mask, stored.Passport.Data["applicant.phone"])
	assert.NotEqual(t, middleware.Mask, stored.Passport.Data["property.type"])
}

func TestChain_Order(t *testing.T) {
	underlying := memory.NewStore()
	key := make([]byte, 32)
	store := middleware.Chain(underlying,
		middleware.NewPIIMiddleware([]string{"email"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	snap := domain.NewSnapshot("c")
	snap.Breadcrumbs.Set("q", domain.Breadcrumb{Data: map[string]any{"email": "a@b.c"}})
	require.NoError(t, store.Save(ctx, "c", snap))

	raw, err := underlying.Load(ctx, "c")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed, "encryption is the innermost layer")

	loaded, err := store.Load(ctx, "c")
	require.NoError(t, err)
	q, _ := loaded.Breadcrumbs.Get("q")
	assert.Equal(t, middleware.Mask, q.Data["email"], "masking happens before sealing")
}

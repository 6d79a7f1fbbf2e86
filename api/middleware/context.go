package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/api/responses"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/logger"
)

type contextKey string

const (
	ctxBusinessID contextKey = "business_id"
	ctxStoreID    contextKey = "store_id"
)

const (
	businessIDHeader = "X-Business-Id"
	storeIDHeader    = "X-Store-Id"
)

// BusinessIDFromContext returns the tenant id injected by BusinessContext,
// or uuid.Nil when absent.
func BusinessIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxBusinessID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// StoreIDFromContext returns the optional store id, nil when the request
// carried none.
func StoreIDFromContext(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxStoreID).(uuid.UUID); ok {
		return &v
	}
	return nil
}

// WithBusinessID injects the tenant id into the context.
func WithBusinessID(ctx context.Context, businessID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxBusinessID, businessID)
}

// WithStoreID injects the store id into the context for downstream handlers.
func WithStoreID(ctx context.Context, storeID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStoreID, storeID)
}

// BusinessContext requires the X-Business-Id header on every request and
// scopes the request context to that tenant. The optional X-Store-Id header
// is carried through for movement attribution.
func BusinessContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(businessIDHeader)
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Business-Id header required"))
				return
			}
			businessID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Business-Id must be a valid uuid"))
				return
			}

			ctx := WithBusinessID(r.Context(), businessID)
			if logg != nil {
				ctx = logg.WithBusinessID(ctx, businessID.String())
			}

			if rawStore := r.Header.Get(storeIDHeader); rawStore != "" {
				storeID, parseErr := uuid.Parse(rawStore)
				if parseErr != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Store-Id must be a valid uuid"))
					return
				}
				ctx = WithStoreID(ctx, storeID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

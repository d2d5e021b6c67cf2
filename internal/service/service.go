// Package service holds the storefront stores: auth, products, cart and
// wishlist. Each store owns its state behind a mutex that is never held
// across a network call, and hands out copies through State.
package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/utafrali/EcommerceGo/storefront/internal/apiclient"
	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// API is the part of the API client the stores depend on.
type API interface {
	Request(ctx context.Context, method, path string, body any) (*apiclient.Response, error)
}

// EventPublisher announces session changes to the other stores.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.SessionEvent) error
}

// call performs a request and decodes the JSON response generically. Success
// is decided by the status alone: a 2xx body that is not JSON ("Deleted",
// "Created") yields a nil payload, which every normalizer treats as empty.
func call(ctx context.Context, api API, method, path string, body any) (any, error) {
	resp, err := api.Request(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	root, err := resp.JSON()
	if err != nil {
		logger.FromContext(ctx).DebugContext(ctx, "ignoring non-JSON response body",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.Status),
		)
		return nil, nil
	}
	return root, nil
}

func get(ctx context.Context, api API, path string, query url.Values) (any, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return call(ctx, api, http.MethodGet, path, nil)
}

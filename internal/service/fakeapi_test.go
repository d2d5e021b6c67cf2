package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/storefront/internal/apiclient"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httpclient"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

type fakeResponse struct {
	status int
	body   string
}

type recordedCall struct {
	query url.Values
	body  map[string]any
	auth  string
}

// fakeAPI is an in-process stand-in for the storefront REST API. Responses
// are scripted per "METHOD /path"; a queue lets consecutive calls answer
// differently. Unscripted calls answer 200 {}.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string][]fakeResponse
	calls     map[string][]recordedCall
	server    *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		responses: make(map[string][]fakeResponse),
		calls:     make(map[string][]recordedCall),
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", f.serve)
		r.Post("/auth/login", f.serve)
		r.Get("/me", f.serve)

		r.Get("/products", f.serve)
		r.Get("/products/new/arrivals", f.serve)

		r.Get("/cart", f.serve)
		r.Delete("/cart", f.serve)
		r.Post("/cart/items", f.serve)
		r.Put("/cart/items/{itemId}", f.serve)
		r.Delete("/cart/items/{itemId}", f.serve)

		r.Get("/wishlist", f.serve)
		r.Delete("/wishlist", f.serve)
		r.Post("/wishlist/items/{id}", f.serve)
		r.Delete("/wishlist/items/{id}", f.serve)
	})

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

// on scripts the responses of one endpoint. The last response repeats once
// the queue is drained.
func (f *fakeAPI) on(method, path string, status int, body string, more ...fakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = append([]fakeResponse{{status, body}}, more...)
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")

	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.calls[key] = append(f.calls[key], recordedCall{
		query: r.URL.Query(),
		body:  body,
		auth:  r.Header.Get("Authorization"),
	})
	resp := fakeResponse{http.StatusOK, `{}`}
	if queue := f.responses[key]; len(queue) > 0 {
		resp = queue[0]
		if len(queue) > 1 {
			f.responses[key] = queue[1:]
		}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls[method+" "+path])
}

func (f *fakeAPI) last(method, path string) recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := f.calls[method+" "+path]
	if len(calls) == 0 {
		return recordedCall{}
	}
	return calls[len(calls)-1]
}

func (f *fakeAPI) client(holder *session.Holder) *apiclient.Client {
	return apiclient.New(f.server.URL+"/api", httpclient.New(httpclient.DefaultConfig()), holder, logger.Discard())
}

// --- canned payloads ---

const catalogJSON = `{"data":{"sneakers":[
	{"_id":"p1","name":"Air Zoom","brand":"Nike","price":2500000,"category":"Running","gender":"Men",
	 "images":[{"url":"p1.jpg","isPrimary":true}],"sizes":[{"size":"41","stock":0},{"size":"42","stock":3}]},
	{"_id":"p2","name":"Ultraboost","brand":"Adidas","price":3000000,"category":"Running","gender":"Women"},
	{"_id":"p3","name":"Chuck 70","brand":"Converse","price":1500000,"category":"","gender":"Men"},
	{"_id":"p4","name":"Air Max","brand":"Nike","price":2800000,"category":"Lifestyle","gender":"Women"}
]}}`

const featuredJSON = `{"data":{"sneakers":[{"_id":"p4","name":"Air Max","brand":"Nike","isFeatured":true}]}}`

const cartJSON = `{"data":{"cart":{"items":[
	{"_id":"l1","size":"42","quantity":2,"price":100000,"sneaker":{"_id":"p1","name":"Air Zoom","images":[{"url":"a.jpg"}]}},
	{"_id":"l2","size":"40","quantity":1,"sneaker":{"_id":"p2","name":"Ultraboost","price":50000}}
]}}}`

const wishlistJSON = `{"data":{"wishlist":{"items":[
	{"_id":"w1","productId":"p1","name":"Air Zoom","price":2500000},
	{"_id":"w2","product":{"_id":"p2","name":"Ultraboost","price":3000000}}
]}}}`

const loginJSON = `{"data":{"token":"tok-1","user":{"_id":"u1","email":"jane@example.com","givenName":"Jane"}}}`

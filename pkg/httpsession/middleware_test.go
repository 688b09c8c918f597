package httpsession_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/facet/pkg/adapters/memory"
	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/facade"
	"github.com/aretw0/facet/pkg/httpsession"
	"github.com/aretw0/facet/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_ClosesOpenSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	mgr := session.NewManager(store)

	var id string
	h := httpsession.Middleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := httpsession.FromRequest(r)
		require.True(t, ok)
		assert.False(t, s.IsOpen(), "middleware must hand over a closed session")
		require.NoError(t, s.Open(r.Context()))
		require.NoError(t, s.Set("seen", true))
		id = s.ID()
		// Left open on purpose.
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	record, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, true, record.Values[domain.DefaultPrefix+"seen"])

	// The lock was released too.
	acquired := make(chan struct{})
	go func() {
		release, err := mgr.Acquire(ctx, id)
		if err == nil {
			release(ctx)
		}
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("session lock still held after the request")
	}
}

func TestMiddleware_CrossSubdomain(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	h := httpsession.Middleware(mgr, httpsession.WithCrossSubdomain())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := httpsession.FromRequest(r)
		require.NoError(t, s.Open(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "app.example.com:8080"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	c := sessionCookie(t, rec)
	// net/http drops the leading dot when writing the Domain attribute.
	assert.Equal(t, "example.com", c.Domain)
	assert.Equal(t, "/", c.Path)
}

func TestMiddleware_SessionOptions(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)

	var id string
	h := httpsession.Middleware(mgr,
		httpsession.WithBackendOptions(httpsession.WithCookieName("sid")),
		httpsession.WithSessionOptions(facade.WithDefaultPrefix("app::")),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := httpsession.FromRequest(r)
		require.NoError(t, s.Open(r.Context()))
		require.NoError(t, s.Set("k", "v"))
		id = s.ID()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)

	record, err := store.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "v", record.Values["app::k"])
}

func TestMiddleware_SerializesRequestsForOneSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())

	h := httpsession.Middleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := httpsession.FromRequest(r)
		if !assert.NoError(t, s.Open(r.Context())) {
			return
		}

		n, err := s.Get("n", 0)
		assert.NoError(t, err)
		time.Sleep(time.Millisecond)
		assert.NoError(t, s.Set("n", n.(int)+1))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(t, rec)

	const workers = 10
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookie)
			h.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	record, err := mgr.Load(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, workers+1, record.Values[domain.DefaultPrefix+"n"])
}

package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/newsletter/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestPipelineRunsStagesInOrder(t *testing.T) {
	var order []string
	record := func(name string) httpx.Stage {
		return httpx.StageFunc(func(w http.ResponseWriter, r *http.Request) *http.Request {
			order = append(order, name)
			return r
		})
	}

	h := httpx.Pipeline{record("a"), record("b")}.Then(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestPipelineShortCircuits(t *testing.T) {
	called := false
	deny := httpx.StageFunc(func(w http.ResponseWriter, r *http.Request) *http.Request {
		httpx.SeeOther(w, "/login")
		return nil
	})

	h := httpx.Pipeline{deny}.Then(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	require.False(t, called)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestPipelinePassesEnrichedRequest(t *testing.T) {
	enrich := httpx.StageFunc(func(w http.ResponseWriter, r *http.Request) *http.Request {
		return r.WithContext(httpx.WithUserID(r.Context(), "user-7"))
	})

	var got string
	h := httpx.Pipeline{enrich}.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = httpx.UserIDFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, "user-7", got)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mw("outer"), mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestBasicCredentials(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/newsletters", nil)
		req.SetBasicAuth("admin", "pa:ss")

		username, password, err := httpx.BasicCredentials(req)
		require.NoError(t, err)
		require.Equal(t, "admin", username)
		require.Equal(t, "pa:ss", password)
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/newsletters", nil)
		_, _, err := httpx.BasicCredentials(req)
		require.ErrorIs(t, err, httpx.ErrNoBasicAuth)
		require.False(t, httpx.HasBasicAuth(req))
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/newsletters", nil)
		req.Header.Set("Authorization", "Basic !!!not-base64")
		_, _, err := httpx.BasicCredentials(req)
		require.ErrorIs(t, err, httpx.ErrMalformedBasicAuth)
		require.True(t, httpx.HasBasicAuth(req))
	})
}

func TestWriteBasicChallenge(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteBasicChallenge(rec, "publish")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, `Basic realm="publish"`, rec.Header().Get("WWW-Authenticate"))
}

package ui

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cortexcompose/compose/internal/services/recipe"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(gen Generator) (http.Handler, *SessionStore) {
	store := NewSessionStore(gen, time.Minute)
	r := chi.NewRouter()
	NewHandler(store, 2*time.Second, false).Routes(r)
	return r, store
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func get(router http.Handler, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func post(router http.Handler, cookie *http.Cookie, ingredients string) *httptest.ResponseRecorder {
	form := url.Values{"ingredients": {ingredients}}
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleIndex_NewVisitor(t *testing.T) {
	router, _ := newTestRouter(new(MockGenerator))

	rec := get(router, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	c := sessionCookie(t, rec)
	assert.True(t, c.HttpOnly)

	body := rec.Body.String()
	assert.Contains(t, body, "Cortex Compose")
	assert.Contains(t, body, "Generate Recipes")
	assert.NotContains(t, body, `http-equiv="refresh"`)
	assert.NotContains(t, body, "Oops!")
}

func TestHandleGenerate_EmptyInputShowsGuidance(t *testing.T) {
	gen := new(MockGenerator)
	router, _ := newTestRouter(gen)
	cookie := sessionCookie(t, get(router, nil))

	rec := post(router, cookie, "   ")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	body := get(router, cookie).Body.String()
	assert.Contains(t, body, "Please enter some ingredients.")
	assert.NotContains(t, body, "disabled")
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestHandleGenerate_LoadingThenCards(t *testing.T) {
	gen := newBlockingGenerator()
	router, store := newTestRouter(gen)
	cookie := sessionCookie(t, get(router, nil))

	post(router, cookie, "chicken breast, tomatoes, rice")
	<-gen.started

	body := get(router, cookie).Body.String()
	assert.Contains(t, body, `http-equiv="refresh" content="2"`)
	assert.Contains(t, body, "Generating Recipes &amp; Images...")
	assert.Contains(t, body, "disabled")
	assert.Contains(t, body, "chicken breast, tomatoes, rice")

	recipes := []recipe.Recipe{{
		Name:         "Tomato Chicken Pilaf",
		Description:  "One-pot rice.",
		Ingredients:  []string{"1 chicken breast", "2 tomatoes"},
		Instructions: []string{"Brown the chicken.", "Simmer."},
		ImageURL:     "data:image/jpeg;base64,AAA=",
	}}
	gen.ch("chicken breast, tomatoes, rice") <- result{recipes: recipes}

	s, ok := store.Get(cookie.Value)
	require.True(t, ok)
	require.Eventually(t, func() bool { return !s.Snapshot().IsLoading }, time.Second, 5*time.Millisecond)

	body = get(router, cookie).Body.String()
	assert.NotContains(t, body, `http-equiv="refresh"`)
	assert.Contains(t, body, "Your Recipe Suggestions")
	assert.Contains(t, body, "Tomato Chicken Pilaf")
	assert.Contains(t, body, `src="data:image/jpeg;base64,AAA="`)
	assert.Contains(t, body, "<ol><li>Brown the chicken.</li><li>Simmer.</li></ol>")
}

func TestHandleIndex_EscapesModelOutput(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "eggs").Return([]recipe.Recipe{{
		Name:     "<script>alert(1)</script>",
		ImageURL: "javascript:alert(1)",
	}}, nil)
	router, store := newTestRouter(gen)
	cookie := sessionCookie(t, get(router, nil))

	post(router, cookie, "eggs")
	s, _ := store.Get(cookie.Value)
	require.Eventually(t, func() bool { return !s.Snapshot().IsLoading }, time.Second, 5*time.Millisecond)

	body := get(router, cookie).Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.NotContains(t, body, "javascript:alert")
}

func TestStylesheet(t *testing.T) {
	router, _ := newTestRouter(new(MockGenerator))

	req := httptest.NewRequest(http.MethodGet, "/static/style.css", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".card")
}

func TestImageSrc(t *testing.T) {
	assert.Equal(t, "data:image/jpeg;base64,AA==", string(imageSrc("data:image/jpeg;base64,AA==")))
	assert.Equal(t, "https://cdn.test/a.jpg", string(imageSrc("https://cdn.test/a.jpg")))
	assert.Empty(t, string(imageSrc("javascript:alert(1)")))
}

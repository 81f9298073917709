package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/portfolio/internal/auth"
	"github.com/joestump/portfolio/internal/contact"
	"github.com/joestump/portfolio/internal/content"
	"github.com/joestump/portfolio/internal/store"
	"github.com/joestump/portfolio/internal/testutil"
	"github.com/joestump/portfolio/internal/theme"
)

const adminEmail = "me@example.com"

// sentBanner is msgSucceeded as it appears in rendered HTML.
var sentBanner = template.HTMLEscapeString(msgSucceeded)

type fakeIdP struct{ email string }

func (p fakeIdP) AuthCodeURL(state, _ string) string {
	return "https://id.example.com/authorize?state=" + url.QueryEscape(state)
}

func (p fakeIdP) Exchange(context.Context, string, string) (auth.Identity, error) {
	return auth.Identity{Subject: "1", Email: p.email}, nil
}

type testEnv struct {
	router   http.Handler
	forms    *contact.Registry
	messages *store.MessageStore
	visits   chan store.PageView
	sendErr  atomic.Pointer[error]
	sends    atomic.Int32
}

type envOpts struct {
	admin      bool
	resetDelay time.Duration
}

func newTestEnv(t *testing.T, o envOpts) *testEnv {
	t.Helper()
	site, err := content.Default()
	require.NoError(t, err)

	database := testutil.NewTestDB(t)
	env := &testEnv{
		messages: store.NewMessageStore(database),
		visits:   make(chan store.PageView, 8),
	}
	sender := contact.SenderFunc(func(context.Context, contact.Message) error {
		env.sends.Add(1)
		if p := env.sendErr.Load(); p != nil {
			return *p
		}
		return nil
	})
	if o.resetDelay == 0 {
		o.resetDelay = time.Hour
	}
	env.forms = contact.NewRegistry(func() *contact.Controller {
		return contact.NewController(sender, contact.WithResetDelay(o.resetDelay))
	})
	t.Cleanup(env.forms.Close)

	sm := scs.New()
	sm.Store = memstore.New()

	deps := Deps{
		SessionManager: sm,
		AuthMiddleware: auth.NewMiddleware(sm, adminEmail),
		Content:        site,
		ContactForms:   env.forms,
		ContactSender:  sender,
		SendTimeout:    time.Second,
		MessageStore:   env.messages,
		VisitStore:     store.NewVisitStore(database),
		VisitCh:        env.visits,
	}
	if o.admin {
		deps.AuthHandlers = auth.NewHandlers(fakeIdP{email: adminEmail}, sm, adminEmail, false)
	}
	env.router = NewRouter(deps)
	return env
}

// client keeps cookies between requests like a browser would.
type client struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]*http.Cookie
	htmx    bool
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, env: e, cookies: map[string]*http.Cookie{}, htmx: true}
}

func (c *client) do(method, path string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.htmx {
		req.Header.Set("HX-Request", "true")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.env.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func validForm() url.Values {
	return url.Values{
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"subject": {"Analytical engine"},
		"message": {"I would like to talk about a project."},
	}
}

func TestIndex_RendersPortfolio(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)
	c.htmx = false

	w := c.do(http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, `data-theme="`, "browser picks the theme on a first visit")
	assert.Contains(t, body, "prefers-color-scheme: dark")
	_, hasCookie := c.cookies[theme.StorageKey]
	assert.False(t, hasCookie, "default theme must not be persisted")
	assert.Contains(t, body, "Naveen")
	assert.Contains(t, body, "Weather Dashboard")
	assert.Contains(t, body, `id="contact-form"`)
	assert.NotContains(t, body, `id="project-modal"`)

	select {
	case v := <-env.visits:
		assert.Equal(t, "/", v.Path)
		assert.NotEmpty(t, v.IPHash)
	default:
		t.Fatal("expected a page view to be queued")
	}
}

func TestIndex_RespectsDoNotTrack(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)

	c.do(http.MethodGet, "/", nil, "DNT", "1")
	c.do(http.MethodGet, "/", nil, "Sec-GPC", "1")

	assert.Empty(t, env.visits)
}

func TestIndex_ThemeFromCookieAndHint(t *testing.T) {
	env := newTestEnv(t, envOpts{})

	c := env.client(t)
	w := c.do(http.MethodGet, "/", nil, theme.ClientHintHeader, "dark")
	assert.Contains(t, w.Body.String(), `data-theme="dark"`)
	assert.Equal(t, "dark", c.cookies[theme.StorageKey].Value)

	c = env.client(t)
	c.cookies[theme.StorageKey] = &http.Cookie{Name: theme.StorageKey, Value: "light"}
	w = c.do(http.MethodGet, "/", nil, theme.ClientHintHeader, "dark")
	assert.Contains(t, w.Body.String(), `data-theme="light"`)
	for _, ck := range w.Result().Cookies() {
		assert.NotEqual(t, theme.StorageKey, ck.Name, "unchanged theme is not rewritten")
	}
}

func TestThemeToggle(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)

	w := c.do(http.MethodPost, "/theme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"themeChanged":{"theme":"dark"}}`, w.Header().Get("HX-Trigger"))
	assert.Contains(t, w.Body.String(), `id="theme-toggle"`)
	assert.Equal(t, "dark", c.cookies[theme.StorageKey].Value)

	w = c.do(http.MethodGet, "/", nil)
	assert.Contains(t, w.Body.String(), `data-theme="dark"`)

	c.do(http.MethodPost, "/theme", nil)
	assert.Equal(t, "light", c.cookies[theme.StorageKey].Value)
}

func TestThemeToggle_NoJSRedirectsBack(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)
	c.htmx = false

	w := c.do(http.MethodPost, "/theme", nil, "Referer", "http://example.com/projects/2")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/projects/2", w.Header().Get("Location"))

	w = c.do(http.MethodPost, "/theme", nil, "Referer", "https://elsewhere.example.org/")
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestProjectDetail(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)

	w := c.do(http.MethodGet, "/projects/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="project-modal"`)
	assert.NotContains(t, w.Body.String(), "<html")

	c.htmx = false
	w = c.do(http.MethodGet, "/projects/2", nil)
	assert.Contains(t, w.Body.String(), "<html")
	assert.Contains(t, w.Body.String(), `id="project-modal"`)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/projects/99", nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/projects/x", nil).Code)
}

func TestContact_InvalidThenFieldEditClearsError(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)

	w := c.do(http.MethodPost, "/contact", url.Values{"name": {""}, "email": {"nope"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Name is required")
	assert.Contains(t, body, "Please enter a valid email")
	assert.Contains(t, body, "Subject is required")
	assert.Contains(t, body, "Message is required")
	assert.NotContains(t, body, "hx-trigger=\"load")
	assert.Equal(t, int32(0), env.sends.Load())

	w = c.do(http.MethodPost, "/contact/field", url.Values{"field": {"name"}, "name": {"A"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="error-name"`)
	assert.NotContains(t, w.Body.String(), "Name")

	w = c.do(http.MethodGet, "/contact", nil)
	assert.NotContains(t, w.Body.String(), "Name is required")
	assert.Contains(t, w.Body.String(), "Please enter a valid email")
	assert.Contains(t, w.Body.String(), `value="A"`)
}

func TestContact_UnknownField(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)

	w := c.do(http.MethodPost, "/contact/field", url.Values{"field": {"phone"}, "phone": {"555"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContact_SuccessThenReset(t *testing.T) {
	env := newTestEnv(t, envOpts{resetDelay: 30 * time.Millisecond})
	c := env.client(t)

	w := c.do(http.MethodPost, "/contact", validForm())
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, sentBanner)
	assert.Contains(t, body, `hx-trigger="load delay:280ms"`)
	assert.NotContains(t, body, "Ada Lovelace", "fields clear on success")
	assert.Equal(t, int32(1), env.sends.Load())

	assert.Eventually(t, func() bool {
		return !strings.Contains(c.do(http.MethodGet, "/contact", nil).Body.String(), sentBanner)
	}, time.Second, 10*time.Millisecond)
}

func TestContact_FailureKeepsValues(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	boom := errors.New("relay down")
	env.sendErr.Store(&boom)
	c := env.client(t)

	w := c.do(http.MethodPost, "/contact", validForm())
	body := w.Body.String()
	assert.Contains(t, body, msgFailed)
	assert.Contains(t, body, `value="Ada Lovelace"`)

	env.sendErr.Store(nil)
	w = c.do(http.MethodPost, "/contact", validForm())
	assert.Contains(t, w.Body.String(), sentBanner)
	assert.Equal(t, int32(2), env.sends.Load())
}

func TestContact_FormsArePerVisitor(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	alice, bob := env.client(t), env.client(t)

	alice.do(http.MethodPost, "/contact/field", url.Values{"field": {"name"}, "name": {"Alice"}})

	assert.Contains(t, alice.do(http.MethodGet, "/contact", nil).Body.String(), `value="Alice"`)
	assert.NotContains(t, bob.do(http.MethodGet, "/contact", nil).Body.String(), `value="Alice"`)
	assert.Equal(t, 2, env.forms.Len())
}

func TestContact_NoJSRedirects(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)
	c.htmx = false

	w := c.do(http.MethodPost, "/contact", validForm())
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/#contact", w.Header().Get("Location"))

	w = c.do(http.MethodGet, "/", nil)
	assert.Contains(t, w.Body.String(), sentBanner)
}

func TestAdmin_DisabledWithoutOIDC(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/admin/messages", nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/auth/login", nil).Code)
}

func signIn(t *testing.T, c *client) {
	t.Helper()
	w := c.do(http.MethodGet, "/auth/login", nil)
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	w = c.do(http.MethodGet, "/auth/callback?code=x&state="+url.QueryEscape(loc.Query().Get("state")), nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/admin/messages", w.Header().Get("Location"))
}

func TestAdmin_Inbox(t *testing.T) {
	env := newTestEnv(t, envOpts{admin: true})
	ctx := context.Background()
	m, err := env.messages.Create(ctx, "Grace", "grace@example.com", "Compilers", "Let's talk about COBOL.")
	require.NoError(t, err)

	c := env.client(t)
	c.htmx = false
	w := c.do(http.MethodGet, "/admin/messages", nil)
	require.Equal(t, http.StatusFound, w.Code)

	signIn(t, c)

	w = c.do(http.MethodGet, "/admin/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Compilers")
	assert.Contains(t, w.Body.String(), `href="/admin/messages"`, "navbar links the inbox for the admin")

	w = c.do(http.MethodGet, "/admin/messages/"+m.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Let&#39;s talk about COBOL.")
	got, err := env.messages.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead())

	c.htmx = true
	w = c.do(http.MethodDelete, "/admin/messages/"+m.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	_, err = env.messages.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/admin/messages/"+m.ID, nil).Code)
}

func TestHealthzAndMetrics(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)

	w := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Empty(t, c.cookies, "health checks and scrapes must not start a session")

	w = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portfolio_page_views_dropped_total")
}

func TestAPIDocs(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)
	c.htmx = false

	w := c.do(http.MethodGet, "/api/docs/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"title": "Portfolio API"`)
	assert.Contains(t, body, `"basePath": "/api/v1"`)
	for _, path := range []string{"/theme", "/theme/toggle", "/portfolio", "/projects/{id}", "/contact"} {
		assert.Contains(t, body, `"`+path+`": {`)
	}
	assert.Empty(t, c.cookies, "docs are served outside the session")
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	c := env.client(t)

	w := c.do(http.MethodGet, "/static/css/app.css", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `[data-theme="dark"]`)
}

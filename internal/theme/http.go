package theme

import (
	"context"
	"net/http"
	"strings"
)

// ClientHintHeader carries the browser's prefers-color-scheme value.
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

const cookieMaxAge = 365 * 24 * 60 * 60

type contextKey struct{}

// CookieStore persists the theme in a cookie on the current exchange.
// It is not HttpOnly so the inline anti-flash script can read it.
//
// While held, Save only records the value; release decides whether it is
// written. Middleware holds the store across Initialize so a theme that
// merely fell back to the default never becomes a sticky cookie.
type CookieStore struct {
	r *http.Request
	w http.ResponseWriter

	held    bool
	pending string
}

// NewCookieStore binds a Store to one request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{r: r, w: w}
}

func (s *CookieStore) Load(key string) (string, error) {
	c, err := s.r.Cookie(key)
	if err == http.ErrNoCookie {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

func (s *CookieStore) Save(key, value string) error {
	if s.held {
		s.pending = value
		return nil
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: false,
	})
	return nil
}

func (s *CookieStore) hold() { s.held = true }

// release stops holding and, when flush is set, writes the recorded value
// unless the request already carried it.
func (s *CookieStore) release(flush bool) {
	s.held = false
	value := s.pending
	s.pending = ""
	if !flush || value == "" {
		return
	}
	if current, _ := s.Load(StorageKey); current == value {
		return
	}
	_ = s.Save(StorageKey, value)
}

// stored reports whether the request carried a valid theme cookie.
func (s *CookieStore) stored() bool {
	v, err := s.Load(StorageKey)
	if err != nil {
		return false
	}
	_, ok := Parse(v)
	return ok
}

// ClientHint reads the prefers-color-scheme client hint from r.
func ClientHint(r *http.Request) Preference {
	return PreferenceFunc(func() (bool, bool) {
		v := strings.Trim(strings.TrimSpace(r.Header.Get(ClientHintHeader)), `"`)
		switch strings.ToLower(v) {
		case "dark":
			return true, true
		case "light":
			return false, true
		default:
			return false, false
		}
	})
}

// Document is the data-theme attribute rendered on the page root.
type Document struct {
	theme Theme
}

func (d *Document) SetTheme(t Theme) { d.theme = t }

// Theme returns the last applied theme, or Light before any apply.
func (d *Document) Theme() Theme {
	if d.theme == "" {
		return Light
	}
	return d.theme
}

// Request is the per-request theme binding carried in the context.
type Request struct {
	*Controller
	Document *Document

	// Resolved is false when neither the cookie nor the client hint
	// decided the theme; the page then leaves the choice to the browser.
	Resolved bool
}

// Middleware initializes a Controller for every request from the theme
// cookie and the client hint, and stores it in the request context.
// The cookie is only written during initialization when the hint decided
// the theme and the request did not already carry it; toggles always write.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Accept-CH", ClientHintHeader)
		w.Header().Add("Critical-CH", ClientHintHeader)
		w.Header().Add("Vary", ClientHintHeader)

		doc := &Document{}
		store := NewCookieStore(w, r)
		hint := ClientHint(r)
		_, hinted := hint.PrefersDark()
		stored := store.stored()

		store.hold()
		c := Initialize(store, hint, doc)
		store.release(hinted && !stored)

		tr := &Request{Controller: c, Document: doc, Resolved: stored || hinted}
		ctx := context.WithValue(r.Context(), contextKey{}, tr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the binding installed by Middleware, or nil.
func FromContext(ctx context.Context) *Request {
	tr, _ := ctx.Value(contextKey{}).(*Request)
	return tr
}

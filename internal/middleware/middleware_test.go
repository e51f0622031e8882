package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"fengwz.me/garden/internal/i18n"
)

func TestHTMXFlags(t *testing.T) {
	t.Parallel()

	var htmx, restore bool
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		htmx = IsHTMX(r.Context())
		restore = IsHistoryRestore(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/essays", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-History-Restore-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, htmx)
	require.True(t, restore)
	require.Contains(t, rec.Header().Values("Vary"), "HX-Request")
}

func TestCSRFIssuesAndVerifiesToken(t *testing.T) {
	t.Parallel()

	var seen string
	h := HTMX(CSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CSRFToken(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	token := cookies[0].Value
	require.Equal(t, token, seen)
	require.Len(t, token, 32)

	missing := httptest.NewRequest(http.MethodPost, "/forms/newsletter", nil)
	missing.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	missing.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, missing)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), `"error":"csrf_invalid"`)

	viaHeader := httptest.NewRequest(http.MethodPost, "/forms/newsletter", nil)
	viaHeader.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	viaHeader.Header.Set(csrfHeader, token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, viaHeader)
	require.Equal(t, http.StatusNoContent, rec.Code)

	form := url.Values{"csrf_token": {token}, "email": {"a@b.co"}}
	viaForm := httptest.NewRequest(http.MethodPost, "/forms/newsletter", strings.NewReader(form.Encode()))
	viaForm.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	viaForm.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, viaForm)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLocale(t *testing.T) {
	t.Parallel()

	bundle, err := i18n.Default("en")
	require.NoError(t, err)

	var lang string
	h := Locale(bundle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang = Lang(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "zh", lang)
	require.Equal(t, "zh", rec.Header().Get("Content-Language"))

	req = httptest.NewRequest(http.MethodGet, "/?hl=en", nil)
	req.Header.Set("Accept-Language", "zh-CN")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "en", lang)
	require.Equal(t, "hl", rec.Result().Cookies()[0].Name)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "hl", Value: "zh"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "zh", lang)
}

func TestAssetsWithCache(t *testing.T) {
	t.Parallel()

	h := AssetsWithCache(fstest.MapFS{"css/site.css": {Data: []byte("body{}")}}, "/assets")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "body{}", rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)
}

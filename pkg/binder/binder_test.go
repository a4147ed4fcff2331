package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addPayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=9"`
	URL  string `json:"url" validate:"omitempty,locator"`
}

type listQuery struct {
	Limit  int `query:"limit" json:"limit" default:"24" validate:"min=1,max=50"`
	Offset int `query:"offset" json:"offset"`
}

func TestBindJSON(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	t.Run("rejects non-json bodies", func(t *testing.T) {
		c := newContext(http.MethodPost, `{"name":"x"}`, echo.MIMEApplicationXML)
		err := b.Bind(&addPayload{}, c)
		assert.Equal(t, "unsupported_media_type", errcodes.Code(err))
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		c := newContext(http.MethodPost, `{"name":"x","foo":"bar"}`, echo.MIMEApplicationJSON)
		err := b.Bind(&addPayload{}, c)
		assert.Contains(t, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("reports type errors by field", func(t *testing.T) {
		c := newContext(http.MethodPost, `{"name":123}`, echo.MIMEApplicationJSON)
		err := b.Bind(&addPayload{}, c)
		assert.Contains(t, err.Error(), `"name" should be of type string`)
	})

	t.Run("trims before validating", func(t *testing.T) {
		c := newContext(http.MethodPost, `{"name":"  volume  "}`, echo.MIMEApplicationJSON)
		p := addPayload{}
		require.NoError(t, b.Bind(&p, c))
		assert.Equal(t, "volume", p.Name)
	})

	t.Run("reports validation errors", func(t *testing.T) {
		c := newContext(http.MethodPost, `{"name":"0123456789"}`, echo.MIMEApplicationJSON)
		err := b.Bind(&addPayload{}, c)
		assert.Contains(t, err.Error(), "length must be less than or equal to 9 characters")
	})

	t.Run("checks locators", func(t *testing.T) {
		c := newContext(http.MethodPost, `{"name":"a","url":"relative/path.cbz"}`, echo.MIMEApplicationJSON)
		err := b.Bind(&addPayload{}, c)
		assert.Contains(t, err.Error(), `"url" must be an absolute path or a file:// URL`)

		c = newContext(http.MethodPost, `{"name":"a","url":"file:///books/a.cbz"}`, echo.MIMEApplicationJSON)
		assert.NoError(t, b.Bind(&addPayload{}, c))
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		c := newContext(http.MethodPost, `{"name":`, echo.MIMEApplicationJSON)
		err := b.Bind(&addPayload{}, c)
		assert.Equal(t, "malformed_payload", errcodes.Code(err))
	})

	t.Run("rejects empty bodies", func(t *testing.T) {
		c := newContext(http.MethodPost, "", echo.MIMEApplicationJSON)
		err := b.Bind(&addPayload{}, c)
		assert.Equal(t, "empty_request_body", errcodes.Code(err))
	})
}

func TestBindQuery(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	t.Run("applies defaults", func(t *testing.T) {
		c := newContext(http.MethodGet, "", "")
		q := listQuery{}
		require.NoError(t, b.Bind(&q, c))
		assert.Equal(t, 24, q.Limit)
	})

	t.Run("decodes values", func(t *testing.T) {
		c := newContext(http.MethodGet, "", "")
		c.Request().URL.RawQuery = "limit=10&offset=20"
		q := listQuery{}
		require.NoError(t, b.Bind(&q, c))
		assert.Equal(t, 10, q.Limit)
		assert.Equal(t, 20, q.Offset)
	})

	t.Run("reports conversion errors", func(t *testing.T) {
		c := newContext(http.MethodGet, "", "")
		c.Request().URL.RawQuery = "limit=ten"
		err := b.Bind(&listQuery{}, c)
		assert.Equal(t, "validation_type_error", errcodes.Code(err))
	})

	t.Run("reports unknown keys", func(t *testing.T) {
		c := newContext(http.MethodGet, "", "")
		c.Request().URL.RawQuery = "page=2"
		err := b.Bind(&listQuery{}, c)
		assert.Contains(t, err.Error(), `Unknown Parameter "page"`)
	})

	t.Run("validates after defaults", func(t *testing.T) {
		c := newContext(http.MethodGet, "", "")
		c.Request().URL.RawQuery = "limit=500"
		err := b.Bind(&listQuery{}, c)
		assert.Contains(t, err.Error(), `"limit" must be less than or equal to 50`)
	})
}

func newContext(method, payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(payload))
	if mime != "" {
		req.Header.Set(echo.HeaderContentType, mime)
	}
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}

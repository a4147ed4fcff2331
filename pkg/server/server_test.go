package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/shoka/pkg/config"
	"github.com/shishobooks/shoka/pkg/plugins"
	"github.com/shishobooks/shoka/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorResponse struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		StatusCode int    `json:"status_code"`
	} `json:"error"`
}

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	db := testutils.NewDB(t)
	srv, err := New(config.NewForTest(), db, plugins.NewManager(t.TempDir()))
	require.NoError(t, err)
	return srv.Handler
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_LibraryAndSeriesFlow(t *testing.T) {
	t.Parallel()
	h := newHandler(t)

	rec := do(t, h, http.MethodPost, "/libraries", map[string]interface{}{"name": "Manga", "root": "/data/manga"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	library := struct {
		ID int `json:"id"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &library))

	rec = do(t, h, http.MethodPost, "/libraries/"+strconv.Itoa(library.ID)+"/series", map[string]interface{}{
		"name": "Yotsuba",
		"url":  "/data/manga/Yotsuba",
		"books": []map[string]interface{}{
			{"library_id": library.ID, "name": "Yotsuba_v10.cbz", "url": "/data/manga/Yotsuba/Yotsuba_v10.cbz"},
			{"library_id": library.ID, "name": "Yotsuba_v2.cbz", "url": "/data/manga/Yotsuba/Yotsuba_v2.cbz"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	series := struct {
		ID        int `json:"id"`
		BookCount int `json:"book_count"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	assert.Equal(t, 2, series.BookCount)

	rec = do(t, h, http.MethodGet, "/series/"+strconv.Itoa(series.ID)+"/books", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var bs []struct {
		Name   string `json:"name"`
		Number int    `json:"number"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bs))
	require.Len(t, bs, 2)
	assert.Equal(t, "Yotsuba_v2.cbz", bs[0].Name)
	assert.Equal(t, 1, bs[0].Number)
	assert.Equal(t, "Yotsuba_v10.cbz", bs[1].Name)
	assert.Equal(t, 2, bs[1].Number)

	rec = do(t, h, http.MethodPost, "/series/"+strconv.Itoa(series.ID)+"/sort", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/series/"+strconv.Itoa(series.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/series/"+strconv.Itoa(series.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Errors(t *testing.T) {
	t.Parallel()
	h := newHandler(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown route", http.MethodGet, "/nope", nil, http.StatusNotFound, "not_found"},
		{"unknown series", http.MethodGet, "/series/42", nil, http.StatusNotFound, "not_found"},
		{"relative library root", http.MethodPost, "/libraries", map[string]interface{}{"name": "Manga", "root": "manga"}, http.StatusUnprocessableEntity, "validation_error"},
		{"unknown field", http.MethodPost, "/libraries", map[string]interface{}{"name": "Manga", "root": "/manga", "color": "red"}, http.StatusUnprocessableEntity, "unknown_parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			resp := errorResponse{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

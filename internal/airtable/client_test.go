package airtable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"enrollment-insights/internal/httpx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedServer serves table pages keyed by table name; each page is a JSON
// records array and pages are chained with offsets "p1", "p2", ...
func pagedServer(t *testing.T, pages map[string][]string, fail map[string]int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "Bearer pat", r.Header.Get("Authorization"))

		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
		require.Len(t, parts, 2)
		assert.Equal(t, "app1", parts[0])
		table := parts[1]

		idx := 0
		if off := r.URL.Query().Get("offset"); off != "" {
			_, err := fmt.Sscanf(off, "p%d", &idx)
			require.NoError(t, err)
		}
		if code, ok := fail[table]; ok && idx >= 1 || ok && len(pages[table]) == 0 {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
			return
		}

		next := ""
		if idx+1 < len(pages[table]) {
			next = fmt.Sprintf(`,"offset":"p%d"`, idx+1)
		}
		_, _ = fmt.Fprintf(w, `{"records":%s%s}`, pages[table][idx], next)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(srv *httptest.Server) *Client {
	c := New(srv.URL, "app1", "pat")
	c.HTTP = srv.Client()
	return c
}

func TestFetchAllFollowsOffsets(t *testing.T) {
	srv, calls := pagedServer(t, map[string][]string{
		"Leaders": {
			`[{"id":"rec1","fields":{"Name":"A"}},{"id":"rec2","fields":{"Name":"B"}}]`,
			`[{"id":"rec3","fields":{"Name":"C"}}]`,
			`[{"id":"rec4","fields":{"Name":"D"}}]`,
		},
	}, nil)

	recs, err := newTestClient(srv).FetchAll(context.Background(), "Leaders")
	require.NoError(t, err)
	require.Len(t, recs, 4)
	for i, id := range []string{"rec1", "rec2", "rec3", "rec4"} {
		assert.Equal(t, id, recs[i].ID)
	}
	assert.Equal(t, "C", recs[2].Fields["Name"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchAllEscapesTableName(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"records":[]}`))
	}))
	defer srv.Close()

	recs, err := newTestClient(srv).FetchAll(context.Background(), "Course Enrollments")
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NotNil(t, recs)
	assert.Equal(t, "/app1/Course%20Enrollments", path)
}

func TestFetchAllDiscardsPartialOnFailure(t *testing.T) {
	srv, _ := pagedServer(t, map[string][]string{
		"Cities": {`[{"id":"c1","fields":{}}]`, `[{"id":"c2","fields":{}}]`},
	}, map[string]int{"Cities": http.StatusBadGateway})

	recs, err := newTestClient(srv).FetchAll(context.Background(), "Cities")
	assert.Nil(t, recs)
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	var herr *httpx.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusBadGateway, herr.StatusCode)
}

func TestFetchAllDoesNotRetryByDefault(t *testing.T) {
	srv, calls := pagedServer(t, map[string][]string{"Leaders": nil}, map[string]int{"Leaders": http.StatusServiceUnavailable})

	_, err := newTestClient(srv).FetchAll(context.Background(), "Leaders")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchAllMalformedResponse(t *testing.T) {
	for name, body := range map[string]string{
		"missing records": `{"items":[]}`,
		"not json":        `<html>gateway</html>`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv).FetchAll(context.Background(), "Leaders")
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.ErrorIs(t, err, ErrSourceUnavailable)
		})
	}
}

func TestFetchTables(t *testing.T) {
	srv, _ := pagedServer(t, map[string][]string{
		"Leaders":     {`[{"id":"l1","fields":{}}]`},
		"Cities":      {`[{"id":"c1","fields":{}}]`, `[{"id":"c2","fields":{}}]`},
		"Enrollments": {`[]`},
	}, nil)

	tables, err := newTestClient(srv).FetchTables(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables.Leaders, 1)
	assert.Len(t, tables.Cities, 2)
	assert.Empty(t, tables.Enrollments)
}

func TestFetchTablesOneFailureFailsAll(t *testing.T) {
	srv, _ := pagedServer(t, map[string][]string{
		"Leaders":     {`[{"id":"l1","fields":{}}]`},
		"Cities":      nil,
		"Enrollments": {`[]`},
	}, map[string]int{"Cities": http.StatusInternalServerError})

	tables, err := newTestClient(srv).FetchTables(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Empty(t, tables.Leaders)
}

func TestConfigured(t *testing.T) {
	assert.True(t, New("", "app", "pat").Configured())
	assert.False(t, New("", "", "pat").Configured())
	assert.Equal(t, DefaultAPIURL, New("", "", "").APIURL)
}

func TestMalformedIsSourceUnavailable(t *testing.T) {
	assert.True(t, errors.Is(ErrMalformedResponse, ErrSourceUnavailable))
	assert.False(t, errors.Is(ErrSourceUnavailable, ErrMalformedResponse))
}

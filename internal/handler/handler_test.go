package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/goydb/goyview/internal/adapter/storage"
	"github.com/goydb/goyview/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func withTestServer(t *testing.T, fn func(s *testServer)) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	defer st.Close()

	reg := prometheus.NewRegistry()
	views := controller.NewRegistry(ctx, st, controller.WithRegisterer(reg))
	defer views.Close()

	r := mux.NewRouter()
	require.NoError(t, Router{
		Base:     Base{Storage: st, Views: views},
		Gatherer: reg,
	}.Build(r))

	srv := httptest.NewServer(r)
	defer srv.Close()

	fn(&testServer{t: t, srv: srv})
}

func (s *testServer) do(method, path string, body interface{}) (int, map[string]interface{}) {
	status, data := s.raw(method, path, body)
	var result map[string]interface{}
	if len(data) > 0 && data[0] == '{' {
		require.NoError(s.t, json.Unmarshal(data, &result))
	}
	return status, result
}

func (s *testServer) raw(method, path string, body interface{}) (int, []byte) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = strings.NewReader(string(data))
	}
	req, err := http.NewRequest(method, s.srv.URL+path, r)
	require.NoError(s.t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, data
}

func (s *testServer) view(path string, params url.Values) (int, map[string]interface{}) {
	return s.do("GET", path+"?"+params.Encode(), nil)
}

func rowKeys(result map[string]interface{}) []interface{} {
	rows, _ := result["rows"].([]interface{})
	keys := make([]interface{}, len(rows))
	for i, row := range rows {
		keys[i] = row.(map[string]interface{})["key"]
	}
	return keys
}

func setupNumbers(s *testServer) {
	status, _ := s.do("PUT", "/db", nil)
	require.Equal(s.t, http.StatusCreated, status)

	for _, key := range []string{"one", "two", "three", "four", "five"} {
		status, _ := s.do("PUT", "/db/doc-"+key, map[string]interface{}{"key": key})
		require.Equal(s.t, http.StatusCreated, status)
	}

	status, res := s.do("PUT", "/db/_design/test", map[string]interface{}{
		"views": map[string]interface{}{
			"keys": map[string]interface{}{
				"map":    `function(doc) { emit(doc.key, 1) }`,
				"reduce": "_sum",
			},
		},
	})
	require.Equal(s.t, http.StatusCreated, status, res)
}

func TestDBView(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		want   []interface{}
		total  float64
	}{
		{"all", url.Values{"reduce": {"false"}}, []interface{}{"five", "four", "one", "three", "two"}, 5},
		{"range", url.Values{"reduce": {"false"}, "startkey": {`"a"`}, "endkey": {`"one"`}}, []interface{}{"five", "four", "one"}, 3},
		{"exclusive end", url.Values{"reduce": {"false"}, "start_key": {`"a"`}, "end_key": {`"one"`}, "inclusive_end": {"false"}}, []interface{}{"five", "four"}, 2},
		{"descending", url.Values{"reduce": {"false"}, "descending": {"true"}, "startkey": {`"o"`}, "endkey": {`"five"`}}, []interface{}{"four", "five"}, 2},
		{"descending exclusive end", url.Values{"reduce": {"false"}, "descending": {"true"}, "startkey": {`"o"`}, "endkey": {`"five"`}, "inclusive_end": {"false"}}, []interface{}{"four"}, 1},
		{"keys", url.Values{"reduce": {"false"}, "keys": {`["two","four"]`}}, []interface{}{"four", "two"}, 2},
		{"key", url.Values{"reduce": {"false"}, "key": {`"three"`}}, []interface{}{"three"}, 1},
		{"limit", url.Values{"reduce": {"false"}, "limit": {"3"}}, []interface{}{"five", "four", "one"}, 5},
		{"limit and skip", url.Values{"reduce": {"false"}, "limit": {"2"}, "skip": {"1"}}, []interface{}{"four", "one"}, 5},
	}

	withTestServer(t, func(s *testServer) {
		setupNumbers(s)

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				status, res := s.view("/db/_design/test/_view/keys", tt.params)
				require.Equal(t, http.StatusOK, status, res)
				assert.Equal(t, tt.want, rowKeys(res))
				assert.Equal(t, tt.total, res["total_rows"])
			})
		}

		status, res := s.view("/db/_design/test/_view/keys", nil)
		require.Equal(t, http.StatusOK, status)
		rows := res["rows"].([]interface{})
		require.Len(t, rows, 1)
		row := rows[0].(map[string]interface{})
		assert.Equal(t, 5.0, row["value"])
		assert.Nil(t, row["key"])
		assert.NotContains(t, row, "id")

		status, res = s.view("/db/_design/test/_view/keys", url.Values{"group": {"true"}, "limit": {"2"}})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, []interface{}{"five", "four"}, rowKeys(res))

		// keys in the body
		status, res = s.do("POST", "/db/_design/test/_view/keys?reduce=false", map[string]interface{}{
			"keys": []interface{}{"two", "one"},
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, []interface{}{"one", "two"}, rowKeys(res))
		row = res["rows"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "doc-one", row["id"])

		status, res = s.view("/db/_design/test/_view/keys", url.Values{"reduce": {"false"}, "include_docs": {"true"}, "limit": {"1"}})
		require.Equal(t, http.StatusOK, status)
		row = res["rows"].([]interface{})[0].(map[string]interface{})
		doc := row["doc"].(map[string]interface{})
		assert.Equal(t, "doc-five", doc["_id"])
		assert.Equal(t, "five", doc["key"])
	})
}

func TestDBView_Errors(t *testing.T) {
	withTestServer(t, func(s *testServer) {
		setupNumbers(s)

		for name, params := range map[string]url.Values{
			"negative skip":     {"skip": {"-1"}},
			"invalid limit":     {"limit": {"many"}},
			"invalid key":       {"startkey": {"not json"}},
			"keys not an array": {"keys": {`"a"`}},
			"invalid bool":      {"descending": {"yes"}},
			"group no reduce":   {"group": {"true"}, "reduce": {"false"}},
			"invalid update":    {"update": {"sometimes"}},
		} {
			t.Run(name, func(t *testing.T) {
				status, res := s.view("/db/_design/test/_view/keys", params)
				assert.Equal(t, http.StatusBadRequest, status)
				assert.Equal(t, "bad_request", res["error"])
			})
		}

		status, res := s.view("/db/_design/test/_view/missing", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "not_found", res["error"])

		status, _ = s.view("/nodb/_design/test/_view/keys", nil)
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = s.do("PUT", "/db/_design/broken", map[string]interface{}{
			"views": map[string]interface{}{
				"v": map[string]interface{}{"map": `function(doc) {`},
			},
		})
		assert.Equal(t, http.StatusBadRequest, status)
		status, _ = s.do("GET", "/db/_design/broken", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestDocuments(t *testing.T) {
	withTestServer(t, func(s *testServer) {
		status, _ := s.do("PUT", "/db", nil)
		require.Equal(t, http.StatusCreated, status)
		status, _ = s.do("PUT", "/db", nil)
		assert.Equal(t, http.StatusConflict, status)

		status, res := s.do("PUT", "/db/a", map[string]interface{}{"n": 1})
		require.Equal(t, http.StatusCreated, status)
		rev := res["rev"].(string)

		status, _ = s.do("PUT", "/db/a", map[string]interface{}{"n": 2})
		assert.Equal(t, http.StatusConflict, status)

		status, res = s.do("PUT", "/db/a", map[string]interface{}{"n": 2, "_rev": rev})
		require.Equal(t, http.StatusCreated, status)
		rev = res["rev"].(string)

		status, res = s.do("GET", "/db/a", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2.0, res["n"])
		assert.Equal(t, rev, res["_rev"])

		status, res = s.do("POST", "/db", map[string]interface{}{"n": 3})
		require.Equal(t, http.StatusCreated, status)
		assert.NotEmpty(t, res["id"])

		status, data := s.raw("POST", "/db/_bulk_docs", map[string]interface{}{
			"docs": []interface{}{
				map[string]interface{}{"_id": "b", "n": 4},
				map[string]interface{}{"_id": "a", "n": 5},
			},
		})
		require.Equal(t, http.StatusCreated, status)
		var bulk []map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &bulk))
		require.Len(t, bulk, 2)
		assert.Equal(t, true, bulk[0]["ok"])
		assert.Equal(t, "conflict", bulk[1]["error"])

		status, _ = s.do("DELETE", "/db/a?rev="+rev, nil)
		require.Equal(t, http.StatusOK, status)
		status, _ = s.do("GET", "/db/a", nil)
		assert.Equal(t, http.StatusNotFound, status)

		status, res = s.do("GET", "/db/_changes", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, res["results"], 3)

		status, res = s.do("GET", "/db", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "db", res["db_name"])
		assert.Equal(t, "bbolt", res["engine"])

		status, data = s.raw("GET", "/_all_dbs", nil)
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `["db"]`, string(data))

		status, _ = s.do("DELETE", "/db", nil)
		require.Equal(t, http.StatusOK, status)
		status, _ = s.do("GET", "/db", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestDesignDocLifecycle(t *testing.T) {
	withTestServer(t, func(s *testServer) {
		setupNumbers(s)

		status, res := s.view("/db/_design/test/_view/keys", nil)
		require.Equal(t, http.StatusOK, status)

		status, res = s.do("GET", "/db/_design/test/_info", nil)
		require.Equal(t, http.StatusOK, status)
		views := res["views"].(map[string]interface{})
		require.Contains(t, views, "keys")
		info := views["keys"].(map[string]interface{})
		assert.Equal(t, "javascript", info["language"])
		assert.Equal(t, true, info["built"])
		assert.Equal(t, true, info["reduce"])
		assert.Len(t, info["signature"], 64)

		status, res = s.do("GET", "/db/_design/test", nil)
		require.Equal(t, http.StatusOK, status)
		rev := res["_rev"].(string)

		status, _ = s.do("DELETE", "/db/_design/test?rev="+rev, nil)
		require.Equal(t, http.StatusOK, status)

		status, _ = s.view("/db/_design/test/_view/keys", nil)
		assert.Equal(t, http.StatusNotFound, status)

		status, data := s.raw("GET", "/_active_tasks", nil)
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `[]`, string(data))

		status, data = s.raw("GET", "/_metrics", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(data), "goyview_view_rebuilds_total")

		status, res = s.do("GET", "/", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Welcome", res["couchdb"])
	})
}

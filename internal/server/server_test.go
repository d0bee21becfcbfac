package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hanrank/internal/service"
	"github.com/cognicore/hanrank/pkg/hanrank"
	"github.com/cognicore/hanrank/pkg/hanrank/store"
	"github.com/cognicore/hanrank/pkg/hanrank/store/memstore"
)

var titles = []string{"특검법 국회 통과", "국회 본회의 특검법 가결", "대통령실 반응"}

func setupTestServer(t *testing.T, load service.Loader) (*httptest.Server, *service.Service) {
	t.Helper()

	svc, err := service.New(service.Config{Store: memstore.New()})
	require.NoError(t, err)

	ts := httptest.NewServer(New(svc, load, nil).Routes())
	t.Cleanup(ts.Close)
	return ts, svc
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/health", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestKeywordsEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/v1/keywords", "application/json",
		strings.NewReader(`{"titles":["특검법 국회 통과","국회 본회의 특검법 가결","대통령실 반응"],"limit":2}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res hanrank.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.Len(t, res.Keywords, 2)
	assert.Equal(t, "국회", res.Keywords[0].Keyword)
	assert.Equal(t, 2, res.Keywords[0].ArticleCount)
	assert.Equal(t, "특검법", res.Keywords[1].Keyword)
	assert.Equal(t, 3, res.Stats.Titles)
}

func TestKeywordsEndpointErrors(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"titles":`, http.StatusBadRequest},
		{"negative limit", `{"titles":["국회 통과"],"limit":-1}`, http.StatusBadRequest},
		{"empty", `{"titles":[]}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/keywords", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	ts, svc := setupTestServer(t, nil)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/v1/snapshots/latest", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/v1/changes", nil))

	var empty []store.Snapshot
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/snapshots", &empty))
	assert.Empty(t, empty)

	_, err := svc.Refresh(context.Background(), service.StaticLoader(service.Batch{Source: "test", Titles: titles}))
	require.NoError(t, err)

	var latest store.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/snapshots/latest", &latest))
	assert.Equal(t, 3, latest.TitleCount)
	assert.Equal(t, titles, latest.Titles)
	assert.NotEmpty(t, latest.Keywords)

	var list []store.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/snapshots?limit=5", &list))
	require.Len(t, list, 1)
	assert.Equal(t, latest.ID, list[0].ID)

	var diff service.Diff
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/changes", &diff))
	assert.Equal(t, latest.ID, diff.Current)
	assert.Len(t, diff.Movements, len(latest.Keywords))
}

func TestArticlesEndpoint(t *testing.T) {
	ts, svc := setupTestServer(t, nil)

	_, err := svc.Refresh(context.Background(), service.StaticLoader(service.Batch{Titles: titles}))
	require.NoError(t, err)

	var body articlesResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/articles?keyword=%ED%8A%B9%EA%B2%80%EB%B2%95", &body))
	assert.Equal(t, "특검법", body.Keyword)
	assert.Equal(t, []string{"특검법 국회 통과", "국회 본회의 특검법 가결"}, body.Titles)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/articles", nil))
}

func TestRefreshEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, nil)
	resp, err := http.Post(ts.URL+"/v1/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	ts, _ = setupTestServer(t, service.StaticLoader(service.Batch{Titles: titles}))
	resp, err = http.Post(ts.URL+"/v1/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap store.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, 3, snap.TitleCount)

	ts, _ = setupTestServer(t, func(context.Context) (service.Batch, error) {
		return service.Batch{}, errors.New("crawl failed")
	})
	resp, err = http.Post(ts.URL+"/v1/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 20, clampInt("", 20, 200))
	assert.Equal(t, 20, clampInt("abc", 20, 200))
	assert.Equal(t, 20, clampInt("-3", 20, 200))
	assert.Equal(t, 7, clampInt("7", 20, 200))
	assert.Equal(t, 200, clampInt("999", 20, 200))
}

package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// pagedServer serves fixed-size pages of numbered records, mirroring
// the page/per_page convention of the GitHub REST API.
func pagedServer(t *testing.T, totalRecords, pageSize int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)

		start := (page - 1) * pageSize
		end := start + pageSize
		if end > totalRecords {
			end = totalRecords
		}

		records := make([]map[string]any, 0, pageSize)
		for i := start; i < end; i++ {
			records = append(records, map[string]any{"id": i + 1})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	}))
}

func TestPaginatorCollectsAllPages(t *testing.T) {
	var calls atomic.Int32
	server := pagedServer(t, 60, 30, &calls)
	defer server.Close()

	client, _ := newTestClient(server.URL)

	records, err := client.All(context.Background(), Request{Path: "/user/starred"}, 30)
	require.NoError(t, err)
	require.Len(t, records, 60)
	require.Equal(t, int32(3), calls.Load(), "two full pages plus the empty terminal page")
}

func TestPaginatorTerminationFetchCount(t *testing.T) {
	cases := []struct {
		total    int
		pageSize int
		fetches  int32
	}{
		{total: 0, pageSize: 30, fetches: 1},
		{total: 10, pageSize: 30, fetches: 2},
		{total: 30, pageSize: 30, fetches: 2},
		{total: 95, pageSize: 30, fetches: 5},
	}

	for _, tc := range cases {
		var calls atomic.Int32
		server := pagedServer(t, tc.total, tc.pageSize, &calls)

		client, _ := newTestClient(server.URL)
		records, err := client.All(context.Background(), Request{Path: "/user/starred"}, tc.pageSize)
		require.NoError(t, err)
		require.Len(t, records, tc.total)
		require.Equal(t, tc.fetches, calls.Load(), "total=%d pageSize=%d", tc.total, tc.pageSize)

		server.Close()
	}
}

func TestPaginatorEmptyBodyOverridesNextLink(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// a next link on an empty page must not keep the traversal alive
		w.Header().Set("Link", `<https://api.github.com/user/starred?page=99>; rel="next"`)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	records, err := client.All(context.Background(), Request{Path: "/user/starred"}, 30)
	require.NoError(t, err)
	require.Empty(t, records)
	require.Equal(t, int32(1), calls.Load())
}

func TestPaginatorFollowsNextLink(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("cursor") {
		case "abc":
			_, _ = w.Write([]byte(`[{"id":2}]`))
		case "":
			if r.URL.Query().Get("page") == "1" {
				w.Header().Set("Link", fmt.Sprintf(`<%s/user/starred?cursor=abc>; rel="next"`, server.URL))
				_, _ = w.Write([]byte(`[{"id":1}]`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	records, err := client.All(context.Background(), Request{Path: "/user/starred"}, 30)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestPaginatorPropagatesErrorMidTraversal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	p := client.Paginate(Request{Path: "/user/starred"}, 30)
	var collected int
	for p.Next(context.Background()) {
		collected += len(p.Batch())
	}

	require.Equal(t, 2, collected, "batches emitted before the failure stay valid")
	require.Error(t, p.Err())
	require.Equal(t, KindNotFound, KindOf(p.Err()))
}

func TestPaginatorCancellationBetweenPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	p := client.Paginate(Request{Path: "/user/starred"}, 30)

	require.True(t, p.Next(ctx))
	cancel()
	require.False(t, p.Next(ctx))
	require.ErrorIs(t, p.Err(), context.Canceled)
}

func TestNextLinkPath(t *testing.T) {
	header := `<https://api.github.com/user/starred?page=3&per_page=30>; rel="next", ` +
		`<https://api.github.com/user/starred?page=5&per_page=30>; rel="last"`
	require.Equal(t, "/user/starred?page=3&per_page=30", nextLinkPath(header))

	require.Empty(t, nextLinkPath(""))
	require.Empty(t, nextLinkPath(`<https://api.github.com/user/starred?page=1>; rel="prev"`))
}

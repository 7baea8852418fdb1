// Package testutil starts the in-memory query-api for surface and
// end-to-end tests.
package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/queryapi"
)

type QueryAPI struct {
	*queryapi.Memory
	Server *httptest.Server
}

// NewQueryAPI starts the fake and closes it when the test ends.
func NewQueryAPI(t *testing.T) *QueryAPI {
	t.Helper()
	q := &QueryAPI{Memory: queryapi.New()}
	q.Server = httptest.NewServer(q.Routes())
	t.Cleanup(q.Server.Close)
	return q
}

func (q *QueryAPI) URL() string { return q.Server.URL }

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/jessebenson/numl/internal/adapters/http/api"
	"github.com/jessebenson/numl/internal/adapters/repository"
	"github.com/jessebenson/numl/internal/domain/types"
)

// Mock implementations for testing
type mockDependencies struct {
	summaries []types.SchemaSummary
	schemas   map[string]types.Schema
	listErr   error
	lookupErr error
}

func (m *mockDependencies) Schemas(_ context.Context) ([]types.SchemaSummary, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.summaries, nil
}

func (m *mockDependencies) Lookup(_ context.Context, name string) (types.Schema, error) {
	if m.lookupErr != nil {
		return types.Schema{}, m.lookupErr
	}
	s, ok := m.schemas[name]
	if !ok {
		return types.Schema{}, fmt.Errorf("%w: %q", repository.ErrNotFound, name)
	}
	return s, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newDeps() *mockDependencies {
	sep, enum := " ", false
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &mockDependencies{
		summaries: []types.SchemaSummary{
			{ID: "id-1", Name: "Member", Descriptors: 2, Labels: []string{"Outcome"}, RegisteredAt: at},
		},
		schemas: map[string]types.Schema{
			"Member": {
				ID:           "id-1",
				Name:         "Member",
				RegisteredAt: at,
				Descriptors: []types.Descriptor{
					{Name: "Age", Kind: "numeric", Type: "number"},
					{Name: "City", Kind: "string", Type: "string", Split: "word", Separator: &sep, Enum: &enum},
				},
			},
		},
	}
}

func serve(mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newDeps()
		stats := &mockStatsProvider{stats: map[string]interface{}{"started": true, "schemas": 1}}
		server := api.NewServer(deps, stats)
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(context.Background(), mux)

			Convey("Then the health endpoint reports ok", func() {
				w := serve(mux, http.MethodGet, "/healthz")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})

			Convey("Then the stats endpoint returns the provider's stats", func() {
				w := serve(mux, http.MethodGet, "/stats")
				So(w.Code, ShouldEqual, http.StatusOK)

				var got map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got["started"], ShouldEqual, true)
			})

			Convey("Then the metrics endpoint serves the Prometheus format", func() {
				_ = serve(mux, http.MethodGet, "/healthz")
				w := serve(mux, http.MethodGet, "/metrics")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "http_requests_total")
			})
		})
	})
}

func TestSchemasHandler(t *testing.T) {
	Convey("Given the schema routes", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When listing schemas", func() {
			w := serve(mux, http.MethodGet, "/schemas")

			Convey("Then the summaries are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")

				var got struct {
					Items []types.SchemaSummary `json:"items"`
					Count int                   `json:"count"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Count, ShouldEqual, 1)
				So(got.Items[0].Name, ShouldEqual, "Member")
				So(got.Items[0].Labels, ShouldResemble, []string{"Outcome"})
			})
		})

		Convey("When the listing fails", func() {
			deps.listErr = errors.New("boom")
			w := serve(mux, http.MethodGet, "/schemas")

			Convey("Then a server error is returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "internal_error")
			})
		})

		Convey("When fetching a known schema", func() {
			w := serve(mux, http.MethodGet, "/schemas/Member")

			Convey("Then its descriptors are returned in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got types.Schema
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(len(got.Descriptors), ShouldEqual, 2)
				So(got.Descriptors[0].Name, ShouldEqual, "Age")
				So(*got.Descriptors[1].Separator, ShouldEqual, " ")
				So(strings.Contains(w.Body.String(), `"length"`), ShouldBeFalse)
			})
		})

		Convey("When fetching an unknown schema", func() {
			w := serve(mux, http.MethodGet, "/schemas/Nope")

			Convey("Then not found is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, "not_found")
			})
		})

		Convey("When the lookup fails for another reason", func() {
			deps.lookupErr = errors.New("boom")
			w := serve(mux, http.MethodGet, "/schemas/Member")

			Convey("Then a server error is returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When the path has no name or extra segments", func() {
			So(serve(mux, http.MethodGet, "/schemas/").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodGet, "/schemas/Member/extra").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using a method other than GET", func() {
			So(serve(mux, http.MethodPost, "/schemas").Code, ShouldEqual, http.StatusNotFound)
			So(serve(mux, http.MethodDelete, "/schemas/Member").Code, ShouldEqual, http.StatusNotFound)
			So(serve(mux, http.MethodPut, "/stats").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a wrapped handler", t, func() {
		h := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}, "teapot")

		Convey("When it is served", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))

			Convey("Then the status and body pass through", func() {
				So(w.Code, ShouldEqual, http.StatusTeapot)
				So(w.Body.String(), ShouldEqual, "short and stout")
			})
		})
	})
}

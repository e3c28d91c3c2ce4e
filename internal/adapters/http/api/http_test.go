package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/promptelo/promptelo/internal/domain/types"
)

// fakeDeps is a canned Dependencies implementation.
type fakeDeps struct {
	result  types.Result
	evalErr error
	stats   types.GlobalStats
	statErr error
	count   int
}

func (f *fakeDeps) Evaluate(_ context.Context, prompt, userID string) (types.Result, error) {
	return f.result, f.evalErr
}

func (f *fakeDeps) Count(context.Context) (int, error) { return f.count, nil }

func (f *fakeDeps) Stats(context.Context) (types.GlobalStats, error) {
	return f.stats, f.statErr
}

func (f *fakeDeps) Health(context.Context) types.Health {
	return types.Health{Status: "healthy", DatabaseConnected: true, EmbeddingService: true, Version: "0.1.0"}
}

func newTestMux(deps Dependencies, opts ...ServerOption) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func postScore(mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/score", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestScoreEndpoint(t *testing.T) {
	Convey("Given a healthy service", t, func() {
		deps := &fakeDeps{
			result: types.Result{NoveltyScore: 0.82, Percentile: 91, SimilarCount: 2, IsNovel: true},
			count:  41,
		}
		mux := newTestMux(deps)

		Convey("When a valid prompt is submitted", func() {
			rec := postScore(mux, `{"prompt":"design a cache eviction policy","user_id":"u-1"}`)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var resp types.ScoreResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)

			Convey("Then the verdict and corpus size come back", func() {
				So(resp.Novelty.NoveltyScore, ShouldAlmostEqual, 0.82)
				So(resp.Novelty.IsNovel, ShouldBeTrue)
				So(resp.TotalPrompts, ShouldEqual, 41)
				So(resp.Timestamp.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When the prompt is empty", func() {
			rec := postScore(mux, `{"prompt":"   "}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not JSON", func() {
			rec := postScore(mux, `not json`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the prompt exceeds the limit", func() {
			mux := newTestMux(deps, WithMaxPromptLen(10))
			rec := postScore(mux, `{"prompt":"`+strings.Repeat("a", 11)+`"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is GET", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/score", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a failing service", t, func() {
		mux := newTestMux(&fakeDeps{evalErr: errors.New("embedding down")})

		Convey("Then the score endpoint reports an internal error", func() {
			rec := postScore(mux, `{"prompt":"hello there"}`)
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)

			Convey("And the upstream detail is not leaked", func() {
				So(rec.Body.String(), ShouldNotContainSubstring, "embedding down")
			})
		})
	})
}

func TestStatsAndHealthEndpoints(t *testing.T) {
	Convey("Given a service with stored prompts", t, func() {
		mux := newTestMux(&fakeDeps{
			stats: types.GlobalStats{TotalPrompts: 7, UniqueUsers: 3, AvgNoveltyScore: 0.6},
		})

		Convey("Then stats are served as JSON", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var st types.GlobalStats
			So(json.Unmarshal(rec.Body.Bytes(), &st), ShouldBeNil)
			So(st.TotalPrompts, ShouldEqual, 7)
			So(st.UniqueUsers, ShouldEqual, 3)
		})

		Convey("Then health reports dependency status", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var h types.Health
			So(json.Unmarshal(rec.Body.Bytes(), &h), ShouldBeNil)
			So(h.Status, ShouldEqual, "healthy")
			So(h.DatabaseConnected, ShouldBeTrue)
		})

		Convey("Then the root banner is served", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "promptelo-community")
		})

		Convey("Then unknown paths fall through to 404", func() {
			req := httptest.NewRequest(http.MethodGet, "/nope", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRateLimiting(t *testing.T) {
	Convey("Given a two-request budget", t, func() {
		deps := &fakeDeps{result: types.Result{NoveltyScore: 1}}
		mux := newTestMux(deps, WithRateLimit(2, time.Minute))

		Convey("When a client exhausts its budget", func() {
			first := postScore(mux, `{"prompt":"one"}`)
			second := postScore(mux, `{"prompt":"two"}`)
			third := postScore(mux, `{"prompt":"three"}`)

			Convey("Then the third request is throttled", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusOK)
				So(third.Code, ShouldEqual, http.StatusTooManyRequests)
			})

			Convey("Then the throttle response carries the limit headers", func() {
				So(third.Header().Get("X-RateLimit-Limit"), ShouldEqual, "2")
				So(third.Header().Get("X-RateLimit-Remaining"), ShouldEqual, "0")
				So(third.Header().Get("Retry-After"), ShouldNotBeEmpty)
			})

			Convey("Then health stays reachable for the throttled client", func() {
				req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, req)
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When requests come from distinct clients", func() {
			post := func(ip string) int {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(`{"prompt":"x"}`))
				req.Header.Set("X-Forwarded-For", ip)
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, req)
				return rec.Code
			}

			Convey("Then budgets are tracked per client", func() {
				So(post("10.0.0.1"), ShouldEqual, http.StatusOK)
				So(post("10.0.0.1"), ShouldEqual, http.StatusOK)
				So(post("10.0.0.1"), ShouldEqual, http.StatusTooManyRequests)
				So(post("10.0.0.2"), ShouldEqual, http.StatusOK)
			})
		})
	})
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/promptelo/promptelo/internal/domain/types"
)

func TestScore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a responsive novelty server", t, func() {
		var gotPath string
		var gotReq types.ScoreRequest
		var decodeErr error

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			decodeErr = json.NewDecoder(r.Body).Decode(&gotReq)

			_ = json.NewEncoder(w).Encode(types.ScoreResponse{
				Novelty:      types.Result{NoveltyScore: 0.73, Percentile: 88, SimilarCount: 1, IsNovel: true},
				TotalPrompts: 12,
			})
		}))
		defer server.Close()

		c := New(server.URL, WithUserID("anon-7"))

		Convey("Then the outcome carries the server verdict", func() {
			outcome := c.Score(ctx, "summarize the incident report")
			res, ok := outcome.Result()
			So(ok, ShouldBeTrue)
			So(res.NoveltyScore, ShouldAlmostEqual, 0.73)
			So(res.IsNovel, ShouldBeTrue)

			So(gotPath, ShouldEqual, "/api/v1/score")
			So(decodeErr, ShouldBeNil)
			So(gotReq.Prompt, ShouldEqual, "summarize the incident report")
			So(gotReq.UserID, ShouldEqual, "anon-7")
		})
	})

	Convey("Given a server that errors", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		Convey("Then the outcome is unavailable, not an error", func() {
			outcome := New(server.URL).Score(ctx, "anything")
			_, ok := outcome.Result()
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a server that returns garbage", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>proxy error</html>"))
		}))
		defer server.Close()

		Convey("Then the outcome is unavailable", func() {
			outcome := New(server.URL).Score(ctx, "anything")
			_, ok := outcome.Result()
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a server slower than the client timeout", t, func() {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer func() {
			close(release)
			server.Close()
		}()

		c := New(server.URL, WithTimeout(50*time.Millisecond))

		Convey("Then the call returns unavailable within the budget", func() {
			start := time.Now()
			outcome := c.Score(ctx, "anything")
			elapsed := time.Since(start)

			_, ok := outcome.Result()
			So(ok, ShouldBeFalse)
			So(elapsed, ShouldBeLessThan, time.Second)
		})
	})

	Convey("Given no server at all", t, func() {
		c := New("http://127.0.0.1:1", WithTimeout(100*time.Millisecond))

		Convey("Then the outcome is unavailable", func() {
			outcome := c.Score(ctx, "anything")
			_, ok := outcome.Result()
			So(ok, ShouldBeFalse)
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	ctx := context.Background()

	Convey("Given a responsive server", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v1/stats":
				_ = json.NewEncoder(w).Encode(types.GlobalStats{TotalPrompts: 5, UniqueUsers: 2})
			case "/api/v1/health":
				_ = json.NewEncoder(w).Encode(types.Health{Status: "healthy"})
			default:
				http.NotFound(w, r)
			}
		}))
		defer server.Close()

		c := New(server.URL)

		Convey("Then stats round-trip", func() {
			st, err := c.Stats(ctx)
			So(err, ShouldBeNil)
			So(st.TotalPrompts, ShouldEqual, 5)
		})

		Convey("Then health round-trips", func() {
			h, err := c.Health(ctx)
			So(err, ShouldBeNil)
			So(h.Status, ShouldEqual, "healthy")
		})
	})

	Convey("Given a server that 404s", t, func() {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		Convey("Then stats report the unexpected status", func() {
			_, err := New(server.URL).Stats(ctx)
			So(err, ShouldNotBeNil)
		})
	})
}

package seeder

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/promptelo/promptelo/internal/adapters/http/api"
	"github.com/promptelo/promptelo/internal/adapters/repository"
	service "github.com/promptelo/promptelo/internal/app"
)

// hashEmbedder derives a deterministic unit vector from the text, so equal
// prompts embed identically and distinct prompts land far apart.
type hashEmbedder struct{ dim int }

func (h hashEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(f.Sum64())))

	vec := make([]float64, h.dim)
	var norm float64
	for i := range vec {
		vec[i] = rng.NormFloat64()
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

func (hashEmbedder) Ping(context.Context) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(
		service.WithStore(repository.NewMemStore(32)),
		service.WithEmbedder(hashEmbedder{dim: 32}),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("starting service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, api.WithRateLimit(10000, time.Minute)).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestSeedRun(t *testing.T) {
	Convey("Given a live community server", t, func() {
		server := newTestServer(t)
		defer server.Close()

		config := &Config{
			BaseURL:    server.URL,
			NumPrompts: 12,
			Workers:    3,
			Timeout:    5 * time.Second,
		}

		Convey("When a seeding run executes", func() {
			err := Run(context.Background(), config)

			Convey("Then it completes with every invariant holding", func() {
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given no server", t, func() {
		config := &Config{
			BaseURL:    "http://127.0.0.1:1",
			NumPrompts: 2,
			Workers:    1,
			Timeout:    200 * time.Millisecond,
		}

		Convey("Then the health check fails fast", func() {
			So(Run(context.Background(), config), ShouldNotBeNil)
		})
	})
}

func TestGeneratePrompts(t *testing.T) {
	Convey("Given a requested count", t, func() {
		stats := &Stats{}
		subs := generatePrompts(context.Background(), 50, stats)

		Convey("Then exactly that many prompts exist with authors", func() {
			So(subs, ShouldHaveLength, 50)
			So(stats.PromptsGenerated, ShouldEqual, 50)
			for _, s := range subs {
				So(s.Prompt, ShouldNotBeEmpty)
				So(s.UserID, ShouldNotBeEmpty)
			}
		})
	})
}

package service

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/promptelo/promptelo/internal/adapters/repository"
)

// fakeEmbedder maps known prompts to fixed vectors.
type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float64{0, 0, 1}, nil
}

func (f *fakeEmbedder) Ping(context.Context) error { return f.err }

// failingInsertStore wraps a store and fails every Insert.
type failingInsertStore struct {
	repository.Store
}

func (failingInsertStore) Insert(context.Context, repository.Record) error {
	return errors.New("disk full")
}

// failingQueryStore wraps a store and fails every Query.
type failingQueryStore struct {
	repository.Store
}

func (failingQueryStore) Query(context.Context, []float64, int) ([]repository.Neighbor, error) {
	return nil, errors.New("index corrupt")
}

func newTestService(store repository.Store, emb *fakeEmbedder) *Service {
	s := New(WithStore(store), WithEmbedder(emb))
	if err := s.Start(context.Background()); err != nil {
		panic(err)
	}
	return s
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	emb := &fakeEmbedder{vectors: map[string][]float64{
		"refactor the parser": {1, 0, 0},
		"something unrelated": {0, 1, 0},
	}}

	Convey("Given an empty corpus", t, func() {
		svc := newTestService(repository.NewMemStore(3), emb)

		Convey("When the first prompt is evaluated", func() {
			res, err := svc.Evaluate(ctx, "refactor the parser", "alice")
			So(err, ShouldBeNil)

			Convey("Then it is maximally novel with no similar prompts", func() {
				So(res.NoveltyScore, ShouldEqual, 1.0)
				So(res.Percentile, ShouldEqual, 50)
				So(res.SimilarCount, ShouldEqual, 0)
			})

			Convey("And the prompt is recorded for future callers", func() {
				n, err := svc.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a prompt evaluated twice", t, func() {
		svc := newTestService(repository.NewMemStore(3), emb)

		first, err := svc.Evaluate(ctx, "refactor the parser", "alice")
		So(err, ShouldBeNil)
		second, err := svc.Evaluate(ctx, "refactor the parser", "bob")
		So(err, ShouldBeNil)

		Convey("Then the repeat scores lower and sees its predecessor", func() {
			So(second.NoveltyScore, ShouldBeLessThan, first.NoveltyScore)
			So(second.SimilarCount, ShouldEqual, 1)
		})

		Convey("And an unrelated prompt still scores high", func() {
			res, err := svc.Evaluate(ctx, "something unrelated", "carol")
			So(err, ShouldBeNil)
			So(res.SimilarCount, ShouldEqual, 0)
			So(res.NoveltyScore, ShouldEqual, 1.0)
		})
	})

	Convey("Given a store that cannot accept inserts", t, func() {
		svc := newTestService(failingInsertStore{repository.NewMemStore(3)}, emb)

		Convey("Then the verdict still comes back without error", func() {
			res, err := svc.Evaluate(ctx, "refactor the parser", "")
			So(err, ShouldBeNil)
			So(res.NoveltyScore, ShouldEqual, 1.0)
		})
	})

	Convey("Given a store whose queries fail", t, func() {
		svc := newTestService(failingQueryStore{repository.NewMemStore(3)}, emb)

		Convey("Then the error propagates to the caller", func() {
			_, err := svc.Evaluate(ctx, "refactor the parser", "")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an embedding provider that is down", t, func() {
		svc := newTestService(repository.NewMemStore(3), &fakeEmbedder{err: errors.New("upstream 503")})

		Convey("Then the error propagates to the caller", func() {
			_, err := svc.Evaluate(ctx, "refactor the parser", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service missing its store", t, func() {
		svc := New(WithEmbedder(&fakeEmbedder{}))
		So(errors.Is(svc.Start(ctx), ErrNoStore), ShouldBeTrue)
	})

	Convey("Given a service missing its embedder", t, func() {
		svc := New(WithStore(repository.NewMemStore(3)))
		So(errors.Is(svc.Start(ctx), ErrNoEmbedder), ShouldBeTrue)
	})

	Convey("Given a fully wired service that was never started", t, func() {
		svc := New(WithStore(repository.NewMemStore(3)), WithEmbedder(&fakeEmbedder{}))

		Convey("Then serving methods refuse instead of dereferencing", func() {
			_, err := svc.Evaluate(ctx, "refactor the parser", "alice")
			So(errors.Is(err, ErrNotStarted), ShouldBeTrue)

			_, err = svc.Count(ctx)
			So(errors.Is(err, ErrNotStarted), ShouldBeTrue)

			_, err = svc.Stats(ctx)
			So(errors.Is(err, ErrNotStarted), ShouldBeTrue)

			So(svc.Health(ctx).Status, ShouldEqual, "degraded")
		})
	})

	Convey("Given a started service", t, func() {
		store := repository.NewMemStore(3)
		svc := newTestService(store, &fakeEmbedder{})

		Convey("When it stops, the store is closed", func() {
			svc.Stop()
			So(errors.Is(store.Ping(ctx), repository.ErrStoreClosed), ShouldBeTrue)
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	ctx := context.Background()
	emb := &fakeEmbedder{vectors: map[string][]float64{
		"a": {1, 0, 0},
		"b": {0, 1, 0},
	}}

	Convey("Given a corpus with two users", t, func() {
		svc := newTestService(repository.NewMemStore(3), emb)
		_, err := svc.Evaluate(ctx, "a", "alice")
		So(err, ShouldBeNil)
		_, err = svc.Evaluate(ctx, "b", "bob")
		So(err, ShouldBeNil)

		st, err := svc.Stats(ctx)
		So(err, ShouldBeNil)

		Convey("Then stats expose only aggregates", func() {
			So(st.TotalPrompts, ShouldEqual, 2)
			So(st.UniqueUsers, ShouldEqual, 2)
			So(st.TopNoveltyScores, ShouldHaveLength, 2)
		})
	})

	Convey("Given healthy dependencies", t, func() {
		svc := newTestService(repository.NewMemStore(3), emb)
		h := svc.Health(ctx)
		So(h.Status, ShouldEqual, "healthy")
		So(h.DatabaseConnected, ShouldBeTrue)
		So(h.EmbeddingService, ShouldBeTrue)
	})

	Convey("Given an unreachable embedding provider", t, func() {
		svc := newTestService(repository.NewMemStore(3), &fakeEmbedder{err: errors.New("dns")})
		h := svc.Health(ctx)
		So(h.Status, ShouldEqual, "degraded")
		So(h.EmbeddingService, ShouldBeFalse)
	})
}

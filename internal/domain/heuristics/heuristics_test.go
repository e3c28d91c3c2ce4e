package heuristics_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/promptelo/promptelo/internal/domain/heuristics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreBounds(t *testing.T) {
	Convey("Given a variety of prompt texts", t, func() {
		prompts := []string{
			"",
			"fix it",
			"help",
			"Refactor internal/server/routes.go to use the new middleware chain. Keep the /healthz endpoint untouched.",
			"I'm working on a Go project. Currently the parser in lexer.go crashes with error: index out of range at line 42. Can you debug it? It must stay compatible with Go 1.21.",
			"What if we combine the cache layer with the rate limiter? Explore alternative designs, maybe something elegant.",
			strings.Repeat("implement the function parse_config in config/loader.go with tests ", 20),
			"🤖 unicode éèë prompts should also work fine. 日本語",
		}

		Convey("Then every sub-score stays within [0,1]", func() {
			for _, p := range prompts {
				s, err := heuristics.Score(p)
				So(err, ShouldBeNil)
				for _, v := range []float64{s.Clarity, s.Specificity, s.Context, s.Creativity} {
					So(v, ShouldBeBetweenOrEqual, 0, 1)
				}
			}
		})
	})

	Convey("Given the empty string", t, func() {
		Convey("Then scores are deterministic across repeated calls", func() {
			first, err := heuristics.Score("")
			So(err, ShouldBeNil)
			for i := 0; i < 10; i++ {
				again, err := heuristics.Score("")
				So(err, ShouldBeNil)
				So(again, ShouldResemble, first)
			}
		})
	})

	Convey("Given non-UTF-8 input", t, func() {
		Convey("Then the scorer fails fast", func() {
			_, err := heuristics.Score(string([]byte{0xff, 0xfe, 0xfd}))
			So(errors.Is(err, heuristics.ErrInvalidInput), ShouldBeTrue)
		})
	})
}

func TestSpecificityMonotonicity(t *testing.T) {
	Convey("Given a fixed base prompt", t, func() {
		bases := []string{
			"",
			"please make the tests pass",
			"I want a faster build. It currently takes ten minutes because of the docker step.",
			"Explore a different approach for the importer and combine it with the scheduler and the cache.",
		}

		Convey("When a concrete file path is appended", func() {
			Convey("Then specificity never decreases", func() {
				for _, base := range bases {
					before := heuristics.Specificity(base)
					after := heuristics.Specificity(base + " in cmd/server/main.go")
					So(after, ShouldBeGreaterThanOrEqualTo, before)
				}
			})
		})
	})
}

func TestCriterionSignals(t *testing.T) {
	Convey("Given clarity signals", t, func() {
		Convey("A clear action verb raises clarity over a vague request", func() {
			vague := heuristics.Clarity("maybe do something about stuff")
			clear := heuristics.Clarity("Implement the retry loop. Validate the response before returning.")
			So(clear, ShouldBeGreaterThan, vague)
		})

		Convey("Formatting such as code fences raises clarity", func() {
			plain := heuristics.Clarity("rename the handler")
			fenced := heuristics.Clarity("rename the handler\n```go\nfunc Handler() {}\n```")
			So(fenced, ShouldBeGreaterThan, plain)
		})
	})

	Convey("Given context signals", t, func() {
		Convey("Error text raises context", func() {
			without := heuristics.Context("the importer is slow")
			with := heuristics.Context("the importer is slow, error: connection refused, traceback follows")
			So(with, ShouldBeGreaterThan, without)
		})

		Convey("Background and constraints raise context", func() {
			bare := heuristics.Context("rename the package")
			rich := heuristics.Context("I'm working on a CLI. Currently it must avoid cgo because we cross-compile.")
			So(rich, ShouldBeGreaterThan, bare)
		})
	})

	Convey("Given creativity signals", t, func() {
		Convey("Boilerplate requests score lower than exploratory ones", func() {
			boiler := heuristics.Creativity("how do I write a todo app")
			curious := heuristics.Creativity("What if we experiment with an unconventional design and combine parsing with inference?")
			So(curious, ShouldBeGreaterThan, boiler)
		})
	})

	Convey("Given independence of criteria", t, func() {
		Convey("A pure specificity token leaves the other criteria alone", func() {
			base := "describe the architecture"
			withPath := base + " cmd/api/router.go"
			So(heuristics.Creativity(withPath), ShouldEqual, heuristics.Creativity(base))
		})
	})
}

func TestScoresMin(t *testing.T) {
	Convey("Given a Scores value", t, func() {
		s := heuristics.Scores{Clarity: 0.9, Specificity: 0.8, Context: 0.3, Creativity: 0.6}

		Convey("Then Min picks the lowest criterion", func() {
			So(s.Min(), ShouldEqual, 0.3)
		})
	})
}

package smoke

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cpstats/pkg/logger"
)

// fakeService serves /healthz and a compare endpoint whose body is produced by render.
func fakeService(healthy bool, render func(n int64, h1, h2 string) (int, string)) (*httptest.Server, *int64) {
	var calls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("# metrics\n"))
	})
	mux.HandleFunc("/api/codeforces/compare", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		status, body := render(n, r.URL.Query().Get("h1"), r.URL.Query().Get("h2"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	return httptest.NewServer(mux), &calls
}

func stable(_ int64, h1, h2 string) (int, string) {
	return http.StatusOK, fmt.Sprintf(`{"a":{"handle":%q},"b":{"handle":%q}}`, h1, h2)
}

func TestParseHandles(t *testing.T) {
	Convey("Given a comma separated handle list", t, func() {
		Convey("Then blanks and repeats should be dropped", func() {
			So(ParseHandles(" tourist, ,Petr,tourist,jiangly "), ShouldResemble, []string{"tourist", "Petr", "jiangly"})
			So(ParseHandles(""), ShouldBeEmpty)
		})

		Convey("Then adjacent pairs should be formed", func() {
			So(Pairs([]string{"a", "b", "c"}), ShouldResemble, []Pair{{A: "a", B: "b"}, {A: "b", B: "c"}})
			So(Pairs([]string{"a"}), ShouldBeEmpty)
		})
	})
}

func TestResult(t *testing.T) {
	Convey("Given a compare result", t, func() {
		res := Result{
			First:  Call{Status: 200, Latency: 400 * time.Millisecond, Body: []byte("x")},
			Second: Call{Status: 200, Latency: 100 * time.Millisecond, Body: []byte("x")},
		}

		Convey("Then speedup and consistency should be derived", func() {
			So(res.Consistent(), ShouldBeTrue)
			So(res.Speedup(), ShouldEqual, 4)
		})

		Convey("Then an error or a body change should be inconsistent", func() {
			res.Second.Body = []byte("y")
			So(res.Consistent(), ShouldBeFalse)
			res.Second.Body = []byte("x")
			res.Err = errors.New("boom")
			So(res.Consistent(), ShouldBeFalse)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a smoke run", t, func() {
		ctx := context.Background()
		cfg := &Config{Handles: []string{"alice", "bob", "carol"}, Timeout: 5 * time.Second, Workers: 2, Verbose: true}
		opt := WithLogger(logger.Nop())

		Convey("When the service answers consistently", func() {
			srv, calls := fakeService(true, stable)
			defer srv.Close()
			cfg.BaseURL = srv.URL + "/"

			summary, err := Run(ctx, cfg, opt)

			Convey("Then every pair should pass after two calls each", func() {
				So(err, ShouldBeNil)
				So(summary.Pairs, ShouldEqual, 2)
				So(summary.Passed, ShouldEqual, 2)
				So(atomic.LoadInt64(calls), ShouldEqual, 4)
				So(string(summary.Results[0].First.Body), ShouldContainSubstring, `"alice"`)
				So(string(summary.Results[1].Second.Body), ShouldContainSubstring, `"carol"`)
			})
		})

		Convey("When the second response differs", func() {
			srv, _ := fakeService(true, func(n int64, h1, h2 string) (int, string) {
				return http.StatusOK, fmt.Sprintf(`{"n":%d}`, n)
			})
			defer srv.Close()
			cfg.BaseURL = srv.URL

			summary, err := Run(ctx, cfg, opt)

			Convey("Then the run should report a mismatch", func() {
				So(errors.Is(err, ErrMismatch), ShouldBeTrue)
				So(summary.Mismatched, ShouldEqual, 2)
			})
		})

		Convey("When a handle is unknown", func() {
			srv, _ := fakeService(true, func(n int64, h1, h2 string) (int, string) {
				if h1 == "carol" || h2 == "carol" {
					return http.StatusNotFound, `{"error":"not found","code":"not_found"}`
				}
				return stable(n, h1, h2)
			})
			defer srv.Close()
			cfg.BaseURL = srv.URL

			summary, err := Run(ctx, cfg, opt)

			Convey("Then the pair should fail and the rest pass", func() {
				So(errors.Is(err, ErrRequest), ShouldBeTrue)
				So(summary.Failed, ShouldEqual, 1)
				So(summary.Passed, ShouldEqual, 1)
				So(summary.Results[1].Err.Error(), ShouldContainSubstring, "status 404")
			})
		})

		Convey("When the service is unhealthy", func() {
			srv, calls := fakeService(false, stable)
			defer srv.Close()
			cfg.BaseURL = srv.URL

			_, err := Run(ctx, cfg, opt)

			Convey("Then no compare should be attempted", func() {
				So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
				So(atomic.LoadInt64(calls), ShouldEqual, 0)
			})
		})

		Convey("When the config is incomplete", func() {
			_, err := Run(ctx, &Config{Handles: []string{"a", "b"}}, opt)
			So(errors.Is(err, ErrConfig), ShouldBeTrue)

			_, err = Run(ctx, &Config{BaseURL: "http://localhost", Handles: []string{"a"}}, opt)
			So(errors.Is(err, ErrConfig), ShouldBeTrue)
		})
	})
}

func TestShowHelp(t *testing.T) {
	Convey("Given the help text", t, func() {
		var b strings.Builder
		ShowHelp(&b)
		So(b.String(), ShouldContainSubstring, "-handles")
	})
}

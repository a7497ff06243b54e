package judge_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/okian/cpstats/internal/adapters/judge"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	Convey("Given a judge client against a fake server", t, func() {
		var lastReq *http.Request
		var lastBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastReq = r
			if r.Method == http.MethodPost {
				_ = json.NewDecoder(r.Body).Decode(&lastBody)
			}
			switch r.URL.Path {
			case "/ok":
				_, _ = w.Write([]byte(`{"value":42}`))
			case "/missing":
				w.WriteHeader(http.StatusNotFound)
			case "/busy":
				w.WriteHeader(http.StatusTooManyRequests)
			case "/slow":
				time.Sleep(200 * time.Millisecond)
				_, _ = w.Write([]byte(`{}`))
			case "/broken":
				_, _ = w.Write([]byte(`{not json`))
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		}))
		defer server.Close()

		client := judge.NewClient("fake", server.URL+"/",
			judge.WithRateLimit(0, 0),
			judge.WithUserAgent("cpstats-test"),
			judge.WithHeader("Referer", "https://example.com"),
			judge.WithTimeout(50*time.Millisecond),
		)
		ctx := context.Background()

		Convey("When the request succeeds", func() {
			resp, err := client.Get(ctx, "ok", "/ok", url.Values{"handle": {"tourist"}})

			Convey("Then the body should decode and headers should be sent", func() {
				So(err, ShouldBeNil)
				So(resp.OK(), ShouldBeTrue)
				var v struct{ Value int }
				So(resp.Decode(&v), ShouldBeNil)
				So(v.Value, ShouldEqual, 42)
				So(lastReq.URL.Query().Get("handle"), ShouldEqual, "tourist")
				So(lastReq.Header.Get("User-Agent"), ShouldEqual, "cpstats-test")
				So(lastReq.Header.Get("Referer"), ShouldEqual, "https://example.com")
				So(client.Name(), ShouldEqual, "fake")
			})
		})

		Convey("When posting JSON", func() {
			_, err := client.PostJSON(ctx, "ok", "/ok", map[string]string{"query": "q"})

			Convey("Then the body and content type should be sent", func() {
				So(err, ShouldBeNil)
				So(lastReq.Header.Get("Content-Type"), ShouldEqual, "application/json")
				So(lastBody["query"], ShouldEqual, "q")
			})
		})

		Convey("When the judge answers 404", func() {
			resp, err := client.Get(ctx, "missing", "/missing", nil)

			Convey("Then the status should map to ErrNotFound", func() {
				So(err, ShouldBeNil)
				So(errors.Is(resp.StatusError(), judge.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the judge throttles", func() {
			resp, _ := client.Get(ctx, "busy", "/busy", nil)

			Convey("Then it should be an upstream failure without retry", func() {
				So(resp.Transient(), ShouldBeTrue)
				So(errors.Is(resp.StatusError(), judge.ErrUpstream), ShouldBeTrue)
			})
		})

		Convey("When the judge errors", func() {
			resp, _ := client.Get(ctx, "boom", "/boom", nil)
			So(resp.Transient(), ShouldBeTrue)
			So(errors.Is(resp.StatusError(), judge.ErrUpstream), ShouldBeTrue)
		})

		Convey("When the judge is slower than the timeout", func() {
			_, err := client.Get(ctx, "slow", "/slow", nil)

			Convey("Then it should fail as upstream", func() {
				So(errors.Is(err, judge.ErrUpstream), ShouldBeTrue)
			})
		})

		Convey("When the body is malformed", func() {
			resp, err := client.Get(ctx, "broken", "/broken", nil)
			So(err, ShouldBeNil)
			So(errors.Is(resp.Decode(&struct{}{}), judge.ErrUpstream), ShouldBeTrue)
		})

		Convey("When the caller cancels", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := client.Get(cctx, "ok", "/ok", nil)
			So(errors.Is(err, judge.ErrUpstream), ShouldBeTrue)
		})
	})
}

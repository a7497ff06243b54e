package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/cpstats/internal/adapters/http/api"
	"github.com/okian/cpstats/internal/adapters/judge"
	service "github.com/okian/cpstats/internal/app"
	"github.com/okian/cpstats/internal/app/pipeline"
	"github.com/okian/cpstats/internal/domain/aggregate"
	"github.com/okian/cpstats/internal/domain/coach"
	"github.com/okian/cpstats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	profileErr error
	compareErr error
	lcErr      error

	lastGoal  int
	lastQuery service.StatsQuery
}

func profileOf(handle string) pipeline.Profile {
	return pipeline.Profile{
		Info:          model.UserInfo{Handle: handle, Rating: 1500, MaxRating: 1600},
		RatingHistory: []model.RatingChange{{ContestName: "Round 1", NewRating: 1400}, {ContestName: "Round 2", NewRating: 1500}},
		ContestCount:  2,
		Result: aggregate.Aggregate([]model.Submission{{
			Verdict: model.VerdictAccepted,
			Problem: &model.Problem{ContestID: 1, Index: "A", Rating: model.Rated(800), Tags: []string{"math"}},
		}}, aggregate.WithTagProblems()),
	}
}

func (m *mockDependencies) Profile(_ context.Context, handle string) (pipeline.Profile, error) {
	if m.profileErr != nil {
		return pipeline.Profile{}, m.profileErr
	}
	return profileOf(handle), nil
}

func (m *mockDependencies) Compare(_ context.Context, h1, h2 string) (service.Comparison, error) {
	if h1 == "" || h2 == "" {
		return service.Comparison{}, fmt.Errorf("%w: both handles are required", pipeline.ErrValidation)
	}
	if m.compareErr != nil {
		return service.Comparison{}, m.compareErr
	}
	return service.Comparison{A: profileOf(h1), B: profileOf(h2)}, nil
}

func (m *mockDependencies) CodeforcesCoach(_ context.Context, handle string, goal int) (service.CoachReport, error) {
	m.lastGoal = goal
	return service.CoachReport{Handle: handle, TargetRating: goal, AdviceSource: coach.SourceSimulated}, nil
}

func (m *mockDependencies) Sheet(_ context.Context, handle, ladderID string) (service.Sheet, error) {
	if ladderID != "div2a" {
		return service.Sheet{}, fmt.Errorf("%w: unknown ladder %q", pipeline.ErrValidation, ladderID)
	}
	return service.Sheet{Handle: handle}, nil
}

func (m *mockDependencies) LeetCode(_ context.Context, username string) (model.LeetCodeProfile, error) {
	if m.lcErr != nil {
		return model.LeetCodeProfile{}, m.lcErr
	}
	return model.LeetCodeProfile{MatchedUser: &model.LeetCodeUser{Username: username}}, nil
}

func (m *mockDependencies) LeetCodeCoach(_ context.Context, username string, _, _ int) (coach.LeetCodeReport, error) {
	if m.lcErr != nil {
		return coach.LeetCodeReport{}, m.lcErr
	}
	return coach.LeetCodeReport{UserLevel: coach.LevelBeginner, AdviceSource: coach.SourceFallback}, nil
}

func (m *mockDependencies) Stats(_ context.Context, q service.StatsQuery) (service.StatsReport, error) {
	m.lastQuery = q
	if q.Codeforces == "" && q.LeetCode == "" && q.AtCoder == "" && q.CodeChef == "" {
		return service.StatsReport{}, fmt.Errorf("%w: provide at least one handle", pipeline.ErrValidation)
	}
	n := 5
	return service.StatsReport{Codeforces: service.PlatformResult{Handle: q.Codeforces, Solved: &n}, Total: n}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Routes(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{}
		stats := &mockStatsProvider{stats: map[string]interface{}{"cachedProfiles": 3}}
		h := api.NewServer(deps, stats).Handler(context.Background())

		Convey("When requesting a profile", func() {
			w := serve(h, http.MethodGet, "/api/codeforces?handle=alice", "")

			Convey("Then it should return the profile JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)

				var got map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got["totalSolved"], ShouldEqual, 1)
				So(got["tagCounts"], ShouldResemble, map[string]any{"math": float64(1)})
				So(got["info"].(map[string]any)["handle"], ShouldEqual, "alice")
			})
		})

		Convey("When requesting a profile without a handle", func() {
			w := serve(h, http.MethodGet, "/api/codeforces", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
		})

		Convey("When the handle does not exist", func() {
			deps.profileErr = fmt.Errorf("%w: bob: %w", pipeline.ErrNotFound, judge.ErrNotFound)
			w := serve(h, http.MethodGet, "/api/codeforces?handle=bob", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("When comparing handles", func() {
			w := serve(h, http.MethodGet, "/api/codeforces/compare?h1=alice&h2=bob", "")

			Convey("Then both profiles should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got service.Comparison
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.A.Info.Handle, ShouldEqual, "alice")
				So(got.B.Info.Handle, ShouldEqual, "bob")
			})
		})

		Convey("When comparing with one handle", func() {
			w := serve(h, http.MethodGet, "/api/codeforces/compare?h1=alice", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the judge fails during compare", func() {
			deps.compareErr = fmt.Errorf("%w: submissions of carol: timeout", pipeline.ErrUpstream)
			w := serve(h, http.MethodGet, "/api/codeforces/compare?h1=alice&h2=carol", "")

			Convey("Then it should be an upstream error inviting a retry", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(errorCode(w), ShouldEqual, "upstream_error")
				So(w.Body.String(), ShouldContainSubstring, "retry")
			})
		})

		Convey("When posting a coach request", func() {
			w := serve(h, http.MethodPost, "/api/codeforces/coach", `{"handle":"alice","goal":1700}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastGoal, ShouldEqual, 1700)
			So(w.Body.String(), ShouldContainSubstring, `"adviceSource":"simulated"`)
		})

		Convey("When posting a malformed coach request", func() {
			w := serve(h, http.MethodPost, "/api/codeforces/coach", `{"handle":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting a coach request without a handle", func() {
			w := serve(h, http.MethodPost, "/api/codeforces/coach", `{"goal":1700}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When requesting a known ladder", func() {
			w := serve(h, http.MethodPost, "/api/codeforces/sheet", `{"handle":"alice","ladderId":"div2a"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When requesting an unknown ladder", func() {
			w := serve(h, http.MethodPost, "/api/codeforces/sheet", `{"ladderId":"zzz"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When LeetCode rejects the query", func() {
			deps.lcErr = fmt.Errorf("leetcode neo: %w: bad query", judge.ErrRejected)
			w := serve(h, http.MethodGet, "/api/leetcode?username=neo", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "rejected")
		})

		Convey("When requesting a LeetCode profile", func() {
			w := serve(h, http.MethodGet, "/api/leetcode?username=neo", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"matchedUser"`)
		})

		Convey("When posting a LeetCode coach request", func() {
			w := serve(h, http.MethodPost, "/api/leetcode/coach", `{"username":"neo","goalMedium":50}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"userLevel":"beginner"`)
		})

		Convey("When requesting multi-platform stats", func() {
			w := serve(h, http.MethodGet, "/api/stats?cf=alice&lc=neo&at=&cc=chef", "")

			Convey("Then the query should be forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery, ShouldResemble, service.StatsQuery{Codeforces: "alice", LeetCode: "neo", CodeChef: "chef"})
				So(w.Body.String(), ShouldContainSubstring, `"total":5`)
			})
		})

		Convey("When requesting stats without handles", func() {
			w := serve(h, http.MethodGet, "/api/stats", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When requesting the health endpoint", func() {
			w := serve(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When requesting internal stats", func() {
			w := serve(h, http.MethodGet, "/internal/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"cachedProfiles":3`)
		})

		Convey("When requesting an unknown route", func() {
			w := serve(h, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When requesting a route with the wrong method", func() {
			w := serve(h, http.MethodGet, "/api/codeforces/coach", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("When a caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})
	})
}

func TestServer_Charts(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{}
		h := api.NewServer(deps, &mockStatsProvider{}).Handler(context.Background())

		Convey("When requesting the rating chart", func() {
			w := serve(h, http.MethodGet, "/charts/rating?handle=alice", "")

			Convey("Then an echarts page should be rendered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				So(w.Body.String(), ShouldContainSubstring, "echarts")
				So(w.Body.String(), ShouldContainSubstring, "Round 2")
			})
		})

		Convey("When requesting the bucket chart", func() {
			w := serve(h, http.MethodGet, "/charts/buckets?handle=alice", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "1901+")
		})

		Convey("When requesting a chart without a handle", func() {
			w := serve(h, http.MethodGet, "/charts/rating", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

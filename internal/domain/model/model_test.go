package model_test

import (
	"testing"

	model "github.com/okian/cpstats/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSubmission(t *testing.T) {
	convey.Convey("Given submissions with various verdicts", t, func() {
		p := &model.Problem{ContestID: 100, Index: "A"}

		convey.Convey("When the verdict is OK and the problem is present", func() {
			s := model.Submission{Verdict: model.VerdictAccepted, Problem: p}

			convey.Convey("Then it should be accepted", func() {
				convey.So(s.Accepted(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the verdict is not OK", func() {
			s := model.Submission{Verdict: "WRONG_ANSWER", Problem: p}

			convey.Convey("Then it should not be accepted", func() {
				convey.So(s.Accepted(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the problem is missing", func() {
			s := model.Submission{Verdict: model.VerdictAccepted}

			convey.Convey("Then it should not be accepted", func() {
				convey.So(s.Accepted(), convey.ShouldBeFalse)
			})
		})
	})
}

func TestProblemKey(t *testing.T) {
	convey.Convey("Given two problems from the same contest slot", t, func() {
		a := model.Problem{ContestID: 100, Index: "B", Rating: model.Rated(1100)}
		b := model.Problem{ContestID: 100, Index: "B", Tags: []string{"dp"}}

		convey.Convey("Then their keys should be equal regardless of other fields", func() {
			convey.So(a.Key(), convey.ShouldEqual, b.Key())
			convey.So(a.Key().String(), convey.ShouldEqual, "100-B")
		})

		convey.Convey("Then the URL should point at the problemset page", func() {
			convey.So(a.URL(), convey.ShouldEqual, "https://codeforces.com/problemset/problem/100/B")
		})
	})

	convey.Convey("Given a problem with tags", t, func() {
		p := model.Problem{Tags: []string{"dp", "greedy"}}

		convey.Convey("Then HasTag should match any listed tag", func() {
			convey.So(p.HasTag(map[string]struct{}{"greedy": {}}), convey.ShouldBeTrue)
			convey.So(p.HasTag(map[string]struct{}{"graphs": {}}), convey.ShouldBeFalse)
			convey.So(p.HasTag(nil), convey.ShouldBeFalse)
		})
	})
}

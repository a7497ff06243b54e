package scoring_test

import (
	"testing"

	"github.com/okian/cpstats/internal/domain/model"
	scoring "github.com/okian/cpstats/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func problem(contest int, index string, rating int, tags ...string) model.Problem {
	return model.Problem{ContestID: contest, Index: index, Rating: model.Rated(rating), Tags: tags}
}

func TestScorer_WeakTags(t *testing.T) {
	Convey("Given a scorer with default options", t, func() {
		scorer := scoring.NewScorer()

		Convey("When the user has solved nothing", func() {
			weak := scorer.WeakTags(nil)

			Convey("Then the first common tags should be weak in order", func() {
				So(weak, ShouldResemble, []string{"dp", "greedy", "graphs", "math", "constructive algorithms"})
			})
		})

		Convey("When some common tags are well practiced", func() {
			counts := map[string]int{
				"dp": 40, "greedy": 50, "graphs": 3, "math": 60,
				"constructive algorithms": 20, "implementation": 90,
				"brute force": 30, "sortings": 25, "data structures": 10,
				"binary search": 12, "dfs and similar": 1, "trees": 2,
				"number theory": 8, "strings": 15,
				"fft": 0,
			}
			weak := scorer.WeakTags(counts)

			Convey("Then the least solved common tags should be returned ascending", func() {
				So(weak, ShouldResemble, []string{"dfs and similar", "trees", "graphs", "number theory", "data structures"})
			})

			Convey("Then rare tags outside the common set should be ignored", func() {
				So(weak, ShouldNotContain, "fft")
			})
		})
	})

	Convey("Given a scorer with custom tags and count", t, func() {
		scorer := scoring.NewScorer(
			scoring.WithCommonTags([]string{"a", "b", "c"}),
			scoring.WithWeakTagCount(10),
		)

		Convey("Then the count should be capped by the tag universe", func() {
			So(scorer.WeakTags(map[string]int{"a": 2}), ShouldResemble, []string{"b", "c", "a"})
		})
	})
}

func TestScorer_Recommend(t *testing.T) {
	Convey("Given a catalog and a solved set", t, func() {
		catalog := []model.Problem{
			problem(1, "A", 1400, "math"),
			problem(2, "A", 1500, "dp"),
			problem(3, "A", 1450, "greedy"),
			problem(4, "A", 1700, "dp"),
			problem(5, "A", 1300, "dp"),
			problem(6, "A", 1600, "dp"),
			{ContestID: 7, Index: "A", Tags: []string{"dp"}},
			problem(8, "A", 1401, "dp", "math"),
		}
		solved := func(k model.ProblemKey) bool { return k.ContestID == 6 }

		scorer := scoring.NewScorer(scoring.WithLimit(4))

		Convey("When recommending between 1400 and 1500", func() {
			recs := scorer.Recommend(catalog, solved, []string{"dp"}, 1400, 1500)

			Convey("Then only unsolved rated problems within the window should appear", func() {
				ids := make([]int, len(recs))
				for i, r := range recs {
					ids[i] = r.ContestID
				}
				// window is [1400, 1600]; weak-tagged first, then easier
				So(ids, ShouldResemble, []int{8, 2, 1, 3})
			})

			Convey("Then weak-tagged problems should carry the bonus", func() {
				So(recs[0].Score, ShouldEqual, 10)
				So(recs[2].Score, ShouldEqual, 0)
			})
		})

		Convey("When the window holds nothing", func() {
			recs := scorer.Recommend(catalog, nil, nil, 3000, 3100)

			Convey("Then the result should be empty, not nil", func() {
				So(recs, ShouldNotBeNil)
				So(recs, ShouldBeEmpty)
			})
		})
	})
}

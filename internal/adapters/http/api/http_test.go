package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/unitrack/planner/internal/adapters/http/api"
	"github.com/unitrack/planner/internal/adapters/repository"
	"github.com/unitrack/planner/internal/domain/catalog"
	"github.com/unitrack/planner/internal/domain/scoring"
	"github.com/unitrack/planner/internal/domain/types"
)

type fakeDeps struct {
	recommendErr  error
	lastRecommend types.RecommendRequest
	courseErr     error
	studentErr    error
	scoreErr      error
}

func (f *fakeDeps) Recommend(_ context.Context, req types.RecommendRequest) (types.Recommendation, error) {
	f.lastRecommend = req
	if f.recommendErr != nil {
		return types.Recommendation{}, f.recommendErr
	}
	if err := types.Validate(req); err != nil {
		return types.Recommendation{}, err
	}
	return types.Recommendation{ID: "rec-1", StudentID: req.StudentID, Period: req.Period, Success: true}, nil
}

func (f *fakeDeps) ScoreBundle(_ context.Context, req types.ScoreRequest) (scoring.Result, error) {
	if f.scoreErr != nil {
		return scoring.Result{}, f.scoreErr
	}
	return scoring.Result{Valid: len(req.Courses) > 0, Score: 2.5, TotalCredits: 4}, nil
}

func (f *fakeDeps) CompareBundles(_ context.Context, req types.CompareRequest) (types.Comparison, error) {
	if err := types.Validate(req); err != nil {
		return types.Comparison{}, err
	}
	return types.Comparison{Best: len(req.Bundles) - 1, AnyValid: true}, nil
}

func (f *fakeDeps) RankCourses(_ context.Context, req types.RankRequest) ([]types.RankedCourse, error) {
	out := make([]types.RankedCourse, 0, len(req.Courses))
	for i, c := range req.Courses {
		out = append(out, types.RankedCourse{Rank: i + 1, Code: c})
	}
	return out, nil
}

func (f *fakeDeps) Course(_ context.Context, code string) (types.CourseView, error) {
	if f.courseErr != nil {
		return types.CourseView{}, f.courseErr
	}
	return types.CourseView{Code: code, Name: "Course " + code, Prerequisites: []string{}}, nil
}

func (f *fakeDeps) AvailableCourses(_ context.Context, id string) (types.AvailableCourses, error) {
	if f.studentErr != nil {
		return types.AvailableCourses{}, f.studentErr
	}
	return types.AvailableCourses{StudentID: id, EarnedCredits: 8}, nil
}

type fakeStats map[string]any

func (f fakeStats) GetStats() map[string]any { return f }

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, fakeStats{"started": true}, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.NewDecoder(w.Body).Decode(&body)
	return body.Code
}

const validRecommend = `{"student_id":"1001","period":"2019-02","courses":["CS101","MA100"],"semester":2}`

func TestServer_Routes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &fakeDeps{}
		mux := newMux(deps)

		Convey("Then the health route serves the metrics registry", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats route returns the provider's map", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then a valid recommendation request succeeds", func() {
			w := do(mux, http.MethodPost, "/recommendations", validRecommend)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			var rec types.Recommendation
			So(json.NewDecoder(w.Body).Decode(&rec), ShouldBeNil)
			So(rec.ID, ShouldEqual, "rec-1")
			So(deps.lastRecommend.Courses, ShouldResemble, []string{"CS101", "MA100"})
		})

		Convey("Then unknown routes and wrong methods are rejected", func() {
			So(do(mux, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/recommendations", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestServer_BadRequests(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&fakeDeps{})

		cases := []struct {
			name, path, body string
		}{
			{"malformed json", "/recommendations", `{"student_id":`},
			{"unknown field", "/recommendations", `{"student_id":"1","period":"2019-02","courses":["A"],"extra":1}`},
			{"trailing data", "/bundles/score", `{"courses":["A"]} {}`},
			{"bad period", "/recommendations", `{"student_id":"1","period":"2019","courses":["A"]}`},
			{"empty courses", "/recommendations", `{"student_id":"1","period":"2019-02","courses":[]}`},
			{"negative max time", "/recommendations", `{"student_id":"1","period":"2019-02","courses":["A"],"max_time":-1}`},
			{"empty comparison", "/bundles/compare", `{"student_id":"1001","period":"2019-02","bundles":[]}`},
		}
		for _, tc := range cases {
			Convey(fmt.Sprintf("When the request has %s", tc.name), func() {
				w := do(mux, http.MethodPost, tc.path, tc.body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		}
	})

	Convey("Given a small body limit", t, func() {
		mux := newMux(&fakeDeps{}, api.WithMaxBodyBytes(16))
		w := do(mux, http.MethodPost, "/recommendations", validRecommend)
		So(w.Code, ShouldEqual, http.StatusBadRequest)
	})
}

func TestServer_ErrorMapping(t *testing.T) {
	Convey("Given dependencies that fail", t, func() {
		deps := &fakeDeps{}
		mux := newMux(deps)

		Convey("When a course is unknown", func() {
			deps.courseErr = fmt.Errorf("%w: ZZ9", catalog.ErrCourseNotFound)
			w := do(mux, http.MethodGet, "/courses/ZZ9", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("When a student is unknown", func() {
			deps.studentErr = repository.ErrStudentNotFound
			w := do(mux, http.MethodGet, "/students/42/available-courses", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the catalog is unavailable", func() {
			deps.recommendErr = catalog.ErrCatalogUnavailable
			w := do(mux, http.MethodPost, "/recommendations", validRecommend)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(errorCode(w), ShouldEqual, "catalog_unavailable")
		})

		Convey("When the service has not started", func() {
			deps.recommendErr = fmt.Errorf("%w: not started", types.ErrUnavailable)
			w := do(mux, http.MethodPost, "/recommendations", validRecommend)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When an unexpected error occurs", func() {
			deps.scoreErr = fmt.Errorf("boom")
			w := do(mux, http.MethodPost, "/bundles/score", `{"courses":["A"]}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(errorCode(w), ShouldEqual, "internal_error")
		})
	})
}

func TestServer_Handlers(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&fakeDeps{})

		Convey("When looking up a course", func() {
			w := do(mux, http.MethodGet, "/courses/CS101", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var c types.CourseView
			So(json.NewDecoder(w.Body).Decode(&c), ShouldBeNil)
			So(c.Code, ShouldEqual, "CS101")
		})

		Convey("When listing available courses", func() {
			w := do(mux, http.MethodGet, "/students/1001/available-courses", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var av types.AvailableCourses
			So(json.NewDecoder(w.Body).Decode(&av), ShouldBeNil)
			So(av.StudentID, ShouldEqual, "1001")
			So(av.EarnedCredits, ShouldEqual, 8)
		})

		Convey("When ranking courses", func() {
			w := do(mux, http.MethodPost, "/courses/rank", `{"student_id":"1001","period":"2019-02","courses":["B","A"]}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"courses":[`)
		})

		Convey("When scoring and comparing bundles", func() {
			w := do(mux, http.MethodPost, "/bundles/score", `{"courses":["A"]}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			w = do(mux, http.MethodPost, "/bundles/compare", `{"student_id":"1001","period":"2019-02","bundles":[["A"],["B"]]}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var cmp types.Comparison
			So(json.NewDecoder(w.Body).Decode(&cmp), ShouldBeNil)
			So(cmp.Best, ShouldEqual, 1)
		})
	})
}

func TestServer_RateLimit(t *testing.T) {
	Convey("Given a limiter with a burst of one", t, func() {
		mux := newMux(&fakeDeps{}, api.WithRateLimit(0.001, 1))

		Convey("Then the second recommendation is rejected", func() {
			So(do(mux, http.MethodPost, "/recommendations", validRecommend).Code, ShouldEqual, http.StatusOK)
			w := do(mux, http.MethodPost, "/recommendations", validRecommend)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w.Header().Get("Retry-After"), ShouldEqual, "1")
			So(errorCode(w), ShouldEqual, "rate_limited")
		})

		Convey("Then other routes are not throttled", func() {
			for range 3 {
				So(do(mux, http.MethodGet, "/courses/CS101", "").Code, ShouldEqual, http.StatusOK)
			}
		})
	})
}

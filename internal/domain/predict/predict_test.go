package predict_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/internal/domain/predict"
)

const tableCSV = `COD_PERSONA,COD_CURSO,PER_MATRICULA,NOTA_PREDICHA
1001,CS101,2019-02,15.5
1001,CS101,2018-01,9.0
1001,MA100,2017-02,12.0
1001,MA100,2018-02,10.5
1001,FG200,2019-02,bad
2002,CS101,2019-02,18.0
`

func TestTable(t *testing.T) {
	Convey("Given a prediction table", t, func() {
		tbl := predict.NewTableFromReader(strings.NewReader(tableCSV))
		ctx := context.Background()

		Convey("the exact period wins", func() {
			got, err := tbl.Predict(ctx, "1001", []string{"CS101"}, "2019-02")
			So(err, ShouldBeNil)
			So(got["CS101"], ShouldEqual, 15.5)
		})

		Convey("otherwise the most recent period is used", func() {
			got, err := tbl.Predict(ctx, "1001", []string{"MA100"}, "2019-02")
			So(err, ShouldBeNil)
			So(got["MA100"], ShouldEqual, 10.5)
		})

		Convey("courses without rows are left out", func() {
			got, err := tbl.Predict(ctx, "1001", []string{"CS101", "FG200", "XX000"}, "2019-02")
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
		})

		Convey("a request with no rows at all fails", func() {
			_, err := tbl.Predict(ctx, "9999", []string{"CS101"}, "2019-02")
			So(errors.Is(err, predict.ErrNoPredictions), ShouldBeTrue)
		})

		Convey("concurrent first use loads once", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = tbl.Predict(ctx, "2002", []string{"CS101"}, "2019-02")
				}()
			}
			wg.Wait()
			n, err := tbl.Len()
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
		})
	})

	Convey("A missing table file reports ErrLoadTable", t, func() {
		tbl := predict.NewTable(filepath.Join(t.TempDir(), "absent.csv"))
		_, err := tbl.Predict(context.Background(), "1001", []string{"CS101"}, "2019-02")
		So(errors.Is(err, predict.ErrLoadTable), ShouldBeTrue)
	})
}

func TestRemote(t *testing.T) {
	Convey("Given an inference endpoint", t, func() {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			if got["student_id"] == "boom" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"predictions": map[string]float64{"CS101": 13.25}})
		}))
		defer srv.Close()

		p := predict.NewRemote(srv.URL, predict.WithHTTPClient(srv.Client()))

		Convey("predictions are decoded", func() {
			out, err := p.Predict(context.Background(), "1001", []string{"CS101"}, "2019-02")
			So(err, ShouldBeNil)
			So(out["CS101"], ShouldEqual, 13.25)
			So(got["period"], ShouldEqual, "2019-02")
		})

		Convey("non-200 answers are errors", func() {
			_, err := p.Predict(context.Background(), "boom", []string{"CS101"}, "2019-02")
			So(errors.Is(err, predict.ErrRemote), ShouldBeTrue)
		})
	})
}

func TestStatic(t *testing.T) {
	Convey("Static and Constant predictors", t, func() {
		ctx := context.Background()
		out, err := predict.Static{"CS101": 12}.Predict(ctx, "s", []string{"cs101", "MA100"}, model.Period("2019-02"))
		So(err, ShouldBeNil)
		So(out, ShouldResemble, map[string]float64{"cs101": 12})

		out, err = predict.Constant(14).Predict(ctx, "s", []string{"A", "B"}, "")
		So(err, ShouldBeNil)
		So(out, ShouldResemble, map[string]float64{"A": 14, "B": 14})

		f := predict.PredictorFunc(func(context.Context, string, []string, model.Period) (map[string]float64, error) {
			return nil, predict.ErrNoPredictions
		})
		_, err = f.Predict(ctx, "s", nil, "")
		So(err, ShouldEqual, predict.ErrNoPredictions)
	})
}

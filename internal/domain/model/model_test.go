package model_test

import (
	"errors"
	"testing"

	model "github.com/unitrack/planner/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseClock(t *testing.T) {
	convey.Convey("Given time of day strings", t, func() {
		convey.Convey("When the hour is not zero padded", func() {
			c, err := model.ParseClock("8:30")

			convey.Convey("Then it should be normalized to HH:MM", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(c, convey.ShouldEqual, model.Clock("08:30"))
				convey.So(c.Minutes(), convey.ShouldEqual, 510)
			})
		})

		convey.Convey("When seconds are present", func() {
			c, err := model.ParseClock("13:00:00")

			convey.Convey("Then they should be dropped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(c, convey.ShouldEqual, model.Clock("13:00"))
			})
		})

		convey.Convey("When the value is malformed", func() {
			for _, in := range []string{"", "25:00", "10:7", "ab:cd", "10"} {
				_, err := model.ParseClock(in)
				convey.So(errors.Is(err, model.ErrInvalidClock), convey.ShouldBeTrue)
			}
		})

		convey.Convey("When comparing normalized clocks as strings", func() {
			a := model.MustClock("9:00")
			b := model.MustClock("10:00")

			convey.Convey("Then string order should match chronological order", func() {
				convey.So(a < b, convey.ShouldBeTrue)
				convey.So(a.Minutes() < b.Minutes(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestParseWeekday(t *testing.T) {
	convey.Convey("Given weekday labels", t, func() {
		convey.Convey("When the label is a dotted abbreviation", func() {
			d, err := model.ParseWeekday("Lun.")
			convey.So(err, convey.ShouldBeNil)
			convey.So(d, convey.ShouldEqual, model.Monday)
			convey.So(d.Index(), convey.ShouldEqual, 0)
		})

		convey.Convey("When the label is an English or accented name", func() {
			d, err := model.ParseWeekday("friday")
			convey.So(err, convey.ShouldBeNil)
			convey.So(d, convey.ShouldEqual, model.Friday)

			d, err = model.ParseWeekday("Sábado")
			convey.So(err, convey.ShouldBeNil)
			convey.So(d, convey.ShouldEqual, model.Saturday)
		})

		convey.Convey("When the label is unknown", func() {
			_, err := model.ParseWeekday("Someday")
			convey.So(errors.Is(err, model.ErrInvalidWeekday), convey.ShouldBeTrue)
		})
	})
}

func TestSessionValidate(t *testing.T) {
	convey.Convey("Given sessions", t, func() {
		convey.Convey("When the end is after the start", func() {
			s := model.Session{Day: model.Monday, Start: "10:00", End: "12:00"}
			convey.So(s.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the session is empty or inverted", func() {
			s := model.Session{Day: model.Monday, Start: "12:00", End: "12:00"}
			convey.So(errors.Is(s.Validate(), model.ErrInvalidSession), convey.ShouldBeTrue)
		})

		convey.Convey("When the day is unknown", func() {
			s := model.Session{Day: "Xyz", Start: "10:00", End: "12:00"}
			convey.So(errors.Is(s.Validate(), model.ErrInvalidSession), convey.ShouldBeTrue)
		})
	})
}

func TestParsePeriod(t *testing.T) {
	convey.Convey("Given enrollment period strings", t, func() {
		p, err := model.ParsePeriod("2019-02")
		convey.So(err, convey.ShouldBeNil)
		convey.So(p, convey.ShouldEqual, model.Period("2019-02"))

		for _, in := range []string{"2019-2", "19-02", "2019/02", ""} {
			_, err := model.ParsePeriod(in)
			convey.So(errors.Is(err, model.ErrInvalidPeriod), convey.ShouldBeTrue)
		}
	})
}

func TestCourse(t *testing.T) {
	convey.Convey("Given a course", t, func() {
		c := model.Course{Code: "CS101", Kind: model.KindMandatory, Prerequisites: []string{"MA100"}}

		convey.Convey("Then mandatory should follow the kind", func() {
			convey.So(c.Mandatory(), convey.ShouldBeTrue)
			convey.So(model.Course{Kind: model.KindElectiveProgram}.Mandatory(), convey.ShouldBeFalse)
		})

		convey.Convey("When cloning", func() {
			clone := c.Clone()
			clone.Prerequisites[0] = "CHANGED"

			convey.Convey("Then the original should not change", func() {
				convey.So(c.Prerequisites[0], convey.ShouldEqual, "MA100")
			})
		})

		convey.Convey("Then codes should normalize", func() {
			convey.So(model.NormalizeCode("  cs101 "), convey.ShouldEqual, "CS101")
		})
	})
}

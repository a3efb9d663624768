package textlist_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/unitrack/planner/internal/domain/textlist"
)

func TestParseList(t *testing.T) {
	Convey("ParseList", t, func() {
		Convey("decodes quoted literal lists", func() {
			So(textlist.ParseList(`['CS101', 'MA100']`), ShouldResemble, []string{"CS101", "MA100"})
			So(textlist.ParseList(`["CS101","MA100"]`), ShouldResemble, []string{"CS101", "MA100"})
		})

		Convey("keeps commas inside quoted items", func() {
			So(textlist.ParseList(`['A, B', 'C']`), ShouldResemble, []string{"A, B", "C"})
		})

		Convey("falls back to a delimiter split for bare items", func() {
			So(textlist.ParseList(`[CS101, MA100]`), ShouldResemble, []string{"CS101", "MA100"})
			So(textlist.ParseList(`CS101,MA100`), ShouldResemble, []string{"CS101", "MA100"})
		})

		Convey("returns an empty list for blank input", func() {
			So(textlist.ParseList(""), ShouldBeEmpty)
			So(textlist.ParseList("[]"), ShouldBeEmpty)
			So(textlist.ParseList("nan"), ShouldBeEmpty)
			So(textlist.ParseList("  "), ShouldNotBeNil)
		})

		Convey("degrades malformed input to an empty list", func() {
			So(textlist.ParseList(`['CS101', 'MA1]00']x`), ShouldBeEmpty)
			So(textlist.ParseList(`{CS101}`), ShouldBeEmpty)
		})
	})
}

func TestParseRecord(t *testing.T) {
	Convey("ParseRecord", t, func() {
		Convey("decodes JSON objects", func() {
			rec := textlist.ParseRecord(`{"Dia": "Lun", "Hora_inicio": "11:00", "Aula": 204}`)
			So(rec["Dia"], ShouldEqual, "Lun")
			So(rec["Hora_inicio"], ShouldEqual, "11:00")
			So(rec["Aula"], ShouldEqual, "204")
		})

		Convey("decodes single-quoted records", func() {
			rec := textlist.ParseRecord(`{'Dia': 'Mar', 'Hora_inicio': '08:00', 'Hora_fin': '10:00'}`)
			So(rec, ShouldResemble, map[string]string{"Dia": "Mar", "Hora_inicio": "08:00", "Hora_fin": "10:00"})
		})

		Convey("falls back to key value extraction", func() {
			rec := textlist.ParseRecord(`{'Dia': 'Vie', 'Hora_inicio': '14:00', broken`)
			So(rec["Dia"], ShouldEqual, "Vie")
			So(rec["Hora_inicio"], ShouldEqual, "14:00")
		})

		Convey("returns an empty map when nothing matches", func() {
			So(textlist.ParseRecord("garbage"), ShouldBeEmpty)
			So(textlist.ParseRecord(""), ShouldNotBeNil)
		})
	})
}

func TestParseRecordList(t *testing.T) {
	Convey("ParseRecordList", t, func() {
		Convey("decodes a literal list of records", func() {
			recs := textlist.ParseRecordList(`[{'Dia': 'Lun', 'Hora_inicio': '07:00'}, {'Dia': 'Jue', 'Hora_inicio': '09:00'}]`)
			So(recs, ShouldHaveLength, 2)
			So(recs[1]["Dia"], ShouldEqual, "Jue")
		})

		Convey("decodes a list of quoted record strings", func() {
			recs := textlist.ParseRecordList(`["{'Dia': 'Lun', 'Hora_fin': '13:00'}"]`)
			So(recs, ShouldHaveLength, 1)
			So(recs[0]["Hora_fin"], ShouldEqual, "13:00")
		})

		Convey("returns an empty list on malformed input", func() {
			So(textlist.ParseRecordList("not a list"), ShouldBeEmpty)
		})
	})
}

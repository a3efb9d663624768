package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/unitrack/planner/internal/domain/model"
)

const sessionCSV = `cod_curso,curso,Seccion,Grupo,Modalidad,Horario,Frecuencia,Ubicacion,Vacantes,Matriculados,Docente,Correo
CS101,Programacion,A,TEORIA 1,Presencial,Lun. 11:00 - 13:00,Semanal,A-101,40,35,Perez,p@u.pe
CS101,Programacion,A,LABORATORIO 1.01,Presencial,Mie. 08:00 - 10:00,Semanal,L-1,20,18,Diaz,d@u.pe
CS101,Programacion,A,LABORATORIO 1.02,Presencial,Jue. 08:00 - 10:00,Semanal,L-2,20,19,Diaz,d@u.pe
CS101,Programacion,B,TEORIA 2,Virtual,Mar. 18:00 - 20:00,Semanal,Zoom,60,10,Rojas,r@u.pe
MA100,Calculo,A,TEORIA 1.01,Presencial,Vie 14:00 - 16:00,Semanal,B-201,45,44,Soto,s@u.pe
MA100,Calculo,A,TEORIA 1.02,Presencial,sin horario,Semanal,B-201,45,44,Soto,s@u.pe
`

const recordCSV = `cod_curso,seccion_key,horarios
CS101,1.01,"[{'Dia': 'Lun', 'Hora_inicio': '11:00', 'Hora_fin': '13:00'}, {'Dia': 'Mie', 'Hora_inicio': '08:00', 'Hora_fin': '10:00'}]"
MA100,1,"[{""Dia"": ""Vie"", ""Hora_inicio"": ""14:00:00"", ""Hora_fin"": ""16:00:00""}]"
MA200,1,"[{'Dia': 'Xyz', 'Hora_inicio': '14:00', 'Hora_fin': '16:00'}]"
`

func TestParseSchedule(t *testing.T) {
	Convey("Given display schedule text", t, func() {
		Convey("Then the common forms parse", func() {
			s, err := ParseSchedule("Lun. 11:00 - 13:00")
			So(err, ShouldBeNil)
			So(s, ShouldResemble, model.Session{Day: model.Monday, Start: "11:00", End: "13:00"})

			s, err = ParseSchedule("  Vie 8:00-9:30 ")
			So(err, ShouldBeNil)
			So(s.Start, ShouldEqual, model.Clock("08:00"))
			So(s.End, ShouldEqual, model.Clock("09:30"))
		})

		Convey("Then malformed text is rejected", func() {
			_, err := ParseSchedule("sin horario")
			So(errors.Is(err, ErrInvalidSchedule), ShouldBeTrue)

			_, err = ParseSchedule("Xyz. 08:00 - 10:00")
			So(errors.Is(err, model.ErrInvalidWeekday), ShouldBeTrue)

			_, err = ParseSchedule("Lun. 10:00 - 08:00")
			So(errors.Is(err, model.ErrInvalidSession), ShouldBeTrue)
		})
	})
}

func TestReadSections_Sessions(t *testing.T) {
	Convey("Given a per-session timetable export", t, func() {
		secs, skipped, err := ReadSections(strings.NewReader(sessionCSV))
		So(err, ShouldBeNil)
		So(skipped, ShouldEqual, 1)

		byKey := map[string]model.Section{}
		for _, s := range secs {
			byKey[s.CourseCode+"/"+s.Key] = s
		}

		Convey("Then the general group is merged into each sub-section", func() {
			lab1 := byKey["CS101/1.01"]
			So(lab1.Sessions, ShouldHaveLength, 2)
			So(lab1.Sessions[0].Day, ShouldEqual, model.Wednesday)
			So(lab1.Sessions[1].Day, ShouldEqual, model.Monday)
			So(lab1.Capacity, ShouldEqual, 20)
			So(lab1.Instructor, ShouldEqual, "Diaz")
			So(byKey["CS101/1.02"].Sessions, ShouldHaveLength, 2)
			_, standalone := byKey["CS101/1"]
			So(standalone, ShouldBeFalse)
		})

		Convey("Then a general group without sub-sections stands alone", func() {
			g2 := byKey["CS101/2"]
			So(g2.Sessions, ShouldHaveLength, 1)
			So(g2.Modality, ShouldEqual, "Virtual")
			So(g2.Enrolled, ShouldEqual, 10)
		})

		Convey("Then unreadable sessions are dropped from their section", func() {
			So(byKey["MA100/1.01"].Sessions, ShouldHaveLength, 1)
			So(byKey["MA100/1.02"].Sessions, ShouldBeEmpty)
		})

		Convey("Then sections keep source order", func() {
			So(secs, ShouldHaveLength, 5)
			So(secs[0].Key, ShouldEqual, "1.01")
			So(secs[2].Key, ShouldEqual, "2")
		})
	})
}

func TestReadSections_Records(t *testing.T) {
	Convey("Given a pre-grouped section file", t, func() {
		secs, skipped, err := ReadSections(strings.NewReader(recordCSV))
		So(err, ShouldBeNil)
		So(skipped, ShouldEqual, 1)
		So(secs, ShouldHaveLength, 3)

		Convey("Then python and JSON style blobs both decode", func() {
			So(secs[0].Sessions, ShouldHaveLength, 2)
			So(secs[0].Sessions[1], ShouldResemble, model.Session{Day: model.Wednesday, Start: "08:00", End: "10:00"})
			So(secs[1].Sessions, ShouldHaveLength, 1)
			So(secs[1].Sessions[0].End, ShouldEqual, model.Clock("16:00"))
			So(secs[2].Sessions, ShouldBeEmpty)
		})
	})
}

func TestReadStudentsAndEnrollments(t *testing.T) {
	Convey("Given student and enrollment tables", t, func() {
		students, err := ReadStudents(strings.NewReader("COD_PERSONA,PER_INGRESO,CARRERA\n1001,2018-01,CS\n1002, 2019-02 ,IS\n"))
		So(err, ShouldBeNil)
		So(students, ShouldHaveLength, 2)
		So(students[1].AdmissionPeriod, ShouldEqual, model.Period("2019-02"))

		enr, err := ReadEnrollments(strings.NewReader("COD_PERSONA,COD_CURSO,PER_MATRICULA,NOTA\n1001,cs101,2018-01,15.5\n1001,MA100,2018-01,\n1001,MA101,2018-02,NaN\n"))
		So(err, ShouldBeNil)
		So(enr, ShouldHaveLength, 3)
		So(enr[0].CourseCode, ShouldEqual, "CS101")
		So(*enr[0].Grade, ShouldEqual, 15.5)
		So(enr[1].Grade, ShouldBeNil)
		So(enr[2].Grade, ShouldBeNil)
	})
}

func TestMemoryStore_Load(t *testing.T) {
	Convey("Given reference files on disk", t, func() {
		dir := t.TempDir()
		write := func(name, body string) string {
			p := filepath.Join(dir, name)
			So(os.WriteFile(p, []byte(body), 0o600), ShouldBeNil)
			return p
		}
		paths := Paths{
			Sections:    write("sections.csv", sessionCSV),
			Students:    write("students.csv", "COD_PERSONA,PER_INGRESO,CARRERA\n1001,2018-01,CS\n"),
			Enrollments: write("enrollments.csv", "COD_PERSONA,COD_CURSO,PER_MATRICULA,NOTA\n1001,CS101,2018-01,15\n"),
		}
		ctx := context.Background()
		store := NewMemoryStore()

		Convey("When loading them", func() {
			stats, err := store.Load(ctx, paths)
			So(err, ShouldBeNil)

			Convey("Then the store serves the data", func() {
				So(stats.Sections, ShouldEqual, 5)
				So(stats.SkippedSessions, ShouldEqual, 1)
				So(stats.Students, ShouldEqual, 1)
				So(stats.Enrollments, ShouldEqual, 1)
				So(store.SectionCount(ctx), ShouldEqual, 5)
				h, err := store.History(ctx, "1001")
				So(err, ShouldBeNil)
				So(h, ShouldHaveLength, 1)
			})
		})

		Convey("When a file is missing", func() {
			paths.Students = filepath.Join(dir, "missing.csv")
			_, err := store.Load(ctx, paths)

			Convey("Then nothing is replaced", func() {
				So(errors.Is(err, ErrLoadData), ShouldBeTrue)
				So(store.SectionCount(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := store.Load(cctx, paths)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

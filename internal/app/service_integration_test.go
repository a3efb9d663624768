package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/unitrack/planner/internal/app"
	"github.com/unitrack/planner/internal/config"
	"github.com/unitrack/planner/internal/domain/types"
	"github.com/unitrack/planner/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var dataFiles = map[string]string{
	"info.csv": `COD_CURSO,CURSO,HRS_CURSO,CREDITOS,TIPO_CURSO,NIVEL_CURSO,FAMILIA
CS050,INTRO,3,3,O,1,CS
CS101,PROGRAMACION,6,5,O,2,CS
MA100,CALCULO I,5,5,O,2,MA
FI100,FISICA I,5,5,O,2,FI
`,
	"prereqs.csv": `CODIGO,PREREQUISITO
CS101,['CS050']
MA100,[]
`,
	"graph.csv": `CODIGO,DEPENDIENTES,PROFUNDIDAD_MAX
CS050,1,1
CS101,4,2
`,
	"sections.csv": `cod_curso,curso,Seccion,Grupo,Modalidad,Horario,Frecuencia,Ubicacion,Vacantes,Matriculados,Docente,Correo
CS101,PROGRAMACION,A,TEORIA 1,Presencial,Lun. 08:00 - 10:00,Semanal,A-1,40,10,Perez,p@u.pe
CS101,PROGRAMACION,A,LABORATORIO 1.01,Presencial,Mar. 08:00 - 10:00,Semanal,L-1,20,5,Perez,p@u.pe
CS101,PROGRAMACION,B,TEORIA 2,Presencial,Jue. 08:00 - 10:00,Semanal,A-2,40,10,Rojas,r@u.pe
MA100,CALCULO I,A,TEORIA 1,Presencial,Lun. 09:00 - 11:00,Semanal,B-1,40,10,Soto,s@u.pe
FI100,FISICA I,A,TEORIA 1,Presencial,Vie. 14:00 - 16:00,Semanal,C-1,40,10,Diaz,d@u.pe
`,
	"students.csv": "COD_PERSONA,PER_INGRESO,CARRERA\n1001,2018-01,CS\n",
	"enrollments.csv": "COD_PERSONA,COD_CURSO,PER_MATRICULA,NOTA\n1001,CS050,2018-01,13\n",
	"predictions.csv": `COD_PERSONA,COD_CURSO,PER_MATRICULA,NOTA_PREDICHA
1001,CS101,2019-02,16
1001,MA100,2019-02,10
1001,FI100,2018-02,13
`,
}

func writeData(dir string) *config.Config {
	for name, body := range dataFiles {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			panic(err)
		}
	}
	cfg := config.New()
	cfg.CatalogInfoPath = filepath.Join(dir, "info.csv")
	cfg.CatalogPrereqPath = filepath.Join(dir, "prereqs.csv")
	cfg.CatalogGraphPath = filepath.Join(dir, "graph.csv")
	cfg.SectionsPath = filepath.Join(dir, "sections.csv")
	cfg.StudentsPath = filepath.Join(dir, "students.csv")
	cfg.EnrollmentsPath = filepath.Join(dir, "enrollments.csv")
	cfg.PredictionsPath = filepath.Join(dir, "predictions.csv")
	return cfg
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service configured from data files", t, func() {
		cfg := writeData(t.TempDir())
		opts, err := service.ConfigOptions(cfg, logger.Discard())
		So(err, ShouldBeNil)

		svc := service.New(opts...)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then every table is loaded", func() {
				stats := svc.GetStats()
				So(stats["courses"], ShouldEqual, 4)
				So(stats["sections"], ShouldEqual, 4)
				So(stats["students"], ShouldEqual, 1)
				So(stats["predictor"], ShouldEqual, true)
			})

			Convey("Then a recommendation merges general groups and avoids conflicts", func() {
				rec, err := svc.Recommend(ctx, types.RecommendRequest{
					StudentID: "1001", Period: "2019-02", Courses: []string{"MA100", "CS101", "FI100"},
				})
				So(err, ShouldBeNil)
				So(rec.Success, ShouldBeTrue)
				best := rec.Schedules[0]
				So(best.Result.TotalCredits, ShouldEqual, 15)
				for _, a := range best.Sections {
					if a.Course == "CS101" {
						// 1.01 carries the Monday lecture, which overlaps MA100.
						So(a.Section, ShouldEqual, "2")
					}
				}
				So(best.Result.Failures, ShouldEqual, 1)
			})

			Convey("Then availability follows the enrollment history", func() {
				av, err := svc.AvailableCourses(ctx, "1001")
				So(err, ShouldBeNil)
				So(av.EarnedCredits, ShouldEqual, 3)
				So(av.Courses, ShouldHaveLength, 3)
			})
		})

		Convey("When a data file is missing", func() {
			cfg.SectionsPath = filepath.Join(t.TempDir(), "missing.csv")
			opts, err := service.ConfigOptions(cfg, logger.Discard())
			So(err, ShouldBeNil)
			broken := service.New(opts...)

			Convey("Then start fails", func() {
				So(broken.Start(ctx), ShouldNotBeNil)
				So(broken.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When the catalog tables are missing", func() {
			cfg.CatalogInfoPath = filepath.Join(t.TempDir(), "missing.csv")
			opts, err := service.ConfigOptions(cfg, logger.Discard())
			So(err, ShouldBeNil)
			degraded := service.New(opts...)
			defer degraded.Stop()

			Convey("Then the service runs degraded", func() {
				So(degraded.Start(ctx), ShouldBeNil)
				So(degraded.GetStats()["catalogDegraded"], ShouldEqual, true)
			})
		})
	})
}

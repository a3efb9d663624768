package service_test

import (
	"github.com/unitrack/planner/internal/adapters/repository"
	"github.com/unitrack/planner/internal/domain/catalog"
	"github.com/unitrack/planner/internal/domain/model"
)

func grade(v float64) *float64 { return &v }

func fixtureCatalog() *catalog.Catalog {
	return catalog.New(
		model.Course{Code: "CS050", Name: "INTRO", Credits: 3, Hours: 3, Kind: model.KindMandatory, Level: 1},
		model.Course{Code: "MA050", Name: "PRE CALCULO", Credits: 3, Hours: 3, Kind: model.KindMandatory, Level: 1},
		model.Course{Code: "CS101", Name: "PROGRAMACION", Credits: 5, Hours: 6, Kind: model.KindMandatory, Level: 2, Prerequisites: []string{"CS050"}, Dependents: 4, MaxDepth: 2},
		model.Course{Code: "MA100", Name: "CALCULO I", Credits: 5, Hours: 5, Kind: model.KindMandatory, Level: 2},
		model.Course{Code: "FI100", Name: "FISICA I", Credits: 5, Hours: 5, Kind: model.KindMandatory, Level: 2, Prerequisites: []string{"MA050"}},
		model.Course{Code: "HU100", Name: "ORATORIA", Credits: 4, Hours: 2, Kind: model.KindElectiveHumanities, Level: 3},
	)
}

func session(day model.Weekday, start, end string) model.Session {
	return model.Session{Day: day, Start: model.MustClock(start), End: model.MustClock(end)}
}

func fixtureStore() *repository.MemoryStore {
	return repository.NewMemoryStore(
		repository.WithSections(
			model.Section{CourseCode: "CS101", Key: "1.01", Sessions: []model.Session{session(model.Monday, "08:00", "10:00")}},
			model.Section{CourseCode: "CS101", Key: "1.02", Sessions: []model.Session{session(model.Tuesday, "08:00", "10:00")}},
			model.Section{CourseCode: "MA100", Key: "1", Sessions: []model.Session{session(model.Monday, "08:00", "10:00")}},
			model.Section{CourseCode: "FI100", Key: "1", Sessions: []model.Session{session(model.Wednesday, "10:00", "12:00")}},
		),
		repository.WithStudents(model.Student{ID: "1001", AdmissionPeriod: "2018-01", Program: "CS"}),
		repository.WithEnrollments(
			model.Enrollment{StudentID: "1001", CourseCode: "CS050", Period: "2018-01", Grade: grade(14)},
			model.Enrollment{StudentID: "1001", CourseCode: "MA050", Period: "2018-01", Grade: grade(10.6)},
		),
	)
}

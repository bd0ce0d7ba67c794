// Package seed provides helpers to create demo data for the partnership
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"

	"capstone/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var departments = []string{
	"Computer Science", "Software Engineering", "Data Science",
	"Electrical Engineering", "Information Systems",
}

var researchAreas = []string{
	"distributed systems", "compilers", "machine learning", "computer vision",
	"human-computer interaction", "security", "databases", "networking",
	"formal methods", "robotics", "graphics", "embedded systems",
}

var skills = []string{
	"Go", "Python", "Rust", "TypeScript", "SQL", "Kubernetes", "React",
	"PyTorch", "C++", "Terraform", "Figma", "Haskell",
}

// Factory builds students and supervisors and persists them to the database.
type Factory struct {
	db     *gorm.DB
	faker  *gofakeit.Faker
	dryRun bool
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. A zero seed draws a random one;
// a fixed seed makes the generated roster reproducible.
func NewFactory(db *gorm.DB, seed int64, dryRun bool) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed), dryRun: dryRun, nextID: 1000}
}

func (f *Factory) pick(from []string, n int) string {
	picked := make([]string, 0, n)
	seen := make(map[int]bool, n)
	for len(picked) < n && len(seen) < len(from) {
		i := f.faker.Number(0, len(from)-1)
		if seen[i] {
			continue
		}
		seen[i] = true
		picked = append(picked, from[i])
	}
	return strings.Join(picked, ", ")
}

func (f *Factory) email(name string) string {
	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return fmt.Sprintf("%s.%d@%s", local, f.faker.Number(100, 9999), "uni.example")
}

// BuildStudent returns an unpaired student without saving it.
func (f *Factory) BuildStudent(overrides ...func(*models.Student)) *models.Student {
	name := f.faker.Name()
	s := &models.Student{
		Name:              name,
		Email:             f.email(name),
		Bio:               f.faker.Sentence(12),
		Skills:            f.pick(skills, 3),
		PartnershipStatus: models.PartnershipStatusNone,
		Version:           1,
	}
	for _, override := range overrides {
		override(s)
	}
	return s
}

// BuildSupervisor returns an available supervisor with an empty load.
func (f *Factory) BuildSupervisor(overrides ...func(*models.Supervisor)) *models.Supervisor {
	name := "Dr " + f.faker.LastName()
	s := &models.Supervisor{
		Name:               name,
		Email:              f.email(name),
		Department:         departments[f.faker.Number(0, len(departments)-1)],
		ResearchAreas:      f.pick(researchAreas, 2),
		MaxCapacity:        f.faker.Number(2, 6),
		AvailabilityStatus: models.AvailabilityAvailable,
		Version:            1,
	}
	for _, override := range overrides {
		override(s)
	}
	return s
}

// CreateStudents persists n generated students in one batch.
func (f *Factory) CreateStudents(n int) ([]*models.Student, error) {
	out := make([]*models.Student, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.BuildStudent())
	}
	if f.dryRun {
		for _, s := range out {
			f.nextID++
			s.ID = f.nextID
		}
		log.Printf("[dry-run] CreateStudents: %d students (no DB write)", len(out))
		return out, nil
	}
	if len(out) == 0 {
		return out, nil
	}
	if err := f.db.Create(&out).Error; err != nil {
		return nil, fmt.Errorf("create students: %w", err)
	}
	return out, nil
}

// CreateSupervisors persists n generated supervisors in one batch.
func (f *Factory) CreateSupervisors(n int) ([]*models.Supervisor, error) {
	out := make([]*models.Supervisor, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.BuildSupervisor())
	}
	if f.dryRun {
		for _, s := range out {
			f.nextID++
			s.ID = f.nextID
		}
		log.Printf("[dry-run] CreateSupervisors: %d supervisors (no DB write)", len(out))
		return out, nil
	}
	if len(out) == 0 {
		return out, nil
	}
	if err := f.db.Create(&out).Error; err != nil {
		return nil, fmt.Errorf("create supervisors: %w", err)
	}
	return out, nil
}

package seed

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"capstone/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Roster is a hand-written cohort loaded from YAML. Students and supervisors
// are keyed by email; pairs reference students by email.
//
//	supervisors:
//	  - name: Dr Grey
//	    email: grey@uni.example
//	    max_capacity: 3
//	students:
//	  - name: Alice Moss
//	    email: alice@uni.example
//	pairs:
//	  - [alice@uni.example, bob@uni.example]
type Roster struct {
	Supervisors []SupervisorFixture `yaml:"supervisors"`
	Students    []StudentFixture    `yaml:"students"`
	Pairs       [][2]string         `yaml:"pairs"`
}

// SupervisorFixture is one supervisor row in a roster.
type SupervisorFixture struct {
	Name          string                    `yaml:"name"`
	Email         string                    `yaml:"email"`
	Department    string                    `yaml:"department"`
	ResearchAreas []string                  `yaml:"research_areas"`
	MaxCapacity   int                       `yaml:"max_capacity"`
	Availability  models.AvailabilityStatus `yaml:"availability"`
}

// StudentFixture is one student row in a roster.
type StudentFixture struct {
	Name   string   `yaml:"name"`
	Email  string   `yaml:"email"`
	Bio    string   `yaml:"bio"`
	Skills []string `yaml:"skills"`
}

// LoadRoster reads and validates a roster file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster decodes and validates a YAML roster.
func ParseRoster(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks that emails are unique, capacities are sane, and every
// student appears in at most one pair.
func (r *Roster) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	students := make(map[string]bool)

	for i := range r.Supervisors {
		s := &r.Supervisors[i]
		s.Email = normalizeEmail(s.Email)
		if s.Name == "" || s.Email == "" {
			errs = append(errs, fmt.Errorf("supervisor %d: name and email are required", i))
		}
		if seen[s.Email] {
			errs = append(errs, fmt.Errorf("duplicate email %q", s.Email))
		}
		seen[s.Email] = true
		if s.MaxCapacity < 0 {
			errs = append(errs, fmt.Errorf("supervisor %s: max_capacity must not be negative", s.Email))
		}
		switch s.Availability {
		case "":
			s.Availability = models.AvailabilityAvailable
		case models.AvailabilityAvailable, models.AvailabilityLimited, models.AvailabilityUnavailable:
		default:
			errs = append(errs, fmt.Errorf("supervisor %s: unknown availability %q", s.Email, s.Availability))
		}
	}

	for i := range r.Students {
		s := &r.Students[i]
		s.Email = normalizeEmail(s.Email)
		if s.Name == "" || s.Email == "" {
			errs = append(errs, fmt.Errorf("student %d: name and email are required", i))
		}
		if seen[s.Email] {
			errs = append(errs, fmt.Errorf("duplicate email %q", s.Email))
		}
		seen[s.Email] = true
		students[s.Email] = true
	}

	paired := make(map[string]bool)
	for i := range r.Pairs {
		for j := range r.Pairs[i] {
			r.Pairs[i][j] = normalizeEmail(r.Pairs[i][j])
		}
		a, b := r.Pairs[i][0], r.Pairs[i][1]
		switch {
		case a == b:
			errs = append(errs, fmt.Errorf("pair %d: a student cannot partner with themselves", i))
		case !students[a] || !students[b]:
			errs = append(errs, fmt.Errorf("pair %d: unknown student", i))
		case paired[a] || paired[b]:
			errs = append(errs, fmt.Errorf("pair %d: student already in another pair", i))
		}
		paired[a], paired[b] = true, true
	}
	return errors.Join(errs...)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// ApplyRoster upserts the roster's people by email and links its pairs.
// Existing capacity counters, partnerships and applications are left alone,
// so applying the same roster twice is a no-op.
func ApplyRoster(db *gorm.DB, r *Roster) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, fx := range r.Supervisors {
			sup := models.Supervisor{
				Name:               fx.Name,
				Email:              fx.Email,
				Department:         fx.Department,
				ResearchAreas:      strings.Join(fx.ResearchAreas, ", "),
				MaxCapacity:        fx.MaxCapacity,
				AvailabilityStatus: fx.Availability,
				Version:            1,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "email"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "department", "research_areas", "max_capacity", "availability_status", "updated_at"}),
			}).Create(&sup).Error; err != nil {
				return fmt.Errorf("upsert supervisor %s: %w", fx.Email, err)
			}
		}

		for _, fx := range r.Students {
			st := models.Student{
				Name:              fx.Name,
				Email:             fx.Email,
				Bio:               fx.Bio,
				Skills:            strings.Join(fx.Skills, ", "),
				PartnershipStatus: models.PartnershipStatusNone,
				Version:           1,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "email"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "bio", "skills", "updated_at"}),
			}).Create(&st).Error; err != nil {
				return fmt.Errorf("upsert student %s: %w", fx.Email, err)
			}
		}

		for _, pair := range r.Pairs {
			var a, b models.Student
			if err := tx.Where("email = ?", pair[0]).First(&a).Error; err != nil {
				return err
			}
			if err := tx.Where("email = ?", pair[1]).First(&b).Error; err != nil {
				return err
			}
			if a.IsPaired() && b.IsPaired() && *a.PartnerID == b.ID && *b.PartnerID == a.ID {
				continue
			}
			if a.PartnershipStatus != models.PartnershipStatusNone || b.PartnershipStatus != models.PartnershipStatusNone {
				log.Printf("⚠️  skipping pair %s / %s: one of them is already engaged", a.Email, b.Email)
				continue
			}
			if err := linkPartners(tx, &a, &b); err != nil {
				return fmt.Errorf("pair %s and %s: %w", a.Email, b.Email, err)
			}
		}

		log.Printf("✓ roster applied: %d supervisors, %d students, %d pairs", len(r.Supervisors), len(r.Students), len(r.Pairs))
		return nil
	})
}

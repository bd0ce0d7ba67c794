package seed

import (
	"fmt"
	"log"

	"capstone/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumStudents    int
	NumSupervisors int
	// NumPairs students pairs are linked as partners after creation.
	NumPairs    int
	RandomSeed  int64
	ShouldClean bool
	DryRun      bool
}

// Summary reports what a seeding run created.
type Summary struct {
	Students    int
	Supervisors int
	Pairs       int
}

// Seed populates the database with a generated roster.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	if opts.NumPairs*2 > opts.NumStudents {
		return nil, fmt.Errorf("cannot form %d pairs from %d students", opts.NumPairs, opts.NumStudents)
	}
	log.Printf("🌱 Seeding %d students, %d supervisors, %d pairs...", opts.NumStudents, opts.NumSupervisors, opts.NumPairs)

	if opts.ShouldClean && !opts.DryRun {
		if err := ClearData(db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	f := NewFactory(db, opts.RandomSeed, opts.DryRun)

	supervisors, err := f.CreateSupervisors(opts.NumSupervisors)
	if err != nil {
		return nil, err
	}
	log.Printf("✓ %d supervisors created", len(supervisors))

	students, err := f.CreateStudents(opts.NumStudents)
	if err != nil {
		return nil, err
	}
	log.Printf("✓ %d students created", len(students))

	for i := 0; i < opts.NumPairs; i++ {
		a, b := students[2*i], students[2*i+1]
		if opts.DryRun {
			continue
		}
		if err := db.Transaction(func(tx *gorm.DB) error {
			return linkPartners(tx, a, b)
		}); err != nil {
			return nil, fmt.Errorf("pair %s and %s: %w", a.Email, b.Email, err)
		}
	}
	log.Printf("✓ %d pairs formed", opts.NumPairs)

	return &Summary{Students: len(students), Supervisors: len(supervisors), Pairs: opts.NumPairs}, nil
}

// ClearData removes every seeded row. Applications and requests go first so
// no row is left pointing at a deleted student or supervisor.
func ClearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE applications, partnership_requests, students, supervisors RESTART IDENTITY CASCADE`).Error
	}
	for _, model := range []interface{}{
		&models.Application{}, &models.PartnershipRequest{}, &models.Student{}, &models.Supervisor{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// linkPartners writes a symmetric pairing directly. It is only safe on rows
// nobody else is writing, which holds while seeding.
func linkPartners(tx *gorm.DB, a, b *models.Student) error {
	aID, bID := a.ID, b.ID
	a.PartnerID, a.PartnershipStatus = &bID, models.PartnershipStatusPaired
	b.PartnerID, b.PartnershipStatus = &aID, models.PartnershipStatusPaired
	for _, s := range []*models.Student{a, b} {
		if err := tx.Model(s).Updates(map[string]interface{}{
			"partner_id":         s.PartnerID,
			"partnership_status": s.PartnershipStatus,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

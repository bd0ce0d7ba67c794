// Command main runs the database seeder for the partnership API.
package main

import (
	"flag"
	"log"

	"capstone/internal/config"
	"capstone/internal/database"
	"capstone/internal/seed"
)

func main() {
	numStudents := flag.Int("students", 40, "Number of students to create")
	numSupervisors := flag.Int("supervisors", 8, "Number of supervisors to create")
	numPairs := flag.Int("pairs", 10, "Number of student pairs to link")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible rosters (0 = random)")
	roster := flag.String("roster", "", "Apply a YAML roster instead of generating one")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate without writing to the database")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	if *roster != "" {
		r, err := seed.LoadRoster(*roster)
		if err != nil {
			log.Fatalf("❌ Roster invalid: %v", err)
		}
		if *shouldClean {
			if err := seed.ClearData(db); err != nil {
				log.Fatalf("❌ Cleanup failed: %v", err)
			}
		}
		if err := seed.ApplyRoster(db, r); err != nil {
			log.Fatalf("❌ Roster seeding failed: %v", err)
		}
		log.Println("✨ Roster applied.")
		return
	}

	summary, err := seed.Seed(db, seed.Options{
		NumStudents:    *numStudents,
		NumSupervisors: *numSupervisors,
		NumPairs:       *numPairs,
		RandomSeed:     *randomSeed,
		ShouldClean:    *shouldClean,
		DryRun:         *dryRun,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d students (%d pairs), %d supervisors.", summary.Students, summary.Pairs, summary.Supervisors)
}

package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/Popalay/tennis-tracker/internal/database"
	"github.com/Popalay/tennis-tracker/internal/scoring"
	"github.com/Popalay/tennis-tracker/internal/tracker"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":           "tennis.db",
		"MIGRATIONS_DIR":    "./migrations",
		"TURSO_PRIMARY_URL": "",
		"TURSO_AUTH_TOKEN":  "",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	store := tracker.New(db)

	players := []tracker.PlayerInfo{
		{ID: "player-1", Name: "Seeder Player A"},
		{ID: "player-2", Name: "Seeder Player B"},
		{ID: "player-3", Name: "Seeder Player C"},
		{ID: "player-4", Name: "Seeder Player D"},
	}
	for _, p := range players {
		if err := store.UpsertPlayer(p); err != nil {
			log.Fatalf("Failed to insert player %s: %s", p.Name, err)
		}
	}
	log.Info("Ensured seed players exist.")

	const numMatches = 200

	log.Info("Preparing to record seed matches...", "total", numMatches)
	startTime := time.Now()

	for i := 0; i < numMatches; i++ {
		created := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)

		var match *scoring.Match
		if i%2 == 0 {
			match = randomSinglesMatch(players[rand.Intn(2)].ID, players[2+rand.Intn(2)].ID, created)
		} else {
			match = randomDoublesMatch([]string{players[0].ID, players[1].ID}, []string{players[2].ID, players[3].ID}, created)
		}

		if err := store.RecordMatch(match); err != nil {
			log.Fatalf("Failed to record seed match: %s", err)
		}
	}

	duration := time.Since(startTime)
	log.Info("Successfully recorded all seed matches.", "duration", duration)
}

func randomSinglesMatch(a, b string, created time.Time) *scoring.Match {
	return &scoring.Match{
		ID:        uuid.NewString(),
		Format:    scoring.FormatSingles,
		Players:   []string{a, b},
		Sets:      randomSets(a, b),
		CreatedAt: created,
	}
}

func randomDoublesMatch(team1, team2 []string, created time.Time) *scoring.Match {
	return &scoring.Match{
		ID:        uuid.NewString(),
		Format:    scoring.FormatDoubles,
		Players:   append(append([]string{}, team1...), team2...),
		Teams:     [][]string{team1, team2},
		Sets:      randomSets(scoring.TeamID(team1), scoring.TeamID(team2)),
		CreatedAt: created,
	}
}

// randomSets produces two or three plausible set scores between the named sides.
func randomSets(side1, side2 string) map[int]scoring.Set {
	sets := make(map[int]scoring.Set)
	count := 2 + rand.Intn(2)
	for number := 1; number <= count; number++ {
		loserGames := rand.Intn(6)
		winner, loser := side1, side2
		if rand.Intn(2) == 1 {
			winner, loser = side2, side1
		}
		sets[number] = scoring.Set{
			Games:  map[string]int{winner: 6, loser: loserGames},
			Winner: winner,
		}
	}
	return sets
}

// Package testutil provides shared fixtures for tests that need a seeded
// goals database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/Veraticus/ndalama/internal/storage"
	"github.com/shopspring/decimal"
)

// Start is the creation date used by the standard fixtures.
var Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	Path    string
	Goals   []model.Goal
}

// Fixture is a goal together with the contributions seeded for it.
type Fixture struct {
	Goal          model.Goal
	Contributions []model.Contribution
}

// Contribute appends a contribution of amount made days after the goal was
// created.
func (f Fixture) Contribute(amount string, days int) Fixture {
	f.Contributions = append(f.Contributions, model.Contribution{
		Amount:      decimal.RequireFromString(amount),
		Type:        "deposit",
		Description: "test deposit",
		Source:      "manual",
		Date:        f.Goal.CreatedAt.AddDate(0, 0, days),
	})
	return f
}

// NewFixture builds an active savings goal starting at Start.
func NewFixture(name, target string, days int, freq model.Frequency) Fixture {
	return Fixture{Goal: model.Goal{
		Name:       name,
		Target:     decimal.RequireFromString(target),
		CreatedAt:  Start,
		TargetDate: Start.AddDate(0, 0, days),
		Frequency:  freq,
		Status:     model.GoalStatusActive,
		Type:       model.GoalTypeSavings,
	}}
}

// EmergencyFund is a 6000 target over 300 days with monthly contributions,
// 1200 of which are saved.
func EmergencyFund() Fixture {
	f := NewFixture("Emergency fund", "6000", 300, model.FrequencyMonthly)
	f.Goal.IsPriority = true
	return f.Contribute("700", 15).Contribute("500", 45)
}

// Holiday is a small weekly goal with nothing saved.
func Holiday() Fixture {
	return NewFixture("Holiday", "900", 90, model.FrequencyWeekly)
}

// SetupTestDB creates a migrated database in a temp directory and seeds it
// with fixtures in order. Cleanup is registered on t.
func SetupTestDB(t *testing.T, fixtures ...Fixture) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ndalama.db")
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store, Path: path, t: t}
	for _, f := range fixtures {
		db.Seed(ctx, f)
	}
	return db
}

// Seed stores a fixture's goal and its contributions.
func (db *TestDB) Seed(ctx context.Context, f Fixture) model.Goal {
	db.t.Helper()

	goal := f.Goal
	if err := db.Storage.CreateGoal(ctx, &goal); err != nil {
		db.t.Fatalf("failed to seed goal %q: %v", goal.Name, err)
	}

	contributions := make([]model.Contribution, len(f.Contributions))
	for i, c := range f.Contributions {
		c.GoalID = goal.ID
		contributions[i] = c
	}
	if len(contributions) > 0 {
		if err := db.Storage.AddContributions(ctx, contributions); err != nil {
			db.t.Fatalf("failed to seed contributions for %q: %v", goal.Name, err)
		}
	}

	db.Goals = append(db.Goals, goal)
	return goal
}

// MustGoal returns the seeded goal with the given name or fails the test.
func (db *TestDB) MustGoal(name string) model.Goal {
	db.t.Helper()
	for _, g := range db.Goals {
		if g.Name == name {
			return g
		}
	}
	db.t.Fatalf("no seeded goal named %q", name)
	return model.Goal{}
}

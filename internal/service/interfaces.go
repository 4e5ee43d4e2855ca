// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/ndalama/internal/model"
)

// Snapshot is the complete record set at one point in time.
type Snapshot struct {
	Goals         []model.Goal
	Contributions []model.Contribution
}

// RecordCounts holds row counts for the stored record types.
type RecordCounts struct {
	Goals         int
	Contributions int
}

// Empty reports whether no records are stored.
func (c RecordCounts) Empty() bool {
	return c.Goals == 0 && c.Contributions == 0
}

// GoalStore holds goals. Goals are never deleted individually.
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, id int64) (*model.Goal, error)
	ListGoals(ctx context.Context) ([]model.Goal, error)
	UpdateGoal(ctx context.Context, goal *model.Goal) error
	SetGoalStatus(ctx context.Context, id int64, status model.GoalStatus) error
	PauseGoal(ctx context.Context, id int64) error
	CompleteGoal(ctx context.Context, id int64) error
	ActivateGoal(ctx context.Context, id int64) error
}

// ContributionStore holds contributions. Contributions are immutable.
type ContributionStore interface {
	AddContribution(ctx context.Context, c *model.Contribution) error
	AddContributions(ctx context.Context, contributions []model.Contribution) error
	ListContributions(ctx context.Context) ([]model.Contribution, error)
	ListContributionsForGoal(ctx context.Context, goalID int64) ([]model.Contribution, error)
}

// SnapshotSource reads the whole record set and reports changes to it.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	// Subscribe delivers the current snapshot immediately and again after
	// every durable write, until ctx is done.
	Subscribe(ctx context.Context) (<-chan Snapshot, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	GoalStore
	ContributionStore
	SnapshotSource

	Counts(ctx context.Context) (RecordCounts, error)
	WipeAll(ctx context.Context) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

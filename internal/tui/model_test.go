package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/Veraticus/ndalama/internal/pacing"
	"github.com/Veraticus/ndalama/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeStore struct {
	err   error
	calls []string
	mu    sync.Mutex
}

func (f *fakeStore) Subscribe(context.Context) (<-chan service.Snapshot, error) {
	return nil, f.err
}

func (f *fakeStore) record(op string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+":"+strconv.FormatInt(id, 10))
	return f.err
}

func (f *fakeStore) PauseGoal(_ context.Context, id int64) error    { return f.record("pause", id) }
func (f *fakeStore) ActivateGoal(_ context.Context, id int64) error { return f.record("activate", id) }
func (f *fakeStore) CompleteGoal(_ context.Context, id int64) error { return f.record("complete", id) }

func testSnapshot() service.Snapshot {
	return service.Snapshot{
		Goals: []model.Goal{
			{
				ID: 2, Name: "Emergency fund", Target: decimal.NewFromInt(6000),
				CreatedAt: start, TargetDate: start.AddDate(0, 0, 300),
				Frequency: model.FrequencyMonthly, Status: model.GoalStatusActive,
				Type: model.GoalTypeSavings, IsPriority: true,
			},
			{
				ID: 1, Name: "Secret stash", Target: decimal.NewFromInt(500),
				CreatedAt: start, TargetDate: start.AddDate(0, 0, 100),
				Frequency: model.FrequencyWeekly, Status: model.GoalStatusPaused,
				Type: model.GoalTypeSavings, IsPrivate: true,
			},
		},
		Contributions: []model.Contribution{
			{ID: 1, GoalID: 2, Amount: decimal.NewFromInt(1200), Date: start.AddDate(0, 0, 10)},
			{ID: 2, GoalID: 1, Amount: decimal.NewFromInt(50), Date: start.AddDate(0, 0, 3)},
			{ID: 3, GoalID: 99, Amount: decimal.NewFromInt(5), Date: start},
		},
	}
}

func newTestModel(store Store) Model {
	return NewModel(store, nil,
		WithClock(func() time.Time { return start.AddDate(0, 0, 90) }),
		WithSize(120, 40),
		WithAltScreen(false),
	)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func keyMsg(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestModel_LoadingUntilSnapshot(t *testing.T) {
	m := newTestModel(&fakeStore{})
	assert.Contains(t, m.View(), "Loading goals")

	m, cmd := update(t, m, snapshotMsg{snap: testSnapshot()})
	assert.NotNil(t, cmd, "keeps listening for snapshots")

	view := m.View()
	assert.Contains(t, view, "Emergency fund")
	assert.Contains(t, view, "Behind")
	assert.Contains(t, view, "USD 1,250.00", "total saved ignores orphans")
	assert.Contains(t, view, "1 contributions reference deleted goals")
}

func TestModel_DerivesPacingFromSnapshot(t *testing.T) {
	m, _ := update(t, newTestModel(&fakeStore{}), snapshotMsg{snap: testSnapshot()})

	gp, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Emergency fund", gp.Goal.Name)
	assert.Equal(t, pacing.StatusBehind, gp.Status)
	assert.True(t, decimal.NewFromInt(1800).Equal(gp.Expected))

	next := testSnapshot()
	next.Contributions = append(next.Contributions, model.Contribution{
		ID: 4, GoalID: 2, Amount: decimal.NewFromInt(700), Date: start.AddDate(0, 0, 80),
	})
	m, _ = update(t, m, snapshotMsg{snap: next})

	gp, _ = m.Selected()
	assert.Equal(t, pacing.StatusOnTrack, gp.Status)
}

func TestModel_PrivateGoalMasked(t *testing.T) {
	m, _ := update(t, newTestModel(&fakeStore{}), snapshotMsg{snap: testSnapshot()})
	m, _ = update(t, m, keyMsg("j"))

	gp, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Secret stash", gp.Goal.Name)

	view := m.View()
	assert.Contains(t, view, "**** / ****")
	assert.NotContains(t, view, "USD 500.00")
}

func TestModel_CursorClamped(t *testing.T) {
	m, _ := update(t, newTestModel(&fakeStore{}), snapshotMsg{snap: testSnapshot()})

	m, _ = update(t, m, keyMsg("k"))
	assert.Equal(t, 0, m.cursor)

	for i := 0; i < 5; i++ {
		m, _ = update(t, m, keyMsg("j"))
	}
	assert.Equal(t, 1, m.cursor)

	shrunk := testSnapshot()
	shrunk.Goals = shrunk.Goals[:1]
	m, _ = update(t, m, snapshotMsg{snap: shrunk})
	assert.Equal(t, 0, m.cursor)
}

func TestModel_GoalActions(t *testing.T) {
	store := &fakeStore{}
	m, _ := update(t, newTestModel(store), snapshotMsg{snap: testSnapshot()})

	_, cmd := update(t, m, keyMsg("p"))
	require.NotNil(t, cmd)
	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	require.True(t, ok)
	assert.NoError(t, done.err)

	_, cmd = update(t, m, keyMsg("a"))
	assert.Nil(t, cmd, "goal is already active")

	_, cmd = update(t, m, keyMsg("c"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []string{"pause:2", "complete:2"}, store.calls)

	m, _ = update(t, m, done)
	assert.Contains(t, m.View(), "Goal 2 is now paused")
}

func TestModel_ActionError(t *testing.T) {
	m, _ := update(t, newTestModel(&fakeStore{}), snapshotMsg{snap: testSnapshot()})

	m, _ = update(t, m, actionDoneMsg{goalID: 2, action: "paused", err: errors.New("database is locked")})
	assert.Contains(t, m.View(), "database is locked")
}

func TestModel_SettingsUpdate(t *testing.T) {
	m, _ := update(t, newTestModel(&fakeStore{}), snapshotMsg{snap: testSnapshot()})

	m, _ = update(t, m, settingsMsg{settings: model.Settings{Currency: "EUR", NumberFormat: model.NumberFormatDot}})
	assert.Contains(t, m.View(), "EUR 1.250,00")
}

func TestModel_Quit(t *testing.T) {
	m, _ := update(t, newTestModel(&fakeStore{}), snapshotMsg{snap: testSnapshot()})

	m, cmd := update(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestModel_SubscriptionClosed(t *testing.T) {
	ch := make(chan service.Snapshot)
	close(ch)

	msg := waitForSnapshot(ch)()
	assert.Equal(t, subscriptionClosedMsg{}, msg)

	m, cmd := update(t, newTestModel(&fakeStore{}), msg)
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

func TestModel_EmptySnapshot(t *testing.T) {
	m, _ := update(t, newTestModel(&fakeStore{}), snapshotMsg{})

	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "No goals yet")

	_, cmd := update(t, m, keyMsg("p"))
	assert.Nil(t, cmd)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.True(t, strings.HasSuffix(truncate(strings.Repeat("é", 30), 24), "…"))
}

func TestRun_SubscribeError(t *testing.T) {
	err := Run(context.Background(), &fakeStore{err: errors.New("closed")})
	assert.Error(t, err)
}

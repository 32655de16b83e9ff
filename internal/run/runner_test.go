package run

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iZac85/SecretSanta/internal/group"
	"github.com/iZac85/SecretSanta/internal/match"
	"github.com/iZac85/SecretSanta/internal/notify"
	"github.com/iZac85/SecretSanta/internal/store"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(ctx context.Context, phone, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, phone)
	return nil
}

func testGroup() *group.Group {
	return &group.Group{
		Families: []group.Family{
			{"A", "B"},
			{"C", "D"},
			{"E", "F"},
		},
		Contacts: map[string]string{
			"A": "+1", "B": "+2", "C": "+3", "D": "+4", "E": "+5", "F": "+6",
		},
	}
}

func newTestRunner(t *testing.T, sender notify.Sender) (*Runner, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "santa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return &Runner{
		Store:    st,
		Notifier: notify.New(sender, notify.WithDelay(0)),
		Logger:   zaptest.NewLogger(t),
	}, st
}

func TestRunStoresVerifiedAssignment(t *testing.T) {
	runner, st := newTestRunner(t, &fakeSender{})

	assignment, err := runner.Run(context.Background(), testGroup(), Options{
		Year:         2025,
		HistoryYears: 1,
	})
	require.NoError(t, err)
	assert.Len(t, assignment, 6)

	stored, err := st.Load(2025)
	require.NoError(t, err)
	assert.Equal(t, assignment, stored)
}

func TestRunDoesNotSendWithoutFlag(t *testing.T) {
	sender := &fakeSender{}
	runner, _ := newTestRunner(t, sender)

	_, err := runner.Run(context.Background(), testGroup(), Options{Year: 2025})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestRunSendsWhenAsked(t *testing.T) {
	sender := &fakeSender{}
	runner, _ := newTestRunner(t, sender)

	_, err := runner.Run(context.Background(), testGroup(), Options{
		Year: 2025,
		Send: true,
	})
	require.NoError(t, err)
	assert.Len(t, sender.sent, 6)
}

func TestRunRefusesToOverwriteYear(t *testing.T) {
	runner, _ := newTestRunner(t, &fakeSender{})

	_, err := runner.Run(context.Background(), testGroup(), Options{Year: 2025})
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), testGroup(), Options{Year: 2025})
	require.ErrorIs(t, err, store.ErrYearExists)
}

func TestRunReplace(t *testing.T) {
	runner, st := newTestRunner(t, &fakeSender{})

	_, err := runner.Run(context.Background(), testGroup(), Options{Year: 2025})
	require.NoError(t, err)

	replacement, err := runner.Run(context.Background(), testGroup(), Options{
		Year:    2025,
		Replace: true,
	})
	require.NoError(t, err)

	stored, err := st.Load(2025)
	require.NoError(t, err)
	assert.Equal(t, replacement, stored)
}

func TestRunExcludesPriorYear(t *testing.T) {
	runner, st := newTestRunner(t, &fakeSender{})
	g := testGroup()

	// Seed last year's draw so this year must avoid every one of its
	// pairs.
	prior, err := runner.Run(context.Background(), g, Options{Year: 2024})
	require.NoError(t, err)

	current, err := runner.Run(context.Background(), g, Options{
		Year:         2025,
		HistoryYears: 1,
		MaxAttempts:  100,
	})
	require.NoError(t, err)

	priorReceiver := make(map[string]string)
	for _, p := range prior {
		priorReceiver[p.Giver] = p.Receiver
	}
	for _, p := range current {
		assert.NotEqual(t, priorReceiver[p.Giver], p.Receiver,
			"%s repeated last year's receiver", p.Giver)
	}

	// Both years remain stored.
	years, err := st.Years()
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2024}, years)
}

func TestRunInfeasibleGroup(t *testing.T) {
	runner, st := newTestRunner(t, &fakeSender{})

	g := &group.Group{
		Families: []group.Family{{"A", "B"}},
		Contacts: map[string]string{"A": "+1", "B": "+2"},
	}

	_, err := runner.Run(context.Background(), g, Options{Year: 2025})
	require.ErrorIs(t, err, match.ErrExhaustedRetries)

	// Nothing was persisted for the failed run.
	_, err = st.Load(2025)
	require.ErrorIs(t, err, store.ErrNotFound)
}

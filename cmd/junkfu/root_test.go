package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// resetFlags undoes flag values left over from a previous Execute.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, out)
	return out
}

func testDB(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"ANTHROPIC_API_KEY", "LOG_FORMAT", "PROFILE_POLL", "ESTIMATOR_TIMEOUT", "BRIDGE_GRACE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return filepath.Join(t.TempDir(), "junkfu.db")
}

var addedID = regexp.MustCompile(`Added ([0-9a-f-]+):`)

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "junkfu")
}

func TestCatalog(t *testing.T) {
	out := mustExecute(t, "catalog")
	assert.Contains(t, out, "Italian")
	assert.Contains(t, out, "Pizza Slice\t285")
}

func TestCommandsRequireLogin(t *testing.T) {
	db := testDB(t)
	_, err := execute(t, "--db", db, "today")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestProfileFlow(t *testing.T) {
	db := testDB(t)

	out := mustExecute(t, "--db", db, "login")
	assert.Contains(t, out, "No profile yet")

	out = mustExecute(t, "--db", db, "profile", "set", "--name", "Ann", "--age", "30",
		"--weight", "70", "--height", "170", "--ideal-weight", "70", "--activity", "light")
	assert.Contains(t, out, "Daily goal: 2299 kcal")

	// only the changed field is applied
	out = mustExecute(t, "--db", db, "profile", "set", "--weight", "80")
	assert.Contains(t, out, "Daily goal: 1983 kcal")

	out = mustExecute(t, "--db", db, "login")
	assert.Contains(t, out, "Welcome back, Ann")

	out = mustExecute(t, "--db", db, "profile", "favorite", "add", "pizza", "slice")
	assert.Contains(t, out, "Favorites: Pizza Slice")

	mustExecute(t, "--db", db, "profile", "meal", "set", "breakfast", "Oatmeal=300", "Coffee=5")
	_, err := execute(t, "--db", db, "profile", "meal", "set", "snacks", "Chips=150")
	assert.ErrorIs(t, err, domain.ErrInvalidMealType)

	out = mustExecute(t, "--db", db, "profile", "show")
	assert.Contains(t, out, "Standard breakfast: Oatmeal (300), Coffee (5)")
	assert.Contains(t, out, "Weight: 80 kg")

	out = mustExecute(t, "--db", db, "profile", "goal")
	assert.Contains(t, out, "Maintenance (light): 2483 kcal")
}

func TestReminderCommands(t *testing.T) {
	db := testDB(t)
	mustExecute(t, "--db", db, "login")
	mustExecute(t, "--db", db, "profile", "set", "--name", "Ann", "--age", "30",
		"--weight", "70", "--height", "170", "--ideal-weight", "70")

	out := mustExecute(t, "--db", db, "remind", "add", "19:00")
	assert.Contains(t, out, "19:00")
	out = mustExecute(t, "--db", db, "remind", "add", "8:00")
	assert.Contains(t, out, "Reminder times: 08:00 19:00")
	out = mustExecute(t, "--db", db, "remind", "rm", "19:00")
	assert.Contains(t, out, "Reminder times: 08:00")

	_, err := execute(t, "--db", db, "remind", "add", "25:00")
	assert.ErrorIs(t, err, domain.ErrInvalidTimeOfDay)

	out = mustExecute(t, "--db", db, "remind", "permission")
	assert.Contains(t, out, "denied")
	_, err = execute(t, "--db", db, "remind", "on")
	assert.ErrorIs(t, err, errPermissionDenied)

	out = mustExecute(t, "--db", db, "remind", "list")
	assert.Contains(t, out, "Reminders are off")
	assert.Contains(t, out, "08:00\t")
	assert.Contains(t, out, "\tBreakfast")
}

func TestEntryFlow(t *testing.T) {
	db := testDB(t)
	mustExecute(t, "--db", db, "login")
	mustExecute(t, "--db", db, "profile", "set", "--name", "Ann", "--age", "30",
		"--weight", "70", "--height", "170", "--ideal-weight", "70", "--activity", "light")

	out := mustExecute(t, "--db", db, "entry", "add", "Pizza", "Slice", "--qty", "Large", "--meal", "lunch", "--date", "2025-05-05")
	assert.Contains(t, out, "Pizza Slice, Large, 428 kcal (Lunch)")
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2)
	pizzaID := m[1]

	out = mustExecute(t, "--db", db, "entry", "add", "Oatmeal", "--calories", "150", "--qty", "2", "--meal", "Breakfast", "--date", "2025-05-05")
	assert.Contains(t, out, "Oatmeal, 2 pcs, 300 kcal (Breakfast)")

	_, err := execute(t, "--db", db, "entry", "add", "Unicorn", "--date", "2025-05-05")
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	out = mustExecute(t, "--db", db, "today", "--date", "2025-05-05")
	assert.Contains(t, out, "Goal: 2299")
	assert.Contains(t, out, "Consumed: 728")
	assert.Contains(t, out, "Remaining: 1571")

	out = mustExecute(t, "--db", db, "entry", "edit", pizzaID, "--qty", "Small", "--date", "2025-05-05")
	assert.Contains(t, out, "Pizza Slice, Small, 214 kcal")

	out = mustExecute(t, "--db", db, "entry", "list", "--date", "2025-05-05")
	assert.Contains(t, out, "Oatmeal")
	assert.Contains(t, out, "Small\t214")

	mustExecute(t, "--db", db, "entry", "rm", pizzaID, "--date", "2025-05-05")
	out = mustExecute(t, "--db", db, "history", "--from", "2025-05-01", "--to", "2025-05-31")
	assert.Contains(t, out, "2025-05-05\t300\t2299\t13%")

	_, err = execute(t, "--db", db, "entry", "edit", pizzaID, "--qty", "Large", "--date", "2025-05-05")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = execute(t, "--db", db, "entry", "custom", "a", "bowl", "of", "ramen")
	assert.ErrorIs(t, err, domain.ErrEstimatorFailure)

	mustExecute(t, "--db", db, "logout")
	_, err = execute(t, "--db", db, "entry", "list")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestEntryAddStandard(t *testing.T) {
	db := testDB(t)
	mustExecute(t, "--db", db, "login")
	mustExecute(t, "--db", db, "profile", "set", "--name", "Ann", "--age", "30",
		"--weight", "70", "--height", "170", "--ideal-weight", "70", "--activity", "light")
	mustExecute(t, "--db", db, "profile", "meal", "set", "lunch", "Dal Rice=520")

	out := mustExecute(t, "--db", db, "entry", "add", "dal", "rice", "--standard", "lunch", "--qty", "2", "--date", "2025-05-05")
	assert.Contains(t, out, "Dal Rice, 2 x Dal Rice, 1040 kcal (Lunch)")

	out = mustExecute(t, "--db", db, "entry", "add", "Dal Rice", "--standard", "Lunch", "--date", "2025-05-05")
	assert.Contains(t, out, "1 x Dal Rice, 520 kcal")

	_, err := execute(t, "--db", db, "entry", "add", "Dal Rice", "--standard", "lunch", "--qty", "Large")
	assert.ErrorContains(t, err, "must be a number")

	_, err = execute(t, "--db", db, "entry", "add", "Pasta", "--standard", "lunch")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out = mustExecute(t, "--db", db, "today", "--date", "2025-05-05")
	assert.Contains(t, out, "Consumed: 1560")
}

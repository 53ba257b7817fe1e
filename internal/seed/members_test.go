package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattlowe/formhall/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("file:" + t.TempDir() + "/formhall.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestMembersSeedsDemoRosterOnce(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, Members(ctx, s, ""))
	n, err := s.CountMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(demoRoster()), n)

	// Second run is a no-op.
	require.NoError(t, Members(ctx, s, ""))
	n, err = s.CountMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(demoRoster()), n)
}

func TestMembersLoadsRosterFile(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	path := filepath.Join(t.TempDir(), "roster.json")
	body := `[{"full_name": "Ana Alvarez", "rank": "Chief"}, {"full_name": "Ben Okafor"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	require.NoError(t, Members(ctx, s, path))
	members, err := s.SearchMembers(ctx, "a", 10)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestMembersRejectsMalformedRoster(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	path := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	require.Error(t, Members(ctx, s, path))
}

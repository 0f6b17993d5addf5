package search

import (
	"testing"

	"github.com/questx-lab/habit/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestBleveIndex_Users(t *testing.T) {
	index := NewBleveIndex(testutil.MockContext())
	defer index.Close()

	require.NoError(t, index.IndexUser("u1", UserData{Username: "alice", DisplayName: "Alice Walker"}))
	require.NoError(t, index.IndexUser("u2", UserData{Username: "alfred", DisplayName: "Alfred"}))
	require.NoError(t, index.IndexUser("u3", UserData{Username: "bob", DisplayName: "Bob Walker"}))

	ids, err := index.SearchUsers("walker", 0, 10)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u3"}, ids)

	ids, err = index.SearchUsers("al", 0, 10)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u2"}, ids)

	// Indexing again replaces the document.
	require.NoError(t, index.IndexUser("u3", UserData{Username: "bob", DisplayName: "Bob"}))
	ids, err = index.SearchUsers("walker", 0, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, ids)

	require.NoError(t, index.DeleteUser("u1"))
	ids, err = index.SearchUsers("walker", 0, 10)
	require.NoError(t, err)
	require.Empty(t, ids)
}

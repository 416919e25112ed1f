package projection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type member struct {
	Name  string
	Stage string
	Rank  int
}

func TestGroupBy_FirstSeenKeyOrder(t *testing.T) {
	members := []member{
		{Name: "ada", Stage: "senior"},
		{Name: "grace", Stage: "junior"},
		{Name: "alan", Stage: "senior"},
		{Name: "edsger", Stage: "principal"},
	}

	groups := GroupBy(members, func(m member) string { return m.Stage })

	require.Len(t, groups, 3)
	require.Equal(t, "senior", groups[0].Key)
	require.Equal(t, []string{"ada", "alan"}, names(groups[0].Items))
	require.Equal(t, "junior", groups[1].Key)
	require.Equal(t, "principal", groups[2].Key)
}

func TestGroupBy_DoesNotMutateSource(t *testing.T) {
	members := []member{
		{Name: "b", Stage: "x"},
		{Name: "a", Stage: "x"},
	}
	_ = GroupBy(members, func(m member) string { return m.Stage })
	require.Equal(t, "b", members[0].Name)
	require.Equal(t, "a", members[1].Name)
}

func TestFilter(t *testing.T) {
	members := []member{
		{Name: "ada", Rank: 3},
		{Name: "grace", Rank: 1},
		{Name: "alan", Rank: 3},
	}
	out := Filter(members, func(m member) bool { return m.Rank == 3 })
	require.Equal(t, []string{"ada", "alan"}, names(out))
	require.Len(t, members, 3)
}

func TestSortStable_TiesKeepOriginalOrder(t *testing.T) {
	members := []member{
		{Name: "c", Rank: 2},
		{Name: "a", Rank: 1},
		{Name: "b", Rank: 2},
		{Name: "d", Rank: 1},
	}
	sorted := SortStable(members, func(x, y member) bool { return x.Rank < y.Rank })

	require.Equal(t, []string{"a", "d", "c", "b"}, names(sorted))
	// Source untouched.
	require.Equal(t, []string{"c", "a", "b", "d"}, names(members))
}

func TestSortStable_Deterministic(t *testing.T) {
	members := []member{
		{Name: "c", Rank: 2},
		{Name: "a", Rank: 1},
		{Name: "b", Rank: 2},
	}
	first := SortStable(members, func(x, y member) bool { return x.Rank < y.Rank })
	second := SortStable(members, func(x, y member) bool { return x.Rank < y.Rank })
	require.Equal(t, first, second)
}

func TestCountBy(t *testing.T) {
	members := []member{
		{Stage: "junior"},
		{Stage: "senior"},
		{Stage: "junior"},
	}
	counts := CountBy(members, func(m member) string { return m.Stage })
	require.Equal(t, map[string]int{"junior": 2, "senior": 1}, counts)
}

func names(ms []member) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Name)
	}
	return out
}

package selection

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
)

func item(id string) domain.Item {
	return domain.Item{ID: id, DisplayName: "Item " + id}
}

func variant(id, key string) domain.Item {
	return domain.Item{ID: id, DisplayName: "Item " + id, VariantKey: key}
}

func newSet(t *testing.T, mode domain.Mode, opts ...Option) *Set {
	t.Helper()
	s, err := New(mode, opts...)
	require.NoError(t, err)
	return s
}

func TestNewValidatesConfiguration(t *testing.T) {
	_, err := New(domain.Mode(42))
	require.Error(t, err)

	_, err = New(domain.ModeSingleList, WithMaxItems(-1))
	require.Error(t, err)

	s := newSet(t, domain.ModeKeyedList, WithMaxItems(3))
	assert.Equal(t, domain.ModeKeyedList, s.Mode())
	assert.Equal(t, 3, s.MaxItems())
}

func TestSingleModeReplacesInsteadOfAccumulating(t *testing.T) {
	s := newSet(t, domain.ModeSingle)

	change, err := s.Add(item("A"))
	require.NoError(t, err)
	assert.Equal(t, ChangeAdded, change.Kind)

	change, err = s.Add(item("B"))
	require.NoError(t, err)
	assert.Equal(t, ChangeReplaced, change.Kind)
	assert.Equal(t, []string{"B"}, change.Added())
	assert.Equal(t, []string{"A"}, change.Removed())
	assert.Equal(t, []string{"B"}, s.Keys())
}

func TestKeyedModeReplacesSoleEntry(t *testing.T) {
	s := newSet(t, domain.ModeKeyed, WithMaxItems(5))

	_, err := s.Add(variant("P1", "P1-red"))
	require.NoError(t, err)
	_, err = s.Add(variant("P1", "P1-blue"))
	require.NoError(t, err)

	assert.Equal(t, []string{"P1-blue"}, s.Keys())
}

func TestDuplicateSelectionLeavesSetUnchanged(t *testing.T) {
	for _, mode := range domain.Modes() {
		t.Run(mode.String(), func(t *testing.T) {
			s := newSet(t, mode)
			_, err := s.Add(variant("P1", "K1"))
			require.NoError(t, err)
			before := s.Keys()

			change, err := s.Add(variant("P2", "K1"))
			require.ErrorIs(t, err, ErrDuplicateSelection)
			assert.False(t, change.Changed())
			assert.Equal(t, before, s.Keys())
		})
	}
}

func TestSameItemDifferentVariantsAreDistinct(t *testing.T) {
	s := newSet(t, domain.ModeKeyedList)

	_, err := s.Add(variant("P1", "P1-s"))
	require.NoError(t, err)
	_, err = s.Add(variant("P1", "P1-m"))
	require.NoError(t, err)

	assert.Equal(t, []string{"P1-s", "P1-m"}, s.Keys())
}

func TestKeyedListMaxItemsScenario(t *testing.T) {
	s := newSet(t, domain.ModeKeyedList, WithMaxItems(2))

	_, err := s.Add(item("A"))
	require.NoError(t, err)
	_, err = s.Add(item("B"))
	require.NoError(t, err)
	assert.True(t, s.Full())

	change, err := s.Add(item("C"))
	require.ErrorIs(t, err, ErrMaxItemsExceeded)
	assert.False(t, change.Changed())
	assert.Equal(t, 2, s.Len())

	removed := s.Remove("B")
	assert.Equal(t, ChangeRemoved, removed.Kind)
	assert.Equal(t, "B", removed.Entry.Key())

	_, err = s.Add(item("C"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, s.Keys())
}

func TestMaxItemsIsHardBound(t *testing.T) {
	for _, mode := range []domain.Mode{domain.ModeSingleList, domain.ModeKeyedList} {
		for k := 1; k <= 4; k++ {
			s := newSet(t, mode, WithMaxItems(k))
			for i := 0; i < k; i++ {
				_, err := s.Add(item(fmt.Sprint(i)))
				require.NoError(t, err)
			}
			_, err := s.Add(item("overflow"))
			require.ErrorIs(t, err, ErrMaxItemsExceeded, "mode=%s k=%d", mode, k)
			assert.Equal(t, k, s.Len())
		}
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	s := newSet(t, domain.ModeSingleList)
	_, err := s.Add(item("A"))
	require.NoError(t, err)

	change := s.Remove("missing")
	assert.False(t, change.Changed())
	assert.Equal(t, 1, change.Len)
}

func TestClear(t *testing.T) {
	s := newSet(t, domain.ModeSingleList)
	assert.False(t, s.Clear().Changed())

	_, _ = s.Add(item("A"))
	_, _ = s.Add(item("B"))
	change := s.Clear()
	assert.Equal(t, ChangeCleared, change.Kind)
	assert.Equal(t, []string{"A", "B"}, change.Removed())
	assert.Zero(t, s.Len())
}

func TestAddRejectsItemsWithoutID(t *testing.T) {
	s := newSet(t, domain.ModeSingleList)
	_, err := s.Add(domain.Item{DisplayName: "nameless"})
	require.ErrorIs(t, err, ErrInvalidItem)
	assert.Zero(t, s.Len())
}

func TestListIsRestartableAndOrdered(t *testing.T) {
	s := newSet(t, domain.ModeSingleList)
	for _, id := range []string{"C", "A", "B"} {
		_, err := s.Add(item(id))
		require.NoError(t, err)
	}

	var orders []uint64
	for e := range s.List() {
		orders = append(orders, e.Order)
	}
	assert.IsIncreasing(t, orders)

	first := s.Keys()
	second := s.Keys()
	assert.Equal(t, []string{"C", "A", "B"}, first)
	assert.Equal(t, first, second)

	// early exit
	var firstOnly []string
	for e := range s.List() {
		firstOnly = append(firstOnly, e.Key())
		break
	}
	assert.Equal(t, []string{"C"}, firstOnly)
}

func TestListSnapshotSurvivesMutation(t *testing.T) {
	s := newSet(t, domain.ModeSingleList)
	for _, id := range []string{"A", "B", "C"} {
		_, _ = s.Add(item(id))
	}

	var seen []string
	for e := range s.List() {
		seen = append(seen, e.Key())
		s.Remove("C")
		_, _ = s.Add(item("D" + e.Key()))
	}
	assert.Equal(t, []string{"A", "B", "C"}, seen)
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, mode := range domain.Modes() {
		s := newSet(t, mode, WithMaxItems(3))
		for step := 0; step < 500; step++ {
			key := fmt.Sprint(rng.Intn(6))
			if rng.Intn(3) == 0 {
				s.Remove(key)
			} else {
				_, _ = s.Add(item(key))
			}

			keys := s.Keys()
			unique := map[string]bool{}
			for _, k := range keys {
				require.False(t, unique[k], "duplicate key %s", k)
				unique[k] = true
			}
			if mode.IsList() {
				require.LessOrEqual(t, len(keys), 3)
			} else {
				require.LessOrEqual(t, len(keys), 1)
			}
		}
	}
}

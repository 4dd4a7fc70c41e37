package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/planflow/internal/ledger"
	"github.com/aretw0/planflow/internal/testutils"
	"github.com/aretw0/planflow/pkg/domain"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func answer(ids ...string) domain.UserData {
	return domain.UserData{Answers: ids}
}

func data(kv ...any) domain.UserData {
	m := make(map[string]any)
	for i := 0; i < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return domain.UserData{Data: m}
}

// orphanFlow is root -> Q -> (A1 -> X -> XA -> Y, A2).
func orphanFlow() *domain.Graph {
	return testutils.NewFlow("q").
		Question("q", "k", "a1", "a2").
		Answer("a1", "one", "x").
		Answer("a2", "two").
		Question("x", "x", "xa").
		Answer("xa", "xa", "y").
		Input("y", domain.TypeTextInput, "y").
		Graph()
}

func TestAppend_NodeNotFound(t *testing.T) {
	lg := ledger.New(orphanFlow())

	err := lg.Append(context.Background(), "missing", answer())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNodeNotFound))

	var nf *domain.NodeNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.ID)

	assert.ErrorIs(t, lg.Retreat(context.Background(), "missing"), domain.ErrNodeNotFound)
	assert.ErrorIs(t, lg.ChangeAnswer(context.Background(), "missing"), domain.ErrNodeNotFound)
}

func TestAppend_FiltersEmptyPayload(t *testing.T) {
	lg := ledger.New(orphanFlow(), ledger.WithClock(testutils.Clock(epoch)))
	ctx := context.Background()

	require.NoError(t, lg.Append(ctx, "y", domain.UserData{
		Answers: []string{},
		Data:    map[string]any{"y": "kept", "gone": nil},
	}))

	b, ok := lg.Breadcrumbs().Get("y")
	require.True(t, ok)
	assert.Nil(t, b.Answers)
	assert.Equal(t, map[string]any{"y": "kept"}, b.Data)
	assert.Equal(t, epoch, b.CreatedAt)
	assert.Equal(t, 1, b.Seq)
}

func TestAppend_CanonicalOrder(t *testing.T) {
	g := testutils.NewFlow("a", "b", "c").
		Input("a", domain.TypeTextInput, "a").
		Input("b", domain.TypeTextInput, "b").
		Input("c", domain.TypeTextInput, "c").
		Graph()
	lg := ledger.New(g)
	ctx := context.Background()

	require.NoError(t, lg.Append(ctx, "c", data("c", 1)))
	require.NoError(t, lg.Append(ctx, "a", data("a", 1)))
	require.NoError(t, lg.Append(ctx, "b", data("b", 1)))

	assert.Equal(t, []string{"a", "b", "c"}, lg.Breadcrumbs().IDs())
}

func TestOrphanPruning(t *testing.T) {
	ctx := context.Background()

	record := func(t *testing.T, lg *ledger.Ledger) {
		require.NoError(t, lg.Append(ctx, "q", answer("a1")))
		require.NoError(t, lg.Append(ctx, "x", answer("xa")))
		require.NoError(t, lg.Append(ctx, "y", data("y", "text")))
		require.Equal(t, []string{"q", "x", "y"}, lg.Breadcrumbs().IDs())
	}

	t.Run("re-recording removes the abandoned branch transitively", func(t *testing.T) {
		lg := ledger.New(orphanFlow())
		record(t, lg)

		require.NoError(t, lg.Append(ctx, "q", answer("a2")))

		assert.Equal(t, []string{"q"}, lg.Breadcrumbs().IDs())
		assert.Zero(t, lg.Cached().Len())
	})

	t.Run("cached branch is pruned too", func(t *testing.T) {
		lg := ledger.New(orphanFlow())
		record(t, lg)

		require.NoError(t, lg.Retreat(ctx, "q"))
		assert.Equal(t, []string{"q", "x", "y"}, lg.Cached().IDs())

		require.NoError(t, lg.Append(ctx, "q", answer("a2")))
		assert.Equal(t, []string{"q"}, lg.Breadcrumbs().IDs())
		assert.Zero(t, lg.Cached().Len())
	})

	t.Run("corrupted references are reported and skipped", func(t *testing.T) {
		g := testutils.NewFlow("q").
			Question("q", "k", "a1", "a2").
			Answer("a1", "one", "ghost", "x").
			Answer("a2", "two").
			Input("x", domain.TypeTextInput, "x").
			Graph()

		var refs []string
		lg := ledger.New(g, ledger.WithLifecycleHooks(domain.LifecycleHooks{
			OnCorruptedReference: func(_ context.Context, ev *domain.ReferenceEvent) {
				refs = append(refs, ev.NodeID+"->"+ev.Ref)
			},
		}))
		require.NoError(t, lg.Append(ctx, "q", answer("a1")))
		require.NoError(t, lg.Append(ctx, "x", data("x", 1)))

		require.NoError(t, lg.Append(ctx, "q", answer("a2")))
		assert.Equal(t, []string{"q"}, lg.Breadcrumbs().IDs())
		assert.Equal(t, []string{"a1->ghost"}, refs)
	})

	t.Run("clones under the selected answer survive", func(t *testing.T) {
		g := testutils.NewFlow("q").
			Question("q", "k", "a1", "a2").
			Answer("a1", "one", "shared").
			Answer("a2", "two", "shared").
			Input("shared", domain.TypeTextInput, "s").
			Graph()
		lg := ledger.New(g)
		require.NoError(t, lg.Append(ctx, "q", answer("a1")))
		require.NoError(t, lg.Append(ctx, "shared", data("s", 1)))

		require.NoError(t, lg.Append(ctx, "q", answer("a2")))
		assert.Equal(t, []string{"q", "shared"}, lg.Breadcrumbs().IDs())
	})
}

func TestCacheRoundTrip(t *testing.T) {
	g := testutils.NewFlow("a", "b").
		Question("a", "a", "a1", "a2").
		Answer("a1", "one").
		Answer("a2", "two").
		Question("b", "b", "b1", "b2").
		Answer("b1", "one").
		Answer("b2", "two").
		Graph()
	lg := ledger.New(g, ledger.WithClock(testutils.Clock(epoch)))
	ctx := context.Background()

	require.NoError(t, lg.Append(ctx, "a", answer("a1")))
	require.NoError(t, lg.Append(ctx, "b", answer("b1")))
	original, _ := lg.Breadcrumbs().Get("b")

	require.NoError(t, lg.Retreat(ctx, "b"))
	assert.False(t, lg.Breadcrumbs().Has("b"))
	assert.True(t, lg.Cached().Has("b"))

	t.Run("same answer restores seq and createdAt", func(t *testing.T) {
		require.NoError(t, lg.Append(ctx, "b", answer("b1")))
		restored, _ := lg.Breadcrumbs().Get("b")
		assert.Equal(t, original.Seq, restored.Seq)
		assert.Equal(t, original.CreatedAt, restored.CreatedAt)
		assert.False(t, lg.Cached().Has("b"))
	})

	t.Run("changed answer mints new values", func(t *testing.T) {
		require.NoError(t, lg.Retreat(ctx, "b"))
		require.NoError(t, lg.Append(ctx, "b", answer("b2")))
		changed, _ := lg.Breadcrumbs().Get("b")
		assert.Greater(t, changed.Seq, original.Seq)
		assert.True(t, changed.CreatedAt.After(original.CreatedAt))
	})
}

func TestRetreat(t *testing.T) {
	g := testutils.NewFlow("a", "b", "c").
		Input("a", domain.TypeTextInput, "a").
		Input("b", domain.TypeTextInput, "b").
		Input("c", domain.TypeTextInput, "c").
		Graph()
	ctx := context.Background()

	var retreats []string
	lg := ledger.New(g, ledger.WithLifecycleHooks(domain.LifecycleHooks{
		OnRetreat: func(_ context.Context, ev *domain.RecordEvent) { retreats = append(retreats, ev.NodeID) },
	}))
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, lg.Append(ctx, id, data(id, id)))
	}

	require.NoError(t, lg.Retreat(ctx, "b"))
	assert.Equal(t, []string{"a"}, lg.Breadcrumbs().IDs())
	assert.ElementsMatch(t, []string{"b", "c"}, lg.Cached().IDs())

	require.NoError(t, lg.Retreat(ctx, "c"), "retreating to an id that is not live is a no-op")
	assert.Equal(t, []string{"b"}, retreats)
}

func TestChangeAnswer_RestoresUnrelatedAnswers(t *testing.T) {
	g := testutils.NewFlow("q1", "q2", "q3", "review").
		Question("q1", "one", "q1a", "q1b").
		Answer("q1a", "a").
		Answer("q1b", "b").
		Question("q2", "two", "q2a").
		Answer("q2a", "a").
		Question("q3", "three", "q3a").
		Answer("q3a", "a").
		Content("review", domain.TypeReview).
		Graph()
	lg := ledger.New(g)
	ctx := context.Background()

	require.NoError(t, lg.Append(ctx, "q1", answer("q1a")))
	require.NoError(t, lg.Append(ctx, "q2", answer("q2a")))
	require.NoError(t, lg.Append(ctx, "q3", answer("q3a")))

	require.NoError(t, lg.ChangeAnswer(ctx, "q1"))
	assert.Equal(t, "q1", lg.ChangedNode())
	assert.True(t, lg.Restoring())
	assert.Zero(t, lg.Breadcrumbs().Len())

	require.NoError(t, lg.Append(ctx, "q1", answer("q1b")))
	assert.Equal(t, []string{"q1", "q2", "q3"}, lg.Breadcrumbs().IDs())
	assert.Zero(t, lg.Cached().Len())
	assert.False(t, lg.Restoring())
	assert.Equal(t, "q1", lg.ChangedNode())

	require.NoError(t, lg.Append(ctx, "review", domain.UserData{}))
	assert.Empty(t, lg.ChangedNode(), "reaching review clears the changed node")
}

// dependencyFlow is FindProperty -> Text -> DrawBoundary -> PlanningConstraints.
func dependencyFlow() *domain.Graph {
	return testutils.NewFlow("fp", "text", "db", "pc").
		Add("fp", domain.TypeFindProperty, &domain.PropertyData{}).
		Input("text", domain.TypeTextInput, "notes").
		Add("db", domain.TypeDrawBoundary, &domain.PropertyData{}).
		Add("pc", domain.TypePlanningConstraints, &domain.PropertyData{}).
		Graph()
}

func TestInvalidateDependents(t *testing.T) {
	ctx := context.Background()
	recordAll := func(t *testing.T, lg *ledger.Ledger) {
		require.NoError(t, lg.Append(ctx, "fp", data("_address", "1 High St")))
		require.NoError(t, lg.Append(ctx, "text", data("notes", "hello")))
		require.NoError(t, lg.Append(ctx, "db", data("boundary", "A")))
		require.NoError(t, lg.Append(ctx, "pc", data(domain.PlanningConstraintsFn, []string{"articleFour"})))
	}

	t.Run("re-recording different data", func(t *testing.T) {
		var invalidated []string
		lg := ledger.New(dependencyFlow(), ledger.WithLifecycleHooks(domain.LifecycleHooks{
			OnInvalidate: func(_ context.Context, ev *domain.InvalidateEvent) {
				invalidated = append(invalidated, ev.Removed...)
			},
		}))
		recordAll(t, lg)
		text, _ := lg.Breadcrumbs().Get("text")

		require.NoError(t, lg.Append(ctx, "fp", data("_address", "2 Low Rd")))

		assert.Equal(t, []string{"fp", "text"}, lg.Breadcrumbs().IDs())
		assert.Equal(t, []string{"db", "pc"}, lg.Pending())
		assert.Equal(t, []string{"db", "pc"}, invalidated)
		assert.False(t, lg.Cached().Has("db"))
		assert.False(t, lg.Cached().Has("pc"))

		kept, _ := lg.Breadcrumbs().Get("text")
		assert.Equal(t, text, kept, "unrelated breadcrumbs stay untouched")
	})

	t.Run("changing the answer from review", func(t *testing.T) {
		lg := ledger.New(dependencyFlow())
		recordAll(t, lg)

		require.NoError(t, lg.ChangeAnswer(ctx, "fp"))
		require.NoError(t, lg.Append(ctx, "fp", data("_address", "2 Low Rd")))

		assert.ElementsMatch(t, []string{"fp", "text"}, lg.Breadcrumbs().IDs())
		assert.Equal(t, []string{"db", "pc"}, lg.Pending())
		assert.Zero(t, lg.Cached().Len())
	})

	t.Run("same data keeps dependents", func(t *testing.T) {
		lg := ledger.New(dependencyFlow())
		recordAll(t, lg)

		require.NoError(t, lg.Append(ctx, "fp", data("_address", "1 High St")))
		assert.Equal(t, []string{"fp", "text", "db", "pc"}, lg.Breadcrumbs().IDs())
		assert.Empty(t, lg.Pending())
	})

	t.Run("pending set keeps insertion order until exhausted", func(t *testing.T) {
		g := testutils.NewFlow("fp", "db", "text", "pc").
			Add("fp", domain.TypeFindProperty, &domain.PropertyData{}).
			Add("db", domain.TypeDrawBoundary, &domain.PropertyData{}).
			Input("text", domain.TypeTextInput, "notes").
			Add("pc", domain.TypePlanningConstraints, &domain.PropertyData{}).
			Graph()
		lg := ledger.New(g)
		require.NoError(t, lg.Append(ctx, "fp", data("_address", "1 High St")))
		require.NoError(t, lg.Append(ctx, "db", data("boundary", "A")))
		require.NoError(t, lg.Append(ctx, "text", data("notes", "hello")))
		require.NoError(t, lg.Append(ctx, "pc", data("pc", "x")))

		require.NoError(t, lg.Append(ctx, "fp", data("_address", "2 Low Rd")))
		require.Equal(t, []string{"db", "pc"}, lg.Pending())

		require.NoError(t, lg.Append(ctx, "db", data("boundary", "B")))
		assert.Equal(t, []string{"fp", "text", "db"}, lg.Breadcrumbs().IDs())
		assert.Equal(t, []string{"db", "pc"}, lg.Pending())

		require.NoError(t, lg.Append(ctx, "pc", data("pc", "y")))
		assert.Empty(t, lg.Pending())
		assert.Equal(t, []string{"fp", "db", "text", "pc"}, lg.Breadcrumbs().IDs())
	})
}

func TestLoadAndSave(t *testing.T) {
	g := testutils.NewFlow("a", "b").
		Input("a", domain.TypeTextInput, "a").
		Input("b", domain.TypeTextInput, "b").
		Graph()

	snap := domain.NewSnapshot("s1")
	snap.Breadcrumbs.Set("b", domain.Breadcrumb{Seq: 7, Data: map[string]any{"b": 1}})
	snap.Breadcrumbs.Set("a", domain.Breadcrumb{Seq: 3, Data: map[string]any{"a": 1}})
	snap.CachedBreadcrumbs.Set("a", domain.Breadcrumb{Seq: 9})

	lg := ledger.New(g)
	lg.Load(snap)

	assert.Equal(t, []string{"a", "b"}, lg.Breadcrumbs().IDs())
	assert.Zero(t, lg.Cached().Len(), "cache and ledger stay disjoint")

	require.NoError(t, lg.Retreat(context.Background(), "b"))
	require.NoError(t, lg.Append(context.Background(), "b", data("b", 2)))
	b, _ := lg.Breadcrumbs().Get("b")
	assert.Equal(t, 8, b.Seq, "sequence continues after the highest loaded seq")

	out := domain.NewSnapshot("s1")
	lg.Save(out)
	assert.Equal(t, []string{"a", "b"}, out.Breadcrumbs.IDs())
}

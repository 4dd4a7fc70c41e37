package autoanswer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/planflow/internal/autoanswer"
	"github.com/aretw0/planflow/internal/testutils"
	"github.com/aretw0/planflow/pkg/domain"
)

func passportOf(data map[string]any) domain.Passport {
	return domain.Passport{Data: data}
}

func answered(ids ...string) *domain.Breadcrumbs {
	bc := &domain.Breadcrumbs{}
	for i := 0; i < len(ids); i += 2 {
		bc.Set(ids[i], domain.Breadcrumb{Answers: []string{ids[i+1]}})
	}
	return bc
}

func TestOptions_ExactMatchPriority(t *testing.T) {
	for _, kind := range []domain.NodeType{domain.TypeQuestion, domain.TypeChecklist} {
		t.Run(string(kind), func(t *testing.T) {
			g := testutils.NewFlow("q").
				Decision("q", kind, domain.DecisionData{Fn: "k"}, "general", "specific").
				Answer("general", "a").
				Answer("specific", "a.b").
				Graph()
			r := autoanswer.New(g)

			got := r.Options("q", &domain.Breadcrumbs{}, passportOf(map[string]any{"k": []string{"a", "a.b"}}))
			assert.Equal(t, []string{"specific"}, got)
		})
	}
}

func TestOptions_NoReversePrefixMatch(t *testing.T) {
	g := testutils.NewFlow("q1", "q2").
		Checklist("q1", "k", "general", "specific").
		Answer("general", "a").
		Answer("specific", "a.b").
		Question("q2", "k", "only-specific", "blank").
		Answer("only-specific", "a.b").
		Answer("blank", "").
		Graph()
	r := autoanswer.New(g)

	t.Run("specific value does not select the general sibling", func(t *testing.T) {
		got := r.Options("q1", &domain.Breadcrumbs{}, passportOf(map[string]any{"k": []string{"a.b"}}))
		assert.Equal(t, []string{"specific"}, got)
	})

	t.Run("general value does not select a specific option", func(t *testing.T) {
		got := r.Options("q2", &domain.Breadcrumbs{}, passportOf(map[string]any{"k": []string{"a"}}))
		assert.Equal(t, []string{"blank"}, got)
	})
}

func TestOptions_PrefixMatchPicksMostSpecific(t *testing.T) {
	g := testutils.NewFlow("q").
		Checklist("q", "k", "o1", "o2", "o3").
		Answer("o1", "a").
		Answer("o2", "a.b").
		Answer("o3", "").
		Graph()
	r := autoanswer.New(g)

	got := r.Options("q", &domain.Breadcrumbs{}, passportOf(map[string]any{"k": []string{"a.b.c"}}))
	assert.Equal(t, []string{"o2"}, got)
}

func TestOptions_Rejections(t *testing.T) {
	g := testutils.NewFlow("never", "nofn", "noedges", "fresh", "text").
		Decision("never", domain.TypeQuestion, domain.DecisionData{Fn: "k", NeverAutoAnswer: true}, "n1").
		Answer("n1", "a").
		Decision("nofn", domain.TypeQuestion, domain.DecisionData{}, "n2").
		Answer("n2", "a").
		Question("noedges", "k").
		Question("fresh", "unseen", "n3").
		Answer("n3", "a").
		Input("text", domain.TypeTextInput, "k").
		Graph()
	r := autoanswer.New(g)
	p := passportOf(map[string]any{"k": []string{"a"}})

	for _, id := range []string{"never", "nofn", "noedges", "fresh", "text", "missing"} {
		t.Run(id, func(t *testing.T) {
			assert.Nil(t, r.Options(id, &domain.Breadcrumbs{}, p))
		})
	}
}

func TestOptions_Blank(t *testing.T) {
	g := testutils.NewFlow("q1", "q2", "q3", "q4").
		Question("q1", "k", "q1a", "q1blank").
		Answer("q1a", "a").
		Answer("q1blank", "").
		Question("q2", "k", "q2a", "q2blank").
		Answer("q2a", "a").
		Answer("q2blank", "").
		Question("q3", "k", "q3a", "q3b", "q3blank").
		Answer("q3a", "a").
		Answer("q3b", "b").
		Answer("q3blank", "").
		Decision("q4", domain.TypeQuestion, domain.DecisionData{Fn: "other", AlwaysAutoAnswerBlank: true}, "q4a", "q4blank").
		Answer("q4a", "x").
		Answer("q4blank", "").
		Graph()
	r := autoanswer.New(g)
	bc := answered("q1", "q1blank")
	empty := domain.NewPassport()

	t.Run("every option already seen", func(t *testing.T) {
		assert.Equal(t, []string{"q2blank"}, r.Options("q2", bc, empty))
	})

	t.Run("some option never seen", func(t *testing.T) {
		assert.Nil(t, r.Options("q3", bc, empty))
	})

	t.Run("always blank without prior visits", func(t *testing.T) {
		assert.Equal(t, []string{"q4blank"}, r.Options("q4", &domain.Breadcrumbs{}, empty))
	})

	t.Run("always blank does not override a match", func(t *testing.T) {
		p := passportOf(map[string]any{"other": []string{"x"}})
		assert.Equal(t, []string{"q4a"}, r.Options("q4", &domain.Breadcrumbs{}, p))
	})
}

func TestOptions_PlanningConstraints(t *testing.T) {
	g := testutils.NewFlow("pc").
		Checklist("pc", domain.PlanningConstraintsFn, "ca", "designated", "a4", "none").
		Answer("ca", "designated.conservationArea").
		Answer("designated", "designated").
		Answer("a4", "articleFour").
		Answer("none", "").
		Graph()
	r := autoanswer.New(g)

	t.Run("keeps every granularity", func(t *testing.T) {
		p := passportOf(map[string]any{
			domain.PlanningConstraintsFn: []string{"designated", "designated.conservationArea"},
		})
		assert.Equal(t, []string{"ca", "designated"}, r.Options("pc", &domain.Breadcrumbs{}, p))
	})

	t.Run("no prefix matching", func(t *testing.T) {
		p := passportOf(map[string]any{
			domain.PlanningConstraintsFn: []string{"articleFour.partial"},
		})
		assert.Nil(t, r.Options("pc", &domain.Breadcrumbs{}, p))
	})

	t.Run("every constraint confirmed absent routes to blank", func(t *testing.T) {
		p := passportOf(map[string]any{
			domain.NotsKey: map[string]any{domain.PlanningConstraintsFn: []any{
				"articleFour", "designated", "designated.conservationArea",
			}},
		})
		assert.Equal(t, []string{"none"}, r.Options("pc", &domain.Breadcrumbs{}, p))
	})

	t.Run("one constraint confirmed absent is not enough", func(t *testing.T) {
		p := passportOf(map[string]any{
			domain.NotsKey: map[string]any{domain.PlanningConstraintsFn: []any{"articleFour"}},
		})
		assert.Nil(t, r.Options("pc", &domain.Breadcrumbs{}, p))
	})
}

func TestOptions_PlanningConstraintsPartiallyQueried(t *testing.T) {
	g := testutils.NewFlow("lookup", "q").
		Add("lookup", domain.TypePlanningConstraints, &domain.PropertyData{Fn: domain.PlanningConstraintsFn}).
		Checklist("q", domain.PlanningConstraintsFn, "flood", "a4", "none").
		Answer("flood", "flood").
		Answer("a4", "articleFour").
		Answer("none", "").
		Graph()
	r := autoanswer.New(g)

	bc := &domain.Breadcrumbs{}
	bc.Set("lookup", domain.Breadcrumb{Data: map[string]any{
		domain.NotsKey: map[string]any{domain.PlanningConstraintsFn: []any{"articleFour"}},
	}})
	p := passportOf(map[string]any{
		domain.NotsKey: map[string]any{domain.PlanningConstraintsFn: []any{"articleFour"}},
	})

	assert.Nil(t, r.Options("q", bc, p), "flood was never queried")

	covered := passportOf(map[string]any{
		domain.NotsKey: map[string]any{domain.PlanningConstraintsFn: []any{"articleFour", "flood"}},
	})
	assert.Equal(t, []string{"none"}, r.Options("q", bc, covered))
}

func TestInput(t *testing.T) {
	g := testutils.NewFlow("t1", "t2", "t3", "n1", "c1", "c2").
		Input("t1", domain.TypeTextInput, "name").
		Input("t2", domain.TypeTextInput, "name").
		Input("t3", domain.TypeTextInput, "other").
		Input("n1", domain.TypeNumberInput, "name").
		Input("c1", domain.TypeContactInput, "applicant").
		Input("c2", domain.TypeContactInput, "applicant").
		Graph()
	r := autoanswer.New(g)

	bc := &domain.Breadcrumbs{}
	bc.Set("t1", domain.Breadcrumb{Data: map[string]any{"name": "Ada"}})
	bc.Set("c1", domain.Breadcrumb{Data: map[string]any{
		"_contact.applicant": map[string]any{"applicant": map[string]any{"email": "ada@example.com"}},
	}})

	t.Run("same type and fn", func(t *testing.T) {
		data, ok := r.Input("t2", bc)
		assert.True(t, ok)
		assert.Equal(t, map[string]any{"name": "Ada"}, data)
	})

	t.Run("different fn", func(t *testing.T) {
		_, ok := r.Input("t3", bc)
		assert.False(t, ok)
	})

	t.Run("different type", func(t *testing.T) {
		_, ok := r.Input("n1", bc)
		assert.False(t, ok)
	})

	t.Run("contact", func(t *testing.T) {
		data, ok := r.Input("c2", bc)
		assert.True(t, ok)
		assert.Equal(t, map[string]any{
			"_contact.applicant": map[string]any{"applicant": map[string]any{"email": "ada@example.com"}},
		}, data)
	})

	t.Run("ignores auto answered source", func(t *testing.T) {
		auto := &domain.Breadcrumbs{}
		auto.Set("t1", domain.Breadcrumb{Data: map[string]any{"name": "Ada"}, Auto: true})
		_, ok := r.Input("t2", auto)
		assert.False(t, ok)
	})
}

func TestInput_SkipsEarlierEmptyAnswer(t *testing.T) {
	g := testutils.NewFlow("first", "second", "third").
		Input("first", domain.TypeTextInput, "name").
		Input("second", domain.TypeTextInput, "name").
		Input("third", domain.TypeTextInput, "name").
		Graph()
	r := autoanswer.New(g)

	bc := &domain.Breadcrumbs{}
	bc.Set("first", domain.Breadcrumb{Data: map[string]any{}})
	bc.Set("second", domain.Breadcrumb{Data: map[string]any{"name": "Ada"}})

	data, ok := r.Input("third", bc)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Ada"}, data)
}

func TestFilter(t *testing.T) {
	g := testutils.NewFlow("q", "f").
		Checklist("q", "works", "pd", "pp", "plain").
		Flagged("pd", "a", []string{"flag.pp.permittedDevelopment"}).
		Flagged("pp", "b", []string{"flag.pp.permissionNeeded", "flag.lbc.consentNeeded"}).
		Answer("plain", "c").
		Add("f", domain.TypeFilter, &domain.FilterData{}, "fpd", "fpp", "fnone").
		Answer("fpd", "flag.pp.permittedDevelopment").
		Answer("fpp", "flag.pp.permissionNeeded").
		Answer("fnone", "").
		Graph()
	r := autoanswer.New(g)

	t.Run("highest priority flag wins", func(t *testing.T) {
		bc := &domain.Breadcrumbs{}
		bc.Set("q", domain.Breadcrumb{Answers: []string{"pd", "pp"}})
		id, ok := r.Filter("f", bc)
		assert.True(t, ok)
		assert.Equal(t, "fpp", id)
	})

	t.Run("no flag falls back to blank", func(t *testing.T) {
		bc := answered("q", "plain")
		id, ok := r.Filter("f", bc)
		assert.True(t, ok)
		assert.Equal(t, "fnone", id)
	})

	t.Run("collected flags are ranked per category", func(t *testing.T) {
		bc := &domain.Breadcrumbs{}
		bc.Set("q", domain.Breadcrumb{Answers: []string{"pd", "pp"}})
		assert.Equal(t,
			[]string{"flag.pp.permissionNeeded", "flag.pp.permittedDevelopment"},
			r.CollectedFlags(bc, "Planning permission"))
		assert.Equal(t, []string{"flag.lbc.consentNeeded"}, r.CollectedFlags(bc, "Listed building consent"))
	})
}

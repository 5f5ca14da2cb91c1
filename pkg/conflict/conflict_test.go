// Test Type: Unit Test
// Description: Tests for the conflict package - collision planning under ask/overwrite/skip/rename policies

package conflict_test

import (
	"testing"

	"github.com/confshare/confshare/pkg/conflict"
	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingNames() map[types.Category][]string {
	return map[types.Category][]string{
		types.CategoryCommands: {"cmd", "cmd_1"},
		types.CategoryAgents:   {"code-reviewer"},
	}
}

func TestPlanNoCollisionBypassesPolicy(t *testing.T) {
	r := conflict.NewResolver(existingNames())

	plan, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryCommands, Name: "fresh"},
	}, conflict.PolicyAsk, nil)
	require.NoError(t, err)

	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, conflict.ActionWrite, plan.Decisions[0].Action)
	assert.Equal(t, "fresh", plan.Decisions[0].FinalName)
	assert.Empty(t, plan.Pending)
}

func TestPlanOverwrite(t *testing.T) {
	r := conflict.NewResolver(existingNames())

	plan, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryAgents, Name: "code-reviewer"},
	}, conflict.PolicyOverwrite, nil)
	require.NoError(t, err)

	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, conflict.ActionReplace, plan.Decisions[0].Action)
	assert.Equal(t, "code-reviewer", plan.Decisions[0].FinalName)
}

func TestPlanSkip(t *testing.T) {
	r := conflict.NewResolver(existingNames())

	plan, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryAgents, Name: "code-reviewer"},
	}, conflict.PolicySkip, nil)
	require.NoError(t, err)

	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, conflict.ActionKeep, plan.Decisions[0].Action)
}

func TestPlanRenameAvoidsCollisions(t *testing.T) {
	r := conflict.NewResolver(existingNames())

	plan, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryCommands, Name: "cmd"},
	}, conflict.PolicyRename, nil)
	require.NoError(t, err)

	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, conflict.ActionRename, plan.Decisions[0].Action)
	// cmd and cmd_1 exist, so the smallest free alias is cmd_2.
	assert.Equal(t, "cmd_2", plan.Decisions[0].FinalName)
}

func TestPlanRenameReservesAliasesWithinRun(t *testing.T) {
	r := conflict.NewResolver(existingNames())

	plan, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryCommands, Name: "cmd"},
		{Category: types.CategoryCommands, Name: "cmd"},
	}, conflict.PolicyRename, nil)
	require.NoError(t, err)

	require.Len(t, plan.Decisions, 2)
	assert.Equal(t, "cmd_2", plan.Decisions[0].FinalName)
	// The second rename must not reuse the alias claimed by the first.
	assert.Equal(t, "cmd_3", plan.Decisions[1].FinalName)
}

func TestPlanAskWithoutResolutionIsPending(t *testing.T) {
	r := conflict.NewResolver(existingNames())

	plan, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryAgents, Name: "code-reviewer"},
		{Category: types.CategoryCommands, Name: "fresh"},
	}, conflict.PolicyAsk, nil)
	require.NoError(t, err)

	// The unresolved conflict halts only that artifact, not the run.
	require.Len(t, plan.Pending, 1)
	assert.Equal(t, "code-reviewer", plan.Pending[0].Name)
	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, "fresh", plan.Decisions[0].Name)
}

func TestPlanAskWithSuppliedResolutions(t *testing.T) {
	r := conflict.NewResolver(existingNames())

	resolutions := map[string]conflict.Policy{
		conflict.Key(types.CategoryAgents, "code-reviewer"): conflict.PolicyOverwrite,
		conflict.Key(types.CategoryCommands, "cmd"):         conflict.PolicyRename,
	}

	plan, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryAgents, Name: "code-reviewer"},
		{Category: types.CategoryCommands, Name: "cmd"},
	}, conflict.PolicyAsk, resolutions)
	require.NoError(t, err)

	require.Len(t, plan.Decisions, 2)
	assert.Empty(t, plan.Pending)
	assert.Equal(t, conflict.ActionReplace, plan.Decisions[0].Action)
	assert.Equal(t, conflict.ActionRename, plan.Decisions[1].Action)
	assert.Equal(t, "cmd_2", plan.Decisions[1].FinalName)
}

func TestPlanAskResolutionCannotBeAsk(t *testing.T) {
	r := conflict.NewResolver(existingNames())

	_, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryAgents, Name: "code-reviewer"},
	}, conflict.PolicyAsk, map[string]conflict.Policy{
		conflict.Key(types.CategoryAgents, "code-reviewer"): conflict.PolicyAsk,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestPlanAskRenameCannotCollideWithEarlierRename(t *testing.T) {
	r := conflict.NewResolver(map[types.Category][]string{
		types.CategoryCommands: {"cmd"},
	})

	// First a rename-policy plan claims cmd_1, then a later ask-resolved
	// rename for the same base name must pick cmd_2.
	first, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryCommands, Name: "cmd"},
	}, conflict.PolicyRename, nil)
	require.NoError(t, err)
	assert.Equal(t, "cmd_1", first.Decisions[0].FinalName)

	second, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryCommands, Name: "cmd"},
	}, conflict.PolicyAsk, map[string]conflict.Policy{
		conflict.Key(types.CategoryCommands, "cmd"): conflict.PolicyRename,
	})
	require.NoError(t, err)
	assert.Equal(t, "cmd_2", second.Decisions[0].FinalName)
}

func TestPlanCategoriesAreIndependentNamespaces(t *testing.T) {
	r := conflict.NewResolver(map[types.Category][]string{
		types.CategoryCommands: {"review"},
	})

	plan, err := r.Plan([]conflict.Incoming{
		{Category: types.CategoryAgents, Name: "review"},
	}, conflict.PolicySkip, nil)
	require.NoError(t, err)

	// Same name in a different category is not a collision.
	assert.Equal(t, conflict.ActionWrite, plan.Decisions[0].Action)
}

func TestPlanInvalidPolicy(t *testing.T) {
	r := conflict.NewResolver(nil)
	_, err := r.Plan(nil, conflict.Policy("merge"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected conflict.Policy
		wantErr  bool
	}{
		{name: "ask", input: "ask", expected: conflict.PolicyAsk},
		{name: "overwrite", input: "overwrite", expected: conflict.PolicyOverwrite},
		{name: "skip", input: "skip", expected: conflict.PolicySkip},
		{name: "rename", input: "rename", expected: conflict.PolicyRename},
		{name: "empty_defaults_to_ask", input: "", expected: conflict.PolicyAsk},
		{name: "unknown", input: "force", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := conflict.ParsePolicy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, policy)
		})
	}
}

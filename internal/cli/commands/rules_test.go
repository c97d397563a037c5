package commands

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/odmval/internal/cli/output"
	"github.com/leapstack-labs/odmval/internal/cli/testutil"
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/rules"
)

func TestRenderRules_Markdown(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeMarkdown, false)

	require.NoError(t, renderRules(tr.Renderer, rules.All(), false))

	out := tr.Output()
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "# Validation Rules (8)")
	for _, d := range rules.All() {
		assert.Contains(t, out, d.Name())
	}
	assert.NotContains(t, out, "Template")
}

func TestRenderRules_VerboseText(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeText, false)
	def, ok := rules.Get(core.RuleLessThanMinValue)
	require.True(t, ok)

	require.NoError(t, renderRules(tr.Renderer, []rules.RuleDef{def}, true))

	out := tr.Output()
	assert.Contains(t, out, "less_than_min_value")
	assert.Contains(t, out, "min_value")
	assert.Contains(t, out, "{constraint}")
}

func TestRenderRules_JSON(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeJSON, false)

	require.NoError(t, renderRules(tr.Renderer, rules.All(), false))

	var infos []core.RuleInfo
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &infos))
	require.Len(t, infos, len(rules.All()))
	assert.Equal(t, "missing_mandatory_column", infos[0].ID)
}

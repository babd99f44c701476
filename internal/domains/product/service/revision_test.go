package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"productflow-backend/internal/domains/product/model"
)

func TestRepairSuggestionText(t *testing.T) {
	out, ok := repairSuggestion("old text", "  new text  ")
	require.True(t, ok)
	require.Equal(t, "new text", out)

	_, ok = repairSuggestion("old text", "   ")
	require.False(t, ok)

	_, ok = repairSuggestion("old text", nil)
	require.False(t, ok)
}

func TestRepairSuggestionListSameGranularity(t *testing.T) {
	original := []string{"Compact", "Quiet"}

	out, ok := repairSuggestion(original, []interface{}{"Very compact", "Very quiet"})
	require.True(t, ok)
	require.Equal(t, []string{"Very compact", "Very quiet"}, out)

	// Wrong cardinality is rejected.
	_, ok = repairSuggestion(original, []interface{}{"Only one point"})
	require.False(t, ok)
}

func TestRepairSuggestionSplitsJoinedListBack(t *testing.T) {
	original := []string{"Compact", "Quiet"}

	out, ok := repairSuggestion(original, "- Very compact\n- Very quiet\n")
	require.True(t, ok)
	require.Equal(t, []string{"Very compact", "Very quiet"}, out)
}

func TestRepairSuggestionListFromJSONRoundTrip(t *testing.T) {
	// After a JSON round trip the original arrives as []interface{}.
	original := []interface{}{"Compact", "Quiet"}

	out, ok := repairSuggestion(original, []string{"A", "B"})
	require.True(t, ok)
	require.Equal(t, []string{"A", "B"}, out)
}

func TestRepairSuggestionMapRequiresMap(t *testing.T) {
	original := map[string]interface{}{"brand": "Thermo"}

	out, ok := repairSuggestion(original, map[string]interface{}{"brand": "Thermo GmbH"})
	require.True(t, ok)
	require.Equal(t, map[string]interface{}{"brand": "Thermo GmbH"}, out)

	_, ok = repairSuggestion(original, "not a map")
	require.False(t, ok)
}

func TestFallbackSuggestionCopies(t *testing.T) {
	list := []string{"a", "b"}
	out := fallbackSuggestion(list).([]string)
	out[0] = "mutated"
	require.Equal(t, "a", list[0])

	m := map[string]interface{}{"k": "v"}
	outMap := fallbackSuggestion(m).(map[string]interface{})
	outMap["k"] = "mutated"
	require.Equal(t, "v", m["k"])
}

func TestSuggestionListStripsBulletPrefixes(t *testing.T) {
	items, ok := suggestionList(" - First point \n\n- Second point")
	require.True(t, ok)
	require.Equal(t, []string{"First point", "Second point"}, items)

	_, ok = suggestionList(42)
	require.False(t, ok)
}

func TestSnapshotSectionShapes(t *testing.T) {
	p := productWithBothDocs()

	overview := snapshotSection(p, model.TargetInformational, model.SectionOverview)
	require.Equal(t, "A compact combi boiler.", overview)

	features := snapshotSection(p, model.TargetInformational, model.SectionFeatures)
	require.Equal(t, []string{"Compact", "Quiet"}, features)

	specs := snapshotSection(p, model.TargetInformational, model.SectionTechSpecs)
	require.Equal(t, map[string]interface{}{"Output": "24 kW"}, specs)

	// Specsheet cycle snapshots read the specsheet-side keys.
	specOverview := snapshotSection(p, model.TargetSpecsheet, model.SectionOverview)
	require.Equal(t, p.SpecsheetDoc.GetString(model.DocKeyCustomerDescription), specOverview)
}

func TestSnapshotSectionCopyIsIndependent(t *testing.T) {
	p := productWithBothDocs()

	header := snapshotSection(p, model.TargetInformational, model.SectionHeaderInfo).(map[string]interface{})
	header[model.HeaderKeyBrand] = "mutated"
	require.Equal(t, "Thermo", p.InformationalDoc.HeaderString(model.HeaderKeyBrand))
}

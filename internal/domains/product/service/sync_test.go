package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"productflow-backend/internal/domains/product/model"
)

func productWithBothDocs() *model.Product {
	p := model.NewProduct("Thermo X200", model.DocumentTree{
		model.DocKeyHeaderInfo: map[string]interface{}{
			model.HeaderKeyProductName: "Thermo X200",
			model.HeaderKeyBrand:       "Thermo",
		},
		model.DocKeyRangeOverview:  "A compact combi boiler.",
		model.DocKeySalesArguments: []interface{}{"Compact", "Quiet"},
		model.DocKeyTechnicalSpecs: []interface{}{
			map[string]interface{}{"name": "Output", "value": "24 kW"},
		},
	})
	p.SpecsheetDoc = deriveSpecsheet(p.InformationalDoc)
	return p
}

func TestApplyEditSetSharedTextSyncsBothDocuments(t *testing.T) {
	p := productWithBothDocs()

	err := applyEditSet(p, model.TargetInformational, model.EditSet{
		model.SectionOverview: "A quieter, smaller combi boiler.",
	})
	require.NoError(t, err)

	require.Equal(t, "A quieter, smaller combi boiler.", p.InformationalDoc.GetString(model.DocKeyRangeOverview))
	require.Equal(t, "A quieter, smaller combi boiler.", p.SpecsheetDoc.GetString(model.DocKeyCustomerDescription))
}

func TestApplyEditSetSharedTextFromSpecsheetSide(t *testing.T) {
	p := productWithBothDocs()

	err := applyEditSet(p, model.TargetSpecsheet, model.EditSet{
		model.SectionOverview: "Customer friendly wording.",
	})
	require.NoError(t, err)

	// Editing through the specsheet updates the informational side too.
	require.Equal(t, "Customer friendly wording.", p.InformationalDoc.GetString(model.DocKeyRangeOverview))
	require.Equal(t, "Customer friendly wording.", p.SpecsheetDoc.GetString(model.DocKeyCustomerDescription))
}

func TestApplyEditSetEmptyValueNeverErases(t *testing.T) {
	p := productWithBothDocs()

	err := applyEditSet(p, model.TargetInformational, model.EditSet{
		model.SectionOverview: "   ",
		model.SectionFeatures: []interface{}{},
		model.SectionHeaderInfo: map[string]interface{}{
			model.HeaderKeyBrand: "",
		},
	})
	require.NoError(t, err)

	require.Equal(t, "A compact combi boiler.", p.InformationalDoc.GetString(model.DocKeyRangeOverview))
	require.Equal(t, []string{"Compact", "Quiet"}, p.InformationalDoc.GetStringSlice(model.DocKeySalesArguments))
	require.Equal(t, "Thermo", p.InformationalDoc.HeaderString(model.HeaderKeyBrand))
}

func TestApplyEditSetIsIdempotent(t *testing.T) {
	p := productWithBothDocs()
	edits := model.EditSet{
		model.SectionOverview: "New overview.",
		model.SectionFeatures: []interface{}{"One", "Two"},
		model.SectionHeaderInfo: map[string]interface{}{
			model.HeaderKeyModelNumber: "X200-B",
		},
		model.SectionTechSpecs: []interface{}{
			map[string]interface{}{"name": "Output", "value": "28 kW"},
		},
	}

	require.NoError(t, applyEditSet(p, model.TargetInformational, edits))
	first := p.Clone()
	require.NoError(t, applyEditSet(p, model.TargetInformational, edits))

	require.Equal(t, first.InformationalDoc, p.InformationalDoc)
	require.Equal(t, first.SpecsheetDoc, p.SpecsheetDoc)
}

func TestApplyEditSetMapMergeKeepsUntouchedKeys(t *testing.T) {
	p := productWithBothDocs()

	err := applyEditSet(p, model.TargetInformational, model.EditSet{
		model.SectionHeaderInfo: map[string]interface{}{
			model.HeaderKeyModelNumber: "X200-B",
		},
	})
	require.NoError(t, err)

	header := p.InformationalDoc.GetMap(model.DocKeyHeaderInfo)
	require.Equal(t, "X200-B", header[model.HeaderKeyModelNumber])
	require.Equal(t, "Thermo", header[model.HeaderKeyBrand])

	// The merged block is identical in the specsheet.
	require.Equal(t, header, p.SpecsheetDoc.GetMap(model.DocKeyHeaderInfo))
}

func TestApplyEditSetTechSpecsMergeLastWriteWins(t *testing.T) {
	p := productWithBothDocs()

	err := applyEditSet(p, model.TargetInformational, model.EditSet{
		model.SectionTechSpecs: []interface{}{
			map[string]interface{}{"name": "Output", "value": "28 kW"},
			map[string]interface{}{"name": "Weight", "value": "31 kg"},
		},
	})
	require.NoError(t, err)

	table, ok := model.SpecTableFromAny(p.InformationalDoc[model.DocKeyTechnicalSpecs])
	require.True(t, ok)
	require.Equal(t, model.SpecTable{
		{Name: "Output", Value: "28 kW"},
		{Name: "Weight", Value: "31 kg"},
	}, table)

	specTable, ok := model.SpecTableFromAny(p.SpecsheetDoc[model.DocKeyTechnicalSpecs])
	require.True(t, ok)
	require.Equal(t, table, specTable)
}

func TestApplyEditSetUnknownFieldRejected(t *testing.T) {
	p := productWithBothDocs()

	err := applyEditSet(p, model.TargetInformational, model.EditSet{
		"surprise_field": "value",
	})
	require.ErrorIs(t, err, model.ErrMalformedField)
}

func TestApplyEditSetSpecOnlyFieldRequiresSpecsheet(t *testing.T) {
	p := model.NewProduct("Thermo X200", model.DocumentTree{})

	err := applyEditSet(p, model.TargetSpecsheet, model.EditSet{
		model.SectionSEO: map[string]interface{}{"meta_title": "Thermo X200"},
	})
	require.ErrorIs(t, err, model.ErrSpecsheetNotInitialized)
}

func TestApplyEditSetMalformedTypeRejected(t *testing.T) {
	p := productWithBothDocs()

	err := applyEditSet(p, model.TargetInformational, model.EditSet{
		model.SectionFeatures: "not a list",
	})
	require.ErrorIs(t, err, model.ErrMalformedField)

	err = applyEditSet(p, model.TargetInformational, model.EditSet{
		model.SectionOverview: []interface{}{"not", "text"},
	})
	require.ErrorIs(t, err, model.ErrMalformedField)
}

func TestApplyEditSetDisplayName(t *testing.T) {
	p := productWithBothDocs()

	require.NoError(t, applyEditSet(p, model.TargetInformational, model.EditSet{
		"display_name": "Thermo X200 Mk II",
	}))
	require.Equal(t, "Thermo X200 Mk II", p.DisplayName)

	// Blank display name is ignored, not applied.
	require.NoError(t, applyEditSet(p, model.TargetInformational, model.EditSet{
		"display_name": "  ",
	}))
	require.Equal(t, "Thermo X200 Mk II", p.DisplayName)
}

func TestDeriveSpecsheetSeedsFromSEOData(t *testing.T) {
	info := model.DocumentTree{
		model.DocKeyHeaderInfo: map[string]interface{}{
			model.HeaderKeyProductName: "Thermo X200",
		},
		model.DocKeyRangeOverview:  "Internal overview.",
		model.DocKeySalesArguments: []interface{}{"Compact"},
		model.DocKeySEOData: map[string]interface{}{
			"seo_long_description": "Public facing description.",
			"meta_title":           "Thermo X200 Boiler",
			"generated_keywords":   "boiler, compact",
		},
	}

	spec := deriveSpecsheet(info)

	require.Equal(t, "Public facing description.", spec.GetString(model.DocKeyCustomerDescription))
	require.Equal(t, "boiler, compact", spec.GetString(model.DocKeyInternalKeywords))
	require.Equal(t, "Thermo X200 Boiler", spec.GetMap(model.DocKeySEO)["meta_title"])
	require.Equal(t, []string{"Compact"}, spec.GetStringSlice(model.DocKeyKeyFeatures))
	require.Equal(t, "Thermo X200", spec.HeaderString(model.HeaderKeyProductName))
}

func TestDeriveSpecsheetFallsBackToOverview(t *testing.T) {
	info := model.DocumentTree{
		model.DocKeyRangeOverview: "Internal overview.",
	}
	spec := deriveSpecsheet(info)
	require.Equal(t, "Internal overview.", spec.GetString(model.DocKeyCustomerDescription))
}

package generator

import (
	"context"
	"fmt"
	"strings"

	"productflow-backend/internal/domains/product/model"
)

// =====================================================
// MOCK GENERATOR FOR TESTING / LOCAL DEV
// =====================================================

// MockGenerator produces deterministic suggestions without any network call.
type MockGenerator struct {
	ShouldFail bool
	// FixedRevision, when set, is returned verbatim from
	// GenerateSectionRevision regardless of the input shape.
	FixedRevision interface{}
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) GenerateSectionRevision(_ context.Context, sectionName string, originalContent interface{}, comment string) (interface{}, error) {
	if m.ShouldFail {
		return nil, fmt.Errorf("mock generator failure")
	}
	if m.FixedRevision != nil {
		return m.FixedRevision, nil
	}

	suffix := " (revised: " + strings.TrimSpace(comment) + ")"
	switch v := originalContent.(type) {
	case string:
		return v + suffix, nil
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = item + suffix
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = fmt.Sprintf("%v%s", item, suffix)
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = fmt.Sprintf("%v%s", val, suffix)
		}
		return out, nil
	default:
		return fmt.Sprintf("%s suggestion for %v", sectionName, originalContent), nil
	}
}

func (m *MockGenerator) GenerateDerivedDocument(_ context.Context, source model.DocumentTree) (model.DocumentTree, error) {
	if m.ShouldFail {
		return nil, fmt.Errorf("mock generator failure")
	}

	doc := model.DocumentTree{
		model.DocKeyCustomerDescription: "Generated description for " + source.HeaderString(model.HeaderKeyProductName),
	}
	if features := source.GetStringSlice(model.DocKeySalesArguments); len(features) > 0 {
		out := make([]interface{}, len(features))
		for i, f := range features {
			out[i] = "Feature: " + f
		}
		doc[model.DocKeyKeyFeatures] = out
	}
	return doc, nil
}

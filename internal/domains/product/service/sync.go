package service

import (
	"strings"

	"github.com/spf13/cast"

	"productflow-backend/internal/domains/product/model"
)

// =====================================================
// SYNCHRONIZATION ENGINE
// =====================================================
//
// Shared logical fields are declared once in fieldRules and kept
// byte-for-byte identical across the informational and specsheet documents
// by applyEditSet. Non-shared fields have exactly one owning document.

type fieldKind int

const (
	kindText fieldKind = iota
	kindList
	kindMap
	kindTable
)

type syncRule struct {
	section string
	infoKey string // key in the informational document ("" = not present there)
	specKey string // key in the specsheet document ("" = not present there)
	kind    fieldKind
	shared  bool
}

var fieldRules = []syncRule{
	// Shared fields: written to both documents whenever both exist
	{model.SectionHeaderInfo, model.DocKeyHeaderInfo, model.DocKeyHeaderInfo, kindMap, true},
	{model.SectionOverview, model.DocKeyRangeOverview, model.DocKeyCustomerDescription, kindText, true},
	{model.SectionFeatures, model.DocKeySalesArguments, model.DocKeyKeyFeatures, kindList, true},
	{model.SectionTechSpecs, model.DocKeyTechnicalSpecs, model.DocKeyTechnicalSpecs, kindTable, true},

	// Informational-only
	{model.SectionWarranty, model.DocKeyWarranty, "", kindMap, false},

	// Specsheet-only
	{model.SectionSEO, "", model.DocKeySEO, kindMap, false},
	{model.SectionClassification, "", model.DocKeyCategories, kindMap, false},
	{model.SectionInternalKeywords, "", model.DocKeyInternalKeywords, kindText, false},
}

func ruleForSection(section string) (syncRule, bool) {
	for _, r := range fieldRules {
		if r.section == section {
			return r, true
		}
	}
	return syncRule{}, false
}

// applyEditSet writes a partial field map into the aggregate's documents.
// Shared fields are resolved once against the target document and the same
// result is written to both trees, so they cannot diverge. Empty or absent
// values never overwrite existing content. The function is idempotent.
func applyEditSet(p *model.Product, target model.DocumentTarget, edits model.EditSet) error {
	if len(edits) == 0 {
		return nil
	}

	for section, raw := range edits {
		if section == "display_name" {
			if name := strings.TrimSpace(cast.ToString(raw)); name != "" {
				p.DisplayName = name
			}
			continue
		}

		rule, ok := ruleForSection(section)
		if !ok {
			return model.NewProductError(model.ErrCodeValidation,
				"unknown field in edit set: "+section, model.ErrMalformedField)
		}

		if rule.shared {
			if err := applyShared(p, target, rule, raw); err != nil {
				return err
			}
			continue
		}
		if err := applyOwned(p, rule, raw); err != nil {
			return err
		}
	}
	return nil
}

// applyShared merges the edit against the target document's current value
// and writes the identical result into both documents.
func applyShared(p *model.Product, target model.DocumentTarget, rule syncRule, raw interface{}) error {
	base := p.Document(target)
	if base == nil {
		base = p.InformationalDoc
	}
	baseKey := rule.infoKey
	if target == model.TargetSpecsheet && p.SpecsheetDoc != nil {
		baseKey = rule.specKey
	}

	value, empty, err := resolveValue(rule, base[baseKey], raw)
	if err != nil {
		return err
	}
	if empty {
		return nil
	}

	p.InformationalDoc[rule.infoKey] = value
	if p.SpecsheetDoc != nil {
		p.SpecsheetDoc[rule.specKey] = cloneForDoc(value)
	}
	return nil
}

// applyOwned writes a non-shared field into its single owning document.
func applyOwned(p *model.Product, rule syncRule, raw interface{}) error {
	var doc model.DocumentTree
	var key string
	if rule.infoKey != "" {
		doc, key = p.InformationalDoc, rule.infoKey
	} else {
		doc, key = p.SpecsheetDoc, rule.specKey
	}
	if doc == nil {
		return model.NewProductError(model.ErrCodeValidation,
			"cannot edit "+rule.section+" before the specsheet exists", model.ErrSpecsheetNotInitialized)
	}

	value, empty, err := resolveValue(rule, doc[key], raw)
	if err != nil {
		return err
	}
	if empty {
		return nil
	}
	doc[key] = value
	return nil
}

// resolveValue normalizes a submitted value by field kind and merges it
// with the current stored value. empty=true means the edit carries nothing
// and must be skipped (never erased into the document).
func resolveValue(rule syncRule, current, raw interface{}) (value interface{}, empty bool, err error) {
	switch rule.kind {
	case kindText:
		text, ok := asText(raw)
		if !ok {
			return nil, false, malformed(rule.section, "expected text")
		}
		if text == "" {
			return nil, true, nil
		}
		return text, false, nil

	case kindList:
		list, ok := asList(raw)
		if !ok {
			return nil, false, malformed(rule.section, "expected a list of strings")
		}
		if len(list) == 0 {
			return nil, true, nil
		}
		return toAnyList(list), false, nil

	case kindMap:
		updates, ok := asMap(raw)
		if !ok {
			return nil, false, malformed(rule.section, "expected a key/value map")
		}
		merged, changed := mergeMap(cast.ToStringMap(current), updates)
		if !changed {
			return nil, true, nil
		}
		return merged, false, nil

	case kindTable:
		updates, ok := model.SpecTableFromAny(raw)
		if !ok {
			return nil, false, malformed(rule.section, "expected specification rows")
		}
		if len(updates) == 0 {
			return nil, true, nil
		}
		base, _ := model.SpecTableFromAny(current)
		return base.Merge(updates).ToAny(), false, nil
	}
	return nil, false, malformed(rule.section, "unsupported field kind")
}

func malformed(section, detail string) error {
	return model.NewProductError(model.ErrCodeValidation,
		"malformed value for "+section+": "+detail, model.ErrMalformedField)
}

func asText(raw interface{}) (string, bool) {
	switch raw.(type) {
	case string, nil:
		return strings.TrimSpace(cast.ToString(raw)), true
	}
	return "", false
}

// asList accepts []string or []interface{} of strings and drops blanks.
func asList(raw interface{}) ([]string, bool) {
	var items []string
	switch v := raw.(type) {
	case nil:
		return nil, true
	case []string:
		items = v
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			items = append(items, s)
		}
	default:
		return nil, false
	}

	clean := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			clean = append(clean, trimmed)
		}
	}
	return clean, true
}

func asMap(raw interface{}) (map[string]interface{}, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true
	case map[string]interface{}:
		return v, true
	case model.DocumentTree:
		return v, true
	case map[string]string:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, true
	}
	return nil, false
}

// mergeMap merges update keys over the base map, skipping empty update
// values so a partially filled form cannot erase stored content.
func mergeMap(base, updates map[string]interface{}) (map[string]interface{}, bool) {
	merged := make(map[string]interface{}, len(base)+len(updates))
	for k, v := range base {
		merged[k] = v
	}
	changed := false
	for k, v := range updates {
		if strings.TrimSpace(cast.ToString(v)) == "" {
			continue
		}
		merged[k] = v
		changed = true
	}
	return merged, changed
}

func toAnyList(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// cloneForDoc copies a resolved value so the two documents never share a
// mutable reference.
func cloneForDoc(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		copy(out, v)
		return out
	}
	return value
}

// =====================================================
// SPECSHEET DERIVATION (deterministic fallback)
// =====================================================

// deriveSpecsheet builds the initial specsheet document from an approved
// informational document without calling the generator. Shared fields are
// copied verbatim; the customer description and SEO block seed from the
// marketing SEO data when present.
func deriveSpecsheet(info model.DocumentTree) model.DocumentTree {
	seoData := info.GetMap(model.DocKeySEOData)

	description := cast.ToString(seoData["seo_long_description"])
	if description == "" {
		description = info.GetString(model.DocKeyRangeOverview)
	}

	spec := model.DocumentTree{
		model.DocKeyCustomerDescription: description,
		model.DocKeyInternalKeywords:    cast.ToString(seoData["generated_keywords"]),
		model.DocKeySEO: map[string]interface{}{
			"meta_title":       cast.ToString(seoData["meta_title"]),
			"meta_description": cast.ToString(seoData["meta_description"]),
			"keywords":         cast.ToString(seoData["generated_keywords"]),
		},
	}

	if header := info.GetMap(model.DocKeyHeaderInfo); header != nil {
		spec[model.DocKeyHeaderInfo] = cloneForDoc(header)
	}
	if features := info.GetStringSlice(model.DocKeySalesArguments); len(features) > 0 {
		spec[model.DocKeyKeyFeatures] = toAnyList(features)
	}
	if table, ok := model.SpecTableFromAny(info[model.DocKeyTechnicalSpecs]); ok && len(table) > 0 {
		spec[model.DocKeyTechnicalSpecs] = table.ToAny()
	}
	return spec
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	"productflow-backend/internal/domains/product/model"
)

// =====================================================
// REVISION TRACKER
// =====================================================

// buildRevisionSet creates one revision record per non-empty section
// comment. Sections without comments are left untouched. Creation is
// all-or-nothing: the caller only installs the returned set together with
// the stage transition.
func (s *productService) buildRevisionSet(ctx context.Context, p *model.Product, target model.DocumentTarget, comments map[string]string) (model.RevisionSet, error) {
	for section := range comments {
		if !model.IsReviewableSection(target, section) {
			return nil, model.NewProductError(model.ErrCodeValidation,
				"section "+section+" is not reviewable in this cycle", model.ErrMalformedField)
		}
	}

	set := model.RevisionSet{}
	for _, section := range model.ReviewableSections(target) {
		comment := strings.TrimSpace(comments[section])
		if comment == "" {
			continue
		}

		original := snapshotSection(p, target, section)
		set[section] = &model.RevisionRecord{
			SectionName:      section,
			Comment:          comment,
			OriginalContent:  original,
			SuggestedContent: s.generateSuggestion(ctx, section, original, comment),
			Status:           model.RevisionStatusPending,
			CreatedAt:        time.Now(),
		}
	}
	return set, nil
}

// snapshotSection copies a section's current value in its native shape:
// string, list of strings, or key/value map.
func snapshotSection(p *model.Product, target model.DocumentTarget, section string) interface{} {
	doc := p.Document(target)
	if doc == nil {
		doc = p.InformationalDoc
	}

	switch section {
	case model.SectionHeaderInfo:
		return copyStringMap(doc.GetMap(model.DocKeyHeaderInfo))
	case model.SectionOverview:
		if target == model.TargetSpecsheet {
			return doc.GetString(model.DocKeyCustomerDescription)
		}
		return doc.GetString(model.DocKeyRangeOverview)
	case model.SectionFeatures:
		key := model.DocKeySalesArguments
		if target == model.TargetSpecsheet {
			key = model.DocKeyKeyFeatures
		}
		return append([]string(nil), doc.GetStringSlice(key)...)
	case model.SectionTechSpecs:
		table, _ := model.SpecTableFromAny(doc[model.DocKeyTechnicalSpecs])
		out := map[string]interface{}{}
		for _, row := range table {
			out[row.Name] = row.Value
		}
		return out
	case model.SectionWarranty:
		return copyStringMap(p.InformationalDoc.GetMap(model.DocKeyWarranty))
	case model.SectionSEO:
		return copyStringMap(doc.GetMap(model.DocKeySEO))
	case model.SectionClassification:
		return copyStringMap(doc.GetMap(model.DocKeyCategories))
	case model.SectionInternalKeywords:
		return doc.GetString(model.DocKeyInternalKeywords)
	}
	return nil
}

func copyStringMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// generateSuggestion asks the content generator for a rewrite, bounded by
// the collaborator timeout. On failure or a contract violation the
// suggestion degrades to a copy of the original; the review transition
// itself never fails on the generator.
func (s *productService) generateSuggestion(ctx context.Context, section string, original interface{}, comment string) interface{} {
	genCtx, cancel := context.WithTimeout(ctx, s.collaboratorTimeout)
	defer cancel()

	suggestion, err := s.generator.GenerateSectionRevision(genCtx, section, original, comment)
	if err != nil {
		log.Warn().Err(err).Str("section", section).Msg("Generator unavailable, falling back to original content")
		return fallbackSuggestion(original)
	}

	repaired, ok := repairSuggestion(original, suggestion)
	if !ok {
		log.Warn().Str("section", section).Msg("Generator output violated type contract, falling back to original content")
		return fallbackSuggestion(original)
	}
	return repaired
}

// fallbackSuggestion is the deterministic fallback: a copy of the original.
func fallbackSuggestion(original interface{}) interface{} {
	switch v := original.(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		return append([]interface{}(nil), v...)
	case map[string]interface{}:
		return copyStringMap(v)
	}
	return original
}

// repairSuggestion enforces the generator type contract. List input must
// come back as a list of non-empty strings of the same granularity; a
// newline-joined string is split back apart; anything else is rejected.
// Map input must come back as a map; everything else is treated as text.
// Originals may arrive as []interface{} after a JSON round trip.
func repairSuggestion(original, suggestion interface{}) (interface{}, bool) {
	if origList, isList := asList(original); isList && original != nil {
		items, ok := suggestionList(suggestion)
		if !ok || len(items) == 0 {
			return nil, false
		}
		if len(origList) > 0 && len(items) != len(origList) {
			return nil, false
		}
		return items, true
	}

	switch original.(type) {
	case map[string]interface{}, model.DocumentTree:
		m, ok := asMap(suggestion)
		if !ok || m == nil {
			return nil, false
		}
		return m, true
	}

	text := strings.TrimSpace(cast.ToString(suggestion))
	if text == "" {
		return nil, false
	}
	return text, true
}

func suggestionList(suggestion interface{}) ([]string, bool) {
	switch v := suggestion.(type) {
	case []string, []interface{}:
		return asList(v)
	case string:
		// Concatenated points come back as one string; split per line.
		var items []string
		for _, line := range strings.Split(v, "\n") {
			if trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-")); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return items, len(items) > 0
	}
	return nil, false
}

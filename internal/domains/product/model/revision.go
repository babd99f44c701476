package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// =====================================================
// REVISION TRACKING
// =====================================================

// RevisionStatus tracks the lifecycle of a revision record. Records are
// advisory: they stay pending until the set is cleared on approval or
// replaced by the next review cycle.
type RevisionStatus string

const (
	RevisionStatusPending RevisionStatus = "pending"
)

// Reviewable section names. Sections are logical: each one maps onto a
// concrete key of the informational or specsheet document.
const (
	SectionHeaderInfo       = "header_info"
	SectionOverview         = "overview"
	SectionFeatures         = "features"
	SectionTechSpecs        = "tech_specs"
	SectionWarranty         = "warranty"
	SectionSEO              = "seo"
	SectionClassification   = "classification"
	SectionInternalKeywords = "internal_keywords"
)

// ReviewableSections returns the closed set of sections the director may
// comment on for a given review cycle. The specsheet cycle covers the
// shared sections plus the specsheet-only ones; warranty terms live in the
// informational document only.
func ReviewableSections(target DocumentTarget) []string {
	if target == TargetSpecsheet {
		return []string{
			SectionHeaderInfo, SectionOverview, SectionFeatures,
			SectionTechSpecs, SectionSEO, SectionClassification,
			SectionInternalKeywords,
		}
	}
	return []string{
		SectionHeaderInfo, SectionOverview, SectionFeatures,
		SectionTechSpecs, SectionWarranty,
	}
}

// IsReviewableSection reports whether a section belongs to the given cycle.
func IsReviewableSection(target DocumentTarget, section string) bool {
	for _, s := range ReviewableSections(target) {
		if s == section {
			return true
		}
	}
	return false
}

// RevisionRecord is one pending change request against a section.
// OriginalContent is a snapshot taken at comment time; its type varies per
// section (string, list of strings, or key/value map) and SuggestedContent
// always matches it.
type RevisionRecord struct {
	SectionName      string         `json:"section_name"`
	Comment          string         `json:"comment"`
	OriginalContent  interface{}    `json:"original_content"`
	SuggestedContent interface{}    `json:"suggested_content"`
	Status           RevisionStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
}

// RevisionSet maps section name to its pending record. A product carries a
// non-empty set only while in a changes-requested stage.
type RevisionSet map[string]*RevisionRecord

// Value implements driver.Valuer for JSONB
func (rs RevisionSet) Value() (driver.Value, error) {
	if rs == nil {
		return nil, nil
	}
	return json.Marshal(rs)
}

// Scan implements sql.Scanner for JSONB
func (rs *RevisionSet) Scan(value interface{}) error {
	if value == nil {
		*rs = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrMalformedField
	}

	return json.Unmarshal(bytes, rs)
}

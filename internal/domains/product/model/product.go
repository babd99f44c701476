package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// PRODUCT AGGREGATE
// =====================================================

// Product is the aggregate root binding both documents, the workflow stage,
// the pending revision set and the image references into one consistency
// boundary. All mutation goes through validated workflow transitions; the
// Version stamp serializes concurrent commits per aggregate.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Stage       Stage     `json:"stage" db:"stage"`

	// Documents
	InformationalDoc DocumentTree `json:"informational_doc" db:"informational_doc"`
	SpecsheetDoc     DocumentTree `json:"specsheet_doc" db:"specsheet_doc"` // nil until informational approval or first web access

	// Review state
	PendingRevisions     RevisionSet `json:"pending_revisions" db:"pending_revisions"`
	InformationalComment *string     `json:"informational_comment" db:"informational_comment"`
	SpecsheetComment     *string     `json:"specsheet_comment" db:"specsheet_comment"`

	// Images (opaque storage paths)
	ImagePath        *string  `json:"image_path" db:"image_path"`
	AdditionalImages []string `json:"additional_images" db:"additional_images"`

	// Optimistic concurrency stamp, bumped by the repository on every commit
	Version int64 `json:"version" db:"version"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewProduct creates a draft product with a populated informational
// document. The specsheet document stays nil until the workflow reaches it.
func NewProduct(displayName string, informationalDoc DocumentTree) *Product {
	now := time.Now()
	if informationalDoc == nil {
		informationalDoc = DocumentTree{}
	}
	return &Product{
		ID:               uuid.New(),
		DisplayName:      displayName,
		Stage:            StageDraftMarketing,
		InformationalDoc: informationalDoc,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Clone returns a deep copy of the aggregate. Services work on a clone so a
// rejected operation leaves the loaded aggregate untouched.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	out := *p
	out.InformationalDoc = p.InformationalDoc.Clone()
	out.SpecsheetDoc = p.SpecsheetDoc.Clone()

	if p.PendingRevisions != nil {
		revs := make(RevisionSet, len(p.PendingRevisions))
		for section, rec := range p.PendingRevisions {
			copied := *rec
			copied.OriginalContent = cloneValue(rec.OriginalContent)
			copied.SuggestedContent = cloneValue(rec.SuggestedContent)
			revs[section] = &copied
		}
		out.PendingRevisions = revs
	}

	if p.AdditionalImages != nil {
		out.AdditionalImages = append([]string(nil), p.AdditionalImages...)
	}
	if p.InformationalComment != nil {
		c := *p.InformationalComment
		out.InformationalComment = &c
	}
	if p.SpecsheetComment != nil {
		c := *p.SpecsheetComment
		out.SpecsheetComment = &c
	}
	return &out
}

func cloneValue(v interface{}) interface{} {
	switch raw := v.(type) {
	case map[string]interface{}:
		return DocumentTree(raw).Clone()
	case []interface{}:
		out := make([]interface{}, len(raw))
		for i, item := range raw {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), raw...)
	default:
		return raw
	}
}

// Document returns the tree for a target (nil when the specsheet has not
// been initialized yet).
func (p *Product) Document(target DocumentTarget) DocumentTree {
	if target == TargetSpecsheet {
		return p.SpecsheetDoc
	}
	return p.InformationalDoc
}

// ReviewTarget maps the current stage to the document under review.
func (p *Product) ReviewTarget() DocumentTarget {
	switch p.Stage {
	case StagePendingReviewSpecsheet, StageChangesRequestedSpecsheet:
		return TargetSpecsheet
	}
	return TargetInformational
}

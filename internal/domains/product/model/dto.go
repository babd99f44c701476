package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// ========================================
// EDIT SETS
// ========================================

// EditSet is a partial field map submitted against one document. Keys are
// the logical section names; values carry the section's native shape
// (string, list, map, or spec-table rows). Empty values are skipped, never
// erased into the documents.
type EditSet map[string]interface{}

// ========================================
// REQUEST DTOs
// ========================================

// CreateProductRequest creates a marketing draft.
type CreateProductRequest struct {
	DisplayName string       `json:"display_name" binding:"required"`
	Document    DocumentTree `json:"document"`
}

func (r CreateProductRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName,
			validation.Required.Error("display name is required"),
			validation.Length(1, 200),
		),
	)
	if err != nil {
		return NewProductError(ErrCodeValidation, err.Error(), err)
	}
	return validateHeaderPrice(r.Document)
}

// SubmitEditRequest carries an edit-and-transition request from an
// authoring role (save or submit).
type SubmitEditRequest struct {
	Action         Action         `json:"action" binding:"required"`
	TargetDocument DocumentTarget `json:"target_document" binding:"required"`
	Edits          EditSet        `json:"edits"`
}

func (r SubmitEditRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Action,
			validation.Required.Error("action is required"),
			validation.In(ActionSave, ActionSubmit).Error("action must be save or submit"),
		),
		validation.Field(&r.TargetDocument,
			validation.Required.Error("target document is required"),
			validation.In(TargetInformational, TargetSpecsheet).Error("unknown target document"),
		),
	)
	if err != nil {
		return NewProductError(ErrCodeValidation, err.Error(), err)
	}
	return validateEditPrice(r.Edits)
}

// RequestChangesRequest is the director's review verdict asking for rework.
// At least one non-empty section comment is required; optional edits are
// committed through the sync engine before the transition.
type RequestChangesRequest struct {
	SectionComments map[string]string `json:"section_comments"`
	GeneralComment  string            `json:"general_comment"`
	Edits           EditSet           `json:"edits"`
}

func (r RequestChangesRequest) Validate() error {
	hasComment := false
	for _, comment := range r.SectionComments {
		if strings.TrimSpace(comment) != "" {
			hasComment = true
			break
		}
	}
	if !hasComment {
		return NewProductError(ErrCodeValidation, "missing required input: at least one section comment", ErrMissingComment)
	}
	return validateEditPrice(r.Edits)
}

// ApproveRequest optionally carries last-minute director edits.
type ApproveRequest struct {
	Edits EditSet `json:"edits"`
}

func (r ApproveRequest) Validate() error {
	return validateEditPrice(r.Edits)
}

// validateEditPrice rejects a header edit whose price estimate is present
// but not a parsable amount.
func validateEditPrice(edits EditSet) error {
	if edits == nil {
		return nil
	}
	header, ok := edits[SectionHeaderInfo]
	if !ok {
		return nil
	}
	var m map[string]interface{}
	switch h := header.(type) {
	case map[string]interface{}:
		m = h
	case DocumentTree:
		m = h
	default:
		return NewProductError(ErrCodeValidation, "header_info must be a key/value map", ErrMalformedField)
	}
	return validatePrice(cast.ToString(m[HeaderKeyPriceEstimate]))
}

func validateHeaderPrice(doc DocumentTree) error {
	if doc == nil {
		return nil
	}
	return validatePrice(doc.HeaderString(HeaderKeyPriceEstimate))
}

func validatePrice(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	// Accept "Rs 12,500" style input; the stored value keeps its prefix.
	cleaned := strings.NewReplacer(",", "", "Rs", "", "rs", "", "$", "").Replace(raw)
	if _, err := decimal.NewFromString(strings.TrimSpace(cleaned)); err != nil {
		return NewProductError(ErrCodeValidation, "price estimate is not a valid amount: "+raw, ErrMalformedField)
	}
	return nil
}

// ========================================
// DASHBOARD DTOs
// ========================================

// DashboardMetrics are the per-role pipeline counters.
type DashboardMetrics struct {
	TotalActive      int `json:"total_active"`
	Drafts           int `json:"drafts"`
	InProgress       int `json:"in_progress"`
	ChangesRequested int `json:"changes_requested"`
	NeedReview       int `json:"need_review"`
	Approved         int `json:"approved"`
	Finalized        int `json:"finalized"`
}

// PipelineStages returns the stages visible on a role's dashboard.
func PipelineStages(role Role) []Stage {
	switch role {
	case RoleMarketing:
		return []Stage{
			StageDraftMarketing, StageInProgressMarketing,
			StagePendingReviewInformational, StageChangesRequestedInformational,
			StageReadyForPublishing, StageDraftPublishing,
			StagePendingReviewSpecsheet, StageChangesRequestedSpecsheet,
			StageFinalized,
		}
	case RoleWeb:
		return []Stage{
			StageReadyForPublishing, StageDraftPublishing,
			StagePendingReviewSpecsheet, StageChangesRequestedSpecsheet,
			StageFinalized,
		}
	case RoleDirector:
		return []Stage{
			StagePendingReviewInformational, StagePendingReviewSpecsheet,
		}
	}
	return nil
}

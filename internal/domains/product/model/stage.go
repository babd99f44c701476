package model

import "fmt"

// =====================================================
// ROLES
// =====================================================

// Role represents the acting team in the workflow.
// The role is always passed explicitly; it is never read from ambient state.
type Role string

const (
	RoleMarketing Role = "marketing"
	RoleDirector  Role = "director"
	RoleWeb       Role = "web"
)

// AllRoles lists the selectable workflow roles.
func AllRoles() []Role {
	return []Role{RoleMarketing, RoleDirector, RoleWeb}
}

func (r Role) IsValid() bool {
	switch r {
	case RoleMarketing, RoleDirector, RoleWeb:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Label returns the actor label used in audit entries.
func (r Role) Label() string {
	switch r {
	case RoleMarketing:
		return "Marketing Team"
	case RoleDirector:
		return "Director"
	case RoleWeb:
		return "Web Team"
	}
	return string(r)
}

// =====================================================
// ACTIONS
// =====================================================

// Action is a workflow action requested against a product.
type Action string

const (
	ActionSave           Action = "save"
	ActionSubmit         Action = "submit"
	ActionRequestChanges Action = "request_changes"
	ActionApprove        Action = "approve"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionSave, ActionSubmit, ActionRequestChanges, ActionApprove:
		return true
	}
	return false
}

func (a Action) String() string {
	return string(a)
}

// =====================================================
// WORKFLOW STAGES
// =====================================================

// Stage is the closed set of workflow stages. Products enter at
// StageDraftMarketing and terminate at StageFinalized.
type Stage string

const (
	StageDraftMarketing                Stage = "draft_marketing"
	StageInProgressMarketing           Stage = "in_progress_marketing"
	StagePendingReviewInformational    Stage = "pending_review_informational"
	StageChangesRequestedInformational Stage = "changes_requested_informational"
	StageReadyForPublishing            Stage = "ready_for_publishing"
	StageDraftPublishing               Stage = "draft_publishing"
	StagePendingReviewSpecsheet        Stage = "pending_review_specsheet"
	StageChangesRequestedSpecsheet     Stage = "changes_requested_specsheet"
	StageFinalized                     Stage = "finalized"
)

func (s Stage) IsValid() bool {
	switch s {
	case StageDraftMarketing, StageInProgressMarketing,
		StagePendingReviewInformational, StageChangesRequestedInformational,
		StageReadyForPublishing, StageDraftPublishing,
		StagePendingReviewSpecsheet, StageChangesRequestedSpecsheet,
		StageFinalized:
		return true
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}

// IsChangesRequested reports whether the stage carries pending revisions.
func (s Stage) IsChangesRequested() bool {
	return s == StageChangesRequestedInformational || s == StageChangesRequestedSpecsheet
}

// IsInformationalApproved reports whether the product has passed the
// informational review. From this point on the specsheet document exists.
func (s Stage) IsInformationalApproved() bool {
	switch s {
	case StageReadyForPublishing, StageDraftPublishing,
		StagePendingReviewSpecsheet, StageChangesRequestedSpecsheet,
		StageFinalized:
		return true
	}
	return false
}

// =====================================================
// TRANSITION TABLE
// =====================================================

type transitionKey struct {
	Stage  Stage
	Role   Role
	Action Action
}

// transitions is the single source of truth for legal workflow moves.
// Any (stage, role, action) triple not present here is illegal.
var transitions = map[transitionKey]Stage{
	// Marketing authoring cycle
	{StageDraftMarketing, RoleMarketing, ActionSave}:      StageInProgressMarketing,
	{StageInProgressMarketing, RoleMarketing, ActionSave}: StageInProgressMarketing,
	{StageDraftMarketing, RoleMarketing, ActionSubmit}:    StagePendingReviewInformational,
	{StageInProgressMarketing, RoleMarketing, ActionSubmit}: StagePendingReviewInformational,

	// Marketing rework after director feedback. Saving keeps the product in
	// the changes-requested stage so the pending revisions stay visible.
	{StageChangesRequestedInformational, RoleMarketing, ActionSave}:   StageChangesRequestedInformational,
	{StageChangesRequestedInformational, RoleMarketing, ActionSubmit}: StagePendingReviewInformational,

	// Director review of the informational sheet
	{StagePendingReviewInformational, RoleDirector, ActionRequestChanges}: StageChangesRequestedInformational,
	{StagePendingReviewInformational, RoleDirector, ActionApprove}:        StageReadyForPublishing,

	// Web authoring cycle
	{StageReadyForPublishing, RoleWeb, ActionSave}:          StageDraftPublishing,
	{StageDraftPublishing, RoleWeb, ActionSave}:             StageDraftPublishing,
	{StageChangesRequestedSpecsheet, RoleWeb, ActionSave}:   StageDraftPublishing,
	{StageReadyForPublishing, RoleWeb, ActionSubmit}:        StagePendingReviewSpecsheet,
	{StageDraftPublishing, RoleWeb, ActionSubmit}:           StagePendingReviewSpecsheet,
	{StageChangesRequestedSpecsheet, RoleWeb, ActionSubmit}: StagePendingReviewSpecsheet,

	// Director review of the specsheet. Approval is terminal.
	{StagePendingReviewSpecsheet, RoleDirector, ActionRequestChanges}: StageChangesRequestedSpecsheet,
	{StagePendingReviewSpecsheet, RoleDirector, ActionApprove}:        StageFinalized,
}

// NextStage validates a requested transition and returns the resulting
// stage. Illegal triples return an IllegalTransition error and no stage.
func NextStage(current Stage, role Role, action Action) (Stage, error) {
	next, ok := transitions[transitionKey{Stage: current, Role: role, Action: action}]
	if !ok {
		return "", NewProductError(
			ErrCodeIllegalTransition,
			fmt.Sprintf("action %q by role %q is not allowed from stage %q", action, role, current),
			ErrIllegalTransition,
		)
	}
	return next, nil
}

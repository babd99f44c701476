package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextStageHappyPath(t *testing.T) {
	// Full lifecycle: marketing draft through finalized specsheet.
	steps := []struct {
		from   Stage
		role   Role
		action Action
		want   Stage
	}{
		{StageDraftMarketing, RoleMarketing, ActionSave, StageInProgressMarketing},
		{StageInProgressMarketing, RoleMarketing, ActionSubmit, StagePendingReviewInformational},
		{StagePendingReviewInformational, RoleDirector, ActionRequestChanges, StageChangesRequestedInformational},
		{StageChangesRequestedInformational, RoleMarketing, ActionSubmit, StagePendingReviewInformational},
		{StagePendingReviewInformational, RoleDirector, ActionApprove, StageReadyForPublishing},
		{StageReadyForPublishing, RoleWeb, ActionSave, StageDraftPublishing},
		{StageDraftPublishing, RoleWeb, ActionSubmit, StagePendingReviewSpecsheet},
		{StagePendingReviewSpecsheet, RoleDirector, ActionRequestChanges, StageChangesRequestedSpecsheet},
		{StageChangesRequestedSpecsheet, RoleWeb, ActionSubmit, StagePendingReviewSpecsheet},
		{StagePendingReviewSpecsheet, RoleDirector, ActionApprove, StageFinalized},
	}

	for _, step := range steps {
		got, err := NextStage(step.from, step.role, step.action)
		require.NoError(t, err, "%s/%s/%s", step.from, step.role, step.action)
		require.Equal(t, step.want, got)
	}
}

func TestNextStageSaveKeepsWorkingStage(t *testing.T) {
	got, err := NextStage(StageInProgressMarketing, RoleMarketing, ActionSave)
	require.NoError(t, err)
	require.Equal(t, StageInProgressMarketing, got)

	got, err = NextStage(StageChangesRequestedInformational, RoleMarketing, ActionSave)
	require.NoError(t, err)
	require.Equal(t, StageChangesRequestedInformational, got)

	got, err = NextStage(StageDraftPublishing, RoleWeb, ActionSave)
	require.NoError(t, err)
	require.Equal(t, StageDraftPublishing, got)
}

func TestNextStageRejectsWrongRole(t *testing.T) {
	// The director cannot author; authors cannot approve.
	cases := []struct {
		from   Stage
		role   Role
		action Action
	}{
		{StageDraftMarketing, RoleDirector, ActionSave},
		{StageDraftMarketing, RoleWeb, ActionSave},
		{StagePendingReviewInformational, RoleMarketing, ActionApprove},
		{StagePendingReviewSpecsheet, RoleWeb, ActionApprove},
		{StageReadyForPublishing, RoleMarketing, ActionSave},
	}

	for _, tc := range cases {
		_, err := NextStage(tc.from, tc.role, tc.action)
		require.ErrorIs(t, err, ErrIllegalTransition, "%s/%s/%s", tc.from, tc.role, tc.action)
	}
}

func TestNextStageRejectsTerminalAndWaitingStages(t *testing.T) {
	// Finalized is terminal for every role and action.
	for _, role := range AllRoles() {
		for _, action := range []Action{ActionSave, ActionSubmit, ActionRequestChanges, ActionApprove} {
			_, err := NextStage(StageFinalized, role, action)
			require.ErrorIs(t, err, ErrIllegalTransition)
		}
	}

	// Nobody edits while the director is reviewing.
	_, err := NextStage(StagePendingReviewInformational, RoleMarketing, ActionSave)
	require.ErrorIs(t, err, ErrIllegalTransition)
	_, err = NextStage(StagePendingReviewSpecsheet, RoleWeb, ActionSave)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestIsChangesRequested(t *testing.T) {
	require.True(t, StageChangesRequestedInformational.IsChangesRequested())
	require.True(t, StageChangesRequestedSpecsheet.IsChangesRequested())
	require.False(t, StageDraftMarketing.IsChangesRequested())
	require.False(t, StageFinalized.IsChangesRequested())
}

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"productflow-backend/internal/domains/product/model"
	"productflow-backend/internal/domains/product/repository"
	"productflow-backend/internal/infrastructure/generator"
	"productflow-backend/internal/infrastructure/imagesearch"
)

func newTestService() (ProductService, *repository.MemoryProductRepository, *generator.MockGenerator, *imagesearch.MockResolver) {
	repo := repository.NewMemoryProductRepository()
	gen := generator.NewMockGenerator()
	res := imagesearch.NewMockResolver()
	svc := NewProductService(repo, gen, res, nil, nil, nil)
	return svc, repo, gen, res
}

func draftDocument() model.DocumentTree {
	return model.DocumentTree{
		model.DocKeyHeaderInfo: map[string]interface{}{
			model.HeaderKeyProductName:   "Thermo X200",
			model.HeaderKeyModelNumber:   "X200",
			model.HeaderKeyBrand:         "Thermo",
			model.HeaderKeyPriceEstimate: "Rs 45,000",
		},
		model.DocKeyRangeOverview:  "A compact combi boiler.",
		model.DocKeySalesArguments: []interface{}{"Compact", "Quiet"},
		model.DocKeyTechnicalSpecs: []interface{}{
			map[string]interface{}{"name": "Output", "value": "24 kW"},
		},
	}
}

func createDraft(t *testing.T, svc ProductService) *model.Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), model.RoleMarketing, model.CreateProductRequest{
		DisplayName: "Thermo X200",
		Document:    draftDocument(),
	})
	require.NoError(t, err)
	return p
}

// seedAt plants an aggregate directly at a stage, bypassing the workflow.
func seedAt(t *testing.T, repo *repository.MemoryProductRepository, stage model.Stage, withSpecsheet bool) *model.Product {
	t.Helper()
	p := model.NewProduct("Thermo X200", draftDocument())
	p.Stage = stage
	if withSpecsheet {
		p.SpecsheetDoc = deriveSpecsheet(p.InformationalDoc)
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

// =====================================================
// CREATE / READ
// =====================================================

func TestCreateProductRequiresMarketingRole(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateProduct(context.Background(), model.RoleDirector, model.CreateProductRequest{
		DisplayName: "Thermo X200",
	})
	require.ErrorIs(t, err, model.ErrIllegalTransition)
}

func TestCreateProductRejectsMalformedPrice(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateProduct(context.Background(), model.RoleMarketing, model.CreateProductRequest{
		DisplayName: "Thermo X200",
		Document: model.DocumentTree{
			model.DocKeyHeaderInfo: map[string]interface{}{
				model.HeaderKeyPriceEstimate: "call us",
			},
		},
	})
	require.ErrorIs(t, err, model.ErrMalformedField)
}

func TestCreateProductStartsDraftWithAudit(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	p := createDraft(t, svc)
	require.Equal(t, model.StageDraftMarketing, p.Stage)
	require.Nil(t, p.SpecsheetDoc)

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Thermo X200", stored.DisplayName)

	history, err := svc.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "Draft Created", history[0].Title)
	require.Equal(t, model.HistoryNeutral, history[0].Category)
}

func TestListProductsRejectsUnknownStage(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.ListProducts(context.Background(), []model.Stage{model.Stage("bogus")})
	require.ErrorIs(t, err, model.ErrMalformedField)
}

// =====================================================
// EDIT AND SUBMIT
// =====================================================

func TestSubmitEditSaveThenSubmit(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	p := createDraft(t, svc)

	saved, err := svc.SubmitEdit(ctx, p.ID, model.RoleMarketing, model.SubmitEditRequest{
		Action:         model.ActionSave,
		TargetDocument: model.TargetInformational,
		Edits:          model.EditSet{model.SectionOverview: "A quieter combi boiler."},
	})
	require.NoError(t, err)
	require.Equal(t, model.StageInProgressMarketing, saved.Stage)
	require.Equal(t, "A quieter combi boiler.", saved.InformationalDoc.GetString(model.DocKeyRangeOverview))

	submitted, err := svc.SubmitEdit(ctx, p.ID, model.RoleMarketing, model.SubmitEditRequest{
		Action:         model.ActionSubmit,
		TargetDocument: model.TargetInformational,
	})
	require.NoError(t, err)
	require.Equal(t, model.StagePendingReviewInformational, submitted.Stage)

	history, err := svc.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, "Submitted for Review", history[0].Title)
	require.Equal(t, model.HistoryWaiting, history[0].Category)
}

func TestSubmitEditRejectsWrongRoleForStage(t *testing.T) {
	svc, _, _, _ := newTestService()
	p := createDraft(t, svc)

	_, err := svc.SubmitEdit(context.Background(), p.ID, model.RoleWeb, model.SubmitEditRequest{
		Action:         model.ActionSubmit,
		TargetDocument: model.TargetSpecsheet,
	})
	require.ErrorIs(t, err, model.ErrIllegalTransition)
}

func TestSubmitEditUnknownProduct(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.SubmitEdit(context.Background(), uuid.New(), model.RoleMarketing, model.SubmitEditRequest{
		Action:         model.ActionSave,
		TargetDocument: model.TargetInformational,
	})
	require.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestWebFirstEditInitializesSpecsheet(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	p := seedAt(t, repo, model.StageReadyForPublishing, false)

	work, err := svc.SubmitEdit(ctx, p.ID, model.RoleWeb, model.SubmitEditRequest{
		Action:         model.ActionSave,
		TargetDocument: model.TargetSpecsheet,
		Edits:          model.EditSet{model.SectionInternalKeywords: "boiler, compact"},
	})
	require.NoError(t, err)
	require.Equal(t, model.StageDraftPublishing, work.Stage)
	require.NotNil(t, work.SpecsheetDoc)
	require.Equal(t, "boiler, compact", work.SpecsheetDoc.GetString(model.DocKeyInternalKeywords))
}

func TestWebFeatureEditSyncsBackToInformational(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	p := seedAt(t, repo, model.StageDraftPublishing, true)

	work, err := svc.SubmitEdit(ctx, p.ID, model.RoleWeb, model.SubmitEditRequest{
		Action:         model.ActionSave,
		TargetDocument: model.TargetSpecsheet,
		Edits:          model.EditSet{model.SectionFeatures: []interface{}{"Fits narrow kitchens", "Whisper quiet"}},
	})
	require.NoError(t, err)

	want := []string{"Fits narrow kitchens", "Whisper quiet"}
	require.Equal(t, want, work.SpecsheetDoc.GetStringSlice(model.DocKeyKeyFeatures))
	require.Equal(t, want, work.InformationalDoc.GetStringSlice(model.DocKeySalesArguments))
}

// =====================================================
// REVIEW CYCLE
// =====================================================

func TestRequestChangesInstallsPendingRevisions(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	p := seedAt(t, repo, model.StagePendingReviewInformational, false)

	work, err := svc.RequestChanges(ctx, p.ID, model.RoleDirector, model.RequestChangesRequest{
		SectionComments: map[string]string{model.SectionOverview: "Too dry"},
		GeneralComment:  "Rewrite for homeowners.",
	})
	require.NoError(t, err)
	require.Equal(t, model.StageChangesRequestedInformational, work.Stage)
	require.NotNil(t, work.InformationalComment)
	require.Equal(t, "Rewrite for homeowners.", *work.InformationalComment)

	rec, ok := work.PendingRevisions[model.SectionOverview]
	require.True(t, ok)
	require.Equal(t, model.RevisionStatusPending, rec.Status)
	require.Equal(t, "A compact combi boiler.", rec.OriginalContent)
	require.Equal(t, "A compact combi boiler. (revised: Too dry)", rec.SuggestedContent)

	history, err := svc.History(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Changes Requested", history[0].Title)
	require.Equal(t, model.HistoryAction, history[0].Category)
}

func TestRequestChangesRequiresSectionComment(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := seedAt(t, repo, model.StagePendingReviewInformational, false)

	_, err := svc.RequestChanges(context.Background(), p.ID, model.RoleDirector, model.RequestChangesRequest{
		GeneralComment: "only a general remark",
	})
	require.ErrorIs(t, err, model.ErrMissingComment)
}

func TestRequestChangesRejectsUnreviewableSection(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := seedAt(t, repo, model.StagePendingReviewInformational, false)

	// SEO belongs to the specsheet cycle, not the informational one.
	_, err := svc.RequestChanges(context.Background(), p.ID, model.RoleDirector, model.RequestChangesRequest{
		SectionComments: map[string]string{model.SectionSEO: "tighten the meta title"},
	})
	require.ErrorIs(t, err, model.ErrMalformedField)
}

func TestRequestChangesSurvivesGeneratorOutage(t *testing.T) {
	svc, repo, gen, _ := newTestService()
	gen.ShouldFail = true
	p := seedAt(t, repo, model.StagePendingReviewInformational, false)

	work, err := svc.RequestChanges(context.Background(), p.ID, model.RoleDirector, model.RequestChangesRequest{
		SectionComments: map[string]string{model.SectionOverview: "Too dry"},
	})
	require.NoError(t, err)

	// Suggestion degrades to a copy of the original.
	rec := work.PendingRevisions[model.SectionOverview]
	require.Equal(t, rec.OriginalContent, rec.SuggestedContent)
}

func TestResubmitClearsPendingRevisions(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	p := seedAt(t, repo, model.StagePendingReviewInformational, false)

	_, err := svc.RequestChanges(ctx, p.ID, model.RoleDirector, model.RequestChangesRequest{
		SectionComments: map[string]string{model.SectionOverview: "Too dry"},
	})
	require.NoError(t, err)

	work, err := svc.SubmitEdit(ctx, p.ID, model.RoleMarketing, model.SubmitEditRequest{
		Action:         model.ActionSubmit,
		TargetDocument: model.TargetInformational,
		Edits:          model.EditSet{model.SectionOverview: "A friendlier overview."},
	})
	require.NoError(t, err)
	require.Equal(t, model.StagePendingReviewInformational, work.Stage)
	require.Empty(t, work.PendingRevisions)
}

func TestApproveInformationalInitializesSpecsheet(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	p := seedAt(t, repo, model.StagePendingReviewInformational, false)

	work, err := svc.Approve(ctx, p.ID, model.RoleDirector, model.ApproveRequest{})
	require.NoError(t, err)
	require.Equal(t, model.StageReadyForPublishing, work.Stage)
	require.Nil(t, work.PendingRevisions)
	require.NotNil(t, work.SpecsheetDoc)

	// Shared fields agree after generation.
	require.Equal(t,
		work.InformationalDoc.GetString(model.DocKeyRangeOverview),
		work.SpecsheetDoc.GetString(model.DocKeyCustomerDescription))
	require.Equal(t,
		work.InformationalDoc.GetStringSlice(model.DocKeySalesArguments),
		work.SpecsheetDoc.GetStringSlice(model.DocKeyKeyFeatures))
	require.Equal(t,
		work.InformationalDoc.GetMap(model.DocKeyHeaderInfo),
		work.SpecsheetDoc.GetMap(model.DocKeyHeaderInfo))

	history, err := svc.History(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Informational Sheet Approved", history[0].Title)
	require.Equal(t, model.HistorySuccess, history[0].Category)
}

func TestApproveFallsBackToDirectCopyOnGeneratorOutage(t *testing.T) {
	svc, repo, gen, _ := newTestService()
	gen.ShouldFail = true
	p := seedAt(t, repo, model.StagePendingReviewInformational, false)

	work, err := svc.Approve(context.Background(), p.ID, model.RoleDirector, model.ApproveRequest{})
	require.NoError(t, err)
	require.NotNil(t, work.SpecsheetDoc)
	require.Equal(t, "A compact combi boiler.", work.SpecsheetDoc.GetString(model.DocKeyCustomerDescription))
}

func TestFullLifecycleToFinalized(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	p := createDraft(t, svc)

	_, err := svc.SubmitEdit(ctx, p.ID, model.RoleMarketing, model.SubmitEditRequest{
		Action: model.ActionSubmit, TargetDocument: model.TargetInformational,
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, p.ID, model.RoleDirector, model.ApproveRequest{})
	require.NoError(t, err)

	_, err = svc.SubmitEdit(ctx, p.ID, model.RoleWeb, model.SubmitEditRequest{
		Action: model.ActionSubmit, TargetDocument: model.TargetSpecsheet,
		Edits: model.EditSet{model.SectionSEO: map[string]interface{}{"meta_title": "Thermo X200 Boiler"}},
	})
	require.NoError(t, err)

	work, err := svc.RequestChanges(ctx, p.ID, model.RoleDirector, model.RequestChangesRequest{
		SectionComments: map[string]string{model.SectionSEO: "mention the warranty"},
	})
	require.NoError(t, err)
	require.Equal(t, model.StageChangesRequestedSpecsheet, work.Stage)
	require.NotNil(t, work.SpecsheetComment)

	_, err = svc.SubmitEdit(ctx, p.ID, model.RoleWeb, model.SubmitEditRequest{
		Action: model.ActionSubmit, TargetDocument: model.TargetSpecsheet,
	})
	require.NoError(t, err)

	final, err := svc.Approve(ctx, p.ID, model.RoleDirector, model.ApproveRequest{})
	require.NoError(t, err)
	require.Equal(t, model.StageFinalized, final.Stage)
	require.Empty(t, final.PendingRevisions)

	// Finalized is terminal.
	_, err = svc.Approve(ctx, p.ID, model.RoleDirector, model.ApproveRequest{})
	require.ErrorIs(t, err, model.ErrIllegalTransition)
	_, err = svc.RequestChanges(ctx, p.ID, model.RoleDirector, model.RequestChangesRequest{
		SectionComments: map[string]string{model.SectionOverview: "one more pass"},
	})
	require.ErrorIs(t, err, model.ErrIllegalTransition)

	history, err := svc.History(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Specsheet Finalized", history[0].Title)
	require.Equal(t, model.HistorySuccess, history[0].Category)
}

// =====================================================
// SUGGESTION RETRY
// =====================================================

func changesRequestedProduct(t *testing.T, svc ProductService, repo *repository.MemoryProductRepository) *model.Product {
	t.Helper()
	p := seedAt(t, repo, model.StagePendingReviewInformational, false)
	work, err := svc.RequestChanges(context.Background(), p.ID, model.RoleDirector, model.RequestChangesRequest{
		SectionComments: map[string]string{model.SectionOverview: "Too dry"},
	})
	require.NoError(t, err)
	return work
}

func TestRetryRevisionSuggestionUnknownSection(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := changesRequestedProduct(t, svc, repo)

	_, err := svc.RetryRevisionSuggestion(context.Background(), p.ID, model.SectionFeatures)
	require.ErrorIs(t, err, model.ErrUnknownSection)
}

func TestRetryRevisionSuggestionUpdatesRecord(t *testing.T) {
	svc, repo, gen, _ := newTestService()
	ctx := context.Background()
	p := changesRequestedProduct(t, svc, repo)

	gen.FixedRevision = "A warmer, friendlier overview."
	suggestion, err := svc.RetryRevisionSuggestion(ctx, p.ID, model.SectionOverview)
	require.NoError(t, err)
	require.Equal(t, "A warmer, friendlier overview.", suggestion)

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "A warmer, friendlier overview.",
		stored.PendingRevisions[model.SectionOverview].SuggestedContent)
}

func TestRetryRevisionSuggestionKeepsPreviousOnOutage(t *testing.T) {
	svc, repo, gen, _ := newTestService()
	ctx := context.Background()
	p := changesRequestedProduct(t, svc, repo)
	previous := p.PendingRevisions[model.SectionOverview].SuggestedContent

	gen.ShouldFail = true
	suggestion, err := svc.RetryRevisionSuggestion(ctx, p.ID, model.SectionOverview)
	require.NoError(t, err)
	require.Equal(t, previous, suggestion)

	// The aggregate is untouched: no commit, no version bump.
	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.Version, stored.Version)
}

func TestRetryRevisionSuggestionKeepsPreviousOnContractViolation(t *testing.T) {
	svc, repo, gen, _ := newTestService()
	p := changesRequestedProduct(t, svc, repo)
	previous := p.PendingRevisions[model.SectionOverview].SuggestedContent

	// A text section must come back as text.
	gen.FixedRevision = map[string]interface{}{"unexpected": "shape"}
	suggestion, err := svc.RetryRevisionSuggestion(context.Background(), p.ID, model.SectionOverview)
	require.NoError(t, err)
	require.Equal(t, previous, suggestion)
}

// =====================================================
// SPECSHEET REGENERATION
// =====================================================

func TestRegenerateSpecsheetRequiresWebRole(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := seedAt(t, repo, model.StageDraftPublishing, true)

	_, err := svc.RegenerateSpecsheet(context.Background(), p.ID, model.RoleMarketing)
	require.ErrorIs(t, err, model.ErrIllegalTransition)
}

func TestRegenerateSpecsheetReplacesDocument(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	p := seedAt(t, repo, model.StageReadyForPublishing, true)

	work, err := svc.RegenerateSpecsheet(ctx, p.ID, model.RoleWeb)
	require.NoError(t, err)
	require.Equal(t, model.StageDraftPublishing, work.Stage)
	require.NotNil(t, work.SpecsheetDoc)
	require.Equal(t,
		work.InformationalDoc.GetString(model.DocKeyRangeOverview),
		work.SpecsheetDoc.GetString(model.DocKeyCustomerDescription))
}

func TestRegenerateSpecsheetClearsPendingRevisions(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	p := seedAt(t, repo, model.StagePendingReviewSpecsheet, true)

	rejected, err := svc.RequestChanges(ctx, p.ID, model.RoleDirector, model.RequestChangesRequest{
		SectionComments: map[string]string{model.SectionOverview: "Too technical"},
	})
	require.NoError(t, err)
	require.Equal(t, model.StageChangesRequestedSpecsheet, rejected.Stage)
	require.NotEmpty(t, rejected.PendingRevisions)

	work, err := svc.RegenerateSpecsheet(ctx, rejected.ID, model.RoleWeb)
	require.NoError(t, err)
	require.Equal(t, model.StageDraftPublishing, work.Stage)
	require.Empty(t, work.PendingRevisions)

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, stored.PendingRevisions)
}

// =====================================================
// DASHBOARD
// =====================================================

func TestDashboardMetricsPerRole(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	seedAt(t, repo, model.StageDraftMarketing, false)
	seedAt(t, repo, model.StagePendingReviewInformational, false)
	seedAt(t, repo, model.StageReadyForPublishing, false)
	seedAt(t, repo, model.StageFinalized, true)

	marketing, err := svc.DashboardMetrics(ctx, model.RoleMarketing)
	require.NoError(t, err)
	require.Equal(t, 4, marketing.TotalActive)
	require.Equal(t, 1, marketing.Drafts)
	require.Equal(t, 1, marketing.NeedReview)
	require.Equal(t, 1, marketing.Approved)
	require.Equal(t, 1, marketing.Finalized)

	// An approved sheet is new draft work for the web team.
	web, err := svc.DashboardMetrics(ctx, model.RoleWeb)
	require.NoError(t, err)
	require.Equal(t, 2, web.TotalActive)
	require.Equal(t, 1, web.Drafts)
	require.Equal(t, 0, web.Approved)

	director, err := svc.DashboardMetrics(ctx, model.RoleDirector)
	require.NoError(t, err)
	require.Equal(t, 1, director.TotalActive)
	require.Equal(t, 1, director.NeedReview)
}

// =====================================================
// IMAGE RESOLUTION
// =====================================================

func TestResolvePrimaryImageAttachesReference(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	p := createDraft(t, svc)

	require.NoError(t, svc.ResolvePrimaryImage(ctx, p.ID))

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ImagePath)
	require.Contains(t, *stored.ImagePath, "https://images.example.com/")
}

func TestResolvePrimaryImageSkipsWhenAlreadySet(t *testing.T) {
	svc, repo, _, res := newTestService()
	ctx := context.Background()
	p := createDraft(t, svc)

	require.NoError(t, svc.ResolvePrimaryImage(ctx, p.ID))
	before, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)

	// A second run must not touch the aggregate even if the resolver would
	// now return something different.
	res.NoResult = true
	require.NoError(t, svc.ResolvePrimaryImage(ctx, p.ID))
	after, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, before.Version, after.Version)
	require.Equal(t, *before.ImagePath, *after.ImagePath)
}

func TestResolvePrimaryImageToleratesResolverOutage(t *testing.T) {
	svc, repo, _, res := newTestService()
	res.ShouldFail = true
	ctx := context.Background()
	p := createDraft(t, svc)

	require.NoError(t, svc.ResolvePrimaryImage(ctx, p.ID))

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Nil(t, stored.ImagePath)
}

// =====================================================
// HISTORY / ADMIN
// =====================================================

func TestHistoryUnknownProduct(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.History(context.Background(), uuid.New())
	require.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestPurgeAllRemovesEverything(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	p := createDraft(t, svc)

	require.NoError(t, svc.PurgeAll(ctx))

	_, err := svc.GetProduct(ctx, p.ID)
	require.ErrorIs(t, err, model.ErrProductNotFound)
}

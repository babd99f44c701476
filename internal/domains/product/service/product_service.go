package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"productflow-backend/internal/domains/product/model"
	"productflow-backend/internal/domains/product/repository"
	"productflow-backend/pkg/cache"
)

const (
	defaultCollaboratorTimeout = 15 * time.Second
	productCacheTTL            = 5 * time.Minute
	storagePrefix              = "products/"
)

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

// =====================================================
// PRODUCT SERVICE IMPLEMENTATION
// =====================================================

type productService struct {
	repo                repository.ProductRepository
	generator           ContentGenerator
	resolver            ImageResolver
	cache               cache.Cache   // optional
	storage             ObjectStorage // optional, used by PurgeAll only
	tasks               *asynq.Client // optional
	collaboratorTimeout time.Duration
}

// NewProductService creates the workflow service. Cache, storage and task
// client may be nil (tests and the worker run without them).
func NewProductService(
	repo repository.ProductRepository,
	generator ContentGenerator,
	resolver ImageResolver,
	cacheClient cache.Cache,
	objectStorage ObjectStorage,
	tasks *asynq.Client,
) ProductService {
	return &productService{
		repo:                repo,
		generator:           generator,
		resolver:            resolver,
		cache:               cacheClient,
		storage:             objectStorage,
		tasks:               tasks,
		collaboratorTimeout: defaultCollaboratorTimeout,
	}
}

// =====================================================
// CREATE / READ
// =====================================================

func (s *productService) CreateProduct(ctx context.Context, role model.Role, req model.CreateProductRequest) (*model.Product, error) {
	if role != model.RoleMarketing {
		return nil, model.NewProductError(model.ErrCodeIllegalTransition,
			fmt.Sprintf("role %q cannot create products", role), model.ErrIllegalTransition)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := model.NewProduct(req.DisplayName, req.Document.Clone())
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, model.NewProductError(model.ErrCodeStorage, "failed to create product", err)
	}

	s.audit(ctx, model.NewHistoryEntry(p.ID, role.Label(),
		"Draft Created", "Initial product data imported and draft started.", model.HistoryNeutral))
	s.enqueueImageResolution(p.ID)
	s.cacheSet(ctx, p)
	return p, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if s.cache != nil {
		var cached model.Product
		if found, err := s.cache.Get(ctx, productCacheKey(id), &cached); err == nil && found {
			return &cached, nil
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, p)
	return p, nil
}

func (s *productService) ListProducts(ctx context.Context, stages []model.Stage) ([]*model.Product, error) {
	for _, stage := range stages {
		if !stage.IsValid() {
			return nil, model.NewProductError(model.ErrCodeValidation,
				"unknown stage filter: "+stage.String(), model.ErrMalformedField)
		}
	}
	return s.repo.ListByStages(ctx, stages)
}

func (s *productService) DashboardMetrics(ctx context.Context, role model.Role) (*model.DashboardMetrics, error) {
	if !role.IsValid() {
		return nil, model.NewProductError(model.ErrCodeInvalidRole, "unknown role", model.ErrInvalidRole)
	}

	products, err := s.repo.ListByStages(ctx, model.PipelineStages(role))
	if err != nil {
		return nil, err
	}

	m := &model.DashboardMetrics{TotalActive: len(products)}
	for _, p := range products {
		switch p.Stage {
		case model.StageDraftMarketing:
			m.Drafts++
		case model.StageInProgressMarketing, model.StageDraftPublishing:
			m.InProgress++
		case model.StageChangesRequestedInformational, model.StageChangesRequestedSpecsheet:
			m.ChangesRequested++
		case model.StagePendingReviewInformational, model.StagePendingReviewSpecsheet:
			m.NeedReview++
		case model.StageReadyForPublishing:
			// New work for the web team, an approved sheet for everyone else.
			if role == model.RoleWeb {
				m.Drafts++
			} else {
				m.Approved++
			}
		case model.StageFinalized:
			m.Finalized++
		}
	}
	return m, nil
}

// =====================================================
// WORKFLOW TRANSITIONS
// =====================================================

func (s *productService) SubmitEdit(ctx context.Context, id uuid.UUID, role model.Role, req model.SubmitEditRequest) (*model.Product, error) {
	if !role.IsValid() {
		return nil, model.NewProductError(model.ErrCodeInvalidRole, "unknown role", model.ErrInvalidRole)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Validate the transition before touching anything.
	next, err := model.NextStage(p.Stage, role, req.Action)
	if err != nil {
		return nil, err
	}

	work := p.Clone()

	// First access by the publishing role initializes the specsheet.
	if role == model.RoleWeb && work.SpecsheetDoc == nil {
		s.initializeSpecsheet(ctx, work)
	}

	if err := applyEditSet(work, req.TargetDocument, req.Edits); err != nil {
		return nil, err
	}

	prev := work.Stage
	work.Stage = next
	if prev.IsChangesRequested() && !next.IsChangesRequested() {
		work.PendingRevisions = nil
	}

	if err := s.commit(ctx, work); err != nil {
		return nil, err
	}

	if req.Action == model.ActionSubmit {
		s.audit(ctx, model.NewHistoryEntry(work.ID, role.Label(),
			"Submitted for Review",
			fmt.Sprintf("The %s document was submitted for approval.", req.TargetDocument),
			model.HistoryWaiting))
	} else {
		s.audit(ctx, model.NewHistoryEntry(work.ID, role.Label(),
			"Draft Updated",
			fmt.Sprintf("Saved changes to the %s document.", req.TargetDocument),
			model.HistoryNeutral))
	}
	return work, nil
}

func (s *productService) RequestChanges(ctx context.Context, id uuid.UUID, role model.Role, req model.RequestChangesRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := model.NextStage(p.Stage, role, model.ActionRequestChanges)
	if err != nil {
		return nil, err
	}

	work := p.Clone()
	target := work.ReviewTarget()

	if err := applyEditSet(work, target, req.Edits); err != nil {
		return nil, err
	}

	revisions, err := s.buildRevisionSet(ctx, work, target, req.SectionComments)
	if err != nil {
		return nil, err
	}

	if comment := strings.TrimSpace(req.GeneralComment); comment != "" {
		if target == model.TargetSpecsheet {
			work.SpecsheetComment = &comment
		} else {
			work.InformationalComment = &comment
		}
	}

	work.PendingRevisions = revisions
	work.Stage = next

	if err := s.commit(ctx, work); err != nil {
		return nil, err
	}

	title := "Changes Requested"
	if target == model.TargetSpecsheet {
		title = "Specsheet Changes Requested"
	}
	s.audit(ctx, model.NewHistoryEntry(work.ID, role.Label(), title,
		fmt.Sprintf("Director requested changes on %d sections.", len(revisions)),
		model.HistoryAction))
	return work, nil
}

func (s *productService) Approve(ctx context.Context, id uuid.UUID, role model.Role, req model.ApproveRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := model.NextStage(p.Stage, role, model.ActionApprove)
	if err != nil {
		return nil, err
	}

	work := p.Clone()
	informationalCycle := work.Stage == model.StagePendingReviewInformational

	if err := applyEditSet(work, work.ReviewTarget(), req.Edits); err != nil {
		return nil, err
	}

	if informationalCycle && work.SpecsheetDoc == nil {
		s.initializeSpecsheet(ctx, work)
	}

	work.Stage = next
	work.PendingRevisions = nil

	if err := s.commit(ctx, work); err != nil {
		return nil, err
	}

	if informationalCycle {
		s.audit(ctx, model.NewHistoryEntry(work.ID, role.Label(),
			"Informational Sheet Approved",
			"Director approved the informational content and initialized the specsheet.",
			model.HistorySuccess))
	} else {
		s.audit(ctx, model.NewHistoryEntry(work.ID, role.Label(),
			"Specsheet Finalized",
			"Director approved the specsheet. Workflow complete.",
			model.HistorySuccess))
	}
	return work, nil
}

func (s *productService) RetryRevisionSuggestion(ctx context.Context, id uuid.UUID, section string) (interface{}, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rec, ok := p.PendingRevisions[section]
	if !ok {
		return nil, model.NewProductError(model.ErrCodeUnknownSection,
			"no pending revision for section "+section, model.ErrUnknownSection)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.collaboratorTimeout)
	defer cancel()

	suggestion, err := s.generator.GenerateSectionRevision(genCtx, section, rec.OriginalContent, rec.Comment)
	if err != nil {
		// Degrade to the previous suggestion; the aggregate stays untouched.
		log.Warn().Err(err).Str("section", section).Msg("Generator unavailable on retry, keeping previous suggestion")
		return rec.SuggestedContent, nil
	}

	repaired, ok := repairSuggestion(rec.OriginalContent, suggestion)
	if !ok {
		log.Warn().Str("section", section).Msg("Generator output violated type contract on retry, keeping previous suggestion")
		return rec.SuggestedContent, nil
	}

	work := p.Clone()
	work.PendingRevisions[section].SuggestedContent = repaired
	if err := s.commit(ctx, work); err != nil {
		return nil, err
	}
	return repaired, nil
}

func (s *productService) RegenerateSpecsheet(ctx context.Context, id uuid.UUID, role model.Role) (*model.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role != model.RoleWeb {
		return nil, model.NewProductError(model.ErrCodeIllegalTransition,
			fmt.Sprintf("role %q cannot regenerate the specsheet", role), model.ErrIllegalTransition)
	}
	// Regeneration counts as a save by the web team.
	next, err := model.NextStage(p.Stage, role, model.ActionSave)
	if err != nil {
		return nil, err
	}

	work := p.Clone()
	work.SpecsheetDoc = nil
	s.initializeSpecsheet(ctx, work)
	prev := work.Stage
	work.Stage = next
	if prev.IsChangesRequested() && !next.IsChangesRequested() {
		// Regenerating after a rejection supersedes the director's notes.
		work.PendingRevisions = nil
	}

	if err := s.commit(ctx, work); err != nil {
		return nil, err
	}

	s.audit(ctx, model.NewHistoryEntry(work.ID, role.Label(),
		"Specsheet Generated", "Customer-facing content regenerated from the informational sheet.",
		model.HistoryNeutral))
	return work, nil
}

// =====================================================
// SPECSHEET INITIALIZATION
// =====================================================

// initializeSpecsheet fills work.SpecsheetDoc from the informational
// document, preferring the generator and falling back to the deterministic
// copy. Shared fields are reconciled so both documents agree afterwards.
func (s *productService) initializeSpecsheet(ctx context.Context, work *model.Product) {
	genCtx, cancel := context.WithTimeout(ctx, s.collaboratorTimeout)
	defer cancel()

	generated, err := s.generator.GenerateDerivedDocument(genCtx, work.InformationalDoc.Clone())
	if err != nil || generated == nil {
		log.Warn().Err(err).Str("product_id", work.ID.String()).
			Msg("Derived-document generation failed, using direct copy")
		work.SpecsheetDoc = deriveSpecsheet(work.InformationalDoc)
		return
	}
	work.SpecsheetDoc = generated
	reconcileShared(work)
}

// reconcileShared forces the shared fields of a freshly generated specsheet
// into agreement with the informational document. Generated rewrites of the
// description and feature list are kept and written back; the identity
// block and specification table always copy from the informational side.
func reconcileShared(work *model.Product) {
	info, spec := work.InformationalDoc, work.SpecsheetDoc

	if header := info.GetMap(model.DocKeyHeaderInfo); header != nil {
		spec[model.DocKeyHeaderInfo] = cloneForDoc(header)
	}
	if table, ok := model.SpecTableFromAny(info[model.DocKeyTechnicalSpecs]); ok && len(table) > 0 {
		spec[model.DocKeyTechnicalSpecs] = table.ToAny()
	}

	if desc := strings.TrimSpace(spec.GetString(model.DocKeyCustomerDescription)); desc != "" {
		info[model.DocKeyRangeOverview] = desc
	} else if overview := info.GetString(model.DocKeyRangeOverview); overview != "" {
		spec[model.DocKeyCustomerDescription] = overview
	}

	infoFeatures := info.GetStringSlice(model.DocKeySalesArguments)
	specFeatures := spec.GetStringSlice(model.DocKeyKeyFeatures)
	if len(specFeatures) > 0 && len(specFeatures) == len(infoFeatures) {
		// One-to-one rewrite honored on both sides.
		info[model.DocKeySalesArguments] = toAnyList(specFeatures)
	} else if len(infoFeatures) > 0 {
		spec[model.DocKeyKeyFeatures] = toAnyList(infoFeatures)
	}
}

// =====================================================
// BACKGROUND IMAGE RESOLUTION
// =====================================================

func (s *productService) ResolvePrimaryImage(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.ImagePath != nil {
		return nil
	}

	identity := p.InformationalDoc.Identity()
	if identity.SearchQuery() == "" {
		return nil
	}

	resCtx, cancel := context.WithTimeout(ctx, s.collaboratorTimeout)
	defer cancel()

	ref, err := s.resolver.FindPrimaryImage(resCtx, identity)
	if err != nil {
		// Absence of an image is tolerated indefinitely.
		log.Warn().Err(err).Str("product_id", id.String()).Msg("Image resolver unavailable")
		return nil
	}
	if ref == "" {
		return nil
	}

	work := p.Clone()
	work.ImagePath = &ref
	if err := s.commit(ctx, work); err != nil {
		return err
	}
	s.audit(ctx, model.NewHistoryEntry(work.ID, "System",
		"Primary Image Resolved", "A product visual was found and attached.", model.HistoryNeutral))
	return nil
}

func (s *productService) enqueueImageResolution(id uuid.UUID) {
	if s.tasks == nil {
		return
	}
	payload, err := json.Marshal(model.ResolveImagePayload{ProductID: id})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal resolve-image payload")
		return
	}
	task := asynq.NewTask(model.TaskResolvePrimaryImage, payload)
	if _, err := s.tasks.Enqueue(task, asynq.Queue("default"), asynq.MaxRetry(3)); err != nil {
		log.Error().Err(err).Str("product_id", id.String()).Msg("Failed to enqueue image resolution")
	}
}

// =====================================================
// HISTORY / ADMIN
// =====================================================

func (s *productService) History(ctx context.Context, id uuid.UUID) ([]*model.HistoryEntry, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, id)
}

func (s *productService) PurgeAll(ctx context.Context) error {
	if err := s.repo.PurgeAll(ctx); err != nil {
		return model.NewProductError(model.ErrCodeStorage, "failed to purge products", err)
	}
	if s.cache != nil {
		if err := s.cache.DeletePattern(ctx, "product:*"); err != nil {
			log.Error().Err(err).Msg("Failed to clear product cache during purge")
		}
	}
	if s.storage != nil {
		if err := s.storage.RemoveFolder(ctx, storagePrefix); err != nil {
			log.Error().Err(err).Msg("Failed to clear image storage during purge")
		}
	}
	return nil
}

// =====================================================
// INTERNAL HELPERS
// =====================================================

// commit persists the mutated aggregate (optimistic version check) and
// drops the cached copy.
func (s *productService) commit(ctx context.Context, work *model.Product) error {
	if err := s.repo.Update(ctx, work); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, productCacheKey(work.ID)); err != nil {
			log.Error().Err(err).Str("product_id", work.ID.String()).Msg("Failed to invalidate product cache")
		}
	}
	return nil
}

// audit appends a history entry best-effort: a storage failure is logged
// and surfaced to operators but never rolls back the transition.
func (s *productService) audit(ctx context.Context, entry *model.HistoryEntry) {
	if err := s.repo.AppendHistory(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("product_id", entry.ProductID.String()).
			Str("title", entry.Title).
			Msg("Failed to append audit history")
	}
}

func (s *productService) cacheSet(ctx context.Context, p *model.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, productCacheKey(p.ID), p, productCacheTTL); err != nil {
		log.Error().Err(err).Str("product_id", p.ID.String()).Msg("Failed to cache product")
	}
}

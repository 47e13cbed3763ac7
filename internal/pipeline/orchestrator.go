package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/copygen"
	"server/internal/domain"
	"server/internal/render"
	"server/internal/storage"
)

const (
	maxImageRefs = 5

	failureMessage = "Generation failed. Please try again."
)

// CopyGenerator produces the ad-copy variants for a brief.
type CopyGenerator interface {
	Generate(ctx context.Context, brief domain.Brief) copygen.Result
}

// Options tunes the orchestrator. Zero values select defaults.
type Options struct {
	Workers         int
	QueueSize       int
	PipelineTimeout time.Duration
}

// Orchestrator accepts generation requests, persists the job record, and
// runs the pipeline detached from the request: copy generation, per-image
// rendering, artifact upload, terminal status write. Submit returns as soon
// as the record exists; completion is observed by polling.
type Orchestrator struct {
	repo     domain.JobRepository
	store    storage.Store
	copies   CopyGenerator
	renderer render.Renderer
	logger   zerolog.Logger

	queue           chan *domain.GenerationJob
	workers         int
	pipelineTimeout time.Duration
	wg              sync.WaitGroup
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(
	repo domain.JobRepository,
	store storage.Store,
	copies CopyGenerator,
	renderer render.Renderer,
	opts Options,
	logger zerolog.Logger,
) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.PipelineTimeout <= 0 {
		opts.PipelineTimeout = 10 * time.Minute
	}
	return &Orchestrator{
		repo:            repo,
		store:           store,
		copies:          copies,
		renderer:        renderer,
		logger:          logger,
		queue:           make(chan *domain.GenerationJob, opts.QueueSize),
		workers:         opts.Workers,
		pipelineTimeout: opts.PipelineTimeout,
	}
}

// Submit validates the request, creates the durable job record in
// processing state, and hands the job to the worker pool. The returned job
// reflects the record at acceptance time.
func (o *Orchestrator) Submit(ctx context.Context, ownerID string, imageRefs []string, brief domain.Brief) (*domain.GenerationJob, error) {
	brief.Purpose = strings.TrimSpace(brief.Purpose)
	if brief.Purpose == "" {
		return nil, fmt.Errorf("%w: purpose is required", domain.ErrValidation)
	}
	if len(imageRefs) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", domain.ErrValidation)
	}
	if len(imageRefs) > maxImageRefs {
		return nil, fmt.Errorf("%w: at most %d images per request", domain.ErrValidation, maxImageRefs)
	}
	refs := make([]string, 0, len(imageRefs))
	for _, ref := range imageRefs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return nil, fmt.Errorf("%w: image reference must not be blank", domain.ErrValidation)
		}
		refs = append(refs, ref)
	}

	job := &domain.GenerationJob{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		InputImageRefs:  refs,
		Brief:           brief,
		OutputArtifacts: []domain.Artifact{},
		Status:          domain.JobStatusProcessing,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := o.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	// Hand off to a pool worker; when the queue is saturated the job runs
	// on its own goroutine rather than delaying the response.
	select {
	case o.queue <- job:
	default:
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.process(job)
		}()
	}

	o.logger.Info().
		Str("job_id", job.ID).
		Str("owner_id", ownerID).
		Int("images", len(refs)).
		Msg("generation job accepted")
	return job, nil
}

// Run starts the worker pool and blocks until ctx is cancelled and all
// in-flight jobs have finished.
func (o *Orchestrator) Run(ctx context.Context) {
	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-o.queue:
					o.process(job)
				}
			}
		}()
	}
	<-ctx.Done()
	o.wg.Wait()
}

// process runs the full pipeline for one job. It uses a fresh context so
// the job outlives the originating HTTP request, capped by the pipeline
// timeout. Every exit path writes a terminal status.
func (o *Orchestrator) process(job *domain.GenerationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), o.pipelineTimeout)
	defer cancel()

	log := o.logger.With().Str("job_id", job.ID).Logger()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("pipeline panicked")
			o.finalize(ctx, job.ID, domain.JobStatusFailed, failureMessage)
		}
	}()

	copyResult := o.copies.Generate(ctx, job.Brief)
	log.Info().Str("copy_source", copyResult.Source).Msg("copy variants ready")

	var logo []byte
	if ref := job.Brief.Brand.LogoRef; ref != "" {
		data, err := o.store.Fetch(ctx, ref)
		if err != nil {
			log.Warn().Err(err).Str("logo_ref", ref).Msg("logo fetch failed, rendering without logo")
		} else {
			logo = data
		}
	}

	// Each source image is processed independently so one bad input cannot
	// sink the whole job.
	var produced atomic.Int64
	var imgWG sync.WaitGroup
	for idx, ref := range job.InputImageRefs {
		imgWG.Add(1)
		go func(idx int, ref string) {
			defer imgWG.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Int("image", idx).Msg("image pipeline panicked")
				}
			}()
			n := o.processImage(ctx, log, job, ref, logo, copyResult.Copies)
			produced.Add(int64(n))
		}(idx, ref)
	}
	imgWG.Wait()

	count := int(produced.Load())
	elapsed := time.Since(start)
	if count > 0 {
		o.finalize(ctx, job.ID, domain.JobStatusCompleted, "")
		log.Info().Int("artifacts", count).Dur("elapsed", elapsed).Msg("generation completed")
		return
	}
	o.finalize(ctx, job.ID, domain.JobStatusFailed, failureMessage)
	log.Warn().Dur("elapsed", elapsed).Msg("generation produced no artifacts")
}

// processImage renders and uploads all variants for one source image,
// returning how many artifacts it recorded.
func (o *Orchestrator) processImage(ctx context.Context, log zerolog.Logger, job *domain.GenerationJob, ref string, logo []byte, copies []domain.CopyVariant) int {
	source, err := o.store.Fetch(ctx, ref)
	if err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("source image fetch failed")
		return 0
	}

	rendered, err := o.renderer.Render(ctx, source, logo, copies)
	if err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("render failed")
	}

	count := 0
	for _, item := range rendered {
		key := storage.UniqueKey(job.OwnerID, "ad."+item.Format)
		url, err := o.store.Put(ctx, storage.BucketProcessedAds, key, item.Data, "image/jpeg")
		if err != nil {
			log.Warn().Err(err).Str("size", item.SizeTag).Msg("artifact upload failed")
			continue
		}
		artifact := domain.Artifact{
			URL:     url,
			SizeTag: item.SizeTag,
			Format:  item.Format,
			Copy:    item.Copy,
		}
		if err := o.repo.AppendArtifact(ctx, job.ID, artifact); err != nil {
			log.Warn().Err(err).Str("size", item.SizeTag).Msg("artifact record failed")
			continue
		}
		count++
	}
	return count
}

// finalize writes the terminal status, tolerating a concurrent writer
// having finalized first.
func (o *Orchestrator) finalize(ctx context.Context, jobID string, status domain.JobStatus, errMsg string) {
	// Terminal writes must land even when the pipeline context has
	// expired; give them a short budget of their own.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}
	if err := o.repo.Finalize(ctx, jobID, status, errMsg); err != nil {
		if errors.Is(err, domain.ErrJobFinalized) {
			return
		}
		o.logger.Error().Err(err).Str("job_id", jobID).Str("status", string(status)).Msg("terminal status write failed")
	}
}

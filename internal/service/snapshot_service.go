package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
	"github.com/noah-isme/sma-course-api/pkg/jobs"
)

// Snapshot job outcomes reported to metrics.
const (
	SnapshotResultArchived = "archived"
	SnapshotResultFailed   = "failed"
)

const snapshotJobType = "term_snapshot"

type snapshotStore interface {
	Create(ctx context.Context, snapshot *models.TermSnapshot) error
	GetByID(ctx context.Context, id string) (*models.TermSnapshot, error)
	List(ctx context.Context, termCode string, limit int) ([]models.TermSnapshot, error)
}

type termArchive interface {
	Capture() (models.TermSnapshot, error)
	RestoreDocument(ctx context.Context, document string) (*models.Term, error)
}

type snapshotMetrics interface {
	RecordSnapshotJob(result string)
	ObserveDBQuery(label string, duration time.Duration)
}

// SnapshotConfig tunes the archival worker pool.
type SnapshotConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// SnapshotService archives encoded term documents in the background and
// restores them into the loaded term on request.
type SnapshotService struct {
	repo    snapshotStore
	terms   termArchive
	metrics snapshotMetrics
	queue   *jobs.Queue[models.TermSnapshot]
	logger  *zap.Logger
}

// NewSnapshotService wires the archival queue. Call Start before Archive.
func NewSnapshotService(repo snapshotStore, terms termArchive, metrics snapshotMetrics, cfg SnapshotConfig, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SnapshotService{repo: repo, terms: terms, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("snapshots", s.persist, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	s.queue.OnGiveUp(func(job jobs.Job[models.TermSnapshot], err error) {
		s.record(SnapshotResultFailed)
		s.logger.Error("snapshot dropped", zap.String("snapshot_id", job.ID), zap.String("term", job.Payload.TermCode), zap.Error(err))
	})
	return s
}

// Start launches the archival workers.
func (s *SnapshotService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop halts the workers.
func (s *SnapshotService) Stop() {
	s.queue.Stop()
}

// Wait blocks until every accepted snapshot has been archived or dropped.
func (s *SnapshotService) Wait() {
	s.queue.Wait()
}

// Drain waits for queued snapshots until ctx ends. Snapshots left when Stop
// runs are dropped and counted as failed.
func (s *SnapshotService) Drain(ctx context.Context) error {
	return s.queue.Drain(ctx)
}

// Archive encodes the loaded term now and queues it for persistence. The
// document is captured before returning, so later mutations do not leak in.
func (s *SnapshotService) Archive(ctx context.Context) (*models.SnapshotTicket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot, err := s.terms.Capture()
	if err != nil {
		return nil, err
	}
	snapshot.ID = uuid.NewString()
	snapshot.CreatedAt = time.Now().UTC()

	job := jobs.Job[models.TermSnapshot]{ID: snapshot.ID, Type: snapshotJobType, Payload: snapshot}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue snapshot")
	}
	s.logger.Info("snapshot queued", zap.String("snapshot_id", snapshot.ID), zap.String("term", snapshot.TermCode))
	return &models.SnapshotTicket{ID: snapshot.ID, TermCode: snapshot.TermCode, Status: models.SnapshotStatusQueued}, nil
}

// List returns archived snapshots, newest first.
func (s *SnapshotService) List(ctx context.Context, termCode string, limit int) ([]models.TermSnapshot, error) {
	start := time.Now()
	snapshots, err := s.repo.List(ctx, termCode, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list snapshots")
	}
	s.observe("snapshot_list", start)
	return snapshots, nil
}

// Restore replaces the loaded term with an archived snapshot.
func (s *SnapshotService) Restore(ctx context.Context, id string) (*models.Term, error) {
	start := time.Now()
	snapshot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "snapshot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load snapshot")
	}
	s.observe("snapshot_get", start)

	term, err := s.terms.RestoreDocument(ctx, snapshot.Document)
	if err != nil {
		return nil, err
	}
	s.logger.Info("snapshot restored", zap.String("snapshot_id", id), zap.String("term", term.Code))
	return term, nil
}

func (s *SnapshotService) persist(ctx context.Context, job jobs.Job[models.TermSnapshot]) error {
	snapshot := job.Payload
	start := time.Now()
	if err := s.repo.Create(ctx, &snapshot); err != nil {
		return err
	}
	s.observe("snapshot_create", start)
	s.record(SnapshotResultArchived)
	s.logger.Debug("snapshot archived", zap.String("snapshot_id", snapshot.ID), zap.Int("courses", snapshot.CourseCount))
	return nil
}

func (s *SnapshotService) observe(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

func (s *SnapshotService) record(result string) {
	if s.metrics != nil {
		s.metrics.RecordSnapshotJob(result)
	}
}

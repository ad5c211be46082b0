package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"

	"trash-report-service/jsonutil"
	"trash-report-service/metrics"
	"trash-report-service/models"
	"trash-report-service/storage"
)

var (
	// ErrStorageFailure covers blob store and durable write failures.
	ErrStorageFailure = errors.New("storage failure")

	// ErrAssessmentMissing means the classifier responded without any JSON
	// object in its text.
	ErrAssessmentMissing = errors.New("assessment missing from classifier response")

	// ErrAssessmentMalformed means the classifier embedded something
	// brace-shaped that does not parse as JSON.
	ErrAssessmentMalformed = errors.New("assessment malformed")

	// ErrAssessmentInvalid means the decoded assessment has no usable
	// non-negative numeric reward field.
	ErrAssessmentInvalid = errors.New("assessment invalid")
)

// Classifier judges a report image and returns the raw model text.
type Classifier interface {
	Analyze(ctx context.Context, image []byte, latitude, longitude float64) (string, error)
}

// ReportStore persists reports.
type ReportStore interface {
	CreateReport(ctx context.Context, r *models.Report) (int64, error)
}

// RewardStore credits the per-user ledger.
type RewardStore interface {
	CreditPoints(ctx context.Context, userID string, points int64, displayNameSource string) error
}

// SubmitService runs the submission pipeline: store the image, classify it,
// extract and validate the assessment, persist the report, credit the ledger.
type SubmitService struct {
	blobs             storage.BlobStore
	classifier        Classifier
	reports           ReportStore
	rewards           RewardStore
	classifierTimeout time.Duration
}

func NewSubmitService(blobs storage.BlobStore, classifier Classifier, reports ReportStore, rewards RewardStore, classifierTimeout time.Duration) *SubmitService {
	return &SubmitService{
		blobs:             blobs,
		classifier:        classifier,
		reports:           reports,
		rewards:           rewards,
		classifierTimeout: classifierTimeout,
	}
}

// Submit processes one report submission for the given verified user. Nothing
// is persisted unless the assessment extracted from the classifier response
// validates; a credit failure after the report row is written is counted and
// logged rather than rolled back.
func (s *SubmitService) Submit(ctx context.Context, userID, email string, image []byte, imageName string, latitude, longitude float64) (*models.SubmitResult, error) {
	locator, err := s.blobs.Put(image, imageName)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("storage_error").Inc()
		return nil, fmt.Errorf("%w: storing image: %v", ErrStorageFailure, err)
	}

	cctx, cancel := context.WithTimeout(ctx, s.classifierTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.classifier.Analyze(cctx, image, latitude, longitude)
	metrics.ClassifierDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("classifier_error").Inc()
		return nil, err
	}

	decoded, err := jsonutil.ExtractObject(raw)
	if err != nil {
		log.Errorf("Unusable classifier response for user %s: %v, raw text: %q", userID, err, raw)
		if errors.Is(err, jsonutil.ErrNoObject) {
			metrics.SubmissionsTotal.WithLabelValues("assessment_missing").Inc()
			return nil, fmt.Errorf("%w: %v", ErrAssessmentMissing, err)
		}
		metrics.SubmissionsTotal.WithLabelValues("assessment_malformed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrAssessmentMalformed, err)
	}

	reward, err := rewardFromAssessment(decoded)
	if err != nil {
		log.Errorf("Invalid assessment for user %s: %v, raw text: %q", userID, err, raw)
		metrics.SubmissionsTotal.WithLabelValues("assessment_invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrAssessmentInvalid, err)
	}

	report := &models.Report{
		Image:      locator,
		UserID:     userID,
		Latitude:   latitude,
		Longitude:  longitude,
		Assessment: models.Assessment(decoded),
	}

	seq, err := s.reports.CreateReport(ctx, report)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("storage_error").Inc()
		return nil, fmt.Errorf("%w: persisting report: %v", ErrStorageFailure, err)
	}

	// The report row exists from here on. A failed credit leaves it without
	// a matching ledger increment; the counter below is the reconciliation
	// signal for that gap.
	if err := s.rewards.CreditPoints(ctx, userID, reward, email); err != nil {
		metrics.CreditFailureTotal.Inc()
		metrics.SubmissionsTotal.WithLabelValues("credit_error").Inc()
		log.Errorf("Report %d persisted but crediting %d points to user %s failed: %v", seq, reward, userID, err)
		return nil, fmt.Errorf("%w: crediting points: %v", ErrStorageFailure, err)
	}

	log.Infof("Report %d from user %s assessed, %d points credited", seq, userID, reward)
	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()

	return &models.SubmitResult{
		ReportSeq:  seq,
		Assessment: models.Assessment(decoded),
	}, nil
}

// rewardFromAssessment validates the reward field contract: present, numeric,
// non-negative. Fractional values are truncated toward zero.
func rewardFromAssessment(a map[string]any) (int64, error) {
	v, ok := a["reward"]
	if !ok {
		return 0, errors.New("no reward field")
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("reward field is not numeric: %v", v)
	}
	if n < 0 {
		return 0, fmt.Errorf("reward field is negative: %v", n)
	}
	return int64(n), nil
}

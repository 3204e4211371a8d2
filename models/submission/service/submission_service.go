// Package service accepts visitor submissions: embed authorization, the
// publication gate, validation, idempotency and persistence.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/internal/idempotency"
	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/models/embed"
	"github.com/formcraft/formcraft-backend/models/submission"
	"github.com/formcraft/formcraft-backend/services"
	"github.com/formcraft/formcraft-backend/types"
)

const (
	MsgFormIDMismatch        = "Form ID mismatch"
	MsgFormNotFound          = "Form not found"
	MsgNotAccepting          = "Form is not accepting submissions"
	MsgMissingRequiredFields = "Missing required fields"
	MsgValidationFailed      = "Validation failed"
	MsgInProgress            = "Submission already in progress"
	MsgSubmitFailed          = "Failed to submit form"

	unknownIP           = "unknown"
	notificationTimeout = 15 * time.Second
	idempotencyTimeout  = 3 * time.Second
)

// EmbedAuthorizer decides whether an embed key may be used from a domain.
type EmbedAuthorizer interface {
	Authorize(ctx context.Context, embedKey, refererDomain string) (embed.Decision, error)
}

// IdempotencyStore guards against duplicate submissions carrying the same key.
type IdempotencyStore interface {
	Reserve(ctx context.Context, formID, key string) (idempotency.Reservation, error)
	Complete(ctx context.Context, formID, key, submissionID string) error
	Release(ctx context.Context, formID, key string) error
}

// Notifier delivers the owner notification for an accepted submission.
type Notifier interface {
	SendSubmissionNotification(ctx context.Context, to string, form *types.Form, sub *types.Submission) error
}

// SubmitInput is a submit request with the headers the service needs.
type SubmitInput struct {
	Request        types.SubmitRequest
	Referer        string
	RefererDomain  string
	UserAgent      string
	ForwardedFor   string
	IdempotencyKey string
}

type SubmissionService struct {
	authorizer  EmbedAuthorizer
	forms       store.FormStore
	submissions store.SubmissionStore
	idempotency IdempotencyStore
	jobs        services.JobSubmitter
	notifier    Notifier
	now         func() time.Time
}

// NewSubmissionService wires the submit flow. forms must read the primary
// store, never a cache. idem and notifier may be nil to disable those steps.
func NewSubmissionService(
	authorizer EmbedAuthorizer,
	forms store.FormStore,
	submissions store.SubmissionStore,
	idem IdempotencyStore,
	jobs services.JobSubmitter,
	notifier Notifier,
) *SubmissionService {
	return &SubmissionService{
		authorizer:  authorizer,
		forms:       forms,
		submissions: submissions,
		idempotency: idem,
		jobs:        jobs,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Submit runs the full acceptance flow and stores the normalized payload.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*types.SubmitResult, error) {
	log := logger.GetLogger()
	req := in.Request

	if req.EmbedKey != "" {
		decision, err := s.authorizer.Authorize(ctx, req.EmbedKey, in.RefererDomain)
		if err != nil {
			return nil, apperrors.PersistenceFailed(MsgSubmitFailed, err)
		}
		if !decision.Authorized {
			log.Infow("Submission denied by embed policy",
				"embedKey", logger.MaskEmbedKey(req.EmbedKey), "referer", in.RefererDomain, "reason", decision.Reason)
			return nil, apperrors.EmbedDenied(decision.Reason)
		}
		if decision.FormID != req.FormID {
			return nil, apperrors.Forbidden(MsgFormIDMismatch, "")
		}
	}

	if strings.TrimSpace(req.FormID) == "" {
		return nil, apperrors.NotFound("Form", "")
	}
	form, err := s.forms.GetForm(ctx, req.FormID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Form", req.FormID)
		}
		return nil, apperrors.PersistenceFailed(MsgSubmitFailed, err)
	}
	if !form.AcceptsSubmissions() {
		return nil, apperrors.Forbidden(MsgNotAccepting, string(form.Status))
	}

	payload := req.Data
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if missing := submission.MissingRequiredFields(form.Fields, payload); len(missing) > 0 {
		return nil, apperrors.ValidationFailed(MsgMissingRequiredFields, "").WithData("fields", missing)
	}
	result := submission.Validate(form.Fields, payload)
	if !result.Valid {
		return nil, apperrors.ValidationFailed(MsgValidationFailed, "").WithData("errors", result.Errors)
	}

	reserved := false
	if in.IdempotencyKey != "" && s.idempotency != nil {
		res, err := s.idempotency.Reserve(ctx, form.ID, in.IdempotencyKey)
		switch {
		case err != nil:
			log.Warnw("Idempotency store unavailable, accepting submission without it", "formID", form.ID, "error", err)
		case res.State == idempotency.Completed:
			return &types.SubmitResult{SubmissionID: res.SubmissionID, Replayed: true}, nil
		case res.State == idempotency.InFlight:
			return nil, apperrors.NewConflictError(MsgInProgress, "")
		default:
			reserved = true
		}
	}

	ip := clientIP(in.ForwardedFor)
	now := s.now().UTC()
	sub := &types.Submission{
		FormID: form.ID,
		Data:   result.Data,
		Metadata: types.SubmissionMetadata{
			UserAgent: in.UserAgent,
			IPAddress: ip,
			Referer:   in.Referer,
			Timestamp: now,
			EmbedKey:  req.EmbedKey,
		},
		SubmitterIP: ip,
		SubmittedAt: now,
	}
	if err := s.submissions.CreateSubmission(ctx, sub); err != nil {
		if reserved {
			idemCtx, cancel := detached(ctx)
			if relErr := s.idempotency.Release(idemCtx, form.ID, in.IdempotencyKey); relErr != nil {
				log.Warnw("Failed to release idempotency key", "formID", form.ID, "error", relErr)
			}
			cancel()
		}
		return nil, apperrors.PersistenceFailed(MsgSubmitFailed, err)
	}

	if reserved {
		idemCtx, cancel := detached(ctx)
		if err := s.idempotency.Complete(idemCtx, form.ID, in.IdempotencyKey, sub.ID); err != nil {
			log.Warnw("Failed to complete idempotency key", "formID", form.ID, "submissionID", sub.ID, "error", err)
		}
		cancel()
	}

	log.Infow("Submission accepted", "formID", form.ID, "submissionID", sub.ID, "ip", logger.MaskIP(ip))
	s.notify(form, sub)

	return &types.SubmitResult{SubmissionID: sub.ID}, nil
}

// detached outlives a client disconnect so the idempotency key is settled
// either way.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), idempotencyTimeout)
}

func (s *SubmissionService) notify(form *types.Form, sub *types.Submission) {
	to := form.Settings.NotifyEmail
	if to == "" || s.notifier == nil || s.jobs == nil {
		return
	}
	queued := s.jobs.Submit(services.Job{
		Name: "submission-notification",
		Execute: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, notificationTimeout)
			defer cancel()
			return s.notifier.SendSubmissionNotification(ctx, to, form, sub)
		},
	})
	if !queued {
		logger.GetLogger().Warnw("Submission notification dropped", "formID", form.ID, "submissionID", sub.ID)
	}
}

// clientIP returns the first X-Forwarded-For entry, or "unknown".
func clientIP(forwardedFor string) string {
	first, _, _ := strings.Cut(forwardedFor, ",")
	if ip := strings.TrimSpace(first); ip != "" {
		return ip
	}
	return unknownIP
}

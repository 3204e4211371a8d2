package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/internal/idempotency"
	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/internal/store/mocks"
	"github.com/formcraft/formcraft-backend/models/embed"
	"github.com/formcraft/formcraft-backend/services"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdempotency struct {
	mock.Mock
}

func (m *mockIdempotency) Reserve(ctx context.Context, formID, key string) (idempotency.Reservation, error) {
	args := m.Called(ctx, formID, key)
	return args.Get(0).(idempotency.Reservation), args.Error(1)
}

func (m *mockIdempotency) Complete(ctx context.Context, formID, key, submissionID string) error {
	return m.Called(ctx, formID, key, submissionID).Error(0)
}

func (m *mockIdempotency) Release(ctx context.Context, formID, key string) error {
	return m.Called(ctx, formID, key).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendSubmissionNotification(ctx context.Context, to string, form *types.Form, sub *types.Submission) error {
	return m.Called(ctx, to, form, sub).Error(0)
}

type inlineJobs struct{ names []string }

func (j *inlineJobs) Submit(job services.Job) bool {
	j.names = append(j.names, job.Name)
	_ = job.Execute(context.Background())
	return true
}

type fixture struct {
	embeds *mocks.EmbedStore
	forms  *mocks.FormStore
	subs   *mocks.SubmissionStore
	idem   *mockIdempotency
	notify *mockNotifier
	jobs   *inlineJobs
	svc    *SubmissionService
}

var fixedNow = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		embeds: new(mocks.EmbedStore),
		forms:  new(mocks.FormStore),
		subs:   new(mocks.SubmissionStore),
		idem:   new(mockIdempotency),
		notify: new(mockNotifier),
		jobs:   &inlineJobs{},
	}
	f.svc = NewSubmissionService(embed.NewAuthorizer(f.embeds, true), f.forms, f.subs, f.idem, f.jobs, f.notify)
	f.svc.now = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		f.embeds.AssertExpectations(t)
		f.forms.AssertExpectations(t)
		f.subs.AssertExpectations(t)
		f.idem.AssertExpectations(t)
		f.notify.AssertExpectations(t)
	})
	return f
}

func contactForm(status types.FormStatus) *types.Form {
	return &types.Form{
		ID:     "form-1",
		Name:   "Contact",
		Status: status,
		Fields: types.Fields{
			&types.TextField{FieldBase: types.FieldBase{ID: "name", Required: true}, Type: types.FieldTypeText},
			&types.TextField{FieldBase: types.FieldBase{ID: "email", Required: true}, Type: types.FieldTypeEmail, Rules: mustTextRules(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)},
			&types.NumberField{FieldBase: types.FieldBase{ID: "age"}},
		},
	}
}

func mustTextRules(pattern string) types.TextRules {
	f, err := types.ParseField(types.FieldSpec{ID: "x", Type: types.FieldTypeText, Validation: &types.ValidationSpec{Pattern: pattern}})
	if err != nil {
		panic(err)
	}
	return f.(*types.TextField).Rules
}

func requireAppError(t *testing.T, err error, status int, msg string) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.GetHTTPStatus())
	assert.Equal(t, msg, appErr.Message)
	return appErr
}

func TestSubmit_Accepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.forms.On("GetForm", ctx, "form-1").Return(contactForm(types.FormStatusPublished), nil)
	f.subs.On("CreateSubmission", ctx, mock.MatchedBy(func(s *types.Submission) bool {
		_, unknownKept := s.Data["extra"]
		return s.Data["age"] == float64(42) && !unknownKept &&
			s.Metadata.IPAddress == "203.0.113.7" && s.SubmitterIP == "203.0.113.7" &&
			s.Metadata.Timestamp.Equal(fixedNow) && s.Metadata.UserAgent == "curl/8"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*types.Submission).ID = "sub-1"
	}).Return(nil)

	res, err := f.svc.Submit(ctx, SubmitInput{
		Request: types.SubmitRequest{FormID: "form-1", Data: map[string]interface{}{
			"name": "Ann", "email": "ann@example.com", "age": "42", "extra": "dropped",
		}},
		UserAgent:    "curl/8",
		ForwardedFor: " 203.0.113.7 , 10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", res.SubmissionID)
	assert.False(t, res.Replayed)
	assert.Empty(t, f.jobs.names)
}

func TestSubmit_EmbedChecks(t *testing.T) {
	ctx := context.Background()
	grant := &types.EmbedGrantDetails{
		Grant: types.EmbedGrant{EmbeddingKey: "key-1", FormID: "form-1"},
		Site:  types.Site{Domain: "example.com", IsApproved: true},
		Form:  *contactForm(types.FormStatusPublished),
	}

	t.Run("unknown key", func(t *testing.T) {
		f := newFixture(t)
		f.embeds.On("GetGrantDetails", ctx, "nope").Return(nil, store.ErrNotFound)

		_, err := f.svc.Submit(ctx, SubmitInput{Request: types.SubmitRequest{FormID: "form-1", EmbedKey: "nope"}})
		requireAppError(t, err, http.StatusForbidden, embed.ReasonInvalidKey)
	})

	t.Run("wrong domain", func(t *testing.T) {
		f := newFixture(t)
		f.embeds.On("GetGrantDetails", ctx, "key-1").Return(grant, nil)

		_, err := f.svc.Submit(ctx, SubmitInput{Request: types.SubmitRequest{FormID: "form-1", EmbedKey: "key-1"}, RefererDomain: "example.com.evil.com"})
		requireAppError(t, err, http.StatusForbidden, embed.ReasonUnauthorizedDomain)
	})

	t.Run("form id mismatch", func(t *testing.T) {
		f := newFixture(t)
		f.embeds.On("GetGrantDetails", ctx, "key-1").Return(grant, nil)

		_, err := f.svc.Submit(ctx, SubmitInput{Request: types.SubmitRequest{FormID: "form-2", EmbedKey: "key-1"}, RefererDomain: "www.example.com"})
		requireAppError(t, err, http.StatusForbidden, MsgFormIDMismatch)
	})

	t.Run("lookup failure", func(t *testing.T) {
		f := newFixture(t)
		f.embeds.On("GetGrantDetails", ctx, "key-1").Return(nil, errors.New("timeout"))

		_, err := f.svc.Submit(ctx, SubmitInput{Request: types.SubmitRequest{FormID: "form-1", EmbedKey: "key-1"}})
		requireAppError(t, err, http.StatusInternalServerError, MsgSubmitFailed)
	})
}

func TestSubmit_FormNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.forms.On("GetForm", ctx, "missing").Return(nil, store.ErrNotFound)

	_, err := f.svc.Submit(ctx, SubmitInput{Request: types.SubmitRequest{FormID: "missing"}})
	requireAppError(t, err, http.StatusNotFound, MsgFormNotFound)
}

func TestSubmit_PublishThenArchiveRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form := contactForm(types.FormStatusDraft)
	require.NoError(t, form.Publish(fixedNow))
	require.NoError(t, form.Archive(fixedNow.Add(time.Minute)))
	f.forms.On("GetForm", ctx, "form-1").Return(form, nil)

	_, err := f.svc.Submit(ctx, SubmitInput{Request: types.SubmitRequest{FormID: "form-1", Data: map[string]interface{}{"name": "Ann", "email": "ann@example.com"}}})
	requireAppError(t, err, http.StatusForbidden, MsgNotAccepting)
}

func TestSubmit_MissingRequiredFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.forms.On("GetForm", ctx, "form-1").Return(contactForm(types.FormStatusPublished), nil)

	_, err := f.svc.Submit(ctx, SubmitInput{Request: types.SubmitRequest{FormID: "form-1", Data: map[string]interface{}{"name": ""}}})
	appErr := requireAppError(t, err, http.StatusBadRequest, MsgMissingRequiredFields)
	assert.Equal(t, []string{"name", "email"}, appErr.Data["fields"])
}

func TestSubmit_InvalidEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.forms.On("GetForm", ctx, "form-1").Return(contactForm(types.FormStatusPublished), nil)

	_, err := f.svc.Submit(ctx, SubmitInput{Request: types.SubmitRequest{FormID: "form-1", Data: map[string]interface{}{"name": "Ann", "email": "bad-email"}}})
	appErr := requireAppError(t, err, http.StatusBadRequest, MsgValidationFailed)
	errs := appErr.Data["errors"].(map[string]string)
	assert.Equal(t, "Invalid format", errs["email"])
	assert.NotContains(t, errs, "name")
	f.subs.AssertNotCalled(t, "CreateSubmission", mock.Anything, mock.Anything)
}

func TestSubmit_Idempotency(t *testing.T) {
	ctx := context.Background()
	valid := map[string]interface{}{"name": "Ann", "email": "ann@example.com"}
	input := SubmitInput{Request: types.SubmitRequest{FormID: "form-1", Data: valid}, IdempotencyKey: "idem-1"}

	t.Run("first request completes key", func(t *testing.T) {
		f := newFixture(t)
		f.forms.On("GetForm", ctx, "form-1").Return(contactForm(types.FormStatusPublished), nil)
		f.idem.On("Reserve", ctx, "form-1", "idem-1").Return(idempotency.Reservation{State: idempotency.Reserved}, nil)
		f.subs.On("CreateSubmission", ctx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*types.Submission).ID = "sub-1"
		}).Return(nil)
		f.idem.On("Complete", mock.Anything, "form-1", "idem-1", "sub-1").Return(nil)

		res, err := f.svc.Submit(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "sub-1", res.SubmissionID)
	})

	t.Run("replay", func(t *testing.T) {
		f := newFixture(t)
		f.forms.On("GetForm", ctx, "form-1").Return(contactForm(types.FormStatusPublished), nil)
		f.idem.On("Reserve", ctx, "form-1", "idem-1").Return(idempotency.Reservation{State: idempotency.Completed, SubmissionID: "sub-1"}, nil)

		res, err := f.svc.Submit(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, &types.SubmitResult{SubmissionID: "sub-1", Replayed: true}, res)
	})

	t.Run("in flight", func(t *testing.T) {
		f := newFixture(t)
		f.forms.On("GetForm", ctx, "form-1").Return(contactForm(types.FormStatusPublished), nil)
		f.idem.On("Reserve", ctx, "form-1", "idem-1").Return(idempotency.Reservation{State: idempotency.InFlight}, nil)

		_, err := f.svc.Submit(ctx, input)
		requireAppError(t, err, http.StatusConflict, MsgInProgress)
	})

	t.Run("failed insert releases key", func(t *testing.T) {
		f := newFixture(t)
		f.forms.On("GetForm", ctx, "form-1").Return(contactForm(types.FormStatusPublished), nil)
		f.idem.On("Reserve", ctx, "form-1", "idem-1").Return(idempotency.Reservation{State: idempotency.Reserved}, nil)
		f.subs.On("CreateSubmission", ctx, mock.Anything).Return(errors.New("disk full"))
		f.idem.On("Release", mock.Anything, "form-1", "idem-1").Return(nil)

		_, err := f.svc.Submit(ctx, input)
		requireAppError(t, err, http.StatusInternalServerError, MsgSubmitFailed)
	})

	t.Run("client disconnect still releases key", func(t *testing.T) {
		f := newFixture(t)
		reqCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		f.forms.On("GetForm", reqCtx, "form-1").Return(contactForm(types.FormStatusPublished), nil)
		f.idem.On("Reserve", reqCtx, "form-1", "idem-1").Return(idempotency.Reservation{State: idempotency.Reserved}, nil)
		f.subs.On("CreateSubmission", reqCtx, mock.Anything).Run(func(mock.Arguments) {
			cancel()
		}).Return(context.Canceled)
		f.idem.On("Release", mock.MatchedBy(func(c context.Context) bool {
			_, hasDeadline := c.Deadline()
			return c.Err() == nil && hasDeadline
		}), "form-1", "idem-1").Return(nil)

		_, err := f.svc.Submit(reqCtx, input)
		requireAppError(t, err, http.StatusInternalServerError, MsgSubmitFailed)
	})

	t.Run("client disconnect after insert still completes key", func(t *testing.T) {
		f := newFixture(t)
		reqCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		f.forms.On("GetForm", reqCtx, "form-1").Return(contactForm(types.FormStatusPublished), nil)
		f.idem.On("Reserve", reqCtx, "form-1", "idem-1").Return(idempotency.Reservation{State: idempotency.Reserved}, nil)
		f.subs.On("CreateSubmission", reqCtx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*types.Submission).ID = "sub-7"
			cancel()
		}).Return(nil)
		f.idem.On("Complete", mock.MatchedBy(func(c context.Context) bool {
			return c.Err() == nil
		}), "form-1", "idem-1", "sub-7").Return(nil)

		res, err := f.svc.Submit(reqCtx, input)
		require.NoError(t, err)
		assert.Equal(t, "sub-7", res.SubmissionID)
	})

	t.Run("redis down fails open", func(t *testing.T) {
		f := newFixture(t)
		f.forms.On("GetForm", ctx, "form-1").Return(contactForm(types.FormStatusPublished), nil)
		f.idem.On("Reserve", ctx, "form-1", "idem-1").Return(idempotency.Reservation{}, errors.New("dial tcp: refused"))
		f.subs.On("CreateSubmission", ctx, mock.Anything).Return(nil)

		_, err := f.svc.Submit(ctx, input)
		require.NoError(t, err)
	})
}

func TestSubmit_NotifiesOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form := contactForm(types.FormStatusPublished)
	form.Settings.NotifyEmail = "owner@example.com"
	f.forms.On("GetForm", ctx, "form-1").Return(form, nil)
	f.subs.On("CreateSubmission", ctx, mock.Anything).Return(nil)
	f.notify.On("SendSubmissionNotification", mock.Anything, "owner@example.com", form, mock.AnythingOfType("*types.Submission")).Return(nil)

	_, err := f.svc.Submit(ctx, SubmitInput{Request: types.SubmitRequest{FormID: "form-1", Data: map[string]interface{}{"name": "Ann", "email": "ann@example.com"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"submission-notification"}, f.jobs.names)
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "unknown", clientIP(""))
	assert.Equal(t, "unknown", clientIP(" , 10.0.0.1"))
	assert.Equal(t, "198.51.100.2", clientIP("198.51.100.2"))
}

package assignments

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/assetdeskhq/assetdesk-backend/internal/activity"
	"github.com/assetdeskhq/assetdesk-backend/internal/assets"
	"github.com/assetdeskhq/assetdesk-backend/internal/notifications"
	"github.com/assetdeskhq/assetdesk-backend/pkg/config"
	"github.com/assetdeskhq/assetdesk-backend/pkg/db"
	"github.com/assetdeskhq/assetdesk-backend/pkg/db/models"
	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdeskhq/assetdesk-backend/pkg/errors"
	"github.com/assetdeskhq/assetdesk-backend/pkg/logger"
	"github.com/assetdeskhq/assetdesk-backend/pkg/metrics"
	"github.com/assetdeskhq/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

const maxReasonLength = 255

// Service is the assignment lifecycle engine. Every transition runs in a
// single transaction with row locks taken in a fixed order (assignment, then
// asset, then competing assignments) so concurrent admin sessions serialize
// instead of deadlocking.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Assignment, error)
	Accept(ctx context.Context, input AcceptInput) (*models.Assignment, error)
	Refuse(ctx context.Context, input RefuseInput) (*models.Assignment, error)
	RequestReturn(ctx context.Context, input RequestReturnInput) (*models.Assignment, error)
	ApproveReturn(ctx context.Context, input ApproveReturnInput) (*models.Assignment, error)
	RejectReturn(ctx context.Context, input RejectReturnInput) (*models.Assignment, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Assignment, error)
	Revert(ctx context.Context, input RevertInput) (*RevertResult, error)
	Delete(ctx context.Context, assignmentID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	repo       Repository
	assetsRepo assets.Repository
	notifRepo  notifications.Repository
	tx         txRunner
	recorder   activity.Recorder
	dispatcher notifications.Dispatcher
	metrics    *metrics.LifecycleMetrics
	logg       *logger.Logger
	terms      config.TermsConfig
}

// NewService wires the lifecycle engine with its collaborators.
func NewService(
	repo Repository,
	assetsRepo assets.Repository,
	notifRepo notifications.Repository,
	tx txRunner,
	recorder activity.Recorder,
	dispatcher notifications.Dispatcher,
	lifecycleMetrics *metrics.LifecycleMetrics,
	logg *logger.Logger,
	terms config.TermsConfig,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "assignments repository required")
	}
	if assetsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "assets repository required")
	}
	if notifRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity recorder required")
	}
	if dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification dispatcher required")
	}
	return &service{
		repo:       repo,
		assetsRepo: assetsRepo,
		notifRepo:  notifRepo,
		tx:         tx,
		recorder:   recorder,
		dispatcher: dispatcher,
		metrics:    lifecycleMetrics,
		logg:       logg,
		terms:      terms,
	}, nil
}

// runTx executes fn in a transaction, retrying once on transient deadlock or
// serialization failures.
func (s *service) runTx(ctx context.Context, op Operation, fn func(tx *gorm.DB) error) error {
	err := s.tx.WithTx(ctx, fn)
	if err != nil && db.IsRetryable(err) {
		s.metrics.IncRetry(string(op))
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "operation", string(op)), "retrying transaction after transient failure")
		}
		err = s.tx.WithTx(ctx, fn)
	}
	return err
}

func (s *service) observe(op Operation, start time.Time, err error) {
	s.metrics.ObserveDuration(string(op), time.Since(start))
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.IncTransition(string(op), outcome)
}

func (s *service) Create(ctx context.Context, input CreateInput) (result *models.Assignment, err error) {
	defer func(start time.Time) { s.observe(OpCreate, start, err) }(time.Now())

	if input.AssetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.TargetType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target type")
	}
	if input.AssignedDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assigned date required")
	}
	switch input.TargetType {
	case enums.AssignmentTargetStaff:
		if input.StaffID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required for staff assignments")
		}
	case enums.AssignmentTargetLocation:
		if input.Location == nil || strings.TrimSpace(*input.Location) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location required for location assignments")
		}
	case enums.AssignmentTargetDepartment:
		if input.Department == nil || strings.TrimSpace(*input.Department) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "department required for department assignments")
		}
	}

	var created *models.Assignment
	err = s.runTx(ctx, OpCreate, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assetsRepo := s.assetsRepo.WithTx(tx)

		asset, err := assetsRepo.FindByIDForUpdate(ctx, input.AssetID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset")
		}

		open, err := repo.CountOpenForAsset(ctx, asset.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open assignments")
		}
		if open > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "asset already assigned")
		}

		if asset.Status == enums.AssetStatusRetired || asset.Status == enums.AssetStatusInRepair {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("asset is %s and cannot be assigned", asset.Status))
		}
		if input.TargetType == enums.AssignmentTargetStaff && !asset.AssetType.StaffAssignable() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("asset type %s cannot be assigned to staff", asset.AssetType))
		}
		if len(input.AccessoriesIssued) > 0 && !asset.AssetType.AllowsAccessories() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("asset type %s does not take accessories", asset.AssetType))
		}

		assignment := &models.Assignment{
			AssetID:            asset.ID,
			TargetType:         input.TargetType,
			StaffID:            input.StaffID,
			ReceiverUserID:     input.ReceiverUserID,
			Location:           input.Location,
			Department:         input.Department,
			Status:             enums.AssignmentStatusPendingAcceptance,
			AssignedDate:       input.AssignedDate,
			ExpectedReturnDate: input.ExpectedReturnDate,
			CreatedBy:          input.ActorID,
			Notes:              input.Notes,
			IssueCondition:     input.IssueCondition,
			AccessoriesIssued:  input.AccessoriesIssued,
		}
		if err := repo.Create(ctx, assignment); err != nil {
			if db.IsUniqueViolation(err, "uq_assignments_open_per_asset") {
				return pkgerrors.New(pkgerrors.CodeConflict, "asset already assigned")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
		}

		if err := assetsRepo.UpdateStatus(ctx, asset.ID, enums.AssetStatusAssigned); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flip asset status")
		}

		if err := s.recorder.Record(ctx, tx, activity.Entry{
			AssignmentID: &assignment.ID,
			AssetID:      &asset.ID,
			ActorID:      &input.ActorID,
			Action:       "assignment.created",
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
		}

		created = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, s.createNotifications(created))
	return created, nil
}

func (s *service) createNotifications(assignment *models.Assignment) []models.Notification {
	var items []models.Notification
	if assignment.ReceiverUserID != nil {
		items = append(items, models.Notification{
			UserID:       *assignment.ReceiverUserID,
			AssignmentID: &assignment.ID,
			Type:         enums.NotificationTypeAssignmentPending,
			Title:        "Asset assigned to you",
			Body:         "An asset is waiting for your acceptance.",
		})
	}
	items = append(items, models.Notification{
		UserID:       assignment.CreatedBy,
		AssignmentID: &assignment.ID,
		Type:         enums.NotificationTypeAwaitingAcceptance,
		Title:        "Assignment awaiting acceptance",
		Body:         "The assignment you created is pending acceptance.",
	})
	return items
}

func (s *service) Accept(ctx context.Context, input AcceptInput) (result *models.Assignment, err error) {
	defer func(start time.Time) { s.observe(OpAccept, start, err) }(time.Now())

	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.CallerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.TermsVersion) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "terms version required")
	}
	var missing []string
	for _, item := range s.terms.RequiredItems {
		if !input.Checklist[item] {
			missing = append(missing, item)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "terms checklist incomplete").
			WithDetails(map[string]any{"missing": missing})
	}

	var updated *models.Assignment
	err = s.runTx(ctx, OpAccept, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		assignment, err := s.loadForUpdate(ctx, repo, input.AssignmentID)
		if err != nil {
			return err
		}
		if err := requireReceiver(assignment, input.CallerUserID); err != nil {
			return err
		}
		if !CanTransition(OpAccept, assignment.Status) {
			return invalidState(OpAccept, assignment.Status)
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":            enums.AssignmentStatusActive,
			"accepted_by":       input.CallerUserID,
			"accepted_at":       now,
			"terms_version":     input.TermsVersion,
			"terms_accepted":    true,
			"terms_accepted_at": now,
		}
		if err := repo.Updates(ctx, assignment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept assignment")
		}

		if _, err := s.notifRepo.WithTx(tx).MarkAssignmentRead(ctx, assignment.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
		}

		if err := s.recorder.Record(ctx, tx, activity.Entry{
			AssignmentID: &assignment.ID,
			AssetID:      &assignment.AssetID,
			ActorID:      &input.CallerUserID,
			Action:       "assignment.accepted",
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
		}

		assignment.Status = enums.AssignmentStatusActive
		assignment.AcceptedBy = &input.CallerUserID
		assignment.AcceptedAt = &now
		assignment.TermsVersion = &input.TermsVersion
		assignment.TermsAccepted = true
		assignment.TermsAcceptedAt = &now
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Refuse(ctx context.Context, input RefuseInput) (result *models.Assignment, err error) {
	defer func(start time.Time) { s.observe(OpRefuse, start, err) }(time.Now())

	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.CallerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateReason(input.Reason, false); err != nil {
		return nil, err
	}
	reason := trimReason(input.Reason)

	var updated *models.Assignment
	err = s.runTx(ctx, OpRefuse, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assetsRepo := s.assetsRepo.WithTx(tx)

		assignment, err := s.loadForUpdate(ctx, repo, input.AssignmentID)
		if err != nil {
			return err
		}
		if err := requireReceiver(assignment, input.CallerUserID); err != nil {
			return err
		}
		if !CanTransition(OpRefuse, assignment.Status) {
			return invalidState(OpRefuse, assignment.Status)
		}

		if _, err := assetsRepo.FindByIDForUpdate(ctx, assignment.AssetID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock asset")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":     enums.AssignmentStatusRefused,
			"refused_at": now,
		}
		if reason != nil {
			updates["refusal_reason"] = *reason
		}
		if err := repo.Updates(ctx, assignment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refuse assignment")
		}

		if err := s.syncAssetStatus(ctx, tx, assignment.AssetID); err != nil {
			return err
		}

		if err := s.recorder.Record(ctx, tx, activity.Entry{
			AssignmentID: &assignment.ID,
			AssetID:      &assignment.AssetID,
			ActorID:      &input.CallerUserID,
			Action:       "assignment.refused",
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
		}

		assignment.Status = enums.AssignmentStatusRefused
		assignment.RefusedAt = &now
		assignment.RefusalReason = reason
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) RequestReturn(ctx context.Context, input RequestReturnInput) (result *models.Assignment, err error) {
	defer func(start time.Time) { s.observe(OpRequestReturn, start, err) }(time.Now())

	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.CallerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var updated *models.Assignment
	err = s.runTx(ctx, OpRequestReturn, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		assignment, err := s.loadForUpdate(ctx, repo, input.AssignmentID)
		if err != nil {
			return err
		}
		if err := requireReceiver(assignment, input.CallerUserID); err != nil {
			return err
		}
		if !CanTransition(OpRequestReturn, assignment.Status) {
			return invalidState(OpRequestReturn, assignment.Status)
		}

		// A re-request after rejection keeps the rejection fields as history.
		now := time.Now().UTC()
		updates := map[string]any{
			"status":              enums.AssignmentStatusReturnRequested,
			"return_requested_at": now,
			"return_requested_by": input.CallerUserID,
		}
		if input.ReturnCondition != nil {
			updates["return_condition"] = input.ReturnCondition
		}
		if input.AccessoriesReturned != nil {
			updates["accessories_returned"] = input.AccessoriesReturned
		}
		if err := repo.Updates(ctx, assignment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request return")
		}

		if err := s.recorder.Record(ctx, tx, activity.Entry{
			AssignmentID: &assignment.ID,
			AssetID:      &assignment.AssetID,
			ActorID:      &input.CallerUserID,
			Action:       "assignment.return_requested",
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
		}

		assignment.Status = enums.AssignmentStatusReturnRequested
		assignment.ReturnRequestedAt = &now
		assignment.ReturnRequestedBy = &input.CallerUserID
		if input.ReturnCondition != nil {
			assignment.ReturnCondition = input.ReturnCondition
		}
		if input.AccessoriesReturned != nil {
			assignment.AccessoriesReturned = input.AccessoriesReturned
		}
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, []models.Notification{{
		UserID:       updated.CreatedBy,
		AssignmentID: &updated.ID,
		Type:         enums.NotificationTypeReturnRequested,
		Title:        "Return requested",
		Body:         "A return was requested for an assignment you created.",
	}})
	return updated, nil
}

func (s *service) ApproveReturn(ctx context.Context, input ApproveReturnInput) (result *models.Assignment, err error) {
	defer func(start time.Time) { s.observe(OpApproveReturn, start, err) }(time.Now())

	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Disposition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return disposition")
	}

	var updated *models.Assignment
	err = s.runTx(ctx, OpApproveReturn, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assetsRepo := s.assetsRepo.WithTx(tx)

		assignment, err := s.loadForUpdate(ctx, repo, input.AssignmentID)
		if err != nil {
			return err
		}
		if !CanTransition(OpApproveReturn, assignment.Status) {
			return invalidState(OpApproveReturn, assignment.Status)
		}

		if _, err := assetsRepo.FindByIDForUpdate(ctx, assignment.AssetID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock asset")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":             enums.AssignmentStatusReturnApproved,
			"return_approved_at": now,
			"return_approved_by": input.AdminID,
			"return_disposition": input.Disposition,
			"returned_date":      now,
		}
		if input.FinalCondition != nil {
			updates["return_condition"] = input.FinalCondition
		}
		if input.AccessoriesReturned != nil {
			updates["accessories_returned"] = input.AccessoriesReturned
		}
		if input.Note != nil && strings.TrimSpace(*input.Note) != "" {
			note := strings.TrimSpace(*input.Note)
			if assignment.Notes != "" {
				note = assignment.Notes + "\n" + note
			}
			updates["notes"] = note
			assignment.Notes = note
		}
		if err := repo.Updates(ctx, assignment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve return")
		}

		if err := assetsRepo.UpdateStatus(ctx, assignment.AssetID, input.Disposition.AssetStatus()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset status")
		}

		if err := s.recorder.Record(ctx, tx, activity.Entry{
			AssignmentID: &assignment.ID,
			AssetID:      &assignment.AssetID,
			ActorID:      &input.AdminID,
			Action:       "assignment.return_approved",
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
		}

		disposition := input.Disposition
		assignment.Status = enums.AssignmentStatusReturnApproved
		assignment.ReturnApprovedAt = &now
		assignment.ReturnApprovedBy = &input.AdminID
		assignment.ReturnDisposition = &disposition
		assignment.ReturnedDate = &now
		if input.FinalCondition != nil {
			assignment.ReturnCondition = input.FinalCondition
		}
		if input.AccessoriesReturned != nil {
			assignment.AccessoriesReturned = input.AccessoriesReturned
		}
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) RejectReturn(ctx context.Context, input RejectReturnInput) (result *models.Assignment, err error) {
	defer func(start time.Time) { s.observe(OpRejectReturn, start, err) }(time.Now())

	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason too long")
	}

	var updated *models.Assignment
	err = s.runTx(ctx, OpRejectReturn, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		assignment, err := s.loadForUpdate(ctx, repo, input.AssignmentID)
		if err != nil {
			return err
		}
		if !CanTransition(OpRejectReturn, assignment.Status) {
			return invalidState(OpRejectReturn, assignment.Status)
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":                  enums.AssignmentStatusReturnRejected,
			"return_rejected_at":      now,
			"return_rejection_reason": reason,
		}
		if err := repo.Updates(ctx, assignment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject return")
		}

		if err := s.recorder.Record(ctx, tx, activity.Entry{
			AssignmentID: &assignment.ID,
			AssetID:      &assignment.AssetID,
			ActorID:      &input.AdminID,
			Action:       "assignment.return_rejected",
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
		}

		assignment.Status = enums.AssignmentStatusReturnRejected
		assignment.ReturnRejectedAt = &now
		assignment.ReturnRejectionReason = &reason
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (result *models.Assignment, err error) {
	defer func(start time.Time) { s.observe(OpCancel, start, err) }(time.Now())

	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateReason(input.Reason, false); err != nil {
		return nil, err
	}
	reason := trimReason(input.Reason)

	var updated *models.Assignment
	err = s.runTx(ctx, OpCancel, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assetsRepo := s.assetsRepo.WithTx(tx)

		assignment, err := s.loadForUpdate(ctx, repo, input.AssignmentID)
		if err != nil {
			return err
		}
		if !CanTransition(OpCancel, assignment.Status) {
			return invalidState(OpCancel, assignment.Status)
		}

		if _, err := assetsRepo.FindByIDForUpdate(ctx, assignment.AssetID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock asset")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":       enums.AssignmentStatusCancelled,
			"cancelled_at": now,
		}
		if reason != nil {
			updates["cancellation_reason"] = *reason
		}
		if err := repo.Updates(ctx, assignment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel assignment")
		}

		if err := s.syncAssetStatus(ctx, tx, assignment.AssetID); err != nil {
			return err
		}

		if err := s.recorder.Record(ctx, tx, activity.Entry{
			AssignmentID: &assignment.ID,
			AssetID:      &assignment.AssetID,
			ActorID:      &input.AdminID,
			Action:       "assignment.cancelled",
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
		}

		assignment.Status = enums.AssignmentStatusCancelled
		assignment.CancelledAt = &now
		assignment.CancellationReason = reason
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Revert force-undoes an assignment. Locks are taken in the fixed order:
// target assignment, then its asset, then the latest open assignment for that
// asset. The supersession check fails the revert when a newer open assignment
// exists, and the open-assignment re-check after the write decides the final
// asset status.
func (s *service) Revert(ctx context.Context, input RevertInput) (result *RevertResult, err error) {
	defer func(start time.Time) { s.observe(OpRevert, start, err) }(time.Now())

	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateReason(input.Reason, false); err != nil {
		return nil, err
	}
	reason := trimReason(input.Reason)

	var outcome *RevertResult
	err = s.runTx(ctx, OpRevert, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assetsRepo := s.assetsRepo.WithTx(tx)

		assignment, err := s.loadForUpdate(ctx, repo, input.AssignmentID)
		if err != nil {
			return err
		}

		if assignment.Status == enums.AssignmentStatusReverted || assignment.Status == enums.AssignmentStatusCancelled {
			outcome = &RevertResult{Assignment: assignment, AlreadyFinalized: true}
			return nil
		}

		if _, err := assetsRepo.FindByIDForUpdate(ctx, assignment.AssetID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock asset")
		}

		latest, err := repo.FindLatestOpenForAssetForUpdate(ctx, assignment.AssetID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest open assignment")
		}
		if latest != nil && latest.ID != assignment.ID {
			return pkgerrors.New(pkgerrors.CodeConflict, "a newer assignment supersedes this one")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":      enums.AssignmentStatusReverted,
			"reverted_at": now,
			"reverted_by": input.AdminID,
		}
		if reason != nil {
			updates["revert_reason"] = *reason
		}
		if err := repo.Updates(ctx, assignment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert assignment")
		}

		// Re-check after the write: another transaction may have raced on a
		// different assignment for this asset. Manually set in-repair/retired
		// states survive the revert.
		if err := s.syncAssetStatus(ctx, tx, assignment.AssetID); err != nil {
			return err
		}

		if err := s.recorder.Record(ctx, tx, activity.Entry{
			AssignmentID: &assignment.ID,
			AssetID:      &assignment.AssetID,
			ActorID:      &input.AdminID,
			Action:       "assignment.reverted",
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
		}

		assignment.Status = enums.AssignmentStatusReverted
		assignment.RevertedAt = &now
		assignment.RevertedBy = &input.AdminID
		assignment.RevertReason = reason
		outcome = &RevertResult{Assignment: assignment, AlreadyFinalized: false}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Delete hard-removes an assignment row. Cleanup only: it does not touch the
// asset status, so it must only be used on terminal or garbage rows.
func (s *service) Delete(ctx context.Context, assignmentID uuid.UUID) (err error) {
	defer func(start time.Time) { s.observe(OpDelete, start, err) }(time.Now())

	if assignmentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}

	return s.runTx(ctx, OpDelete, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assignment, err := s.loadForUpdate(ctx, repo, assignmentID)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, assignment.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete assignment")
		}
		return s.recorder.Record(ctx, tx, activity.Entry{
			AssetID: &assignment.AssetID,
			Action:  "assignment.deleted",
		})
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	return assignment, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listParams{
		Status:  params.Status,
		AssetID: params.AssetID,
		StaffID: params.StaffID,
		Limit:   params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize assignments")
	}
	summary := &Summary{ByStatus: counts}
	for status, count := range counts {
		if status.IsOpen() {
			summary.Open += count
		}
	}
	return summary, nil
}

// loadForUpdate locks and returns the assignment, mapping missing rows to the
// not-found error.
func (s *service) loadForUpdate(ctx context.Context, repo Repository, id uuid.UUID) (*models.Assignment, error) {
	assignment, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	return assignment, nil
}

// syncAssetStatus re-derives the asset status from the remaining open
// assignments. Manual in-repair/retired states are left alone.
func (s *service) syncAssetStatus(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	assetsRepo := s.assetsRepo.WithTx(tx)

	open, err := repo.CountOpenForAsset(ctx, assetID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open assignments")
	}

	asset, err := assetsRepo.FindByID(ctx, assetID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset")
	}

	var next enums.AssetStatus
	switch {
	case open > 0:
		next = enums.AssetStatusAssigned
	case asset.Status == enums.AssetStatusAssigned:
		next = enums.AssetStatusInStock
	default:
		return nil
	}
	if next == asset.Status {
		return nil
	}
	if err := assetsRepo.UpdateStatus(ctx, assetID, next); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset status")
	}
	return nil
}

func requireReceiver(assignment *models.Assignment, caller uuid.UUID) error {
	if assignment.ReceiverUserID == nil {
		// Location/department assignments have no designated receiver; role
		// checks happen at the transport layer.
		return nil
	}
	if *assignment.ReceiverUserID != caller {
		return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not the assignment receiver")
	}
	return nil
}

func invalidState(op Operation, from enums.AssignmentStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot %s assignment in status %s", op, from))
}

func validateReason(reason *string, required bool) error {
	if reason == nil {
		if required {
			return pkgerrors.New(pkgerrors.CodeValidation, "reason required")
		}
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	if required && trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	if utf8.RuneCountInString(trimmed) > maxReasonLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "reason too long")
	}
	return nil
}

// trimReason normalizes an optional reason so the stored and returned values
// agree.
func trimReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	return &trimmed
}

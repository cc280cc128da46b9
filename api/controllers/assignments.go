package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/assetdeskhq/assetdesk-backend/api/middleware"
	"github.com/assetdeskhq/assetdesk-backend/api/responses"
	"github.com/assetdeskhq/assetdesk-backend/api/validators"
	"github.com/assetdeskhq/assetdesk-backend/internal/assignments"
	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdeskhq/assetdesk-backend/pkg/errors"
	"github.com/assetdeskhq/assetdesk-backend/pkg/logger"
	"github.com/assetdeskhq/assetdesk-backend/pkg/types"
)

type createAssignmentRequest struct {
	AssetID            string                  `json:"asset_id" validate:"required,uuid"`
	TargetType         string                  `json:"target_type" validate:"required"`
	StaffID            *int64                  `json:"staff_id"`
	ReceiverUserID     *string                 `json:"receiver_user_id" validate:"omitempty,uuid"`
	Location           *string                 `json:"location" validate:"omitempty,max=255"`
	Department         *string                 `json:"department" validate:"omitempty,max=255"`
	AssignedDate       string                  `json:"assigned_date" validate:"required"`
	ExpectedReturnDate *string                 `json:"expected_return_date"`
	IssueCondition     types.ConditionSnapshot `json:"issue_condition"`
	AccessoriesIssued  types.AccessoryList     `json:"accessories_issued"`
	Notes              string                  `json:"notes"`
}

type acceptAssignmentRequest struct {
	TermsVersion string          `json:"terms_version" validate:"required,max=32"`
	Checklist    map[string]bool `json:"checklist"`
}

type reasonRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=255"`
}

type requestReturnRequest struct {
	ReturnCondition     types.ConditionSnapshot `json:"return_condition"`
	AccessoriesReturned types.AccessoryList     `json:"accessories_returned"`
}

type approveReturnRequest struct {
	Disposition         string                  `json:"disposition" validate:"required"`
	FinalCondition      types.ConditionSnapshot `json:"final_condition"`
	AccessoriesReturned types.AccessoryList     `json:"accessories_returned"`
	Note                *string                 `json:"note" validate:"omitempty,max=1000"`
}

type rejectReturnRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

// CreateAssignment opens a pending assignment for an asset.
func CreateAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createAssignmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetID, err := uuid.Parse(req.AssetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid asset id"))
			return
		}
		targetType, err := enums.ParseAssignmentTargetType(req.TargetType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target type"))
			return
		}
		assignedDate, err := parseDate(req.AssignedDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assigned date"))
			return
		}

		input := assignments.CreateInput{
			AssetID:           assetID,
			TargetType:        targetType,
			StaffID:           req.StaffID,
			Location:          req.Location,
			Department:        req.Department,
			AssignedDate:      assignedDate,
			IssueCondition:    req.IssueCondition,
			AccessoriesIssued: req.AccessoriesIssued,
			Notes:             req.Notes,
			ActorID:           actor,
		}
		if req.ReceiverUserID != nil {
			receiver, err := uuid.Parse(*req.ReceiverUserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid receiver user id"))
				return
			}
			input.ReceiverUserID = &receiver
		}
		if req.ExpectedReturnDate != nil {
			expected, err := parseDate(*req.ExpectedReturnDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expected return date"))
				return
			}
			input.ExpectedReturnDate = &expected
		}

		assignment, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, assignment)
	}
}

// GetAssignment returns one assignment with its asset and staff preloaded.
func GetAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assignment, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

// ListAssignments pages through assignments with optional filters.
func ListAssignments(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params assignments.ListParams

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseAssignmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			params.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("assetId")); raw != "" {
			assetID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid asset id filter"))
				return
			}
			params.AssetID = &assetID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("staffId")); raw != "" {
			staffID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "staffId must be numeric"))
				return
			}
			params.StaffID = &staffID
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit
		params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AssignmentSummary reports counts per status plus the open total.
func AssignmentSummary(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AcceptAssignment records the receiver's terms acceptance.
func AcceptAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, caller, err := assignmentCall(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req acceptAssignmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.Accept(r.Context(), assignments.AcceptInput{
			AssignmentID: id,
			CallerUserID: caller,
			TermsVersion: req.TermsVersion,
			Checklist:    req.Checklist,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

// RefuseAssignment declines a pending assignment.
func RefuseAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, caller, err := assignmentCall(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reasonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.Refuse(r.Context(), assignments.RefuseInput{
			AssignmentID: id,
			CallerUserID: caller,
			Reason:       req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

// RequestAssignmentReturn starts (or restarts) the return flow.
func RequestAssignmentReturn(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, caller, err := assignmentCall(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req requestReturnRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.RequestReturn(r.Context(), assignments.RequestReturnInput{
			AssignmentID:        id,
			CallerUserID:        caller,
			ReturnCondition:     req.ReturnCondition,
			AccessoriesReturned: req.AccessoriesReturned,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

// ApproveAssignmentReturn closes the return and routes the asset by disposition.
func ApproveAssignmentReturn(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, caller, err := assignmentCall(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req approveReturnRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		disposition, err := enums.ParseReturnDisposition(req.Disposition)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid disposition"))
			return
		}

		assignment, err := svc.ApproveReturn(r.Context(), assignments.ApproveReturnInput{
			AssignmentID:        id,
			AdminID:             caller,
			FinalCondition:      req.FinalCondition,
			AccessoriesReturned: req.AccessoriesReturned,
			Disposition:         disposition,
			Note:                req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

// RejectAssignmentReturn sends a return request back with a reason.
func RejectAssignmentReturn(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, caller, err := assignmentCall(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req rejectReturnRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.RejectReturn(r.Context(), assignments.RejectReturnInput{
			AssignmentID: id,
			AdminID:      caller,
			Reason:       req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

// CancelAssignment withdraws a pending assignment.
func CancelAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, caller, err := assignmentCall(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reasonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.Cancel(r.Context(), assignments.CancelInput{
			AssignmentID: id,
			AdminID:      caller,
			Reason:       req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

// RevertAssignment force-undoes an assignment regardless of its state.
func RevertAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, caller, err := assignmentCall(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reasonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Revert(r.Context(), assignments.RevertInput{
			AssignmentID: id,
			AdminID:      caller,
			Reason:       req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeleteAssignment hard-removes an assignment record.
func DeleteAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func assignmentCall(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	id, err := pathUUID(r, "assignmentId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	caller, err := actorID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return id, caller, nil
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	return id, nil
}

// parseDate accepts RFC3339 timestamps or bare dates.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), nil
	}
	return time.Parse("2006-01-02", value)
}

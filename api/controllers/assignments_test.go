package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/assetdeskhq/assetdesk-backend/api/middleware"
	"github.com/assetdeskhq/assetdesk-backend/internal/assignments"
	"github.com/assetdeskhq/assetdesk-backend/pkg/db/models"
	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
	"github.com/assetdeskhq/assetdesk-backend/pkg/logger"
)

type testAssignmentsService struct {
	createFn        func(ctx context.Context, input assignments.CreateInput) (*models.Assignment, error)
	acceptFn        func(ctx context.Context, input assignments.AcceptInput) (*models.Assignment, error)
	refuseFn        func(ctx context.Context, input assignments.RefuseInput) (*models.Assignment, error)
	requestReturnFn func(ctx context.Context, input assignments.RequestReturnInput) (*models.Assignment, error)
	approveReturnFn func(ctx context.Context, input assignments.ApproveReturnInput) (*models.Assignment, error)
	rejectReturnFn  func(ctx context.Context, input assignments.RejectReturnInput) (*models.Assignment, error)
	cancelFn        func(ctx context.Context, input assignments.CancelInput) (*models.Assignment, error)
	revertFn        func(ctx context.Context, input assignments.RevertInput) (*assignments.RevertResult, error)
}

func (s *testAssignmentsService) Create(ctx context.Context, input assignments.CreateInput) (*models.Assignment, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &models.Assignment{}, nil
}

func (s *testAssignmentsService) Accept(ctx context.Context, input assignments.AcceptInput) (*models.Assignment, error) {
	if s.acceptFn != nil {
		return s.acceptFn(ctx, input)
	}
	return &models.Assignment{}, nil
}

func (s *testAssignmentsService) Refuse(ctx context.Context, input assignments.RefuseInput) (*models.Assignment, error) {
	if s.refuseFn != nil {
		return s.refuseFn(ctx, input)
	}
	return &models.Assignment{}, nil
}

func (s *testAssignmentsService) RequestReturn(ctx context.Context, input assignments.RequestReturnInput) (*models.Assignment, error) {
	if s.requestReturnFn != nil {
		return s.requestReturnFn(ctx, input)
	}
	return &models.Assignment{}, nil
}

func (s *testAssignmentsService) ApproveReturn(ctx context.Context, input assignments.ApproveReturnInput) (*models.Assignment, error) {
	if s.approveReturnFn != nil {
		return s.approveReturnFn(ctx, input)
	}
	return &models.Assignment{}, nil
}

func (s *testAssignmentsService) RejectReturn(ctx context.Context, input assignments.RejectReturnInput) (*models.Assignment, error) {
	if s.rejectReturnFn != nil {
		return s.rejectReturnFn(ctx, input)
	}
	return &models.Assignment{}, nil
}

func (s *testAssignmentsService) Cancel(ctx context.Context, input assignments.CancelInput) (*models.Assignment, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, input)
	}
	return &models.Assignment{}, nil
}

func (s *testAssignmentsService) Revert(ctx context.Context, input assignments.RevertInput) (*assignments.RevertResult, error) {
	if s.revertFn != nil {
		return s.revertFn(ctx, input)
	}
	return &assignments.RevertResult{Assignment: &models.Assignment{}}, nil
}

func (s *testAssignmentsService) Delete(ctx context.Context, assignmentID uuid.UUID) error {
	return nil
}

func (s *testAssignmentsService) Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	return &models.Assignment{ID: id}, nil
}

func (s *testAssignmentsService) List(ctx context.Context, params assignments.ListParams) (*assignments.ListResult, error) {
	return &assignments.ListResult{}, nil
}

func (s *testAssignmentsService) Summary(ctx context.Context) (*assignments.Summary, error) {
	return &assignments.Summary{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCreateAssignmentSuccess(t *testing.T) {
	admin := uuid.New()
	assetID := uuid.New()
	called := false
	svc := &testAssignmentsService{
		createFn: func(ctx context.Context, input assignments.CreateInput) (*models.Assignment, error) {
			called = true
			if input.AssetID != assetID {
				t.Fatalf("unexpected asset %s", input.AssetID)
			}
			if input.TargetType != enums.AssignmentTargetStaff {
				t.Fatalf("unexpected target %s", input.TargetType)
			}
			if input.ActorID != admin {
				t.Fatalf("unexpected actor %s", input.ActorID)
			}
			return &models.Assignment{ID: uuid.New(), AssetID: assetID, Status: enums.AssignmentStatusPendingAcceptance}, nil
		},
	}

	body := `{"asset_id":"` + assetID.String() + `","target_type":"staff","staff_id":7,"assigned_date":"2026-08-20"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(body))
	req = withUser(req, admin)
	resp := httptest.NewRecorder()

	CreateAssignment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestCreateAssignmentMissingUser(t *testing.T) {
	body := `{"asset_id":"` + uuid.NewString() + `","target_type":"staff","assigned_date":"2026-08-20"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(body))
	resp := httptest.NewRecorder()

	CreateAssignment(&testAssignmentsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCreateAssignmentRejectsBadDate(t *testing.T) {
	body := `{"asset_id":"` + uuid.NewString() + `","target_type":"staff","assigned_date":"not-a-date"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(body))
	req = withUser(req, uuid.New())
	resp := httptest.NewRecorder()

	CreateAssignment(&testAssignmentsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAcceptAssignmentPassesTerms(t *testing.T) {
	receiver := uuid.New()
	assignmentID := uuid.New()
	svc := &testAssignmentsService{
		acceptFn: func(ctx context.Context, input assignments.AcceptInput) (*models.Assignment, error) {
			if input.AssignmentID != assignmentID {
				t.Fatalf("unexpected assignment %s", input.AssignmentID)
			}
			if input.CallerUserID != receiver {
				t.Fatalf("unexpected caller %s", input.CallerUserID)
			}
			if input.TermsVersion != "v2" {
				t.Fatalf("unexpected terms version %q", input.TermsVersion)
			}
			if !input.Checklist["care"] {
				t.Fatal("expected checklist forwarded")
			}
			return &models.Assignment{ID: assignmentID, Status: enums.AssignmentStatusActive}, nil
		},
	}

	body := `{"terms_version":"v2","checklist":{"care":true,"loss_report":true,"return_on_exit":true}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments/"+assignmentID.String()+"/accept", strings.NewReader(body))
	req = withUser(req, receiver)
	req = addRouteParam(req, "assignmentId", assignmentID.String())
	resp := httptest.NewRecorder()

	AcceptAssignment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRejectReturnRequiresReason(t *testing.T) {
	assignmentID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments/"+assignmentID.String()+"/return-reject", strings.NewReader(`{}`))
	req = withUser(req, uuid.New())
	req = addRouteParam(req, "assignmentId", assignmentID.String())
	resp := httptest.NewRecorder()

	RejectAssignmentReturn(&testAssignmentsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestApproveReturnRejectsBadDisposition(t *testing.T) {
	assignmentID := uuid.New()
	body := `{"disposition":"lost"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments/"+assignmentID.String()+"/return-approve", strings.NewReader(body))
	req = withUser(req, uuid.New())
	req = addRouteParam(req, "assignmentId", assignmentID.String())
	resp := httptest.NewRecorder()

	ApproveAssignmentReturn(&testAssignmentsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRevertAssignmentReportsAlreadyFinalized(t *testing.T) {
	assignmentID := uuid.New()
	svc := &testAssignmentsService{
		revertFn: func(ctx context.Context, input assignments.RevertInput) (*assignments.RevertResult, error) {
			return &assignments.RevertResult{
				Assignment:       &models.Assignment{ID: assignmentID, Status: enums.AssignmentStatusReverted},
				AlreadyFinalized: true,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments/"+assignmentID.String()+"/revert", strings.NewReader(`{}`))
	req = withUser(req, uuid.New())
	req = addRouteParam(req, "assignmentId", assignmentID.String())
	resp := httptest.NewRecorder()

	RevertAssignment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data assignments.RevertResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data.AlreadyFinalized {
		t.Fatal("expected already_finalized flag")
	}
}

func TestGetAssignmentInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/assignments/invalid", nil)
	req = addRouteParam(req, "assignmentId", "invalid")
	resp := httptest.NewRecorder()

	GetAssignment(&testAssignmentsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

package controllers

import (
	"net/http"

	"github.com/assetdeskhq/assetdesk-backend/api/responses"
	"github.com/assetdeskhq/assetdesk-backend/internal/activity"
	pkgerrors "github.com/assetdeskhq/assetdesk-backend/pkg/errors"
	"github.com/assetdeskhq/assetdesk-backend/pkg/logger"
)

// AssignmentActivity returns the audit trail for one assignment.
func AssignmentActivity(recorder activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := recorder.ListForAssignment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

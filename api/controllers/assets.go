package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/assetdeskhq/assetdesk-backend/api/responses"
	"github.com/assetdeskhq/assetdesk-backend/api/validators"
	"github.com/assetdeskhq/assetdesk-backend/internal/assets"
	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdeskhq/assetdesk-backend/pkg/errors"
	"github.com/assetdeskhq/assetdesk-backend/pkg/logger"
)

type createAssetRequest struct {
	AssetTag     string `json:"asset_tag" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=255"`
	AssetType    string `json:"asset_type" validate:"required"`
	SerialNumber string `json:"serial_number" validate:"max=128"`
	Notes        string `json:"notes"`
}

type updateAssetRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	SerialNumber *string `json:"serial_number" validate:"omitempty,max=128"`
	Notes        *string `json:"notes"`
}

type setAssetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateAsset registers a new asset in the inventory.
func CreateAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAssetRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetType, err := enums.ParseAssetType(req.AssetType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid asset type"))
			return
		}

		asset, err := svc.Create(r.Context(), assets.CreateInput{
			AssetTag:     req.AssetTag,
			Name:         req.Name,
			AssetType:    assetType,
			SerialNumber: req.SerialNumber,
			Notes:        req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, asset)
	}
}

// GetAsset returns one asset by id.
func GetAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asset, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

// ListAssets returns assets matching the optional status/type/q filters.
func ListAssets(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filters assets.ListFilters

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseAssetStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			assetType, err := enums.ParseAssetType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type filter"))
				return
			}
			filters.Type = &assetType
		}
		filters.Query = strings.TrimSpace(r.URL.Query().Get("q"))

		rows, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// UpdateAsset edits asset metadata.
func UpdateAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateAssetRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Update(r.Context(), assets.UpdateInput{
			ID:           id,
			Name:         req.Name,
			SerialNumber: req.SerialNumber,
			Notes:        req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

// SetAssetStatus applies a manual status change (repair, retire, back to stock).
func SetAssetStatus(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setAssetStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseAssetStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		asset, err := svc.SetStatus(r.Context(), assets.SetStatusInput{ID: id, Status: status})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

// pathUUID extracts and parses a UUID path parameter.
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}

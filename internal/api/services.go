package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ArcadiiFlorean/Consultant-host-version/internal/catalog"
)

const maxRequestBody = 1 << 20

func listServicesHandler(svc CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pkgs, err := svc.List(r.Context())
		if err != nil {
			logger.Error("failed to load services", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
			writeErrorWithData(w, http.StatusInternalServerError, "failed to load services", []catalog.Package{})
			return
		}

		writeJSON(w, http.StatusOK, ServicesResponse{
			Success: true,
			Data:    pkgs,
			Count:   len(pkgs),
			Message: "Services loaded successfully",
		})
	}
}

func createServiceHandler(svc CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateServiceRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON data")
			return
		}

		created, err := svc.Create(r.Context(), catalog.CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       float64(req.Price),
			Currency:    req.Currency,
			Duration:    req.Duration,
			Features:    req.Features,
			Icon:        req.Icon,
			Popular:     req.Popular,
		})
		if err != nil {
			handleCreateServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, ServiceResponse{
			Success: true,
			Message: "Service created successfully",
			Data:    created,
		})
	}
}

// notImplementedHandler backs the catalog methods that are declared but
// have no behavior yet.
func notImplementedHandler(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotImplemented, action+" services is not implemented")
	}
}

func handleCreateServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var vErr *catalog.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	default:
		logger.Error("failed to create service", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, "failed to create service")
	}
}

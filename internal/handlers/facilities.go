package handlers

import (
	"context"
	"errors"
	"maps"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/wastefinder/internal/datastore"
	"github.com/serroba/wastefinder/internal/directory"
	"go.uber.org/zap"
)

// immutableFields may not be changed by partial updates.
var immutableFields = []string{"id", "createdAt"}

// FacilityHandler serves the facility directory.
type FacilityHandler struct {
	locations *datastore.Collection[directory.Facility]
	newID     IDGenerator
	now       Clock
	logger    *zap.Logger
}

// NewFacilityHandler creates a new facility handler.
func NewFacilityHandler(
	locations *datastore.Collection[directory.Facility],
	newID IDGenerator,
	now Clock,
	logger *zap.Logger,
) *FacilityHandler {
	return &FacilityHandler{
		locations: locations,
		newID:     newID,
		now:       now,
		logger:    logger,
	}
}

func (h *FacilityHandler) List(ctx context.Context, req *ListFacilitiesRequest) (*ListFacilitiesResponse, error) {
	facilities, err := h.locations.Get(ctx)
	if err != nil {
		h.logger.Error("failed to load facilities", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load facilities")
	}

	matches := directory.Search(facilities, directory.Filter{
		Query:     req.Query,
		State:     req.State,
		City:      req.City,
		WasteType: req.WasteType,
	})

	resp := &ListFacilitiesResponse{}
	resp.Body.Facilities = nonNil(matches)
	resp.Body.Total = len(matches)

	return resp, nil
}

func (h *FacilityHandler) Get(ctx context.Context, req *IDRequest) (*FacilityResponse, error) {
	facility, ok, err := h.locations.FindByID(ctx, req.ID)
	if err != nil {
		h.logger.Error("failed to load facility", zap.String("id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load facility")
	}

	if !ok {
		return nil, huma.Error404NotFound("facility not found")
	}

	return &FacilityResponse{Body: facility}, nil
}

func (h *FacilityHandler) Create(ctx context.Context, req *CreateFacilityRequest) (*FacilityResponse, error) {
	in := req.Body
	facility := directory.Facility{
		ID:          h.newID(),
		Name:        in.Name,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		Zip:         in.Zip,
		Phone:       in.Phone,
		Website:     in.Website,
		WasteTypes:  nonNil(in.WasteTypes),
		Hours:       in.Hours,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Description: in.Description,
		Verified:    in.Verified,
		CreatedAt:   h.now(),
	}

	if err := h.locations.Add(ctx, facility); err != nil {
		h.logger.Error("failed to save facility", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save facility")
	}

	h.logger.Info("facility created", zap.String("id", facility.ID), zap.String("name", facility.Name))

	return &FacilityResponse{Body: facility}, nil
}

func (h *FacilityHandler) Update(ctx context.Context, req *UpdateFacilityRequest) (*FacilityResponse, error) {
	facility, err := h.locations.Update(ctx, req.ID, patchFields(req.Body))
	if err != nil {
		return nil, h.writeError(err, req.ID)
	}

	return &FacilityResponse{Body: facility}, nil
}

func (h *FacilityHandler) Delete(ctx context.Context, req *IDRequest) (*struct{}, error) {
	if err := h.locations.Remove(ctx, req.ID); err != nil {
		return nil, h.writeError(err, req.ID)
	}

	return nil, nil
}

func (h *FacilityHandler) writeError(err error, id string) error {
	if errors.Is(err, datastore.ErrNotFound) {
		return huma.Error404NotFound("facility not found")
	}

	if errors.Is(err, datastore.ErrInvalidUpdate) {
		return huma.Error422UnprocessableEntity("invalid facility fields")
	}

	h.logger.Error("failed to write facility", zap.String("id", id), zap.Error(err))

	return huma.Error500InternalServerError("failed to save facility")
}

// patchFields drops fields that partial updates may not touch.
func patchFields(fields map[string]any) map[string]any {
	out := maps.Clone(fields)
	if out == nil {
		return map[string]any{}
	}

	for _, f := range immutableFields {
		delete(out, f)
	}

	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}

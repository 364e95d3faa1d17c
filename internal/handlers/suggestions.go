package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/wastefinder/internal/datastore"
	"github.com/serroba/wastefinder/internal/directory"
	"go.uber.org/zap"
)

// SuggestionHandler accepts visitor suggestions and lets admins review them.
type SuggestionHandler struct {
	pending   *datastore.Collection[directory.Suggestion]
	locations *datastore.Collection[directory.Facility]
	newID     IDGenerator
	now       Clock
	logger    *zap.Logger
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(
	pending *datastore.Collection[directory.Suggestion],
	locations *datastore.Collection[directory.Facility],
	newID IDGenerator,
	now Clock,
	logger *zap.Logger,
) *SuggestionHandler {
	return &SuggestionHandler{
		pending:   pending,
		locations: locations,
		newID:     newID,
		now:       now,
		logger:    logger,
	}
}

func (h *SuggestionHandler) Create(ctx context.Context, req *CreateSuggestionRequest) (*SuggestionResponse, error) {
	in := req.Body
	suggestion := directory.Suggestion{
		ID:             h.newID(),
		FacilityName:   in.FacilityName,
		Address:        in.Address,
		City:           in.City,
		State:          in.State,
		WasteTypes:     nonNil(in.WasteTypes),
		Website:        in.Website,
		Notes:          in.Notes,
		SubmitterEmail: in.SubmitterEmail,
		Status:         directory.SuggestionPending,
		CreatedAt:      h.now(),
	}

	if err := h.pending.Add(ctx, suggestion); err != nil {
		h.logger.Error("failed to save suggestion", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save suggestion")
	}

	meta := RequestMetaFromContext(ctx)
	h.logger.Info("suggestion received",
		zap.String("id", suggestion.ID),
		zap.String("client_ip", meta.ClientIP),
	)

	return &SuggestionResponse{Body: suggestion}, nil
}

func (h *SuggestionHandler) List(ctx context.Context, _ *struct{}) (*ListSuggestionsResponse, error) {
	suggestions, err := h.pending.Get(ctx)
	if err != nil {
		h.logger.Error("failed to load suggestions", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load suggestions")
	}

	resp := &ListSuggestionsResponse{}
	resp.Body.Suggestions = nonNil(suggestions)

	return resp, nil
}

// Approve publishes a suggestion as a facility and removes it from the review queue.
func (h *SuggestionHandler) Approve(ctx context.Context, req *IDRequest) (*FacilityResponse, error) {
	suggestion, ok, err := h.pending.FindByID(ctx, req.ID)
	if err != nil {
		h.logger.Error("failed to load suggestion", zap.String("id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load suggestion")
	}

	if !ok {
		return nil, huma.Error404NotFound("suggestion not found")
	}

	facility := suggestion.Facility(h.newID(), h.now())

	if err := h.locations.Add(ctx, facility); err != nil {
		h.logger.Error("failed to save approved facility", zap.String("suggestion", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save facility")
	}

	if err := h.pending.Remove(ctx, req.ID); err != nil {
		// The facility is live; a leftover suggestion can be rejected by hand.
		h.logger.Error("failed to remove approved suggestion", zap.String("suggestion", req.ID), zap.Error(err))
	}

	h.logger.Info("suggestion approved",
		zap.String("suggestion", req.ID),
		zap.String("facility", facility.ID),
	)

	return &FacilityResponse{Body: facility}, nil
}

// Reject drops a suggestion. Unknown ids succeed.
func (h *SuggestionHandler) Reject(ctx context.Context, req *IDRequest) (*struct{}, error) {
	if err := h.pending.Remove(ctx, req.ID); err != nil {
		h.logger.Error("failed to remove suggestion", zap.String("id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to remove suggestion")
	}

	return nil, nil
}

package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/wastefinder/internal/datastore"
	"github.com/serroba/wastefinder/internal/directory"
	"go.uber.org/zap"
)

// Settings document names as they appear in URLs.
const (
	SettingsSite = "site"
	SettingsAds  = "ads"
	SettingsSEO  = "seo"
)

// settingsDocument is the untyped view a handler needs of a datastore.Value.
type settingsDocument interface {
	get(ctx context.Context) (any, error)
	update(ctx context.Context, fields map[string]any) (any, error)
}

type typedDocument[T any] struct {
	value *datastore.Value[T]
}

func (d typedDocument[T]) get(ctx context.Context) (any, error) {
	return d.value.Get(ctx)
}

func (d typedDocument[T]) update(ctx context.Context, fields map[string]any) (any, error) {
	return d.value.Update(ctx, fields)
}

// SettingsHandler reads and edits the site, advertising and SEO settings.
type SettingsHandler struct {
	documents map[string]settingsDocument
	logger    *zap.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(
	site *datastore.Value[directory.SiteSettings],
	ads *datastore.Value[directory.AdSettings],
	seo *datastore.Value[directory.SEOSettings],
	logger *zap.Logger,
) *SettingsHandler {
	return &SettingsHandler{
		documents: map[string]settingsDocument{
			SettingsSite: typedDocument[directory.SiteSettings]{value: site},
			SettingsAds:  typedDocument[directory.AdSettings]{value: ads},
			SettingsSEO:  typedDocument[directory.SEOSettings]{value: seo},
		},
		logger: logger,
	}
}

func (h *SettingsHandler) Get(ctx context.Context, req *SettingsRequest) (*SettingsResponse, error) {
	doc, ok := h.documents[req.Name]
	if !ok {
		return nil, huma.Error404NotFound("unknown settings document")
	}

	data, err := doc.get(ctx)
	if err != nil {
		h.logger.Error("failed to load settings", zap.String("name", req.Name), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load settings")
	}

	return &SettingsResponse{Body: data}, nil
}

func (h *SettingsHandler) Update(ctx context.Context, req *UpdateSettingsRequest) (*SettingsResponse, error) {
	doc, ok := h.documents[req.Name]
	if !ok {
		return nil, huma.Error404NotFound("unknown settings document")
	}

	data, err := doc.update(ctx, req.Body)
	if errors.Is(err, datastore.ErrInvalidUpdate) {
		return nil, huma.Error422UnprocessableEntity("invalid settings fields")
	}

	if err != nil {
		h.logger.Error("failed to update settings", zap.String("name", req.Name), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to update settings")
	}

	h.logger.Info("settings updated", zap.String("name", req.Name))

	return &SettingsResponse{Body: data}, nil
}

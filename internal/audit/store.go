// Package audit records datastore change events published by API instances.
package audit

import (
	"context"

	"github.com/serroba/wastefinder/internal/datastore"
)

// Store persists change events.
type Store interface {
	Save(ctx context.Context, event *datastore.ChangeEvent) error
}

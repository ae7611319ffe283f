// Package services holds the business rules. Every method that acts on
// behalf of a user takes the authenticated principal as an argument.
package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/logger"
	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
	"github.com/baharkarakas/tradebinder/internal/worker"
)

var strict = bluemonday.StrictPolicy()

// sanitizeText strips markup from user supplied text and trims it.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// notFound turns repo.ErrNotFound into a NotFound error naming what; other errors pass through wrapped.
func notFound(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return fmt.Errorf("load %s: %w", strings.ToLower(what), err)
}

// Auditor writes audit entries off the request path.
type Auditor struct {
	store repo.Store
	wp    *worker.Pool
}

// NewAuditor returns an auditor that queues on wp; a nil pool writes inline.
func NewAuditor(store repo.Store, wp *worker.Pool) *Auditor {
	return &Auditor{store: store, wp: wp}
}

func (a *Auditor) Record(ctx context.Context, entityType, entityID, action, actorID string, details map[string]any) {
	if a == nil {
		return
	}
	entry := models.NewAuditLog(entityType, entityID, action, actorID, details)
	log := logger.FromContext(ctx)
	write := func() {
		wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.store.AuditLogs().Create(wctx, entry); err != nil {
			log.Error("audit write failed", "entity", entityType, "id", entityID, "action", action, "err", err)
		}
	}
	if a.wp == nil {
		write()
		return
	}
	if err := a.wp.Submit(write); err != nil {
		log.Error("audit enqueue failed", "entity", entityType, "id", entityID, "action", action, "err", err)
	}
}

// Package memory provides an in-memory Repository for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using in-memory storage
type Repository struct {
	mu           sync.RWMutex
	contentTypes map[string]*simplecms.ContentType
	contents     map[uuid.UUID]*simplecms.ContentEntity
	children     map[uuid.UUID][]uuid.UUID // parent_id -> []content_id
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		contentTypes: make(map[string]*simplecms.ContentType),
		contents:     make(map[uuid.UUID]*simplecms.ContentEntity),
		children:     make(map[uuid.UUID][]uuid.UUID),
	}
}

// Content type operations

func (r *Repository) CreateContentType(ctx context.Context, contentType *simplecms.ContentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contentTypes[contentType.Alias]; exists {
		return fmt.Errorf("%w: content type %q", simplecms.ErrAlreadyExists, contentType.Alias)
	}

	// Store a copy to avoid external modifications
	r.contentTypes[contentType.Alias] = contentType.Clone()
	return nil
}

func (r *Repository) GetContentType(ctx context.Context, alias string) (*simplecms.ContentType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ct, exists := r.contentTypes[alias]
	if !exists {
		return nil, fmt.Errorf("%w: %s", simplecms.ErrContentTypeNotFound, alias)
	}
	return ct.Clone(), nil
}

// Entity operations

func (r *Repository) CreateContent(ctx context.Context, entity *simplecms.ContentEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entity.ContentType == nil {
		return simplecms.ErrInvalidEntity
	}
	if _, exists := r.contentTypes[entity.ContentType.Alias]; !exists {
		return fmt.Errorf("%w: %s", simplecms.ErrContentTypeNotFound, entity.ContentType.Alias)
	}
	if _, exists := r.contents[entity.ID]; exists {
		return fmt.Errorf("%w: content %s", simplecms.ErrAlreadyExists, entity.ID)
	}

	r.contents[entity.ID] = entity.Clone()
	r.children[entity.ParentID] = append(r.children[entity.ParentID], entity.ID)
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*simplecms.ContentEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, exists := r.contents[id]
	if !exists {
		return nil, simplecms.ErrContentNotFound
	}
	// Return a copy to prevent external modifications
	return entity.Clone(), nil
}

func (r *Repository) UpdateContent(ctx context.Context, entity *simplecms.ContentEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.contents[entity.ID]
	if !exists {
		return simplecms.ErrContentNotFound
	}

	if existing.ParentID != entity.ParentID {
		r.children[existing.ParentID] = remove(r.children[existing.ParentID], entity.ID)
		r.children[entity.ParentID] = append(r.children[entity.ParentID], entity.ID)
	}
	r.contents[entity.ID] = entity.Clone()
	return nil
}

func (r *Repository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*simplecms.ContentEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.children[parentID]
	result := make([]*simplecms.ContentEntity, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.contents[id].Clone())
	}

	// Oldest first
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func remove(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

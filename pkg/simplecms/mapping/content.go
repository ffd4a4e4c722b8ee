package mapping

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ProjectDisplay builds the tabbed display model of an entity.
//
// The result has one tab per distinct property group plus the synthetic
// "Generic properties" tab, and exactly as many properties as the entity.
func (p *Projector) ProjectDisplay(entity *simplecms.ContentEntity) (*simplecms.DisplayModel, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: nil entity", simplecms.ErrInvalidEntity)
	}

	tabs, verrs, err := p.GroupTabs(entity.PropertyGroups(), entity.Properties)
	if err != nil {
		return nil, &simplecms.ContentError{ContentID: entity.ID, Op: "project_display", Err: err}
	}

	return &simplecms.DisplayModel{
		ItemIdentity:     p.identity(entity),
		Tabs:             tabs,
		ValidationErrors: verrs,
	}, nil
}

// ProjectDto builds the flat projection with data types and editors
// resolved, in the entity's property order.
func (p *Projector) ProjectDto(entity *simplecms.ContentEntity) (*simplecms.ItemDto, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: nil entity", simplecms.ErrInvalidEntity)
	}

	dto := &simplecms.ItemDto{
		ItemIdentity: p.identity(entity),
		Properties:   make([]*simplecms.DisplayProperty, 0, len(entity.Properties)),
	}
	for _, prop := range entity.Properties {
		dp, err := p.ProjectProperty(prop)
		if err != nil {
			return nil, &simplecms.ContentError{ContentID: entity.ID, Op: "project_dto", Err: err}
		}
		dto.Properties = append(dto.Properties, dp)
	}
	return dto, nil
}

// ProjectBasic builds the flat projection without any lookups besides the
// owner. It returns nil for a nil entity.
func (p *Projector) ProjectBasic(entity *simplecms.ContentEntity) *simplecms.BasicModel {
	if entity == nil {
		return nil
	}

	m := &simplecms.BasicModel{
		ItemIdentity: p.identity(entity),
		Properties:   make([]*simplecms.BasicProperty, 0, len(entity.Properties)),
	}
	for _, prop := range entity.Properties {
		m.Properties = append(m.Properties, ProjectBasicProperty(prop))
	}
	return m
}

func (p *Projector) identity(entity *simplecms.ContentEntity) simplecms.ItemIdentity {
	id := simplecms.ItemIdentity{
		ID:         entity.ID,
		ParentID:   entity.ParentID,
		Name:       entity.Name,
		Kind:       entity.Kind,
		Owner:      p.owner(entity.CreatorID),
		CreateDate: entity.CreatedAt,
		UpdateDate: entity.UpdatedAt,
	}
	if entity.ContentType != nil {
		id.ContentTypeAlias = entity.ContentType.Alias
	}
	return id
}

func (p *Projector) owner(id uuid.UUID) simplecms.Owner {
	if p.users != nil {
		if u, ok := p.users.User(id); ok {
			return simplecms.Owner{UserID: u.ID, Name: u.Name}
		}
	}
	p.logger.Debug("owner not found", "user_id", id)
	return simplecms.Owner{UserID: id, Name: UnknownOwnerName}
}

package mapping

import (
	"sort"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// GenericPropertiesTabID is the id of the synthetic tab.
const GenericPropertiesTabID = 0

// GroupTabs partitions props into one tab per distinct group, in the given
// group order, followed by the synthetic "Generic properties" tab holding
// every property without a declared group. The first tab is active.
//
// In non-strict mode properties that fail to resolve are still placed in
// their tab and reported in the returned validation errors.
func (p *Projector) GroupTabs(groups []*simplecms.PropertyGroup, props []*simplecms.Property) ([]*simplecms.Tab, []simplecms.ValidationError, error) {
	var (
		tabs     []*simplecms.Tab
		verrs    []simplecms.ValidationError
		declared = make(map[int]bool, len(groups))
	)

	project := func(members []*simplecms.Property) ([]*simplecms.DisplayProperty, error) {
		out := make([]*simplecms.DisplayProperty, 0, len(members))
		for _, prop := range members {
			dp, err := p.ProjectProperty(prop)
			if err != nil {
				if p.strict {
					return nil, err
				}
				p.logger.Debug("property projected without editor", "alias", prop.Alias(), "err", err)
				verrs = append(verrs, simplecms.ValidationError{Alias: prop.Alias(), Message: err.Error()})
			}
			out = append(out, dp)
		}
		return out, nil
	}

	for _, g := range groups {
		if declared[g.ID] {
			continue
		}
		declared[g.ID] = true

		var members []*simplecms.Property
		for _, prop := range props {
			if pt := prop.PropertyType; pt != nil && pt.PropertyGroupID != nil && *pt.PropertyGroupID == g.ID {
				members = append(members, prop)
			}
		}
		sortBySortOrder(members)

		dps, err := project(members)
		if err != nil {
			return nil, nil, err
		}
		tabs = append(tabs, &simplecms.Tab{
			ID:         g.ID,
			Label:      g.Name,
			Properties: dps,
		})
	}

	var ungrouped []*simplecms.Property
	for _, prop := range props {
		pt := prop.PropertyType
		if pt == nil || pt.PropertyGroupID == nil || !declared[*pt.PropertyGroupID] {
			ungrouped = append(ungrouped, prop)
		}
	}
	sortBySortOrder(ungrouped)

	dps, err := project(ungrouped)
	if err != nil {
		return nil, nil, err
	}
	tabs = append(tabs, &simplecms.Tab{
		ID:         GenericPropertiesTabID,
		Label:      simplecms.GenericPropertiesTabLabel,
		Properties: dps,
	})

	for i, t := range tabs {
		t.SortIndex = i
		t.IsActive = i == 0
	}
	return tabs, verrs, nil
}

// sortBySortOrder orders properties by their type's sort order; ties keep
// insertion order.
func sortBySortOrder(props []*simplecms.Property) {
	sort.SliceStable(props, func(i, j int) bool {
		return sortOrder(props[i]) < sortOrder(props[j])
	})
}

func sortOrder(prop *simplecms.Property) int {
	if prop.PropertyType == nil {
		return 0
	}
	return prop.PropertyType.SortOrder
}

package directory

import (
	"context"
	"fmt"
)

// GroupAncestors walks the parent chain of a group up to the top level and
// returns the ancestors nearest-first. The walk keeps a visited set and
// fails with ErrHierarchyCycle if the chain ever revisits a group, so a
// corrupted parent graph surfaces instead of looping forever. A dangling
// parent reference surfaces as ErrNotFound from the underlying lookup.
func (s *Service) GroupAncestors(ctx context.Context, groupID int64) ([]Group, error) {
	if groupID <= 0 {
		return nil, fmt.Errorf("%w: group id must be positive", ErrInvalidInput)
	}
	group, err := s.store.GroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	seen := map[int64]struct{}{group.ID: {}}
	var chain []Group
	for group.ParentID != NoParentGroup {
		if _, ok := seen[group.ParentID]; ok {
			return nil, fmt.Errorf("%w: group %d", ErrHierarchyCycle, group.ParentID)
		}
		parent, err := s.store.GroupByID(ctx, group.ParentID)
		if err != nil {
			return nil, fmt.Errorf("resolve parent of group %d: %w", group.ID, err)
		}
		seen[parent.ID] = struct{}{}
		chain = append(chain, parent)
		group = parent
	}
	return chain, nil
}

// IsTopLevel reports whether the group carries the no-parent sentinel and is
// therefore eligible to act as a parent for other groups.
func IsTopLevel(g Group) bool { return g.ParentID == NoParentGroup }

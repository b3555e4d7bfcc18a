package actions

import (
	"context"

	"github.com/shaygp/boxd/internal/models"
)

const DefaultCommentLimit = 50

// LikedBy returns the ids of everyone who liked the target
func (s *Service) LikedBy(ctx context.Context, target Target) ([]string, error) {
	if _, err := s.lookupTarget(ctx, target); err != nil {
		return nil, err
	}
	ids, err := s.likes.LikerIDs(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Comments lists a target's comments oldest first, with each comment's
// likedBy set filled in
func (s *Service) Comments(ctx context.Context, target Target, limit int) ([]models.Comment, error) {
	if _, err := s.lookupTarget(ctx, target); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultCommentLimit
	}
	list, err := s.comments.ListForTarget(ctx, target.ID, limit)
	if err != nil || len(list) == 0 {
		return list, err
	}

	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	likers, err := s.likes.LikersByTarget(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].LikedBy = likers[list[i].ID]
		if list[i].LikedBy == nil {
			list[i].LikedBy = []string{}
		}
	}
	return list, nil
}

package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/suipic/client-go/internal/infra/api"
)

// Comments returns the cached comment thread of a photo.
func (s *Service) Comments(ctx context.Context, photoID int) ([]api.Comment, error) {
	return fetchAs(ctx, s.cache, CommentsKey(photoID), func(ctx context.Context) ([]api.Comment, error) {
		return s.backend.ListComments(ctx, photoID)
	})
}

// AddComment posts a comment or a reply. Top-level comments are appended to
// the cached thread; the thread and the photo detail are then marked stale
// so the server's tree shape reconciles. Replies only invalidate, since
// their position is inside a parent's subtree.
func (s *Service) AddComment(ctx context.Context, photoID int, text string, parentID int) (api.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return api.Comment{}, fmt.Errorf("comment text is required")
	}

	comment, err := s.backend.CreateComment(ctx, photoID, text, parentID)
	if err != nil {
		return api.Comment{}, err
	}

	threadKey := CommentsKey(comment.PhotoID)
	if comment.ParentCommentID == 0 {
		if v, ok := s.cache.Get(threadKey); ok {
			if comments, ok := v.([]api.Comment); ok {
				updated := make([]api.Comment, len(comments))
				for i, c := range comments {
					updated[i] = c.Clone()
				}
				s.cache.Set(threadKey, append(updated, comment))
			}
		}
	}
	s.cache.Invalidate(threadKey)
	s.cache.Invalidate(PhotoKey(comment.PhotoID))

	return comment, nil
}

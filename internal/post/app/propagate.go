package app

import (
	"slices"

	"edu_social_client/internal/post/domain"
)

// Propagate apply patch to every held copy of postID, return the number of lists touched
func (b *Board) Propagate(postID int64, patch func(p *domain.Post)) int {
	touched := 0
	for _, v := range domain.Views {
		if b.feeds[v].Mutate(func(items []domain.Post) ([]domain.Post, bool) {
			found := false
			for i := range items {
				if items[i].ID == postID {
					patch(&items[i])
					found = true
				}
			}
			return items, found
		}) {
			touched++
		}
	}
	return touched
}

// Remove drop postID from every view, return the number of lists touched
func (b *Board) Remove(postID int64) int {
	touched := 0
	for _, v := range domain.Views {
		if b.feeds[v].Mutate(func(items []domain.Post) ([]domain.Post, bool) {
			n := len(items)
			items = slices.DeleteFunc(items, func(p domain.Post) bool { return p.ID == postID })
			return items, len(items) != n
		}) {
			touched++
		}
	}
	return touched
}

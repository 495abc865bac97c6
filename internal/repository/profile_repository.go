package repository

import (
	"context"
	"sort"

	"github.com/vytor/likescenter/internal/models"
)

// DistinctStatuses returns the unique statuses in ss in persisted order.
func DistinctStatuses(ss []models.Status) []models.Status {
	seen := make(map[models.Status]bool, len(ss))
	out := make([]models.Status, 0, len(ss))
	for _, s := range ss {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ListAll is a convenience for an unpaginated List on one status.
func ListAll(ctx context.Context, repo ProfileRepository, status models.Status) ([]models.Profile, error) {
	return repo.List(ctx, models.ProfileFilter{Status: status})
}

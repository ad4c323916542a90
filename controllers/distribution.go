package controllers

import (
	"sort"

	"cleanstreet-be/models"
	"cleanstreet-be/utils"
)

// IssueFeed is the partition of the issue collection relative to one viewer:
// Local holds issues in the viewer's postal code, Other holds the rest.
type IssueFeed struct {
	Local []models.Issue `json:"local"`
	Other []models.Issue `json:"other"`
}

// PartitionIssues splits issues into local and other buckets for the viewer.
// Global admins see everything in Local. A viewer without a usable postal
// code gets an empty Local and everything in Other. Both buckets come back
// newest-first; ties keep their incoming relative order.
func PartitionIssues(viewer models.User, issues []models.Issue) IssueFeed {
	sorted := make([]models.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].CreatedAt.After(sorted[b].CreatedAt)
	})

	feed := IssueFeed{Local: []models.Issue{}, Other: []models.Issue{}}

	if viewer.Role == models.RoleGlobalAdmin {
		feed.Local = sorted
		return feed
	}

	viewerCode := ""
	if viewer.PostalCode != utils.UnknownPostalCode {
		viewerCode = utils.NormalizePostalCode(viewer.PostalCode)
	}

	if viewerCode == "" {
		feed.Other = sorted
		return feed
	}

	for _, issue := range sorted {
		if utils.NormalizePostalCode(issue.PostalCode) == viewerCode {
			feed.Local = append(feed.Local, issue)
		} else {
			feed.Other = append(feed.Other, issue)
		}
	}

	return feed
}

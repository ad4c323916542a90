package controllers

import (
	"testing"
	"time"

	"cleanstreet-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makeIssue(title, postalCode string, createdAt time.Time) models.Issue {
	return models.Issue{
		ID:         primitive.NewObjectID(),
		Title:      title,
		PostalCode: postalCode,
		CreatedAt:  createdAt,
	}
}

func titles(issues []models.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Title)
	}
	return out
}

func TestPartitionIssuesByViewerPostalCode(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issues := []models.Issue{
		makeIssue("same area", "500081", base.Add(2*time.Hour)),
		makeIssue("next area", "500082", base.Add(1*time.Hour)),
		makeIssue("no postal", "", base),
	}
	viewer := models.User{Role: models.RoleUser, PostalCode: "500081"}

	feed := PartitionIssues(viewer, issues)

	assert.Equal(t, []string{"same area"}, titles(feed.Local))
	// Issues without a postal code are not dropped; they land in other
	assert.Equal(t, []string{"next area", "no postal"}, titles(feed.Other))
}

func TestPartitionIssuesGlobalAdminSeesEverythingLocal(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issues := []models.Issue{
		makeIssue("oldest", "500081", base),
		makeIssue("newest", "500082", base.Add(2*time.Hour)),
		makeIssue("middle", "", base.Add(1*time.Hour)),
	}
	viewer := models.User{Role: models.RoleGlobalAdmin, PostalCode: "999999"}

	feed := PartitionIssues(viewer, issues)

	assert.Equal(t, []string{"newest", "middle", "oldest"}, titles(feed.Local))
	assert.Empty(t, feed.Other)
}

func TestPartitionIssuesViewerWithoutPostalCode(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issues := []models.Issue{
		makeIssue("a", "500081", base.Add(time.Hour)),
		makeIssue("b", "500082", base),
	}

	for _, code := range []string{"", "Unknown", "---"} {
		viewer := models.User{Role: models.RoleUser, PostalCode: code}
		feed := PartitionIssues(viewer, issues)
		assert.Empty(t, feed.Local, "postal code %q", code)
		assert.Equal(t, []string{"a", "b"}, titles(feed.Other), "postal code %q", code)
	}
}

func TestPartitionIssuesNormalizesPostalCodes(t *testing.T) {
	issues := []models.Issue{
		makeIssue("spaced", "500 081", time.Now()),
	}
	viewer := models.User{Role: models.RoleUser, PostalCode: "500-081"}

	feed := PartitionIssues(viewer, issues)

	require.Len(t, feed.Local, 1)
	assert.Equal(t, "spaced", feed.Local[0].Title)
	assert.Empty(t, feed.Other)
}

func TestPartitionIssuesSortsNewestFirst(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	issues := []models.Issue{
		makeIssue("day1", "500081", base.AddDate(0, 0, 1)),
		makeIssue("day3", "500081", base.AddDate(0, 0, 3)),
		makeIssue("day2", "500081", base.AddDate(0, 0, 2)),
	}
	viewer := models.User{Role: models.RoleUser, PostalCode: "500081"}

	feed := PartitionIssues(viewer, issues)

	assert.Equal(t, []string{"day3", "day2", "day1"}, titles(feed.Local))
}

func TestPartitionIssuesStableForEqualTimestamps(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issues := []models.Issue{
		makeIssue("first", "500081", at),
		makeIssue("second", "500081", at),
		makeIssue("third", "500081", at),
	}
	viewer := models.User{Role: models.RoleUser, PostalCode: "500081"}

	// Same input must yield the same order every call
	feed := PartitionIssues(viewer, issues)
	assert.Equal(t, []string{"first", "second", "third"}, titles(feed.Local))

	again := PartitionIssues(viewer, issues)
	assert.Equal(t, titles(feed.Local), titles(again.Local))
}

func TestPartitionIssuesDoesNotMutateInput(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	issues := []models.Issue{
		makeIssue("older", "500081", base),
		makeIssue("newer", "500081", base.Add(time.Hour)),
	}
	viewer := models.User{Role: models.RoleUser, PostalCode: "500081"}

	PartitionIssues(viewer, issues)

	assert.Equal(t, "older", issues[0].Title)
	assert.Equal(t, "newer", issues[1].Title)
}

func TestPartitionIssuesEmptyCollection(t *testing.T) {
	viewer := models.User{Role: models.RoleUser, PostalCode: "500081"}

	feed := PartitionIssues(viewer, nil)

	assert.NotNil(t, feed.Local)
	assert.NotNil(t, feed.Other)
	assert.Empty(t, feed.Local)
	assert.Empty(t, feed.Other)
}

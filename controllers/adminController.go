package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"cleanstreet-be/config"
	"cleanstreet-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListUsers returns all registered users for the admin dashboard
func ListUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "memberSince", Value: -1}}).
		SetProjection(bson.M{"password": 0})

	cursor, err := config.GetCollection("users").Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetIssueAnalytics returns aggregate statistics about reported issues
func GetIssueAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issueCollection := config.GetCollection("issues")

	// Issues grouped by type
	typePipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$issueType",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	typeCursor, err := issueCollection.Aggregate(ctx, typePipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get issue type analytics"})
		return
	}
	defer typeCursor.Close(ctx)

	var issuesByType []bson.M
	if err := typeCursor.All(ctx, &issuesByType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issue type analytics"})
		return
	}

	// Issues grouped by status
	statusPipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$status",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	statusCursor, err := issueCollection.Aggregate(ctx, statusPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get status analytics"})
		return
	}
	defer statusCursor.Close(ctx)

	var issuesByStatus []bson.M
	if err := statusCursor.All(ctx, &issuesByStatus); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode status analytics"})
		return
	}

	// Reports per day over the last week
	var last7Days []gin.H
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

		nextDate := date.AddDate(0, 0, 1)

		count, err := issueCollection.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{
				"$gte": date,
				"$lt":  nextDate,
			},
		})
		if err != nil {
			count = 0
		}

		last7Days = append(last7Days, gin.H{
			"date":  date.Format("2006-01-02"),
			"count": count,
		})
	}

	// Top voted among the most recent issues
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(50)

	cursor, err := issueCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues for vote analysis"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	type IssueWithScore struct {
		ID        primitive.ObjectID `json:"id"`
		Title     string             `json:"title"`
		IssueType string             `json:"issueType"`
		Score     int                `json:"score"`
	}

	var scored []IssueWithScore
	for _, issue := range issues {
		scored = append(scored, IssueWithScore{
			ID:        issue.ID,
			Title:     issue.Title,
			IssueType: issue.IssueType,
			Score:     issue.VoteScore(),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	topVotedIssues := scored
	if len(scored) > 5 {
		topVotedIssues = scored[:5]
	}

	totalIssues, err := issueCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		totalIssues = 0
	}

	totalUsers, err := config.GetCollection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		totalUsers = 0
	}

	openIssues, err := issueCollection.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []string{string(models.StatusReported), string(models.StatusInProgress)}},
	})
	if err != nil {
		openIssues = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"issuesByType":   issuesByType,
		"issuesByStatus": issuesByStatus,
		"last7Days":      last7Days,
		"topVotedIssues": topVotedIssues,
		"totalIssues":    totalIssues,
		"totalUsers":     totalUsers,
		"openIssues":     openIssues,
	})
}

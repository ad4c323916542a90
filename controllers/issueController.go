package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cleanstreet-be/config"
	"cleanstreet-be/models"
	"cleanstreet-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	maxIssueImages    = 3
	maxImageSizeBytes = 5 * 1024 * 1024
)

// viewerFromContext resolves the authenticated user set by the auth
// middleware into a full User document.
func viewerFromContext(ctx context.Context, c *gin.Context) (models.User, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.User{}, false
	}

	userIDStr, ok := userIDVal.(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return models.User{}, false
	}

	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return models.User{}, false
	}

	var viewer models.User
	err = config.GetCollection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&viewer)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return models.User{}, false
	}

	return viewer, true
}

// ReportIssue handles the creation of a new issue with up to three images
func ReportIssue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	var input struct {
		Title       string `form:"title" binding:"required,max=200"`
		IssueType   string `form:"issueType" binding:"required,max=100"`
		Priority    string `form:"priority"`
		Address     string `form:"address" binding:"required,max=300"`
		Landmark    string `form:"landmark"`
		Description string `form:"description" binding:"required,max=1000"`
	}

	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priority := models.PriorityMedium
	if input.Priority != "" {
		priority = models.IssuePriority(input.Priority)
		if !priority.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
	}

	// Upload images first; any failure aborts before a document is written
	imageURLs := []string{}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := form.File["images"]
		if len(files) > maxIssueImages {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At most 3 images are allowed"})
			return
		}
		for _, fileHeader := range files {
			if fileHeader.Size > maxImageSizeBytes {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds the 5MB limit"})
				return
			}
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
				return
			}
			url, err := config.ObjectStorage.UploadIssueImage(ctx, fileHeader.Filename, file, fileHeader.Size)
			file.Close()
			if err != nil {
				logrus.WithError(err).WithField("filename", fileHeader.Filename).Error("Image upload failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
				return
			}
			imageURLs = append(imageURLs, url)
		}
	}

	// Geocoding is best effort; a failure never blocks the report
	latitude, longitude, err := geocodeAddress(input.Address)
	if err != nil {
		logrus.WithError(err).Warn("Forward geocoding failed, storing issue without coordinates")
	}

	now := time.Now()
	issue := models.Issue{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		IssueType:   input.IssueType,
		Priority:    priority,
		Address:     input.Address,
		Landmark:    input.Landmark,
		PostalCode:  utils.ExtractPostalCode(input.Address),
		Status:      models.StatusReported,
		ImageURLs:   imageURLs,
		Latitude:    latitude,
		Longitude:   longitude,
		ReportedBy:  viewer.ID,
		Upvotes:     []primitive.ObjectID{},
		Downvotes:   []primitive.ObjectID{},
		Comments:    []models.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := config.GetCollection("issues").InsertOne(ctx, issue); err != nil {
		logrus.WithError(err).Error("Failed to insert issue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Issue reported successfully!",
		"issue":   issue,
	})
}

// GetAllIssues returns every issue partitioned into the viewer's local
// bucket and everything else
func GetAllIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	cursor, err := config.GetCollection("issues").Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	feed := PartitionIssues(viewer, issues)

	c.JSON(http.StatusOK, gin.H{
		"local": feed.Local,
		"other": feed.Other,
	})
}

// GetMyIssues returns the issues the viewer reported, newest first
func GetMyIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := config.GetCollection("issues").Find(ctx, bson.M{"reportedBy": viewer.ID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// GetIssue retrieves a single issue with the reporter's name resolved and
// the viewer's vote flags
func GetIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	var issue models.Issue
	err = config.GetCollection("issues").FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	// The reporter may have been deleted since; degrade instead of failing
	reporterName := "Unknown User"
	var reporter models.User
	if err := config.GetCollection("users").FindOne(ctx, bson.M{"_id": issue.ReportedBy}).Decode(&reporter); err == nil {
		reporterName = reporter.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"issue":          issue,
		"reportedByName": reporterName,
		"votes":          issue.VoteScore(),
		"hasUpvoted":     issue.HasUserUpvoted(viewer.ID),
		"hasDownvoted":   issue.HasUserDownvoted(viewer.ID),
	})
}

// UpdateIssue lets the reporter edit issue fields; staff may also change
// the status
func UpdateIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	var input struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		IssueType   *string `json:"issueType,omitempty"`
		Priority    *string `json:"priority,omitempty"`
		Address     *string `json:"address,omitempty"`
		Landmark    *string `json:"landmark,omitempty"`
		Status      *string `json:"status,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var issue models.Issue
	err = config.GetCollection("issues").FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	isReporter := issue.ReportedBy == viewer.ID
	if !isReporter && !viewer.Role.IsStaff() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to update this issue"})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if isReporter {
		if input.Title != nil {
			update["title"] = *input.Title
		}
		if input.Description != nil {
			update["description"] = *input.Description
		}
		if input.IssueType != nil {
			update["issueType"] = *input.IssueType
		}
		if input.Priority != nil {
			if !models.IssuePriority(*input.Priority).IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
				return
			}
			update["priority"] = *input.Priority
		}
		if input.Address != nil {
			update["address"] = *input.Address
			update["postalCode"] = utils.ExtractPostalCode(*input.Address)
		}
		if input.Landmark != nil {
			update["landmark"] = *input.Landmark
		}
	}
	if input.Status != nil {
		if !viewer.Role.IsStaff() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators can change the status"})
			return
		}
		if !models.IssueStatus(*input.Status).IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		update["status"] = *input.Status
	}

	_, err = config.GetCollection("issues").UpdateOne(ctx, bson.M{"_id": issueID}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue updated successfully"})
}

// DeleteIssue removes an issue; allowed for the reporter and global admins
func DeleteIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	var issue models.Issue
	err = config.GetCollection("issues").FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if issue.ReportedBy != viewer.ID && viewer.Role != models.RoleGlobalAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to delete this issue"})
		return
	}

	if _, err := config.GetCollection("issues").DeleteOne(ctx, bson.M{"_id": issueID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete issue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// ToggleVote flips the viewer's up or down vote on an issue. Voting the same
// direction twice retracts the vote; voting the other direction switches it.
func ToggleVote(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	direction := models.VoteDirection(c.Param("type"))
	if !direction.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote type must be 'up' or 'down'"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	var issue models.Issue
	err = config.GetCollection("issues").FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	voted := issue.ToggleVote(viewer.ID, direction)

	// One declarative update so concurrent voters cannot clobber each other;
	// the document's own atomicity keeps a user out of both sets at once.
	update := bson.M{"$set": bson.M{"updatedAt": time.Now()}}
	switch {
	case direction == models.VoteUp && voted:
		update["$addToSet"] = bson.M{"upvotes": viewer.ID}
		update["$pull"] = bson.M{"downvotes": viewer.ID}
	case direction == models.VoteUp:
		update["$pull"] = bson.M{"upvotes": viewer.ID}
	case direction == models.VoteDown && voted:
		update["$addToSet"] = bson.M{"downvotes": viewer.ID}
		update["$pull"] = bson.M{"upvotes": viewer.ID}
	default:
		update["$pull"] = bson.M{"downvotes": viewer.ID}
	}

	findOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Issue
	err = config.GetCollection("issues").FindOneAndUpdate(ctx, bson.M{"_id": issueID}, update, findOptions).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			logrus.WithError(err).WithField("issue_id", issueID.Hex()).Error("Failed to apply vote")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply vote"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issue":        updated,
		"voted":        voted,
		"upvotes":      len(updated.Upvotes),
		"downvotes":    len(updated.Downvotes),
		"hasUpvoted":   updated.HasUserUpvoted(viewer.ID),
		"hasDownvoted": updated.HasUserDownvoted(viewer.ID),
	})
}

// AddComment appends a comment to an issue, newest first
func AddComment(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	var input struct {
		Text string `json:"text" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment text cannot be empty"})
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Author:    viewer.ID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	// Prepend and bump the denormalized count in one atomic update
	update := bson.M{
		"$push": bson.M{"comments": bson.M{"$each": []models.Comment{comment}, "$position": 0}},
		"$inc":  bson.M{"commentCount": 1},
		"$set":  bson.M{"updatedAt": comment.CreatedAt},
	}

	findOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Issue
	err = config.GetCollection("issues").FindOneAndUpdate(ctx, bson.M{"_id": issueID}, update, findOptions).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			logrus.WithError(err).WithField("issue_id", issueID.Hex()).Error("Failed to add comment")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment": comment,
		"issue":   updated,
	})
}

// DeleteComment removes a comment; only its author may do so
func DeleteComment(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	var issue models.Issue
	err = config.GetCollection("issues").FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	comment := issue.FindComment(commentID)
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if !comment.CanBeDeletedBy(viewer.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to delete this comment"})
		return
	}

	// The filter requires the comment to still be present so the count is
	// decremented exactly once, never below the collection size.
	filter := bson.M{"_id": issueID, "comments.id": commentID}
	update := bson.M{
		"$pull": bson.M{"comments": bson.M{"id": commentID}},
		"$inc":  bson.M{"commentCount": -1},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	findOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Issue
	err = config.GetCollection("issues").FindOneAndUpdate(ctx, filter, update, findOptions).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			logrus.WithError(err).WithField("issue_id", issueID.Hex()).Error("Failed to delete comment")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
		"issue":   updated,
	})
}

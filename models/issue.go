package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssuePriority enum
type IssuePriority string

const (
	PriorityLow    IssuePriority = "low"
	PriorityMedium IssuePriority = "medium"
	PriorityHigh   IssuePriority = "high"
)

func (p IssuePriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	StatusReported   IssueStatus = "reported"
	StatusInProgress IssueStatus = "in progress"
	StatusResolved   IssueStatus = "resolved"
	StatusRejected   IssueStatus = "rejected"
)

func (s IssueStatus) IsValid() bool {
	switch s {
	case StatusReported, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// VoteDirection enum
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

func (d VoteDirection) IsValid() bool {
	return d == VoteUp || d == VoteDown
}

// Comment is one remark attached to an issue. Comments are never edited in
// place; they are created and deleted only.
type Comment struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CanBeDeletedBy reports whether userID may delete this comment. Only the
// author may.
func (c *Comment) CanBeDeletedBy(userID primitive.ObjectID) bool {
	return c.Author == userID
}

// Issue represents a civic problem reported by a user. Upvotes and Downvotes
// are member sets of user IDs; a user appears in at most one of the two.
// CommentCount is denormalized and always equals len(Comments).
type Issue struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description" json:"description"`
	IssueType    string               `bson:"issueType" json:"issueType"`
	Priority     IssuePriority        `bson:"priority" json:"priority"`
	Address      string               `bson:"address" json:"address"`
	Landmark     string               `bson:"landmark,omitempty" json:"landmark,omitempty"`
	PostalCode   string               `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Status       IssueStatus          `bson:"status" json:"status"`
	ImageURLs    []string             `bson:"imageUrls" json:"imageUrls"`
	Latitude     *float64             `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude    *float64             `bson:"longitude,omitempty" json:"longitude,omitempty"`
	ReportedBy   primitive.ObjectID   `bson:"reportedBy" json:"reportedBy"`
	Upvotes      []primitive.ObjectID `bson:"upvotes" json:"upvotes"`
	Downvotes    []primitive.ObjectID `bson:"downvotes" json:"downvotes"`
	Comments     []Comment            `bson:"comments" json:"comments"`
	CommentCount int                  `bson:"commentCount" json:"commentCount"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (i *Issue) HasUserUpvoted(userID primitive.ObjectID) bool {
	return containsID(i.Upvotes, userID)
}

func (i *Issue) HasUserDownvoted(userID primitive.ObjectID) bool {
	return containsID(i.Downvotes, userID)
}

// VoteScore is upvotes minus downvotes.
func (i *Issue) VoteScore() int {
	return len(i.Upvotes) - len(i.Downvotes)
}

// ToggleVote applies the vote toggle state machine for userID:
// voting in the same direction again retracts the vote, voting in the
// opposite direction switches it. Returns true when the user's vote in dir
// is present after the call. The user ends up in at most one of the two
// sets.
func (i *Issue) ToggleVote(userID primitive.ObjectID, dir VoteDirection) bool {
	if dir == VoteUp {
		if i.HasUserUpvoted(userID) {
			i.Upvotes = removeID(i.Upvotes, userID)
			return false
		}
		i.Downvotes = removeID(i.Downvotes, userID)
		i.Upvotes = append(i.Upvotes, userID)
		return true
	}
	if i.HasUserDownvoted(userID) {
		i.Downvotes = removeID(i.Downvotes, userID)
		return false
	}
	i.Upvotes = removeID(i.Upvotes, userID)
	i.Downvotes = append(i.Downvotes, userID)
	return true
}

// AddComment prepends c so the collection stays newest-first and keeps the
// denormalized count in step.
func (i *Issue) AddComment(c Comment) {
	i.Comments = append([]Comment{c}, i.Comments...)
	i.CommentCount++
}

// RemoveComment deletes the comment with the given ID and decrements the
// denormalized count, floored at zero. Returns false when no such comment
// exists.
func (i *Issue) RemoveComment(commentID primitive.ObjectID) bool {
	for j, c := range i.Comments {
		if c.ID == commentID {
			i.Comments = append(i.Comments[:j], i.Comments[j+1:]...)
			if i.CommentCount > 0 {
				i.CommentCount--
			}
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given ID, or nil.
func (i *Issue) FindComment(commentID primitive.ObjectID) *Comment {
	for j := range i.Comments {
		if i.Comments[j].ID == commentID {
			return &i.Comments[j]
		}
	}
	return nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for j, candidate := range ids {
		if candidate == id {
			return append(ids[:j], ids[j+1:]...)
		}
	}
	return ids
}

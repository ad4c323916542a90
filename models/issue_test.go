package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestIssue() *Issue {
	return &Issue{
		ID:        primitive.NewObjectID(),
		Title:     "Pothole on Main St",
		Upvotes:   []primitive.ObjectID{},
		Downvotes: []primitive.ObjectID{},
		Comments:  []Comment{},
	}
}

func assertVoteExclusion(t *testing.T, issue *Issue, userID primitive.ObjectID) {
	t.Helper()
	assert.False(t, issue.HasUserUpvoted(userID) && issue.HasUserDownvoted(userID),
		"user must never be in both vote sets")
}

func TestToggleVoteCastAndRetract(t *testing.T) {
	issue := newTestIssue()
	user := primitive.NewObjectID()

	voted := issue.ToggleVote(user, VoteUp)
	assert.True(t, voted)
	assert.True(t, issue.HasUserUpvoted(user))
	assertVoteExclusion(t, issue, user)

	// Second toggle in the same direction retracts the vote
	voted = issue.ToggleVote(user, VoteUp)
	assert.False(t, voted)
	assert.False(t, issue.HasUserUpvoted(user))
	assert.False(t, issue.HasUserDownvoted(user))
}

func TestToggleVoteSwitchDirection(t *testing.T) {
	issue := newTestIssue()
	user := primitive.NewObjectID()

	issue.ToggleVote(user, VoteDown)
	assert.True(t, issue.HasUserDownvoted(user))

	voted := issue.ToggleVote(user, VoteUp)
	assert.True(t, voted)
	assert.True(t, issue.HasUserUpvoted(user))
	assert.False(t, issue.HasUserDownvoted(user))
	assertVoteExclusion(t, issue, user)
}

func TestToggleVoteSequencesNeverViolateExclusion(t *testing.T) {
	user := primitive.NewObjectID()
	sequences := [][]VoteDirection{
		{VoteUp, VoteUp, VoteUp},
		{VoteUp, VoteDown, VoteUp, VoteDown},
		{VoteDown, VoteDown},
		{VoteUp, VoteDown, VoteDown, VoteUp, VoteUp},
	}

	for _, seq := range sequences {
		issue := newTestIssue()
		for _, dir := range seq {
			issue.ToggleVote(user, dir)
			assertVoteExclusion(t, issue, user)
		}
	}
}

func TestToggleVotePairReturnsToPriorState(t *testing.T) {
	issue := newTestIssue()
	user := primitive.NewObjectID()

	// Start from a downvote, then toggle up twice: the pair must restore
	// the pre-pair state of the up set and leave the down set retracted
	// only by the first switch.
	issue.ToggleVote(user, VoteDown)

	issue.ToggleVote(user, VoteUp)
	issue.ToggleVote(user, VoteUp)
	assert.False(t, issue.HasUserUpvoted(user))

	// From a clean slate the up/up pair is a no-op on membership
	fresh := newTestIssue()
	fresh.ToggleVote(user, VoteUp)
	fresh.ToggleVote(user, VoteUp)
	assert.Empty(t, fresh.Upvotes)
	assert.Empty(t, fresh.Downvotes)
}

func TestVotesAreIndependentPerUser(t *testing.T) {
	issue := newTestIssue()
	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()

	issue.ToggleVote(userA, VoteUp)
	issue.ToggleVote(userB, VoteDown)

	assert.True(t, issue.HasUserUpvoted(userA))
	assert.True(t, issue.HasUserDownvoted(userB))
	assert.Len(t, issue.Upvotes, 1)
	assert.Len(t, issue.Downvotes, 1)
	assert.Equal(t, 0, issue.VoteScore())
}

func TestAddCommentPrependsAndCounts(t *testing.T) {
	issue := newTestIssue()
	author := primitive.NewObjectID()

	first := Comment{ID: primitive.NewObjectID(), Author: author, Text: "first", CreatedAt: time.Now()}
	second := Comment{ID: primitive.NewObjectID(), Author: author, Text: "second", CreatedAt: time.Now()}

	issue.AddComment(first)
	issue.AddComment(second)

	require.Len(t, issue.Comments, 2)
	assert.Equal(t, "second", issue.Comments[0].Text, "newest comment comes first")
	assert.Equal(t, len(issue.Comments), issue.CommentCount)
}

func TestRemoveCommentKeepsCountConsistent(t *testing.T) {
	issue := newTestIssue()
	author := primitive.NewObjectID()

	a := Comment{ID: primitive.NewObjectID(), Author: author, Text: "a"}
	b := Comment{ID: primitive.NewObjectID(), Author: author, Text: "b"}
	issue.AddComment(a)
	issue.AddComment(b)

	removed := issue.RemoveComment(a.ID)
	assert.True(t, removed)
	assert.Equal(t, len(issue.Comments), issue.CommentCount)

	// Removing an unknown comment changes nothing
	removed = issue.RemoveComment(primitive.NewObjectID())
	assert.False(t, removed)
	assert.Equal(t, 1, issue.CommentCount)
	assert.Equal(t, len(issue.Comments), issue.CommentCount)
}

func TestRemoveCommentCountFlooredAtZero(t *testing.T) {
	issue := newTestIssue()
	c := Comment{ID: primitive.NewObjectID(), Author: primitive.NewObjectID(), Text: "only"}
	issue.Comments = []Comment{c}
	// count drifted to zero somehow; removal must not go negative
	issue.CommentCount = 0

	issue.RemoveComment(c.ID)
	assert.Equal(t, 0, issue.CommentCount)
}

func TestCommentCanBeDeletedOnlyByAuthor(t *testing.T) {
	author := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	c := Comment{ID: primitive.NewObjectID(), Author: author, Text: "mine"}

	assert.True(t, c.CanBeDeletedBy(author))
	assert.False(t, c.CanBeDeletedBy(stranger))
}

func TestFindComment(t *testing.T) {
	issue := newTestIssue()
	c := Comment{ID: primitive.NewObjectID(), Author: primitive.NewObjectID(), Text: "hello"}
	issue.AddComment(c)

	found := issue.FindComment(c.ID)
	require.NotNil(t, found)
	assert.Equal(t, "hello", found.Text)

	assert.Nil(t, issue.FindComment(primitive.NewObjectID()))
}

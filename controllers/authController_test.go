package controllers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "user@example.com", "user@example.com"},
		{"mixed case", "User@Example.COM", "user@example.com"},
		{"surrounding whitespace", "  user@example.com  ", "user@example.com"},
		{"whitespace and case together", " User@Example.COM ", "user@example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeEmail(tc.input))
		})
	}
}

func TestIsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}
	assert.True(t, isDuplicateKey(dup))

	cmdDup := mongo.CommandError{Code: 11000}
	assert.True(t, isDuplicateKey(cmdDup))

	assert.False(t, isDuplicateKey(errors.New("connection reset")))
	assert.False(t, isDuplicateKey(nil))
}

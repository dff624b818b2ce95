package httpHandler

import (
	"errors"
	"log"
	"net/http"

	"lung-server/imaging"
	"lung-server/inference"
	"lung-server/usecases"

	"github.com/gin-gonic/gin"
)

// respondError maps use case errors onto status codes. userNotFound is the
// status for an unknown user, which differs between write and read routes.
func respondError(c *gin.Context, err error, userNotFound int) {
	switch {
	case errors.Is(err, usecases.ErrMissingImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
	case errors.Is(err, usecases.ErrMissingField):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields", "details": err.Error()})
	case errors.Is(err, usecases.ErrInvalidField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecases.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
	case errors.Is(err, usecases.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, usecases.ErrUserNotFound):
		msg := "User does not exist"
		if userNotFound == http.StatusNotFound {
			msg = "User not found"
		}
		c.JSON(userNotFound, gin.H{"error": msg})
	case errors.Is(err, imaging.ErrDecode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid image format", "details": err.Error()})
	case errors.Is(err, inference.ErrModelUnavailable):
		log.Printf("model unavailable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Prediction model unavailable"})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

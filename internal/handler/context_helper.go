package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/goalie-roster-api/internal/middleware"
	"github.com/noah-isme/goalie-roster-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// actorID names the caller in logs and job records.
func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	iauth "github.com/anhhh1801/Capstone-ECM/internal/auth"
	"github.com/anhhh1801/Capstone-ECM/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentClaims returns the authenticated identity, when there is one.
func currentClaims(c *gin.Context) (*iauth.Claims, bool) {
	return middleware.ClaimsFromContext(c)
}

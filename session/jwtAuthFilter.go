package session

import (
	"adminboard/bizerror"
	"adminboard/token"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// JwtAuthFilter authenticates requests by the Authorization: Bearer header.
// Only access tokens pass: a refresh token is usable for nothing but obtaining
// a fresh token pair.
func JwtAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			panic(bizerror.ErrUnauthenticated)
		}
		raw := strings.TrimSpace(header[len(bearerPrefix):])

		claims, err := token.DefaultCodec.Verify(raw)
		if err != nil {
			panic(err)
		}
		if !claims.IsAccess() {
			panic(bizerror.ErrTokenInvalid)
		}

		signingTime := time.Time{}
		if claims.IssuedAt != nil {
			signingTime = claims.IssuedAt.Time
		}
		SaveSecurityContext(ctx, &Context{
			Token:       raw,
			Identity:    Identity{ID: claims.UserID, Name: claims.Username},
			Roles:       claims.Roles,
			SigningTime: signingTime,
		})
		ctx.Next()
	}
}

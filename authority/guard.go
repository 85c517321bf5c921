package authority

import (
	"adminboard/bizerror"
	"adminboard/session"

	"github.com/gin-gonic/gin"
)

// Guard wraps inner with a permission requirement. The permission is checked
// against the live resolved set, not the token's role snapshot, so a role or
// permission edit takes effect without forcing a re-login.
func Guard(permission string, inner gin.HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		CheckPermission(ctx, permission)
		inner(ctx)
	}
}

// PermissionFilter is the middleware form of Guard.
func PermissionFilter(permission string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		CheckPermission(ctx, permission)
		ctx.Next()
	}
}

func CheckPermission(ctx *gin.Context, permission string) {
	if permission == "" {
		return
	}
	secCtx := session.FindSecurityContext(ctx)
	if secCtx == nil {
		panic(bizerror.ErrUnauthenticated)
	}
	perms, err := ActiveResolver.Resolve(ctx.Request.Context(), secCtx.Identity.ID)
	if err != nil {
		panic(err)
	}
	if !perms.HasPermission(permission) {
		panic(bizerror.ErrForbidden)
	}
}

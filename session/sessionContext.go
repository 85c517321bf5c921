package session

import (
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

const KeySecCtx = "SecCtx"

// Context is the principal of one in-flight request. It lives in the gin
// context only and is rebuilt from the verified access token on every request.
type Context struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`

	// Roles is the role-code snapshot captured at token issuance. Permission
	// checks never trust it: the guard re-resolves permissions per request.
	Roles []string `json:"roles"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname,omitempty"`
}

func FindSecurityContext(ctx *gin.Context) *Context {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return nil
	}
	secCtx, ok := value.(*Context)
	if !ok || secCtx.Token == "" {
		return nil
	}
	return secCtx
}

func SaveSecurityContext(ctx *gin.Context, secCtx *Context) {
	if secCtx != nil && secCtx.Token != "" {
		ctx.Set(KeySecCtx, secCtx)
	}
}

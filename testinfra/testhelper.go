package testinfra

import (
	"adminboard/session"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx builds an authenticated request principal for tests.
func BuildSecCtx(uid types.ID, roles ...string) *session.Context {
	if roles == nil {
		roles = []string{}
	}
	return &session.Context{
		Token:       "test-token",
		Identity:    session.Identity{ID: uid, Name: "test-user"},
		Roles:       roles,
		SigningTime: time.Now(),
	}
}

// InjectSecCtx returns a middleware that plants the given principal, so REST
// tests can skip the token round-trip.
func InjectSecCtx(secCtx *session.Context) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session.SaveSecurityContext(ctx, secCtx)
		ctx.Next()
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	bodyBytes, _ := ioutil.ReadAll(resp.Body)
	return resp.StatusCode, string(bodyBytes), resp
}

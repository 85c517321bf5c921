package sessions

import (
	"adminboard/account"
	"adminboard/authority"
	"adminboard/bizerror"
	"adminboard/persistence"
	"adminboard/session"
	"adminboard/token"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jinzhu/gorm"
	"golang.org/x/time/rate"
)

// LoginLimiter throttles password attempts process-wide. Var, so tests can
// swap in a tighter or looser limiter.
var LoginLimiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 10)

type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`

	Identity session.Identity `json:"identity"`
	Roles    []string         `json:"roles"`
}

// RegisterSessionsHandler registers the unauthenticated login/refresh routes.
func RegisterSessionsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/sessions", middleWares...)
	g.POST("", SimpleLoginHandler)
	g.PUT("", RefreshSessionHandler)
}

// RegisterSessionHandler registers the authenticated current-session route.
func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/session", middleWares...)
	g.GET("", DetailSessionSecurityContext)
}

func SimpleLoginHandler(c *gin.Context) {
	if !LoginLimiter.Allow() {
		panic(bizerror.ErrTooManyRequests)
	}

	login := LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(err)
	}

	user := account.User{}
	err := persistence.ActiveDataSourceManager.GormDB(c.Request.Context()).
		Model(&account.User{}).Where(&account.User{Name: login.Name, Secret: account.HashSha256(login.Password)}).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			panic(bizerror.ErrUnauthenticated)
		}
		panic(err)
	}

	c.JSON(http.StatusOK, issueTokenPair(c, &user))
}

func RefreshSessionHandler(c *gin.Context) {
	refresh := RefreshRequest{}
	if err := c.ShouldBindBodyWith(&refresh, binding.JSON); err != nil {
		panic(err)
	}

	claims, err := token.DefaultCodec.Verify(refresh.RefreshToken)
	if err != nil {
		panic(err)
	}
	if !claims.IsRefresh() {
		panic(bizerror.ErrTokenInvalid)
	}

	// the account may have been deleted while the refresh token was outstanding
	user, err := account.FindUserById(c.Request.Context(), claims.UserID)
	if err != nil {
		panic(err)
	}

	c.JSON(http.StatusOK, issueTokenPair(c, user))
}

func DetailSessionSecurityContext(c *gin.Context) {
	secCtx := session.FindSecurityContext(c)
	if secCtx == nil {
		panic(bizerror.ErrUnauthenticated)
	}
	perms, err := authority.ActiveResolver.Resolve(c.Request.Context(), secCtx.Identity.ID)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"identity": secCtx.Identity, "roles": secCtx.Roles, "perms": perms})
}

func issueTokenPair(c *gin.Context, user *account.User) *TokenPair {
	roleCodes, err := authority.LoadRoleCodes(c.Request.Context(), user.ID)
	if err != nil {
		panic(err)
	}
	accessToken, err := token.DefaultCodec.IssueAccess(user.ID, user.Name, roleCodes)
	if err != nil {
		panic(err)
	}
	refreshToken, err := token.DefaultCodec.IssueRefresh(user.ID)
	if err != nil {
		panic(err)
	}
	return &TokenPair{
		Token:        accessToken,
		RefreshToken: refreshToken,
		Identity:     session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname},
		Roles:        roleCodes,
	}
}

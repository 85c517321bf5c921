package ws

import (
	"adminboard/account"
	"adminboard/bizerror"
	"adminboard/token"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// CheckHandshake validates the channel-establishment attempt before any
// upgrade happens. The token rides in the `token` query parameter: browser
// WebSocket clients can not set custom headers on the upgrade request.
func CheckHandshake(c *gin.Context) (types.ID, error) {
	raw := c.Query("token")
	if raw == "" {
		return 0, bizerror.ErrUnauthenticated
	}

	claims, err := token.DefaultCodec.Verify(raw)
	if err != nil {
		return 0, err
	}
	// a refresh token must never open a push channel
	if !claims.IsAccess() {
		return 0, bizerror.ErrTokenInvalid
	}

	// the token may outlive its account
	exist, err := account.ExistUserFunc(c.Request.Context(), claims.UserID)
	if err != nil {
		return 0, err
	}
	if !exist {
		return 0, bizerror.ErrUnknownUser
	}
	return claims.UserID, nil
}

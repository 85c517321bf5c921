package notify

import (
	"adminboard/authority"
	"adminboard/bizerror"
	"adminboard/common"
	"adminboard/session"
	"net/http"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterNotificationHandler(r *gin.Engine, d *Dispatcher, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/notifications", middleWares...)
	g.GET("", d.handleListMyNotifications)
	g.GET("/unread", d.handleListUnread)
	g.PUT("/:id/read", d.handleMarkRead)

	a := r.Group("/v1/notification-announcements", middleWares...)
	a.POST("", authority.Guard("notification:announce", d.handleAnnounce))
}

func (d *Dispatcher) handleListMyNotifications(c *gin.Context) {
	secCtx := session.FindSecurityContext(c)
	page := queryIntParam(c, "page", 1)
	pageSize := queryIntParam(c, "pageSize", 10)

	list, err := d.ListMyNotifications(c.Request.Context(), secCtx, page, pageSize)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, list)
}

func (d *Dispatcher) handleListUnread(c *gin.Context) {
	secCtx := session.FindSecurityContext(c)
	if secCtx == nil {
		panic(bizerror.ErrUnauthenticated)
	}
	limit := queryIntParam(c, "limit", 50)

	records, err := d.ListUnread(c.Request.Context(), secCtx.Identity.ID, limit)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func (d *Dispatcher) handleMarkRead(c *gin.Context) {
	secCtx := session.FindSecurityContext(c)
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id"})
		return
	}
	if err := d.MarkRead(c.Request.Context(), secCtx, id); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func (d *Dispatcher) handleAnnounce(c *gin.Context) {
	secCtx := session.FindSecurityContext(c)
	creation := AnnouncementCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(err)
	}
	if err := d.Announce(c.Request.Context(), secCtx, &creation); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func queryIntParam(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

package admin

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, engine Reloader, key string) {
	admin := router.Group("/admin")
	admin.Use(KeyMiddleware(key))

	admin.POST("/reload", Reload(engine))
}

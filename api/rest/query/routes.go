package query

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, r Router) {
	router.POST("/query", Query(r))
}

package ingest

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, pipeline Ingester) {
	router.POST("/ingest", Ingest(pipeline))
}

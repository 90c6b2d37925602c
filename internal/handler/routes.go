package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes 在已经挂载认证中间件的 /api/v1 路由组上注册全部业务路由。
func RegisterRoutes(apiV1 *gin.RouterGroup, taxonomy *TaxonomyHandler, search *SearchHandler, audit *AuditHandler) {
	tax := apiV1.Group("/taxonomy")
	{
		edit := tax.Group("/edit")
		{
			edit.POST("", taxonomy.StartEditing)
			edit.GET("", taxonomy.GetEditState)
			edit.DELETE("", taxonomy.Discard)
			edit.POST("/commit", taxonomy.Commit)

			edit.POST("/create", taxonomy.BeginCreate)
			edit.PUT("/create", taxonomy.SubmitCreate)
			edit.DELETE("/create", taxonomy.CancelCreate)
			edit.POST("/create/confirm", taxonomy.ConfirmCreate)

			edit.PUT("/:rank", taxonomy.Change)
		}
		tax.GET("/options/:rank", taxonomy.ListOptions)
		tax.GET("/search", search.SearchNodes)
	}

	apiV1.GET("/audit", audit.List)
}

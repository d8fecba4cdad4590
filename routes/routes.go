package routes

import (
	"github.com/gin-gonic/gin"

	"Gin_postgres_redis_library_tool/app"
	"Gin_postgres_redis_library_tool/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	bookCtl := controllers.NewBookController(a.Engine, a.Views)

	api := r.Group("/api")
	{
		api.GET("/books", bookCtl.List)
		api.POST("/books", bookCtl.Create)
		api.GET("/books/search", bookCtl.Search) // ?q=keyword
		api.PUT("/books/:id", bookCtl.Update)
		api.DELETE("/books/:id", bookCtl.Delete)

		api.POST("/books/:id/borrow", bookCtl.Borrow)
		api.POST("/books/:id/return", bookCtl.Return)

		api.GET("/loans", bookCtl.ListLoans)
	}
}

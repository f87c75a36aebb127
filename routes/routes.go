package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aramille1/olislab-product-catalog/controllers"
)

// RegisterRoutes wires all application routes to their controllers.
func RegisterRoutes(r *gin.Engine, products *controllers.ProductController, bag *controllers.BagController) {
	api := r.Group("/api")
	{
		productRoutes := api.Group("/products")
		{
			productRoutes.GET("", products.GetProducts)
			productRoutes.POST("", products.LookupProduct)
			productRoutes.GET("/facets", products.GetFacets)
			productRoutes.POST("/filter", products.FilterProducts)
			productRoutes.GET("/search", products.SearchProducts)
			productRoutes.GET("/:id", products.GetProductByID)
		}

		api.POST("/catalog/refresh", products.RefreshCatalog)

		bagRoutes := api.Group("/bag")
		{
			bagRoutes.GET("", bag.GetBag)
			bagRoutes.DELETE("", bag.ClearBag)
			bagRoutes.POST("/items", bag.AddItem)
			bagRoutes.PUT("/items/:product_id", bag.UpdateItem)
			bagRoutes.DELETE("/items/:product_id", bag.RemoveItem)
		}
	}

	r.GET("/health", products.HealthCheck)
}

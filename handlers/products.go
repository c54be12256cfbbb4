package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

func GetProduct(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	product, err := deps.Products.GetByID(c.Request().Context(), objID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func GetProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products, err := deps.Products.ListAll(ctx)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func CreateProduct(c echo.Context) error {
	var product models.Product
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := deps.Products.Insert(ctx, &product); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

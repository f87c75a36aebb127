package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aramille1/olislab-product-catalog/models"
	"github.com/aramille1/olislab-product-catalog/repository"
)

// SessionHeader identifies the shopper. Bags are ephemeral per-session
// state; when the header is missing a fresh session id is issued and
// echoed back so the client can keep it.
const SessionHeader = "X-Session-ID"

type BagController struct {
	repo      *repository.BagRepository
	validator *RequestValidator
}

func NewBagController(repo *repository.BagRepository, validator *RequestValidator) *BagController {
	return &BagController{
		repo:      repo,
		validator: validator,
	}
}

func (bc *BagController) sessionID(c *gin.Context) string {
	sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	c.Header(SessionHeader, sessionID)
	return sessionID
}

// GetBag returns the session's bag: GET /api/bag
func (bc *BagController) GetBag(c *gin.Context) {
	sessionID := bc.sessionID(c)

	bag := bc.repo.GetBag(sessionID)
	if bag == nil {
		bag = &models.Bag{SessionID: sessionID, Items: []models.BagItem{}}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": bag, "total_quantity": bag.TotalQuantity()})
}

// AddItem adds to an item's quantity: POST /api/bag/items
func (bc *BagController) AddItem(c *gin.Context) {
	sessionID := bc.sessionID(c)

	req, err := bc.validator.ParseBagItemRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	bag := bc.repo.Update(sessionID, true, func(bag *models.Bag) {
		for i, existing := range bag.Items {
			if existing.ProductID == req.ProductID {
				bag.Items[i].Quantity += req.Quantity
				return
			}
		}
		bag.Items = append(bag.Items, models.BagItem{ProductID: req.ProductID, Quantity: req.Quantity})
	})
	zap.L().Info("Bag item added",
		zap.String("session_id", sessionID),
		zap.String("product_id", req.ProductID),
		zap.Int("quantity", req.Quantity),
	)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": bag, "total_quantity": bag.TotalQuantity()})
}

// UpdateItem sets an item's quantity; zero or less removes the item:
// PUT /api/bag/items/:product_id
func (bc *BagController) UpdateItem(c *gin.Context) {
	sessionID := bc.sessionID(c)
	productID := c.Param("product_id")

	var req BagQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid payload"})
		return
	}

	found := false
	bag := bc.repo.Update(sessionID, false, func(bag *models.Bag) {
		updated := make([]models.BagItem, 0, len(bag.Items))
		for _, item := range bag.Items {
			if item.ProductID == productID {
				found = true
				if req.Quantity > 0 {
					item.Quantity = req.Quantity
					updated = append(updated, item)
				}
				continue
			}
			updated = append(updated, item)
		}
		bag.Items = updated
	})
	if bag == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "bag not found"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "item not in bag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": bag, "total_quantity": bag.TotalQuantity()})
}

// RemoveItem drops an item: DELETE /api/bag/items/:product_id
func (bc *BagController) RemoveItem(c *gin.Context) {
	sessionID := bc.sessionID(c)
	productID := c.Param("product_id")

	bag := bc.repo.Update(sessionID, false, func(bag *models.Bag) {
		remaining := make([]models.BagItem, 0, len(bag.Items))
		for _, item := range bag.Items {
			if item.ProductID != productID {
				remaining = append(remaining, item)
			}
		}
		bag.Items = remaining
	})
	if bag == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "bag not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": bag, "total_quantity": bag.TotalQuantity()})
}

// ClearBag empties the session's bag: DELETE /api/bag
func (bc *BagController) ClearBag(c *gin.Context) {
	sessionID := bc.sessionID(c)
	bc.repo.DeleteBag(sessionID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "bag cleared"})
}

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/restoscan/resto-app/services"
	"github.com/restoscan/resto-app/utils"
)

type CartController struct {
	Cart    *services.CartService
	Carts   *services.CartStore
	Devices *services.DeviceStore
}

func NewCartController(cart *services.CartService, carts *services.CartStore, devices *services.DeviceStore) *CartController {
	return &CartController{Cart: cart, Carts: carts, Devices: devices}
}

// GetCart returns the device's current cart lines.
func (cc *CartController) GetCart(c *gin.Context) {
	lines := cc.Carts.Lines(deviceKey(c))
	utils.RespondJSON(c, http.StatusOK, "Cart", gin.H{"lines": lines})
}

// AddItem snapshots a priced line into the cart.
func (cc *CartController) AddItem(c *gin.Context) {
	var req struct {
		MenuID  uint           `json:"menu_id" binding:"required"`
		Qty     int            `json:"qty" binding:"required,min=1"`
		Options map[string]any `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	line, err := cc.Cart.AddItem(deviceKey(c), req.MenuID, req.Qty, req.Options)
	if err != nil {
		var unavailable *services.UnavailableItemsError
		if errors.As(err, &unavailable) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Article ajouté au panier", line)
}

// UpdateItem changes the quantity of one cart line by index.
func (cc *CartController) UpdateItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Qty int `json:"qty" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !cc.Carts.UpdateQty(deviceKey(c), index, req.Qty) {
		utils.RespondError(c, http.StatusNotFound, &CustomError{"ligne de panier introuvable"})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Quantité mise à jour", nil)
}

// RemoveItem drops one cart line by index.
func (cc *CartController) RemoveItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !cc.Carts.Remove(deviceKey(c), index) {
		utils.RespondError(c, http.StatusNotFound, &CustomError{"ligne de panier introuvable"})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Article retiré", nil)
}

// ClearCart empties the device's cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	cc.Carts.Clear(deviceKey(c))
	utils.RespondJSON(c, http.StatusOK, "Panier vidé", nil)
}

// PlaceOrder submits the cart as an immutable order against the device's
// current table identity.
func (cc *CartController) PlaceOrder(c *gin.Context) {
	key := deviceKey(c)
	state := cc.Devices.Get(key)

	order, err := cc.Cart.PlaceOrder(key, state.Ref)
	if err != nil {
		var unavailable *services.UnavailableItemsError
		switch {
		case errors.As(err, &unavailable):
			utils.RespondError(c, http.StatusConflict, err)
		case errors.Is(err, services.ErrEmptyCart):
			utils.RespondError(c, http.StatusBadRequest, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Commande envoyée", order)
}

// MyOrders returns the orders this device placed in its current session.
func (cc *CartController) MyOrders(c *gin.Context) {
	state := cc.Devices.Get(deviceKey(c))
	orders, err := cc.Cart.OrdersByIDs(state.ActiveOrders)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders", orders)
}

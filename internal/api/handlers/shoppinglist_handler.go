package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/pkg/shoppinglist"

	"github.com/gofiber/fiber/v2"
)

type (
	ShoppingListHandler interface {
		DownloadShoppingList(c *fiber.Ctx) error
	}

	shoppingListHandler struct {
		shoppingListService shoppinglist.ShoppingListService
	}
)

func NewShoppingListHandler(shoppingListService shoppinglist.ShoppingListService) ShoppingListHandler {
	return &shoppingListHandler{shoppingListService: shoppingListService}
}

func (h *shoppingListHandler) DownloadShoppingList(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	pdf, err := h.shoppingListService.DownloadShoppingList(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, presenters.DomainStatus(err), domain.MessageFailedDownloadShoppingList, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="shopping_list.pdf"`)
	return c.Status(fiber.StatusOK).Send(pdf)
}

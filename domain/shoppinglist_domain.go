package domain

var (
	MessageSuccessDownloadShoppingList = "shopping list generated successfully"
	MessageFailedDownloadShoppingList  = "failed to generate shopping list"
)

type (
	// ShoppingListItem is one grouped row of the exported list: all cart
	// recipes' amounts for the ingredient summed into a single total.
	ShoppingListItem struct {
		Name            string `json:"name"`
		Amount          int    `json:"amount"`
		MeasurementUnit string `json:"measurement_unit"`
	}
)

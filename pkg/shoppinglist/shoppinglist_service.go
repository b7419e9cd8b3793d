package shoppinglist

import (
	"Foodgram-Backend/domain"
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
)

type (
	ShoppingListService interface {
		GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
		DownloadShoppingList(ctx context.Context, userID string) ([]byte, error)
	}

	shoppingListService struct {
		shoppingListRepository ShoppingListRepository
	}
)

func NewShoppingListService(shoppingListRepository ShoppingListRepository) ShoppingListService {
	return &shoppingListService{shoppingListRepository: shoppingListRepository}
}

func (s *shoppingListService) GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	return s.shoppingListRepository.GetShoppingList(ctx, userID)
}

// DownloadShoppingList renders the aggregated list as a PDF document.
// An empty cart still yields a valid document with no rows.
func (s *shoppingListService) DownloadShoppingList(ctx context.Context, userID string) ([]byte, error) {
	items, err := s.shoppingListRepository.GetShoppingList(ctx, userID)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Shopping list", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Shopping list")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 12)
	for i, item := range items {
		line := fmt.Sprintf("%d. %s (%s) - %d", i+1, item.Name, item.MeasurementUnit, item.Amount)
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

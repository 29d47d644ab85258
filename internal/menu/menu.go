package menu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/sheet"
)

// FromRow normalizes one spreadsheet row into a menu item. The sheet stores
// everything as strings: "TRUE" availability flags, "12000" prices, ""/"0"
// quantities. A quantity that fails to parse means the vendor is not
// tracking stock, never that the item is sold out.
func FromRow(row sheet.Row) model.Menu {
	m := model.Menu{
		ID:          row.String("id"),
		Name:        row.String("name"),
		Description: row.String("description"),
		Price:       row.Int64("price"),
		Available:   row.Bool("available"),
		Quantity:    row.OptionalInt("quantity"),
		Image:       row.String("image"),
	}
	if m.ID == "" {
		m.ID = fmt.Sprintf("menu-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	}
	return m
}

// Service reads vendor menus from their spreadsheet.
type Service struct {
	client *sheet.Client
	logger *slog.Logger
}

func NewService(client *sheet.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// List fetches and normalizes the menu sheet of a vendor.
func (s *Service) List(ctx context.Context, scriptURL string) ([]model.Menu, error) {
	rows, err := s.client.Fetch(ctx, scriptURL, sheet.SheetMenus)
	if err != nil {
		return nil, fmt.Errorf("fetch menus: %w", err)
	}

	menus := make([]model.Menu, 0, len(rows))
	for _, row := range rows {
		menus = append(menus, FromRow(row))
	}
	return menus, nil
}

// Find returns the menu with the given id, or nil.
func Find(menus []model.Menu, id string) *model.Menu {
	for i := range menus {
		if menus[i].ID == id {
			return &menus[i]
		}
	}
	return nil
}

package service

import (
	"fmt"
	"log/slog"
	"os"

	"example.com/app/model"
	"example.com/app/store"
)

type OrderService struct {
	repo   store.Repository
	logger *slog.Logger
}

func NewOrderService(repo store.Repository) *OrderService {
	return &OrderService{repo: repo, logger: slog.Default()}
}

func (s *OrderService) Place(id string) (*model.Order, error) {
	order := model.NewOrder(id)
	order.Add(model.Item{SKU: "sku-1", Price: 9.5})
	if err := s.repo.Save(order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	s.logger.Info("placed", "id", id, "pid", os.Getpid())
	return order, nil
}

func (s *OrderService) Restock(items ...model.Item) {
	for _, item := range items {
		s.logger.Debug("restock", "sku", item.SKU, "args", os.Args)
	}
}

package store

import "example.com/app/model"

type Repository interface {
	Save(o *model.Order) error
	Find(id string) (*model.Order, bool)
}

type MemoryRepository struct {
	orders map[string]*model.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]*model.Order)}
}

func (r *MemoryRepository) Save(o *model.Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *MemoryRepository) Find(id string) (*model.Order, bool) {
	o, ok := r.orders[id]
	return o, ok
}

package model

type Order struct {
	ID    string
	Items []Item
	total float64
}

func NewOrder(id string) *Order {
	return &Order{ID: id}
}

func (o *Order) Add(item Item) {
	o.Items = append(o.Items, item)
	o.total += item.Price
}

func (o *Order) Total() float64 { return o.total }

package model

type Item struct {
	SKU   string
	Price float64
}

// Lines 声明在类型所在文件之外
func (o *Order) Lines() []string {
	var lines []string
	for _, it := range o.Items {
		lines = append(lines, it.SKU)
	}
	return lines
}

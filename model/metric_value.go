package model

// ClassMetricValue 类级别的耦合度量
type ClassMetricValue struct {
	NumberOfAttributeInvocationsIncoming   float64 `json:"numberOfAttributeInvocationsIncoming"`
	NumberOfAttributeInvocationsOutgoing   float64 `json:"numberOfAttributeInvocationsOutgoing"`
	NumberOfMethodInvocationsIncoming      float64 `json:"numberOfMethodInvocationsIncoming"`
	NumberOfMethodInvocationsOutgoing      float64 `json:"numberOfMethodInvocationsOutgoing"`
	NumberOfPackageImportsIncoming         float64 `json:"numberOfPackageImportsIncoming"`
	NumberOfPackageImportsOutgoing         float64 `json:"numberOfPackageImportsOutgoing"`
	NumberOfConstructorInvocationsIncoming float64 `json:"numberOfConstructorInvocationsIncoming"`
	NumberOfConstructorInvocationsOutgoing float64 `json:"numberOfConstructorInvocationsOutgoing"`

	BidirectionalNumberOfAttributeInvocations   float64 `json:"bidirectionalNumberOfAttributeInvocations"`
	BidirectionalNumberOfMethodInvocations      float64 `json:"bidirectionalNumberOfMethodInvocations"`
	BidirectionalNumberOfPackageImports         float64 `json:"bidirectionalNumberOfPackageImports"`
	BidirectionalNumberOfConstructorInvocations float64 `json:"bidirectionalNumberOfConstructorInvocations"`
}

// RelationMetricValue 类与某个关联类之间的耦合度量
type RelationMetricValue struct {
	NumberOfPackageImportsIncoming         float64 `json:"numberOfPackageImportsIncoming"`
	NumberOfPackageImportsOutgoing         float64 `json:"numberOfPackageImportsOutgoing"`
	NumberOfAttributeInvocationsIncoming   float64 `json:"numberOfAttributeInvocationsIncoming"`
	NumberOfAttributeInvocationsOutgoing   float64 `json:"numberOfAttributeInvocationsOutgoing"`
	NumberOfMethodInvocationsIncoming      float64 `json:"numberOfMethodInvocationsIncoming"`
	NumberOfMethodInvocationsOutgoing      float64 `json:"numberOfMethodInvocationsOutgoing"`
	NumberOfConstructorInvocationsIncoming float64 `json:"numberOfConstructorInvocationsIncoming"`
	NumberOfConstructorInvocationsOutgoing float64 `json:"numberOfConstructorInvocationsOutgoing"`

	BidirectionalNumberOfPackageImports         float64 `json:"bidirectionalNumberOfPackageImports"`
	BidirectionalNumberOfAttributeInvocations   float64 `json:"bidirectionalNumberOfAttributeInvocations"`
	BidirectionalNumberOfMethodInvocations      float64 `json:"bidirectionalNumberOfMethodInvocations"`
	BidirectionalNumberOfConstructorInvocations float64 `json:"bidirectionalNumberOfConstructorInvocations"`

	// CumulativeNormalisedCoupling 加权归一化综合得分，取值 [0, 1)
	CumulativeNormalisedCoupling float64 `json:"cumulativeNormalisedCoupling"`
}

package grid

import "smartshelf/internal/config"

// Classification 格子状态分类
type Classification int

const (
	ClassOk Classification = iota
	ClassLow
	ClassOutOfStock
	ClassOverCapacity
	ClassWrongProduct
	ClassFault
)

// String 分类名称（日志与通知用）
func (c Classification) String() string {
	switch c {
	case ClassOk:
		return "ok"
	case ClassLow:
		return "low_stock"
	case ClassOutOfStock:
		return "out_of_stock"
	case ClassOverCapacity:
		return "over_capacity"
	case ClassWrongProduct:
		return "wrong_product"
	case ClassFault:
		return "sensor_fault"
	}
	return "unknown"
}

// IsAlert 是否需要触发通知
func (c Classification) IsAlert() bool {
	return c != ClassOk
}

// IsSentinel 数量值是否为哨兵编码（不代表真实库存）
func IsSentinel(quantity int, cfg *config.Config) bool {
	s := cfg.Shelf.Sentinels
	return quantity == s.OverCapacity || quantity == s.WrongProduct || quantity == s.LoadCellFault
}

// Classify 按优先级分类格子数量
// 哨兵编码优先于库存判断：哨兵值是硬件状态编码，不参与库存比较
func Classify(quantity, threshold int, hasProduct bool, cfg *config.Config) Classification {
	s := cfg.Shelf.Sentinels

	switch quantity {
	case s.LoadCellFault:
		return ClassFault
	case s.WrongProduct:
		return ClassWrongProduct
	case s.OverCapacity:
		return ClassOverCapacity
	}

	// 未分配商品的格子不产生库存告警
	if !hasProduct {
		return ClassOk
	}

	if quantity <= 0 {
		return ClassOutOfStock
	}
	// 等于阈值不算低库存，只有低于阈值才告警
	if threshold > 0 && quantity < threshold {
		return ClassLow
	}

	return ClassOk
}

package models

import "time"

// Shelf 货架（拥有固定数量的格子）
type Shelf struct {
	ShelfID   string    `json:"shelf_id"`
	ShelfName string    `json:"shelf_name"`
	Location  string    `json:"location"`
	MacIP     string    `json:"mac_ip"`
	UserID    *string   `json:"user_id,omitempty"` // 负责员工
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadCell 载荷传感器格子（货架上的一个物理格位）
type LoadCell struct {
	LoadCellID        string  `json:"load_cell_id"`
	ShelfID           string  `json:"shelf_id"`
	Floor             int     `json:"floor"`  // 1..层数
	Column            int     `json:"column"` // 1..列数
	ProductID         *string `json:"product_id"`          // nil 表示空格
	PreviousProductID *string `json:"previous_product_id"` // 本次未保存编辑前的商品
	Quantity          int     `json:"quantity"`            // 服务端最近确认数量
	Threshold         int     `json:"threshold"`           // 低库存告警阈值

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GridIndex 行主序格子索引（floor/column 从 1 开始）
func (c *LoadCell) GridIndex(columns int) int {
	return (c.Floor-1)*columns + (c.Column - 1)
}

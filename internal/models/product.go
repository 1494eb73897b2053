package models

import "time"

// Product 商品
type Product struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	ImgURL      string    `json:"img_url"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Weight      float64   `json:"weight"` // 单件重量（克），载荷传感器换算用
	Discount    float64   `json:"discount"`
	MaxQuantity int       `json:"max_quantity"` // 单格容量上限
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package models

import "time"

// Combo 商品组合促销（捆绑销售）
type Combo struct {
	ComboID     string     `json:"combo_id"`
	ComboName   string     `json:"combo_name"`
	Description string     `json:"description"`
	ImgURL      string     `json:"img_url"`
	Price       float64    `json:"price"`
	OldPrice    *float64   `json:"old_price,omitempty"` // 促销前价格
	ProductIDs  []string   `json:"product_ids"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidTo     *time.Time `json:"valid_to,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package catalog

// DefaultProducts is the storefront's built-in product list.
func DefaultProducts() []Product {
	return []Product{
		{
			ID:            "1",
			Name:          "Bột Sắn Dây Nguyên Chất",
			Price:         130000,
			OriginalPrice: 150000,
			Unit:          "kg",
			Category:      "Bột Sắn",
			Image:         "/bot-san-01.png",
			Rating:        5,
			Reviews:       128,
			Stock:         50,
			Badge:         "Bán chạy",
			Description:   "Bột sắn dây nguyên chất, lọc thủ công, không chất bảo quản",
			Weight:        "1kg",
		},
		{
			ID:            "2",
			Name:          "Tinh Bột Nghệ Vàng",
			Price:         250000,
			OriginalPrice: 300000,
			Unit:          "hũ",
			Category:      "Bột Nghệ",
			Image:         "/bot-nghe.png",
			Rating:        4.8,
			Reviews:       96,
			Stock:         30,
			Badge:         "Mới",
			Description:   "Tinh bột nghệ tươi xay mịn, giữ nguyên dưỡng chất",
			Weight:        "500g",
		},
		{
			ID:            "3",
			Name:          "Nem Nắm Truyền Thống",
			Price:         85000,
			OriginalPrice: 100000,
			Unit:          "chục",
			Category:      "Nem Nắm",
			Image:         "/nem-nam.png",
			Rating:        4.9,
			Reviews:       210,
			Stock:         80,
			Badge:         "Đặc sản",
			Description:   "Nem nắm làm theo công thức gia truyền, thơm ngon đậm đà",
			Weight:        "10 chiếc",
		},
	}
}

func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Bột Sắn", Image: "/bot-san-01.png", Description: "Bột sắn nguyên chất, không chất bảo quản"},
		{ID: "2", Name: "Bột Nghệ", Image: "/bot-nghe.png", Description: "Bột nghệ tươi xay mịn, giữ nguyên dưỡng chất"},
		{ID: "3", Name: "Nem Nắm", Image: "/nem-nam.png", Description: "Nem nắm truyền thống, thơm ngon đậm đà"},
	}
}

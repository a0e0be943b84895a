package catalog

import (
	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
)

// Fixed ids keep links stable across restarts.
var (
	SushiCaHoiID    = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0001")
	BoMyNuongID     = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0002")
	LauThaiID       = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0003")
	SashimiCaHoiID  = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0004")
	TomSuNuongID    = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0005")
	LauKimchiID     = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0006")
	CanhGaNuongID   = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0007")
	SuonNuongID     = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0008")
	BuffetClassicID = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0101")
	BuffetPremiumID = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0102")
	BuffetRoyalID   = uuid.MustParse("6f1c0b7e-0c2a-4b8e-9a11-2d7f3e5a0103")
)

// Default returns the restaurant's standard menu and buffet tiers.
func Default() *Catalog {
	return New(defaultItems(), defaultTiers())
}

func defaultItems() []model.MenuItem {
	return []model.MenuItem{
		{
			ID:          SushiCaHoiID,
			Name:        "Sushi Cá Hồi",
			Description: "Sushi được phủ lớp cá hồi tươi ngon trên nền cơm trắng mịn, cuốn rong biển",
			Price:       35000,
			Category:    "Sushi & Sashimi",
			Available:   true,
		},
		{
			ID:          BoMyNuongID,
			Name:        "Bò Mỹ Nướng BBQ",
			Description: "Bò Mỹ thượng hạng được tẩm ướp và nướng trên than hồng, thơm ngọt đặc trưng",
			Price:       95000,
			Category:    "BBQ",
			Available:   true,
		},
		{
			ID:          LauThaiID,
			Name:        "Lẩu Thái Chua Cay",
			Description: "Nước lẩu Thái chua cay đặc trưng với hương vị đậm đà, hấp dẫn",
			Price:       120000,
			Category:    "Lẩu",
			Image:       "/images/lt.jpg",
			Available:   true,
		},
		{
			ID:          SashimiCaHoiID,
			Name:        "Sashimi Cá Hồi",
			Description: "Cá hồi tươi ngon được thái lát mỏng, phục vụ với gừng và wasabi",
			Price:       85000,
			Category:    "Sushi & Sashimi",
			Available:   true,
		},
		{
			ID:          TomSuNuongID,
			Name:        "Tôm Sú Nướng Muối Ớt",
			Description: "Tôm sú tươi nướng với muối ớt đặc biệt của nhà hàng",
			Price:       95000,
			Category:    "Hải Sản",
			Image:       "/images/tsnmo.jpg",
			Available:   true,
		},
		{
			ID:          LauKimchiID,
			Name:        "Lẩu Kimchi",
			Description: "Lẩu kimchi cay nồng đặc trưng ẩm thực Hàn Quốc",
			Price:       150000,
			Category:    "Lẩu",
			Image:       "/images/lkc.jpg",
			Available:   true,
		},
		{
			ID:          CanhGaNuongID,
			Name:        "Cánh Gà Nướng BBQ",
			Description: "Cánh gà tẩm ướp gia vị đặc biệt, nướng trên bếp than hoa thơm nức",
			Price:       65000,
			Category:    "BBQ",
			Available:   true,
		},
		{
			ID:          SuonNuongID,
			Name:        "Sườn Nướng BBQ",
			Description: "Sườn heo tươi ngon được tẩm ướp và nướng trên bếp than hồng",
			Price:       85000,
			Category:    "BBQ",
			Available:   true,
		},
	}
}

func defaultTiers() []model.MenuItem {
	return []model.MenuItem{
		{
			ID:          BuffetClassicID,
			Name:        "Buffet Classic",
			Description: "Lẩu và nướng không giới hạn, nước lẩu tiêu chuẩn",
			Price:       229000,
			Category:    enum.CategoryBuffetPackage,
			Available:   true,
		},
		{
			ID:          BuffetPremiumID,
			Name:        "Buffet Premium",
			Description: "Thêm bò Mỹ, hải sản và sushi",
			Price:       289000,
			Category:    enum.CategoryBuffetPackage,
			Available:   true,
		},
		{
			ID:          BuffetRoyalID,
			Name:        "Buffet Royal",
			Description: "Toàn bộ thực đơn kèm sashimi cá hồi và tôm sú",
			Price:       349000,
			Category:    enum.CategoryBuffetPackage,
			Available:   true,
		},
	}
}

package jobs

import (
	"log"

	"erp.GO/config"
	catalogRepo "erp.GO/model/repository/catalog"
)

// LowStockJob logs every product at or below its minimum quantity so the
// report shows up in scheduler output. Runs hourly by default.
func LowStockJob(args ...string) {
	db, err := config.NewDB()
	if err != nil {
		log.Printf("lowstockjob: database connection failed: %v", err)
		return
	}
	repo := catalogRepo.NewProductRepository(db)
	products, err := repo.LowStock()
	if err != nil {
		log.Printf("lowstockjob: query failed: %v", err)
		return
	}
	if len(products) == 0 {
		log.Println("lowstockjob: all products above minimum quantity")
		return
	}
	for _, p := range products {
		log.Printf("lowstockjob: %s (%s) quantity=%d minimum=%d", p.Name, p.SKU, p.Quantity, p.MinimumQuantity)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"erp.GO/config"
	entity "erp.GO/model/entity"
	catalogEntity "erp.GO/model/entity/catalog"
	inventoryEntity "erp.GO/model/entity/inventory"
	salesEntity "erp.GO/model/entity/sales"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables from the entity definitions",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}
		err = db.AutoMigrate(
			&entity.User{},
			&entity.Role{},
			&entity.Permission{},
			&entity.ActivityLog{},
			&catalogEntity.Product{},
			&salesEntity.Order{},
			&salesEntity.OrderItem{},
			&inventoryEntity.InventoryIn{},
			&inventoryEntity.InventoryOut{},
		)
		if err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			return
		}
		fmt.Println("Migration complete.")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"erp.GO/config"
	entity "erp.GO/model/entity"
	rbacRepo "erp.GO/model/repository/rbac"
	accountService "erp.GO/service/account"
)

var (
	adminUsername string
	adminPassword string
	adminEmail    string
	adminName     string
)

// Permissions seeded for the admin role. RequirePermission gates on these
// pairs, RequireRole("admin") covers the rest of the admin surface.
var adminPermissions = []entity.Permission{
	{Name: "inventory:delete", Resource: "inventory", Action: "delete"},
	{Name: "orders:delete", Resource: "orders", Action: "delete"},
}

var adminCreateCmd = &cobra.Command{
	Use:   "admin:create",
	Short: "Create an admin user with the admin role and full permissions",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}

		repo := rbacRepo.NewRbacRepository(db)
		role, err := repo.FindRoleByName("admin")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			desc := "Full access"
			role = &entity.Role{Name: "admin", Description: &desc}
			if err := repo.CreateRole(role); err != nil {
				fmt.Printf("Failed to create admin role: %v\n", err)
				return
			}
		} else if err != nil {
			fmt.Printf("Failed to load admin role: %v\n", err)
			return
		}

		for _, want := range adminPermissions {
			var perm entity.Permission
			err := db.Where("resource = ? AND action = ?", want.Resource, want.Action).First(&perm).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				perm = want
				if err := repo.CreatePermission(&perm); err != nil {
					fmt.Printf("Failed to create permission %s:%s: %v\n", want.Resource, want.Action, err)
					return
				}
			} else if err != nil {
				fmt.Printf("Failed to load permission %s:%s: %v\n", want.Resource, want.Action, err)
				return
			}
			if err := repo.GrantPermission(role, &perm); err != nil {
				fmt.Printf("Failed to grant permission %s:%s: %v\n", want.Resource, want.Action, err)
				return
			}
		}

		svc := accountService.NewUserService(db)
		user, err := svc.Register(accountService.RegisterRequest{
			Username: adminUsername,
			Password: adminPassword,
			Email:    adminEmail,
			Name:     adminName,
		})
		if err != nil {
			fmt.Printf("Failed to create user: %v\n", err)
			return
		}
		if err := svc.AssignRole(user.UserID, role); err != nil {
			fmt.Printf("Failed to assign admin role: %v\n", err)
			return
		}
		fmt.Printf("Admin user %q created (id=%d).\n", user.Username, user.UserID)
	},
}

func init() {
	adminCreateCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "Admin username (required)")
	adminCreateCmd.MarkFlagRequired("username")
	adminCreateCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "Admin password (required)")
	adminCreateCmd.MarkFlagRequired("password")
	adminCreateCmd.Flags().StringVarP(&adminEmail, "email", "e", "", "Admin email (required)")
	adminCreateCmd.MarkFlagRequired("email")
	adminCreateCmd.Flags().StringVarP(&adminName, "name", "n", "", "Display name")
	rootCmd.AddCommand(adminCreateCmd)
}

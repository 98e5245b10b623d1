package cmd

import (
	"academy/config"
	"academy/logger"
	"academy/models"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var setAdminCmd = &cobra.Command{
	Use:   "set-admin",
	Short: "Mark an existing user as admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer syncLogger()
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			email = config.AppConfig.AdminEmail
		}
		if email == "" {
			return errors.New("--email is required when ADMIN_EMAIL is not set")
		}

		db, err := connect()
		if err != nil {
			return err
		}

		var user models.User
		if err := db.WithContext(cmd.Context()).Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user with email %s not found; create the account first", email)
			}
			return err
		}

		updates := map[string]interface{}{"is_admin": true}
		if password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), config.AppConfig.SaltRound)
			if err != nil {
				return err
			}
			updates["password"] = string(hash)
		}
		if err := db.WithContext(cmd.Context()).Model(&user).Updates(updates).Error; err != nil {
			return err
		}

		logger.Log.Info("admin granted", zap.Uint("userId", user.ID), zap.String("email", email))
		fmt.Fprintf(cmd.OutOrStdout(), "%s (ID %d) is now an admin.\n", user.FullName(), user.ID)
		return nil
	},
}

func init() {
	setAdminCmd.Flags().String("email", "", "Email of the user (defaults to ADMIN_EMAIL)")
	setAdminCmd.Flags().String("password", "", "Optionally set a new login password")
}

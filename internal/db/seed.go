package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seed inserts a demo recipient with pending positions unless it exists.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", "demo@example.com").First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		addr := models.Address{Recipient: "Demo Customer", Street: "Main Street 1", PostalCode: "10115", Locality: "Berlin", Country: "DE"}
		if err := tx.Create(&addr).Error; err != nil {
			return fmt.Errorf("seed address: %w", err)
		}
		user := models.User{
			Email:                "demo@example.com",
			Name:                 "Demo Customer",
			IsNotified:           true,
			IsAutoInvoiced:       true,
			AutoInvoiceFrequency: models.FrequencyMonthly,
			BillingAddressID:     &addr.ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("seed user: %w", err)
		}

		rate := decimal.NewFromInt(19)
		for _, p := range []models.InvoicePosition{
			{Description: "Hosting", Quantity: decimal.NewFromInt(1), Tags: []string{"hosting"}},
			{Description: "Support hours", Quantity: decimal.RequireFromString("2.5")},
		} {
			p.UserID = user.ID
			p.SetUnitPrice(money.NewPrice(4900, "EUR", money.Net, rate))
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("seed position: %w", err)
			}
		}
		return nil
	})
}

package documentsgorm

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shehrozeikram/ERP-sub009/internal/modules"
)

// Base carries the columns every workflow table shares.
type Base struct {
	ID              string `gorm:"primaryKey;size:64"`
	Status          string `gorm:"size:32"`
	WorkflowStatus  string `gorm:"size:128;index"`
	WorkflowHistory datatypes.JSON
	CreatedBy       string    `gorm:"size:64;index"`
	UpdatedBy       string    `gorm:"size:64"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time `gorm:"index"`
}

type PaymentSettlement struct {
	Base
	ReferenceNumber string `gorm:"size:64;index"`
	ToWhomPaid      string `gorm:"size:200"`
	ForWhat         string `gorm:"size:500"`
	FromDepartment  string `gorm:"size:100"`
	Amount          string `gorm:"size:64"`
	GrandTotal      string `gorm:"size:64"`
	Date            *time.Time
}

func (PaymentSettlement) TableName() string { return "payment_settlements" }

type UtilityBill struct {
	Base
	BillID      string `gorm:"size:64;index"`
	UtilityType string `gorm:"size:64"`
	Provider    string `gorm:"size:200"`
	Description string `gorm:"size:500"`
	Amount      string `gorm:"size:64"`
	BillDate    *time.Time
	DueDate     *time.Time
}

func (UtilityBill) TableName() string { return "utility_bills" }

type RentalAgreement struct {
	Base
	AgreementNumber string `gorm:"size:64;index"`
	PropertyName    string `gorm:"size:200"`
	LandlordName    string `gorm:"size:200"`
	MonthlyRent     string `gorm:"size:64"`
	StartDate       *time.Time
	EndDate         *time.Time
}

func (RentalAgreement) TableName() string { return "rental_agreements" }

// AutoMigrate creates the default workflow tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&PaymentSettlement{}, &UtilityBill{}, &RentalAgreement{})
}

// DefaultDescriptors describe the default tables in display order.
func DefaultDescriptors() []modules.Descriptor {
	return []modules.Descriptor{
		{
			Key: "payment_settlement", Name: "Payment Settlement", Table: "payment_settlements",
			TitleField: "reference_number", DescriptionField: "for_what", AmountField: "grand_total", DateField: "date",
			LegacyStatusField: "status", RoutePath: "/admin/payment-settlement", Icon: "payment",
		},
		{
			Key: "utility_bills_management", Name: "Utility Bills", Table: "utility_bills",
			TitleField: "bill_id", DescriptionField: "description", AmountField: "amount", DateField: "bill_date",
			LegacyStatusField: "status", RoutePath: "/admin/utility-bills", Icon: "receipt",
		},
		{
			Key: "rental_agreements", Name: "Rental Agreements", Table: "rental_agreements",
			TitleField: "agreement_number", DescriptionField: "property_name", AmountField: "monthly_rent", DateField: "start_date",
			LegacyStatusField: "status", RoutePath: "/admin/rental-agreements", Icon: "home",
		},
	}
}

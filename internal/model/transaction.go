package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeCustomerPurchase TransactionType = "CUSTOMER_PURCHASE"
	TransactionTypeDonationPurchase TransactionType = "DONATION_PURCHASE"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionTypeCustomerPurchase || t == TransactionTypeDonationPurchase
}

// Transaction 交易紀錄，只新增不修改
type Transaction struct {
	ID                int             `json:"id" db:"id"`
	PayerUserID       int             `json:"payer_user_id" db:"payer_user_id"`
	PayeeRestaurantID int             `json:"payee_restaurant_id" db:"payee_restaurant_id"`
	ReservationID     int             `json:"reservation_id" db:"reservation_id"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Type              TransactionType `json:"type" db:"type"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

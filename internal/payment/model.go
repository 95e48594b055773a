// File: internal/payment/model.go
package payment

import "time"

// CoinPackage is a purchasable bundle of coins.
type CoinPackage struct {
	Coins int `json:"coins"`
	Price int `json:"price"`
}

// Packages is the fixed catalogue of coin bundles, in dollars.
var Packages = []CoinPackage{
	{Coins: 10, Price: 1},
	{Coins: 150, Price: 10},
	{Coins: 500, Price: 20},
	{Coins: 1000, Price: 35},
}

// PackageForCoins returns the catalogue entry for a coin count.
func PackageForCoins(coins int) (CoinPackage, bool) {
	for _, p := range Packages {
		if p.Coins == coins {
			return p, true
		}
	}
	return CoinPackage{}, false
}

// Payment is a settled coin purchase.
type Payment struct {
	ID            string    `json:"id"`
	BuyerEmail    string    `json:"buyer_email"`
	Coins         int       `json:"coins"`
	Price         int       `json:"price"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// IntentRequest starts a purchase for one catalogue package.
type IntentRequest struct {
	Coins int `json:"coins" binding:"required,gt=0"`
}

// Intent is the processor handle the browser completes payment against.
type Intent struct {
	ClientSecret string `json:"client_secret"`
}

// ConfirmRequest records a completed purchase.
type ConfirmRequest struct {
	Coins         int    `json:"coins" binding:"required,gt=0"`
	TransactionID string `json:"transaction_id" binding:"required"`
}

package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Shielded-Bit/QABA-sub000/models"

	"github.com/shopspring/decimal"
)

// Fee rates are configured as fractions (0.05 == 5%). Separate rates apply
// for sale and rent listings.
const (
	defaultQabaFeeSaleRate         = 0.05
	defaultQabaFeeRentRate         = 0.05
	defaultAgentCommissionSaleRate = 0.10
	defaultAgentCommissionRentRate = 0.10
)

func rateFromEnv(key string, fallback float64) decimal.Decimal {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
			return decimal.NewFromFloat(v)
		}
	}
	return decimal.NewFromFloat(fallback)
}

func qabaFeeRate(listingType string) decimal.Decimal {
	if listingType == models.ListingTypeRent {
		return rateFromEnv("QABA_FEE_RENT_RATE", defaultQabaFeeRentRate)
	}
	return rateFromEnv("QABA_FEE_SALE_RATE", defaultQabaFeeSaleRate)
}

func agentCommissionRate(listingType string) decimal.Decimal {
	if listingType == models.ListingTypeRent {
		return rateFromEnv("AGENT_COMMISSION_RENT_RATE", defaultAgentCommissionRentRate)
	}
	return rateFromEnv("AGENT_COMMISSION_SALE_RATE", defaultAgentCommissionSaleRate)
}

// FeeBreakdown is the server-side fee computation for a listing.
type FeeBreakdown struct {
	QabaFee         float64 `json:"qabaFee"`
	AgentCommission float64 `json:"agentCommission"`
	TotalPrice      float64 `json:"totalPrice"`
}

// CalculateFees computes the platform fee, agent commission and total price
// for a listing. The agent commission only applies when the lister is an
// agent. All figures are rounded half-up to 2 decimals.
func CalculateFees(basePrice float64, listingType, listerRole string, serviceCharge, cautionFee, legalFee float64) (FeeBreakdown, error) {
	if basePrice <= 0 {
		return FeeBreakdown{}, fmt.Errorf("base price must be greater than zero")
	}

	base := decimal.NewFromFloat(basePrice)

	qabaFee := base.Mul(qabaFeeRate(listingType)).Round(2)

	agentCommission := decimal.Zero
	if listerRole == models.RoleAgent {
		agentCommission = base.Mul(agentCommissionRate(listingType)).Round(2)
	}

	total := base.
		Add(qabaFee).
		Add(agentCommission).
		Add(decimal.NewFromFloat(serviceCharge)).
		Add(decimal.NewFromFloat(cautionFee)).
		Add(decimal.NewFromFloat(legalFee)).
		Round(2)

	qf, _ := qabaFee.Float64()
	ac, _ := agentCommission.Float64()
	tp, _ := total.Float64()
	return FeeBreakdown{QabaFee: qf, AgentCommission: ac, TotalPrice: tp}, nil
}

// CheckQuotedTotal rejects a client-supplied total that disagrees with the
// server-side recomputation, quoting the expected value back.
func CheckQuotedTotal(quoted float64, computed FeeBreakdown) error {
	if !decimal.NewFromFloat(quoted).Equal(decimal.NewFromFloat(computed.TotalPrice)) {
		return fmt.Errorf("total_price does not match the computed value; expected %s",
			decimal.NewFromFloat(computed.TotalPrice).StringFixed(2))
	}
	return nil
}

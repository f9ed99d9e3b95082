package domain

import "time"

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSucceeded  PaymentStatus = "succeeded"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// FeeBreakdown itemizes permit fees. All amounts are in cents.
type FeeBreakdown struct {
	BaseFee       int64 `json:"baseFee"`
	ProcessingFee int64 `json:"processingFee"`
	InspectionFee int64 `json:"inspectionFee"`
	ExpediteFee   int64 `json:"expediteFee,omitempty"`
	Total         int64 `json:"total"`
}

// Payment records one checkout for a permit application.
type Payment struct {
	ID            string        `json:"id"`
	ApplicationID string        `json:"applicationId"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	PermitType    PermitType    `json:"permitType"`
	FeeBreakdown  FeeBreakdown  `json:"feeBreakdown"`
	SessionID     string        `json:"sessionId,omitempty"`
	PaidAt        time.Time     `json:"paidAt,omitzero"`
	RefundedAt    time.Time     `json:"refundedAt,omitzero"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type feeRate struct {
	base       int64
	processing int64
	inspection int64
}

// permitFees is the published fee schedule in cents, keyed by project type
// then permit type.
var permitFees = map[ProjectType]map[PermitType]feeRate{
	ProjectResidential: {
		PermitBuilding:   {base: 15000, processing: 2500, inspection: 5000},
		PermitElectrical: {base: 8000, processing: 2000, inspection: 3000},
		PermitPlumbing:   {base: 7500, processing: 2000, inspection: 3000},
		PermitMechanical: {base: 9000, processing: 2000, inspection: 3500},
		PermitDemolition: {base: 5000, processing: 1500, inspection: 2500},
		PermitZoning:     {base: 12000, processing: 3000, inspection: 0},
	},
	ProjectCommercial: {
		PermitBuilding:   {base: 50000, processing: 7500, inspection: 15000},
		PermitElectrical: {base: 25000, processing: 5000, inspection: 7500},
		PermitPlumbing:   {base: 22500, processing: 4500, inspection: 7500},
		PermitMechanical: {base: 30000, processing: 5500, inspection: 10000},
		PermitDemolition: {base: 18000, processing: 4000, inspection: 8000},
		PermitZoning:     {base: 35000, processing: 8000, inspection: 0},
	},
}

// CalculateFees computes the fee breakdown for a permit. estimatedCost is the
// project cost in dollars; building permits scale the base fee by $1 per $10k
// of project cost. Expedited service adds 50% of the subtotal. Unknown
// combinations fall back to a flat schedule derived from the project type.
func CalculateFees(permitType PermitType, projectType ProjectType, estimatedCost float64, expedited bool) FeeBreakdown {
	rates, ok := permitFees[projectType]
	var rate feeRate
	if ok {
		rate, ok = rates[permitType]
	}
	if !ok {
		base := int64(10000)
		if projectType == ProjectCommercial {
			base = 25000
		}
		rate = feeRate{
			base:       base,
			processing: base * 30 / 100,
			inspection: base * 40 / 100,
		}
	}

	baseFee := rate.base
	if permitType == PermitBuilding && estimatedCost > 0 {
		multiplier := int64(estimatedCost / 10000)
		if multiplier < 1 {
			multiplier = 1
		}
		baseFee += multiplier * 100
	}

	breakdown := FeeBreakdown{
		BaseFee:       baseFee,
		ProcessingFee: rate.processing,
		InspectionFee: rate.inspection,
	}
	breakdown.Total = breakdown.BaseFee + breakdown.ProcessingFee + breakdown.InspectionFee

	if expedited {
		breakdown.ExpediteFee = breakdown.Total / 2
		breakdown.Total += breakdown.ExpediteFee
	}

	return breakdown
}

// PaymentAnalytics summarizes checkout outcomes for the admin dashboard.
type PaymentAnalytics struct {
	TotalRevenue       int64   `json:"totalRevenue"`
	MonthlyRevenue     int64   `json:"monthlyRevenue"`
	TotalTransactions  int     `json:"totalTransactions"`
	SucceededPayments  int     `json:"succeededPayments"`
	FailedPayments     int     `json:"failedPayments"`
	PendingPayments    int     `json:"pendingPayments"`
	SuccessRatePercent float64 `json:"successRatePercent"`
}

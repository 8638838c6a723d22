package models

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "DRAFT"
	CampaignActive    CampaignStatus = "ACTIVE"
	CampaignCompleted CampaignStatus = "COMPLETED"
	CampaignCancelled CampaignStatus = "CANCELLED"
)

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignCompleted, CampaignCancelled:
		return true
	}
	return false
}

type DonationType string

const (
	DonationCreditCard DonationType = "CC"
	DonationCheck      DonationType = "CHECK"
	DonationCash       DonationType = "CASH"
	DonationOther      DonationType = "OTHER"
)

func (t DonationType) Valid() bool {
	switch t {
	case DonationCreditCard, DonationCheck, DonationCash, DonationOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// ReceiptStatus tracks the acknowledgment workflow of a donation,
// independent of its payment status.
type ReceiptStatus string

const (
	ReceiptNotRequested ReceiptStatus = "NOT_REQUESTED"
	ReceiptRequested    ReceiptStatus = "REQUESTED"
	ReceiptQueued       ReceiptStatus = "QUEUED"
	ReceiptPrinted      ReceiptStatus = "PRINTED"
	ReceiptFailed       ReceiptStatus = "FAILED"
)

func (s ReceiptStatus) Valid() bool {
	switch s {
	case ReceiptNotRequested, ReceiptRequested, ReceiptQueued, ReceiptPrinted, ReceiptFailed:
		return true
	}
	return false
}

type PledgeStatus string

const (
	PledgePledged            PledgeStatus = "PLEDGED"
	PledgePartiallyFulfilled PledgeStatus = "PARTIALLY_FULFILLED"
	PledgeFulfilled          PledgeStatus = "FULFILLED"
	PledgeCancelled          PledgeStatus = "CANCELLED"
)

func (s PledgeStatus) Valid() bool {
	switch s {
	case PledgePledged, PledgePartiallyFulfilled, PledgeFulfilled, PledgeCancelled:
		return true
	}
	return false
}

type IncentiveStatus string

const (
	IncentiveActive   IncentiveStatus = "active"
	IncentiveInactive IncentiveStatus = "inactive"
	IncentiveArchived IncentiveStatus = "archived"
)

func (s IncentiveStatus) Valid() bool {
	switch s {
	case IncentiveActive, IncentiveInactive, IncentiveArchived:
		return true
	}
	return false
}

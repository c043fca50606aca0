package models

import "time"

const DateLayout = "2006-01-02"

// TradingRecord is one row returned by the /dynamics/ and /trading-results/
// endpoints. Volume and Total are null in the source data when a product
// traded no lots.
type TradingRecord struct {
	TradeDate       string   `json:"trade_date"`
	OilID           string   `json:"oil_id"`
	DeliveryTypeID  string   `json:"delivery_type_id"`
	DeliveryBasisID string   `json:"delivery_basis_id"`
	Volume          *float64 `json:"volume"`
	Total           *float64 `json:"total"`
	Count           int      `json:"count"`
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

// DefaultDateRange ends on the calendar day of now and starts days earlier.
func DefaultDateRange(now time.Time, days int) DateRange {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DateRange{Start: end.AddDate(0, 0, -days), End: end}
}

func (r DateRange) StartString() string { return r.Start.Format(DateLayout) }
func (r DateRange) EndString() string   { return r.End.Format(DateLayout) }

// QueryFilter holds the optional instrument filters plus a limit. Values are
// kept as typed by the user; blank ones are left out of the request.
type QueryFilter struct {
	OilID           string
	DeliveryTypeID  string
	DeliveryBasisID string
	Limit           string
}

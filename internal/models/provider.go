package models

// RailType is the settlement channel a fiat provider operates on.
type RailType string

const (
	RailTypeMobileMoney RailType = "mobile-money"
	RailTypeBank        RailType = "bank"
)

// Provider is an immutable catalog entry describing a fiat payment provider
// and the single currency it settles in.
type Provider struct {
	ID                 string   `mapstructure:"id" json:"id"`
	Name               string   `mapstructure:"name" json:"name"`
	Description        string   `mapstructure:"description" json:"description,omitempty"`
	RailType           RailType `mapstructure:"rail_type" json:"rail_type"`
	SettlementCurrency Currency `mapstructure:"-" json:"settlement_currency"`
}

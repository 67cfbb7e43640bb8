package db

import (
	"time"
)

// Asset is a row of public.assets joined to its category name.
type Asset struct {
	ID                    string
	UserID                string
	Title                 string
	CategoryID            *string
	CategoryName          string
	Brand                 string
	ModelName             string
	SerialNumber          string
	PurchasePrice         *float64
	PurchaseCurrency      string
	PurchaseDate          *time.Time
	CurrentEstimatedValue *float64
	EstimateCurrency      string
	PurchaseURL           string
	ReceiptURL            string
	Notes                 string
	CurrentCondition      string
	AssetTypeID           *string
	AddressCity           string
	AddressCountry        string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// AssetInput holds the user-editable columns of an asset. Empty strings are
// stored as null.
type AssetInput struct {
	Title                 string
	CategoryID            *string
	Brand                 string
	ModelName             string
	SerialNumber          string
	PurchasePrice         *float64
	PurchaseCurrency      string
	PurchaseDate          *time.Time
	CurrentEstimatedValue *float64
	EstimateCurrency      string
	PurchaseURL           string
	ReceiptURL            string
	Notes                 string
	CurrentCondition      string
	AssetTypeID           *string
	AddressCity           string
	AddressCountry        string
}

type Category struct {
	ID   string
	Name string
}

// AssetType is a canonical catalog entry that user assets can link to.
type AssetType struct {
	ID           string
	Name         string
	Brand        string
	ModelName    string
	CategoryName string
}

type UserSettings struct {
	UserID       string
	BaseCurrency string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CurrencyPair is a base/quote pair some user's dashboard needs, with the
// time it was last fetched if ever.
type CurrencyPair struct {
	Base          string
	Quote         string
	LastFetchedAt *time.Time
}

type FXRate struct {
	Base      string
	Quote     string
	Rate      float64
	FetchedAt time.Time
	Provider  string
}

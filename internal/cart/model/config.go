package model

import "time"

// ================ Config ================

// StorageKind selects the StateStorage backend.
type StorageKind string

const (
	StorageMemory StorageKind = "memory"
	StorageRedis  StorageKind = "redis"
	StorageFile   StorageKind = "file"
)

type CartConfig struct {
	Storage     StorageKind   `envconfig:"CART_STORAGE" default:"memory"`
	TTL         time.Duration `envconfig:"CART_TTL" default:"720h"`
	FilePath    string        `envconfig:"CART_FILE_PATH" default:".data/cart.json"`
	SessionID   string        `envconfig:"CART_SESSION_ID"`
	CatalogPath string        `envconfig:"CART_CATALOG_PATH"`
}

type DataLayerConfig struct {
	Sink         string        `envconfig:"DATALAYER_SINK" default:"memory"`
	TTL          time.Duration `envconfig:"DATALAYER_TTL" default:"24h"`
	PageTitle    string        `envconfig:"PAGE_TITLE" default:"Storefront"`
	PageLocation string        `envconfig:"PAGE_LOCATION" default:"http://localhost/"`
}

package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/storefront-poc-v1/server/internal/cart/model"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Products []yamlProduct `yaml:"products"`
}

// Prices are read as strings so "29.90" keeps its exact decimal value.
type yamlProduct struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Price   string `yaml:"price"`
	BaseImg string `yaml:"baseImg"`
}

// Decode reads a catalog document of the form:
//
//	products:
//	  - id: 1
//	    name: Canvas Tote Bag
//	    price: 29.99
//	    baseImg: img/tote.jpg
func Decode(r io.Reader) (*Static, error) {
	var doc yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return New(nil)
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	products := make([]model.Product, 0, len(doc.Products))
	for i, p := range doc.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product at index %d: invalid price %q: %w", i, p.Price, err)
		}
		products = append(products, model.Product{
			ID:      p.ID,
			Name:    p.Name,
			Price:   price,
			BaseImg: p.BaseImg,
		})
	}
	return New(products)
}

// LoadFile opens path and decodes it as a catalog document.
func LoadFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}

package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario describes the actors of a supply chain run. It is usually read from
// a YAML file.
type Scenario struct {
	Name      string         `yaml:"name"`
	Horizon   time.Duration  `yaml:"horizon"`
	Banks     []BankSpec     `yaml:"banks"`
	Suppliers []SupplierSpec `yaml:"suppliers"`
	Buyers    []BuyerSpec    `yaml:"buyers"`
}

type BankSpec struct {
	Id string `yaml:"id"`
}

type SupplierSpec struct {
	Id              string      `yaml:"id"`
	UnitPrice       float64     `yaml:"unitPrice"`
	Stock           int         `yaml:"stock"`
	RestockAmount   int         `yaml:"restockAmount"`
	Ordering        string      `yaml:"ordering"`
	HandlingDelay   DelayParams `yaml:"handlingDelay"`
	RestockInterval DelayParams `yaml:"restockInterval"`
	TransportDelay  DelayParams `yaml:"transportDelay"`
}

type BuyerSpec struct {
	Id             string      `yaml:"id"`
	Product        string      `yaml:"product"`
	Amount         int         `yaml:"amount"`
	Suppliers      []string    `yaml:"suppliers"`
	Bank           string      `yaml:"bank"`
	DemandInterval DelayParams `yaml:"demandInterval"`
	WarehouseDelay DelayParams `yaml:"warehouseDelay"`
}

// ParseScenario decodes a scenario without validating it.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := &Scenario{}
	if err := yaml.Unmarshal(data, scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return scenario, nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if err = scenario.Validate(); err != nil {
		return nil, err
	}
	return scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Horizon <= 0 {
		return errors.New("scenario horizon must be positive")
	}
	if len(s.Buyers) == 0 || len(s.Suppliers) == 0 {
		return errors.New("scenario needs at least one buyer and one supplier")
	}

	known := make(map[string]string)
	declare := func(id string, kind string) error {
		if id == "" {
			return fmt.Errorf("%v without id", kind)
		}
		if previous, ok := known[id]; ok {
			return fmt.Errorf("id '%v' used by both a %v and a %v", id, previous, kind)
		}
		known[id] = kind
		return nil
	}
	for _, bank := range s.Banks {
		if err := declare(bank.Id, "bank"); err != nil {
			return err
		}
	}
	for _, supplier := range s.Suppliers {
		if err := declare(supplier.Id, "supplier"); err != nil {
			return err
		}
	}
	for _, buyer := range s.Buyers {
		if err := declare(buyer.Id, "buyer"); err != nil {
			return err
		}
	}

	for _, supplier := range s.Suppliers {
		if supplier.RestockAmount > 0 && !supplier.RestockInterval.IsRecurring() {
			return fmt.Errorf("supplier '%v' restocks without a positive interval", supplier.Id)
		}
	}

	for _, buyer := range s.Buyers {
		if !buyer.DemandInterval.IsRecurring() {
			return fmt.Errorf("buyer '%v' needs a positive demand interval", buyer.Id)
		}
		if buyer.Amount <= 0 {
			return fmt.Errorf("buyer '%v' must order a positive amount", buyer.Id)
		}
		if known[buyer.Bank] != "bank" {
			return fmt.Errorf("buyer '%v' refers to unknown bank '%v'", buyer.Id, buyer.Bank)
		}
		if len(buyer.Suppliers) == 0 {
			return fmt.Errorf("buyer '%v' has no suppliers", buyer.Id)
		}
		for _, supplier := range buyer.Suppliers {
			if known[supplier] != "supplier" {
				return fmt.Errorf("buyer '%v' refers to unknown supplier '%v'", buyer.Id, supplier)
			}
		}
	}
	return nil
}

package domain

import "fmt"

// PricingMode determines how the price of a booking is derived
type PricingMode string

const (
	// PricingPerNight цена за каждую ночь полуинтервала [StartDate, EndDate)
	PricingPerNight PricingMode = "per_night"
	// PricingFlatRate фиксированная цена, EndDate принудительно равен StartDate
	PricingFlatRate PricingMode = "flat_rate"
)

// ServiceCatalogEntry статическая конфигурация услуги
// Неизменяема во время работы; задается конфигурацией деплоя, не booking flow
type ServiceCatalogEntry struct {
	ServiceID      string
	Name           string
	CapacityPerDay int // 0 = без ограничения вместимости
	PricingMode    PricingMode
	RateMinor      int64 // ставка в минорных единицах валюты
}

// IsUnlimited returns true if the service has no shared capacity constraint
func (e *ServiceCatalogEntry) IsUnlimited() bool {
	return e.CapacityPerDay == 0
}

// Validate проверяет корректность конфигурации услуги
func (e *ServiceCatalogEntry) Validate() error {
	if e.ServiceID == "" {
		return fmt.Errorf("%w: empty service id", ErrInvalidServiceConfig)
	}
	if e.CapacityPerDay < 0 {
		return fmt.Errorf("%w: service %q: negative capacity", ErrInvalidServiceConfig, e.ServiceID)
	}
	if e.RateMinor < 0 {
		return fmt.Errorf("%w: service %q: negative rate", ErrInvalidServiceConfig, e.ServiceID)
	}
	switch e.PricingMode {
	case PricingPerNight, PricingFlatRate:
	default:
		return fmt.Errorf("%w: service %q: unknown pricing mode %q", ErrInvalidServiceConfig, e.ServiceID, e.PricingMode)
	}
	return nil
}

// Catalog каталог услуг деплоя, индексированный по serviceId
type Catalog map[string]*ServiceCatalogEntry

// NewCatalog строит каталог из списка записей с валидацией
func NewCatalog(entries []*ServiceCatalogEntry) (Catalog, error) {
	catalog := make(Catalog, len(entries))
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, err
		}
		if _, exists := catalog[entry.ServiceID]; exists {
			return nil, fmt.Errorf("%w: duplicate service %q", ErrInvalidServiceConfig, entry.ServiceID)
		}
		catalog[entry.ServiceID] = entry
	}
	return catalog, nil
}

// Get возвращает запись каталога или ErrUnknownService
func (c Catalog) Get(serviceID string) (*ServiceCatalogEntry, error) {
	entry, ok := c[serviceID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, serviceID)
	}
	return entry, nil
}

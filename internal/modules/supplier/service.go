package supplier

import (
	"context"
	"strings"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/ttacon/libphonenumber"
)

type Service interface {
	CreateSupplier(ctx context.Context, req CreateRequest) (*Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error)
	ListSuppliers(ctx context.Context, active *bool) ([]*Supplier, error)
	SetSupplierActive(ctx context.Context, id uuid.UUID, active bool) (*Supplier, error)
}

type service struct {
	repo          Repository
	defaultRegion string
}

// NewService creates a supplier service. defaultRegion is the ISO region used
// to parse phone numbers when the supplier country is not recognised.
func NewService(repo Repository, defaultRegion string) Service {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	return &service{repo: repo, defaultRegion: defaultRegion}
}

func (s *service) CreateSupplier(ctx context.Context, req CreateRequest) (*Supplier, error) {
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return nil, apperr.InvalidFields(map[string]string{"company_name": "required"})
	}
	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = "USA"
	}

	phone, err := NormalizePhone(req.Phone, regionFor(country, s.defaultRegion))
	if err != nil {
		return nil, apperr.InvalidFields(map[string]string{"phone": err.Error()})
	}

	supplier := &Supplier{
		ID:            uuid.New(),
		CompanyName:   name,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Email:         strings.TrimSpace(req.Email),
		Phone:         phone,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		SupplierType:  strings.TrimSpace(req.SupplierType),
		PaymentTerms:  req.PaymentTerms,
		Country:       country,
		IsActive:      true,
	}
	if err := s.repo.CreateSupplier(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *service) GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

func (s *service) ListSuppliers(ctx context.Context, active *bool) ([]*Supplier, error) {
	return s.repo.ListSuppliers(ctx, active)
}

func (s *service) SetSupplierActive(ctx context.Context, id uuid.UUID, active bool) (*Supplier, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.repo.GetSupplier(ctx, id)
}

// NormalizePhone validates phone for region and returns it in E.164 form.
// An empty phone is allowed.
func NormalizePhone(phone, region string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}
	p, err := libphonenumber.Parse(phone, region)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", errInvalidPhone
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

var errInvalidPhone = apperr.Validation("phone number is not valid")

func regionFor(country, fallback string) string {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "USA", "US", "UNITED STATES":
		return "US"
	case "MEXICO", "MÉXICO", "MX", "MEX":
		return "MX"
	case "CANADA", "CA", "CAN":
		return "CA"
	default:
		return fallback
	}
}

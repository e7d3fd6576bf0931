package organisations

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, org Organisation) (Organisation, error)
	CountForUser(ctx context.Context, userID int64) (int, error)
	ListForUser(ctx context.Context, userID int64) ([]Organisation, error)
	GetForUser(ctx context.Context, id, userID int64) (Organisation, error)
	DefaultForUser(ctx context.Context, userID int64) (Organisation, error)
	Update(ctx context.Context, id, userID int64, updates map[string]any) error
}

// PlanPort answers whether a user is on an active premium plan.
type PlanPort interface {
	IsPremium(ctx context.Context, userID int64) (bool, error)
}

// Service provides business logic for organisation management.
type Service struct {
	repo     RepositoryPort
	plans    PlanPort
	validate *validator.Validate
}

// NewService constructs an organisations service.
func NewService(repo RepositoryPort, plans PlanPort) *Service {
	return &Service{repo: repo, plans: plans, validate: validator.New()}
}

// Create registers a new organisation. The first organisation is free;
// additional ones require an active premium plan.
func (s *Service) Create(ctx context.Context, userID int64, req CreateOrganisationRequest) (Organisation, error) {
	if err := s.validate.Struct(req); err != nil {
		return Organisation{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	count, err := s.repo.CountForUser(ctx, userID)
	if err != nil {
		return Organisation{}, fmt.Errorf("count organisations: %w", err)
	}
	if count >= 1 {
		premium, err := s.plans.IsPremium(ctx, userID)
		if err != nil {
			return Organisation{}, fmt.Errorf("check plan: %w", err)
		}
		if !premium {
			return Organisation{}, fmt.Errorf("%w: premium plan required for multiple organisations", httpx.ErrForbidden)
		}
	}

	org := Organisation{
		UserID:              userID,
		Name:                req.Name,
		TradeName:           req.TradeName,
		GSTIN:               req.GSTIN,
		PAN:                 req.PAN,
		Address:             req.Address,
		City:                req.City,
		State:               req.State,
		StateCode:           req.StateCode,
		Pincode:             req.Pincode,
		Phone:               req.Phone,
		Email:               req.Email,
		LogoURL:             req.LogoURL,
		BankName:            req.BankName,
		BankBranch:          req.BankBranch,
		AccountHolderName:   req.AccountHolderName,
		AccountNumber:       req.AccountNumber,
		IFSC:                req.IFSC,
		UPI:                 req.UPI,
		AuthorizedSignatory: req.AuthorizedSignatory,
		SignatureURL:        req.SignatureURL,
		CompanySealURL:      req.CompanySealURL,
	}

	created, err := s.repo.Create(ctx, org)
	if err != nil {
		return Organisation{}, fmt.Errorf("create organisation: %w", err)
	}
	return created, nil
}

// List returns all organisations owned by the user.
func (s *Service) List(ctx context.Context, userID int64) ([]Organisation, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Get retrieves one organisation owned by the user.
func (s *Service) Get(ctx context.Context, id, userID int64) (Organisation, error) {
	return s.repo.GetForUser(ctx, id, userID)
}

// Default returns the user's first organisation, the implicit scope for
// document operations when no organisation id is supplied.
func (s *Service) Default(ctx context.Context, userID int64) (Organisation, error) {
	return s.repo.DefaultForUser(ctx, userID)
}

// Resolve picks the organisation for a request. raw is an optional
// organisation id from the query string; empty means the user's default.
func (s *Service) Resolve(ctx context.Context, userID int64, raw string) (Organisation, error) {
	if raw == "" {
		return s.Default(ctx, userID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Organisation{}, fmt.Errorf("%w: organisation id must be numeric", httpx.ErrValidation)
	}
	return s.Get(ctx, id, userID)
}

// Update applies partial changes to an organisation.
func (s *Service) Update(ctx context.Context, id, userID int64, req UpdateOrganisationRequest) (Organisation, error) {
	if err := s.validate.Struct(req); err != nil {
		return Organisation{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if _, err := s.repo.GetForUser(ctx, id, userID); err != nil {
		return Organisation{}, err
	}

	updates := make(map[string]any)
	setIf(updates, "name", req.Name)
	setIf(updates, "trade_name", req.TradeName)
	setIf(updates, "address", req.Address)
	setIf(updates, "city", req.City)
	setIf(updates, "state", req.State)
	setIf(updates, "state_code", req.StateCode)
	setIf(updates, "pincode", req.Pincode)
	setIf(updates, "phone", req.Phone)
	setIf(updates, "email", req.Email)
	setIf(updates, "logo_url", req.LogoURL)
	setIf(updates, "bank_name", req.BankName)
	setIf(updates, "bank_branch", req.BankBranch)
	setIf(updates, "account_holder_name", req.AccountHolderName)
	setIf(updates, "account_number", req.AccountNumber)
	setIf(updates, "ifsc", req.IFSC)
	setIf(updates, "upi", req.UPI)
	setIf(updates, "authorized_signatory", req.AuthorizedSignatory)
	setIf(updates, "signature_url", req.SignatureURL)
	setIf(updates, "company_seal_url", req.CompanySealURL)

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, userID, updates); err != nil {
			return Organisation{}, fmt.Errorf("update organisation: %w", err)
		}
	}
	return s.repo.GetForUser(ctx, id, userID)
}

func setIf(updates map[string]any, column string, value *string) {
	if value != nil {
		updates[column] = *value
	}
}

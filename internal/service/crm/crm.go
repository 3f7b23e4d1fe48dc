// Package crm implements the CRM domain façade: contact and deal management
// over the CRM store.
package crm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowline-ai/flowline/internal/model"
	"github.com/flowline-ai/flowline/internal/storage"
)

var (
	// ErrNameRequired is returned when create_contact omits the name.
	ErrNameRequired = errors.New("crm: name is required")
	// ErrTitleRequired is returned when create_deal omits the title.
	ErrTitleRequired = errors.New("crm: title is required")
	// ErrContactMissing is returned in strict mode when a deal references a
	// contact that does not exist.
	ErrContactMissing = errors.New("crm: contact does not exist")
)

// Options configures service policies.
type Options struct {
	// StrictRefs makes CreateDeal verify that the referenced contact exists.
	// Off by default: the historical behavior stores dangling contact_ids
	// silently.
	StrictRefs bool
}

// Service is the CRM domain façade.
type Service struct {
	db     *storage.DB
	opts   Options
	logger *slog.Logger
}

// New creates the CRM service around an already-opened store.
func New(db *storage.DB, opts Options, logger *slog.Logger) *Service {
	return &Service{db: db, opts: opts, logger: logger}
}

// CreateContactInput carries the caller-supplied contact fields. Optional
// fields are pointers; nil means "not provided" and round-trips as null.
type CreateContactInput struct {
	Name    string
	Email   *string
	Phone   *string
	Company *string
	Tags    []string
}

// CreateContact stores a new contact and returns its generated id. Tags
// default to an empty list, never null.
func (s *Service) CreateContact(ctx context.Context, in CreateContactInput) (int64, error) {
	if in.Name == "" {
		return 0, ErrNameRequired
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	id, err := s.db.CreateContact(ctx, model.Contact{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Company: in.Company,
		Tags:    tags,
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("contact created", "contact_id", id)
	return id, nil
}

// GetContact returns the contact with the given id, or (nil, nil) when no
// such contact exists. A missing contact is a result, not a failure.
func (s *Service) GetContact(ctx context.Context, id int64) (*model.Contact, error) {
	contact, err := s.db.GetContact(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// CreateDealInput carries the caller-supplied deal fields.
type CreateDealInput struct {
	ContactID int64
	Title     string
	Value     float64
	Stage     string
}

// CreateDeal stores a new deal and returns its generated id. Stage defaults
// to "new". In strict mode the referenced contact must exist; otherwise the
// contact_id is stored as given.
func (s *Service) CreateDeal(ctx context.Context, in CreateDealInput) (int64, error) {
	if in.Title == "" {
		return 0, ErrTitleRequired
	}
	stage := in.Stage
	if stage == "" {
		stage = model.DefaultDealStage
	}

	if s.opts.StrictRefs {
		if _, err := s.db.GetContact(ctx, in.ContactID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return 0, fmt.Errorf("%w: contact_id %d", ErrContactMissing, in.ContactID)
			}
			return 0, err
		}
	}

	id, err := s.db.CreateDeal(ctx, model.Deal{
		ContactID: in.ContactID,
		Title:     in.Title,
		Value:     in.Value,
		Stage:     stage,
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("deal created", "deal_id", id, "contact_id", in.ContactID, "stage", stage)
	return id, nil
}

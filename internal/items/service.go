package items

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"lostfound/internal/apperr"
	"lostfound/internal/policy"
	"lostfound/internal/users"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, it Item) (Item, error)
	Get(ctx context.Context, id string) (Item, error)
	List(ctx context.Context, typ string) ([]Item, error)
	SetClaimed(ctx context.Context, id string, at time.Time) error
	ClearClaimed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Directory resolves user records for the reporter snapshot.
type Directory interface {
	ByID(ctx context.Context, id string) (users.User, error)
}

// Service orchestrates the report lifecycle: create, claim, unclaim, delete.
// Authorization goes through the policy package; the existence check always
// runs before the permission check, so a missing report is NotFound for
// every caller.
type Service struct {
	store Store
	dir   Directory
	now   func() time.Time
}

// NewService creates a lifecycle service.
func NewService(store Store, dir Directory) *Service {
	return &Service{store: store, dir: dir, now: time.Now}
}

// CreateInput carries the fields of a new report. Date is ISO-8601, either a
// full timestamp or a bare date.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Contact     string `json:"contact"`
	ImageURL    string `json:"imageUrl"`
}

func (in CreateInput) validate() error {
	return validation.Errors{
		"title":       validation.Validate(in.Title, validation.Required, validation.Length(3, 100)),
		"description": validation.Validate(in.Description, validation.Required, validation.Length(10, 500)),
		"type":        validation.Validate(in.Type, validation.Required, validation.In(TypeLost, TypeFound)),
		"location":    validation.Validate(in.Location, validation.Required, validation.Length(3, 100)),
		"date":        validation.Validate(in.Date, validation.Required, validation.By(isoDate)),
		"contact":     validation.Validate(in.Contact, validation.Required, validation.Length(5, 50)),
		"imageUrl":    validation.Validate(in.ImageURL, is.URL),
	}.Filter()
}

func isoDate(value interface{}) error {
	s, _ := value.(string)
	_, err := parseDate(s)
	return err
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// Create files a new report for the acting user. The reporter's name is
// snapshotted once from the directory; it is never recomputed on later
// renames. New reports always start unclaimed.
func (s *Service) Create(ctx context.Context, actor policy.Actor, in CreateInput) (Item, error) {
	if !policy.CanCreateItem(actor) {
		return Item{}, apperr.ErrForbidden
	}
	if err := in.validate(); err != nil {
		return Item{}, err
	}
	reporter, err := s.dir.ByID(ctx, actor.ID)
	if err != nil {
		return Item{}, err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return Item{}, err
	}
	return s.store.Insert(ctx, Item{
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Location:    in.Location,
		Date:        date,
		Contact:     in.Contact,
		ImageURL:    in.ImageURL,
		ReportedBy: Reporter{
			ID:    reporter.ID,
			Name:  reporter.Name,
			Email: reporter.Email,
		},
		Claimed:   false,
		ClaimedAt: nil,
	})
}

// MarkClaimed marks a report claimed. Allowed for the reporter or an admin.
// Re-marking an already-claimed report is not an error; claimedAt refreshes
// to the current time.
func (s *Service) MarkClaimed(ctx context.Context, actor policy.Actor, itemID string) (Item, error) {
	it, err := s.store.Get(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	if !policy.CanMarkClaimed(actor, it.ReportedBy.ID) {
		return Item{}, apperr.ErrForbidden
	}
	now := s.now().UTC()
	if err := s.store.SetClaimed(ctx, itemID, now); err != nil {
		return Item{}, err
	}
	it.Claimed = true
	it.ClaimedAt = &now
	return it, nil
}

// UnmarkClaimed resets a report to unclaimed. Admin only. Idempotent:
// claimedAt is cleared regardless of prior state.
func (s *Service) UnmarkClaimed(ctx context.Context, actor policy.Actor, itemID string) (Item, error) {
	it, err := s.store.Get(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	if !policy.CanUnmarkClaimed(actor) {
		return Item{}, apperr.ErrForbidden
	}
	if err := s.store.ClearClaimed(ctx, itemID); err != nil {
		return Item{}, err
	}
	it.Claimed = false
	it.ClaimedAt = nil
	return it, nil
}

// Delete removes a report permanently. Admin only.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, itemID string) error {
	if _, err := s.store.Get(ctx, itemID); err != nil {
		return err
	}
	if !policy.CanDeleteItem(actor) {
		return apperr.ErrForbidden
	}
	return s.store.Delete(ctx, itemID)
}

// List returns reports newest first. typ filters by report type; "", "all"
// means no filter.
func (s *Service) List(ctx context.Context, typ string) ([]Item, error) {
	if typ == "all" {
		typ = ""
	}
	if err := validation.Validate(typ, validation.In(TypeLost, TypeFound)); err != nil {
		return nil, validation.Errors{"type": err}
	}
	return s.store.List(ctx, typ)
}

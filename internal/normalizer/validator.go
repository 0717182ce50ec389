package normalizer

import (
	"errors"
	"fmt"

	"hearings/internal/models"
)

// Validation errors.
var (
	ErrMissingMeetingID    = errors.New("missing meeting ID")
	ErrInvalidChamber      = errors.New("invalid chamber")
	ErrUnresolvedCommittee = errors.New("committee could not be resolved")
	ErrMissingDetailURL    = errors.New("missing detail page URL")
	ErrMissingTitle        = errors.New("missing official title")
	ErrNonCanonicalDate    = errors.New("date is not in long form")
)

// Validator checks meeting records against the snapshot invariants.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate reports every invariant a record breaks, joined into one error.
// Records are kept either way; the error is a diagnostic.
func (v *Validator) Validate(m models.Meeting) error {
	var errs []error

	if m.MeetingID == "" {
		errs = append(errs, ErrMissingMeetingID)
	}

	if m.Chamber != models.ChamberHouse && m.Chamber != models.ChamberSenate {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidChamber, m.Chamber))
	}

	if m.CommitteeName == "" || m.CommitteeName == models.UnknownCommittee {
		errs = append(errs, ErrUnresolvedCommittee)
	}

	if m.DetailPageURL == "" {
		errs = append(errs, ErrMissingDetailURL)
	}

	if m.OfficialTitle == "" {
		errs = append(errs, ErrMissingTitle)
	}

	if m.Date != "" {
		if _, _, ok := ParseDate(m.Date); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrNonCanonicalDate, m.Date))
		}
	}

	return errors.Join(errs...)
}

// Diagnostics summarizes invariant violations over a batch.
type Diagnostics struct {
	Total               int
	UnresolvedCommittee int
	MissingTitle        int
	MissingDetailURL    int
	DuplicateIDs        int
}

// Clean reports whether no record broke a hard invariant. Missing titles are
// expected for placeholders and do not count.
func (d Diagnostics) Clean() bool {
	return d.UnresolvedCommittee == 0 && d.MissingDetailURL == 0 && d.DuplicateIDs == 0
}

// Diagnose validates every record and counts problems by kind.
func (v *Validator) Diagnose(meetings []models.Meeting) Diagnostics {
	d := Diagnostics{Total: len(meetings)}
	seen := make(map[string]bool, len(meetings))

	for _, m := range meetings {
		if seen[m.Key()] {
			d.DuplicateIDs++
		}

		seen[m.Key()] = true

		err := v.Validate(m)
		if err == nil {
			continue
		}

		if errors.Is(err, ErrUnresolvedCommittee) {
			d.UnresolvedCommittee++
		}

		if errors.Is(err, ErrMissingTitle) {
			d.MissingTitle++
		}

		if errors.Is(err, ErrMissingDetailURL) {
			d.MissingDetailURL++
		}
	}

	return d
}

package coach

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
	"github.com/BruksfildServices01/coach-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type ServiceInput struct {
	Name             string
	Description      string
	Duration         string
	Price            int
	IsPackage        bool
	SessionsIncluded int
}

// ProfileInput lists every field a coach profile may carry.
type ProfileInput struct {
	ID       string
	Slug     string
	Name     string
	Headline string
	Bio      string
	Email    string
	Timezone string

	Credentials []string
	Specialties []string

	IntroEnabled bool
	IntroMinutes int

	Services []ServiceInput
}

// ======================================================
// BUILD
// ======================================================

// Build validates the input and returns the coach with its services
// attached. The slug is derived from the name unless one is given.
func Build(in ProfileInput) (*models.Coach, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, httperr.ErrBusiness("coach_name_required")
	}

	credentials := compact(in.Credentials)
	if len(credentials) == 0 {
		return nil, httperr.ErrBusiness("coach_credentials_required")
	}

	tz := in.Timezone
	if tz == "" {
		tz = timezone.Default()
	}
	if !timezone.IsValid(tz) {
		return nil, httperr.ErrBusiness("invalid_timezone")
	}

	s := in.Slug
	if s == "" {
		s = slug.Make(name)
	}
	if !slug.IsSlug(s) {
		return nil, httperr.ErrBusiness("invalid_slug")
	}

	introMinutes := in.IntroMinutes
	if introMinutes <= 0 {
		introMinutes = booking.DefaultIntroMinutes
	}

	c := &models.Coach{
		ID:           in.ID,
		Slug:         s,
		Name:         name,
		Headline:     strings.TrimSpace(in.Headline),
		Bio:          strings.TrimSpace(in.Bio),
		Email:        strings.TrimSpace(in.Email),
		Timezone:     tz,
		Credentials:  credentials,
		Specialties:  compact(in.Specialties),
		IntroEnabled: in.IntroEnabled,
		IntroMinutes: introMinutes,
		Active:       true,
	}

	for i, svcIn := range in.Services {
		svc, err := buildService(svcIn)
		if err != nil {
			return nil, fmt.Errorf("service %d: %w", i, err)
		}
		c.Services = append(c.Services, svc)
	}

	return c, nil
}

func buildService(in ServiceInput) (models.CoachService, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.CoachService{}, httperr.ErrBusiness("service_name_required")
	}

	minutes, err := booking.ParseDurationText(in.Duration)
	if err != nil {
		return models.CoachService{}, httperr.ErrBusiness("invalid_service_duration")
	}

	if in.Price < 0 {
		return models.CoachService{}, httperr.ErrBusiness("invalid_service_price")
	}

	sessions := in.SessionsIncluded
	if !in.IsPackage {
		sessions = 0
	} else if sessions <= 0 {
		return models.CoachService{}, httperr.ErrBusiness("invalid_package_sessions")
	}

	return models.CoachService{
		Name:             name,
		Description:      strings.TrimSpace(in.Description),
		Duration:         strings.TrimSpace(in.Duration),
		DurationMin:      minutes,
		Price:            in.Price,
		IsPackage:        in.IsPackage,
		SessionsIncluded: sessions,
		Active:           true,
	}, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package fixtures

import (
	"fmt"

	"github.com/gosimple/slug"

	"github.com/BruksfildServices01/coach-scheduler/internal/domain/coach"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
)

// Sample coach ids are stable so seeded databases and tests agree.
const (
	JaneDoeID     = "7d1f3c2a-4b8e-4f0a-9c1d-000000000001"
	MarcusChenID  = "7d1f3c2a-4b8e-4f0a-9c1d-000000000002"
	AmaraOkaforID = "7d1f3c2a-4b8e-4f0a-9c1d-000000000003"
)

// Profiles is the sample catalogue served when no database is configured.
func Profiles() []coach.ProfileInput {
	return []coach.ProfileInput{
		{
			ID:           JaneDoeID,
			Name:         "Jane Doe",
			Headline:     "Career coach for engineers moving into leadership",
			Bio:          "Former engineering manager. Helps engineers prepare for interviews and promotions.",
			Email:        "jane@example.com",
			Timezone:     "UTC",
			Credentials:  []string{"ICF Associate Certified Coach", "10 years engineering management"},
			Specialties:  []string{"Interviews", "Promotions", "Resumes"},
			IntroEnabled: true,
			IntroMinutes: 15,
			Services: []coach.ServiceInput{
				{Name: "Resume Review", Description: "Line by line review of your resume", Duration: "60 min", Price: 150},
				{Name: "Mock Interview", Description: "Behavioural or system design mock", Duration: "45 min", Price: 120},
				{Name: "Career Accelerator Pack", Description: "Four weekly sessions", Duration: "1 hour", Price: 450, IsPackage: true, SessionsIncluded: 4},
			},
		},
		{
			ID:          MarcusChenID,
			Name:        "Marcus Chen",
			Headline:    "Leadership and team building",
			Email:       "marcus@example.com",
			Timezone:    "America/New_York",
			Credentials: []string{"PCC", "MBA"},
			Specialties: []string{"Leadership"},
			Services: []coach.ServiceInput{
				{Name: "Leadership Session", Duration: "90 mins", Price: 200},
			},
		},
		{
			ID:           AmaraOkaforID,
			Name:         "Amara Okafor",
			Headline:     "Wellbeing and burnout recovery",
			Email:        "amara@example.com",
			Timezone:     "Europe/London",
			Credentials:  []string{"Registered counsellor"},
			Specialties:  []string{"Burnout", "Work-life balance"},
			IntroEnabled: true,
			IntroMinutes: 20,
			Services: []coach.ServiceInput{
				{Name: "Wellness Check-in", Duration: "30 min", Price: 60},
			},
		},
	}
}

// Coaches builds the sample profiles. Service ids are derived from the coach
// slug and service name.
func Coaches() ([]models.Coach, error) {
	profiles := Profiles()
	out := make([]models.Coach, 0, len(profiles))

	for _, p := range profiles {
		c, err := coach.Build(p)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", p.Name, err)
		}
		for i := range c.Services {
			c.Services[i].ID = ServiceID(c.Slug, c.Services[i].Name)
			c.Services[i].CoachID = c.ID
		}
		out = append(out, *c)
	}

	return out, nil
}

// ServiceID is the stable id of a sample service.
func ServiceID(coachSlug, serviceName string) string {
	return coachSlug + "--" + slug.Make(serviceName)
}

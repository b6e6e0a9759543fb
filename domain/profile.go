package domain

import (
	"alumni-net/errors"
	"fmt"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleStudent, RoleAlumni, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", errors.ErrInvalidArgument, raw)
	}
}

// RoleDetails carries the attributes that only make sense for one role.
// Exactly one implementation is attached to a Profile.
type RoleDetails interface {
	Role() Role
}

type StudentDetails struct {
	Program        string `validate:"required,max=120"`
	GraduationYear int    `validate:"required,min=1900,max=2200"`
}

func (StudentDetails) Role() Role { return RoleStudent }

type AlumniDetails struct {
	GraduationYear int    `validate:"required,min=1900,max=2200"`
	Company        string `validate:"max=120"`
	JobTitle       string `validate:"max=120"`
}

func (AlumniDetails) Role() Role { return RoleAlumni }

type AdminDetails struct {
	Department string `validate:"required,max=120"`
}

func (AdminDetails) Role() Role { return RoleAdmin }

type Experience struct {
	Title       string
	Company     string
	StartDate   time.Time
	EndDate     *time.Time
	Description string
}

type Education struct {
	School         string
	Degree         string
	Field          string
	GraduationYear int
}

// Profile is the public face of a user. Credentials never live here.
type Profile struct {
	ID         UserID
	Name       string
	Email      string
	Avatar     string
	Headline   string
	Bio        string
	Skills     []string
	Experience []Experience
	Education  []Education
	Details    RoleDetails
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p Profile) Role() Role {
	if p.Details == nil {
		return ""
	}
	return p.Details.Role()
}

// ProfilePatch holds the editable fields; nil means unchanged.
type ProfilePatch struct {
	Name       *string
	Avatar     *string
	Headline   *string
	Bio        *string
	Skills     *[]string
	Experience *[]Experience
	Education  *[]Education
	Details    RoleDetails
}

// Apply mutates p in place. The role of a profile is fixed at registration,
// so details of another role are rejected.
func (patch ProfilePatch) Apply(p *Profile, now time.Time) error {
	if patch.Details != nil && patch.Details.Role() != p.Role() {
		return fmt.Errorf("%w: cannot switch role from %s to %s",
			errors.ErrInvalidArgument, p.Role(), patch.Details.Role())
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return fmt.Errorf("%w: name cannot be empty", errors.ErrInvalidArgument)
		}
		p.Name = *patch.Name
	}
	if patch.Avatar != nil {
		p.Avatar = *patch.Avatar
	}
	if patch.Headline != nil {
		p.Headline = *patch.Headline
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.Skills != nil {
		p.Skills = *patch.Skills
	}
	if patch.Experience != nil {
		p.Experience = *patch.Experience
	}
	if patch.Education != nil {
		p.Education = *patch.Education
	}
	if patch.Details != nil {
		p.Details = patch.Details
	}
	p.UpdatedAt = now
	return nil
}

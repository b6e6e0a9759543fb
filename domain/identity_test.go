package domain

import (
	"alumni-net/errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"3f0e4c1a-8b4e-4d7a-9a53-0e0c7cbbd2a1", false},
		{"alice", false},
		{"", true},
		{"a:b", true},
		{"a|b", true},
		{"with space", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req := require.New(t)
			id, err := ParseUserID(tt.raw)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidArgument)
				return
			}
			req.NoError(err)
			req.Equal(tt.raw, id.String())
		})
	}
}

func TestConnections_SetSemantics(t *testing.T) {
	req := require.New(t)
	c := NewConnections()

	req.True(c.Add("bob"))
	req.False(c.Add("bob"))
	req.True(c.Add("alice"))
	req.Equal([]UserID{"alice", "bob"}, c.Sorted())

	req.True(c.Remove("bob"))
	req.False(c.Remove("bob"))
	req.False(c.Has("bob"))
	req.NotNil(NewConnections().Sorted())
}

func TestProfilePatch_Apply(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()
	p := Profile{ID: "u1", Name: "Ada", Details: AlumniDetails{GraduationYear: 2015}}

	err := ProfilePatch{
		Headline: lo.ToPtr("Engineer"),
		Details:  AlumniDetails{GraduationYear: 2015, Company: "ACME"},
	}.Apply(&p, now)
	req.NoError(err)
	req.Equal("Engineer", p.Headline)
	req.Equal("ACME", p.Details.(AlumniDetails).Company)
	req.Equal(now, p.UpdatedAt)

	err = ProfilePatch{Details: StudentDetails{Program: "CS", GraduationYear: 2027}}.Apply(&p, now)
	req.ErrorIs(err, errors.ErrInvalidArgument)
	req.Equal(RoleAlumni, p.Role())

	err = ProfilePatch{Name: lo.ToPtr("")}.Apply(&p, now)
	req.ErrorIs(err, errors.ErrInvalidArgument)
}

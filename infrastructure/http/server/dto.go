package server

import (
	"alumni-net/domain"
	"time"

	"github.com/samber/lo"
)

// Role details travel as one optional object per role. Only the object
// matching the role is read.
type studentDetailsDTO struct {
	Program        string `json:"program"`
	GraduationYear int    `json:"graduationYear"`
}

type alumniDetailsDTO struct {
	GraduationYear int    `json:"graduationYear"`
	Company        string `json:"company"`
	JobTitle       string `json:"jobTitle"`
}

type adminDetailsDTO struct {
	Department string `json:"department"`
}

type roleDetailsDTO struct {
	Student *studentDetailsDTO `json:"student,omitempty"`
	Alumni  *alumniDetailsDTO  `json:"alumni,omitempty"`
	Admin   *adminDetailsDTO   `json:"admin,omitempty"`
}

// toDomain picks the details of role, nil when the matching object is absent.
func (d roleDetailsDTO) toDomain(role domain.Role) domain.RoleDetails {
	switch {
	case role == domain.RoleStudent && d.Student != nil:
		return domain.StudentDetails{Program: d.Student.Program, GraduationYear: d.Student.GraduationYear}
	case role == domain.RoleAlumni && d.Alumni != nil:
		return domain.AlumniDetails{GraduationYear: d.Alumni.GraduationYear, Company: d.Alumni.Company, JobTitle: d.Alumni.JobTitle}
	case role == domain.RoleAdmin && d.Admin != nil:
		return domain.AdminDetails{Department: d.Admin.Department}
	default:
		return nil
	}
}

func fromRoleDetails(details domain.RoleDetails) roleDetailsDTO {
	switch d := details.(type) {
	case domain.StudentDetails:
		return roleDetailsDTO{Student: &studentDetailsDTO{Program: d.Program, GraduationYear: d.GraduationYear}}
	case domain.AlumniDetails:
		return roleDetailsDTO{Alumni: &alumniDetailsDTO{GraduationYear: d.GraduationYear, Company: d.Company, JobTitle: d.JobTitle}}
	case domain.AdminDetails:
		return roleDetailsDTO{Admin: &adminDetailsDTO{Department: d.Department}}
	default:
		return roleDetailsDTO{}
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=student alumni"`
	roleDetailsDTO
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type experienceDTO struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Description string     `json:"description,omitempty"`
}

type educationDTO struct {
	School         string `json:"school"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationYear int    `json:"graduationYear"`
}

type updateProfileRequest struct {
	Name       *string          `json:"name"`
	Avatar     *string          `json:"avatar"`
	Headline   *string          `json:"headline"`
	Bio        *string          `json:"bio"`
	Skills     *[]string        `json:"skills"`
	Experience *[]experienceDTO `json:"experience"`
	Education  *[]educationDTO  `json:"education"`
	roleDetailsDTO
}

func (r updateProfileRequest) toPatch(role domain.Role) domain.ProfilePatch {
	patch := domain.ProfilePatch{
		Name:     r.Name,
		Avatar:   r.Avatar,
		Headline: r.Headline,
		Bio:      r.Bio,
		Skills:   r.Skills,
		Details:  r.roleDetailsDTO.toDomain(role),
	}
	if r.Experience != nil {
		experience := lo.Map(*r.Experience, func(e experienceDTO, _ int) domain.Experience {
			return domain.Experience{Title: e.Title, Company: e.Company, StartDate: e.StartDate, EndDate: e.EndDate, Description: e.Description}
		})
		patch.Experience = &experience
	}
	if r.Education != nil {
		education := lo.Map(*r.Education, func(e educationDTO, _ int) domain.Education {
			return domain.Education{School: e.School, Degree: e.Degree, Field: e.Field, GraduationYear: e.GraduationYear}
		})
		patch.Education = &education
	}
	return patch
}

type profileResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Avatar     string          `json:"avatar,omitempty"`
	Headline   string          `json:"headline,omitempty"`
	Bio        string          `json:"bio,omitempty"`
	Skills     []string        `json:"skills"`
	Experience []experienceDTO `json:"experience"`
	Education  []educationDTO  `json:"education"`
	Role       string          `json:"role"`
	roleDetailsDTO
	Connected *bool     `json:"connected,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toProfileResponse(p domain.Profile) profileResponse {
	return profileResponse{
		ID:       string(p.ID),
		Name:     p.Name,
		Email:    p.Email,
		Avatar:   p.Avatar,
		Headline: p.Headline,
		Bio:      p.Bio,
		Skills:   lo.Ternary(p.Skills == nil, []string{}, p.Skills),
		Experience: lo.Map(p.Experience, func(e domain.Experience, _ int) experienceDTO {
			return experienceDTO{Title: e.Title, Company: e.Company, StartDate: e.StartDate, EndDate: e.EndDate, Description: e.Description}
		}),
		Education: lo.Map(p.Education, func(e domain.Education, _ int) educationDTO {
			return educationDTO{School: e.School, Degree: e.Degree, Field: e.Field, GraduationYear: e.GraduationYear}
		}),
		Role:           string(p.Role()),
		roleDetailsDTO: fromRoleDetails(p.Details),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toProfileResponses(profiles []domain.Profile) []profileResponse {
	return lo.Map(profiles, func(p domain.Profile, _ int) profileResponse {
		return toProfileResponse(p)
	})
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Language   string    `json:"language,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	})
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:         m.ID.String(),
		SenderID:   string(m.SenderID),
		ReceiverID: string(m.ReceiverID),
		Content:    m.Content,
		Language:   m.Language,
		Timestamp:  m.At,
		Read:       m.Read,
	}
}

type conversationResponse struct {
	ID                   string          `json:"id"`
	Participants         []string        `json:"participants"`
	Other                profileResponse `json:"otherUser"`
	LastMessageTimestamp time.Time       `json:"lastMessageTimestamp"`
	UnreadCount          int             `json:"unreadCount"`
}

func toConversationResponses(views []domain.ConversationView) []conversationResponse {
	return lo.Map(views, func(v domain.ConversationView, _ int) conversationResponse {
		return conversationResponse{
			ID: v.Conversation.ID.String(),
			Participants: []string{
				string(v.Conversation.Participants[0]),
				string(v.Conversation.Participants[1]),
			},
			Other:                toProfileResponse(v.Other),
			LastMessageTimestamp: v.Conversation.LastMessageAt,
			UnreadCount:          v.Unread,
		}
	})
}

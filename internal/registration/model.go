package registration

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Request is the wire shape of a submission. Every field is untrusted until
// it has gone through Validator.Validate.
type Request struct {
	TeamName      string          `json:"team_name"`
	SchoolName    string          `json:"school_name"`
	TeamLeadName  string          `json:"team_lead_name"`
	TeamLeadPhone string          `json:"team_lead_phone"`
	TeamLeadEmail string          `json:"team_lead_email"`
	TeacherName   string          `json:"teacher_name"`
	TeacherEmail  string          `json:"teacher_email"`
	TeacherPhone  string          `json:"teacher_phone"`
	Track         string          `json:"track"`
	IdeaSummary   string          `json:"idea_summary"`
	Members       []MemberRequest `json:"members"`
}

type MemberRequest struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Normalize returns a copy with every string trimmed and all whitespace
// removed from phone numbers. It is idempotent.
func (r Request) Normalize() Request {
	out := Request{
		TeamName:      strings.TrimSpace(r.TeamName),
		SchoolName:    strings.TrimSpace(r.SchoolName),
		TeamLeadName:  strings.TrimSpace(r.TeamLeadName),
		TeamLeadPhone: NormalizePhone(r.TeamLeadPhone),
		TeamLeadEmail: strings.TrimSpace(r.TeamLeadEmail),
		TeacherName:   strings.TrimSpace(r.TeacherName),
		TeacherEmail:  strings.TrimSpace(r.TeacherEmail),
		TeacherPhone:  NormalizePhone(r.TeacherPhone),
		Track:         strings.TrimSpace(r.Track),
		IdeaSummary:   strings.TrimSpace(r.IdeaSummary),
	}
	if r.Members != nil {
		out.Members = make([]MemberRequest, len(r.Members))
		for i, m := range r.Members {
			out.Members[i] = MemberRequest{
				Name:  strings.TrimSpace(m.Name),
				Grade: strings.TrimSpace(m.Grade),
				Email: strings.TrimSpace(m.Email),
				Phone: NormalizePhone(m.Phone),
			}
		}
	}
	return out
}

// teacherTouched reports whether any teacher field carries a value.
func (r Request) teacherTouched() bool {
	return r.TeacherName != "" || r.TeacherEmail != "" || r.TeacherPhone != ""
}

// Contact is a name with the two ways to reach that person.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Member struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Registration is a validated, normalized submission. Teacher is nil when
// the team registered without a teacher in charge.
type Registration struct {
	TeamName    string
	SchoolName  string
	TeamLead    Contact
	Teacher     *Contact
	Track       string
	IdeaSummary string
	Members     []Member
}

// Record is the stored row. ID and CreatedAt are assigned by the database.
type Record struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID            uuid.UUID `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	TeamName      string    `bun:"team_name,notnull" json:"team_name"`
	SchoolName    string    `bun:"school_name,notnull" json:"school_name"`
	TeamLeadName  string    `bun:"team_lead_name,notnull" json:"team_lead_name"`
	TeamLeadPhone string    `bun:"team_lead_phone,notnull" json:"team_lead_phone"`
	TeamLeadEmail string    `bun:"team_lead_email,notnull" json:"team_lead_email"`
	TeacherName   string    `bun:"teacher_name,nullzero" json:"teacher_name,omitempty"`
	TeacherEmail  string    `bun:"teacher_email,nullzero" json:"teacher_email,omitempty"`
	TeacherPhone  string    `bun:"teacher_phone,nullzero" json:"teacher_phone,omitempty"`
	Track         string    `bun:"track,notnull" json:"track"`
	IdeaSummary   string    `bun:"idea_summary,notnull" json:"idea_summary"`
	Members       []Member  `bun:"members,type:jsonb,notnull" json:"members"`
}

// NewRecord flattens reg into the column layout of the registrations table.
func NewRecord(reg *Registration) *Record {
	rec := &Record{
		TeamName:      reg.TeamName,
		SchoolName:    reg.SchoolName,
		TeamLeadName:  reg.TeamLead.Name,
		TeamLeadPhone: reg.TeamLead.Phone,
		TeamLeadEmail: reg.TeamLead.Email,
		Track:         reg.Track,
		IdeaSummary:   reg.IdeaSummary,
		Members:       append([]Member(nil), reg.Members...),
	}
	if reg.Teacher != nil {
		rec.TeacherName = reg.Teacher.Name
		rec.TeacherEmail = reg.Teacher.Email
		rec.TeacherPhone = reg.Teacher.Phone
	}
	return rec
}

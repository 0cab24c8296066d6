package registration

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	tagPhone        = "phone"
	tagLooseEmail   = "loose_email"
	tagTrack        = "track"
	tagMemberCount  = "member_count"
	tagTeacherGroup = "teacher_group"
)

var fieldLabels = map[string]string{
	"team_name":       "Team name",
	"school_name":     "School name",
	"team_lead_name":  "Team lead name",
	"team_lead_phone": "Team lead phone",
	"team_lead_email": "Team lead email",
	"teacher_name":    "Teacher name",
	"teacher_email":   "Teacher email",
	"teacher_phone":   "Teacher phone",
	"track":           "Track",
	"idea_summary":    "Idea summary",
	"members":         "Members",
}

// Validator is the authoritative gate for registrations. The same instance
// backs the HTTP endpoint and the form controller so both apply identical
// thresholds.
type Validator struct {
	contract Contract
	validate *validator.Validate
}

func NewValidator(c Contract) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, tagPhone, func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	mustRegister(v, tagLooseEmail, func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	mustRegister(v, tagTrack, func(fl validator.FieldLevel) bool {
		return c.HasTrack(fl.Field().String())
	})

	v.RegisterStructValidationMapRules(requestRules(c), Request{})
	v.RegisterStructValidationMapRules(memberRules(c), MemberRequest{})
	v.RegisterStructValidation(groupRules(c), Request{})

	return &Validator{contract: c, validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registration: register %s validation: %v", tag, err))
	}
}

func requestRules(c Contract) map[string]string {
	name := fmt.Sprintf("required,min=%d", c.NameMinLen)
	return map[string]string{
		"TeamName":      name,
		"SchoolName":    name,
		"TeamLeadName":  name,
		"TeamLeadPhone": "required," + tagPhone,
		"TeamLeadEmail": "required," + tagLooseEmail,
		"TeacherEmail":  "omitempty," + tagLooseEmail,
		"TeacherPhone":  "omitempty," + tagPhone,
		"Track":         "required," + tagTrack,
		"IdeaSummary":   fmt.Sprintf("required,min=%d,max=%d", c.IdeaSummaryMinLen, c.IdeaSummaryMaxLen),
		"Members":       "dive",
	}
}

func memberRules(c Contract) map[string]string {
	return map[string]string{
		"Name":  fmt.Sprintf("required,min=%d", c.NameMinLen),
		"Grade": "required",
		"Phone": "required," + tagPhone,
		"Email": "omitempty," + tagLooseEmail,
	}
}

// groupRules covers the rules spanning more than one field: the member count
// and the all-or-nothing teacher group.
func groupRules(c Contract) validator.StructLevelFunc {
	return func(sl validator.StructLevel) {
		req := sl.Current().Interface().(Request)

		if n := len(req.Members); n < c.MinMembers || n > c.MaxMembers {
			sl.ReportError(req.Members, "members", "Members", tagMemberCount, "")
		}

		if !req.teacherTouched() {
			return
		}
		if req.TeacherName == "" {
			sl.ReportError(req.TeacherName, "teacher_name", "TeacherName", tagTeacherGroup, "")
		}
		if req.TeacherEmail == "" {
			sl.ReportError(req.TeacherEmail, "teacher_email", "TeacherEmail", tagTeacherGroup, "")
		}
		if req.TeacherPhone == "" {
			sl.ReportError(req.TeacherPhone, "teacher_phone", "TeacherPhone", tagTeacherGroup, "")
		}
	}
}

// Contract returns the thresholds this validator enforces.
func (v *Validator) Contract() Contract {
	return v.contract
}

// Validate normalizes req and checks every rule. On failure the returned error
// is a *ValidationError carrying one message per offending field.
func (v *Validator) Validate(req Request) (*Registration, error) {
	norm := req.Normalize()

	if err := v.validate.Struct(norm); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate registration: %w", err)
		}
		return nil, v.toValidationError(verrs)
	}

	return toRegistration(norm), nil
}

func (v *Validator) toValidationError(verrs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fieldKey(fe.Namespace())
		if _, seen := fields[key]; seen {
			continue
		}
		fields[key] = v.message(key, fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldKey turns "Request.members[1].phone" into "members[1].phone".
func fieldKey(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func (v *Validator) message(key string, fe validator.FieldError) string {
	label := labelFor(key)

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case tagPhone:
		return label + " must be a valid phone number"
	case tagLooseEmail:
		return label + " must be a valid email address"
	case tagTrack:
		return "Select one of the available tracks"
	case tagMemberCount:
		return fmt.Sprintf("Teams must have between %d and %d members", v.contract.MinMembers, v.contract.MaxMembers)
	case tagTeacherGroup:
		return label + " is required when any teacher detail is given"
	default:
		return label + " is invalid"
	}
}

func labelFor(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}

	// members[N].field
	rest, ok := strings.CutPrefix(key, "members[")
	if !ok {
		return key
	}
	idx, field, ok := strings.Cut(rest, "].")
	if !ok {
		return key
	}
	n, err := strconv.Atoi(idx)
	if err != nil {
		return key
	}
	return fmt.Sprintf("Member %d %s", n+1, field)
}

func toRegistration(req Request) *Registration {
	reg := &Registration{
		TeamName:   req.TeamName,
		SchoolName: req.SchoolName,
		TeamLead: Contact{
			Name:  req.TeamLeadName,
			Email: req.TeamLeadEmail,
			Phone: req.TeamLeadPhone,
		},
		Track:       req.Track,
		IdeaSummary: req.IdeaSummary,
		Members:     make([]Member, len(req.Members)),
	}
	if req.teacherTouched() {
		reg.Teacher = &Contact{
			Name:  req.TeacherName,
			Email: req.TeacherEmail,
			Phone: req.TeacherPhone,
		}
	}
	for i, m := range req.Members {
		reg.Members[i] = Member(m)
	}
	return reg
}

package ai

import (
	"strings"

	"jobhunt-backend/internal/jobs"
	"jobhunt-backend/internal/shared/util"
)

// MaxResumeChars bounds the resume text sent to the model.
const MaxResumeChars = 12000

// Request is the decoded input of one feature.
type Request interface {
	applyDefaults()
	refs() (jobID, resumeID string)
	applyJob(j jobs.Job)
	applyResume(text string)
}

// SalaryRequest is the input of a salary estimate.
type SalaryRequest struct {
	JobTitle        string   `json:"jobTitle" validate:"required,max=200"`
	Location        string   `json:"location" validate:"required,max=200"`
	ExperienceLevel string   `json:"experienceLevel,omitempty" validate:"omitempty,oneof=entry mid senior lead executive"`
	YearsExperience *int     `json:"yearsExperience,omitempty" validate:"omitempty,min=0,max=60"`
	Skills          []string `json:"skills,omitempty" validate:"max=30,dive,required,max=100"`
	Company         string   `json:"company,omitempty" validate:"max=200"`
	JobID           string   `json:"jobId,omitempty" validate:"max=64"`
}

func (r *SalaryRequest) applyDefaults() {
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.Location = strings.TrimSpace(r.Location)
	r.Company = strings.TrimSpace(r.Company)
}

func (r *SalaryRequest) refs() (string, string) { return r.JobID, "" }

func (r *SalaryRequest) applyJob(j jobs.Job) {
	fill(&r.JobTitle, j.Title)
	fill(&r.Location, j.Location)
	fill(&r.Company, j.Company)
}

func (r *SalaryRequest) applyResume(string) {}

// InterviewRequest asks for likely interview questions for a role.
type InterviewRequest struct {
	JobTitle       string   `json:"jobTitle" validate:"required,max=200"`
	Company        string   `json:"company,omitempty" validate:"max=200"`
	Stage          string   `json:"stage" validate:"oneof=phone_screen technical behavioral onsite final"`
	Count          int      `json:"count" validate:"min=1,max=20"`
	FocusAreas     []string `json:"focusAreas,omitempty" validate:"max=10,dive,required,max=100"`
	JobDescription string   `json:"jobDescription,omitempty" validate:"max=20000"`
	JobID          string   `json:"jobId,omitempty" validate:"max=64"`
	ResumeID       string   `json:"resumeId,omitempty" validate:"max=64"`
	ResumeText     string   `json:"resumeText,omitempty"`
}

func (r *InterviewRequest) applyDefaults() {
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	if r.Stage == "" {
		r.Stage = "behavioral"
	}
	if r.Count == 0 {
		r.Count = 8
	}
}

func (r *InterviewRequest) refs() (string, string) { return r.JobID, r.ResumeID }

func (r *InterviewRequest) applyJob(j jobs.Job) {
	fill(&r.JobTitle, j.Title)
	fill(&r.Company, j.Company)
	fill(&r.JobDescription, j.Description)
}

func (r *InterviewRequest) applyResume(text string) {
	fill(&r.ResumeText, util.Truncate(text, MaxResumeChars))
}

// ResumeOptimizationRequest pairs resume text with a target job.
type ResumeOptimizationRequest struct {
	ResumeID       string `json:"resumeId,omitempty" validate:"max=64"`
	ResumeText     string `json:"resumeText" validate:"required,min=50"`
	TargetRole     string `json:"targetRole,omitempty" validate:"max=200"`
	JobDescription string `json:"jobDescription,omitempty" validate:"max=20000"`
	JobID          string `json:"jobId,omitempty" validate:"max=64"`
}

func (r *ResumeOptimizationRequest) applyDefaults() {
	r.ResumeText = util.Truncate(strings.TrimSpace(r.ResumeText), MaxResumeChars)
	r.TargetRole = strings.TrimSpace(r.TargetRole)
}

func (r *ResumeOptimizationRequest) refs() (string, string) { return r.JobID, r.ResumeID }

func (r *ResumeOptimizationRequest) applyJob(j jobs.Job) {
	fill(&r.TargetRole, j.Title)
	fill(&r.JobDescription, j.Description)
}

func (r *ResumeOptimizationRequest) applyResume(text string) {
	fill(&r.ResumeText, util.Truncate(text, MaxResumeChars))
}

// OutreachRequest is the input of an outreach message draft.
type OutreachRequest struct {
	Channel       string `json:"channel" validate:"required,oneof=email linkedin"`
	Purpose       string `json:"purpose" validate:"required,oneof=cold_outreach referral informational follow_up thank_you connection_request"`
	RecipientName string `json:"recipientName,omitempty" validate:"max=200"`
	RecipientRole string `json:"recipientRole,omitempty" validate:"max=200"`
	Company       string `json:"company" validate:"required,max=200"`
	JobTitle      string `json:"jobTitle,omitempty" validate:"max=200"`
	Background    string `json:"background,omitempty" validate:"max=4000"`
	Tone          string `json:"tone" validate:"oneof=professional friendly enthusiastic"`
	JobID         string `json:"jobId,omitempty" validate:"max=64"`
}

func (r *OutreachRequest) applyDefaults() {
	r.Company = strings.TrimSpace(r.Company)
	if r.Tone == "" {
		r.Tone = "professional"
	}
}

func (r *OutreachRequest) refs() (string, string) { return r.JobID, "" }

func (r *OutreachRequest) applyJob(j jobs.Job) {
	fill(&r.Company, j.Company)
	fill(&r.JobTitle, j.Title)
}

func (r *OutreachRequest) applyResume(string) {}

// MaxConnectionNote is LinkedIn's limit on connection request notes.
const MaxConnectionNote = 300

// NegotiationRequest describes an offer to negotiate.
type NegotiationRequest struct {
	JobTitle        string   `json:"jobTitle" validate:"required,max=200"`
	Company         string   `json:"company" validate:"required,max=200"`
	OfferBase       float64  `json:"offerBase" validate:"gt=0"`
	Currency        string   `json:"currency" validate:"len=3,uppercase"`
	OfferBonus      *float64 `json:"offerBonus,omitempty" validate:"omitempty,min=0"`
	OfferEquity     string   `json:"offerEquity,omitempty" validate:"max=500"`
	TargetBase      *float64 `json:"targetBase,omitempty" validate:"omitempty,gt=0"`
	CompetingOffers string   `json:"competingOffers,omitempty" validate:"max=2000"`
	Priorities      []string `json:"priorities,omitempty" validate:"max=10,dive,required,max=100"`
	JobID           string   `json:"jobId,omitempty" validate:"max=64"`
}

func (r *NegotiationRequest) applyDefaults() {
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.Company = strings.TrimSpace(r.Company)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
}

func (r *NegotiationRequest) refs() (string, string) { return r.JobID, "" }

func (r *NegotiationRequest) applyJob(j jobs.Job) {
	fill(&r.JobTitle, j.Title)
	fill(&r.Company, j.Company)
	fill(&r.Currency, j.Currency)
}

func (r *NegotiationRequest) applyResume(string) {}

// finalize runs after enrichment, for defaults that depend on job data.
func finalize(req Request) {
	if r, ok := req.(*NegotiationRequest); ok && r.Currency == "" {
		r.Currency = "USD"
	}
}

func fill(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = strings.TrimSpace(v)
	}
}

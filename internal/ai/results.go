package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Range is a salary band. Bounds must be ordered and positive.
type Range struct {
	Min    float64 `json:"min" validate:"gt=0"`
	Median float64 `json:"median" validate:"gtefield=Min"`
	Max    float64 `json:"max" validate:"gtefield=Median"`
}

// SalaryResult is a salary estimate.
type SalaryResult struct {
	Currency          string   `json:"currency" validate:"len=3,uppercase"`
	BaseSalary        Range    `json:"baseSalary"`
	TotalCompensation *Range   `json:"totalCompensation,omitempty"`
	Confidence        string   `json:"confidence" validate:"oneof=low medium high"`
	Factors           []string `json:"factors" validate:"min=1,dive,required"`
	MarketInsights    []string `json:"marketInsights,omitempty"`
}

// Question is one predicted interview question.
type Question struct {
	Question   string   `json:"question" validate:"required"`
	Category   string   `json:"category" validate:"oneof=behavioral technical situational company role_specific"`
	Difficulty string   `json:"difficulty" validate:"oneof=easy medium hard"`
	WhyAsked   string   `json:"whyAsked,omitempty"`
	AnswerTips []string `json:"answerTips,omitempty"`
}

// InterviewResult lists predicted questions.
type InterviewResult struct {
	Questions       []Question `json:"questions" validate:"min=1,dive"`
	PreparationTips []string   `json:"preparationTips,omitempty"`
}

func (r *InterviewResult) check(req Request) []Issue {
	in, ok := req.(*InterviewRequest)
	if !ok || len(r.Questions) <= in.Count {
		return nil
	}
	return []Issue{{Field: "questions", Issue: fmt.Sprintf("must have at most %d items", in.Count)}}
}

// Improvement is a single suggested resume change.
type Improvement struct {
	Section    string `json:"section" validate:"required"`
	Suggestion string `json:"suggestion" validate:"required"`
	Priority   string `json:"priority" validate:"oneof=high medium low"`
}

// ResumeOptimizationResult scores a resume against a job and suggests changes.
type ResumeOptimizationResult struct {
	OverallScore    *int          `json:"overallScore" validate:"required,min=0,max=100"`
	Summary         string        `json:"summary" validate:"required"`
	Strengths       []string      `json:"strengths,omitempty"`
	Improvements    []Improvement `json:"improvements" validate:"min=1,dive"`
	MissingKeywords []string      `json:"missingKeywords,omitempty"`
	ATSTips         []string      `json:"atsTips,omitempty"`
}

// OutreachResult is a drafted outreach message.
type OutreachResult struct {
	Subject  string   `json:"subject,omitempty"`
	Message  string   `json:"message" validate:"required"`
	FollowUp string   `json:"followUp,omitempty"`
	Tips     []string `json:"tips,omitempty"`
}

func (r *OutreachResult) check(req Request) []Issue {
	in, ok := req.(*OutreachRequest)
	if !ok {
		return nil
	}
	var issues []Issue
	if in.Channel == "email" && strings.TrimSpace(r.Subject) == "" {
		issues = append(issues, Issue{Field: "subject", Issue: "is required for email"})
	}
	if in.Purpose == "connection_request" && utf8.RuneCountInString(r.Message) > MaxConnectionNote {
		issues = append(issues, Issue{Field: "message", Issue: fmt.Sprintf("must be at most %d characters", MaxConnectionNote)})
	}
	return issues
}

// Counter is a proposed counteroffer.
type Counter struct {
	Base     float64 `json:"base" validate:"gt=0"`
	Currency string  `json:"currency" validate:"len=3,uppercase"`
}

// NegotiationResult is a negotiation plan.
type NegotiationResult struct {
	RecommendedCounter Counter  `json:"recommendedCounter"`
	TalkingPoints      []string `json:"talkingPoints" validate:"min=1,dive,required"`
	Script             string   `json:"script" validate:"required"`
	LeveragePoints     []string `json:"leveragePoints,omitempty"`
	Risks              []string `json:"risks,omitempty"`
	AlternativeAsks    []string `json:"alternativeAsks,omitempty"`
}

// resultChecker is implemented by results whose shape depends on the request.
type resultChecker interface {
	check(req Request) []Issue
}

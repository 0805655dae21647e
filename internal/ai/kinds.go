package ai

import (
	"strings"
	"time"
)

// Kind names one AI feature.
type Kind string

const (
	KindSalaryEstimate      Kind = "salary_estimate"
	KindInterviewQuestions  Kind = "interview_questions"
	KindResumeOptimization  Kind = "resume_optimization"
	KindOutreachTemplate    Kind = "outreach_template"
	KindNegotiationStrategy Kind = "negotiation_strategy"
)

// Kinds lists every feature in display order.
var Kinds = []Kind{
	KindSalaryEstimate,
	KindInterviewQuestions,
	KindResumeOptimization,
	KindOutreachTemplate,
	KindNegotiationStrategy,
}

// ParseKind accepts either the kind ("salary_estimate") or its route slug
// ("salary-estimate").
func ParseKind(raw string) (Kind, bool) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	for _, v := range Kinds {
		if k == v {
			return k, true
		}
	}
	return "", false
}

// Slug is the kind as it appears in URLs.
func (k Kind) Slug() string {
	return strings.ReplaceAll(string(k), "_", "-")
}

// TTL is how long a generated result stays in the unified cache. Zero means
// the cache default.
func (k Kind) TTL() time.Duration {
	switch k {
	case KindSalaryEstimate:
		return 7 * 24 * time.Hour
	case KindNegotiationStrategy:
		return 3 * 24 * time.Hour
	default:
		return 0
	}
}

// Description is a one-line summary used by the CLI.
func (k Kind) Description() string {
	switch k {
	case KindSalaryEstimate:
		return "salary range for a role and location"
	case KindInterviewQuestions:
		return "likely interview questions with answer tips"
	case KindResumeOptimization:
		return "resume score and concrete improvements"
	case KindOutreachTemplate:
		return "recruiter or networking message"
	case KindNegotiationStrategy:
		return "counter offer and negotiation script"
	}
	return ""
}

// usesResume reports whether the primary resume is pulled in when the
// request does not name one.
func (k Kind) usesResume() bool {
	return k == KindInterviewQuestions || k == KindResumeOptimization
}

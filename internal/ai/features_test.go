package ai

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestFirstJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{"```json\n{\"a\":{\"b\":2}}\n```\nthanks", `{"a":{"b":2}}`, true},
		{`note: {"s":"brace } inside \" quote"} {"second":true}`, `{"s":"brace } inside \" quote"}`, true},
		{`no json here`, "", false},
		{`{"unterminated": true`, "", false},
	}
	for _, tc := range cases {
		got, ok := firstJSONObject(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("firstJSONObject(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseResultInterviewCountBound(t *testing.T) {
	req := &InterviewRequest{JobTitle: "SRE", Stage: "technical", Count: 1}
	text := `{"questions":[
		{"question":"Q1","category":"technical","difficulty":"easy"},
		{"question":"Q2","category":"technical","difficulty":"hard"}]}`

	_, err := ParseResult(KindInterviewQuestions, req, text)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Issues[0].Field != "questions" {
		t.Fatalf("expected questions issue, got %v", err)
	}

	req.Count = 2
	if _, err := ParseResult(KindInterviewQuestions, req, text); err != nil {
		t.Fatalf("expected valid result, got %v", err)
	}

	bad := `{"questions":[{"question":"Q1","category":"trivia","difficulty":"easy"}]}`
	if _, err := ParseResult(KindInterviewQuestions, req, bad); err == nil {
		t.Fatalf("expected category to be rejected")
	}
}

func TestParseResultOutreachRules(t *testing.T) {
	email := &OutreachRequest{Channel: "email", Purpose: "referral", Company: "Acme", Tone: "friendly"}
	if _, err := ParseResult(KindOutreachTemplate, email, `{"message":"Hi there"}`); err == nil {
		t.Fatalf("expected missing subject to be rejected for email")
	}
	if _, err := ParseResult(KindOutreachTemplate, email, `{"subject":"Referral","message":"Hi there"}`); err != nil {
		t.Fatalf("expected valid email, got %v", err)
	}

	note := &OutreachRequest{Channel: "linkedin", Purpose: "connection_request", Company: "Acme", Tone: "professional"}
	long, _ := json.Marshal(map[string]string{"message": strings.Repeat("a", MaxConnectionNote+1)})
	_, err := ParseResult(KindOutreachTemplate, note, string(long))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Issues[0].Field != "message" {
		t.Fatalf("expected message length issue, got %v", err)
	}
}

func TestParseResultNumericRules(t *testing.T) {
	if _, err := ParseResult(KindNegotiationStrategy, &NegotiationRequest{}, `{"recommendedCounter":{"base":0,"currency":"USD"},"talkingPoints":["x"],"script":"y"}`); err == nil {
		t.Fatalf("expected zero counter base to be rejected")
	}
	if _, err := ParseResult(KindResumeOptimization, &ResumeOptimizationRequest{}, `{"summary":"ok","improvements":[{"section":"a","suggestion":"b","priority":"high"}]}`); err == nil {
		t.Fatalf("expected missing overallScore to be rejected")
	}
	out, err := ParseResult(KindResumeOptimization, &ResumeOptimizationRequest{}, `{"overallScore":0,"summary":"ok","improvements":[{"section":"a","suggestion":"b","priority":"low"}]}`)
	if err != nil || !strings.Contains(string(out), `"overallScore":0`) {
		t.Fatalf("expected score 0 to be accepted, got %s %v", out, err)
	}
}

func TestValidationIssuesUseJSONNames(t *testing.T) {
	issues := validateStruct(&NegotiationRequest{JobTitle: "SRE", Company: "Acme", Currency: "usd"})
	fields := map[string]string{}
	for _, is := range issues {
		fields[is.Field] = is.Issue
	}
	if fields["offerBase"] != "must be greater than 0" {
		t.Fatalf("expected offerBase issue, got %v", fields)
	}
	if fields["currency"] != "must be uppercase" {
		t.Fatalf("expected currency issue, got %v", fields)
	}
}

func TestRenderPromptPerKind(t *testing.T) {
	years := 4
	reqs := map[Kind]Request{
		KindSalaryEstimate:      &SalaryRequest{JobTitle: "Data Engineer", Location: "Lisbon", YearsExperience: &years, Skills: []string{"Go", "SQL"}},
		KindInterviewQuestions:  &InterviewRequest{JobTitle: "Data Engineer", Stage: "phone_screen", Count: 5},
		KindResumeOptimization:  &ResumeOptimizationRequest{ResumeText: "Data Engineer with Go experience", TargetRole: "Data Engineer"},
		KindOutreachTemplate:    &OutreachRequest{Channel: "linkedin", Purpose: "connection_request", Company: "Acme", Tone: "friendly"},
		KindNegotiationStrategy: &NegotiationRequest{JobTitle: "Data Engineer", Company: "Acme", OfferBase: 85000, Currency: "EUR"},
	}
	wants := map[Kind][]string{
		KindSalaryEstimate:      {"Data Engineer", "Lisbon", "Years of experience: 4", "Go, SQL"},
		KindInterviewQuestions:  {"5 likely interview questions", "Phone screen"},
		KindResumeOptimization:  {"for a Data Engineer position", "Go experience"},
		KindOutreachTemplate:    {"friendly LinkedIn message", "connection request", "at most 300 characters"},
		KindNegotiationStrategy: {"85000 EUR", `"currency": "EUR"`},
	}
	for kind, req := range reqs {
		p, err := RenderPrompt(kind, req)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if !strings.Contains(p.System, "single JSON object") {
			t.Fatalf("%s: missing system prompt", kind)
		}
		for _, want := range wants[kind] {
			if !strings.Contains(p.User, want) {
				t.Fatalf("%s: prompt missing %q:\n%s", kind, want, p.User)
			}
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, raw := range []string{"salary-estimate", "salary_estimate", " Salary-Estimate "} {
		if k, ok := ParseKind(raw); !ok || k != KindSalaryEstimate {
			t.Fatalf("ParseKind(%q) = %q, %v", raw, k, ok)
		}
	}
	if _, ok := ParseKind("horoscope"); ok {
		t.Fatalf("expected unknown kind")
	}
}

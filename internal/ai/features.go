package ai

import (
	"encoding/json"
	"strings"
)

type feature struct {
	newRequest func() Request
	newResult  func() any
}

var features = map[Kind]feature{
	KindSalaryEstimate: {
		newRequest: func() Request { return &SalaryRequest{} },
		newResult:  func() any { return &SalaryResult{} },
	},
	KindInterviewQuestions: {
		newRequest: func() Request { return &InterviewRequest{} },
		newResult:  func() any { return &InterviewResult{} },
	},
	KindResumeOptimization: {
		newRequest: func() Request { return &ResumeOptimizationRequest{} },
		newResult:  func() any { return &ResumeOptimizationResult{} },
	},
	KindOutreachTemplate: {
		newRequest: func() Request { return &OutreachRequest{} },
		newResult:  func() any { return &OutreachResult{} },
	},
	KindNegotiationStrategy: {
		newRequest: func() Request { return &NegotiationRequest{} },
		newResult:  func() any { return &NegotiationResult{} },
	},
}

// ParseResult pulls the first JSON object out of the model text, decodes it
// strictly into the result type for kind and validates its shape. The
// returned JSON is the re-encoded, validated result.
func ParseResult(kind Kind, req Request, text string) (json.RawMessage, error) {
	f, ok := features[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	obj, ok := firstJSONObject(text)
	if !ok {
		return nil, &ValidationError{Message: "response contains no JSON object"}
	}
	res := f.newResult()
	if err := decodeStrict([]byte(obj), res); err != nil {
		return nil, &ValidationError{Message: "response does not match schema", Issues: []Issue{decodeIssue(err)}}
	}
	issues := validateStruct(res)
	if c, ok := res.(resultChecker); ok {
		issues = append(issues, c.check(req)...)
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Message: "response failed validation", Issues: issues}
	}
	return json.Marshal(res)
}

// firstJSONObject returns the first balanced {...} in text, skipping braces
// inside JSON strings. Code fences and prose around the object are ignored.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

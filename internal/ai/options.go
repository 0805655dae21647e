package ai

// Option is one selectable value shown by the UI.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

var ExperienceLevels = []Option{
	{Value: "entry", Label: "Entry level", Description: "0-2 years"},
	{Value: "mid", Label: "Mid level", Description: "3-5 years"},
	{Value: "senior", Label: "Senior", Description: "6-9 years"},
	{Value: "lead", Label: "Lead / Staff", Description: "10+ years, leads teams or architecture"},
	{Value: "executive", Label: "Executive", Description: "Director and above"},
}

var InterviewStages = []Option{
	{Value: "phone_screen", Label: "Phone screen", Description: "Short recruiter call on background, motivation and logistics"},
	{Value: "technical", Label: "Technical", Description: "Coding, system design or domain knowledge"},
	{Value: "behavioral", Label: "Behavioral", Description: "Past situations told in STAR format"},
	{Value: "onsite", Label: "Onsite", Description: "Full loop with several interviewers"},
	{Value: "final", Label: "Final round", Description: "Hiring manager or leadership, culture and fit"},
}

var OutreachChannels = []Option{
	{Value: "email", Label: "Email"},
	{Value: "linkedin", Label: "LinkedIn"},
}

var OutreachPurposes = []Option{
	{Value: "cold_outreach", Label: "Cold outreach", Description: "First contact with a recruiter or hiring manager"},
	{Value: "referral", Label: "Referral request", Description: "Ask a contact to refer you"},
	{Value: "informational", Label: "Informational interview", Description: "Ask for a short conversation about the role or team"},
	{Value: "follow_up", Label: "Follow-up", Description: "Check in after applying or interviewing"},
	{Value: "thank_you", Label: "Thank-you note", Description: "After an interview"},
	{Value: "connection_request", Label: "Connection request", Description: "LinkedIn note, 300 characters max"},
}

var OutreachTones = []Option{
	{Value: "professional", Label: "Professional"},
	{Value: "friendly", Label: "Friendly"},
	{Value: "enthusiastic", Label: "Enthusiastic"},
}

// OptionSet is the static data served to the UI.
type OptionSet struct {
	Kinds            []Option `json:"kinds"`
	ExperienceLevels []Option `json:"experienceLevels"`
	InterviewStages  []Option `json:"interviewStages"`
	OutreachChannels []Option `json:"outreachChannels"`
	OutreachPurposes []Option `json:"outreachPurposes"`
	OutreachTones    []Option `json:"outreachTones"`
}

// AllOptions returns the static data for every feature.
func AllOptions() OptionSet {
	kinds := make([]Option, 0, len(Kinds))
	for _, k := range Kinds {
		kinds = append(kinds, Option{Value: string(k), Label: k.Slug(), Description: k.Description()})
	}
	return OptionSet{
		Kinds:            kinds,
		ExperienceLevels: ExperienceLevels,
		InterviewStages:  InterviewStages,
		OutreachChannels: OutreachChannels,
		OutreachPurposes: OutreachPurposes,
		OutreachTones:    OutreachTones,
	}
}

func labelOf(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

package scoring

// domainTable is the fixed list of wellness domains, in the order they appear
// in the assessment and in result emails.
var domainTable = []struct {
	name        string
	description string
}{
	{"Physical Wellness", "Movement, sleep, nutrition and the daily habits that keep your body resilient."},
	{"Emotional Wellness", "Recognising, expressing and regulating your feelings in healthy ways."},
	{"Mental Wellness", "Focus, clarity and the ability to manage stress and stay curious."},
	{"Social Wellness", "The quality of your relationships and your sense of connection and belonging."},
	{"Spiritual Wellness", "A sense of meaning, purpose and alignment with your values."},
	{"Occupational Wellness", "Satisfaction, growth and balance in your work or daily vocation."},
	{"Financial Wellness", "Confidence in managing money and planning for the future."},
	{"Environmental Wellness", "Living and working in spaces that support your health and calm."},
}

var domainIndex = func() map[string]int {
	m := make(map[string]int, len(domainTable))
	for i, d := range domainTable {
		m[d.name] = i
	}
	return m
}()

// DomainDescription returns the human-readable description for a domain.
// Unknown domains return ("", false); callers render them without one.
func DomainDescription(name string) (string, bool) {
	i, ok := domainIndex[name]
	if !ok {
		return "", false
	}
	return domainTable[i].description, true
}

// domainRank orders known domains by table position and pushes unknown ones
// after all of them.
func domainRank(name string) int {
	if i, ok := domainIndex[name]; ok {
		return i
	}
	return len(domainTable)
}

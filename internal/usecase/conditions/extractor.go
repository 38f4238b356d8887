// Package conditions turns free text and model-extracted profiles into
// QueryConditions. Extraction is rule based and deterministic.
package conditions

import (
	"regexp"
	"strconv"
	"strings"

	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/domain/knowledge"
	"github.com/kailas-cloud/skinrec/internal/domain/tagging"
)

// Age patterns in priority order; the first one that matches wins.
var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*岁`),
	regexp.MustCompile(`(\d+)\+`),
	regexp.MustCompile(`(\d+)岁以上`),
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+)`)

// Profile field names produced by the profile extraction prompt.
const (
	FieldAge           = "年龄"
	FieldGender        = "性别"
	FieldGenderEN      = "gender"
	FieldSkinType      = "皮肤类型"
	FieldProblems      = "主要皮肤问题"
	FieldIssues        = "主要问题"
	FieldAgeGroup      = "年龄段"
	FieldFeatures      = "主要特征"
	FieldAgeRange      = "age_range"
	FieldUserType      = "user_type"
	FieldRawProfile    = "raw_profile"
	UserTypeFamilyBuy  = "子女代购"
	DefaultProfileText = "保湿 抗皱 修护"
)

var elderAgeRanges = []string{"46-55", "56-65", "66+"}

// Extractor derives QueryConditions from text.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract parses age, gender, skin type and concerns out of free text.
// The same input always yields the same conditions.
func (e *Extractor) Extract(text string) domcond.QueryConditions {
	c := domcond.QueryConditions{
		Age:      extractAge(text),
		Gender:   tagging.DetectUserGender(text),
		SkinType: tagging.DetectSkinType(text),
		Concerns: tagging.DetectConcerns(text),
	}
	if c.Concerns == nil {
		c.Concerns = []string{}
	}
	return c.Normalize()
}

// FromProfile builds conditions from a model-extracted profile. Structured
// fields win over what the assembled query text implies.
func (e *Extractor) FromProfile(profile map[string]any) domcond.QueryConditions {
	c := e.Extract(ProfileQuery(profile))

	if g := profileGender(profile); g.Known() {
		c.Gender = g
	}
	if v, ok := field(profile, FieldAge); ok {
		if age := extractAge(v); age != nil {
			c.Age = age
		} else if m := leadingNumber.FindStringSubmatch(v); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && domcond.ValidAge(n) {
				c.Age = &n
			}
		}
	}
	c = c.Normalize()

	if IsElderProfile(profile) {
		c.Elder = true
	}
	return c
}

// IsElderProfile reports whether the profile describes an older user or a
// purchase made on their behalf.
func IsElderProfile(profile map[string]any) bool {
	if v, ok := field(profile, FieldAgeRange); ok {
		for _, r := range elderAgeRanges {
			if v == r {
				return true
			}
		}
	}
	if v, ok := field(profile, FieldUserType); ok && v == UserTypeFamilyBuy {
		return true
	}
	if v, ok := field(profile, FieldAge); ok {
		if age := extractAge(v); age != nil && *age >= domcond.ElderAge {
			return true
		}
		if m := leadingNumber.FindStringSubmatch(v); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= domcond.ElderAge {
				return true
			}
		}
	}
	return false
}

// ProfileQuery assembles the recommendation query text from a profile.
func ProfileQuery(profile map[string]any) string {
	var parts []string
	if v, ok := field(profile, FieldAge); ok {
		parts = append(parts, v)
	} else if v, ok := field(profile, FieldAgeGroup); ok && tagging.MentionsElderly(v) {
		parts = append(parts, v)
	} else if mentionsElderly(profile) {
		parts = append(parts, "老年人")
	}
	if v, ok := field(profile, FieldSkinType); ok {
		parts = append(parts, v)
	}
	problems := knowledge.StringList(profile[FieldProblems])
	if len(problems) == 0 {
		problems = knowledge.StringList(profile[FieldIssues])
	}
	if len(problems) > 0 {
		parts = append(parts, strings.Join(problems, " "))
	} else if v, ok := field(profile, FieldFeatures); ok {
		parts = append(parts, v)
	}
	if v, ok := field(profile, FieldRawProfile); ok && len(parts) == 0 {
		parts = append(parts, v)
	}

	q := strings.TrimSpace(strings.Join(parts, " "))
	if q == "" {
		return DefaultProfileText
	}
	return q
}

// Combine fills the gaps of primary with what secondary knows. Concerns are
// merged in order without duplicates.
func Combine(primary, secondary domcond.QueryConditions) domcond.QueryConditions {
	out := primary
	if out.Age == nil {
		out.Age = secondary.Age
	}
	if !out.Gender.Known() {
		out.Gender = secondary.Gender
	}
	if out.SkinType == "" {
		out.SkinType = secondary.SkinType
	}
	out.Concerns = append(append([]string{}, primary.Concerns...), secondary.Concerns...)
	out.Elder = primary.Elder || secondary.Elder
	out.Sensitive = primary.Sensitive || secondary.Sensitive
	return out.Normalize()
}

// extractAge returns nil when no plausible age is found. Out-of-range numbers
// are treated as unknown, not as an error.
func extractAge(text string) *int {
	for _, re := range agePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && domcond.ValidAge(n) {
			return &n
		}
	}
	if tagging.MentionsElderly(text) {
		return domcond.IntPtr(domcond.DefaultElderlyAge)
	}
	return nil
}

func profileGender(profile map[string]any) tagging.Gender {
	for _, key := range []string{FieldGender, FieldGenderEN} {
		if v, ok := field(profile, key); ok {
			if g := tagging.ParseGender(v); g.Known() {
				return g
			}
			if g := tagging.DetectUserGender(v); g.Known() {
				return g
			}
		}
	}
	return tagging.GenderUnknown
}

func mentionsElderly(profile map[string]any) bool {
	return tagging.MentionsElderly(strings.Join(knowledge.Flatten(profile), " "))
}

func field(profile map[string]any, key string) (string, bool) {
	v, ok := profile[key]
	if !ok {
		return "", false
	}
	s, ok := knowledge.Scalar(v)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

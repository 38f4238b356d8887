// Package tagging holds the keyword tables shared by condition extraction,
// product scoring and diversity selection. Every classifier here is pure and
// deterministic.
package tagging

import (
	"strings"
	"unicode"
)

// Gender is the audience a user or a product is associated with.
type Gender string

// Gender values.
const (
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderUnknown Gender = "unknown"
)

// Opposite returns the other known gender, or GenderUnknown.
func (g Gender) Opposite() Gender {
	switch g {
	case GenderFemale:
		return GenderMale
	case GenderMale:
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// Known reports whether g is female or male.
func (g Gender) Known() bool { return g == GenderFemale || g == GenderMale }

// ParseGender maps structured field values ("女", "male", "F", ...) to a Gender.
func ParseGender(v string) Gender {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "女", "女性", "女士", "女生", "female", "f", "woman", "women":
		return GenderFemale
	case "男", "男性", "男士", "男生", "male", "m", "man", "men":
		return GenderMale
	default:
		return GenderUnknown
	}
}

// Entry maps a tag to the keywords that indicate it.
type Entry struct {
	Tag      string
	Keywords []string
}

var (
	femaleKeywords = []string{"女士", "女性", "女生", "女人", "少女", "妈妈", "母亲", "women", "woman", "female", "ladies"}
	maleKeywords   = []string{"男士", "男性", "男生", "男人", "爸爸", "父亲", "绅士", "men", "man", "male", "gentleman"}

	femaleExclusive = []string{"女士专用", "女士专属", "女性专用", "女性专属", "女生专用", "women only", "for women only"}
	maleExclusive   = []string{"男士专用", "男士专属", "男性专用", "男性专属", "男生专用", "men only", "for men only"}

	elderlyKeywords = []string{"中老年", "老年", "年长", "老人"}
)

// Skin type tags.
const (
	SkinDry         = "dry"
	SkinOily        = "oily"
	SkinCombination = "combination"
	SkinSensitive   = "sensitive"
)

// SkinTypes is the ordered skin type table; the first hit wins.
var SkinTypes = []Entry{
	{Tag: SkinDry, Keywords: []string{"干性", "干燥", "缺水", "dry"}},
	{Tag: SkinOily, Keywords: []string{"油性", "出油", "油腻", "oily"}},
	{Tag: SkinCombination, Keywords: []string{"混合性", "T区油", "混合", "combination"}},
	{Tag: SkinSensitive, Keywords: []string{"敏感", "过敏", "红肿", "sensitive"}},
}

var allSkinTypes = []string{"所有肤质", "全肤质", "任何肤质", "各种肤质", "all skin", "all"}

// Concern tags.
const (
	ConcernHydration   = "hydration"
	ConcernAntiAging   = "anti-aging"
	ConcernFirming     = "firming"
	ConcernBrightening = "brightening"
	ConcernOilControl  = "oil-control"
	ConcernSoothing    = "soothing"
	ConcernRepair      = "repair"
)

// Concerns is the multi-label concern table in discovery order.
var Concerns = []Entry{
	{Tag: ConcernHydration, Keywords: []string{"补水", "缺水", "保湿", "滋润", "水润", "干燥", "hydration", "moisturizing", "moisture"}},
	{Tag: ConcernAntiAging, Keywords: []string{"抗皱", "皱纹", "细纹", "抗衰", "衰老", "anti-aging", "wrinkle"}},
	{Tag: ConcernFirming, Keywords: []string{"紧致", "紧肤", "提拉", "松弛", "firming"}},
	{Tag: ConcernBrightening, Keywords: []string{"美白", "提亮", "暗沉", "淡斑", "色斑", "brightening"}},
	{Tag: ConcernOilControl, Keywords: []string{"控油", "油脂", "出油", "油腻", "oil-control", "oil control"}},
	{Tag: ConcernSoothing, Keywords: []string{"舒缓", "镇静", "红肿", "泛红", "soothing"}},
	{Tag: ConcernRepair, Keywords: []string{"修复", "修护", "受损", "屏障", "repair"}},
}

// Brands is the brand keyword list used for diversity caps.
var Brands = []string{
	"欧莱雅", "兰蔻", "雅诗兰黛", "资生堂", "SK-II", "薇诺娜", "理肤泉", "雅漾", "科颜氏",
	"倩碧", "玉兰油", "OLAY", "珀莱雅", "百雀羚", "自然堂", "相宜本草", "大宝", "欧舒丹",
	"娇韵诗", "海蓝之谜", "悦诗风吟", "妮维雅", "曼秀雷敦", "碧欧泉", "玉泽", "珂润",
	"修丽可", "赫莲娜", "L'Oreal", "Lancome", "Estee Lauder", "Shiseido", "Clinique", "Nivea",
}

// Categories is the ordered category keyword table; the first hit wins.
var Categories = []Entry{
	{Tag: "eye-cream", Keywords: []string{"眼霜", "眼部精华", "eye cream"}},
	{Tag: "cream", Keywords: []string{"面霜", "乳霜", "晚霜", "日霜", "cream"}},
	{Tag: "mask", Keywords: []string{"面膜", "mask"}},
	{Tag: "sunscreen", Keywords: []string{"防晒", "隔离", "sunscreen"}},
	{Tag: "makeup-remover", Keywords: []string{"卸妆"}},
	{Tag: "cleanser", Keywords: []string{"洁面", "洗面奶", "cleanser"}},
	{Tag: "serum", Keywords: []string{"精华", "肌底液", "安瓶", "serum", "essence"}},
	{Tag: "lotion", Keywords: []string{"乳液", "lotion"}},
	{Tag: "toner", Keywords: []string{"爽肤水", "化妆水", "柔肤水", "精华水", "toner"}},
	{Tag: "oil", Keywords: []string{"面油", "精华油"}},
	{Tag: "mist", Keywords: []string{"喷雾", "mist"}},
}

// ClassifyGender reports which audience the text is marked for. Text marked
// for both audiences, or neither, is neutral (GenderUnknown).
func ClassifyGender(text string) Gender {
	female := ContainsAny(text, femaleKeywords)
	male := ContainsAny(text, maleKeywords)
	switch {
	case female && !male:
		return GenderFemale
	case male && !female:
		return GenderMale
	default:
		return GenderUnknown
	}
}

// DetectUserGender scans free text with female keywords taking priority.
func DetectUserGender(text string) Gender {
	if ContainsAny(text, femaleKeywords) {
		return GenderFemale
	}
	if ContainsAny(text, maleKeywords) {
		return GenderMale
	}
	return GenderUnknown
}

// ClassifyExclusive detects explicit single-audience product lines only.
func ClassifyExclusive(text string) Gender {
	female := ContainsAny(text, femaleExclusive)
	male := ContainsAny(text, maleExclusive)
	switch {
	case female && !male:
		return GenderFemale
	case male && !female:
		return GenderMale
	default:
		return GenderUnknown
	}
}

// MentionsElderly reports whether text contains an elderly keyword.
func MentionsElderly(text string) bool { return ContainsAny(text, elderlyKeywords) }

// DetectSkinType returns the first skin type tag whose keywords hit, or "".
func DetectSkinType(text string) string {
	for _, e := range SkinTypes {
		if e.Tag == text || ContainsAny(text, e.Keywords) {
			return e.Tag
		}
	}
	return ""
}

// IsAllSkinTypes reports whether v declares suitability for every skin type.
func IsAllSkinTypes(v string) bool {
	v = strings.TrimSpace(v)
	for _, a := range allSkinTypes {
		if strings.EqualFold(v, a) || (len(a) > 3 && strings.Contains(v, a)) {
			return true
		}
	}
	return false
}

// DetectConcerns returns every concern tag the text mentions, in table order, without duplicates.
func DetectConcerns(text string) []string {
	var out []string
	for _, e := range Concerns {
		if ContainsAny(text, e.Keywords) {
			out = append(out, e.Tag)
		}
	}
	return out
}

// ConcernKeywords returns the keywords of a concern tag, including the tag itself.
func ConcernKeywords(tag string) []string {
	for _, e := range Concerns {
		if e.Tag == tag {
			return e.Keywords
		}
	}
	return []string{tag}
}

// MentionsConcern reports whether text contains the tag or any of its keywords.
func MentionsConcern(text, tag string) bool {
	return ContainsAny(text, ConcernKeywords(tag)) || containsTerm(text, tag)
}

// DetectBrand returns the first brand keyword found in the texts, or "".
func DetectBrand(texts ...string) string {
	for _, t := range texts {
		for _, b := range Brands {
			if containsTerm(t, b) {
				return b
			}
		}
	}
	return ""
}

// DetectCategory returns the category tag of the first text with a hit, or "".
func DetectCategory(texts ...string) string {
	for _, t := range texts {
		for _, e := range Categories {
			if ContainsAny(t, e.Keywords) {
				return e.Tag
			}
		}
	}
	return ""
}

// ContainsAny reports whether text contains any keyword. ASCII keywords match
// case-insensitively on word boundaries so that "men" does not hit "women".
func ContainsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if containsTerm(text, k) {
			return true
		}
	}
	return false
}

func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	if !isASCII(term) {
		return strings.Contains(text, term)
	}
	lower := strings.ToLower(text)
	needle := strings.ToLower(term)
	from := 0
	for {
		i := strings.Index(lower[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if boundary(lower, start-1) && boundary(lower, end) {
			return true
		}
		from = start + 1
	}
}

// boundary reports whether position i is outside s or holds a non-letter ASCII byte.
// Multi-byte runes count as boundaries so ASCII terms can sit next to CJK text.
func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	b := s[i]
	if b >= 0x80 {
		return true
	}
	return !unicode.IsLetter(rune(b))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

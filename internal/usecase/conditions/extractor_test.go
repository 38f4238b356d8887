package conditions

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/skinrec/internal/domain"
	"github.com/kailas-cloud/skinrec/internal/domain/tagging"
)

func TestExtract_Age(t *testing.T) {
	tests := []struct {
		text string
		want int // -1 means no age
	}{
		{"我今年35岁，皮肤干燥", 35},
		{"28 岁 油皮", 28},
		{"适合50+人群", 50},
		{"60岁以上的妈妈", 60},
		{"给家里老人买的面霜", 60},
		{"中老年 保湿", 60},
		{"70岁的老人", 70},
		{"想要控油", -1},
		{"我奶奶说她200岁了，想推荐保湿产品", -1},
		{"200岁的老人", 60},
		{"151岁 25岁", -1},
	}
	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c := e.Extract(tt.text)
			if tt.want < 0 {
				if c.Age != nil {
					t.Errorf("age = %d, want none", *c.Age)
				}
				return
			}
			if c.Age == nil || *c.Age != tt.want {
				t.Errorf("age = %v, want %d", c.Age, tt.want)
			}
		})
	}
}

func TestExtract_Fields(t *testing.T) {
	c := NewExtractor().Extract("我是男生，25岁，油性皮肤，想要控油和保湿")

	if c.Gender != tagging.GenderMale {
		t.Errorf("gender = %q", c.Gender)
	}
	if c.SkinType != tagging.SkinOily {
		t.Errorf("skin type = %q", c.SkinType)
	}
	if len(c.Concerns) < 2 {
		t.Fatalf("concerns = %v", c.Concerns)
	}
	if c.Elder {
		t.Error("25 year old marked elder")
	}
}

func TestExtract_Flags(t *testing.T) {
	e := NewExtractor()

	if c := e.Extract("55岁 敏感肌"); !c.Elder || !c.Sensitive {
		t.Errorf("flags = elder:%v sensitive:%v", c.Elder, c.Sensitive)
	}
	if c := e.Extract("随便看看"); c.Gender != tagging.GenderUnknown || c.SkinType != "" || len(c.Concerns) != 0 {
		t.Errorf("got %+v", c)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := NewExtractor()
	text := "女士 45岁 混合性皮肤 美白 抗皱 紧致 保湿"
	first := e.Extract(text)
	for range 50 {
		if got := e.Extract(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("extraction changed: %+v vs %+v", got, first)
		}
	}
}

func TestFromProfile(t *testing.T) {
	e := NewExtractor()

	t.Run("structured gender wins over text", func(t *testing.T) {
		c := e.FromProfile(map[string]any{
			FieldGender:   "男",
			FieldSkinType: "干性",
			FieldProblems: []any{"女士常见的细纹"},
		})
		if c.Gender != tagging.GenderMale {
			t.Errorf("gender = %q", c.Gender)
		}
		if c.SkinType != tagging.SkinDry {
			t.Errorf("skin type = %q", c.SkinType)
		}
	})

	t.Run("english gender key", func(t *testing.T) {
		c := e.FromProfile(map[string]any{FieldGenderEN: "female"})
		if c.Gender != tagging.GenderFemale {
			t.Errorf("gender = %q", c.Gender)
		}
	})

	t.Run("bare numeric age", func(t *testing.T) {
		c := e.FromProfile(map[string]any{FieldAge: "52"})
		if c.Age == nil || *c.Age != 52 || !c.Elder {
			t.Errorf("got age %v elder %v", c.Age, c.Elder)
		}
	})

	t.Run("implausible age is unknown", func(t *testing.T) {
		for _, v := range []string{"999", "200岁"} {
			c := e.FromProfile(map[string]any{FieldAge: v})
			if c.Age != nil {
				t.Errorf("%s: age = %d, want none", v, *c.Age)
			}
			if err := c.Validate(); err != nil {
				t.Errorf("%s: Validate = %v", v, err)
			}
		}
	})

	t.Run("family purchase is elder", func(t *testing.T) {
		c := e.FromProfile(map[string]any{FieldUserType: UserTypeFamilyBuy})
		if !c.Elder {
			t.Error("expected elder")
		}
	})

	t.Run("age range is elder", func(t *testing.T) {
		c := e.FromProfile(map[string]any{FieldAgeRange: "56-65"})
		if !c.Elder {
			t.Error("expected elder")
		}
		c = e.FromProfile(map[string]any{FieldAgeRange: "26-35"})
		if c.Elder {
			t.Error("26-35 marked elder")
		}
	})
}

func TestProfileQuery(t *testing.T) {
	tests := []struct {
		name    string
		profile map[string]any
		want    string
	}{
		{"empty", map[string]any{}, DefaultProfileText},
		{"problems list", map[string]any{FieldAge: "40岁", FieldSkinType: "油性", FieldProblems: []any{"痘痘", "毛孔"}}, "40岁 油性 痘痘 毛孔"},
		{"features fallback", map[string]any{FieldFeatures: "肤色暗沉"}, "肤色暗沉"},
		{"elderly mention", map[string]any{"描述": "老年皮肤"}, "老年人"},
		{"raw profile", map[string]any{FieldRawProfile: "皮肤很干"}, "皮肤很干"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProfileQuery(tt.profile); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseModelOutput(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantKey string
		wantErr bool
	}{
		{"fenced", "分析如下：\n```json\n{\"皮肤类型\": \"干性\"}\n```\n", FieldSkinType, false},
		{"fenced without tag", "```\n{\"性别\": \"女\"}\n```", FieldGender, false},
		{"raw object", `{"年龄": 30}`, FieldAge, false},
		{"embedded object", `结果: {"主要特征": "暗沉"} 以上`, FieldFeatures, false},
		{"plain text", "皮肤偏干，有细纹", FieldRawProfile, true},
		{"array is not a profile", `["a", "b"]`, FieldRawProfile, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModelOutput(tt.text)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrExtractionAmbiguous) {
				t.Errorf("expected ErrExtractionAmbiguous, got %v", err)
			}
			if _, ok := got[tt.wantKey]; !ok {
				t.Errorf("missing key %q in %v", tt.wantKey, got)
			}
		})
	}
}

func TestProfileQuery_VisionFields(t *testing.T) {
	got := ProfileQuery(map[string]any{"年龄段": "老年", "皮肤类型": "干性", "主要问题": []any{"皱纹", "色斑"}})
	if got != "老年 干性 皱纹 色斑" {
		t.Errorf("got %q", got)
	}
}

func TestCombine(t *testing.T) {
	e := NewExtractor()
	primary := e.FromProfile(map[string]any{FieldSkinType: "油性"})
	secondary := e.Extract("我是女生，32岁，想美白")

	got := Combine(primary, secondary)
	if got.SkinType != tagging.SkinOily {
		t.Errorf("skin type = %q", got.SkinType)
	}
	if got.Gender != tagging.GenderFemale {
		t.Errorf("gender = %q", got.Gender)
	}
	if got.Age == nil || *got.Age != 32 {
		t.Errorf("age = %v", got.Age)
	}
	seen := map[string]int{}
	for _, c := range got.Concerns {
		seen[c]++
	}
	if seen[tagging.ConcernBrightening] != 1 {
		t.Errorf("concerns = %v", got.Concerns)
	}
	for c, n := range seen {
		if n > 1 {
			t.Errorf("concern %s duplicated", c)
		}
	}
}

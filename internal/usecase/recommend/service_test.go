package recommend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/domain"
	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/domain/match"
	"github.com/kailas-cloud/skinrec/internal/domain/product"
	"github.com/kailas-cloud/skinrec/internal/domain/random"
	"github.com/kailas-cloud/skinrec/internal/domain/tagging"
	"github.com/kailas-cloud/skinrec/internal/metrics"
	"github.com/kailas-cloud/skinrec/internal/usecase/matcher"
	"github.com/kailas-cloud/skinrec/internal/usecase/selector"
)

func TestMain(m *testing.M) {
	metrics.RegisterRecommendMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockCatalogSource struct {
	catalog product.Catalog
	err     error
}

func (m mockCatalogSource) LoadCatalog(context.Context) (product.Catalog, error) {
	return m.catalog, m.err
}

// --- Helpers ---

func newService() *Service {
	return New(
		matcher.New(matcher.DefaultWeights(), random.NewSeeded(1)),
		selector.New(random.NewSeeded(1)),
		DefaultSizes(),
		zap.NewNop(),
	)
}

func names(set match.Set) []string {
	out := make([]string, len(set.Items))
	for i, it := range set.Items {
		out[i] = it.Product.Name
	}
	return out
}

func hydrating(name string) product.Product {
	return product.Product{Name: name, SuitableAge: "0+", Benefits: []string{"保湿"}}
}

// --- Tests ---

func TestRecommend_Scenario_ExcludesOppositeGender(t *testing.T) {
	cat := product.Catalog{General: []product.Product{hydrating("男士保湿霜"), hydrating("女士保湿霜")}}
	c := domcond.QueryConditions{Gender: tagging.GenderFemale, Concerns: []string{tagging.ConcernHydration}}

	set, err := newService().Recommend(context.Background(), c, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := names(set)
	if len(got) != 1 || got[0] != "女士保湿霜" {
		t.Errorf("got %v, want only the female product", got)
	}
	if !set.Personalized || set.Relaxed {
		t.Errorf("flags = personalized:%v relaxed:%v", set.Personalized, set.Relaxed)
	}
}

func TestRecommend_Scenario_EmptyCatalogServesDefaults(t *testing.T) {
	set, err := newService().Recommend(context.Background(), domcond.QueryConditions{}, product.Catalog{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Personalized {
		t.Error("defaults flagged as personalized")
	}
	if len(set.Items) == 0 || len(set.Items) > 3 {
		t.Fatalf("got %d items", len(set.Items))
	}
	for _, it := range set.Items {
		if it.Reason == "" {
			t.Errorf("%s has no reason", it.Product.Name)
		}
	}
}

func TestRecommend_RelaxedFallback(t *testing.T) {
	cat := product.Catalog{General: []product.Product{hydrating("男士保湿乳"), hydrating("男士专用洁面")}}
	c := domcond.QueryConditions{Gender: tagging.GenderFemale}

	set, err := newService().Recommend(context.Background(), c, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Relaxed || !set.Personalized {
		t.Errorf("flags = personalized:%v relaxed:%v", set.Personalized, set.Relaxed)
	}
	if got := names(set); len(got) != 1 || got[0] != "男士保湿乳" {
		t.Errorf("got %v", got)
	}
}

func TestRecommend_AllExclusiveServesDefaults(t *testing.T) {
	cat := product.Catalog{General: []product.Product{hydrating("男士专用洁面"), hydrating("男士专属面霜")}}
	c := domcond.QueryConditions{Gender: tagging.GenderFemale}

	set, err := newService().Recommend(context.Background(), c, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Personalized {
		t.Error("expected the default list")
	}
}

func TestRecommend_ElderCatalogAndK(t *testing.T) {
	var general, elder []product.Product
	for i := range 6 {
		general = append(general, hydrating(fmt.Sprintf("通用保湿乳%d", i)))
		elder = append(elder, product.Product{
			Name:          fmt.Sprintf("银龄修护霜%d", i),
			SuitableAge:   "50+",
			Benefits:      []string{"修护"},
			ElderFriendly: map[string]string{"usage_instructions": "早晚各一次"},
		})
	}
	cat := product.Catalog{General: general, Elder: elder}

	set, err := newService().Recommend(context.Background(), domcond.QueryConditions{Age: domcond.IntPtr(62)}, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Items) != 4 {
		t.Fatalf("elder K: got %d items, want 4", len(set.Items))
	}
	for _, it := range set.Items {
		if !strings.HasPrefix(it.Product.Name, "银龄") {
			t.Errorf("general product %s served to elder profile", it.Product.Name)
		}
		if !strings.Contains(it.Reason, "专为50+人群设计") {
			t.Errorf("reason %q lacks elder phrasing", it.Reason)
		}
	}

	set, err = newService().Recommend(context.Background(), domcond.QueryConditions{Age: domcond.IntPtr(30)}, cat)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Items) != 3 || !strings.HasPrefix(set.Items[0].Product.Name, "通用") {
		t.Errorf("got %v", names(set))
	}
}

func TestRecommend_InvalidConditions(t *testing.T) {
	_, err := newService().Recommend(context.Background(), domcond.QueryConditions{Age: domcond.IntPtr(-3)}, product.Catalog{})
	if !errors.Is(err, domain.ErrInvalidConditions) {
		t.Errorf("expected ErrInvalidConditions, got %v", err)
	}
}

func TestSuggest_UsesLoadedCatalog(t *testing.T) {
	s := newService()
	src := mockCatalogSource{catalog: product.Catalog{General: []product.Product{hydrating("保湿乳")}}}
	if err := s.Initialize(context.Background(), src); err != nil {
		t.Fatal(err)
	}

	set, err := s.Suggest(context.Background(), domcond.QueryConditions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := names(set); len(got) != 1 || got[0] != "保湿乳" {
		t.Errorf("got %v", got)
	}
}

func TestInitialize_SourceErrorKeepsDefaults(t *testing.T) {
	s := newService()
	if err := s.Initialize(context.Background(), mockCatalogSource{err: errors.New("missing file")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Catalog().Empty() {
		t.Error("catalog should be empty")
	}
}

func TestSizes_K(t *testing.T) {
	s := DefaultSizes()
	tests := []struct {
		c    domcond.QueryConditions
		want int
	}{
		{domcond.QueryConditions{}, 3},
		{domcond.QueryConditions{Elder: true}, 4},
		{domcond.QueryConditions{Sensitive: true}, 3},
		{domcond.QueryConditions{Elder: true, Sensitive: true}, 4},
	}
	for _, tt := range tests {
		if got := s.K(tt.c); got != tt.want {
			t.Errorf("K(%+v) = %d, want %d", tt.c, got, tt.want)
		}
	}
}

func TestReasonText(t *testing.T) {
	tests := []struct {
		name string
		p    product.Product
		c    domcond.QueryConditions
		want string
	}{
		{"empty", product.Product{}, domcond.QueryConditions{}, "根据您的需求推荐"},
		{
			"benefits and ingredients",
			product.Product{Benefits: []string{"保湿", "抗皱", "提亮", "紧致"}, KeyIngredients: []string{"玻尿酸", "神经酰胺", "维生素E"}},
			domcond.QueryConditions{},
			"具有保湿, 抗皱, 提亮等功效；含有玻尿酸, 神经酰胺等有效成分",
		},
		{
			"elder friendly with age",
			product.Product{SuitableAge: "60+", ElderFriendly: map[string]string{"usage_instructions": "按压泵头取用"}},
			domcond.QueryConditions{Age: domcond.IntPtr(65)},
			"专为60+人群设计；按压泵头取用",
		},
		{
			"elder friendly without age",
			product.Product{ElderFriendly: map[string]string{"large_print": "大字说明"}},
			domcond.QueryConditions{},
			"根据您的需求推荐",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReasonText(tt.p, tt.c); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

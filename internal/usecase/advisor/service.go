package advisor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/skinrec/internal/domain"
	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	domknow "github.com/kailas-cloud/skinrec/internal/domain/knowledge"
	"github.com/kailas-cloud/skinrec/internal/domain/match"
	"github.com/kailas-cloud/skinrec/internal/logger"
	"github.com/kailas-cloud/skinrec/internal/usecase/conditions"
	"github.com/kailas-cloud/skinrec/internal/usecase/knowledge"
)

// DefaultModelTimeout bounds each model call.
const DefaultModelTimeout = 20 * time.Second

// Config tunes the consultation flow.
type Config struct {
	ModelTimeout  time.Duration
	KnowledgeTopK int
}

// Request is one consultation turn.
type Request struct {
	Message   string
	Image     []byte
	ImageType string
	// Profile carries caller-known fields such as age_range and user_type.
	Profile map[string]any
}

// Response is the consultation result. Degraded lists the steps that fell back.
type Response struct {
	Intent          Intent                  `json:"intent"`
	Profile         map[string]any          `json:"profile"`
	Conditions      domcond.QueryConditions `json:"conditions"`
	Knowledge       []knowledge.Result      `json:"knowledge"`
	Recommendations *match.Set              `json:"recommendations,omitempty"`
	Questions       []string                `json:"questions,omitempty"`
	TrustReasoning  map[string]any          `json:"trust_reasoning,omitempty"`
	Degraded        []string                `json:"degraded,omitempty"`
}

// Service orchestrates a consultation turn.
type Service struct {
	gen       TextGenerator
	vision    ImageAnalyzer
	knowledge KnowledgeSearcher
	recommend Recommender
	extractor *conditions.Extractor
	cfg       Config
}

// New creates an advisor. gen and vision may be nil; the flow then relies on
// rule-based extraction only.
func New(gen TextGenerator, vision ImageAnalyzer, ks KnowledgeSearcher, rec Recommender, cfg Config) *Service {
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = DefaultModelTimeout
	}
	if cfg.KnowledgeTopK <= 0 {
		cfg.KnowledgeTopK = knowledge.DefaultTopK
	}
	return &Service{
		gen:       gen,
		vision:    vision,
		knowledge: ks,
		recommend: rec,
		extractor: conditions.NewExtractor(),
		cfg:       cfg,
	}
}

// Consult runs intent classification, profile extraction and condition
// extraction, then searches knowledge and recommends products concurrently,
// and finally asks for follow-up questions and a trust explanation.
// Model failures degrade; only invalid input or cancellation errors.
func (s *Service) Consult(ctx context.Context, req Request) (*Response, error) {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" && len(req.Image) == 0 {
		return nil, fmt.Errorf("message or image is required: %w", domain.ErrInvalidRequest)
	}
	resp := &Response{Knowledge: []knowledge.Result{}}

	resp.Intent = s.intent(ctx, req, resp)
	ctx = logger.With(ctx, zap.String("intent", string(resp.Intent)))
	log := logger.FromContext(ctx)
	resp.Profile = s.profile(ctx, req, resp)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("consult: %w", err)
	}

	resp.Conditions = s.extractor.Extract(req.Message)
	if len(resp.Profile) > 0 {
		resp.Conditions = conditions.Combine(s.extractor.FromProfile(resp.Profile), resp.Conditions)
	}

	query := req.Message
	if query == "" {
		query = conditions.ProfileQuery(resp.Profile)
	}

	g, gctx := errgroup.WithContext(ctx)
	var docs []knowledge.Result
	var set *match.Set
	g.Go(func() error {
		found, err := s.knowledge.Search(gctx, query, knowledge.Options{
			Category: string(domknow.CategorySkinConditions),
			TopK:     s.cfg.KnowledgeTopK,
			UseCache: true,
		})
		if err != nil {
			return fmt.Errorf("search knowledge: %w", err)
		}
		docs = found
		return nil
	})
	if resp.Intent.WantsProducts() {
		g.Go(func() error {
			out, err := s.recommend.Suggest(gctx, resp.Conditions)
			if err != nil {
				return err
			}
			set = &out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.Knowledge = docs
	resp.Recommendations = set
	s.followUp(ctx, resp)

	log.Info("consultation served",
		zap.Int("knowledge", len(docs)),
		zap.Bool("recommended", set != nil),
		zap.Int("questions", len(resp.Questions)),
		zap.Strings("degraded", resp.Degraded),
	)
	return resp, nil
}

// followUp asks the text model for follow-up questions and, when products
// were recommended, for a trust explanation. Both calls run concurrently
// under their own timeouts and degrade independently.
func (s *Service) followUp(ctx context.Context, resp *Response) {
	if s.gen == nil || !resp.Intent.WantsProducts() {
		return
	}
	b := Brief{Profile: resp.Profile, Knowledge: resp.Knowledge}
	explain := resp.Recommendations != nil && resp.Recommendations.Personalized &&
		len(resp.Recommendations.Items) > 0
	if explain {
		b.Recommendations = resp.Recommendations.Items
	}

	var (
		g                  errgroup.Group
		questions, trust   string
		questErr, trustErr error
	)
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, s.cfg.ModelTimeout)
		defer cancel()
		questions, questErr = s.gen.GenerateQuestions(cctx, b)
		return nil
	})
	if explain {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.cfg.ModelTimeout)
			defer cancel()
			trust, trustErr = s.gen.ExplainTrust(cctx, b)
			return nil
		})
	}
	_ = g.Wait()

	if questErr != nil {
		s.degrade(ctx, resp, "questions", questErr)
	} else {
		resp.Questions = ParseQuestions(questions)
	}
	if !explain {
		return
	}
	if trustErr != nil {
		s.degrade(ctx, resp, "trust", trustErr)
	} else if strings.TrimSpace(trust) != "" {
		resp.TrustReasoning = ParseTrust(trust)
	}
}

func (s *Service) intent(ctx context.Context, req Request, resp *Response) Intent {
	if req.Message == "" {
		return IntentSkinConsultation
	}
	if s.gen == nil {
		return GuessIntent(req.Message)
	}
	cctx, cancel := context.WithTimeout(ctx, s.cfg.ModelTimeout)
	defer cancel()
	in, err := s.gen.ClassifyIntent(cctx, req.Message)
	if err != nil {
		s.degrade(ctx, resp, "intent", err)
		return GuessIntent(req.Message)
	}
	return in
}

// profile asks the vision model when an image is present, the text model
// otherwise, and overlays caller-supplied fields.
func (s *Service) profile(ctx context.Context, req Request, resp *Response) map[string]any {
	profile := map[string]any{}

	var raw string
	var err error
	step := ""
	cctx, cancel := context.WithTimeout(ctx, s.cfg.ModelTimeout)
	defer cancel()
	switch {
	case len(req.Image) > 0 && s.vision != nil:
		step = "vision"
		raw, err = s.vision.AnalyzeSkin(cctx, req.Image, req.ImageType)
	case req.Message != "" && s.gen != nil:
		step = "profile"
		raw, err = s.gen.ExtractProfile(cctx, req.Message)
	}

	if step != "" {
		if err == nil {
			var parseErr error
			profile, parseErr = conditions.ParseModelOutput(raw)
			if parseErr != nil {
				logger.FromContext(ctx).Debug("model profile not json", zap.String("step", step), zap.Error(parseErr))
			}
		} else {
			s.degrade(ctx, resp, step, err)
		}
	}

	maps.Copy(profile, req.Profile)
	return profile
}

func (s *Service) degrade(ctx context.Context, resp *Response, step string, err error) {
	resp.Degraded = append(resp.Degraded, step)
	lvl := logger.FromContext(ctx).Warn
	if errors.Is(err, context.Canceled) {
		lvl = logger.FromContext(ctx).Debug
	}
	lvl("model step degraded", zap.String("step", step), zap.Error(err))
}
